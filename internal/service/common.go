package service

import (
	"alcyxob/coaching-app/internal/completion"
	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/metrics"
	"alcyxob/coaching-app/internal/repository"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Repositories bundles the stores the coach and athlete services share.
type Repositories struct {
	Users       repository.UserRepository
	Teams       repository.TeamRepository
	Workouts    repository.WorkoutRepository
	Exercises   repository.ExerciseRepository
	Uploads     repository.UploadRepository
	SetLogs     repository.SetLogRepository
	Completions repository.CompletionRepository
}

// CompletionReport is the status view of one workout for one athlete.
type CompletionReport struct {
	WorkoutID primitive.ObjectID `json:"workoutId"`
	AthleteID primitive.ObjectID `json:"athleteId"`
	Completed bool               `json:"completed"`
	// Keyed by exercise name. A later exercise with a duplicate name
	// replaces the earlier one.
	Exercises map[string]completion.ExerciseStatus `json:"exercises"`
}

func newCompletionReport(ws completion.WorkoutStatus) *CompletionReport {
	return &CompletionReport{
		WorkoutID: ws.WorkoutID,
		AthleteID: ws.AthleteID,
		Completed: ws.Complete,
		Exercises: ws.ByName(),
	}
}

func loadWorkout(ctx context.Context, repo repository.WorkoutRepository, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := repo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return workout, nil
}

// checkParticipant verifies that the athlete tracks the workout: either it
// is assigned to them or to a team they belong to.
func checkParticipant(ctx context.Context, teams repository.TeamRepository, workout *domain.Workout, athleteID primitive.ObjectID) error {
	switch {
	case workout.AthleteID != nil:
		if *workout.AthleteID == athleteID {
			return nil
		}
	case workout.TeamID != nil:
		team, err := teams.GetByID(ctx, *workout.TeamID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrWorkoutAccessDenied
			}
			return err
		}
		if team.HasMember(athleteID) {
			return nil
		}
	}
	return ErrWorkoutAccessDenied
}

// recordMarkerSync counts the marker transition an evaluation performed.
func recordMarkerSync(m *metrics.Manager, ws completion.WorkoutStatus) {
	if m == nil {
		return
	}
	action := metrics.MarkerDeleted
	if ws.Complete {
		action = metrics.MarkerUpserted
	}
	m.CounterCompletionMarker.WithLabelValues(action).Inc()
}
