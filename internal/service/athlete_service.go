package service

import (
	"alcyxob/coaching-app/internal/completion"
	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/metrics"
	"alcyxob/coaching-app/internal/repository"
	"context"
	"errors"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SetInput is one set as sent by the athlete's client.
type SetInput struct {
	SetNumber int // 0 on every set numbers them by position
	Weight    string
	Reps      string
	Completed bool
}

// SaveSetsInput replaces the whole set list of one exercise for one athlete.
type SaveSetsInput struct {
	WorkoutID  primitive.ObjectID
	ExerciseID string
	AthleteID  primitive.ObjectID
	// Seq orders writes for the same exercise; a write older than the last
	// applied one is dropped. 0 means unsequenced and always applies.
	Seq  int64
	Sets []SetInput
}

// SaveSetsResult reports whether the write was applied and the status the
// athlete now sees.
type SaveSetsResult struct {
	Applied          bool                      `json:"applied"`
	Sets             []domain.SetRecord        `json:"sets"`
	Exercise         completion.ExerciseStatus `json:"exercise"`
	WorkoutCompleted bool                      `json:"workoutCompleted"`
}

// AthleteWorkout is a calendar entry of the athlete.
type AthleteWorkout struct {
	domain.Workout
	Completed bool `json:"completed"`
}

// VideoResolver turns a stored video reference into a playable URL.
type VideoResolver interface {
	VideoURL(ctx context.Context, ref string) (string, error)
}

type AthleteService interface {
	ListMyWorkouts(ctx context.Context, athleteID primitive.ObjectID, from, to string) ([]AthleteWorkout, error)
	GetMyWorkout(ctx context.Context, athleteID, workoutID primitive.ObjectID) (*domain.Workout, error)
	SaveSets(ctx context.Context, in SaveSetsInput) (*SaveSetsResult, error)
	GetCompletionStatus(ctx context.Context, workoutID, athleteID primitive.ObjectID) (*CompletionReport, error)
	GetSets(ctx context.Context, athleteID, workoutID primitive.ObjectID, exerciseID string) (*domain.SetLog, error)
	ExerciseVideoURL(ctx context.Context, athleteID, workoutID primitive.ObjectID, exerciseID string) (string, error)
}

// athleteService implements the AthleteService interface.
type athleteService struct {
	repos     Repositories
	evaluator *completion.Evaluator
	videos    VideoResolver
	metrics   *metrics.Manager
	now       func() time.Time
}

func NewAthleteService(repos Repositories, videos VideoResolver, metricsManager *metrics.Manager) AthleteService {
	return &athleteService{
		repos:     repos,
		evaluator: completion.NewEvaluator(repos.SetLogs, repos.Completions),
		videos:    videos,
		metrics:   metricsManager,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ListMyWorkouts returns the athlete's own and team workouts in the date
// range, ordered by date, each flagged with its completion marker.
func (s *athleteService) ListMyWorkouts(ctx context.Context, athleteID primitive.ObjectID, from, to string) ([]AthleteWorkout, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	teams, err := s.repos.Teams.GetByMemberID(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	filter := repository.WorkoutFilter{AthleteID: &athleteID, From: from, To: to}
	for _, t := range teams {
		filter.TeamIDs = append(filter.TeamIDs, t.ID)
	}
	workouts, err := s.repos.Workouts.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, len(workouts))
	for i, w := range workouts {
		ids[i] = w.ID
	}
	markers, err := s.repos.Completions.ListForAthlete(ctx, athleteID, ids)
	if err != nil {
		return nil, err
	}
	done := make(map[primitive.ObjectID]bool, len(markers))
	for _, m := range markers {
		done[m.WorkoutID] = true
	}

	out := make([]AthleteWorkout, len(workouts))
	for i, w := range workouts {
		out[i] = AthleteWorkout{Workout: w, Completed: done[w.ID]}
	}
	return out, nil
}

// participantWorkout loads a workout the athlete tracks.
func (s *athleteService) participantWorkout(ctx context.Context, athleteID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := loadWorkout(ctx, s.repos.Workouts, workoutID)
	if err != nil {
		return nil, err
	}
	if workout.IsTemplate() {
		return nil, ErrTemplateHasNoSets
	}
	if err = checkParticipant(ctx, s.repos.Teams, workout, athleteID); err != nil {
		return nil, err
	}
	return workout, nil
}

func (s *athleteService) GetMyWorkout(ctx context.Context, athleteID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	return s.participantWorkout(ctx, athleteID, workoutID)
}

// normalizeSets orders the incoming sets by number. Set numbers must be
// either all zero (numbered by position) or exactly 1..n.
func normalizeSets(in []SetInput) ([]SetInput, error) {
	out := append([]SetInput(nil), in...)

	allZero := true
	for _, s := range out {
		if s.SetNumber != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		for i := range out {
			out[i].SetNumber = i + 1
		}
		return out, nil
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].SetNumber < out[j].SetNumber })
	for i, s := range out {
		if s.SetNumber != i+1 {
			return nil, invalidf("set numbers must be contiguous from 1, got %d at position %d", s.SetNumber, i+1)
		}
	}
	return out, nil
}

// buildRecords turns the input into stored records. completedAt is stamped
// when a set becomes completed, kept while it stays completed, and cleared
// when it is unchecked.
func buildRecords(key domain.SetKey, in []SetInput, previous []domain.SetRecord, now time.Time) []domain.SetRecord {
	prevAt := make(map[int]*time.Time, len(previous))
	for _, p := range previous {
		if p.Completed && p.CompletedAt != nil {
			prevAt[p.SetNumber] = p.CompletedAt
		}
	}

	records := make([]domain.SetRecord, len(in))
	for i, s := range in {
		rec := domain.SetRecord{
			ID:        domain.SetRecordID(key.WorkoutID, key.ExerciseID, key.AthleteID, s.SetNumber),
			SetNumber: s.SetNumber,
			Weight:    s.Weight,
			Reps:      s.Reps,
			Completed: s.Completed,
		}
		if s.Completed {
			at, ok := prevAt[s.SetNumber]
			if !ok {
				stamp := now
				at = &stamp
			}
			rec.CompletedAt = at
		}
		records[i] = rec
	}
	return records
}

// SaveSets replaces the athlete's set list for one exercise and then brings
// the workout completion marker up to date before returning.
func (s *athleteService) SaveSets(ctx context.Context, in SaveSetsInput) (*SaveSetsResult, error) {
	if in.ExerciseID == "" {
		return nil, invalidf("exercise id is required")
	}
	if in.Seq < 0 {
		return nil, invalidf("seq cannot be negative")
	}
	sets, err := normalizeSets(in.Sets)
	if err != nil {
		return nil, err
	}

	workout, err := s.participantWorkout(ctx, in.AthleteID, in.WorkoutID)
	if err != nil {
		return nil, err
	}
	if _, ok := workout.FindExercise(in.ExerciseID); !ok {
		return nil, ErrWorkoutExercise
	}

	key := domain.SetKey{WorkoutID: in.WorkoutID, ExerciseID: in.ExerciseID, AthleteID: in.AthleteID}
	var previous []domain.SetRecord
	existing, err := s.repos.SetLogs.Get(ctx, key)
	switch {
	case err == nil:
		previous = existing.Sets
	case errors.Is(err, repository.ErrNotFound):
	default:
		return nil, err
	}

	records := buildRecords(key, sets, previous, s.now())
	logger := log.WithFields(log.Fields{
		"workout_id":  in.WorkoutID.Hex(),
		"exercise_id": in.ExerciseID,
		"athlete_id":  in.AthleteID.Hex(),
		"seq":         in.Seq,
	})

	err = s.repos.SetLogs.Replace(ctx, key, in.Seq, records)
	if errors.Is(err, repository.ErrStaleWrite) {
		s.countSave(metrics.SetSaveStale)
		logger.Debug("stale set write dropped")
		return s.staleResult(ctx, workout, key)
	}
	if err != nil {
		return nil, err
	}
	s.countSave(metrics.SetSaveApplied)

	ws, err := s.evaluator.Evaluate(ctx, workout, in.AthleteID)
	if err != nil {
		logger.WithError(err).Error("completion evaluation failed after set write")
		return nil, err
	}
	recordMarkerSync(s.metrics, ws)

	result := &SaveSetsResult{Applied: true, Sets: records, WorkoutCompleted: ws.Complete}
	for _, st := range ws.Exercises {
		if st.ExerciseID == in.ExerciseID {
			result.Exercise = st
			break
		}
	}
	return result, nil
}

// staleResult describes the state that won over a dropped write, without
// touching any data.
func (s *athleteService) staleResult(ctx context.Context, workout *domain.Workout, key domain.SetKey) (*SaveSetsResult, error) {
	current, err := s.repos.SetLogs.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	st, err := s.evaluator.ExerciseStatus(ctx, workout, key.ExerciseID, key.AthleteID)
	if err != nil {
		return nil, err
	}
	done, err := s.repos.Completions.Exists(ctx, key.WorkoutID, key.AthleteID)
	if err != nil {
		return nil, err
	}
	return &SaveSetsResult{Applied: false, Sets: current.Sets, Exercise: st, WorkoutCompleted: done}, nil
}

func (s *athleteService) countSave(result string) {
	if s.metrics != nil {
		s.metrics.CounterSetSaves.WithLabelValues(result).Inc()
	}
}

// GetCompletionStatus evaluates every exercise of the workout for the
// athlete. It reads only; markers are maintained by writes.
func (s *athleteService) GetCompletionStatus(ctx context.Context, workoutID, athleteID primitive.ObjectID) (*CompletionReport, error) {
	workout, err := s.participantWorkout(ctx, athleteID, workoutID)
	if err != nil {
		return nil, err
	}
	ws, err := s.evaluator.WorkoutStatus(ctx, workout, athleteID)
	if err != nil {
		return nil, err
	}
	return newCompletionReport(ws), nil
}

// GetSets returns the athlete's current set list for an exercise. An
// exercise without saved sets yields an empty log with seq 0.
func (s *athleteService) GetSets(ctx context.Context, athleteID, workoutID primitive.ObjectID, exerciseID string) (*domain.SetLog, error) {
	workout, err := s.participantWorkout(ctx, athleteID, workoutID)
	if err != nil {
		return nil, err
	}
	if _, ok := workout.FindExercise(exerciseID); !ok {
		return nil, ErrWorkoutExercise
	}

	key := domain.SetKey{WorkoutID: workoutID, ExerciseID: exerciseID, AthleteID: athleteID}
	setLog, err := s.repos.SetLogs.Get(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return &domain.SetLog{
			WorkoutID:  workoutID,
			ExerciseID: exerciseID,
			AthleteID:  athleteID,
			Sets:       []domain.SetRecord{},
		}, nil
	}
	return setLog, err
}

// ExerciseVideoURL resolves the video of a workout exercise for playback.
func (s *athleteService) ExerciseVideoURL(ctx context.Context, athleteID, workoutID primitive.ObjectID, exerciseID string) (string, error) {
	workout, err := s.participantWorkout(ctx, athleteID, workoutID)
	if err != nil {
		return "", err
	}
	ex, ok := workout.FindExercise(exerciseID)
	if !ok {
		return "", ErrWorkoutExercise
	}
	return s.videos.VideoURL(ctx, ex.VideoRef)
}
