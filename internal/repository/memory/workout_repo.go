package memory

import (
	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/repository"
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type storedWorkout struct {
	workout domain.Workout
	order   uint64 // insertion order, breaks createdAt ties
}

type workoutRepository struct {
	mu       sync.RWMutex
	workouts map[primitive.ObjectID]*storedWorkout
	next     uint64
}

func NewWorkoutRepository() repository.WorkoutRepository {
	return &workoutRepository{workouts: make(map[primitive.ObjectID]*storedWorkout)}
}

// cloneWorkout copies the whole block tree and the owner pointers.
func cloneWorkout(w *domain.Workout) domain.Workout {
	c := *w
	if w.AthleteID != nil {
		id := *w.AthleteID
		c.AthleteID = &id
	}
	if w.TeamID != nil {
		id := *w.TeamID
		c.TeamID = &id
	}
	c.Blocks = make([]domain.Block, len(w.Blocks))
	for i, b := range w.Blocks {
		c.Blocks[i] = b
		c.Blocks[i].Exercises = append([]domain.WorkoutExercise{}, b.Exercises...)
	}
	return c
}

func (r *workoutRepository) Create(_ context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.CoachID == primitive.NilObjectID || workout.Name == "" {
		return primitive.NilObjectID, errors.New("workout requires coachId and name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	workout.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now
	if workout.Blocks == nil {
		workout.Blocks = []domain.Block{}
	}
	r.next++
	r.workouts[workout.ID] = &storedWorkout{workout: cloneWorkout(workout), order: r.next}
	return workout.ID, nil
}

func (r *workoutRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := cloneWorkout(&s.workout)
	return &c, nil
}

func matchesFilter(w *domain.Workout, f repository.WorkoutFilter) bool {
	if f.CoachID != nil && w.CoachID != *f.CoachID {
		return false
	}
	if f.TemplateOnly && !w.IsTemplate() {
		return false
	}
	inTeams := func() bool {
		if w.TeamID == nil {
			return false
		}
		for _, id := range f.TeamIDs {
			if id == *w.TeamID {
				return true
			}
		}
		return false
	}
	if f.AthleteID != nil {
		ownAthlete := w.AthleteID != nil && *w.AthleteID == *f.AthleteID
		if !ownAthlete && !inTeams() {
			return false
		}
	} else if len(f.TeamIDs) > 0 && !inTeams() {
		return false
	}
	if f.From != "" || f.To != "" {
		// An undated workout never falls inside a date range.
		if w.Date == "" {
			return false
		}
		if f.From != "" && w.Date < f.From {
			return false
		}
		if f.To != "" && w.Date > f.To {
			return false
		}
	}
	return true
}

func (r *workoutRepository) List(_ context.Context, f repository.WorkoutFilter) ([]domain.Workout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*storedWorkout, 0)
	for _, s := range r.workouts {
		if matchesFilter(&s.workout, f) {
			matched = append(matched, s)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].workout.Date != matched[j].workout.Date {
			return matched[i].workout.Date < matched[j].workout.Date
		}
		return matched[i].order < matched[j].order
	})

	out := make([]domain.Workout, len(matched))
	for i, s := range matched {
		out[i] = cloneWorkout(&s.workout)
	}
	return out, nil
}

func (r *workoutRepository) Update(_ context.Context, workout *domain.Workout) error {
	if workout.ID == primitive.NilObjectID {
		return errors.New("workout ID is required for update")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.workouts[workout.ID]
	if !ok || s.workout.CoachID != workout.CoachID {
		return repository.ErrNotFound
	}
	updated := cloneWorkout(workout)
	updated.CreatedAt = s.workout.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	if updated.Blocks == nil {
		updated.Blocks = []domain.Block{}
	}
	s.workout = updated
	return nil
}

func (r *workoutRepository) Delete(_ context.Context, workoutID primitive.ObjectID, coachID primitive.ObjectID) error {
	if workoutID == primitive.NilObjectID || coachID == primitive.NilObjectID {
		return errors.New("workout ID and coach ID are required for deletion")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.workouts[workoutID]
	if !ok || s.workout.CoachID != coachID {
		return repository.ErrNotFound
	}
	delete(r.workouts, workoutID)
	return nil
}
