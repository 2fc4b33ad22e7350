package completion

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SetLogReader is the read side of the set record store.
type SetLogReader interface {
	// Get returns repository.ErrNotFound when the athlete never saved sets
	// for the key.
	Get(ctx context.Context, key domain.SetKey) (*domain.SetLog, error)
	ListForAthlete(ctx context.Context, workoutID, athleteID primitive.ObjectID) ([]domain.SetLog, error)
}

// MarkerStore persists workout completion markers.
type MarkerStore interface {
	// Upsert must be idempotent: re-asserting an existing marker keeps it.
	Upsert(ctx context.Context, marker domain.CompletionMarker) error
	// Delete must treat a missing marker as success.
	Delete(ctx context.Context, workoutID, athleteID primitive.ObjectID) error
}

// WorkoutStatus aggregates every exercise of a workout for one athlete.
type WorkoutStatus struct {
	WorkoutID primitive.ObjectID
	AthleteID primitive.ObjectID
	Complete  bool
	Exercises []ExerciseStatus // document order
}

// ByName indexes exercise statuses by exercise name. A later exercise with
// the same name replaces an earlier one.
func (ws WorkoutStatus) ByName() map[string]ExerciseStatus {
	out := make(map[string]ExerciseStatus, len(ws.Exercises))
	for _, st := range ws.Exercises {
		out[st.Name] = st
	}
	return out
}

// Evaluator reads set logs and maintains completion markers.
type Evaluator struct {
	sets    SetLogReader
	markers MarkerStore
	now     func() time.Time
	locks   *keyedLocks
}

func NewEvaluator(sets SetLogReader, markers MarkerStore) *Evaluator {
	return &Evaluator{
		sets:    sets,
		markers: markers,
		now:     func() time.Time { return time.Now().UTC() },
		locks:   newKeyedLocks(),
	}
}

type markerKey struct {
	workoutID primitive.ObjectID
	athleteID primitive.ObjectID
}

// keyedLocks hands out one mutex per marker key and forgets it once no
// evaluation holds or waits for it.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[markerKey]*keyedLock
}

type keyedLock struct {
	mu      sync.Mutex
	waiters int
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[markerKey]*keyedLock)}
}

func (k *keyedLocks) lock(key markerKey) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.waiters++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.waiters--
		if l.waiters == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// ExerciseStatus evaluates a single exercise of a workout for an athlete.
// It has no side effects.
func (e *Evaluator) ExerciseStatus(ctx context.Context, workout *domain.Workout, exerciseID string, athleteID primitive.ObjectID) (ExerciseStatus, error) {
	ex, ok := workout.FindExercise(exerciseID)
	if !ok {
		return ExerciseStatus{}, fmt.Errorf("exercise %q %w in workout %s", exerciseID, domain.ErrNotFound, workout.ID.Hex())
	}

	var sets []domain.SetRecord
	log, err := e.sets.Get(ctx, domain.SetKey{WorkoutID: workout.ID, ExerciseID: exerciseID, AthleteID: athleteID})
	switch {
	case err == nil:
		sets = log.Sets
	case errors.Is(err, repository.ErrNotFound):
	default:
		return ExerciseStatus{}, err
	}

	st := Classify(sets, ex.TargetReps)
	st.ExerciseID = ex.ID
	st.Name = ex.Name
	return st, nil
}

// WorkoutStatus evaluates every exercise of the workout for the athlete
// without touching the completion marker. A workout is complete iff it has
// at least one exercise and all of them are completed.
func (e *Evaluator) WorkoutStatus(ctx context.Context, workout *domain.Workout, athleteID primitive.ObjectID) (WorkoutStatus, error) {
	logs, err := e.sets.ListForAthlete(ctx, workout.ID, athleteID)
	if err != nil {
		return WorkoutStatus{}, err
	}
	byExercise := make(map[string][]domain.SetRecord, len(logs))
	for _, l := range logs {
		byExercise[l.ExerciseID] = l.Sets
	}

	ws := WorkoutStatus{WorkoutID: workout.ID, AthleteID: athleteID}
	exercises := workout.Exercises()
	ws.Complete = len(exercises) > 0
	for _, ex := range exercises {
		st := Classify(byExercise[ex.ID], ex.TargetReps)
		st.ExerciseID = ex.ID
		st.Name = ex.Name
		if st.Status != StatusCompleted {
			ws.Complete = false
		}
		ws.Exercises = append(ws.Exercises, st)
	}
	return ws, nil
}

// Evaluate recomputes the workout status and brings the completion marker in
// line with it: upserted when complete, deleted otherwise. Callers run it
// synchronously after the last set write of a mutation.
//
// Evaluations of the same (workout, athlete) pair are serialized within the
// process. An upsert is followed by a second read, and the marker is removed
// again if a concurrent save from another process uncompleted the workout in
// between.
func (e *Evaluator) Evaluate(ctx context.Context, workout *domain.Workout, athleteID primitive.ObjectID) (WorkoutStatus, error) {
	unlock := e.locks.lock(markerKey{workoutID: workout.ID, athleteID: athleteID})
	defer unlock()

	ws, err := e.WorkoutStatus(ctx, workout, athleteID)
	if err != nil {
		return WorkoutStatus{}, err
	}
	if !ws.Complete {
		if err = e.markers.Delete(ctx, workout.ID, athleteID); err != nil {
			return WorkoutStatus{}, fmt.Errorf("sync completion marker: %w", err)
		}
		return ws, nil
	}

	err = e.markers.Upsert(ctx, domain.CompletionMarker{
		WorkoutID:   workout.ID,
		AthleteID:   athleteID,
		CompletedAt: e.now(),
	})
	if err != nil {
		return WorkoutStatus{}, fmt.Errorf("sync completion marker: %w", err)
	}

	recheck, err := e.WorkoutStatus(ctx, workout, athleteID)
	if err != nil {
		return WorkoutStatus{}, err
	}
	if !recheck.Complete {
		if err = e.markers.Delete(ctx, workout.ID, athleteID); err != nil {
			return WorkoutStatus{}, fmt.Errorf("sync completion marker: %w", err)
		}
	}
	return recheck, nil
}
