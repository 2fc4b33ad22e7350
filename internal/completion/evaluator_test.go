package completion

import (
	"context"
	"sync"
	"testing"

	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/repository"
	"alcyxob/coaching-app/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type evaluatorFixture struct {
	sets      repository.SetLogRepository
	markers   repository.CompletionRepository
	evaluator *Evaluator
	workout   *domain.Workout
	athleteID primitive.ObjectID
}

func newEvaluatorFixture() *evaluatorFixture {
	sets := memory.NewSetLogRepository()
	markers := memory.NewCompletionRepository()
	athleteID := primitive.NewObjectID()
	return &evaluatorFixture{
		sets:      sets,
		markers:   markers,
		evaluator: NewEvaluator(sets, markers),
		athleteID: athleteID,
		workout: &domain.Workout{
			ID:        primitive.NewObjectID(),
			AthleteID: &athleteID,
			Name:      "Upper",
			Date:      "2024-01-01",
			Blocks: []domain.Block{
				{ID: "b1", Name: "Main", Exercises: []domain.WorkoutExercise{
					{ID: "e1", Name: "Bench Press", TargetSets: 3, TargetReps: "8"},
					{ID: "e2", Name: "Row", TargetSets: 3, TargetReps: "10"},
				}},
			},
		},
	}
}

func (f *evaluatorFixture) save(t *testing.T, exerciseID string, completed ...bool) {
	t.Helper()
	key := domain.SetKey{WorkoutID: f.workout.ID, ExerciseID: exerciseID, AthleteID: f.athleteID}
	require.NoError(t, f.sets.Replace(context.Background(), key, 0, sets(completed...)))
}

func (f *evaluatorFixture) markerExists(t *testing.T) bool {
	t.Helper()
	ok, err := f.markers.Exists(context.Background(), f.workout.ID, f.athleteID)
	require.NoError(t, err)
	return ok
}

func TestEvaluator_WorkoutStatus_NotStarted(t *testing.T) {
	f := newEvaluatorFixture()

	ws, err := f.evaluator.WorkoutStatus(context.Background(), f.workout, f.athleteID)
	require.NoError(t, err)
	assert.False(t, ws.Complete)
	require.Len(t, ws.Exercises, 2)
	for _, st := range ws.Exercises {
		assert.Equal(t, StatusNotStarted, st.Status)
	}
	assert.False(t, f.markerExists(t), "reading status must not write a marker")
}

func TestEvaluator_Evaluate_CompleteThenAddSet(t *testing.T) {
	ctx := context.Background()
	f := newEvaluatorFixture()

	f.save(t, "e1", true, true, true)
	f.save(t, "e2", true, true, true)
	ws, err := f.evaluator.Evaluate(ctx, f.workout, f.athleteID)
	require.NoError(t, err)
	assert.True(t, ws.Complete)
	assert.True(t, f.markerExists(t))

	// a fourth, unchecked set reopens the exercise and the workout
	f.save(t, "e1", true, true, true, false)
	ws, err = f.evaluator.Evaluate(ctx, f.workout, f.athleteID)
	require.NoError(t, err)
	assert.False(t, ws.Complete)
	assert.False(t, f.markerExists(t))

	byName := ws.ByName()
	assert.Equal(t, StatusInProgress, byName["Bench Press"].Status)
	assert.Equal(t, 3, byName["Bench Press"].CompletedSetCount)
	assert.Equal(t, 4, byName["Bench Press"].TotalSetCount)
	assert.Equal(t, StatusCompleted, byName["Row"].Status)
}

func TestEvaluator_Evaluate_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newEvaluatorFixture()
	f.save(t, "e1", true)
	f.save(t, "e2", true)

	for i := 0; i < 3; i++ {
		ws, err := f.evaluator.Evaluate(ctx, f.workout, f.athleteID)
		require.NoError(t, err)
		assert.True(t, ws.Complete)
	}
	assert.True(t, f.markerExists(t))

	f.save(t, "e2", false)
	for i := 0; i < 2; i++ {
		_, err := f.evaluator.Evaluate(ctx, f.workout, f.athleteID)
		require.NoError(t, err)
	}
	assert.False(t, f.markerExists(t))
}

func TestEvaluator_EmptyWorkoutNeverComplete(t *testing.T) {
	f := newEvaluatorFixture()
	f.workout.Blocks = []domain.Block{{ID: "b1", Name: "Empty"}}

	ws, err := f.evaluator.Evaluate(context.Background(), f.workout, f.athleteID)
	require.NoError(t, err)
	assert.False(t, ws.Complete)
	assert.Empty(t, ws.Exercises)
	assert.False(t, f.markerExists(t))
}

func TestEvaluator_AthletesAreIndependent(t *testing.T) {
	ctx := context.Background()
	f := newEvaluatorFixture()
	f.save(t, "e1", true)
	f.save(t, "e2", true)

	other := primitive.NewObjectID()
	ws, err := f.evaluator.WorkoutStatus(ctx, f.workout, other)
	require.NoError(t, err)
	assert.False(t, ws.Complete)

	ws, err = f.evaluator.WorkoutStatus(ctx, f.workout, f.athleteID)
	require.NoError(t, err)
	assert.True(t, ws.Complete)
}

func TestEvaluator_ExerciseStatus(t *testing.T) {
	ctx := context.Background()
	f := newEvaluatorFixture()
	f.save(t, "e2", true, false)

	st, err := f.evaluator.ExerciseStatus(ctx, f.workout, "e2", f.athleteID)
	require.NoError(t, err)
	assert.Equal(t, "Row", st.Name)
	assert.Equal(t, StatusInProgress, st.Status)

	_, err = f.evaluator.ExerciseStatus(ctx, f.workout, "missing", f.athleteID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWorkoutStatus_ByNameLaterDuplicateWins(t *testing.T) {
	ws := WorkoutStatus{Exercises: []ExerciseStatus{
		{ExerciseID: "a", Name: "Squat", Status: StatusCompleted},
		{ExerciseID: "b", Name: "Squat", Status: StatusNotStarted},
	}}
	byName := ws.ByName()
	require.Len(t, byName, 1)
	assert.Equal(t, "b", byName["Squat"].ExerciseID)
}

// pausingReader blocks the first ListForAthlete call after it has read the
// logs, until release is closed.
type pausingReader struct {
	SetLogReader

	once    sync.Once
	paused  chan struct{}
	release chan struct{}
}

func newPausingReader(inner SetLogReader) *pausingReader {
	return &pausingReader{
		SetLogReader: inner,
		paused:       make(chan struct{}),
		release:      make(chan struct{}),
	}
}

func (r *pausingReader) ListForAthlete(ctx context.Context, workoutID, athleteID primitive.ObjectID) ([]domain.SetLog, error) {
	logs, err := r.SetLogReader.ListForAthlete(ctx, workoutID, athleteID)
	r.once.Do(func() {
		close(r.paused)
		<-r.release
	})
	return logs, err
}

func (f *evaluatorFixture) assertMarkerMatchesFreshEvaluation(t *testing.T) {
	t.Helper()
	fresh, err := NewEvaluator(f.sets, f.markers).WorkoutStatus(context.Background(), f.workout, f.athleteID)
	require.NoError(t, err)
	assert.False(t, fresh.Complete)
	assert.Equal(t, fresh.Complete, f.markerExists(t))
}

func TestEvaluator_Evaluate_ConcurrentSavesSameProcess(t *testing.T) {
	ctx := context.Background()
	f := newEvaluatorFixture()
	f.save(t, "e1", true, true)
	f.save(t, "e2", true, true)

	reader := newPausingReader(f.sets)
	evaluator := NewEvaluator(reader, f.markers)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := evaluator.Evaluate(ctx, f.workout, f.athleteID)
		assert.NoError(t, err)
	}()
	<-reader.paused

	// the first evaluation has seen a complete workout; another save
	// unchecks a set on a different exercise and evaluates too
	f.save(t, "e2", true, false)
	go func() {
		defer wg.Done()
		ws, err := evaluator.Evaluate(ctx, f.workout, f.athleteID)
		assert.NoError(t, err)
		assert.False(t, ws.Complete)
	}()
	close(reader.release)
	wg.Wait()

	f.assertMarkerMatchesFreshEvaluation(t)
	assert.Empty(t, evaluator.locks.locks, "locks are released")
}

func TestEvaluator_Evaluate_ConcurrentSavesAcrossProcesses(t *testing.T) {
	ctx := context.Background()
	f := newEvaluatorFixture()
	f.save(t, "e1", true, true)
	f.save(t, "e2", true, true)

	reader := newPausingReader(f.sets)
	first := NewEvaluator(reader, f.markers)
	second := NewEvaluator(f.sets, f.markers)

	done := make(chan WorkoutStatus)
	go func() {
		ws, err := first.Evaluate(ctx, f.workout, f.athleteID)
		assert.NoError(t, err)
		done <- ws
	}()
	<-reader.paused

	f.save(t, "e2", true, false)
	ws, err := second.Evaluate(ctx, f.workout, f.athleteID)
	require.NoError(t, err)
	assert.False(t, ws.Complete)
	assert.False(t, f.markerExists(t))

	close(reader.release)
	ws = <-done
	assert.False(t, ws.Complete, "the late upsert is re-checked")

	f.assertMarkerMatchesFreshEvaluation(t)
}
