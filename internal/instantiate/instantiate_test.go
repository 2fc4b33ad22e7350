package instantiate

import (
	"fmt"
	"testing"

	"alcyxob/coaching-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testTemplate() *domain.Workout {
	return &domain.Workout{
		ID:      primitive.NewObjectID(),
		CoachID: primitive.NewObjectID(),
		Name:    "Full Body A",
		Notes:   "keep rest short",
		Blocks: []domain.Block{
			{ID: "b-warm", Name: "Warm-up", Exercises: []domain.WorkoutExercise{
				{ID: "x-1", Name: "Jumping Jacks", TargetSets: 1, TargetReps: "30"},
				{ID: "x-2", Name: "Hip Circles", TargetSets: 1, TargetReps: "10 each side"},
			}},
			{ID: "b-main", Name: "Main", Exercises: []domain.WorkoutExercise{
				{ID: "x-3", Name: "Squat", TargetSets: 5, TargetReps: "5", TargetWeight: "100kg"},
				{ID: "x-4", Name: "Bench Press", TargetSets: 3, TargetReps: "8-10", VideoRef: "exercises/abc/v.mp4"},
				{ID: "x-5", Name: "Row", TargetSets: 3, TargetReps: "10"},
			}},
		},
	}
}

func allIDs(w *domain.Workout) []string {
	var ids []string
	for _, b := range w.Blocks {
		ids = append(ids, b.ID)
		for _, e := range b.Exercises {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

func counterIDs() IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestBuilder_Workout_CopiesStructure(t *testing.T) {
	src := testTemplate()
	athleteID := primitive.NewObjectID()
	coachID := primitive.NewObjectID()

	b := NewBuilder(nil)
	w := b.Workout(src, Destination{
		CoachID: coachID,
		Owner:   domain.OwnerRef{AthleteID: &athleteID},
		Date:    "2024-03-04",
	})

	assert.True(t, w.ID.IsZero())
	assert.Equal(t, coachID, w.CoachID)
	assert.Equal(t, "Full Body A", w.Name)
	assert.Equal(t, "2024-03-04", w.Date)
	assert.Equal(t, src.Notes, w.Notes)
	require.NotNil(t, w.AthleteID)
	assert.Equal(t, athleteID, *w.AthleteID)
	assert.Nil(t, w.TeamID)

	require.Len(t, w.Blocks, len(src.Blocks))
	for bi, sb := range src.Blocks {
		nb := w.Blocks[bi]
		assert.Equal(t, sb.Name, nb.Name)
		assert.NotEqual(t, sb.ID, nb.ID)
		require.Len(t, nb.Exercises, len(sb.Exercises))
		for ei, se := range sb.Exercises {
			ne := nb.Exercises[ei]
			assert.NotEqual(t, se.ID, ne.ID)
			ne.ID = se.ID
			assert.Equal(t, se, ne, "attributes other than the id are copied")
		}
	}
}

func TestBuilder_Workout_NameOverride(t *testing.T) {
	w := NewBuilder(nil).Workout(testTemplate(), Destination{Name: "Deload"})
	assert.Equal(t, "Deload", w.Name)
	assert.True(t, w.IsTemplate())
}

func TestBuilder_Workout_TwoCopiesAreIsolated(t *testing.T) {
	src := testTemplate()
	srcIDs := allIDs(src)
	athleteX, athleteY := primitive.NewObjectID(), primitive.NewObjectID()

	b := NewBuilder(nil)
	x := b.Workout(src, Destination{Owner: domain.OwnerRef{AthleteID: &athleteX}, Date: "2024-03-04"})
	y := b.Workout(src, Destination{Owner: domain.OwnerRef{AthleteID: &athleteY}, Date: "2024-03-04"})

	xIDs, yIDs := allIDs(&x), allIDs(&y)
	require.Len(t, xIDs, 7)
	require.Len(t, yIDs, 7)

	seen := make(map[string]string)
	for name, ids := range map[string][]string{"source": srcIDs, "x": xIDs, "y": yIDs} {
		for _, id := range ids {
			prev, dup := seen[id]
			assert.False(t, dup, "id %s used by both %s and %s", id, prev, name)
			seen[id] = name
		}
	}

	// mutating one copy leaves the other and the source alone
	x.Blocks[1].Exercises[0].TargetReps = "3"
	x.Blocks[0].Exercises = append(x.Blocks[0].Exercises, domain.WorkoutExercise{ID: "extra", Name: "Plank"})
	*x.AthleteID = primitive.NewObjectID()

	assert.Equal(t, "5", y.Blocks[1].Exercises[0].TargetReps)
	assert.Equal(t, "5", src.Blocks[1].Exercises[0].TargetReps)
	assert.Len(t, y.Blocks[0].Exercises, 2)
	assert.Len(t, src.Blocks[0].Exercises, 2)
	assert.Equal(t, athleteY, *y.AthleteID)
	assert.Equal(t, srcIDs, allIDs(src))
}

func TestBuilder_Workout_OwnerNotAliased(t *testing.T) {
	teamID := primitive.NewObjectID()
	owner := domain.OwnerRef{TeamID: &teamID}
	w := NewBuilder(nil).Workout(testTemplate(), Destination{Owner: owner})

	*owner.TeamID = primitive.NewObjectID()
	require.NotNil(t, w.TeamID)
	assert.NotEqual(t, *owner.TeamID, *w.TeamID)
}

func TestBuilder_SkipsCollidingIDs(t *testing.T) {
	src := testTemplate()
	// the generator first returns ids the source already uses
	queue := []string{"x-1", "b-main", "", "fresh-1", "fresh-2", "fresh-3", "fresh-4", "fresh-5", "fresh-6", "fresh-7"}
	b := NewBuilder(func() string {
		id := queue[0]
		queue = queue[1:]
		return id
	})

	w := b.Workout(src, Destination{})
	assert.Equal(t, []string{"fresh-1", "fresh-2", "fresh-3", "fresh-4", "fresh-5", "fresh-6", "fresh-7"}, allIDs(&w))
}

func TestBuilder_PanicsWhenGeneratorIsStuck(t *testing.T) {
	b := NewBuilder(func() string { return "x-1" })
	assert.Panics(t, func() { b.Workout(testTemplate(), Destination{}) })
}

func TestBuilder_FillIDs(t *testing.T) {
	b := NewBuilder(counterIDs())
	blocks := []domain.Block{
		{ID: "keep", Name: "A", Exercises: []domain.WorkoutExercise{
			{ID: "", Name: "Squat"},
			{ID: "e-1", Name: "Lunge"},
			{ID: "e-1", Name: "Step-up"},
		}},
		{Name: "B", Exercises: []domain.WorkoutExercise{{ID: "keep", Name: "Plank"}}},
	}

	out := b.FillIDs(blocks)
	assert.Equal(t, "keep", out[0].ID)
	assert.Equal(t, "id-1", out[0].Exercises[0].ID)
	assert.Equal(t, "e-1", out[0].Exercises[1].ID)
	assert.Equal(t, "id-2", out[0].Exercises[2].ID)
	assert.Equal(t, "id-3", out[1].ID)
	assert.Equal(t, "id-4", out[1].Exercises[0].ID)
}
