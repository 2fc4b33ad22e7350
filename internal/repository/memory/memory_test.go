package memory

import (
	"context"
	"testing"
	"time"

	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testKey() domain.SetKey {
	return domain.SetKey{WorkoutID: primitive.NewObjectID(), ExerciseID: "ex-1", AthleteID: primitive.NewObjectID()}
}

func records(n int) []domain.SetRecord {
	out := make([]domain.SetRecord, n)
	for i := range out {
		out[i] = domain.SetRecord{SetNumber: i + 1, Reps: "5"}
	}
	return out
}

func TestSetLogRepository_Replace(t *testing.T) {
	ctx := context.Background()
	repo := NewSetLogRepository()
	key := testKey()

	_, err := repo.Get(ctx, key)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.Replace(ctx, key, 2, records(2)))
	require.NoError(t, repo.Replace(ctx, key, 4, records(4)))

	err = repo.Replace(ctx, key, 3, records(1))
	assert.ErrorIs(t, err, repository.ErrStaleWrite)

	got, err := repo.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.Seq)
	assert.Len(t, got.Sets, 4)
	assert.Equal(t, key, got.Key())

	// unsequenced writes apply and leave seq alone
	require.NoError(t, repo.Replace(ctx, key, 0, records(1)))
	got, err = repo.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.Seq)
	assert.Len(t, got.Sets, 1)
}

func TestSetLogRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewSetLogRepository()
	key := testKey()
	at := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	sets := []domain.SetRecord{{SetNumber: 1, Completed: true, CompletedAt: &at}}
	require.NoError(t, repo.Replace(ctx, key, 0, sets))

	sets[0].Reps = "changed"
	*sets[0].CompletedAt = at.Add(time.Hour)

	got, err := repo.Get(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, got.Sets[0].Reps)
	assert.Equal(t, at, *got.Sets[0].CompletedAt)

	got.Sets[0].Reps = "mutated"
	again, err := repo.Get(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, again.Sets[0].Reps)
}

func TestSetLogRepository_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewSetLogRepository()
	workoutID := primitive.NewObjectID()
	ann, bob := primitive.NewObjectID(), primitive.NewObjectID()

	for _, k := range []domain.SetKey{
		{WorkoutID: workoutID, ExerciseID: "a", AthleteID: ann},
		{WorkoutID: workoutID, ExerciseID: "b", AthleteID: ann},
		{WorkoutID: workoutID, ExerciseID: "a", AthleteID: bob},
		{WorkoutID: primitive.NewObjectID(), ExerciseID: "a", AthleteID: ann},
	} {
		require.NoError(t, repo.Replace(ctx, k, 0, records(1)))
	}

	annLogs, err := repo.ListForAthlete(ctx, workoutID, ann)
	require.NoError(t, err)
	assert.Len(t, annLogs, 2)

	athletes, err := repo.ListAthletesForWorkout(ctx, workoutID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []primitive.ObjectID{ann, bob}, athletes)

	require.NoError(t, repo.DeleteByWorkout(ctx, workoutID))
	athletes, err = repo.ListAthletesForWorkout(ctx, workoutID)
	require.NoError(t, err)
	assert.Empty(t, athletes)
}

func TestWorkoutRepository_ListFilterAndOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewWorkoutRepository()
	coachID := primitive.NewObjectID()
	ann := primitive.NewObjectID()
	teamID := primitive.NewObjectID()

	create := func(name, date string, owner domain.OwnerRef) primitive.ObjectID {
		w := &domain.Workout{CoachID: coachID, Name: name, Date: date}
		w.SetOwner(owner)
		id, err := repo.Create(ctx, w)
		require.NoError(t, err)
		return id
	}
	create("second same day", "2024-01-02", domain.OwnerRef{AthleteID: &ann})
	create("team", "2024-01-02", domain.OwnerRef{TeamID: &teamID})
	create("first", "2024-01-01", domain.OwnerRef{AthleteID: &ann})
	create("template", "", domain.OwnerRef{})
	other := primitive.NewObjectID()
	create("someone else", "2024-01-01", domain.OwnerRef{AthleteID: &other})

	names := func(ws []domain.Workout) []string {
		out := make([]string, len(ws))
		for i, w := range ws {
			out[i] = w.Name
		}
		return out
	}

	got, err := repo.List(ctx, repository.WorkoutFilter{AthleteID: &ann, TeamIDs: []primitive.ObjectID{teamID}})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second same day", "team"}, names(got))

	got, err = repo.List(ctx, repository.WorkoutFilter{AthleteID: &ann})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second same day"}, names(got))

	got, err = repo.List(ctx, repository.WorkoutFilter{CoachID: &coachID, TemplateOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"template"}, names(got))

	got, err = repo.List(ctx, repository.WorkoutFilter{CoachID: &coachID, From: "2024-01-02", To: "2024-01-31"})
	require.NoError(t, err)
	assert.Equal(t, []string{"second same day", "team"}, names(got), "undated templates fall outside every range")
}

func TestWorkoutRepository_UpdateAndDeleteCheckCoach(t *testing.T) {
	ctx := context.Background()
	repo := NewWorkoutRepository()
	coachID := primitive.NewObjectID()

	w := &domain.Workout{CoachID: coachID, Name: "A", Blocks: []domain.Block{{ID: "b", Exercises: []domain.WorkoutExercise{{ID: "e", Name: "Squat"}}}}}
	id, err := repo.Create(ctx, w)
	require.NoError(t, err)

	// the caller's copy is detached from the store
	w.Blocks[0].Exercises[0].Name = "Lunge"
	stored, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Squat", stored.Blocks[0].Exercises[0].Name)

	stored.CoachID = primitive.NewObjectID()
	assert.ErrorIs(t, repo.Update(ctx, stored), repository.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, id, stored.CoachID), repository.ErrNotFound)

	stored.CoachID = coachID
	stored.Name = "B"
	require.NoError(t, repo.Update(ctx, stored))
	reloaded, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "B", reloaded.Name)
	assert.Equal(t, w.CreatedAt, reloaded.CreatedAt)

	require.NoError(t, repo.Delete(ctx, id, coachID))
	_, err = repo.GetByID(ctx, id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_Roster(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	coachID, err := repo.Create(ctx, &domain.User{Name: "Coach", Email: "c@example.com", PasswordHash: "h", Role: domain.RoleCoach})
	require.NoError(t, err)
	athleteID, err := repo.Create(ctx, &domain.User{Name: "Ann", Email: "a@example.com", PasswordHash: "h", Role: domain.RoleAthlete})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.User{Name: "Dup", Email: "a@example.com", PasswordHash: "h", Role: domain.RoleAthlete})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	require.NoError(t, repo.AddAthleteIDToCoach(ctx, coachID, athleteID))
	require.NoError(t, repo.AddAthleteIDToCoach(ctx, coachID, athleteID))
	require.NoError(t, repo.SetCoachForAthlete(ctx, athleteID, coachID))

	athletes, err := repo.GetAthletesByCoachID(ctx, coachID)
	require.NoError(t, err)
	require.Len(t, athletes, 1)
	assert.True(t, athletes[0].CoachedBy(coachID))

	assert.ErrorIs(t, repo.AddAthleteIDToCoach(ctx, athleteID, coachID), repository.ErrNotFound, "only coaches have rosters")
	assert.ErrorIs(t, repo.SetCoachForAthlete(ctx, coachID, athleteID), repository.ErrNotFound)
}

func TestTeamRepository_Members(t *testing.T) {
	ctx := context.Background()
	repo := NewTeamRepository()
	coachID := primitive.NewObjectID()
	ann, bob := primitive.NewObjectID(), primitive.NewObjectID()

	teamID, err := repo.Create(ctx, &domain.Team{CoachID: coachID, Name: "Juniors", MemberIDs: []primitive.ObjectID{ann}})
	require.NoError(t, err)
	require.NoError(t, repo.AddMember(ctx, teamID, bob))
	require.NoError(t, repo.AddMember(ctx, teamID, bob))

	team, err := repo.GetByID(ctx, teamID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{ann, bob}, team.MemberIDs)

	byMember, err := repo.GetByMemberID(ctx, bob)
	require.NoError(t, err)
	require.Len(t, byMember, 1)

	require.NoError(t, repo.RemoveMember(ctx, teamID, ann))
	byMember, err = repo.GetByMemberID(ctx, ann)
	require.NoError(t, err)
	assert.Empty(t, byMember)

	assert.ErrorIs(t, repo.AddMember(ctx, primitive.NewObjectID(), ann), repository.ErrNotFound)
}

func TestCompletionRepository_UpsertKeepsFirstCompletion(t *testing.T) {
	ctx := context.Background()
	repo := NewCompletionRepository()
	workoutID, athleteID := primitive.NewObjectID(), primitive.NewObjectID()
	first := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Upsert(ctx, domain.CompletionMarker{WorkoutID: workoutID, AthleteID: athleteID, CompletedAt: first}))
	require.NoError(t, repo.Upsert(ctx, domain.CompletionMarker{WorkoutID: workoutID, AthleteID: athleteID, CompletedAt: first.Add(time.Hour)}))

	markers, err := repo.ListForAthlete(ctx, athleteID, []primitive.ObjectID{workoutID, primitive.NewObjectID()})
	require.NoError(t, err)
	require.Len(t, markers, 1)
	assert.Equal(t, first, markers[0].CompletedAt)

	require.NoError(t, repo.Delete(ctx, workoutID, athleteID))
	ok, err := repo.Exists(ctx, workoutID, athleteID)
	require.NoError(t, err)
	assert.False(t, ok)
}
