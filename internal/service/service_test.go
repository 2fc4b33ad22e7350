package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/metrics"
	"alcyxob/coaching-app/internal/repository/memory"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/goleak"
)

// TestMain will run goleak after all tests have been run in the package
// to detect any goroutine leaks
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	repos     Repositories
	metrics   *metrics.Manager
	registry  *prometheus.Registry
	storage   *fakeStorage
	coach     CoachService
	athlete   AthleteService
	exercises ExerciseService

	coachID primitive.ObjectID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	m, reg := metrics.NewTestManagerAndRegistry()
	f := &fixture{
		repos: Repositories{
			Users:       memory.NewUserRepository(),
			Teams:       memory.NewTeamRepository(),
			Workouts:    memory.NewWorkoutRepository(),
			Exercises:   memory.NewExerciseRepository(),
			Uploads:     memory.NewUploadRepository(),
			SetLogs:     memory.NewSetLogRepository(),
			Completions: memory.NewCompletionRepository(),
		},
		metrics:  m,
		registry: reg,
		storage:  newFakeStorage(),
	}
	f.build()
	f.coachID = f.createUser(t, domain.RoleCoach, "coach@example.com")
	return f
}

// build wires the services on top of the current repositories.
func (f *fixture) build() {
	f.exercises = NewExerciseService(f.repos.Exercises, f.repos.Uploads, f.storage, time.Minute)
	f.coach = NewCoachService(f.repos, f.metrics, ScheduleOptions{MaxWeeks: 8, CopyConcurrency: 3})
	f.athlete = NewAthleteService(f.repos, f.exercises, f.metrics)
}

func (f *fixture) createUser(t *testing.T, role domain.Role, email string) primitive.ObjectID {
	t.Helper()
	id, err := f.repos.Users.Create(context.Background(), &domain.User{
		Name:         strings.Split(email, "@")[0],
		Email:        email,
		PasswordHash: "hash",
		Role:         role,
	})
	require.NoError(t, err)
	return id
}

// managedAthlete registers an athlete and puts them on the fixture coach's roster.
func (f *fixture) managedAthlete(t *testing.T, email string) primitive.ObjectID {
	t.Helper()
	id := f.createUser(t, domain.RoleAthlete, email)
	_, err := f.coach.AddAthleteByEmail(context.Background(), f.coachID, email)
	require.NoError(t, err)
	return id
}

func twoExerciseBlocks() []domain.Block {
	return []domain.Block{{Name: "Main", Exercises: []domain.WorkoutExercise{
		{Name: "Bench Press", TargetSets: 3, TargetReps: "8"},
		{Name: "Row", TargetSets: 3, TargetReps: "10"},
	}}}
}

func templateBlocks() []domain.Block {
	return []domain.Block{
		{Name: "Warm-up", Exercises: []domain.WorkoutExercise{
			{Name: "Jumping Jacks", TargetSets: 1, TargetReps: "30"},
			{Name: "Hip Circles", TargetSets: 1, TargetReps: "10"},
		}},
		{Name: "Main", Exercises: []domain.WorkoutExercise{
			{Name: "Squat", TargetSets: 5, TargetReps: "5"},
			{Name: "Bench Press", TargetSets: 3, TargetReps: "8-10"},
			{Name: "Row", TargetSets: 3, TargetReps: "10"},
		}},
	}
}

func (f *fixture) athleteWorkout(t *testing.T, athleteID primitive.ObjectID, date string) *domain.Workout {
	t.Helper()
	w, err := f.coach.CreateWorkout(context.Background(), f.coachID, WorkoutInput{
		Name:   "Upper " + date,
		Date:   date,
		Owner:  domain.OwnerRef{AthleteID: &athleteID},
		Blocks: twoExerciseBlocks(),
	})
	require.NoError(t, err)
	return w
}

func exerciseIDs(w *domain.Workout) []string {
	var ids []string
	for _, ex := range w.Exercises() {
		ids = append(ids, ex.ID)
	}
	return ids
}

func checked(completed ...bool) []SetInput {
	out := make([]SetInput, len(completed))
	for i, c := range completed {
		out[i] = SetInput{Weight: "60", Reps: "8", Completed: c}
	}
	return out
}

// counterValue sums a counter family whose name ends with suffix, limited to
// series carrying every given label.
func counterValue(t *testing.T, reg *prometheus.Registry, suffix string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	total := 0.0
	for _, mf := range families {
		if !strings.HasSuffix(mf.GetName(), suffix) {
			continue
		}
	series:
		for _, m := range mf.GetMetric() {
			for name, value := range labels {
				found := false
				for _, lp := range m.GetLabel() {
					if lp.GetName() == name && lp.GetValue() == value {
						found = true
					}
				}
				if !found {
					continue series
				}
			}
			total += m.GetCounter().GetValue()
		}
	}
	return total
}
