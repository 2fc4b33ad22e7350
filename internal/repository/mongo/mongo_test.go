package mongo

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/repository"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoIntegrationSuite runs the repositories against a throwaway MongoDB
// container. It is skipped in short mode or when no Docker daemon is reachable.
type MongoIntegrationSuite struct {
	suite.Suite

	pool     *dockertest.Pool
	resource *dockertest.Resource
	client   *mongo.Client
	db       *mongo.Database
}

func TestMongoIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mongo integration suite in short mode")
	}
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("could not create dockertest pool: %s", err)
	}
	if err = pool.Client.Ping(); err != nil {
		t.Skipf("docker is not available: %s", err)
	}
	suite.Run(t, &MongoIntegrationSuite{pool: pool})
}

func (s *MongoIntegrationSuite) SetupSuite() {
	var err error
	s.resource, err = s.pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mongo",
		Tag:        "7",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
	})
	s.Require().NoError(err, "run mongo")

	uri := fmt.Sprintf("mongodb://localhost:%s", s.resource.GetPort("27017/tcp"))
	s.pool.MaxWait = time.Minute
	err = s.pool.Retry(func() error {
		s.client, err = ConnectDB(uri)
		return err
	})
	s.Require().NoError(err, "connect to mongo")
}

func (s *MongoIntegrationSuite) TearDownSuite() {
	if s.client != nil {
		_ = DisconnectDB(s.client)
	}
	if s.resource != nil {
		_ = s.pool.Purge(s.resource)
	}
}

// SetupTest gives every test a fresh database.
func (s *MongoIntegrationSuite) SetupTest() {
	s.db = s.client.Database("coaching_test_" + primitive.NewObjectID().Hex())
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s.Require().NoError(EnsureIndexes(ctx, s.db))
}

func (s *MongoIntegrationSuite) TearDownTest() {
	_ = s.db.Drop(context.Background())
}

func newKey() domain.SetKey {
	return domain.SetKey{WorkoutID: primitive.NewObjectID(), ExerciseID: "ex-1", AthleteID: primitive.NewObjectID()}
}

func (s *MongoIntegrationSuite) TestSetLogReplace() {
	ctx := context.Background()
	repo := NewMongoSetLogRepository(s.db)
	key := newKey()

	sets := func(n int) []domain.SetRecord {
		out := make([]domain.SetRecord, n)
		for i := range out {
			out[i] = domain.SetRecord{SetNumber: i + 1, Reps: "5", Completed: true}
		}
		return out
	}

	s.Require().NoError(repo.Replace(ctx, key, 2, sets(2)))
	s.Require().NoError(repo.Replace(ctx, key, 4, sets(4)))
	s.ErrorIs(repo.Replace(ctx, key, 3, sets(1)), repository.ErrStaleWrite)
	s.Require().NoError(repo.Replace(ctx, key, 0, sets(3)))

	got, err := repo.Get(ctx, key)
	s.Require().NoError(err)
	s.Equal(int64(4), got.Seq)
	s.Len(got.Sets, 3)

	athletes, err := repo.ListAthletesForWorkout(ctx, key.WorkoutID)
	s.Require().NoError(err)
	s.Equal([]primitive.ObjectID{key.AthleteID}, athletes)

	s.Require().NoError(repo.DeleteByWorkout(ctx, key.WorkoutID))
	_, err = repo.Get(ctx, key)
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *MongoIntegrationSuite) TestSetLogConcurrentFirstWrites() {
	ctx := context.Background()
	repo := NewMongoSetLogRepository(s.db)
	key := newKey()

	const writers = 10
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 1; i <= writers; i++ {
		wg.Add(1)
		go func(seq int) {
			defer wg.Done()
			errs <- repo.Replace(ctx, key, int64(seq), make([]domain.SetRecord, seq))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			s.ErrorIs(err, repository.ErrStaleWrite)
		}
	}

	got, err := repo.Get(ctx, key)
	s.Require().NoError(err)
	s.Equal(int64(writers), got.Seq)
	s.Len(got.Sets, writers)
}

func (s *MongoIntegrationSuite) TestWorkoutsAndMarkers() {
	ctx := context.Background()
	workouts := NewMongoWorkoutRepository(s.db)
	markers := NewMongoCompletionRepository(s.db)

	coachID, athleteID := primitive.NewObjectID(), primitive.NewObjectID()
	w := &domain.Workout{CoachID: coachID, Name: "Upper", Date: "2024-01-02"}
	w.SetOwner(domain.OwnerRef{AthleteID: &athleteID})
	id, err := workouts.Create(ctx, w)
	s.Require().NoError(err)
	_, err = workouts.Create(ctx, &domain.Workout{CoachID: coachID, Name: "Template"})
	s.Require().NoError(err)

	list, err := workouts.List(ctx, repository.WorkoutFilter{AthleteID: &athleteID, From: "2024-01-01", To: "2024-01-31"})
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(id, list[0].ID)

	templates, err := workouts.List(ctx, repository.WorkoutFilter{CoachID: &coachID, TemplateOnly: true})
	s.Require().NoError(err)
	s.Require().Len(templates, 1)
	s.Equal("Template", templates[0].Name)

	marker := domain.CompletionMarker{WorkoutID: id, AthleteID: athleteID, CompletedAt: time.Now().UTC()}
	s.Require().NoError(markers.Upsert(ctx, marker))
	s.Require().NoError(markers.Upsert(ctx, marker))
	done, err := markers.Exists(ctx, id, athleteID)
	s.Require().NoError(err)
	s.True(done)

	s.Require().NoError(markers.DeleteByWorkout(ctx, id))
	done, err = markers.Exists(ctx, id, athleteID)
	s.Require().NoError(err)
	s.False(done)
}
