package repository

import (
	"alcyxob/coaching-app/internal/domain" // Import our defined domain models
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive" // For using ObjectIDs
)

// Error constants for repository layer
var (
	ErrNotFound   = RepositoryError("not found")
	ErrDuplicate  = RepositoryError("duplicate key")
	ErrStaleWrite = RepositoryError("stale write: a newer write was already applied")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	AddAthleteIDToCoach(ctx context.Context, coachID, athleteID primitive.ObjectID) error
	GetAthletesByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error)
	SetCoachForAthlete(ctx context.Context, athleteID, coachID primitive.ObjectID) error
}

// TeamRepository defines the interface for interacting with team data.
type TeamRepository interface {
	Create(ctx context.Context, team *domain.Team) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Team, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Team, error)
	GetByMemberID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.Team, error)
	AddMember(ctx context.Context, teamID, athleteID primitive.ObjectID) error
	RemoveMember(ctx context.Context, teamID, athleteID primitive.ObjectID) error
}

// ExerciseRepository defines the interface for the exercise library.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Exercise, error)
	GetByName(ctx context.Context, coachID primitive.ObjectID, name string) (*domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id primitive.ObjectID, coachID primitive.ObjectID) error // Ensure coach owns the exercise
}

// UploadRepository defines the interface for interacting with upload metadata.
type UploadRepository interface {
	Create(ctx context.Context, upload *domain.Upload) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Upload, error)
	GetByExerciseID(ctx context.Context, exerciseID primitive.ObjectID) ([]domain.Upload, error)
}

// WorkoutFilter narrows workout listings. Zero fields do not filter.
type WorkoutFilter struct {
	CoachID      *primitive.ObjectID
	AthleteID    *primitive.ObjectID
	TeamIDs      []primitive.ObjectID // matched together with AthleteID as "owned by the athlete or one of these teams"
	TemplateOnly bool
	From, To     string // inclusive YYYY-MM-DD bounds
}

// WorkoutRepository defines the interface for interacting with workout data.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	List(ctx context.Context, filter WorkoutFilter) ([]domain.Workout, error)
	Update(ctx context.Context, workout *domain.Workout) error
	Delete(ctx context.Context, workoutID primitive.ObjectID, coachID primitive.ObjectID) error
}

// SetLogRepository is the set record store. A write replaces the whole set
// list of a (workout, exercise, athlete) key in one atomic step.
type SetLogRepository interface {
	Get(ctx context.Context, key domain.SetKey) (*domain.SetLog, error)
	ListForAthlete(ctx context.Context, workoutID, athleteID primitive.ObjectID) ([]domain.SetLog, error)
	ListAthletesForWorkout(ctx context.Context, workoutID primitive.ObjectID) ([]primitive.ObjectID, error)
	// Replace stores sets for the key unless a write with a higher seq was
	// already applied, in which case it returns ErrStaleWrite. seq 0 always
	// applies and keeps the stored seq.
	Replace(ctx context.Context, key domain.SetKey, seq int64, sets []domain.SetRecord) error
	DeleteByWorkout(ctx context.Context, workoutID primitive.ObjectID) error
}

// CompletionRepository stores workout completion markers.
type CompletionRepository interface {
	Upsert(ctx context.Context, marker domain.CompletionMarker) error
	Delete(ctx context.Context, workoutID, athleteID primitive.ObjectID) error
	Exists(ctx context.Context, workoutID, athleteID primitive.ObjectID) (bool, error)
	ListForAthlete(ctx context.Context, athleteID primitive.ObjectID, workoutIDs []primitive.ObjectID) ([]domain.CompletionMarker, error)
	DeleteByWorkout(ctx context.Context, workoutID primitive.ObjectID) error
}
