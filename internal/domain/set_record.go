package domain

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SetRecord is one athlete's logged attempt at one numbered set of one
// exercise within one workout instance.
type SetRecord struct {
	ID          string     `bson:"id" json:"id"`
	SetNumber   int        `bson:"setNumber" json:"setNumber"` // 1-based, contiguous
	Weight      string     `bson:"weight" json:"weight"`
	Reps        string     `bson:"reps" json:"reps"`
	Completed   bool       `bson:"completed" json:"completed"`
	CompletedAt *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

// SetRecordID derives the record identifier from its key. At most one live
// record exists per (workout, exercise, athlete, set number).
func SetRecordID(workoutID primitive.ObjectID, exerciseID string, athleteID primitive.ObjectID, setNumber int) string {
	return fmt.Sprintf("%s:%s:%s:%d", workoutID.Hex(), exerciseID, athleteID.Hex(), setNumber)
}

// SetKey identifies the set list of one athlete for one exercise of one workout.
type SetKey struct {
	WorkoutID  primitive.ObjectID
	ExerciseID string
	AthleteID  primitive.ObjectID
}

// SetLog holds the full set list for a SetKey. Writes replace Sets as a whole;
// Seq is the write-intent sequence number of the last applied write.
type SetLog struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	WorkoutID  primitive.ObjectID `bson:"workoutId" json:"workoutId"`
	ExerciseID string             `bson:"exerciseId" json:"exerciseId"`
	AthleteID  primitive.ObjectID `bson:"athleteId" json:"athleteId"`
	Sets       []SetRecord        `bson:"sets" json:"sets"`
	Seq        int64              `bson:"seq" json:"seq"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Key returns the log's key triple.
func (l *SetLog) Key() SetKey {
	return SetKey{WorkoutID: l.WorkoutID, ExerciseID: l.ExerciseID, AthleteID: l.AthleteID}
}

// CompletionMarker exists iff the workout was last evaluated fully complete
// for the athlete. It is derived data and can be rebuilt from set logs.
type CompletionMarker struct {
	WorkoutID   primitive.ObjectID `bson:"workoutId" json:"workoutId"`
	AthleteID   primitive.ObjectID `bson:"athleteId" json:"athleteId"`
	CompletedAt time.Time          `bson:"completedAt" json:"completedAt"`
}
