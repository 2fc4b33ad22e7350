package domain

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DateLayout is the wire and storage format of workout dates. Dates are
// naive calendar dates: no time component, no timezone.
const DateLayout = "2006-01-02"

// Workout is a dated session made of ordered blocks. It is owned by exactly
// one athlete, one team, or nobody (a template).
type Workout struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	CoachID   primitive.ObjectID  `bson:"coachId" json:"coachId"`                       // Who created the workout
	AthleteID *primitive.ObjectID `bson:"athleteId,omitempty" json:"athleteId,omitempty"` // Set for athlete workouts
	TeamID    *primitive.ObjectID `bson:"teamId,omitempty" json:"teamId,omitempty"`       // Set for team workouts
	Name      string              `bson:"name" json:"name"`
	Date      string              `bson:"date,omitempty" json:"date,omitempty"` // YYYY-MM-DD, may be empty for templates
	Notes     string              `bson:"notes,omitempty" json:"notes,omitempty"`
	Blocks    []Block             `bson:"blocks" json:"blocks"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Block is a named, ordered group of exercises ("Warm-up", "Superset A").
type Block struct {
	ID        string            `bson:"id" json:"id"`
	Name      string            `bson:"name" json:"name"`
	Exercises []WorkoutExercise `bson:"exercises" json:"exercises"`
}

// WorkoutExercise is one prescribed exercise inside a block. Name is free
// text and is matched against the exercise library by exact string.
type WorkoutExercise struct {
	ID           string `bson:"id" json:"id"`
	Name         string `bson:"name" json:"name"`
	TargetSets   int    `bson:"targetSets" json:"targetSets"`
	TargetReps   string `bson:"targetReps" json:"targetReps"` // e.g. "8-10"
	TargetWeight string `bson:"targetWeight,omitempty" json:"targetWeight,omitempty"`
	VideoRef     string `bson:"videoRef,omitempty" json:"videoRef,omitempty"` // URL or storage key
}

// OwnerRef names who a workout belongs to. Both nil means template.
type OwnerRef struct {
	AthleteID *primitive.ObjectID
	TeamID    *primitive.ObjectID
}

// Validate rejects a reference naming both an athlete and a team.
func (o OwnerRef) Validate() error {
	if o.AthleteID != nil && o.TeamID != nil {
		return fmt.Errorf("%w: a workout belongs to an athlete or a team, not both", ErrInvalidInput)
	}
	return nil
}

// IsTemplate reports whether the ref names no owner.
func (o OwnerRef) IsTemplate() bool {
	return o.AthleteID == nil && o.TeamID == nil
}

// IsTemplate reports whether the workout has no owner.
func (w *Workout) IsTemplate() bool {
	return w.Owner().IsTemplate()
}

// Owner returns the workout's owner reference.
func (w *Workout) Owner() OwnerRef {
	return OwnerRef{AthleteID: w.AthleteID, TeamID: w.TeamID}
}

// SetOwner replaces the owner reference.
func (w *Workout) SetOwner(o OwnerRef) {
	w.AthleteID = o.AthleteID
	w.TeamID = o.TeamID
}

// Exercises returns every exercise of every block in document order.
func (w *Workout) Exercises() []WorkoutExercise {
	var out []WorkoutExercise
	for _, b := range w.Blocks {
		out = append(out, b.Exercises...)
	}
	return out
}

// FindExercise looks an exercise up by its identifier.
func (w *Workout) FindExercise(exerciseID string) (*WorkoutExercise, bool) {
	for bi := range w.Blocks {
		for ei := range w.Blocks[bi].Exercises {
			if w.Blocks[bi].Exercises[ei].ID == exerciseID {
				return &w.Blocks[bi].Exercises[ei], true
			}
		}
	}
	return nil, false
}

// ParseDate parses a YYYY-MM-DD calendar date into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidInput, s)
	}
	return t, nil
}

// FormatDate renders the calendar date part of t.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
