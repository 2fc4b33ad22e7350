// internal/domain/exercise.go
package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise represents a single exercise definition in a coach's library.
// Workout exercises refer to it by exact name.
type Exercise struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID     primitive.ObjectID `bson:"coachId" json:"coachId"` // Coach who owns this library entry
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`

	MuscleGroup      string `bson:"muscleGroup,omitempty" json:"muscleGroup,omitempty"`           // e.g., "Chest", "Legs", "Back"
	ExecutionTechnic string `bson:"executionTechnic,omitempty" json:"executionTechnic,omitempty"` // Detailed instructions
	Difficulty       string `bson:"difficulty,omitempty" json:"difficulty,omitempty"`             // e.g., "Novice", "Medium", "Advanced"
	// VideoRef is either an absolute URL or an object key in file storage.
	VideoRef string `bson:"videoRef,omitempty" json:"videoRef,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IsExternalVideo reports whether a video reference is a URL rather than a
// storage key.
func IsExternalVideo(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
