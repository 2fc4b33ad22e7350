package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Upload stores metadata about a video uploaded by a coach for a library
// exercise. The actual file resides in S3.
type Upload struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ExerciseID  primitive.ObjectID `bson:"exerciseId" json:"exerciseId"` // Library exercise the video demonstrates
	CoachID     primitive.ObjectID `bson:"coachId" json:"coachId"`
	S3ObjectKey string             `bson:"s3ObjectKey" json:"-"` // Key in the bucket, internal use
	FileName    string             `bson:"fileName" json:"fileName"`
	ContentType string             `bson:"contentType" json:"contentType"` // MIME type (e.g., "video/mp4")
	Size        int64              `bson:"size" json:"size"`
	UploadedAt  time.Time          `bson:"uploadedAt" json:"uploadedAt"`
}
