package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

var ErrObjectNotFound = errors.New("object not found in storage")

// FileStorage defines the interface for object storage operations.
type FileStorage interface {
	// GeneratePresignedUploadURL creates a temporary URL that allows PUT requests
	// for uploading an object directly to the storage provider.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading/viewing an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// ObjectSize returns the stored size of an object, or ErrObjectNotFound.
	ObjectSize(ctx context.Context, objectKey string) (int64, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}

// ExerciseVideoKey builds a fresh object key for a library exercise video.
// The extension comes from the file name, or from the content subtype
// ("video/mp4" -> ".mp4") when the name has none.
func ExerciseVideoKey(exerciseID, fileName, contentType string) string {
	ext := strings.ToLower(path.Ext(fileName))
	if ext == "" {
		if parts := strings.Split(contentType, "/"); len(parts) == 2 && parts[1] != "" {
			ext = "." + strings.ToLower(parts[1])
		}
	}
	return fmt.Sprintf("exercises/%s/%s%s", exerciseID, uuid.NewString(), ext)
}

// BelongsToExercise reports whether objectKey was issued for the exercise.
func BelongsToExercise(objectKey, exerciseID string) bool {
	return strings.HasPrefix(objectKey, "exercises/"+exerciseID+"/")
}
