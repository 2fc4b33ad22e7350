package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"alcyxob/coaching-app/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExerciseVideoKey(t *testing.T) {
	key := ExerciseVideoKey("abc", "Squat.MP4", "video/mp4")
	assert.True(t, strings.HasPrefix(key, "exercises/abc/"))
	assert.True(t, strings.HasSuffix(key, ".mp4"))

	key = ExerciseVideoKey("abc", "clip", "video/webm")
	assert.True(t, strings.HasSuffix(key, ".webm"))

	key = ExerciseVideoKey("abc", "clip", "")
	assert.Len(t, strings.TrimPrefix(key, "exercises/abc/"), 36, "bare uuid")

	assert.NotEqual(t, ExerciseVideoKey("abc", "a.mp4", ""), ExerciseVideoKey("abc", "a.mp4", ""))
}

func TestBelongsToExercise(t *testing.T) {
	assert.True(t, BelongsToExercise("exercises/abc/x.mp4", "abc"))
	assert.False(t, BelongsToExercise("exercises/abcd/x.mp4", "abc"))
	assert.False(t, BelongsToExercise("uploads/abc/x.mp4", "abc"))
	assert.False(t, BelongsToExercise("exercises/abc", "abc"))
}

func TestS3Storage_Presign(t *testing.T) {
	ctx := context.Background()
	fs, err := NewS3Storage(ctx, config.S3Config{
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio-secret",
		BucketName:      "videos",
	})
	require.NoError(t, err)

	raw, err := fs.GeneratePresignedUploadURL(ctx, "exercises/abc/v.mp4", "video/mp4", 5*time.Minute)
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/videos/exercises/abc/v.mp4", u.Path, "path-style addressing")
	assert.Equal(t, "300", u.Query().Get("X-Amz-Expires"))

	raw, err = fs.GeneratePresignedDownloadURL(ctx, "exercises/abc/v.mp4", 0)
	require.NoError(t, err)
	u, err = url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"), "falls back to the default expiry")
}
