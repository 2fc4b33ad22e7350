package memory

import (
	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/repository"
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type uploadRepository struct {
	mu      sync.RWMutex
	uploads map[primitive.ObjectID]domain.Upload
}

func NewUploadRepository() repository.UploadRepository {
	return &uploadRepository{uploads: make(map[primitive.ObjectID]domain.Upload)}
}

func (r *uploadRepository) Create(_ context.Context, upload *domain.Upload) (primitive.ObjectID, error) {
	if upload.ExerciseID == primitive.NilObjectID ||
		upload.CoachID == primitive.NilObjectID ||
		upload.S3ObjectKey == "" {
		return primitive.NilObjectID, errors.New("upload requires exerciseId, coachId, and s3ObjectKey")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.uploads {
		if u.S3ObjectKey == upload.S3ObjectKey {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	upload.ID = primitive.NewObjectID()
	upload.UploadedAt = time.Now().UTC()
	r.uploads[upload.ID] = *upload
	return upload.ID, nil
}

func (r *uploadRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Upload, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.uploads[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *uploadRepository) GetByExerciseID(_ context.Context, exerciseID primitive.ObjectID) ([]domain.Upload, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Upload{}
	for _, u := range r.uploads {
		if u.ExerciseID == exerciseID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}
