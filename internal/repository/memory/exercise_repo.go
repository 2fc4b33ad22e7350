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

type exerciseRepository struct {
	mu        sync.RWMutex
	exercises map[primitive.ObjectID]domain.Exercise
}

func NewExerciseRepository() repository.ExerciseRepository {
	return &exerciseRepository{exercises: make(map[primitive.ObjectID]domain.Exercise)}
}

// nameTaken mirrors the unique (coachId, name) index. Caller holds the lock.
func (r *exerciseRepository) nameTaken(coachID primitive.ObjectID, name string, except primitive.ObjectID) bool {
	for id, e := range r.exercises {
		if id != except && e.CoachID == coachID && e.Name == name {
			return true
		}
	}
	return false
}

func (r *exerciseRepository) Create(_ context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.Name == "" || exercise.CoachID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("exercise name and coach ID are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.nameTaken(exercise.CoachID, exercise.Name, primitive.NilObjectID) {
		return primitive.NilObjectID, repository.ErrDuplicate
	}
	exercise.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now
	r.exercises[exercise.ID] = *exercise
	return exercise.ID, nil
}

func (r *exerciseRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r *exerciseRepository) GetByName(_ context.Context, coachID primitive.ObjectID, name string) (*domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.exercises {
		if e.CoachID == coachID && e.Name == name {
			found := e
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *exerciseRepository) GetByCoachID(_ context.Context, coachID primitive.ObjectID) ([]domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Exercise{}
	for _, e := range r.exercises {
		if e.CoachID == coachID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *exerciseRepository) Update(_ context.Context, exercise *domain.Exercise) error {
	if exercise.ID == primitive.NilObjectID {
		return errors.New("exercise ID is required for update")
	}
	if exercise.Name == "" {
		return errors.New("exercise name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.exercises[exercise.ID]
	if !ok || stored.CoachID != exercise.CoachID {
		return repository.ErrNotFound
	}
	if r.nameTaken(exercise.CoachID, exercise.Name, exercise.ID) {
		return repository.ErrDuplicate
	}
	stored.Name = exercise.Name
	stored.Description = exercise.Description
	stored.MuscleGroup = exercise.MuscleGroup
	stored.ExecutionTechnic = exercise.ExecutionTechnic
	stored.Difficulty = exercise.Difficulty
	stored.VideoRef = exercise.VideoRef
	stored.UpdatedAt = time.Now().UTC()
	r.exercises[exercise.ID] = stored
	return nil
}

func (r *exerciseRepository) Delete(_ context.Context, id primitive.ObjectID, coachID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.exercises[id]
	if !ok || e.CoachID != coachID {
		return repository.ErrNotFound
	}
	delete(r.exercises, id)
	return nil
}
