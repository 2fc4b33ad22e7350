package memory

import (
	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/repository"
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// setLogRepository keeps one log per key. Replace runs entirely under the
// write lock, which makes it atomic with respect to every other call.
type setLogRepository struct {
	mu   sync.RWMutex
	logs map[domain.SetKey]*domain.SetLog
}

func NewSetLogRepository() repository.SetLogRepository {
	return &setLogRepository{logs: make(map[domain.SetKey]*domain.SetLog)}
}

func cloneSets(sets []domain.SetRecord) []domain.SetRecord {
	out := make([]domain.SetRecord, len(sets))
	for i, s := range sets {
		out[i] = s
		if s.CompletedAt != nil {
			at := *s.CompletedAt
			out[i].CompletedAt = &at
		}
	}
	return out
}

func cloneLog(l *domain.SetLog) domain.SetLog {
	c := *l
	c.Sets = cloneSets(l.Sets)
	return c
}

func (r *setLogRepository) Get(_ context.Context, key domain.SetKey) (*domain.SetLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.logs[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := cloneLog(l)
	return &c, nil
}

func (r *setLogRepository) ListForAthlete(_ context.Context, workoutID, athleteID primitive.ObjectID) ([]domain.SetLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.SetLog{}
	for key, l := range r.logs {
		if key.WorkoutID == workoutID && key.AthleteID == athleteID {
			out = append(out, cloneLog(l))
		}
	}
	return out, nil
}

func (r *setLogRepository) ListAthletesForWorkout(_ context.Context, workoutID primitive.ObjectID) ([]primitive.ObjectID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[primitive.ObjectID]struct{})
	out := []primitive.ObjectID{}
	for key := range r.logs {
		if key.WorkoutID != workoutID {
			continue
		}
		if _, dup := seen[key.AthleteID]; !dup {
			seen[key.AthleteID] = struct{}{}
			out = append(out, key.AthleteID)
		}
	}
	return out, nil
}

func (r *setLogRepository) Replace(_ context.Context, key domain.SetKey, seq int64, sets []domain.SetRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.logs[key]
	if !ok {
		l = &domain.SetLog{
			ID:         primitive.NewObjectID(),
			WorkoutID:  key.WorkoutID,
			ExerciseID: key.ExerciseID,
			AthleteID:  key.AthleteID,
		}
		r.logs[key] = l
	}
	if seq > 0 {
		if l.Seq > seq {
			return repository.ErrStaleWrite
		}
		l.Seq = seq
	}
	l.Sets = cloneSets(sets)
	l.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *setLogRepository) DeleteByWorkout(_ context.Context, workoutID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.logs {
		if key.WorkoutID == workoutID {
			delete(r.logs, key)
		}
	}
	return nil
}
