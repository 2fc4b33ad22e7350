package memory

import (
	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/repository"
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type markerKey struct {
	workoutID primitive.ObjectID
	athleteID primitive.ObjectID
}

type completionRepository struct {
	mu      sync.RWMutex
	markers map[markerKey]domain.CompletionMarker
}

func NewCompletionRepository() repository.CompletionRepository {
	return &completionRepository{markers: make(map[markerKey]domain.CompletionMarker)}
}

// Upsert keeps the completedAt of an existing marker.
func (r *completionRepository) Upsert(_ context.Context, marker domain.CompletionMarker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := markerKey{marker.WorkoutID, marker.AthleteID}
	if _, ok := r.markers[k]; !ok {
		r.markers[k] = marker
	}
	return nil
}

func (r *completionRepository) Delete(_ context.Context, workoutID, athleteID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.markers, markerKey{workoutID, athleteID})
	return nil
}

func (r *completionRepository) Exists(_ context.Context, workoutID, athleteID primitive.ObjectID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.markers[markerKey{workoutID, athleteID}]
	return ok, nil
}

func (r *completionRepository) ListForAthlete(_ context.Context, athleteID primitive.ObjectID, workoutIDs []primitive.ObjectID) ([]domain.CompletionMarker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.CompletionMarker{}
	for _, wid := range workoutIDs {
		if m, ok := r.markers[markerKey{wid, athleteID}]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *completionRepository) DeleteByWorkout(_ context.Context, workoutID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k := range r.markers {
		if k.workoutID == workoutID {
			delete(r.markers, k)
		}
	}
	return nil
}
