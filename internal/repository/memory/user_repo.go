// Package memory holds map-backed implementations of the repository
// interfaces. They serve the "memory" database driver and service tests.
// Every value crossing the boundary is copied, so callers never share
// state with the store.
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

type userRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]*domain.User
}

func NewUserRepository() repository.UserRepository {
	return &userRepository{users: make(map[primitive.ObjectID]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.AthleteIDs = append([]primitive.ObjectID(nil), u.AthleteIDs...)
	if u.CoachID != nil {
		id := *u.CoachID
		c.CoachID = &id
	}
	return &c
}

func (r *userRepository) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.PasswordHash == "" || user.Role == "" {
		return primitive.NilObjectID, errors.New("user email, password hash, and role are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = cloneUser(user)
	return user.ID, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *userRepository) AddAthleteIDToCoach(_ context.Context, coachID, athleteID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	coach, ok := r.users[coachID]
	if !ok || !coach.IsCoach() {
		return repository.ErrNotFound
	}
	for _, id := range coach.AthleteIDs {
		if id == athleteID {
			return nil
		}
	}
	coach.AthleteIDs = append(coach.AthleteIDs, athleteID)
	coach.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *userRepository) GetAthletesByCoachID(_ context.Context, coachID primitive.ObjectID) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	coach, ok := r.users[coachID]
	if !ok || !coach.IsCoach() {
		return nil, repository.ErrNotFound
	}
	athletes := make([]domain.User, 0, len(coach.AthleteIDs))
	for _, id := range coach.AthleteIDs {
		if u, ok := r.users[id]; ok {
			athletes = append(athletes, *cloneUser(u))
		}
	}
	sort.SliceStable(athletes, func(i, j int) bool { return athletes[i].Name < athletes[j].Name })
	return athletes, nil
}

func (r *userRepository) SetCoachForAthlete(_ context.Context, athleteID, coachID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	athlete, ok := r.users[athleteID]
	if !ok || !athlete.IsAthlete() {
		return repository.ErrNotFound
	}
	id := coachID
	athlete.CoachID = &id
	athlete.UpdatedAt = time.Now().UTC()
	return nil
}
