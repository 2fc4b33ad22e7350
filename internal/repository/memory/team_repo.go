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

type teamRepository struct {
	mu    sync.RWMutex
	teams map[primitive.ObjectID]*domain.Team
}

func NewTeamRepository() repository.TeamRepository {
	return &teamRepository{teams: make(map[primitive.ObjectID]*domain.Team)}
}

func cloneTeam(t *domain.Team) domain.Team {
	c := *t
	c.MemberIDs = append([]primitive.ObjectID{}, t.MemberIDs...)
	return c
}

func (r *teamRepository) Create(_ context.Context, team *domain.Team) (primitive.ObjectID, error) {
	if team.CoachID == primitive.NilObjectID || team.Name == "" {
		return primitive.NilObjectID, errors.New("team requires coachId and name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	team.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	team.CreatedAt = now
	team.UpdatedAt = now
	if team.MemberIDs == nil {
		team.MemberIDs = []primitive.ObjectID{}
	}
	c := cloneTeam(team)
	r.teams[team.ID] = &c
	return team.ID, nil
}

func (r *teamRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.teams[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := cloneTeam(t)
	return &c, nil
}

func (r *teamRepository) GetByCoachID(_ context.Context, coachID primitive.ObjectID) ([]domain.Team, error) {
	return r.find(func(t *domain.Team) bool { return t.CoachID == coachID }), nil
}

func (r *teamRepository) GetByMemberID(_ context.Context, athleteID primitive.ObjectID) ([]domain.Team, error) {
	return r.find(func(t *domain.Team) bool { return t.HasMember(athleteID) }), nil
}

func (r *teamRepository) find(match func(*domain.Team) bool) []domain.Team {
	r.mu.RLock()
	defer r.mu.RUnlock()

	teams := []domain.Team{}
	for _, t := range r.teams {
		if match(t) {
			teams = append(teams, cloneTeam(t))
		}
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].Name < teams[j].Name })
	return teams
}

func (r *teamRepository) AddMember(_ context.Context, teamID, athleteID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.teams[teamID]
	if !ok {
		return repository.ErrNotFound
	}
	if !t.HasMember(athleteID) {
		t.MemberIDs = append(t.MemberIDs, athleteID)
	}
	t.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *teamRepository) RemoveMember(_ context.Context, teamID, athleteID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.teams[teamID]
	if !ok {
		return repository.ErrNotFound
	}
	kept := t.MemberIDs[:0]
	for _, id := range t.MemberIDs {
		if id != athleteID {
			kept = append(kept, id)
		}
	}
	t.MemberIDs = kept
	t.UpdatedAt = time.Now().UTC()
	return nil
}
