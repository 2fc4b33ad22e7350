// internal/repository/mongo/team_repo.go
package mongo

import (
	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const teamCollectionName = "teams"

// mongoTeamRepository implements repository.TeamRepository
type mongoTeamRepository struct {
	collection *mongo.Collection
}

// NewMongoTeamRepository creates a new Team repository.
func NewMongoTeamRepository(db *mongo.Database) repository.TeamRepository {
	return &mongoTeamRepository{
		collection: db.Collection(teamCollectionName),
	}
}

// Create inserts a new team.
func (r *mongoTeamRepository) Create(ctx context.Context, team *domain.Team) (primitive.ObjectID, error) {
	if team.CoachID == primitive.NilObjectID || team.Name == "" {
		return primitive.NilObjectID, errors.New("team requires coachId and name")
	}
	team.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	team.CreatedAt = now
	team.UpdatedAt = now
	if team.MemberIDs == nil {
		team.MemberIDs = []primitive.ObjectID{}
	}

	result, err := r.collection.InsertOne(ctx, team)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted team ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single team by its ID.
func (r *mongoTeamRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Team, error) {
	var team domain.Team
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&team)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &team, nil
}

// GetByCoachID retrieves all teams of a coach, sorted by name.
func (r *mongoTeamRepository) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Team, error) {
	return r.find(ctx, bson.M{"coachId": coachID})
}

// GetByMemberID retrieves every team the athlete belongs to.
func (r *mongoTeamRepository) GetByMemberID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.Team, error) {
	return r.find(ctx, bson.M{"memberIds": athleteID})
}

func (r *mongoTeamRepository) find(ctx context.Context, filter bson.M) ([]domain.Team, error) {
	var teams []domain.Team
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// AddMember adds an athlete to a team; adding an existing member is a no-op.
func (r *mongoTeamRepository) AddMember(ctx context.Context, teamID, athleteID primitive.ObjectID) error {
	return r.updateMembers(ctx, teamID, bson.M{
		"$addToSet": bson.M{"memberIds": athleteID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	})
}

// RemoveMember removes an athlete from a team; removing a non-member is a no-op.
func (r *mongoTeamRepository) RemoveMember(ctx context.Context, teamID, athleteID primitive.ObjectID) error {
	return r.updateMembers(ctx, teamID, bson.M{
		"$pull": bson.M{"memberIds": athleteID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (r *mongoTeamRepository) updateMembers(ctx context.Context, teamID primitive.ObjectID, update bson.M) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": teamID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureTeamIndexes creates necessary indexes. Call during startup.
func EnsureTeamIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index(),
		},
		{
			// Multikey index for "which teams is this athlete in"
			Keys:    bson.D{{Key: "memberIds", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
