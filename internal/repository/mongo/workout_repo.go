// internal/repository/mongo/workout_repo.go
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

const workoutCollectionName = "workouts"

// mongoWorkoutRepository implements repository.WorkoutRepository. Blocks and
// exercises are embedded in the workout document.
type mongoWorkoutRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		collection: db.Collection(workoutCollectionName),
	}
}

// Create inserts a new workout.
func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.CoachID == primitive.NilObjectID || workout.Name == "" {
		return primitive.NilObjectID, errors.New("workout requires coachId and name")
	}
	workout.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now
	if workout.Blocks == nil {
		workout.Blocks = []domain.Block{}
	}

	result, err := r.collection.InsertOne(ctx, workout)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted workout ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single workout by its ID.
func (r *mongoWorkoutRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	var workout domain.Workout
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// List returns the workouts matching the filter ordered by date.
func (r *mongoWorkoutRepository) List(ctx context.Context, f repository.WorkoutFilter) ([]domain.Workout, error) {
	filter := bson.M{}
	if f.CoachID != nil {
		filter["coachId"] = *f.CoachID
	}
	if f.TemplateOnly {
		filter["athleteId"] = bson.M{"$exists": false}
		filter["teamId"] = bson.M{"$exists": false}
	}
	if f.AthleteID != nil {
		owners := bson.A{bson.M{"athleteId": *f.AthleteID}}
		if len(f.TeamIDs) > 0 {
			owners = append(owners, bson.M{"teamId": bson.M{"$in": f.TeamIDs}})
		}
		filter["$or"] = owners
	} else if len(f.TeamIDs) > 0 {
		filter["teamId"] = bson.M{"$in": f.TeamIDs}
	}
	if f.From != "" || f.To != "" {
		dateRange := bson.M{}
		if f.From != "" {
			dateRange["$gte"] = f.From
		}
		if f.To != "" {
			dateRange["$lte"] = f.To
		}
		filter["date"] = dateRange
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var workouts []domain.Workout
	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

// Update replaces the editable parts of a workout: name, date, notes, owner
// and the whole block tree. Concurrent edits resolve to the last write.
func (r *mongoWorkoutRepository) Update(ctx context.Context, workout *domain.Workout) error {
	if workout.ID == primitive.NilObjectID {
		return errors.New("workout ID is required for update")
	}

	set := bson.M{
		"name":      workout.Name,
		"notes":     workout.Notes,
		"blocks":    workout.Blocks,
		"updatedAt": time.Now().UTC(),
	}
	unset := bson.M{}
	if workout.Date != "" {
		set["date"] = workout.Date
	} else {
		unset["date"] = ""
	}
	if workout.AthleteID != nil {
		set["athleteId"] = *workout.AthleteID
	} else {
		unset["athleteId"] = ""
	}
	if workout.TeamID != nil {
		set["teamId"] = *workout.TeamID
	} else {
		unset["teamId"] = ""
	}

	updateDoc := bson.M{"$set": set}
	if len(unset) > 0 {
		updateDoc["$unset"] = unset
	}

	filter := bson.M{"_id": workout.ID, "coachId": workout.CoachID}
	result, err := r.collection.UpdateOne(ctx, filter, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a workout owned by the given coach.
func (r *mongoWorkoutRepository) Delete(ctx context.Context, workoutID primitive.ObjectID, coachID primitive.ObjectID) error {
	if workoutID == primitive.NilObjectID || coachID == primitive.NilObjectID {
		return errors.New("workout ID and coach ID are required for deletion")
	}

	filter := bson.M{
		"_id":     workoutID,
		"coachId": coachID,
	}
	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureWorkoutIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// Athlete calendar
			Keys:    bson.D{{Key: "athleteId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			// Team calendar
			Keys:    bson.D{{Key: "teamId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
