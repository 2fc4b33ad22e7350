package mongo

import (
	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/repository"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const completionCollectionName = "workout_completions"

// mongoCompletionRepository implements repository.CompletionRepository
type mongoCompletionRepository struct {
	collection *mongo.Collection
}

// NewMongoCompletionRepository creates a new completion marker repository.
func NewMongoCompletionRepository(db *mongo.Database) repository.CompletionRepository {
	return &mongoCompletionRepository{
		collection: db.Collection(completionCollectionName),
	}
}

// Upsert stores the marker; an existing marker keeps its original completedAt.
func (r *mongoCompletionRepository) Upsert(ctx context.Context, marker domain.CompletionMarker) error {
	filter := bson.M{"workoutId": marker.WorkoutID, "athleteId": marker.AthleteID}
	update := bson.M{"$setOnInsert": bson.M{"completedAt": marker.CompletedAt}}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		// Lost an insert race to an identical marker.
		return nil
	}
	return err
}

// Delete removes the marker. Deleting a missing marker is not an error.
func (r *mongoCompletionRepository) Delete(ctx context.Context, workoutID, athleteID primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"workoutId": workoutID, "athleteId": athleteID})
	return err
}

// Exists reports whether a marker is stored for the pair.
func (r *mongoCompletionRepository) Exists(ctx context.Context, workoutID, athleteID primitive.ObjectID) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"workoutId": workoutID, "athleteId": athleteID}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListForAthlete returns the athlete's markers among the given workouts.
func (r *mongoCompletionRepository) ListForAthlete(ctx context.Context, athleteID primitive.ObjectID, workoutIDs []primitive.ObjectID) ([]domain.CompletionMarker, error) {
	if len(workoutIDs) == 0 {
		return []domain.CompletionMarker{}, nil
	}
	filter := bson.M{"athleteId": athleteID, "workoutId": bson.M{"$in": workoutIDs}}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var markers []domain.CompletionMarker
	if err = cursor.All(ctx, &markers); err != nil {
		return nil, err
	}
	return markers, nil
}

// DeleteByWorkout removes every marker of a workout.
func (r *mongoCompletionRepository) DeleteByWorkout(ctx context.Context, workoutID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"workoutId": workoutID})
	return err
}

// EnsureCompletionIndexes creates the unique (workout, athlete) index.
func EnsureCompletionIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "workoutId", Value: 1}, {Key: "athleteId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "athleteId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
