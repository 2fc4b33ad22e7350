package mongo

import (
	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const setLogCollectionName = "set_logs"

// mongoSetLogRepository implements repository.SetLogRepository. Each
// (workout, exercise, athlete) key owns exactly one document holding the
// whole set list, so a replace is a single-document atomic update.
type mongoSetLogRepository struct {
	collection *mongo.Collection
}

// NewMongoSetLogRepository creates a new set record store backed by MongoDB.
func NewMongoSetLogRepository(db *mongo.Database) repository.SetLogRepository {
	return &mongoSetLogRepository{
		collection: db.Collection(setLogCollectionName),
	}
}

func keyFilter(key domain.SetKey) bson.M {
	return bson.M{
		"workoutId":  key.WorkoutID,
		"exerciseId": key.ExerciseID,
		"athleteId":  key.AthleteID,
	}
}

// Get retrieves the set log for a key.
func (r *mongoSetLogRepository) Get(ctx context.Context, key domain.SetKey) (*domain.SetLog, error) {
	var log domain.SetLog
	err := r.collection.FindOne(ctx, keyFilter(key)).Decode(&log)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &log, nil
}

// ListForAthlete retrieves every set log of an athlete within a workout.
func (r *mongoSetLogRepository) ListForAthlete(ctx context.Context, workoutID, athleteID primitive.ObjectID) ([]domain.SetLog, error) {
	filter := bson.M{"workoutId": workoutID, "athleteId": athleteID}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []domain.SetLog
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// ListAthletesForWorkout returns the athletes that saved sets on the workout.
func (r *mongoSetLogRepository) ListAthletesForWorkout(ctx context.Context, workoutID primitive.ObjectID) ([]primitive.ObjectID, error) {
	values, err := r.collection.Distinct(ctx, "athleteId", bson.M{"workoutId": workoutID})
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		id, ok := v.(primitive.ObjectID)
		if !ok {
			return nil, fmt.Errorf("unexpected athleteId type %T", v)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Replace overwrites the set list of a key in one update. With seq > 0 the
// filter only matches a stored seq <= seq; when a newer write exists the
// upsert collides with the unique key index and the write is stale.
func (r *mongoSetLogRepository) Replace(ctx context.Context, key domain.SetKey, seq int64, sets []domain.SetRecord) error {
	if sets == nil {
		sets = []domain.SetRecord{}
	}

	filter := keyFilter(key)
	update := bson.M{
		"$set": bson.M{
			"sets":      sets,
			"updatedAt": time.Now().UTC(),
		},
	}
	if seq > 0 {
		filter["seq"] = bson.M{"$lte": seq}
		update["$max"] = bson.M{"seq": seq}
	} else {
		update["$setOnInsert"] = bson.M{"seq": int64(0)}
	}
	opts := options.Update().SetUpsert(true)

	// A second attempt covers two first-time writers racing on the insert.
	for attempt := 0; attempt < 2; attempt++ {
		_, err := r.collection.UpdateOne(ctx, filter, update, opts)
		if err == nil {
			return nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return err
		}
	}
	if seq > 0 {
		return repository.ErrStaleWrite
	}
	return fmt.Errorf("replace set log: %w", repository.ErrDuplicate)
}

// DeleteByWorkout removes every set log of a workout.
func (r *mongoSetLogRepository) DeleteByWorkout(ctx context.Context, workoutID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"workoutId": workoutID})
	return err
}

// EnsureSetLogIndexes creates the indexes the set record store relies on.
// The unique key index is what turns a stale upsert into a conflict.
func EnsureSetLogIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "workoutId", Value: 1}, {Key: "exerciseId", Value: 1}, {Key: "athleteId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("set_log_key"),
		},
		{
			Keys:    bson.D{{Key: "workoutId", Value: 1}, {Key: "athleteId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
