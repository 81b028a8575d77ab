package mongo

import (
	"context"
	"errors"
	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/repository"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const trainingCollectionName = "trainings"

// mongoTrainingRepository implements repository.TrainingRepository
type mongoTrainingRepository struct {
	collection *mongo.Collection
}

// NewMongoTrainingRepository creates a new Training repository backed by MongoDB.
func NewMongoTrainingRepository(db *mongo.Database) repository.TrainingRepository {
	return &mongoTrainingRepository{
		collection: db.Collection(trainingCollectionName),
	}
}

// Create inserts a new training into the database.
func (r *mongoTrainingRepository) Create(ctx context.Context, training *domain.Training) (primitive.ObjectID, error) {
	if training.Name == "" || training.CategoryID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("training requires a name and categoryId")
	}

	training.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	training.CreatedAt = now
	training.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, training)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted training ID")
	}

	return insertedID, nil
}

// GetByID retrieves a training by its ID.
func (r *mongoTrainingRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Training, error) {
	var training domain.Training
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&training)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &training, nil
}

func (r *mongoTrainingRepository) find(ctx context.Context, filter bson.M) ([]domain.Training, error) {
	var trainings []domain.Training
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &trainings); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	if trainings == nil {
		trainings = []domain.Training{}
	}
	return trainings, nil
}

// GetAll retrieves every training, sorted by name.
func (r *mongoTrainingRepository) GetAll(ctx context.Context) ([]domain.Training, error) {
	return r.find(ctx, bson.M{})
}

// GetByCategoryID retrieves all trainings inside a category.
func (r *mongoTrainingRepository) GetByCategoryID(ctx context.Context, categoryID primitive.ObjectID) ([]domain.Training, error) {
	return r.find(ctx, bson.M{"categoryId": categoryID})
}

// Update modifies an existing training.
func (r *mongoTrainingRepository) Update(ctx context.Context, training *domain.Training) error {
	if training.ID == primitive.NilObjectID {
		return errors.New("training ID is required for update")
	}

	filter := bson.M{"_id": training.ID}
	update := bson.M{"$set": bson.M{
		"categoryId":       training.CategoryID,
		"name":             training.Name,
		"description":      training.Description,
		"mediaObjectKey":   training.MediaObjectKey,
		"mediaContentType": training.MediaContentType,
		"updatedAt":        time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a training by ID. No cascade to schedules referencing it.
func (r *mongoTrainingRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureTrainingIndexes creates necessary indexes for the trainings collection.
func EnsureTrainingIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Listing trainings by catalog category
			Keys:    bson.D{{Key: "categoryId", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// Index creation failure is not fatal; queries still work unindexed.
	}
}
