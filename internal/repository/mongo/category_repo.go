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

const categoryCollectionName = "categories"

// mongoCategoryRepository implements repository.CategoryRepository
type mongoCategoryRepository struct {
	collection *mongo.Collection
}

// NewMongoCategoryRepository creates a new Category repository backed by MongoDB.
func NewMongoCategoryRepository(db *mongo.Database) repository.CategoryRepository {
	return &mongoCategoryRepository{
		collection: db.Collection(categoryCollectionName),
	}
}

// Create inserts a new category into the database.
func (r *mongoCategoryRepository) Create(ctx context.Context, category *domain.Category) (primitive.ObjectID, error) {
	if category.Name == "" {
		return primitive.NilObjectID, errors.New("category name is required")
	}

	category.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	category.CreatedAt = now
	category.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, category)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted category ID")
	}

	return insertedID, nil
}

// GetByID retrieves a category by its ID.
func (r *mongoCategoryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Category, error) {
	var category domain.Category
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&category)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// GetAll retrieves every category, sorted by name.
func (r *mongoCategoryRepository) GetAll(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	if categories == nil {
		categories = []domain.Category{}
	}
	return categories, nil
}

// Update modifies an existing category.
func (r *mongoCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	if category.ID == primitive.NilObjectID {
		return errors.New("category ID is required for update")
	}

	filter := bson.M{"_id": category.ID}
	update := bson.M{"$set": bson.M{
		"name":        category.Name,
		"description": category.Description,
		"updatedAt":   time.Now().UTC(),
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

// Delete removes a category by ID. No cascade: trainings and schedules that
// reference it keep their dangling ids (known gap).
func (r *mongoCategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureCategoryIndexes creates necessary indexes for the categories collection.
func EnsureCategoryIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// Index creation failure is not fatal; queries still work unindexed.
	}
}
