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

const scheduleCollectionName = "schedules"

// mongoScheduleRepository implements repository.ScheduleRepository
type mongoScheduleRepository struct {
	collection *mongo.Collection
}

// NewMongoScheduleRepository creates a new Schedule repository backed by MongoDB.
func NewMongoScheduleRepository(db *mongo.Database) repository.ScheduleRepository {
	return &mongoScheduleRepository{
		collection: db.Collection(scheduleCollectionName),
	}
}

// Create inserts a new schedule into the database.
func (r *mongoScheduleRepository) Create(ctx context.Context, schedule *domain.Schedule) (primitive.ObjectID, error) {
	if schedule.AthleteID == primitive.NilObjectID ||
		schedule.CategoryID == primitive.NilObjectID ||
		schedule.TrainingID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("schedule requires athleteId, categoryId and trainingId")
	}
	if schedule.Date.IsZero() {
		return primitive.NilObjectID, errors.New("schedule requires a date")
	}

	schedule.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now
	if schedule.Status == "" {
		schedule.Status = domain.StatusPending
	}

	result, err := r.collection.InsertOne(ctx, schedule)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted schedule ID")
	}

	return insertedID, nil
}

// GetByID retrieves a schedule by its ID.
func (r *mongoScheduleRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Schedule, error) {
	var schedule domain.Schedule
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&schedule)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &schedule, nil
}

// findByFilter runs a Find with the shared sort order (session date ascending)
// and decodes the full result set.
func (r *mongoScheduleRepository) findByFilter(ctx context.Context, filter bson.M) ([]domain.Schedule, error) {
	var schedules []domain.Schedule
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &schedules); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	if schedules == nil {
		schedules = []domain.Schedule{}
	}
	return schedules, nil
}

// GetAll retrieves every schedule (admin scope).
func (r *mongoScheduleRepository) GetAll(ctx context.Context) ([]domain.Schedule, error) {
	return r.findByFilter(ctx, bson.M{})
}

// GetByAthleteID retrieves all schedules belonging to a single athlete.
func (r *mongoScheduleRepository) GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.Schedule, error) {
	return r.findByFilter(ctx, bson.M{"athleteId": athleteID})
}

// GetByAthleteIDs retrieves schedules for a set of athletes (coach scope).
// An empty set matches nothing and returns an empty slice.
func (r *mongoScheduleRepository) GetByAthleteIDs(ctx context.Context, athleteIDs []primitive.ObjectID) ([]domain.Schedule, error) {
	if len(athleteIDs) == 0 {
		return []domain.Schedule{}, nil
	}
	return r.findByFilter(ctx, bson.M{"athleteId": bson.M{"$in": athleteIDs}})
}

// GetByStatus retrieves all schedules in the given status.
func (r *mongoScheduleRepository) GetByStatus(ctx context.Context, status domain.ScheduleStatus) ([]domain.Schedule, error) {
	return r.findByFilter(ctx, bson.M{"status": status})
}

// Update modifies an existing schedule. The caller is expected to have merged
// the patch into the entity and re-validated it.
func (r *mongoScheduleRepository) Update(ctx context.Context, schedule *domain.Schedule) error {
	if schedule.ID == primitive.NilObjectID {
		return errors.New("schedule ID is required for update")
	}

	filter := bson.M{"_id": schedule.ID}
	update := bson.M{"$set": bson.M{
		"athleteId":  schedule.AthleteID,
		"categoryId": schedule.CategoryID,
		"trainingId": schedule.TrainingID,
		"date":       schedule.Date,
		"status":     schedule.Status,
		"notes":      schedule.Notes,
		"updatedAt":  time.Now().UTC(),
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

// UpdateStatus sets only the status field. Last write wins when two updates
// race; there is no version token on the entity.
func (r *mongoScheduleRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.ScheduleStatus) error {
	filter := bson.M{"_id": id}
	update := bson.M{"$set": bson.M{
		"status":    status,
		"updatedAt": time.Now().UTC(),
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

// Delete removes a schedule by ID.
func (r *mongoScheduleRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureScheduleIndexes creates necessary indexes for the schedules collection.
func EnsureScheduleIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Compound index: an athlete's calendar, sorted by session date
			Keys:    bson.D{{Key: "athleteId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index(),
		},
		{
			// Status filtering for dashboards
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// Index creation failure is not fatal; queries still work unindexed.
	}
}
