package repository

import (
	"context"
	"fitcoach/coaching-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	// GetByCoachID returns all athletes whose coachId equals the given coach.
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error)
	GetByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
}

// CategoryRepository defines the interface for interacting with category data.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Category, error)
	GetAll(ctx context.Context) ([]domain.Category, error)
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// TrainingRepository defines the interface for interacting with training data.
type TrainingRepository interface {
	Create(ctx context.Context, training *domain.Training) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Training, error)
	GetAll(ctx context.Context) ([]domain.Training, error)
	GetByCategoryID(ctx context.Context, categoryID primitive.ObjectID) ([]domain.Training, error)
	Update(ctx context.Context, training *domain.Training) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ScheduleRepository defines the interface for interacting with schedule data.
// Lookups by athlete+date and by status are backed by secondary indexes.
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *domain.Schedule) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Schedule, error)
	GetAll(ctx context.Context) ([]domain.Schedule, error)
	GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.Schedule, error)
	GetByAthleteIDs(ctx context.Context, athleteIDs []primitive.ObjectID) ([]domain.Schedule, error)
	GetByStatus(ctx context.Context, status domain.ScheduleStatus) ([]domain.Schedule, error)
	Update(ctx context.Context, schedule *domain.Schedule) error
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.ScheduleStatus) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
