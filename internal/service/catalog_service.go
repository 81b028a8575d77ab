package service

import (
	"context"
	"errors"
	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/repository"
	"fitcoach/coaching-app/internal/storage"
	"mime"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrCatalogAccessDenied      = errors.New("access denied to modify the catalog")
	ErrCategoryValidation       = errors.New("category validation failed")
	ErrTrainingValidation       = errors.New("training validation failed")
	ErrTrainingMediaNotAttached = errors.New("training has no media attached")
	ErrMediaURLGeneration       = errors.New("could not generate media URL")
)

// --- Service Interface ---

// CatalogService manages the reference catalog the scheduling core joins
// against: categories, trainings, and the media links on trainings.
type CatalogService interface {
	CreateCategory(ctx context.Context, actor Actor, name, description string) (*domain.Category, error)
	GetCategories(ctx context.Context) ([]domain.Category, error)
	UpdateCategory(ctx context.Context, actor Actor, categoryID primitive.ObjectID, name, description string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, actor Actor, categoryID primitive.ObjectID) error

	CreateTraining(ctx context.Context, actor Actor, categoryID primitive.ObjectID, name, description string) (*domain.Training, error)
	GetTrainings(ctx context.Context, categoryID *primitive.ObjectID) ([]domain.Training, error)
	UpdateTraining(ctx context.Context, actor Actor, trainingID, categoryID primitive.ObjectID, name, description string) (*domain.Training, error)
	DeleteTraining(ctx context.Context, actor Actor, trainingID primitive.ObjectID) error

	GenerateTrainingMediaUploadURL(ctx context.Context, actor Actor, trainingID primitive.ObjectID, contentType string) (string, error)
	GetTrainingMediaDownloadURL(ctx context.Context, trainingID primitive.ObjectID) (string, error)
}

// --- Service Implementation ---

type catalogService struct {
	categoryRepo repository.CategoryRepository
	trainingRepo repository.TrainingRepository
	fileStorage  storage.FileStorage
}

// NewCatalogService creates a new instance of catalogService.
func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	trainingRepo repository.TrainingRepository,
	fileStorage storage.FileStorage,
) CatalogService {
	return &catalogService{
		categoryRepo: categoryRepo,
		trainingRepo: trainingRepo,
		fileStorage:  fileStorage,
	}
}

// === Categories ===

func (s *catalogService) CreateCategory(ctx context.Context, actor Actor, name, description string) (*domain.Category, error) {
	if !actor.Role.CanManageSchedules() {
		return nil, ErrCatalogAccessDenied
	}
	if name == "" {
		return nil, ErrCategoryValidation
	}

	category := &domain.Category{
		Name:        name,
		Description: description,
	}
	categoryID, err := s.categoryRepo.Create(ctx, category)
	if err != nil {
		return nil, err
	}
	category.ID = categoryID
	return category, nil
}

func (s *catalogService) GetCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categoryRepo.GetAll(ctx)
}

func (s *catalogService) UpdateCategory(ctx context.Context, actor Actor, categoryID primitive.ObjectID, name, description string) (*domain.Category, error) {
	if !actor.Role.CanManageSchedules() {
		return nil, ErrCatalogAccessDenied
	}
	if name == "" {
		return nil, ErrCategoryValidation
	}

	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	category.Name = name
	category.Description = description
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, actor Actor, categoryID primitive.ObjectID) error {
	if !actor.Role.CanManageSchedules() {
		return ErrCatalogAccessDenied
	}

	// No cascade: trainings and schedules referencing the category keep
	// their dangling ids. Reads of those schedules then fail enrichment.
	err := s.categoryRepo.Delete(ctx, categoryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	return nil
}

// === Trainings ===

func (s *catalogService) CreateTraining(ctx context.Context, actor Actor, categoryID primitive.ObjectID, name, description string) (*domain.Training, error) {
	if !actor.Role.CanManageSchedules() {
		return nil, ErrCatalogAccessDenied
	}
	if name == "" || categoryID == primitive.NilObjectID {
		return nil, ErrTrainingValidation
	}

	// The parent category must exist at creation time.
	if _, err := s.categoryRepo.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	training := &domain.Training{
		CategoryID:  categoryID,
		Name:        name,
		Description: description,
	}
	trainingID, err := s.trainingRepo.Create(ctx, training)
	if err != nil {
		return nil, err
	}
	training.ID = trainingID
	return training, nil
}

func (s *catalogService) GetTrainings(ctx context.Context, categoryID *primitive.ObjectID) ([]domain.Training, error) {
	if categoryID != nil && *categoryID != primitive.NilObjectID {
		return s.trainingRepo.GetByCategoryID(ctx, *categoryID)
	}
	return s.trainingRepo.GetAll(ctx)
}

func (s *catalogService) UpdateTraining(ctx context.Context, actor Actor, trainingID, categoryID primitive.ObjectID, name, description string) (*domain.Training, error) {
	if !actor.Role.CanManageSchedules() {
		return nil, ErrCatalogAccessDenied
	}
	if name == "" {
		return nil, ErrTrainingValidation
	}

	training, err := s.trainingRepo.GetByID(ctx, trainingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainingNotFound
		}
		return nil, err
	}

	if categoryID != primitive.NilObjectID && categoryID != training.CategoryID {
		if _, err := s.categoryRepo.GetByID(ctx, categoryID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
		training.CategoryID = categoryID
	}
	training.Name = name
	training.Description = description

	if err := s.trainingRepo.Update(ctx, training); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainingNotFound
		}
		return nil, err
	}
	return training, nil
}

func (s *catalogService) DeleteTraining(ctx context.Context, actor Actor, trainingID primitive.ObjectID) error {
	if !actor.Role.CanManageSchedules() {
		return ErrCatalogAccessDenied
	}

	training, err := s.trainingRepo.GetByID(ctx, trainingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTrainingNotFound
		}
		return err
	}

	if err := s.trainingRepo.Delete(ctx, trainingID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTrainingNotFound
		}
		return err
	}

	// Best effort: the media object is orphaned otherwise. A failure here
	// does not undo the catalog delete.
	if training.MediaObjectKey != "" {
		_ = s.fileStorage.DeleteObject(ctx, training.MediaObjectKey)
	}
	return nil
}

// === Training media ===

// GenerateTrainingMediaUploadURL mints a presigned PUT URL for attaching a
// demo video to a training, and records the object key on the entity.
func (s *catalogService) GenerateTrainingMediaUploadURL(ctx context.Context, actor Actor, trainingID primitive.ObjectID, contentType string) (string, error) {
	if !actor.Role.CanManageSchedules() {
		return "", ErrCatalogAccessDenied
	}
	if contentType == "" {
		return "", ErrTrainingValidation
	}

	training, err := s.trainingRepo.GetByID(ctx, trainingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrTrainingNotFound
		}
		return "", err
	}

	objectKey := "trainings/" + uuid.NewString() + extensionFor(contentType)

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", ErrMediaURLGeneration
	}

	training.MediaObjectKey = objectKey
	training.MediaContentType = contentType
	if err := s.trainingRepo.Update(ctx, training); err != nil {
		return "", err
	}

	return uploadURL, nil
}

// GetTrainingMediaDownloadURL mints a presigned GET URL for a training's
// attached media. Any authenticated actor may view training media.
func (s *catalogService) GetTrainingMediaDownloadURL(ctx context.Context, trainingID primitive.ObjectID) (string, error) {
	training, err := s.trainingRepo.GetByID(ctx, trainingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrTrainingNotFound
		}
		return "", err
	}
	if training.MediaObjectKey == "" {
		return "", ErrTrainingMediaNotAttached
	}

	downloadURL, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, training.MediaObjectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", ErrMediaURLGeneration
	}
	return downloadURL, nil
}

// extensionFor picks a file extension for the object key from the declared
// content type; unknown types get no extension.
func extensionFor(contentType string) string {
	exts, err := mime.ExtensionsByType(contentType)
	if err != nil || len(exts) == 0 {
		return ""
	}
	return exts[0]
}
