package service

import (
	"context"
	"errors"
	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/repository"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrScheduleNotFound       = errors.New("schedule not found")
	ErrScheduleAccessDenied   = errors.New("access denied to this schedule")
	ErrScheduleValidation     = errors.New("schedule validation failed")
	ErrAthleteNotFound        = errors.New("athlete not found")
	ErrAthleteNotRole         = errors.New("user found but is not an athlete")
	ErrCategoryNotFound       = errors.New("category not found")
	ErrTrainingNotFound       = errors.New("training not found")
	ErrInvalidScheduleStatus  = errors.New("invalid schedule status")
	ErrStatusTransitionDenied = errors.New("schedule status can no longer change")
)

// Actor is the authenticated identity performing an operation. It is supplied
// by the API layer from the verified token claims.
type Actor struct {
	ID   primitive.ObjectID
	Role domain.Role
}

// CreateScheduleInput carries the fields a caller may set at creation.
// Status is not settable; new schedules always start pending.
type CreateScheduleInput struct {
	AthleteID  primitive.ObjectID
	CategoryID primitive.ObjectID
	TrainingID primitive.ObjectID
	Date       time.Time
	Notes      string
}

// SchedulePatch is a partial update; nil fields are left untouched.
// Status changes go through UpdateScheduleStatus, never through here.
type SchedulePatch struct {
	AthleteID  *primitive.ObjectID
	CategoryID *primitive.ObjectID
	TrainingID *primitive.ObjectID
	Date       *time.Time
	Notes      *string
}

// AthleteSummary is the read-time projection of the owning athlete.
type AthleteSummary struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// CategorySummary is the read-time projection of the referenced category.
type CategorySummary struct {
	Name string `json:"name"`
}

// TrainingSummary is the read-time projection of the referenced training.
type TrainingSummary struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// EnrichedSchedule is the externally visible schedule representation: the raw
// entity joined with athlete/category/training summaries. Computed at response
// time, never persisted.
type EnrichedSchedule struct {
	domain.Schedule
	Athlete  AthleteSummary  `json:"athlete"`
	Category CategorySummary `json:"category"`
	Training TrainingSummary `json:"training"`
}

// --- Service Interface ---
type ScheduleService interface {
	ListSchedules(ctx context.Context, actor Actor) ([]EnrichedSchedule, error)
	GetSchedule(ctx context.Context, actor Actor, scheduleID primitive.ObjectID) (*EnrichedSchedule, error)
	CreateSchedule(ctx context.Context, actor Actor, input CreateScheduleInput) (*domain.Schedule, error)
	UpdateSchedule(ctx context.Context, actor Actor, scheduleID primitive.ObjectID, patch SchedulePatch) (*domain.Schedule, error)
	UpdateScheduleStatus(ctx context.Context, actor Actor, scheduleID primitive.ObjectID, status domain.ScheduleStatus) (*EnrichedSchedule, error)
	DeleteSchedule(ctx context.Context, actor Actor, scheduleID primitive.ObjectID) error

	// SupervisedAthleteIDs resolves the athletes a coach supervises. Exposed
	// on the interface so the dependent-listing step can be tested on its own.
	SupervisedAthleteIDs(ctx context.Context, coachID primitive.ObjectID) ([]primitive.ObjectID, error)
}

// --- Service Implementation ---

// scheduleService implements the ScheduleService interface.
type scheduleService struct {
	scheduleRepo repository.ScheduleRepository
	userRepo     repository.UserRepository
	categoryRepo repository.CategoryRepository
	trainingRepo repository.TrainingRepository
}

// NewScheduleService creates a new instance of scheduleService.
func NewScheduleService(
	scheduleRepo repository.ScheduleRepository,
	userRepo repository.UserRepository,
	categoryRepo repository.CategoryRepository,
	trainingRepo repository.TrainingRepository,
) ScheduleService {
	return &scheduleService{
		scheduleRepo: scheduleRepo,
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		trainingRepo: trainingRepo,
	}
}

// === Authorization scope ===

// SupervisedAthleteIDs returns the ids of all athletes whose coachId equals
// the given coach. A coach with no athletes yields an empty slice, not an error.
func (s *scheduleService) SupervisedAthleteIDs(ctx context.Context, coachID primitive.ObjectID) ([]primitive.ObjectID, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required")
	}
	athletes, err := s.userRepo.GetByCoachID(ctx, coachID)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(athletes))
	for i, a := range athletes {
		ids[i] = a.ID
	}
	return ids, nil
}

// canView reports whether the actor may read a single schedule.
// Admins and coaches see any schedule; everyone else only their own.
func canView(actor Actor, schedule *domain.Schedule) bool {
	if actor.Role.CanManageSchedules() {
		return true
	}
	return schedule.AthleteID == actor.ID
}

// === Read operations ===

// ListSchedules returns the actor's visible slice of the collection:
// admin sees all, a coach sees their supervised athletes' schedules (resolved
// in two steps: dependents first, then membership), every other role sees
// only schedules it owns.
func (s *scheduleService) ListSchedules(ctx context.Context, actor Actor) ([]EnrichedSchedule, error) {
	var (
		schedules []domain.Schedule
		err       error
	)

	switch actor.Role {
	case domain.RoleAdmin:
		schedules, err = s.scheduleRepo.GetAll(ctx)
	case domain.RoleCoach:
		var athleteIDs []primitive.ObjectID
		athleteIDs, err = s.SupervisedAthleteIDs(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		schedules, err = s.scheduleRepo.GetByAthleteIDs(ctx, athleteIDs)
	default:
		// Athlete, family, and any future role fall back to own-only scope.
		schedules, err = s.scheduleRepo.GetByAthleteID(ctx, actor.ID)
	}
	if err != nil {
		return nil, err
	}

	enriched := make([]EnrichedSchedule, 0, len(schedules))
	for i := range schedules {
		es, err := s.enrich(ctx, &schedules[i])
		if err != nil {
			return nil, err
		}
		enriched = append(enriched, *es)
	}
	return enriched, nil
}

// GetSchedule retrieves a single schedule with view authorization.
// A missing id is always "not found"; a visible id the actor may not read is
// "access denied". The two signals are never conflated.
func (s *scheduleService) GetSchedule(ctx context.Context, actor Actor, scheduleID primitive.ObjectID) (*EnrichedSchedule, error) {
	schedule, err := s.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}

	if !canView(actor, schedule) {
		return nil, ErrScheduleAccessDenied
	}

	return s.enrich(ctx, schedule)
}

// === Mutations ===

// CreateSchedule creates a pending schedule after verifying the actor's role
// and that every referenced entity exists.
func (s *scheduleService) CreateSchedule(ctx context.Context, actor Actor, input CreateScheduleInput) (*domain.Schedule, error) {
	if !actor.Role.CanManageSchedules() {
		return nil, ErrScheduleAccessDenied
	}
	if input.AthleteID == primitive.NilObjectID ||
		input.CategoryID == primitive.NilObjectID ||
		input.TrainingID == primitive.NilObjectID ||
		input.Date.IsZero() {
		return nil, ErrScheduleValidation
	}

	if err := s.validateAthlete(ctx, input.AthleteID); err != nil {
		return nil, err
	}
	if err := s.validateCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}
	if err := s.validateTraining(ctx, input.TrainingID); err != nil {
		return nil, err
	}

	schedule := &domain.Schedule{
		AthleteID:  input.AthleteID,
		CategoryID: input.CategoryID,
		TrainingID: input.TrainingID,
		Date:       input.Date,
		Status:     domain.StatusPending,
		Notes:      input.Notes,
		// ID, CreatedAt, UpdatedAt set by repository
	}

	scheduleID, err := s.scheduleRepo.Create(ctx, schedule)
	if err != nil {
		return nil, err
	}
	schedule.ID = scheduleID
	return schedule, nil
}

// UpdateSchedule merges a partial patch into the stored entity, re-validates
// any changed reference, and persists. Admin/coach only; no ownership check
// beyond the role (a coach may update schedules of athletes they do not
// supervise).
func (s *scheduleService) UpdateSchedule(ctx context.Context, actor Actor, scheduleID primitive.ObjectID, patch SchedulePatch) (*domain.Schedule, error) {
	if !actor.Role.CanManageSchedules() {
		return nil, ErrScheduleAccessDenied
	}

	schedule, err := s.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}

	if patch.AthleteID != nil {
		if err := s.validateAthlete(ctx, *patch.AthleteID); err != nil {
			return nil, err
		}
		schedule.AthleteID = *patch.AthleteID
	}
	if patch.CategoryID != nil {
		if err := s.validateCategory(ctx, *patch.CategoryID); err != nil {
			return nil, err
		}
		schedule.CategoryID = *patch.CategoryID
	}
	if patch.TrainingID != nil {
		if err := s.validateTraining(ctx, *patch.TrainingID); err != nil {
			return nil, err
		}
		schedule.TrainingID = *patch.TrainingID
	}
	if patch.Date != nil {
		if patch.Date.IsZero() {
			return nil, ErrScheduleValidation
		}
		schedule.Date = *patch.Date
	}
	if patch.Notes != nil {
		schedule.Notes = *patch.Notes
	}

	if err := s.scheduleRepo.Update(ctx, schedule); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	return schedule, nil
}

// UpdateScheduleStatus applies the status state machine: pending may move to
// completed or cancelled; terminal states accept no further transitions.
// Permitted for admins, coaches, and the owning athlete.
func (s *scheduleService) UpdateScheduleStatus(ctx context.Context, actor Actor, scheduleID primitive.ObjectID, status domain.ScheduleStatus) (*EnrichedSchedule, error) {
	if !status.IsValid() {
		return nil, ErrInvalidScheduleStatus
	}

	schedule, err := s.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Include the requested id so a dangling reference is traceable.
			return nil, fmt.Errorf("%w: %s", ErrScheduleNotFound, scheduleID.Hex())
		}
		return nil, err
	}

	if !actor.Role.CanManageSchedules() && schedule.AthleteID != actor.ID {
		return nil, ErrScheduleAccessDenied
	}

	if status != schedule.Status {
		if schedule.Status.IsTerminal() {
			return nil, ErrStatusTransitionDenied
		}
		if err := s.scheduleRepo.UpdateStatus(ctx, scheduleID, status); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrScheduleNotFound, scheduleID.Hex())
			}
			return nil, err
		}
		schedule.Status = status
	}

	return s.enrich(ctx, schedule)
}

// DeleteSchedule removes a schedule. Admin/coach only, no ownership check.
func (s *scheduleService) DeleteSchedule(ctx context.Context, actor Actor, scheduleID primitive.ObjectID) error {
	if !actor.Role.CanManageSchedules() {
		return ErrScheduleAccessDenied
	}

	err := s.scheduleRepo.Delete(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrScheduleNotFound
		}
		return err
	}
	return nil
}

// === Reference validation ===

func (s *scheduleService) validateAthlete(ctx context.Context, athleteID primitive.ObjectID) error {
	athlete, err := s.userRepo.GetByID(ctx, athleteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAthleteNotFound
		}
		return err
	}
	if !athlete.IsAthlete() {
		return ErrAthleteNotRole
	}
	return nil
}

func (s *scheduleService) validateCategory(ctx context.Context, categoryID primitive.ObjectID) error {
	_, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	return nil
}

func (s *scheduleService) validateTraining(ctx context.Context, trainingID primitive.ObjectID) error {
	_, err := s.trainingRepo.GetByID(ctx, trainingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTrainingNotFound
		}
		return err
	}
	return nil
}

// === Enrichment ===

// enrich joins the schedule with its athlete/category/training summaries.
// A reference that no longer resolves fails the whole read; partially-joined
// output with empty placeholders is never returned.
func (s *scheduleService) enrich(ctx context.Context, schedule *domain.Schedule) (*EnrichedSchedule, error) {
	athlete, err := s.userRepo.GetByID(ctx, schedule.AthleteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAthleteNotFound
		}
		return nil, err
	}
	category, err := s.categoryRepo.GetByID(ctx, schedule.CategoryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	training, err := s.trainingRepo.GetByID(ctx, schedule.TrainingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainingNotFound
		}
		return nil, err
	}

	return &EnrichedSchedule{
		Schedule: *schedule,
		Athlete: AthleteSummary{
			FirstName: athlete.FirstName,
			LastName:  athlete.LastName,
		},
		Category: CategorySummary{
			Name: category.Name,
		},
		Training: TrainingSummary{
			Name:        training.Name,
			Description: training.Description,
		},
	}, nil
}
