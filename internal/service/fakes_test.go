package service

import (
	"context"
	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/repository"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes. They mirror the contracts of the mongo
// implementations: ErrNotFound on missing ids, empty slices instead of nil,
// date-ascending ordering for schedule listings.

type fakeUserRepo struct {
	users map[primitive.ObjectID]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]domain.User)}
}

func (r *fakeUserRepo) add(user domain.User) domain.User {
	if user.ID == primitive.NilObjectID {
		user.ID = primitive.NewObjectID()
	}
	r.users[user.ID] = user
	return user
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	stored := *user
	stored.ID = id
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.users[id] = stored
	return id, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	found := u
	return &found, nil
}

func (r *fakeUserRepo) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error) {
	athletes := []domain.User{}
	for _, u := range r.users {
		if u.Role == domain.RoleAthlete && u.CoachID != nil && *u.CoachID == coachID {
			athletes = append(athletes, u)
		}
	}
	return athletes, nil
}

func (r *fakeUserRepo) GetByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	users := []domain.User{}
	for _, u := range r.users {
		if u.Role == role {
			users = append(users, u)
		}
	}
	return users, nil
}

type fakeCategoryRepo struct {
	categories map[primitive.ObjectID]domain.Category
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: make(map[primitive.ObjectID]domain.Category)}
}

func (r *fakeCategoryRepo) add(cat domain.Category) domain.Category {
	if cat.ID == primitive.NilObjectID {
		cat.ID = primitive.NewObjectID()
	}
	r.categories[cat.ID] = cat
	return cat
}

func (r *fakeCategoryRepo) Create(ctx context.Context, category *domain.Category) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	stored := *category
	stored.ID = id
	r.categories[id] = stored
	return id, nil
}

func (r *fakeCategoryRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	found := c
	return &found, nil
}

func (r *fakeCategoryRepo) GetAll(ctx context.Context) ([]domain.Category, error) {
	cats := []domain.Category{}
	for _, c := range r.categories {
		cats = append(cats, c)
	}
	return cats, nil
}

func (r *fakeCategoryRepo) Update(ctx context.Context, category *domain.Category) error {
	if _, ok := r.categories[category.ID]; !ok {
		return repository.ErrNotFound
	}
	r.categories[category.ID] = *category
	return nil
}

func (r *fakeCategoryRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.categories[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.categories, id)
	return nil
}

type fakeTrainingRepo struct {
	trainings map[primitive.ObjectID]domain.Training
}

func newFakeTrainingRepo() *fakeTrainingRepo {
	return &fakeTrainingRepo{trainings: make(map[primitive.ObjectID]domain.Training)}
}

func (r *fakeTrainingRepo) add(t domain.Training) domain.Training {
	if t.ID == primitive.NilObjectID {
		t.ID = primitive.NewObjectID()
	}
	r.trainings[t.ID] = t
	return t
}

func (r *fakeTrainingRepo) Create(ctx context.Context, training *domain.Training) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	stored := *training
	stored.ID = id
	r.trainings[id] = stored
	return id, nil
}

func (r *fakeTrainingRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Training, error) {
	t, ok := r.trainings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	found := t
	return &found, nil
}

func (r *fakeTrainingRepo) GetAll(ctx context.Context) ([]domain.Training, error) {
	trainings := []domain.Training{}
	for _, t := range r.trainings {
		trainings = append(trainings, t)
	}
	return trainings, nil
}

func (r *fakeTrainingRepo) GetByCategoryID(ctx context.Context, categoryID primitive.ObjectID) ([]domain.Training, error) {
	trainings := []domain.Training{}
	for _, t := range r.trainings {
		if t.CategoryID == categoryID {
			trainings = append(trainings, t)
		}
	}
	return trainings, nil
}

func (r *fakeTrainingRepo) Update(ctx context.Context, training *domain.Training) error {
	if _, ok := r.trainings[training.ID]; !ok {
		return repository.ErrNotFound
	}
	r.trainings[training.ID] = *training
	return nil
}

func (r *fakeTrainingRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.trainings[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.trainings, id)
	return nil
}

type fakeScheduleRepo struct {
	schedules map[primitive.ObjectID]domain.Schedule
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{schedules: make(map[primitive.ObjectID]domain.Schedule)}
}

func (r *fakeScheduleRepo) add(s domain.Schedule) domain.Schedule {
	if s.ID == primitive.NilObjectID {
		s.ID = primitive.NewObjectID()
	}
	if s.Status == "" {
		s.Status = domain.StatusPending
	}
	r.schedules[s.ID] = s
	return s
}

func (r *fakeScheduleRepo) Create(ctx context.Context, schedule *domain.Schedule) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	stored := *schedule
	stored.ID = id
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.schedules[id] = stored
	return id, nil
}

func (r *fakeScheduleRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Schedule, error) {
	s, ok := r.schedules[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	found := s
	return &found, nil
}

func (r *fakeScheduleRepo) sorted(match func(domain.Schedule) bool) []domain.Schedule {
	out := []domain.Schedule{}
	for _, s := range r.schedules {
		if match(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func (r *fakeScheduleRepo) GetAll(ctx context.Context) ([]domain.Schedule, error) {
	return r.sorted(func(domain.Schedule) bool { return true }), nil
}

func (r *fakeScheduleRepo) GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.Schedule, error) {
	return r.sorted(func(s domain.Schedule) bool { return s.AthleteID == athleteID }), nil
}

func (r *fakeScheduleRepo) GetByAthleteIDs(ctx context.Context, athleteIDs []primitive.ObjectID) ([]domain.Schedule, error) {
	if len(athleteIDs) == 0 {
		return []domain.Schedule{}, nil
	}
	members := make(map[primitive.ObjectID]bool, len(athleteIDs))
	for _, id := range athleteIDs {
		members[id] = true
	}
	return r.sorted(func(s domain.Schedule) bool { return members[s.AthleteID] }), nil
}

func (r *fakeScheduleRepo) GetByStatus(ctx context.Context, status domain.ScheduleStatus) ([]domain.Schedule, error) {
	return r.sorted(func(s domain.Schedule) bool { return s.Status == status }), nil
}

func (r *fakeScheduleRepo) Update(ctx context.Context, schedule *domain.Schedule) error {
	if _, ok := r.schedules[schedule.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *schedule
	stored.UpdatedAt = time.Now()
	r.schedules[schedule.ID] = stored
	return nil
}

func (r *fakeScheduleRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.ScheduleStatus) error {
	s, ok := r.schedules[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.Status = status
	s.UpdatedAt = time.Now()
	r.schedules[id] = s
	return nil
}

func (r *fakeScheduleRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.schedules[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.schedules, id)
	return nil
}

// fakeFileStorage records presign and delete calls for catalog tests.
type fakeFileStorage struct {
	uploadKeys  []string
	deletedKeys []string
}

func (f *fakeFileStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey, contentType string, expiry time.Duration) (string, error) {
	f.uploadKeys = append(f.uploadKeys, objectKey)
	return "https://storage.example.com/upload/" + objectKey, nil
}

func (f *fakeFileStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	return "https://storage.example.com/download/" + objectKey, nil
}

func (f *fakeFileStorage) DeleteObject(ctx context.Context, objectKey string) error {
	f.deletedKeys = append(f.deletedKeys, objectKey)
	return nil
}
