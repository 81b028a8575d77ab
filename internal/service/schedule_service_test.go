package service

import (
	"context"
	"encoding/json"
	"fitcoach/coaching-app/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// scheduleFixture bundles the fakes and a populated reference world:
// one coach with two supervised athletes, one unsupervised athlete, a
// category and a training for schedules to point at.
type scheduleFixture struct {
	svc          ScheduleService
	userRepo     *fakeUserRepo
	categoryRepo *fakeCategoryRepo
	trainingRepo *fakeTrainingRepo
	scheduleRepo *fakeScheduleRepo

	admin      domain.User
	coach      domain.User
	athleteA   domain.User // supervised by coach
	athleteB   domain.User // supervised by coach
	athleteX   domain.User // not supervised by coach
	familyUser domain.User
	category   domain.Category
	training   domain.Training
}

func newScheduleFixture(t *testing.T) *scheduleFixture {
	t.Helper()

	f := &scheduleFixture{
		userRepo:     newFakeUserRepo(),
		categoryRepo: newFakeCategoryRepo(),
		trainingRepo: newFakeTrainingRepo(),
		scheduleRepo: newFakeScheduleRepo(),
	}
	f.svc = NewScheduleService(f.scheduleRepo, f.userRepo, f.categoryRepo, f.trainingRepo)

	f.admin = f.userRepo.add(domain.User{FirstName: "Ada", LastName: "Root", Role: domain.RoleAdmin})
	f.coach = f.userRepo.add(domain.User{FirstName: "Carl", LastName: "Coach", Role: domain.RoleCoach})
	f.athleteA = f.userRepo.add(domain.User{
		FirstName: "Anna", LastName: "Fast", Role: domain.RoleAthlete, CoachID: &f.coach.ID,
	})
	f.athleteB = f.userRepo.add(domain.User{
		FirstName: "Ben", LastName: "Strong", Role: domain.RoleAthlete, CoachID: &f.coach.ID,
	})
	f.athleteX = f.userRepo.add(domain.User{
		FirstName: "Xena", LastName: "Solo", Role: domain.RoleAthlete,
	})
	f.familyUser = f.userRepo.add(domain.User{FirstName: "Fred", LastName: "Parent", Role: domain.RoleFamily})

	f.category = f.categoryRepo.add(domain.Category{Name: "Endurance"})
	f.training = f.trainingRepo.add(domain.Training{CategoryID: f.category.ID, Name: "5k run", Description: "steady pace"})

	return f
}

func (f *scheduleFixture) actor(u domain.User) Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

func (f *scheduleFixture) addSchedule(athleteID primitive.ObjectID, date time.Time) domain.Schedule {
	return f.scheduleRepo.add(domain.Schedule{
		AthleteID:  athleteID,
		CategoryID: f.category.ID,
		TrainingID: f.training.ID,
		Date:       date,
		Status:     domain.StatusPending,
	})
}

func TestListSchedulesRoleScoping(t *testing.T) {
	f := newScheduleFixture(t)
	ctx := context.Background()

	day := time.Date(2025, 6, 1, 17, 0, 0, 0, time.UTC)
	sA := f.addSchedule(f.athleteA.ID, day)
	sB := f.addSchedule(f.athleteB.ID, day.Add(24*time.Hour))
	sX := f.addSchedule(f.athleteX.ID, day.Add(48*time.Hour))

	t.Run("admin sees everything", func(t *testing.T) {
		list, err := f.svc.ListSchedules(ctx, f.actor(f.admin))
		require.NoError(t, err)
		assert.Len(t, list, 3)
	})

	t.Run("coach sees supervised athletes only", func(t *testing.T) {
		list, err := f.svc.ListSchedules(ctx, f.actor(f.coach))
		require.NoError(t, err)
		require.Len(t, list, 2)
		ids := []primitive.ObjectID{list[0].ID, list[1].ID}
		assert.Contains(t, ids, sA.ID)
		assert.Contains(t, ids, sB.ID)
		assert.NotContains(t, ids, sX.ID)
	})

	t.Run("athlete sees own schedules only", func(t *testing.T) {
		list, err := f.svc.ListSchedules(ctx, f.actor(f.athleteA))
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, sA.ID, list[0].ID)
	})

	t.Run("family member without schedules gets empty list", func(t *testing.T) {
		list, err := f.svc.ListSchedules(ctx, f.actor(f.familyUser))
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestListSchedulesCoachWithoutAthletes(t *testing.T) {
	f := newScheduleFixture(t)
	lonelyCoach := f.userRepo.add(domain.User{FirstName: "Nora", LastName: "New", Role: domain.RoleCoach})
	f.addSchedule(f.athleteA.ID, time.Now())

	list, err := f.svc.ListSchedules(context.Background(), f.actor(lonelyCoach))
	require.NoError(t, err)
	assert.Empty(t, list, "a coach with no supervised athletes sees nothing, not everything")
}

func TestListSchedulesEnriched(t *testing.T) {
	f := newScheduleFixture(t)
	f.addSchedule(f.athleteA.ID, time.Now())

	list, err := f.svc.ListSchedules(context.Background(), f.actor(f.athleteA))
	require.NoError(t, err)
	require.Len(t, list, 1)

	assert.Equal(t, "Anna", list[0].Athlete.FirstName)
	assert.Equal(t, "Fast", list[0].Athlete.LastName)
	assert.Equal(t, "Endurance", list[0].Category.Name)
	assert.Equal(t, "5k run", list[0].Training.Name)
	assert.Equal(t, "steady pace", list[0].Training.Description)
}

func TestSupervisedAthleteIDs(t *testing.T) {
	f := newScheduleFixture(t)

	ids, err := f.svc.SupervisedAthleteIDs(context.Background(), f.coach.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []primitive.ObjectID{f.athleteA.ID, f.athleteB.ID}, ids)

	ids, err = f.svc.SupervisedAthleteIDs(context.Background(), f.athleteX.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestGetScheduleAuthorization(t *testing.T) {
	f := newScheduleFixture(t)
	ctx := context.Background()
	s := f.addSchedule(f.athleteA.ID, time.Now())

	t.Run("owner reads own schedule", func(t *testing.T) {
		got, err := f.svc.GetSchedule(ctx, f.actor(f.athleteA), s.ID)
		require.NoError(t, err)
		assert.Equal(t, s.ID, got.ID)
	})

	t.Run("coach reads any schedule", func(t *testing.T) {
		got, err := f.svc.GetSchedule(ctx, f.actor(f.coach), s.ID)
		require.NoError(t, err)
		assert.Equal(t, s.ID, got.ID)
	})

	t.Run("other athlete is forbidden, not hidden", func(t *testing.T) {
		_, err := f.svc.GetSchedule(ctx, f.actor(f.athleteX), s.ID)
		assert.ErrorIs(t, err, ErrScheduleAccessDenied)
		assert.NotErrorIs(t, err, ErrScheduleNotFound)
	})

	t.Run("missing id is not found for everyone", func(t *testing.T) {
		_, err := f.svc.GetSchedule(ctx, f.actor(f.admin), primitive.NewObjectID())
		assert.ErrorIs(t, err, ErrScheduleNotFound)
	})
}

func TestGetScheduleEnrichmentIsIdempotent(t *testing.T) {
	f := newScheduleFixture(t)
	s := f.addSchedule(f.athleteA.ID, time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC))

	first, err := f.svc.GetSchedule(context.Background(), f.actor(f.admin), s.ID)
	require.NoError(t, err)
	second, err := f.svc.GetSchedule(context.Background(), f.actor(f.admin), s.ID)
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON)
}

func TestGetScheduleDanglingReferenceFailsWholeRead(t *testing.T) {
	f := newScheduleFixture(t)
	s := f.addSchedule(f.athleteA.ID, time.Now())

	require.NoError(t, f.categoryRepo.Delete(context.Background(), f.category.ID))

	_, err := f.svc.GetSchedule(context.Background(), f.actor(f.admin), s.ID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCreateSchedule(t *testing.T) {
	f := newScheduleFixture(t)
	ctx := context.Background()
	date := time.Date(2025, 8, 1, 18, 0, 0, 0, time.UTC)

	t.Run("coach creates a pending schedule", func(t *testing.T) {
		s, err := f.svc.CreateSchedule(ctx, f.actor(f.coach), CreateScheduleInput{
			AthleteID:  f.athleteA.ID,
			CategoryID: f.category.ID,
			TrainingID: f.training.ID,
			Date:       date,
			Notes:      "bring spikes",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, s.Status)
		assert.Equal(t, "bring spikes", s.Notes)
		assert.False(t, s.ID.IsZero())

		stored, err := f.scheduleRepo.GetByID(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, stored.Status)
	})

	t.Run("athlete cannot create", func(t *testing.T) {
		_, err := f.svc.CreateSchedule(ctx, f.actor(f.athleteA), CreateScheduleInput{
			AthleteID: f.athleteA.ID, CategoryID: f.category.ID, TrainingID: f.training.ID, Date: date,
		})
		assert.ErrorIs(t, err, ErrScheduleAccessDenied)
	})

	t.Run("unknown category rejects and leaves store unchanged", func(t *testing.T) {
		before := len(f.scheduleRepo.schedules)
		_, err := f.svc.CreateSchedule(ctx, f.actor(f.admin), CreateScheduleInput{
			AthleteID:  f.athleteA.ID,
			CategoryID: primitive.NewObjectID(),
			TrainingID: f.training.ID,
			Date:       date,
		})
		assert.ErrorIs(t, err, ErrCategoryNotFound)
		assert.Len(t, f.scheduleRepo.schedules, before)
	})

	t.Run("unknown training rejects", func(t *testing.T) {
		_, err := f.svc.CreateSchedule(ctx, f.actor(f.admin), CreateScheduleInput{
			AthleteID:  f.athleteA.ID,
			CategoryID: f.category.ID,
			TrainingID: primitive.NewObjectID(),
			Date:       date,
		})
		assert.ErrorIs(t, err, ErrTrainingNotFound)
	})

	t.Run("target user must hold the athlete role", func(t *testing.T) {
		_, err := f.svc.CreateSchedule(ctx, f.actor(f.admin), CreateScheduleInput{
			AthleteID:  f.familyUser.ID,
			CategoryID: f.category.ID,
			TrainingID: f.training.ID,
			Date:       date,
		})
		assert.ErrorIs(t, err, ErrAthleteNotRole)
	})

	t.Run("zero date fails validation", func(t *testing.T) {
		_, err := f.svc.CreateSchedule(ctx, f.actor(f.admin), CreateScheduleInput{
			AthleteID: f.athleteA.ID, CategoryID: f.category.ID, TrainingID: f.training.ID,
		})
		assert.ErrorIs(t, err, ErrScheduleValidation)
	})
}

func TestUpdateSchedule(t *testing.T) {
	f := newScheduleFixture(t)
	ctx := context.Background()
	s := f.addSchedule(f.athleteX.ID, time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC))

	t.Run("coach may update a schedule of an unsupervised athlete", func(t *testing.T) {
		// Role is the only gate on full updates; supervision is not checked.
		notes := "moved to the indoor track"
		got, err := f.svc.UpdateSchedule(ctx, f.actor(f.coach), s.ID, SchedulePatch{Notes: &notes})
		require.NoError(t, err)
		assert.Equal(t, notes, got.Notes)
	})

	t.Run("nil patch fields stay untouched", func(t *testing.T) {
		newDate := time.Date(2025, 9, 2, 8, 0, 0, 0, time.UTC)
		got, err := f.svc.UpdateSchedule(ctx, f.actor(f.admin), s.ID, SchedulePatch{Date: &newDate})
		require.NoError(t, err)
		assert.Equal(t, newDate, got.Date)
		assert.Equal(t, "moved to the indoor track", got.Notes)
		assert.Equal(t, f.athleteX.ID, got.AthleteID)
	})

	t.Run("changed athlete reference is re-validated", func(t *testing.T) {
		bogus := primitive.NewObjectID()
		_, err := f.svc.UpdateSchedule(ctx, f.actor(f.admin), s.ID, SchedulePatch{AthleteID: &bogus})
		assert.ErrorIs(t, err, ErrAthleteNotFound)
	})

	t.Run("athlete cannot full-update", func(t *testing.T) {
		notes := "nope"
		_, err := f.svc.UpdateSchedule(ctx, f.actor(f.athleteX), s.ID, SchedulePatch{Notes: &notes})
		assert.ErrorIs(t, err, ErrScheduleAccessDenied)
	})

	t.Run("missing schedule is not found", func(t *testing.T) {
		notes := "ghost"
		_, err := f.svc.UpdateSchedule(ctx, f.actor(f.admin), primitive.NewObjectID(), SchedulePatch{Notes: &notes})
		assert.ErrorIs(t, err, ErrScheduleNotFound)
	})
}

func TestUpdateScheduleStatus(t *testing.T) {
	f := newScheduleFixture(t)
	ctx := context.Background()

	t.Run("owning athlete completes a pending schedule", func(t *testing.T) {
		s := f.addSchedule(f.athleteA.ID, time.Now())
		got, err := f.svc.UpdateScheduleStatus(ctx, f.actor(f.athleteA), s.ID, domain.StatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompleted, got.Status)
		assert.Equal(t, "Anna", got.Athlete.FirstName)

		stored, err := f.scheduleRepo.GetByID(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompleted, stored.Status)
	})

	t.Run("coach cancels a pending schedule", func(t *testing.T) {
		s := f.addSchedule(f.athleteA.ID, time.Now())
		got, err := f.svc.UpdateScheduleStatus(ctx, f.actor(f.coach), s.ID, domain.StatusCancelled)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, got.Status)
	})

	t.Run("non-owning athlete is forbidden", func(t *testing.T) {
		s := f.addSchedule(f.athleteA.ID, time.Now())
		_, err := f.svc.UpdateScheduleStatus(ctx, f.actor(f.athleteX), s.ID, domain.StatusCompleted)
		assert.ErrorIs(t, err, ErrScheduleAccessDenied)
	})

	t.Run("unknown status value is rejected before lookup", func(t *testing.T) {
		s := f.addSchedule(f.athleteA.ID, time.Now())
		_, err := f.svc.UpdateScheduleStatus(ctx, f.actor(f.admin), s.ID, domain.ScheduleStatus("archived"))
		assert.ErrorIs(t, err, ErrInvalidScheduleStatus)
	})

	t.Run("terminal states accept no further transitions", func(t *testing.T) {
		s := f.scheduleRepo.add(domain.Schedule{
			AthleteID: f.athleteA.ID, CategoryID: f.category.ID, TrainingID: f.training.ID,
			Date: time.Now(), Status: domain.StatusCompleted,
		})
		_, err := f.svc.UpdateScheduleStatus(ctx, f.actor(f.admin), s.ID, domain.StatusCancelled)
		assert.ErrorIs(t, err, ErrStatusTransitionDenied)

		_, err = f.svc.UpdateScheduleStatus(ctx, f.actor(f.admin), s.ID, domain.StatusPending)
		assert.ErrorIs(t, err, ErrStatusTransitionDenied)
	})

	t.Run("setting the current status is a no-op", func(t *testing.T) {
		s := f.scheduleRepo.add(domain.Schedule{
			AthleteID: f.athleteA.ID, CategoryID: f.category.ID, TrainingID: f.training.ID,
			Date: time.Now(), Status: domain.StatusCancelled,
		})
		got, err := f.svc.UpdateScheduleStatus(ctx, f.actor(f.admin), s.ID, domain.StatusCancelled)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, got.Status)
	})

	t.Run("missing schedule reports the requested id", func(t *testing.T) {
		missing := primitive.NewObjectID()
		_, err := f.svc.UpdateScheduleStatus(ctx, f.actor(f.admin), missing, domain.StatusCompleted)
		require.ErrorIs(t, err, ErrScheduleNotFound)
		assert.Contains(t, err.Error(), missing.Hex())
	})
}

func TestDeleteSchedule(t *testing.T) {
	f := newScheduleFixture(t)
	ctx := context.Background()
	s := f.addSchedule(f.athleteA.ID, time.Now())

	t.Run("athlete cannot delete", func(t *testing.T) {
		err := f.svc.DeleteSchedule(ctx, f.actor(f.athleteA), s.ID)
		assert.ErrorIs(t, err, ErrScheduleAccessDenied)
	})

	t.Run("coach deletes", func(t *testing.T) {
		require.NoError(t, f.svc.DeleteSchedule(ctx, f.actor(f.coach), s.ID))
		_, err := f.scheduleRepo.GetByID(ctx, s.ID)
		assert.Error(t, err)
	})

	t.Run("deleting a missing schedule is not found", func(t *testing.T) {
		err := f.svc.DeleteSchedule(ctx, f.actor(f.admin), s.ID)
		assert.ErrorIs(t, err, ErrScheduleNotFound)
	})
}
