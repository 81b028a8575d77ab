package service

import (
	"context"
	"errors"
	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/repository"
)

var ErrUserAccessDenied = errors.New("access denied to list users")

// UserService exposes the read-side of the user catalog that scheduling
// callers need: which athletes an actor may schedule for.
type UserService interface {
	// ListAthletes returns the athletes visible to the actor: all of them for
	// an admin, the supervised set for a coach.
	ListAthletes(ctx context.Context, actor Actor) ([]domain.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new instance of userService.
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) ListAthletes(ctx context.Context, actor Actor) ([]domain.User, error) {
	var (
		athletes []domain.User
		err      error
	)

	switch actor.Role {
	case domain.RoleAdmin:
		athletes, err = s.userRepo.GetByRole(ctx, domain.RoleAthlete)
	case domain.RoleCoach:
		athletes, err = s.userRepo.GetByCoachID(ctx, actor.ID)
	default:
		return nil, ErrUserAccessDenied
	}
	if err != nil {
		return nil, err
	}

	// Never leak hashes through listings.
	for i := range athletes {
		athletes[i].PasswordHash = ""
	}
	return athletes, nil
}
