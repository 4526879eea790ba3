package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/chayma544/BookMate-back/internal/domain"
	"github.com/chayma544/BookMate-back/internal/platform/logger"
)

// UserService provides profile operations. Registration and login live in
// the auth flow; this service covers reading and maintaining profiles.
type UserService interface {
	// GetUser retrieves a user's profile.
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// UpdateProfile applies an allow-listed sparse update to a profile.
	// Users may update themselves; admins may update anyone.
	UpdateProfile(ctx context.Context, actor Actor, userID uuid.UUID, patch domain.UserPatch) (*domain.User, error)

	// DeleteUser removes an account along with its listings and requests.
	// Users may delete themselves; admins may delete anyone.
	DeleteUser(ctx context.Context, actor Actor, userID uuid.UUID) error
}

type userServiceImpl struct {
	userRepo UserRepository
	logger   *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo UserRepository, logger *slog.Logger) (UserService, error) {
	if userRepo == nil {
		return nil, NewServiceError("user", "new", "userRepo cannot be nil", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &userServiceImpl{
		userRepo: userRepo,
		logger:   logger.With(slog.String("component", "user_service")),
	}, nil
}

// GetUser implements UserService.GetUser.
func (s *userServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateProfile implements UserService.UpdateProfile.
func (s *userServiceImpl) UpdateProfile(
	ctx context.Context,
	actor Actor,
	userID uuid.UUID,
	patch domain.UserPatch,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !actor.Admin && !actor.Is(userID) {
		return nil, ErrNotOwned
	}
	if patch.IsEmpty() {
		return nil, ErrEmptyUpdate
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := patch.Apply(user); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	log.Info("profile updated", slog.String("user_id", userID.String()))
	return user, nil
}

// DeleteUser implements UserService.DeleteUser.
func (s *userServiceImpl) DeleteUser(ctx context.Context, actor Actor, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !actor.Admin && !actor.Is(userID) {
		return ErrNotOwned
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}

	log.Info("user deleted", slog.String("user_id", userID.String()))
	return nil
}
