package service

import (
	"context"

	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
)

// UserService maintains user profile rows derived from JWT claims.
type UserService interface {
	// EnsureUser upserts the profile row for an authenticated user.
	EnsureUser(ctx context.Context, userID, email string) (*model.User, error)
	GetUser(ctx context.Context, userID string) (*model.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	logger   zerolog.Logger
}

func NewUserService(userRepo repository.UserRepository, logger zerolog.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		logger:   logger.With().Str("service", "UserService").Logger(),
	}
}

func (s *userService) EnsureUser(ctx context.Context, userID, email string) (*model.User, error) {
	u := &model.User{UserID: userID, Email: email}
	if err := s.userRepo.UpsertUser(ctx, u); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to upsert user profile")
		return nil, err
	}
	return u, nil
}

func (s *userService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to fetch user profile")
		return nil, err
	}
	return u, nil
}
