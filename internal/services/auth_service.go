package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bibujohny/rentalAI/internal/constants"
	"github.com/bibujohny/rentalAI/internal/models"
	"github.com/bibujohny/rentalAI/internal/repositories"
	"github.com/bibujohny/rentalAI/internal/utils"
)

// AuthService registers users and checks credentials with login lockout.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.User, error)
}

type authService struct {
	users    repositories.UserRepository
	attempts repositories.LoginAttemptsRepository
	now      func() time.Time
}

func NewAuthService(users repositories.UserRepository, attempts repositories.LoginAttemptsRepository) AuthService {
	return &authService{users: users, attempts: attempts, now: time.Now}
}

func (s *authService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)

	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return nil, utils.ErrUsernameExists
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{ID: uuid.New(), Username: username, PasswordHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, utils.ErrConflict) {
			return nil, utils.ErrUsernameExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	utils.Logger.WithField("username", username).Info("Registered user")
	return u, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return nil, utils.ErrInvalidCredentials
	}

	la, err := s.attempts.Get(ctx, user.ID)
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to read login attempts")
		return nil, fmt.Errorf("read login attempts: %w", err)
	}
	if la.IsLocked(s.now()) {
		return nil, fmt.Errorf("%w until %s", utils.ErrLockedAccount, la.LockedUntil.UTC().Format(time.RFC3339))
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		if _, incErr := s.attempts.RecordFailure(ctx, user.ID,
			constants.LoginLockDuration, constants.LoginAttemptWindow, constants.MaxLoginAttempts,
		); incErr != nil {
			utils.Logger.WithError(incErr).Error("Failed to record login failure")
		}
		return nil, utils.ErrInvalidCredentials
	}

	if err := s.attempts.Reset(ctx, user.ID); err != nil {
		utils.Logger.WithError(err).Warn("Failed to reset login attempts")
	}
	return user, nil
}
