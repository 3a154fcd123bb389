package services

import (
	"context"

	"github.com/bibujohny/rentalAI/internal/constants"
	"github.com/bibujohny/rentalAI/internal/repositories"
	"github.com/bibujohny/rentalAI/internal/utils"
)

// LoginCleanupService prunes idle login-attempt rows.
type LoginCleanupService struct {
	attempts repositories.LoginAttemptsRepository
}

func NewLoginCleanupService(attempts repositories.LoginAttemptsRepository) *LoginCleanupService {
	return &LoginCleanupService{attempts: attempts}
}

// CleanupDaily is scheduled by cron.
func (s *LoginCleanupService) CleanupDaily(ctx context.Context) error {
	n, err := s.attempts.CleanupStale(ctx, constants.LoginAttemptsStaleAfter)
	if err != nil {
		utils.Logger.WithError(err).Error("Login attempts cleanup failed")
		return err
	}
	utils.Logger.WithField("removed", n).Info("Login attempts cleanup finished")
	return nil
}
