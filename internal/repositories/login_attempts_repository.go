package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/bibujohny/rentalAI/internal/models"
)

type LoginAttemptsRepository interface {
	// Get returns nil when the user has no recorded attempts.
	Get(ctx context.Context, userID uuid.UUID) (*models.LoginAttempts, error)
	// RecordFailure counts a failed login. Failures older than window restart
	// the count; reaching maxAttempts locks the account for lockDuration.
	RecordFailure(ctx context.Context, userID uuid.UUID, lockDuration, window time.Duration, maxAttempts int) (*models.LoginAttempts, error)
	Reset(ctx context.Context, userID uuid.UUID) error
	// CleanupStale deletes unlocked rows untouched for olderThan.
	CleanupStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

type loginAttemptsRepo struct{ db DB }

func NewLoginAttemptsRepository(db DB) LoginAttemptsRepository {
	return &loginAttemptsRepo{db: db}
}

func (r *loginAttemptsRepo) Get(ctx context.Context, userID uuid.UUID) (*models.LoginAttempts, error) {
	row := r.db.QueryRow(ctx, `
		SELECT user_id, attempt_count, locked_until, updated_at, created_at
		FROM login_attempts
		WHERE user_id = $1
	`, userID)
	return scanLoginAttempts(row)
}

func (r *loginAttemptsRepo) RecordFailure(
	ctx context.Context,
	userID uuid.UUID,
	lockDuration, window time.Duration,
	maxAttempts int,
) (*models.LoginAttempts, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO login_attempts (user_id, attempt_count, locked_until, updated_at, created_at)
		VALUES ($1, 1, CASE WHEN $4 <= 1 THEN NOW() + $2 ELSE NULL END, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
		    attempt_count = CASE
		        WHEN login_attempts.locked_until IS NOT NULL AND login_attempts.locked_until > NOW()
		            THEN login_attempts.attempt_count
		        WHEN (NOW() - login_attempts.updated_at) > $3 THEN 1
		        ELSE login_attempts.attempt_count + 1
		    END,
		    locked_until = CASE
		        WHEN login_attempts.locked_until IS NOT NULL AND login_attempts.locked_until > NOW()
		            THEN login_attempts.locked_until
		        WHEN (NOW() - login_attempts.updated_at) <= $3 AND login_attempts.attempt_count + 1 >= $4
		            THEN NOW() + $2
		        ELSE NULL
		    END,
		    updated_at = NOW()
		RETURNING user_id, attempt_count, locked_until, updated_at, created_at
	`, userID, lockDuration, window, maxAttempts)
	return scanLoginAttempts(row)
}

func (r *loginAttemptsRepo) Reset(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM login_attempts WHERE user_id = $1`, userID)
	return err
}

func (r *loginAttemptsRepo) CleanupStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM login_attempts
		WHERE (locked_until IS NULL OR locked_until < NOW())
		  AND updated_at < NOW() - $1
	`, olderThan)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanLoginAttempts(row pgx.Row) (*models.LoginAttempts, error) {
	la := &models.LoginAttempts{}
	if err := row.Scan(&la.UserID, &la.AttemptCount, &la.LockedUntil, &la.UpdatedAt, &la.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return la, nil
}
