package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bibujohny/rentalAI/internal/models"
)

type loginAttemptsRepo struct{ s *Store }

func (r *loginAttemptsRepo) Get(ctx context.Context, userID uuid.UUID) (*models.LoginAttempts, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	la, ok := r.s.attempts[userID]
	if !ok {
		return nil, nil
	}
	cp := *la
	return &cp, nil
}

func (r *loginAttemptsRepo) RecordFailure(
	ctx context.Context,
	userID uuid.UUID,
	lockDuration, window time.Duration,
	maxAttempts int,
) (*models.LoginAttempts, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()

	la, ok := r.s.attempts[userID]
	switch {
	case !ok:
		la = &models.LoginAttempts{UserID: userID, AttemptCount: 1, CreatedAt: now}
		if maxAttempts <= 1 {
			until := now.Add(lockDuration)
			la.LockedUntil = &until
		}
		r.s.attempts[userID] = la
	case la.IsLocked(now):
		// counting is frozen while locked
	case now.Sub(la.UpdatedAt) > window:
		la.AttemptCount = 1
		la.LockedUntil = nil
	default:
		la.AttemptCount++
		la.LockedUntil = nil
		if la.AttemptCount >= maxAttempts {
			until := now.Add(lockDuration)
			la.LockedUntil = &until
		}
	}
	la.UpdatedAt = now

	cp := *la
	return &cp, nil
}

func (r *loginAttemptsRepo) Reset(ctx context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.attempts, userID)
	return nil
}

func (r *loginAttemptsRepo) CleanupStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	var n int64
	for id, la := range r.s.attempts {
		if la.IsLocked(now) {
			continue
		}
		if now.Sub(la.UpdatedAt) > olderThan {
			delete(r.s.attempts, id)
			n++
		}
	}
	return n, nil
}
