package repositories

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibujohny/rentalAI/internal/models"
	"github.com/bibujohny/rentalAI/internal/utils"
)

func TestUpdateWithRetrySucceedsAfterContention(t *testing.T) {
	stored := &models.LodgeGuest{GuestName: "John"}
	stored.RowVersion = 1

	calls := 0
	get := func(ctx context.Context) (*models.LodgeGuest, error) {
		cp := *stored
		return &cp, nil
	}
	update := func(ctx context.Context, g *models.LodgeGuest, expected int64) (pgconn.CommandTag, error) {
		calls++
		if calls == 1 {
			// a concurrent writer got there first
			stored.RowVersion++
			return pgconn.CommandTag("UPDATE 0"), nil
		}
		if expected != stored.RowVersion {
			return pgconn.CommandTag("UPDATE 0"), nil
		}
		*stored = *g
		stored.RowVersion = expected + 1
		return pgconn.CommandTag("UPDATE 1"), nil
	}

	var seen *models.LodgeGuest
	err := updateWithRetry(context.Background(), 3, get, update, func(g *models.LodgeGuest) error {
		g.Status = models.GuestStatusCheckedOut
		seen = g
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, models.GuestStatusCheckedOut, stored.Status)
	assert.Equal(t, int64(3), stored.RowVersion)
	assert.Equal(t, int64(3), seen.RowVersion)
}

func TestUpdateWithRetryGivesUp(t *testing.T) {
	get := func(ctx context.Context) (*models.LodgeGuest, error) {
		return &models.LodgeGuest{}, nil
	}
	update := func(ctx context.Context, g *models.LodgeGuest, expected int64) (pgconn.CommandTag, error) {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	err := updateWithRetry(context.Background(), 3, get, update, func(*models.LodgeGuest) error { return nil })
	assert.ErrorIs(t, err, utils.ErrRowVersionConflict)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestUpdateWithRetryStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	load := func(context.Context) (*models.LodgeGuest, error) {
		t.Fatal("load must not run")
		return nil, nil
	}
	err := updateWithRetry(ctx, 3, load, nil, func(*models.LodgeGuest) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUpdateWithRetryMissingAndMutateErrors(t *testing.T) {
	missing := func(ctx context.Context) (*models.LodgeGuest, error) { return nil, nil }
	never := func(ctx context.Context, g *models.LodgeGuest, expected int64) (pgconn.CommandTag, error) {
		t.Fatal("update must not run")
		return nil, nil
	}
	err := updateWithRetry(context.Background(), 3, missing, never, func(*models.LodgeGuest) error { return nil })
	assert.ErrorIs(t, err, utils.ErrNotFound)

	found := func(ctx context.Context) (*models.LodgeGuest, error) { return &models.LodgeGuest{}, nil }
	boom := errors.New("boom")
	err = updateWithRetry(context.Background(), 3, found, never, func(*models.LodgeGuest) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestMapPgError(t *testing.T) {
	assert.NoError(t, mapPgError(nil))

	dup := &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "monthly_summaries_year_month_key"}
	err := mapPgError(fmt.Errorf("insert: %w", dup))
	assert.ErrorIs(t, err, utils.ErrConflict)
	assert.Contains(t, err.Error(), "monthly_summaries_year_month_key")

	other := errors.New("connection reset")
	assert.Equal(t, other, mapPgError(other))
}

func TestRequireOneRow(t *testing.T) {
	assert.NoError(t, requireOneRow(pgconn.CommandTag("DELETE 1"), nil))
	assert.ErrorIs(t, requireOneRow(pgconn.CommandTag("DELETE 0"), nil), utils.ErrNotFound)
}
