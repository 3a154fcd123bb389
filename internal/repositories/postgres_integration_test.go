//go:build integration

package repositories_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibujohny/rentalAI/internal/database"
	"github.com/bibujohny/rentalAI/internal/models"
	"github.com/bibujohny/rentalAI/internal/repositories"
	"github.com/bibujohny/rentalAI/internal/utils"
)

func openTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.Connect(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	migrator, err := database.NewMigrator(pool)
	require.NoError(t, err)
	_, err = migrator.Up(ctx)
	require.NoError(t, err)

	applied, err := migrator.Up(ctx)
	require.NoError(t, err)
	require.Empty(t, applied)

	_, err = pool.Exec(ctx, `TRUNCATE login_attempts, users, lodge_guests, monthly_summaries, tenants, buildings CASCADE`)
	require.NoError(t, err)
	return pool
}

func TestPostgresRepositories(t *testing.T) {
	pool := openTestDB(t)
	repos := repositories.NewSet(pool)
	ctx := context.Background()

	user := &models.User{ID: uuid.New(), Username: "manager", PasswordHash: "x"}
	require.NoError(t, repos.Users.Create(ctx, user))
	dup := &models.User{ID: uuid.New(), Username: "manager", PasswordHash: "y"}
	assert.ErrorIs(t, repos.Users.Create(ctx, dup), utils.ErrConflict)
	missing, err := repos.Users.GetByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	b := &models.Building{ID: uuid.New(), Name: "Arcade", TotalRooms: 8}
	require.NoError(t, repos.Buildings.Create(ctx, b))
	tenant := &models.Tenant{ID: uuid.New(), BuildingID: b.ID, Name: "Anu", RentAmount: 12000,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, repos.Tenants.Create(ctx, tenant))
	n, err := repos.Tenants.CountByBuildingID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	g := &models.LodgeGuest{ID: uuid.New(), GuestName: "John", RoomNo: "101", StayType: models.StayTypeDaily,
		CheckInDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), RatePerDay: 800, Status: models.GuestStatusCheckedIn}
	require.NoError(t, repos.LodgeGuests.Create(ctx, g))
	require.NoError(t, repos.LodgeGuests.UpdateWithRetry(ctx, g.ID, func(cur *models.LodgeGuest) error {
		cur.Status = models.GuestStatusCheckedOut
		return nil
	}))
	got, err := repos.LodgeGuests.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GuestStatusCheckedOut, got.Status)
	assert.Equal(t, int64(2), got.RowVersion)

	out, err := repos.LodgeGuests.List(ctx, repositories.LodgeGuestFilter{Status: models.GuestStatusCheckedIn})
	require.NoError(t, err)
	assert.Empty(t, out)

	s := &models.MonthlySummary{ID: uuid.New(), Year: 2024, Month: 2, MonthlyRentBuilding: 21000}
	s.EnsurePeriodDefaults()
	s.ComputeTotal()
	require.NoError(t, repos.Summaries.Create(ctx, s))
	again := &models.MonthlySummary{ID: uuid.New(), Year: 2024, Month: 2}
	assert.ErrorIs(t, repos.Summaries.Create(ctx, again), utils.ErrConflict)
	years, err := repos.Summaries.ListYears(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{2024}, years)

	a, err := repos.LoginAttempts.RecordFailure(ctx, user.ID, time.Minute, time.Minute, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, a.AttemptCount)
	a, err = repos.LoginAttempts.RecordFailure(ctx, user.ID, time.Minute, time.Minute, 2)
	require.NoError(t, err)
	require.NotNil(t, a.LockedUntil)
	require.NoError(t, repos.LoginAttempts.Reset(ctx, user.ID))
	a, err = repos.LoginAttempts.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, a)

	require.NoError(t, repos.Tenants.Delete(ctx, tenant.ID))
	require.NoError(t, repos.Buildings.Delete(ctx, b.ID))
	assert.ErrorIs(t, repos.Buildings.Delete(ctx, b.ID), utils.ErrNotFound)
}
