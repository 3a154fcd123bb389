package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibujohny/rentalAI/internal/models"
	"github.com/bibujohny/rentalAI/internal/repositories"
	"github.com/bibujohny/rentalAI/internal/utils"
)

func TestLoginAttemptsLockAndWindow(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })
	repo := store.Repositories().LoginAttempts
	uid := uuid.New()

	for i := 1; i <= 2; i++ {
		la, err := repo.RecordFailure(ctx, uid, 15*time.Minute, 15*time.Minute, 3)
		require.NoError(t, err)
		assert.Equal(t, i, la.AttemptCount)
		assert.False(t, la.IsLocked(now))
	}

	la, err := repo.RecordFailure(ctx, uid, 15*time.Minute, 15*time.Minute, 3)
	require.NoError(t, err)
	assert.True(t, la.IsLocked(now))

	// failures while locked do not extend the lock
	now = now.Add(5 * time.Minute)
	again, err := repo.RecordFailure(ctx, uid, 15*time.Minute, 15*time.Minute, 3)
	require.NoError(t, err)
	assert.Equal(t, *la.LockedUntil, *again.LockedUntil)

	// a failure after the window restarts the count
	now = now.Add(time.Hour)
	la, err = repo.RecordFailure(ctx, uid, 15*time.Minute, 15*time.Minute, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, la.AttemptCount)
	assert.False(t, la.IsLocked(now))

	require.NoError(t, repo.Reset(ctx, uid))
	la, err = repo.Get(ctx, uid)
	require.NoError(t, err)
	assert.Nil(t, la)
}

func TestLoginAttemptsCleanupStale(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })
	repo := store.Repositories().LoginAttempts

	idle, locked := uuid.New(), uuid.New()
	_, _ = repo.RecordFailure(ctx, idle, time.Hour, time.Hour, 5)
	_, _ = repo.RecordFailure(ctx, locked, 72*time.Hour, time.Hour, 1)

	now = now.Add(25 * time.Hour)
	n, err := repo.CleanupStale(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	la, _ := repo.Get(ctx, locked)
	assert.NotNil(t, la)
	la, _ = repo.Get(ctx, idle)
	assert.Nil(t, la)
}

func TestSummariesUniqueMonth(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Repositories().Summaries

	jan := &models.MonthlySummary{ID: uuid.New(), Year: 2024, Month: 1}
	feb := &models.MonthlySummary{ID: uuid.New(), Year: 2024, Month: 2}
	require.NoError(t, repo.Create(ctx, jan))
	require.NoError(t, repo.Create(ctx, feb))
	require.NoError(t, repo.Create(ctx, &models.MonthlySummary{ID: uuid.New(), Year: 2023, Month: 12}))

	err := repo.Create(ctx, &models.MonthlySummary{ID: uuid.New(), Year: 2024, Month: 1})
	assert.ErrorIs(t, err, utils.ErrConflict)

	err = repo.UpdateWithRetry(ctx, feb.ID, func(s *models.MonthlySummary) error {
		s.Month = 1
		return nil
	})
	assert.ErrorIs(t, err, utils.ErrConflict)

	require.NoError(t, repo.UpdateWithRetry(ctx, feb.ID, func(s *models.MonthlySummary) error {
		s.MiscIncome = 10
		return nil
	}))
	got, err := repo.GetByID(ctx, feb.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.RowVersion)
	assert.Equal(t, 2, got.Month)

	years, err := repo.ListYears(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{2024, 2023}, years)

	list, err := repo.ListByYear(ctx, 2024)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].Month)
}

func TestLodgeGuestsNewestFirstAndFilter(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Repositories().LodgeGuests

	first := &models.LodgeGuest{ID: uuid.New(), GuestName: "A", StayType: models.StayTypeDaily, Status: models.GuestStatusCheckedOut}
	second := &models.LodgeGuest{ID: uuid.New(), GuestName: "B", StayType: models.StayTypeMonthly, Status: models.GuestStatusCheckedIn}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	all, err := repo.List(ctx, repositories.LodgeGuestFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "B", all[0].GuestName)

	in, err := repo.List(ctx, repositories.LodgeGuestFilter{Status: models.GuestStatusCheckedIn})
	require.NoError(t, err)
	require.Len(t, in, 1)
	assert.Equal(t, "B", in[0].GuestName)

	daily, err := repo.List(ctx, repositories.LodgeGuestFilter{StayType: models.StayTypeDaily})
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, "A", daily[0].GuestName)
}

func TestBuildingDeleteBlockedByTenants(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repositories()

	b := &models.Building{ID: uuid.New(), Name: "Arcade"}
	require.NoError(t, repos.Buildings.Create(ctx, b))

	orphan := &models.Tenant{ID: uuid.New(), BuildingID: uuid.New(), Name: "x"}
	assert.ErrorIs(t, repos.Tenants.Create(ctx, orphan), utils.ErrNotFound)

	tn := &models.Tenant{ID: uuid.New(), BuildingID: b.ID, Name: "Anu"}
	require.NoError(t, repos.Tenants.Create(ctx, tn))
	assert.ErrorIs(t, repos.Buildings.Delete(ctx, b.ID), utils.ErrConflict)

	require.NoError(t, repos.Tenants.Delete(ctx, tn.ID))
	require.NoError(t, repos.Buildings.Delete(ctx, b.ID))
	assert.ErrorIs(t, repos.Buildings.Delete(ctx, b.ID), utils.ErrNotFound)
}
