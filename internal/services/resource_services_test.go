package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/bibujohny/rentalAI/internal/dtos"
	"github.com/bibujohny/rentalAI/internal/models"
	"github.com/bibujohny/rentalAI/internal/repositories"
	"github.com/bibujohny/rentalAI/internal/utils"
)

func TestBuildingDeleteRefusedWhileTenanted(t *testing.T) {
	ctx := context.Background()
	repos := newRepos()
	buildings := NewBuildingService(repos.Buildings, repos.Tenants)
	tenants := NewTenantService(repos.Tenants, repos.Buildings)

	b := seedBuilding(t, repos, "Arcade")
	tn, err := tenants.Create(ctx, dtos.TenantForm{BuildingID: b.ID, Name: "Anu", RentAmount: 12000})
	require.NoError(t, err)

	assert.ErrorIs(t, buildings.Delete(ctx, b.ID), utils.ErrConflict)

	got, list, err := buildings.Detail(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Arcade", got.Name)
	require.Len(t, list, 1)

	require.NoError(t, tenants.Delete(ctx, tn.ID))
	require.NoError(t, buildings.Delete(ctx, b.ID))

	_, err = buildings.Get(ctx, b.ID)
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestBuildingUpdateTrimsFields(t *testing.T) {
	ctx := context.Background()
	repos := newRepos()
	svc := NewBuildingService(repos.Buildings, repos.Tenants)
	b := seedBuilding(t, repos, "Arcade")

	updated, err := svc.Update(ctx, b.ID, dtos.BuildingForm{Name: "  Arcade East ", Pincode: " 691501 ", TotalRooms: 12})
	require.NoError(t, err)
	assert.Equal(t, "Arcade East", updated.Name)
	assert.Equal(t, "691501", updated.Pincode)
	assert.Equal(t, 12, updated.TotalRooms)
}

func TestTenantRules(t *testing.T) {
	ctx := context.Background()
	repos := newRepos()
	svc := NewTenantService(repos.Tenants, repos.Buildings).(*tenantService)
	svc.now = fixedNow(time.Date(2024, 6, 10, 15, 30, 0, 0, time.UTC))
	b := seedBuilding(t, repos, "Arcade")

	t.Run("unknown building", func(t *testing.T) {
		_, err := svc.Create(ctx, dtos.TenantForm{BuildingID: uuid.New(), Name: "Anu"})
		assert.ErrorIs(t, err, utils.ErrNotFound)
	})

	t.Run("start defaults to today", func(t *testing.T) {
		tn, err := svc.Create(ctx, dtos.TenantForm{BuildingID: b.ID, Name: "Anu", RentAmount: 9000.456})
		require.NoError(t, err)
		assert.Equal(t, day(2024, 6, 10), tn.StartDate)
		assert.Equal(t, 9000.46, tn.RentAmount)
	})

	t.Run("end before start", func(t *testing.T) {
		_, err := svc.Create(ctx, dtos.TenantForm{
			BuildingID: b.ID, Name: "Rahul",
			StartDate: dayPtr(2024, 6, 1), EndDate: dayPtr(2024, 5, 1),
		})
		assert.ErrorIs(t, err, utils.ErrValidation)
	})
}

func TestLodgeCreateAndCheckout(t *testing.T) {
	ctx := context.Background()
	repos := newRepos()
	svc := NewLodgeService(repos.LodgeGuests).(*lodgeService)
	svc.now = fixedNow(day(2024, 5, 4))

	g, err := svc.Create(ctx, dtos.LodgeGuestForm{
		GuestName: "John", RoomNo: "101", StayType: models.StayTypeDaily,
		CheckInDate: dayPtr(2024, 5, 1), RatePerDay: 800,
	})
	require.NoError(t, err)
	assert.Equal(t, models.GuestStatusCheckedIn, g.Status)
	assert.Zero(t, g.TotalAmount)

	out, err := svc.Checkout(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GuestStatusCheckedOut, out.Status)
	require.NotNil(t, out.CheckOutDate)
	assert.Equal(t, day(2024, 5, 4), *out.CheckOutDate)
	assert.Equal(t, 2400.0, out.TotalAmount)
	assert.Equal(t, g.RowVersion+1, out.RowVersion)
}

func TestLodgeCheckoutKeepsExistingDate(t *testing.T) {
	ctx := context.Background()
	repos := newRepos()
	svc := NewLodgeService(repos.LodgeGuests).(*lodgeService)
	svc.now = fixedNow(day(2024, 5, 20))

	g, err := svc.Create(ctx, dtos.LodgeGuestForm{
		GuestName: "Mary", RoomNo: "102", StayType: models.StayTypeDaily,
		CheckInDate: dayPtr(2024, 5, 1), CheckOutDate: dayPtr(2024, 5, 3), RatePerDay: 500,
	})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, g.TotalAmount)

	out, err := svc.Checkout(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, day(2024, 5, 3), *out.CheckOutDate)
}

func TestLodgeUpdateAndFilters(t *testing.T) {
	ctx := context.Background()
	repos := newRepos()
	svc := NewLodgeService(repos.LodgeGuests)

	daily, err := svc.Create(ctx, dtos.LodgeGuestForm{GuestName: "A", RoomNo: "1", StayType: models.StayTypeDaily, RatePerDay: 700})
	require.NoError(t, err)
	_, err = svc.Create(ctx, dtos.LodgeGuestForm{GuestName: "B", RoomNo: "2", StayType: models.StayTypeMonthly, MonthlyRate: 15000})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, daily.ID, dtos.LodgeGuestForm{
		GuestName: "A", RoomNo: "1", StayType: models.StayTypeMonthly, MonthlyRate: 14000,
	})
	require.NoError(t, err)
	assert.Equal(t, 14000.0, updated.TotalAmount)

	monthly, err := svc.List(ctx, repositories.LodgeGuestFilter{StayType: models.StayTypeMonthly})
	require.NoError(t, err)
	assert.Len(t, monthly, 2)

	_, err = svc.Update(ctx, daily.ID, dtos.LodgeGuestForm{
		GuestName: "A", RoomNo: "1", StayType: models.StayTypeDaily,
		CheckInDate: dayPtr(2024, 5, 5), CheckOutDate: dayPtr(2024, 5, 1),
	})
	assert.ErrorIs(t, err, utils.ErrValidation)

	require.NoError(t, svc.Delete(ctx, daily.ID))
	assert.ErrorIs(t, svc.Delete(ctx, daily.ID), utils.ErrNotFound)
}

func TestSummaryListYear(t *testing.T) {
	ctx := context.Background()
	repos := newRepos()
	svc := NewSummaryService(repos.Summaries).(*summaryService)
	svc.now = fixedNow(day(2025, 3, 1))

	_, err := svc.Create(ctx, dtos.MonthlySummaryForm{Year: 2024, Month: 3, MonthlyRentBuilding: 21000, MiscIncome: 500})
	require.NoError(t, err)
	_, err = svc.Create(ctx, dtos.MonthlySummaryForm{Year: 2024, Month: 1, LodgeChakravarthy: 1000, Notes: "  "})
	require.NoError(t, err)

	view, err := svc.ListYear(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, []int{2024}, view.Years)
	assert.Equal(t, []string{"Jan", "Mar"}, view.Chart.Labels)
	assert.Equal(t, []float64{1000, 21500}, view.Chart.Values)
	assert.Equal(t, 22500.0, view.YearTotal)
	assert.Nil(t, view.Rows[0].Notes)

	current, err := svc.ListYear(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 2025, current.Year)
	assert.Equal(t, []int{2025, 2024}, current.Years)
	assert.Empty(t, current.Rows)
	assert.Equal(t, []string{}, current.Chart.Labels)
}

func TestSummaryDuplicateMonth(t *testing.T) {
	ctx := context.Background()
	repos := newRepos()
	svc := NewSummaryService(repos.Summaries)

	jan, err := svc.Create(ctx, dtos.MonthlySummaryForm{Year: 2024, Month: 1})
	require.NoError(t, err)
	feb, err := svc.Create(ctx, dtos.MonthlySummaryForm{Year: 2024, Month: 2})
	require.NoError(t, err)

	_, err = svc.Create(ctx, dtos.MonthlySummaryForm{Year: 2024, Month: 1})
	assert.ErrorIs(t, err, utils.ErrConflict)

	_, err = svc.Update(ctx, feb.ID, dtos.MonthlySummaryForm{Year: 2024, Month: 1})
	assert.ErrorIs(t, err, utils.ErrConflict)

	// same month on itself is fine; moving resets the default period
	moved, err := svc.Update(ctx, jan.ID, dtos.MonthlySummaryForm{Year: 2024, Month: 4, MiscIncome: 10})
	require.NoError(t, err)
	assert.Equal(t, day(2024, 4, 1), *moved.PeriodStart)
	assert.Equal(t, day(2024, 4, 30), *moved.PeriodEnd)
	assert.Equal(t, 10.0, moved.TotalIncome)

	year, err := svc.Delete(ctx, moved.ID)
	require.NoError(t, err)
	assert.Equal(t, 2024, year)
}

func TestSummaryExportXLSX(t *testing.T) {
	ctx := context.Background()
	repos := newRepos()
	svc := NewSummaryService(repos.Summaries)

	_, err := svc.Create(ctx, dtos.MonthlySummaryForm{Year: 2024, Month: 2, MonthlyRentBuilding: 21000, Notes: "late rent"})
	require.NoError(t, err)

	raw, err := svc.ExportXLSX(ctx, 2024)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Month", rows[0][0])
	assert.Equal(t, "Feb 2024", rows[1][0])
	assert.Equal(t, "2024-02-01", rows[1][1])
	assert.Equal(t, "late rent", rows[1][8])
	assert.Equal(t, "Total", rows[2][0])
	assert.Equal(t, "21000", rows[2][7])
}

func TestWithYear(t *testing.T) {
	assert.Equal(t, []int{2024}, withYear(nil, 2024))
	assert.Equal(t, []int{2025, 2024, 2023}, withYear([]int{2025, 2023}, 2024))
	assert.Equal(t, []int{2024, 2023}, withYear([]int{2024, 2023}, 2024))
	assert.Equal(t, []int{2023, 2022, 2021}, withYear([]int{2023, 2022}, 2021))
}
