package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibujohny/rentalAI/internal/dtos"
	"github.com/bibujohny/rentalAI/internal/models"
)

func TestDashboardBuild(t *testing.T) {
	ctx := context.Background()
	repos := newRepos()
	b := seedBuilding(t, repos, "Arcade")
	tenants := NewTenantService(repos.Tenants, repos.Buildings)
	lodge := NewLodgeService(repos.LodgeGuests)

	_, err := tenants.Create(ctx, dtos.TenantForm{BuildingID: b.ID, Name: "Anu", RentAmount: 12000, StartDate: dayPtr(2024, 1, 1)})
	require.NoError(t, err)
	_, err = tenants.Create(ctx, dtos.TenantForm{BuildingID: b.ID, Name: "Rahul", RentAmount: 9000, StartDate: dayPtr(2024, 3, 15)})
	require.NoError(t, err)
	_, err = lodge.Create(ctx, dtos.LodgeGuestForm{GuestName: "Mary", RoomNo: "102", StayType: models.StayTypeMonthly, CheckInDate: dayPtr(2024, 5, 1), MonthlyRate: 15000})
	require.NoError(t, err)
	_, err = lodge.Create(ctx, dtos.LodgeGuestForm{
		GuestName: "John", RoomNo: "101", StayType: models.StayTypeDaily,
		CheckInDate: dayPtr(2024, 5, 1), CheckOutDate: dayPtr(2024, 5, 3), RatePerDay: 800,
		Status: models.GuestStatusCheckedOut,
	})
	require.NoError(t, err)

	svc := NewDashboardService(repos, NewInsightsService("", "", false, nil)).(*dashboardService)
	svc.now = fixedNow(day(2024, 5, 20))

	out, err := svc.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, dtos.DashboardMetrics{TotalBuildings: 1, TotalTenants: 2, TotalGuests: 1, MonthlyRevenue: 36000}, out.Metrics)

	require.Len(t, out.RentTrends.Values, 12)
	assert.Equal(t, "Jan", out.RentTrends.Labels[0])
	assert.Equal(t, 12000.0, out.RentTrends.Values[0])
	assert.Equal(t, 21000.0, out.RentTrends.Values[2])

	assert.Equal(t, []string{"Week 1", "Week 2", "Week 3", "Week 4"}, out.LodgeOccupancy.Labels)
	assert.Equal(t, []float64{2, 1, 1, 1}, out.LodgeOccupancy.Values)

	assert.Equal(t, dtos.InsightsSourceHeuristic, out.Insights.Source)
	assert.Equal(t, "Collecting ₹21,000 from 2 tenants (avg ₹10,500).", out.Insights.RentPerformance)
	assert.Equal(t, "Daily: 1, Monthly: 1. Keep a healthy mix to stabilize revenue.", out.Insights.LodgeTrends)
}

func TestRentTrendRespectsEndDate(t *testing.T) {
	tenants := []*models.Tenant{
		{RentAmount: 1000, StartDate: day(2023, 6, 1), EndDate: dayPtr(2024, 2, 10)},
	}
	series := RentTrend(tenants, 2024)
	assert.Equal(t, 1000.0, series.Values[0])
	assert.Equal(t, 1000.0, series.Values[1])
	assert.Equal(t, 0.0, series.Values[2])
}

func TestLodgeOccupancyLastWeekRunsToMonthEnd(t *testing.T) {
	guests := []*models.LodgeGuest{
		{CheckInDate: day(2024, 1, 30), CheckOutDate: dayPtr(2024, 1, 31)},
	}
	series := LodgeOccupancy(guests, day(2024, 1, 15))
	assert.Equal(t, []float64{0, 0, 0, 1}, series.Values)
}
