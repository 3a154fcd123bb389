package services

import (
	"context"
	"fmt"
	"time"

	"github.com/bibujohny/rentalAI/internal/constants"
	"github.com/bibujohny/rentalAI/internal/dtos"
	"github.com/bibujohny/rentalAI/internal/models"
	"github.com/bibujohny/rentalAI/internal/repositories"
	"github.com/bibujohny/rentalAI/internal/utils"
)

type DashboardService interface {
	Build(ctx context.Context) (*dtos.DashboardResponse, error)
}

type dashboardService struct {
	repos    repositories.Set
	insights InsightsService
	now      func() time.Time
}

func NewDashboardService(repos repositories.Set, insights InsightsService) DashboardService {
	return &dashboardService{repos: repos, insights: insights, now: time.Now}
}

func (s *dashboardService) Build(ctx context.Context) (*dtos.DashboardResponse, error) {
	buildings, err := s.repos.Buildings.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count buildings: %w", err)
	}
	tenants, err := s.repos.Tenants.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	guests, err := s.repos.LodgeGuests.List(ctx, repositories.LodgeGuestFilter{})
	if err != nil {
		return nil, fmt.Errorf("list lodge guests: %w", err)
	}

	snap := PortfolioSnapshot{TenantCount: len(tenants)}
	revenue := 0.0
	for _, t := range tenants {
		snap.RentTotal += t.RentAmount
	}
	revenue += snap.RentTotal
	for _, g := range guests {
		if g.Status == models.GuestStatusCheckedIn {
			snap.ActiveGuests++
		}
		switch g.StayType {
		case models.StayTypeDaily:
			snap.DailyGuests++
		case models.StayTypeMonthly:
			snap.MonthlyGuests++
			revenue += g.MonthlyRate
		}
	}
	snap.RentTotal = utils.Round2(snap.RentTotal)

	today := utils.DateOnly(s.now())
	return &dtos.DashboardResponse{
		Metrics: dtos.DashboardMetrics{
			TotalBuildings: buildings,
			TotalTenants:   len(tenants),
			TotalGuests:    snap.ActiveGuests,
			MonthlyRevenue: utils.Round2(revenue),
		},
		RentTrends:     RentTrend(tenants, today.Year()),
		LodgeOccupancy: LodgeOccupancy(guests, today),
		Insights:       s.insights.Generate(ctx, snap),
	}, nil
}

// RentTrend sums the rent of tenants active in each month of year.
func RentTrend(tenants []*models.Tenant, year int) dtos.ChartSeries {
	out := dtos.ChartSeries{
		Labels: make([]string, 0, constants.RentTrendMonths),
		Values: make([]float64, 0, constants.RentTrendMonths),
	}
	for m := 1; m <= constants.RentTrendMonths; m++ {
		from := time.Date(year, time.Month(m), 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 1, -1)
		total := 0.0
		for _, t := range tenants {
			if t.ActiveDuring(from, to) {
				total += t.RentAmount
			}
		}
		out.Labels = append(out.Labels, MonthName(m))
		out.Values = append(out.Values, utils.Round2(total))
	}
	return out
}

// LodgeOccupancy counts guests staying in each week of ref's month. The last
// bucket runs to the end of the month.
func LodgeOccupancy(guests []*models.LodgeGuest, ref time.Time) dtos.ChartSeries {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	out := dtos.ChartSeries{
		Labels: make([]string, 0, constants.LodgeOccupancyWeeks),
		Values: make([]float64, 0, constants.LodgeOccupancyWeeks),
	}
	for w := 0; w < constants.LodgeOccupancyWeeks; w++ {
		from := first.AddDate(0, 0, 7*w)
		to := from.AddDate(0, 0, 6)
		if w == constants.LodgeOccupancyWeeks-1 {
			to = last
		}
		n := 0
		for _, g := range guests {
			if g.StayOverlaps(from, to) {
				n++
			}
		}
		out.Labels = append(out.Labels, fmt.Sprintf("Week %d", w+1))
		out.Values = append(out.Values, float64(n))
	}
	return out
}
