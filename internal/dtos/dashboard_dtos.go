package dtos

import "github.com/bibujohny/rentalAI/internal/models"

// Insights is the AI panel content. Every field is plain text.
type Insights struct {
	OK                bool   `json:"ok"`
	Source            string `json:"source"`
	RentPerformance   string `json:"rent_performance"`
	OccupancyForecast string `json:"occupancy_forecast"`
	Alerts            string `json:"alerts"`
	LodgeTrends       string `json:"lodge_trends"`
}

const (
	InsightsSourceHeuristic = "heuristic"
	InsightsSourceOpenAI    = "openai"
)

type ChartSeries struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

type DashboardMetrics struct {
	TotalBuildings int     `json:"total_buildings"`
	TotalTenants   int     `json:"total_tenants"`
	TotalGuests    int     `json:"total_guests"`
	MonthlyRevenue float64 `json:"monthly_revenue"`
}

type DashboardResponse struct {
	Metrics        DashboardMetrics `json:"metrics"`
	RentTrends     ChartSeries      `json:"rent_trends"`
	LodgeOccupancy ChartSeries      `json:"lodge_occupancy"`
	Insights       Insights         `json:"insights"`
}

// StatementSummary is the income/expense digest of an uploaded statement.
type StatementSummary struct {
	IncomeTotal    float64 `json:"income_total"`
	ExpenseTotal   float64 `json:"expense_total"`
	Net            float64 `json:"net"`
	IncomeEntries  int     `json:"income_entries"`
	ExpenseEntries int     `json:"expense_entries"`
}

// SummaryYearView is one year of monthly summaries plus its chart.
type SummaryYearView struct {
	Year      int                      `json:"year"`
	Years     []int                    `json:"years"`
	YearTotal float64                  `json:"year_total"`
	Chart     ChartSeries              `json:"chart"`
	Rows      []*models.MonthlySummary `json:"rows"`
}
