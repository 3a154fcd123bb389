package models

import (
	"time"

	"github.com/google/uuid"
)

// MonthlySummary records income by source for one calendar month.
type MonthlySummary struct {
	Versioned
	ID                  uuid.UUID  `json:"id"`
	Year                int        `json:"year"`
	Month               int        `json:"month"`
	PeriodStart         *time.Time `json:"period_start,omitempty"`
	PeriodEnd           *time.Time `json:"period_end,omitempty"`
	LodgeChakravarthy   float64    `json:"lodge_chakravarthy"`
	MonthlyRentBuilding float64    `json:"monthly_rent_building"`
	LodgeRelaxInn       float64    `json:"lodge_relax_inn"`
	MiscIncome          float64    `json:"misc_income"`
	TotalIncome         float64    `json:"total_income"`
	Notes               *string    `json:"notes,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}


func (s *MonthlySummary) ComputeTotal() {
	s.TotalIncome = round2(s.LodgeChakravarthy + s.MonthlyRentBuilding + s.LodgeRelaxInn + s.MiscIncome)
}

// EnsurePeriodDefaults fills an unset period with the first and last day of
// the summary's month.
func (s *MonthlySummary) EnsurePeriodDefaults() {
	if s.Year == 0 || s.Month < 1 || s.Month > 12 {
		return
	}
	if s.PeriodStart == nil {
		start := time.Date(s.Year, time.Month(s.Month), 1, 0, 0, 0, 0, time.UTC)
		s.PeriodStart = &start
	}
	if s.PeriodEnd == nil {
		end := time.Date(s.Year, time.Month(s.Month)+1, 0, 0, 0, 0, 0, time.UTC)
		s.PeriodEnd = &end
	}
}
