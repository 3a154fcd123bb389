package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/bibujohny/rentalAI/internal/dtos"
	"github.com/bibujohny/rentalAI/internal/models"
	"github.com/bibujohny/rentalAI/internal/repositories"
	"github.com/bibujohny/rentalAI/internal/utils"
)

var monthAbbrev = [...]string{"", "Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// MonthName returns the three-letter month label, or "" when out of range.
func MonthName(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return monthAbbrev[m]
}

type SummaryService interface {
	// ListYear shows one year; year 0 means the current year.
	ListYear(ctx context.Context, year int) (*dtos.SummaryYearView, error)
	Get(ctx context.Context, id uuid.UUID) (*models.MonthlySummary, error)
	Create(ctx context.Context, form dtos.MonthlySummaryForm) (*models.MonthlySummary, error)
	Update(ctx context.Context, id uuid.UUID, form dtos.MonthlySummaryForm) (*models.MonthlySummary, error)
	// Delete returns the year of the removed summary.
	Delete(ctx context.Context, id uuid.UUID) (int, error)
	ExportXLSX(ctx context.Context, year int) ([]byte, error)
}

type summaryService struct {
	summaries repositories.MonthlySummaryRepository
	now       func() time.Time
}

func NewSummaryService(summaries repositories.MonthlySummaryRepository) SummaryService {
	return &summaryService{summaries: summaries, now: time.Now}
}

func (s *summaryService) ListYear(ctx context.Context, year int) (*dtos.SummaryYearView, error) {
	if year == 0 {
		year = s.now().Year()
	}
	years, err := s.summaries.ListYears(ctx)
	if err != nil {
		return nil, fmt.Errorf("list summary years: %w", err)
	}
	rows, err := s.summaries.ListByYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("list summaries for %d: %w", year, err)
	}

	view := &dtos.SummaryYearView{
		Year:  year,
		Years: withYear(years, year),
		Rows:  rows,
		Chart: dtos.ChartSeries{Labels: []string{}, Values: []float64{}},
	}
	for _, r := range rows {
		view.Chart.Labels = append(view.Chart.Labels, MonthName(r.Month))
		view.Chart.Values = append(view.Chart.Values, r.TotalIncome)
		view.YearTotal += r.TotalIncome
	}
	view.YearTotal = utils.Round2(view.YearTotal)
	return view, nil
}

// withYear inserts year into the descending list when missing.
func withYear(years []int, year int) []int {
	out := make([]int, 0, len(years)+1)
	inserted := false
	for _, y := range years {
		if y == year {
			inserted = true
		} else if !inserted && y < year {
			out = append(out, year)
			inserted = true
		}
		out = append(out, y)
	}
	if !inserted {
		out = append(out, year)
	}
	return out
}

func (s *summaryService) Get(ctx context.Context, id uuid.UUID) (*models.MonthlySummary, error) {
	m, err := s.summaries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("monthly summary %s: %w", id, utils.ErrNotFound)
	}
	return m, nil
}

func (s *summaryService) Create(ctx context.Context, form dtos.MonthlySummaryForm) (*models.MonthlySummary, error) {
	existing, err := s.summaries.GetByYearMonth(ctx, form.Year, form.Month)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("summary for %d-%02d already exists: %w", form.Year, form.Month, utils.ErrConflict)
	}

	m := &models.MonthlySummary{ID: uuid.New()}
	if err := applySummaryForm(m, form); err != nil {
		return nil, err
	}
	if err := s.summaries.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create monthly summary: %w", err)
	}
	return m, nil
}

func (s *summaryService) Update(ctx context.Context, id uuid.UUID, form dtos.MonthlySummaryForm) (*models.MonthlySummary, error) {
	existing, err := s.summaries.GetByYearMonth(ctx, form.Year, form.Month)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.ID != id {
		return nil, fmt.Errorf("summary for %d-%02d already exists: %w", form.Year, form.Month, utils.ErrConflict)
	}

	err = s.summaries.UpdateWithRetry(ctx, id, func(m *models.MonthlySummary) error {
		if m.Year != form.Year || m.Month != form.Month {
			// the period follows the month unless given explicitly
			m.PeriodStart, m.PeriodEnd = nil, nil
		}
		return applySummaryForm(m, form)
	})
	if err != nil {
		return nil, fmt.Errorf("update monthly summary %s: %w", id, err)
	}
	return s.Get(ctx, id)
}

func (s *summaryService) Delete(ctx context.Context, id uuid.UUID) (int, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	if err := s.summaries.Delete(ctx, id); err != nil {
		return 0, fmt.Errorf("delete monthly summary %s: %w", id, err)
	}
	return m.Year, nil
}

func applySummaryForm(m *models.MonthlySummary, form dtos.MonthlySummaryForm) error {
	if form.PeriodStart != nil && form.PeriodEnd != nil && form.PeriodEnd.Before(*form.PeriodStart) {
		return fmt.Errorf("%w: period end is before period start", utils.ErrValidation)
	}
	m.Year = form.Year
	m.Month = form.Month
	if form.PeriodStart != nil {
		m.PeriodStart = form.PeriodStart
	}
	if form.PeriodEnd != nil {
		m.PeriodEnd = form.PeriodEnd
	}
	m.LodgeChakravarthy = utils.Round2(form.LodgeChakravarthy)
	m.MonthlyRentBuilding = utils.Round2(form.MonthlyRentBuilding)
	m.LodgeRelaxInn = utils.Round2(form.LodgeRelaxInn)
	m.MiscIncome = utils.Round2(form.MiscIncome)
	m.Notes = nil
	if notes := strings.TrimSpace(form.Notes); notes != "" {
		m.Notes = &notes
	}
	m.EnsurePeriodDefaults()
	m.ComputeTotal()
	return nil
}

const summarySheet = "Summaries"

var summaryHeader = []string{
	"Month", "Period start", "Period end", "Lodge Chakravarthy", "Monthly rent (building)",
	"Lodge Relax Inn", "Misc income", "Total income", "Notes",
}

// ExportXLSX renders one year of summaries as a workbook with a totals row.
func (s *summaryService) ExportXLSX(ctx context.Context, year int) ([]byte, error) {
	view, err := s.ListYear(ctx, year)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(summarySheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	for col, h := range summaryHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(summarySheet, cell, h); err != nil {
			return nil, err
		}
	}

	for i, m := range view.Rows {
		row := i + 2
		values := []any{
			fmt.Sprintf("%s %d", MonthName(m.Month), m.Year),
			formatDatePtr(m.PeriodStart),
			formatDatePtr(m.PeriodEnd),
			m.LodgeChakravarthy,
			m.MonthlyRentBuilding,
			m.LodgeRelaxInn,
			m.MiscIncome,
			m.TotalIncome,
			utils.Val(m.Notes),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(summarySheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	totalRow := len(view.Rows) + 2
	labelCell, _ := excelize.CoordinatesToCellName(1, totalRow)
	totalCell, _ := excelize.CoordinatesToCellName(8, totalRow)
	if err := f.SetCellValue(summarySheet, labelCell, "Total"); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(summarySheet, totalCell, view.YearTotal); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
