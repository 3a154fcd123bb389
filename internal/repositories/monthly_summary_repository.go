package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/bibujohny/rentalAI/internal/models"
)

type MonthlySummaryRepository interface {
	// Create fails with utils.ErrConflict when the month already has a summary.
	Create(ctx context.Context, s *models.MonthlySummary) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.MonthlySummary, error)
	GetByYearMonth(ctx context.Context, year, month int) (*models.MonthlySummary, error)
	ListByYear(ctx context.Context, year int) ([]*models.MonthlySummary, error)
	// ListYears returns the distinct years with data, newest first.
	ListYears(ctx context.Context) ([]int, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.MonthlySummary) error) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type monthlySummaryRepo struct {
	db   DB
	rows *versionedTable[*models.MonthlySummary]
}

func NewMonthlySummaryRepository(db DB) MonthlySummaryRepository {
	r := &monthlySummaryRepo{db: db}
	r.rows = &versionedTable[*models.MonthlySummary]{
		db:              db,
		selectByID:      baseSelectSummary() + " WHERE id=$1",
		scan:            scanSummary,
		updateIfVersion: r.updateIfVersion,
	}
	return r
}

/* ---------- Create ---------- */

func (r *monthlySummaryRepo) Create(ctx context.Context, s *models.MonthlySummary) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO monthly_summaries (
			id, year, month, period_start, period_end, lodge_chakravarthy,
			monthly_rent_building, lodge_relax_inn, misc_income, total_income,
			notes, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,1)
		RETURNING row_version, created_at, updated_at
	`, s.ID, s.Year, s.Month, s.PeriodStart, s.PeriodEnd, s.LodgeChakravarthy,
		s.MonthlyRentBuilding, s.LodgeRelaxInn, s.MiscIncome, s.TotalIncome, s.Notes)
	return mapPgError(row.Scan(&s.RowVersion, &s.CreatedAt, &s.UpdatedAt))
}

/* ---------- Reads ---------- */

func (r *monthlySummaryRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.MonthlySummary, error) {
	return r.rows.get(ctx, id)
}

func (r *monthlySummaryRepo) GetByYearMonth(ctx context.Context, year, month int) (*models.MonthlySummary, error) {
	row := r.db.QueryRow(ctx, baseSelectSummary()+" WHERE year=$1 AND month=$2", year, month)
	return scanSummary(row)
}

func (r *monthlySummaryRepo) ListByYear(ctx context.Context, year int) ([]*models.MonthlySummary, error) {
	rows, err := r.db.Query(ctx, baseSelectSummary()+" WHERE year=$1 ORDER BY month", year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.MonthlySummary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *monthlySummaryRepo) ListYears(ctx context.Context) ([]int, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT year FROM monthly_summaries ORDER BY year DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

/* ---------- Update / Delete ---------- */

func (r *monthlySummaryRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.MonthlySummary) error) error {
	return r.rows.update(ctx, id, mutate)
}

func (r *monthlySummaryRepo) updateIfVersion(ctx context.Context, s *models.MonthlySummary, expectedVersion int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
		UPDATE monthly_summaries SET
		      year=$1, month=$2, period_start=$3, period_end=$4, lodge_chakravarthy=$5,
		      monthly_rent_building=$6, lodge_relax_inn=$7, misc_income=$8,
		      total_income=$9, notes=$10, row_version=row_version+1, updated_at=NOW()
		WHERE id=$11 AND row_version=$12
	`, s.Year, s.Month, s.PeriodStart, s.PeriodEnd, s.LodgeChakravarthy,
		s.MonthlyRentBuilding, s.LodgeRelaxInn, s.MiscIncome, s.TotalIncome, s.Notes,
		s.ID, expectedVersion)
}

func (r *monthlySummaryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return requireOneRow(r.db.Exec(ctx, `DELETE FROM monthly_summaries WHERE id=$1`, id))
}

/* ---------- internals ---------- */

func baseSelectSummary() string {
	return `
		SELECT id, year, month, period_start, period_end, lodge_chakravarthy,
		       monthly_rent_building, lodge_relax_inn, misc_income, total_income,
		       notes, row_version, created_at, updated_at
		FROM monthly_summaries`
}

func scanSummary(row pgx.Row) (*models.MonthlySummary, error) {
	var s models.MonthlySummary
	if err := row.Scan(
		&s.ID, &s.Year, &s.Month, &s.PeriodStart, &s.PeriodEnd, &s.LodgeChakravarthy,
		&s.MonthlyRentBuilding, &s.LodgeRelaxInn, &s.MiscIncome, &s.TotalIncome,
		&s.Notes, &s.RowVersion, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}
