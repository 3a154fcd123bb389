package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/bibujohny/rentalAI/internal/models"
)

// LodgeGuestFilter narrows List. Zero values match everything.
type LodgeGuestFilter struct {
	Status   models.GuestStatus
	StayType models.StayType
}

type LodgeGuestRepository interface {
	Create(ctx context.Context, g *models.LodgeGuest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.LodgeGuest, error)
	// List returns guests newest first.
	List(ctx context.Context, f LodgeGuestFilter) ([]*models.LodgeGuest, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.LodgeGuest) error) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type lodgeGuestRepo struct {
	db   DB
	rows *versionedTable[*models.LodgeGuest]
}

func NewLodgeGuestRepository(db DB) LodgeGuestRepository {
	r := &lodgeGuestRepo{db: db}
	r.rows = &versionedTable[*models.LodgeGuest]{
		db:              db,
		selectByID:      baseSelectLodgeGuest() + " WHERE id=$1",
		scan:            scanLodgeGuest,
		updateIfVersion: r.updateIfVersion,
	}
	return r
}

/* ---------- Create ---------- */

func (r *lodgeGuestRepo) Create(ctx context.Context, g *models.LodgeGuest) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO lodge_guests (
			id, guest_name, room_no, stay_type, check_in_date, check_out_date,
			rate_per_day, monthly_rate, total_amount, status, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,1)
		RETURNING row_version, created_at, updated_at
	`, g.ID, g.GuestName, g.RoomNo, g.StayType, g.CheckInDate, g.CheckOutDate,
		g.RatePerDay, g.MonthlyRate, g.TotalAmount, g.Status)
	return mapPgError(row.Scan(&g.RowVersion, &g.CreatedAt, &g.UpdatedAt))
}

/* ---------- Reads ---------- */

func (r *lodgeGuestRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.LodgeGuest, error) {
	return r.rows.get(ctx, id)
}

func (r *lodgeGuestRepo) List(ctx context.Context, f LodgeGuestFilter) ([]*models.LodgeGuest, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status=$%d", len(args)))
	}
	if f.StayType != "" {
		args = append(args, f.StayType)
		where = append(where, fmt.Sprintf("stay_type=$%d", len(args)))
	}

	query := baseSelectLodgeGuest()
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, check_in_date DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.LodgeGuest
	for rows.Next() {
		g, err := scanLodgeGuest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

/* ---------- Update / Delete ---------- */

func (r *lodgeGuestRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.LodgeGuest) error) error {
	return r.rows.update(ctx, id, mutate)
}

func (r *lodgeGuestRepo) updateIfVersion(ctx context.Context, g *models.LodgeGuest, expectedVersion int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
		UPDATE lodge_guests SET
		      guest_name=$1, room_no=$2, stay_type=$3, check_in_date=$4, check_out_date=$5,
		      rate_per_day=$6, monthly_rate=$7, total_amount=$8, status=$9,
		      row_version=row_version+1, updated_at=NOW()
		WHERE id=$10 AND row_version=$11
	`, g.GuestName, g.RoomNo, g.StayType, g.CheckInDate, g.CheckOutDate,
		g.RatePerDay, g.MonthlyRate, g.TotalAmount, g.Status, g.ID, expectedVersion)
}

func (r *lodgeGuestRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return requireOneRow(r.db.Exec(ctx, `DELETE FROM lodge_guests WHERE id=$1`, id))
}

/* ---------- internals ---------- */

func baseSelectLodgeGuest() string {
	return `
		SELECT id, guest_name, room_no, stay_type, check_in_date, check_out_date,
		       rate_per_day, monthly_rate, total_amount, status, row_version,
		       created_at, updated_at
		FROM lodge_guests`
}

func scanLodgeGuest(row pgx.Row) (*models.LodgeGuest, error) {
	var g models.LodgeGuest
	if err := row.Scan(
		&g.ID, &g.GuestName, &g.RoomNo, &g.StayType, &g.CheckInDate, &g.CheckOutDate,
		&g.RatePerDay, &g.MonthlyRate, &g.TotalAmount, &g.Status, &g.RowVersion,
		&g.CreatedAt, &g.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}
