package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/bibujohny/rentalAI/internal/models"
)

type TenantRepository interface {
	Create(ctx context.Context, t *models.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	List(ctx context.Context) ([]*models.Tenant, error)
	ListByBuildingID(ctx context.Context, buildingID uuid.UUID) ([]*models.Tenant, error)
	CountByBuildingID(ctx context.Context, buildingID uuid.UUID) (int, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, t *models.Tenant) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type tenantRepo struct{ db DB }

func NewTenantRepository(db DB) TenantRepository {
	return &tenantRepo{db: db}
}

/* ---------- Create ---------- */

func (r *tenantRepo) Create(ctx context.Context, t *models.Tenant) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO tenants (
			id, building_id, name, rent_amount, start_date, end_date,
			consumer_number, deposit_amount
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at, updated_at
	`, t.ID, t.BuildingID, t.Name, t.RentAmount, t.StartDate, t.EndDate,
		t.ConsumerNumber, t.DepositAmount)
	return mapPgError(row.Scan(&t.CreatedAt, &t.UpdatedAt))
}

/* ---------- Reads ---------- */

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	row := r.db.QueryRow(ctx, baseSelectTenant()+" WHERE id=$1", id)
	return scanTenant(row)
}

func (r *tenantRepo) List(ctx context.Context) ([]*models.Tenant, error) {
	return r.list(ctx, baseSelectTenant()+" ORDER BY name, created_at")
}

func (r *tenantRepo) ListByBuildingID(ctx context.Context, buildingID uuid.UUID) ([]*models.Tenant, error) {
	return r.list(ctx, baseSelectTenant()+" WHERE building_id=$1 ORDER BY name, created_at", buildingID)
}

func (r *tenantRepo) CountByBuildingID(ctx context.Context, buildingID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tenants WHERE building_id=$1`, buildingID).Scan(&n)
	return n, err
}

func (r *tenantRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tenants`).Scan(&n)
	return n, err
}

/* ---------- Update / Delete ---------- */

func (r *tenantRepo) Update(ctx context.Context, t *models.Tenant) error {
	return requireOneRow(r.db.Exec(ctx, `
		UPDATE tenants SET
		      building_id=$1, name=$2, rent_amount=$3, start_date=$4, end_date=$5,
		      consumer_number=$6, deposit_amount=$7, updated_at=NOW()
		WHERE id=$8
	`, t.BuildingID, t.Name, t.RentAmount, t.StartDate, t.EndDate,
		t.ConsumerNumber, t.DepositAmount, t.ID))
}

func (r *tenantRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return requireOneRow(r.db.Exec(ctx, `DELETE FROM tenants WHERE id=$1`, id))
}

/* ---------- internals ---------- */

func (r *tenantRepo) list(ctx context.Context, query string, args ...any) ([]*models.Tenant, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func baseSelectTenant() string {
	return `
		SELECT id, building_id, name, rent_amount, start_date, end_date,
		       consumer_number, deposit_amount, created_at, updated_at
		FROM tenants`
}

func scanTenant(row pgx.Row) (*models.Tenant, error) {
	var t models.Tenant
	if err := row.Scan(
		&t.ID, &t.BuildingID, &t.Name, &t.RentAmount, &t.StartDate, &t.EndDate,
		&t.ConsumerNumber, &t.DepositAmount, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}
