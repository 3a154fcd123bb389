package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/bibujohny/rentalAI/internal/models"
)

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

type BuildingRepository interface {
	Create(ctx context.Context, b *models.Building) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Building, error)
	List(ctx context.Context) ([]*models.Building, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, b *models.Building) error
	Delete(ctx context.Context, id uuid.UUID) error
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type buildingRepo struct{ db DB }

func NewBuildingRepository(db DB) BuildingRepository {
	return &buildingRepo{db: db}
}

/* ---------- Create ---------- */

func (r *buildingRepo) Create(ctx context.Context, b *models.Building) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO buildings (id, name, address, pincode, total_rooms)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at, updated_at
	`, b.ID, b.Name, b.Address, b.Pincode, b.TotalRooms)
	return mapPgError(row.Scan(&b.CreatedAt, &b.UpdatedAt))
}

/* ---------- Reads ---------- */

func (r *buildingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Building, error) {
	row := r.db.QueryRow(ctx, baseSelectBuilding()+" WHERE id=$1", id)
	return scanBuilding(row)
}

func (r *buildingRepo) List(ctx context.Context) ([]*models.Building, error) {
	rows, err := r.db.Query(ctx, baseSelectBuilding()+" ORDER BY name, created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Building
	for rows.Next() {
		b, err := scanBuilding(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *buildingRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM buildings`).Scan(&n)
	return n, err
}

/* ---------- Update / Delete ---------- */

func (r *buildingRepo) Update(ctx context.Context, b *models.Building) error {
	return requireOneRow(r.db.Exec(ctx, `
		UPDATE buildings SET
		      name=$1, address=$2, pincode=$3, total_rooms=$4, updated_at=NOW()
		WHERE id=$5
	`, b.Name, b.Address, b.Pincode, b.TotalRooms, b.ID))
}

func (r *buildingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return requireOneRow(r.db.Exec(ctx, `DELETE FROM buildings WHERE id=$1`, id))
}

/* ---------- internals ---------- */

func baseSelectBuilding() string {
	return `
		SELECT id, name, address, pincode, total_rooms, created_at, updated_at
		FROM buildings`
}

func scanBuilding(row pgx.Row) (*models.Building, error) {
	var b models.Building
	if err := row.Scan(
		&b.ID, &b.Name, &b.Address, &b.Pincode, &b.TotalRooms, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}
