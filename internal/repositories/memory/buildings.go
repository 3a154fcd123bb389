package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/bibujohny/rentalAI/internal/models"
	"github.com/bibujohny/rentalAI/internal/utils"
)

type buildingRepo struct{ s *Store }

func (r *buildingRepo) Create(ctx context.Context, b *models.Building) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.buildings[b.ID]; ok {
		return utils.ErrConflict
	}
	b.CreatedAt = r.s.now()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	r.s.buildings[b.ID] = &cp
	return nil
}

func (r *buildingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Building, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.buildings[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *buildingRepo) List(ctx context.Context) ([]*models.Building, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*models.Building, 0, len(r.s.buildings))
	for _, b := range r.s.buildings {
		cp := *b
		out = append(out, &cp)
	}
	sortBy(out, func(a, b *models.Building) bool {
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return out, nil
}

func (r *buildingRepo) Count(ctx context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.buildings), nil
}

func (r *buildingRepo) Update(ctx context.Context, b *models.Building) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.buildings[b.ID]
	if !ok {
		return utils.ErrNotFound
	}
	b.CreatedAt = existing.CreatedAt
	b.UpdatedAt = r.s.now()
	cp := *b
	r.s.buildings[b.ID] = &cp
	return nil
}

func (r *buildingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.buildings[id]; !ok {
		return utils.ErrNotFound
	}
	for _, t := range r.s.tenants {
		if t.BuildingID == id {
			// mirrors the tenants.building_id foreign key
			return utils.ErrConflict
		}
	}
	delete(r.s.buildings, id)
	return nil
}
