package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/bibujohny/rentalAI/internal/models"
	"github.com/bibujohny/rentalAI/internal/utils"
)

type tenantRepo struct{ s *Store }

func (r *tenantRepo) Create(ctx context.Context, t *models.Tenant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.buildings[t.BuildingID]; !ok {
		return utils.ErrNotFound
	}
	t.CreatedAt = r.s.now()
	t.UpdatedAt = t.CreatedAt
	cp := *t
	r.s.tenants[t.ID] = &cp
	return nil
}

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tenants[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *tenantRepo) List(ctx context.Context) ([]*models.Tenant, error) {
	return r.filter(func(*models.Tenant) bool { return true }), nil
}

func (r *tenantRepo) ListByBuildingID(ctx context.Context, buildingID uuid.UUID) ([]*models.Tenant, error) {
	return r.filter(func(t *models.Tenant) bool { return t.BuildingID == buildingID }), nil
}

func (r *tenantRepo) CountByBuildingID(ctx context.Context, buildingID uuid.UUID) (int, error) {
	list, _ := r.ListByBuildingID(ctx, buildingID)
	return len(list), nil
}

func (r *tenantRepo) Count(ctx context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.tenants), nil
}

func (r *tenantRepo) Update(ctx context.Context, t *models.Tenant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.tenants[t.ID]
	if !ok {
		return utils.ErrNotFound
	}
	if _, ok := r.s.buildings[t.BuildingID]; !ok {
		return utils.ErrNotFound
	}
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = r.s.now()
	cp := *t
	r.s.tenants[t.ID] = &cp
	return nil
}

func (r *tenantRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tenants[id]; !ok {
		return utils.ErrNotFound
	}
	delete(r.s.tenants, id)
	return nil
}

func (r *tenantRepo) filter(keep func(*models.Tenant) bool) []*models.Tenant {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*models.Tenant
	for _, t := range r.s.tenants {
		if keep(t) {
			cp := *t
			out = append(out, &cp)
		}
	}
	sortBy(out, func(a, b *models.Tenant) bool {
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return out
}
