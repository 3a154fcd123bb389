package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/bibujohny/rentalAI/internal/models"
	"github.com/bibujohny/rentalAI/internal/repositories"
	"github.com/bibujohny/rentalAI/internal/utils"
)

type lodgeGuestRepo struct{ s *Store }

func (r *lodgeGuestRepo) Create(ctx context.Context, g *models.LodgeGuest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.guests[g.ID]; ok {
		return utils.ErrConflict
	}
	g.RowVersion = 1
	g.CreatedAt = r.s.now()
	g.UpdatedAt = g.CreatedAt
	r.s.guests[g.ID] = &guestRow{seq: r.s.nextSeq(), guest: *g}
	return nil
}

func (r *lodgeGuestRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.LodgeGuest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.guests[id]
	if !ok {
		return nil, nil
	}
	cp := row.guest
	return &cp, nil
}

func (r *lodgeGuestRepo) List(ctx context.Context, f repositories.LodgeGuestFilter) ([]*models.LodgeGuest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var rows []*guestRow
	for _, row := range r.s.guests {
		if f.Status != "" && row.guest.Status != f.Status {
			continue
		}
		if f.StayType != "" && row.guest.StayType != f.StayType {
			continue
		}
		rows = append(rows, row)
	}
	sortBy(rows, func(a, b *guestRow) bool { return a.seq > b.seq })

	out := make([]*models.LodgeGuest, 0, len(rows))
	for _, row := range rows {
		cp := row.guest
		out = append(out, &cp)
	}
	return out, nil
}

// UpdateWithRetry applies mutate to a copy and stores it atomically, so
// contention cannot occur here.
func (r *lodgeGuestRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.LodgeGuest) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.guests[id]
	if !ok {
		return utils.ErrNotFound
	}
	cp := row.guest
	if err := mutate(&cp); err != nil {
		return err
	}
	cp.ID = id
	cp.CreatedAt = row.guest.CreatedAt
	cp.RowVersion = row.guest.RowVersion + 1
	cp.UpdatedAt = r.s.now()
	row.guest = cp
	return nil
}

func (r *lodgeGuestRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.guests[id]; !ok {
		return utils.ErrNotFound
	}
	delete(r.s.guests, id)
	return nil
}
