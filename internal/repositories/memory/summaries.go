package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/bibujohny/rentalAI/internal/models"
	"github.com/bibujohny/rentalAI/internal/utils"
)

type summaryRepo struct{ s *Store }

func (r *summaryRepo) Create(ctx context.Context, m *models.MonthlySummary) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.monthTakenLocked(m.Year, m.Month, uuid.Nil) {
		return utils.ErrConflict
	}
	m.RowVersion = 1
	m.CreatedAt = r.s.now()
	m.UpdatedAt = m.CreatedAt
	cp := *m
	r.s.summaries[m.ID] = &cp
	return nil
}

func (r *summaryRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.MonthlySummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.summaries[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *summaryRepo) GetByYearMonth(ctx context.Context, year, month int) (*models.MonthlySummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, m := range r.s.summaries {
		if m.Year == year && m.Month == month {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *summaryRepo) ListByYear(ctx context.Context, year int) ([]*models.MonthlySummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*models.MonthlySummary
	for _, m := range r.s.summaries {
		if m.Year == year {
			cp := *m
			out = append(out, &cp)
		}
	}
	sortBy(out, func(a, b *models.MonthlySummary) bool { return a.Month < b.Month })
	return out, nil
}

func (r *summaryRepo) ListYears(ctx context.Context) ([]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	seen := make(map[int]struct{})
	var years []int
	for _, m := range r.s.summaries {
		if _, ok := seen[m.Year]; ok {
			continue
		}
		seen[m.Year] = struct{}{}
		years = append(years, m.Year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

func (r *summaryRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.MonthlySummary) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.summaries[id]
	if !ok {
		return utils.ErrNotFound
	}
	cp := *existing
	if err := mutate(&cp); err != nil {
		return err
	}
	if r.monthTakenLocked(cp.Year, cp.Month, id) {
		return utils.ErrConflict
	}
	cp.ID = id
	cp.CreatedAt = existing.CreatedAt
	cp.RowVersion = existing.RowVersion + 1
	cp.UpdatedAt = r.s.now()
	r.s.summaries[id] = &cp
	return nil
}

func (r *summaryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.summaries[id]; !ok {
		return utils.ErrNotFound
	}
	delete(r.s.summaries, id)
	return nil
}

func (r *summaryRepo) monthTakenLocked(year, month int, except uuid.UUID) bool {
	for id, m := range r.s.summaries {
		if id != except && m.Year == year && m.Month == month {
			return true
		}
	}
	return false
}
