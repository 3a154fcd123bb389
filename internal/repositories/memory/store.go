// Package memory holds map-backed repositories for DATA_BACKEND=memory and
// for tests. All repositories created from one Store share its lock.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bibujohny/rentalAI/internal/models"
	"github.com/bibujohny/rentalAI/internal/repositories"
)

type Store struct {
	mu        sync.RWMutex
	seq       int64
	users     map[uuid.UUID]*models.User
	buildings map[uuid.UUID]*models.Building
	tenants   map[uuid.UUID]*models.Tenant
	guests    map[uuid.UUID]*guestRow
	summaries map[uuid.UUID]*models.MonthlySummary
	attempts  map[uuid.UUID]*models.LoginAttempts
	now       func() time.Time
}

type guestRow struct {
	seq   int64
	guest models.LodgeGuest
}

func NewStore() *Store {
	return &Store{
		users:     make(map[uuid.UUID]*models.User),
		buildings: make(map[uuid.UUID]*models.Building),
		tenants:   make(map[uuid.UUID]*models.Tenant),
		guests:    make(map[uuid.UUID]*guestRow),
		summaries: make(map[uuid.UUID]*models.MonthlySummary),
		attempts:  make(map[uuid.UUID]*models.LoginAttempts),
		now:       time.Now,
	}
}

// SetClock replaces the time source. Tests use it to age login attempts.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Repositories bundles every repository backed by this store.
func (s *Store) Repositories() repositories.Set {
	return repositories.Set{
		Users:         &userRepo{s},
		Buildings:     &buildingRepo{s},
		Tenants:       &tenantRepo{s},
		LodgeGuests:   &lodgeGuestRepo{s},
		Summaries:     &summaryRepo{s},
		LoginAttempts: &loginAttemptsRepo{s},
	}
}

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

func sortBy[T any](list []T, less func(a, b T) bool) {
	sort.SliceStable(list, func(i, j int) bool { return less(list[i], list[j]) })
}
