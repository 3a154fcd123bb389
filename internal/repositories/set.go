package repositories

// Set groups the repositories the services are built from.
type Set struct {
	Users         UserRepository
	Buildings     BuildingRepository
	Tenants       TenantRepository
	LodgeGuests   LodgeGuestRepository
	Summaries     MonthlySummaryRepository
	LoginAttempts LoginAttemptsRepository
}

// NewSet builds the Postgres-backed repositories over db.
func NewSet(db DB) Set {
	return Set{
		Users:         NewUserRepository(db),
		Buildings:     NewBuildingRepository(db),
		Tenants:       NewTenantRepository(db),
		LodgeGuests:   NewLodgeGuestRepository(db),
		Summaries:     NewMonthlySummaryRepository(db),
		LoginAttempts: NewLoginAttemptsRepository(db),
	}
}
