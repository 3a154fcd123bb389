package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bibujohny/rentalAI/internal/models"
	"github.com/bibujohny/rentalAI/internal/repositories"
	"github.com/bibujohny/rentalAI/internal/utils"
)

const (
	DemoUsername = "admin"
	DemoPassword = "admin"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// SeedDemoData creates the demo login and, when no building exists yet, a
// small sample portfolio. It is safe to run repeatedly.
func SeedDemoData(ctx context.Context, repos repositories.Set) error {
	admin, err := repos.Users.GetByUsername(ctx, DemoUsername)
	if err != nil {
		return fmt.Errorf("lookup demo user: %w", err)
	}
	if admin == nil {
		hash, err := utils.HashPassword(DemoPassword)
		if err != nil {
			return fmt.Errorf("hash demo password: %w", err)
		}
		admin = &models.User{ID: uuid.New(), Username: DemoUsername, PasswordHash: hash}
		if err := repos.Users.Create(ctx, admin); err != nil {
			return fmt.Errorf("create demo user: %w", err)
		}
		utils.Logger.Infof("Seeded demo user %q", DemoUsername)
	}

	count, err := repos.Buildings.Count(ctx)
	if err != nil {
		return fmt.Errorf("count buildings: %w", err)
	}
	if count > 0 {
		utils.Logger.Debug("Buildings already present; skipping demo portfolio seed")
		return nil
	}

	building := &models.Building{
		ID:         uuid.New(),
		Name:       "Puthenpurayil Arcade",
		Address:    "Kayamkulam",
		Pincode:    "691501",
		TotalRooms: 20,
	}
	if err := repos.Buildings.Create(ctx, building); err != nil {
		return fmt.Errorf("seed building: %w", err)
	}

	tenants := []*models.Tenant{
		{ID: uuid.New(), BuildingID: building.ID, Name: "Anu Mathew", RentAmount: 12000, StartDate: d(2024, 1, 1), ConsumerNumber: "CN001", DepositAmount: 24000},
		{ID: uuid.New(), BuildingID: building.ID, Name: "Rahul Nair", RentAmount: 9000, StartDate: d(2024, 3, 15), ConsumerNumber: "CN002", DepositAmount: 18000},
	}
	for _, t := range tenants {
		if err := repos.Tenants.Create(ctx, t); err != nil {
			return fmt.Errorf("seed tenant %s: %w", t.Name, err)
		}
	}

	checkout := d(2024, 5, 3)
	guests := []*models.LodgeGuest{
		{ID: uuid.New(), GuestName: "John Doe", RoomNo: "101", StayType: models.StayTypeDaily, CheckInDate: d(2024, 5, 1), CheckOutDate: &checkout, RatePerDay: 800, Status: models.GuestStatusCheckedOut},
		{ID: uuid.New(), GuestName: "Mary Ann", RoomNo: "102", StayType: models.StayTypeMonthly, CheckInDate: d(2024, 5, 1), MonthlyRate: 15000, Status: models.GuestStatusCheckedIn},
	}
	for _, g := range guests {
		g.CalculateTotal()
		if err := repos.LodgeGuests.Create(ctx, g); err != nil {
			return fmt.Errorf("seed lodge guest %s: %w", g.GuestName, err)
		}
	}

	utils.Logger.Info("Seeded demo portfolio")
	return nil
}
