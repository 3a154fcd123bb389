package dtos

import (
	"time"

	"github.com/google/uuid"

	"github.com/bibujohny/rentalAI/internal/models"
)

type CredentialsForm struct {
	Username string `validate:"required,min=3,max=80"`
	Password string `validate:"required,min=4,max=128"`
}

type BuildingForm struct {
	Name       string `validate:"required,max=120"`
	Address    string `validate:"max=255"`
	Pincode    string `validate:"max=20"`
	TotalRooms int    `validate:"gte=0,lte=100000"`
}

type TenantForm struct {
	BuildingID     uuid.UUID  `validate:"required"`
	Name           string     `validate:"required,max=120"`
	RentAmount     float64    `validate:"gte=0"`
	StartDate      *time.Time // today when empty
	EndDate        *time.Time
	ConsumerNumber string  `validate:"max=64"`
	DepositAmount  float64 `validate:"gte=0"`
}

type LodgeGuestForm struct {
	GuestName    string          `validate:"required,max=120"`
	RoomNo       string          `validate:"required,max=20"`
	StayType     models.StayType `validate:"required,oneof=daily monthly"`
	CheckInDate  *time.Time      // today when empty
	CheckOutDate *time.Time
	RatePerDay   float64            `validate:"gte=0"`
	MonthlyRate  float64            `validate:"gte=0"`
	Status       models.GuestStatus `validate:"omitempty,oneof=checked_in checked_out"`
}

type MonthlySummaryForm struct {
	Year                int `validate:"required,gte=2000,lte=2100"`
	Month               int `validate:"required,gte=1,lte=12"`
	PeriodStart         *time.Time
	PeriodEnd           *time.Time
	LodgeChakravarthy   float64 `validate:"gte=0"`
	MonthlyRentBuilding float64 `validate:"gte=0"`
	LodgeRelaxInn       float64 `validate:"gte=0"`
	MiscIncome          float64 `validate:"gte=0"`
	Notes               string  `validate:"max=2000"`
}
