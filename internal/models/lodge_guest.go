package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type StayType string

const (
	StayTypeDaily   StayType = "daily"
	StayTypeMonthly StayType = "monthly"
)

type GuestStatus string

const (
	GuestStatusCheckedIn  GuestStatus = "checked_in"
	GuestStatusCheckedOut GuestStatus = "checked_out"
)

type LodgeGuest struct {
	Versioned
	ID           uuid.UUID   `json:"id"`
	GuestName    string      `json:"guest_name"`
	RoomNo       string      `json:"room_no"`
	StayType     StayType    `json:"stay_type"`
	CheckInDate  time.Time   `json:"check_in_date"`
	CheckOutDate *time.Time  `json:"check_out_date,omitempty"`
	RatePerDay   float64     `json:"rate_per_day"`
	MonthlyRate  float64     `json:"monthly_rate"`
	TotalAmount  float64     `json:"total_amount"`
	Status       GuestStatus `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}


// CalculateTotal recomputes TotalAmount from the stay type. Daily stays bill
// whole nights between check-in and check-out, with a same-day stay billed as
// one night; monthly stays bill the monthly rate. Anything else keeps the
// stored total.
func (g *LodgeGuest) CalculateTotal() {
	switch g.StayType {
	case StayTypeDaily:
		if g.CheckOutDate == nil {
			return
		}
		days := int(g.CheckOutDate.Sub(g.CheckInDate).Hours() / 24)
		if days <= 0 {
			days = 1
		}
		g.TotalAmount = round2(float64(days) * g.RatePerDay)
	case StayTypeMonthly:
		g.TotalAmount = round2(g.MonthlyRate)
	}
}

// StayOverlaps reports whether the stay intersects [from, to]. Open stays
// run until further notice.
func (g *LodgeGuest) StayOverlaps(from, to time.Time) bool {
	if g.CheckInDate.After(to) {
		return false
	}
	return g.CheckOutDate == nil || !g.CheckOutDate.Before(from)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
