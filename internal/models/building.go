package models

import (
	"time"

	"github.com/google/uuid"
)

type Building struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Address    string    `json:"address,omitempty"`
	Pincode    string    `json:"pincode,omitempty"`
	TotalRooms int       `json:"total_rooms"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Tenant struct {
	ID             uuid.UUID  `json:"id"`
	BuildingID     uuid.UUID  `json:"building_id"`
	Name           string     `json:"name"`
	RentAmount     float64    `json:"rent_amount"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	ConsumerNumber string     `json:"consumer_number,omitempty"`
	DepositAmount  float64    `json:"deposit_amount"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ActiveDuring reports whether the tenancy overlaps the closed date range
// [from, to].
func (t *Tenant) ActiveDuring(from, to time.Time) bool {
	if t.StartDate.After(to) {
		return false
	}
	return t.EndDate == nil || !t.EndDate.Before(from)
}
