package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bibujohny/rentalAI/internal/dtos"
	"github.com/bibujohny/rentalAI/internal/models"
	"github.com/bibujohny/rentalAI/internal/repositories"
	"github.com/bibujohny/rentalAI/internal/utils"
)

type LodgeService interface {
	List(ctx context.Context, f repositories.LodgeGuestFilter) ([]*models.LodgeGuest, error)
	Get(ctx context.Context, id uuid.UUID) (*models.LodgeGuest, error)
	Create(ctx context.Context, form dtos.LodgeGuestForm) (*models.LodgeGuest, error)
	Update(ctx context.Context, id uuid.UUID, form dtos.LodgeGuestForm) (*models.LodgeGuest, error)
	// Checkout closes a stay. A missing check-out date becomes today.
	Checkout(ctx context.Context, id uuid.UUID) (*models.LodgeGuest, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type lodgeService struct {
	guests repositories.LodgeGuestRepository
	now    func() time.Time
}

func NewLodgeService(guests repositories.LodgeGuestRepository) LodgeService {
	return &lodgeService{guests: guests, now: time.Now}
}

func (s *lodgeService) List(ctx context.Context, f repositories.LodgeGuestFilter) ([]*models.LodgeGuest, error) {
	return s.guests.List(ctx, f)
}

func (s *lodgeService) Get(ctx context.Context, id uuid.UUID) (*models.LodgeGuest, error) {
	g, err := s.guests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, fmt.Errorf("lodge guest %s: %w", id, utils.ErrNotFound)
	}
	return g, nil
}

func (s *lodgeService) Create(ctx context.Context, form dtos.LodgeGuestForm) (*models.LodgeGuest, error) {
	g := &models.LodgeGuest{ID: uuid.New()}
	if err := s.apply(g, form); err != nil {
		return nil, err
	}
	if err := s.guests.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("create lodge guest: %w", err)
	}
	utils.Logger.WithField("guest_id", g.ID).Info("Lodge guest added")
	return g, nil
}

func (s *lodgeService) Update(ctx context.Context, id uuid.UUID, form dtos.LodgeGuestForm) (*models.LodgeGuest, error) {
	err := s.guests.UpdateWithRetry(ctx, id, func(g *models.LodgeGuest) error {
		return s.apply(g, form)
	})
	if err != nil {
		return nil, fmt.Errorf("update lodge guest %s: %w", id, err)
	}
	return s.Get(ctx, id)
}

func (s *lodgeService) Checkout(ctx context.Context, id uuid.UUID) (*models.LodgeGuest, error) {
	err := s.guests.UpdateWithRetry(ctx, id, func(g *models.LodgeGuest) error {
		if g.CheckOutDate == nil {
			out := utils.DateOnly(s.now())
			if out.Before(g.CheckInDate) {
				out = g.CheckInDate
			}
			g.CheckOutDate = &out
		}
		g.Status = models.GuestStatusCheckedOut
		g.CalculateTotal()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("checkout lodge guest %s: %w", id, err)
	}
	utils.Logger.WithField("guest_id", id).Info("Lodge guest checked out")
	return s.Get(ctx, id)
}

func (s *lodgeService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.guests.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete lodge guest %s: %w", id, err)
	}
	return nil
}

func (s *lodgeService) apply(g *models.LodgeGuest, form dtos.LodgeGuestForm) error {
	checkIn := utils.DateOnly(s.now())
	if form.CheckInDate != nil {
		checkIn = *form.CheckInDate
	}
	if form.CheckOutDate != nil && form.CheckOutDate.Before(checkIn) {
		return fmt.Errorf("%w: check-out date is before check-in date", utils.ErrValidation)
	}
	status := form.Status
	if status == "" {
		status = models.GuestStatusCheckedIn
	}

	g.GuestName = strings.TrimSpace(form.GuestName)
	g.RoomNo = strings.TrimSpace(form.RoomNo)
	g.StayType = form.StayType
	g.CheckInDate = checkIn
	g.CheckOutDate = form.CheckOutDate
	g.RatePerDay = utils.Round2(form.RatePerDay)
	g.MonthlyRate = utils.Round2(form.MonthlyRate)
	g.Status = status
	g.CalculateTotal()
	return nil
}
