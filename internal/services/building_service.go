package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bibujohny/rentalAI/internal/dtos"
	"github.com/bibujohny/rentalAI/internal/models"
	"github.com/bibujohny/rentalAI/internal/repositories"
	"github.com/bibujohny/rentalAI/internal/utils"
)

type BuildingService interface {
	List(ctx context.Context) ([]*models.Building, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Building, error)
	Detail(ctx context.Context, id uuid.UUID) (*models.Building, []*models.Tenant, error)
	Create(ctx context.Context, form dtos.BuildingForm) (*models.Building, error)
	Update(ctx context.Context, id uuid.UUID, form dtos.BuildingForm) (*models.Building, error)
	// Delete refuses with utils.ErrConflict while tenants reference the building.
	Delete(ctx context.Context, id uuid.UUID) error
}

type buildingService struct {
	buildings repositories.BuildingRepository
	tenants   repositories.TenantRepository
}

func NewBuildingService(buildings repositories.BuildingRepository, tenants repositories.TenantRepository) BuildingService {
	return &buildingService{buildings: buildings, tenants: tenants}
}

func (s *buildingService) List(ctx context.Context) ([]*models.Building, error) {
	return s.buildings.List(ctx)
}

func (s *buildingService) Get(ctx context.Context, id uuid.UUID) (*models.Building, error) {
	b, err := s.buildings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("building %s: %w", id, utils.ErrNotFound)
	}
	return b, nil
}

func (s *buildingService) Detail(ctx context.Context, id uuid.UUID) (*models.Building, []*models.Tenant, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	tenants, err := s.tenants.ListByBuildingID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return b, tenants, nil
}

func (s *buildingService) Create(ctx context.Context, form dtos.BuildingForm) (*models.Building, error) {
	b := &models.Building{ID: uuid.New()}
	applyBuildingForm(b, form)
	if err := s.buildings.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create building: %w", err)
	}
	utils.Logger.WithField("building_id", b.ID).Info("Building created")
	return b, nil
}

func (s *buildingService) Update(ctx context.Context, id uuid.UUID, form dtos.BuildingForm) (*models.Building, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyBuildingForm(b, form)
	if err := s.buildings.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("update building: %w", err)
	}
	return b, nil
}

func (s *buildingService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	n, err := s.tenants.CountByBuildingID(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("building has %d tenant(s): %w", n, utils.ErrConflict)
	}
	if err := s.buildings.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete building: %w", err)
	}
	utils.Logger.WithField("building_id", id).Info("Building deleted")
	return nil
}

func applyBuildingForm(b *models.Building, form dtos.BuildingForm) {
	b.Name = strings.TrimSpace(form.Name)
	b.Address = strings.TrimSpace(form.Address)
	b.Pincode = strings.TrimSpace(form.Pincode)
	b.TotalRooms = form.TotalRooms
}
