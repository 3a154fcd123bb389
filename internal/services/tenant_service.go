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

type TenantService interface {
	List(ctx context.Context) ([]*models.Tenant, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	Create(ctx context.Context, form dtos.TenantForm) (*models.Tenant, error)
	Update(ctx context.Context, id uuid.UUID, form dtos.TenantForm) (*models.Tenant, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type tenantService struct {
	tenants   repositories.TenantRepository
	buildings repositories.BuildingRepository
	now       func() time.Time
}

func NewTenantService(tenants repositories.TenantRepository, buildings repositories.BuildingRepository) TenantService {
	return &tenantService{tenants: tenants, buildings: buildings, now: time.Now}
}

func (s *tenantService) List(ctx context.Context) ([]*models.Tenant, error) {
	return s.tenants.List(ctx)
}

func (s *tenantService) Get(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	t, err := s.tenants.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("tenant %s: %w", id, utils.ErrNotFound)
	}
	return t, nil
}

func (s *tenantService) Create(ctx context.Context, form dtos.TenantForm) (*models.Tenant, error) {
	t := &models.Tenant{ID: uuid.New()}
	if err := s.apply(ctx, t, form); err != nil {
		return nil, err
	}
	if err := s.tenants.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create tenant: %w", err)
	}
	utils.Logger.WithField("tenant_id", t.ID).Info("Tenant created")
	return t, nil
}

func (s *tenantService) Update(ctx context.Context, id uuid.UUID, form dtos.TenantForm) (*models.Tenant, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, t, form); err != nil {
		return nil, err
	}
	if err := s.tenants.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("update tenant: %w", err)
	}
	return t, nil
}

func (s *tenantService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.tenants.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete tenant %s: %w", id, err)
	}
	return nil
}

func (s *tenantService) apply(ctx context.Context, t *models.Tenant, form dtos.TenantForm) error {
	b, err := s.buildings.GetByID(ctx, form.BuildingID)
	if err != nil {
		return err
	}
	if b == nil {
		return fmt.Errorf("building %s: %w", form.BuildingID, utils.ErrNotFound)
	}

	start := utils.DateOnly(s.now())
	if form.StartDate != nil {
		start = *form.StartDate
	}
	if form.EndDate != nil && form.EndDate.Before(start) {
		return fmt.Errorf("%w: end date is before start date", utils.ErrValidation)
	}

	t.BuildingID = form.BuildingID
	t.Name = strings.TrimSpace(form.Name)
	t.RentAmount = utils.Round2(form.RentAmount)
	t.StartDate = start
	t.EndDate = form.EndDate
	t.ConsumerNumber = strings.TrimSpace(form.ConsumerNumber)
	t.DepositAmount = utils.Round2(form.DepositAmount)
	return nil
}
