package controllers

import (
	"errors"
	"net/http"

	"github.com/bibujohny/rentalAI/internal/dtos"
	"github.com/bibujohny/rentalAI/internal/models"
	"github.com/bibujohny/rentalAI/internal/routes"
	"github.com/bibujohny/rentalAI/internal/services"
	"github.com/bibujohny/rentalAI/internal/utils"
	"github.com/bibujohny/rentalAI/internal/web"
)

type TenantsController struct {
	tenants   services.TenantService
	buildings services.BuildingService
	renderer  *web.Renderer
}

func NewTenantsController(tenants services.TenantService, buildings services.BuildingService, renderer *web.Renderer) *TenantsController {
	return &TenantsController{tenants: tenants, buildings: buildings, renderer: renderer}
}

type TenantsView struct {
	Tenants   []*models.Tenant
	Buildings []*models.Building
}

// GET /tenants/
func (c *TenantsController) ListPage(w http.ResponseWriter, r *http.Request) {
	tenants, err := c.tenants.List(r.Context())
	if err != nil {
		serverError(w, err, "Failed to list tenants")
		return
	}
	buildings, err := c.buildings.List(r.Context())
	if err != nil {
		serverError(w, err, "Failed to list buildings")
		return
	}
	c.renderer.Render(w, http.StatusOK, "tenants",
		newPage(w, r, "Tenants", "tenants", TenantsView{Tenants: tenants, Buildings: buildings}))
}

// POST /tenants/add
func (c *TenantsController) AddHandler(w http.ResponseWriter, r *http.Request) {
	form, err := parseTenantForm(r)
	if err != nil {
		web.AddFlash(w, r, web.FlashWarning, err.Error())
		redirect(w, r, routes.Tenants)
		return
	}
	if _, err := c.tenants.Create(r.Context(), form); err != nil {
		c.flashFailure(w, r, err, "Could not add tenant")
		redirect(w, r, routes.Tenants)
		return
	}
	web.AddFlash(w, r, web.FlashSuccess, "Tenant added successfully")
	redirect(w, r, routes.Tenants)
}

// POST /tenants/edit/{id}
func (c *TenantsController) EditHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderNotFound(c.renderer, w, r)
		return
	}
	form, err := parseTenantForm(r)
	if err != nil {
		web.AddFlash(w, r, web.FlashWarning, err.Error())
		redirect(w, r, routes.Tenants)
		return
	}
	if _, err := c.tenants.Update(r.Context(), id, form); err != nil {
		c.flashFailure(w, r, err, "Could not update tenant")
		redirect(w, r, routes.Tenants)
		return
	}
	web.AddFlash(w, r, web.FlashSuccess, "Tenant updated successfully")
	redirect(w, r, routes.Tenants)
}

// POST /tenants/delete/{id}
func (c *TenantsController) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderNotFound(c.renderer, w, r)
		return
	}
	if err := c.tenants.Delete(r.Context(), id); err != nil {
		c.flashFailure(w, r, err, "Could not delete tenant")
		redirect(w, r, routes.Tenants)
		return
	}
	web.AddFlash(w, r, web.FlashInfo, "Tenant deleted")
	redirect(w, r, routes.Tenants)
}

func (c *TenantsController) flashFailure(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, utils.ErrValidation):
		web.AddFlash(w, r, web.FlashWarning, userMessage(err, fallback))
	case errors.Is(err, utils.ErrNotFound):
		web.AddFlash(w, r, web.FlashWarning, "Tenant or building no longer exists")
	default:
		utils.Logger.WithError(err).Error(fallback)
		web.AddFlash(w, r, web.FlashDanger, fallback)
	}
}

func parseTenantForm(r *http.Request) (dtos.TenantForm, error) {
	f := &formReader{r: r}
	form := dtos.TenantForm{
		BuildingID:     f.uuid("building_id"),
		Name:           f.str("name"),
		RentAmount:     f.float("rent_amount"),
		StartDate:      f.date("start_date"),
		EndDate:        f.date("end_date"),
		ConsumerNumber: f.str("consumer_number"),
		DepositAmount:  f.float("deposit_amount"),
	}
	if f.err != nil {
		return form, f.err
	}
	if err := validate.StructCtx(r.Context(), form); err != nil {
		return form, errors.New(validationMessage(err))
	}
	return form, nil
}
