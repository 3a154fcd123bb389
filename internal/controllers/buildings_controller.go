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

type BuildingsController struct {
	buildings services.BuildingService
	renderer  *web.Renderer
}

func NewBuildingsController(buildings services.BuildingService, renderer *web.Renderer) *BuildingsController {
	return &BuildingsController{buildings: buildings, renderer: renderer}
}

type BuildingDetailView struct {
	Building *models.Building
	Tenants  []*models.Tenant
}

// GET /buildings/
func (c *BuildingsController) ListPage(w http.ResponseWriter, r *http.Request) {
	list, err := c.buildings.List(r.Context())
	if err != nil {
		serverError(w, err, "Failed to list buildings")
		return
	}
	c.renderer.Render(w, http.StatusOK, "buildings", newPage(w, r, "Buildings", "buildings", list))
}

// GET /buildings/add
func (c *BuildingsController) AddPage(w http.ResponseWriter, r *http.Request) {
	c.renderer.Render(w, http.StatusOK, "building_form", newPage(w, r, "Add building", "buildings", (*models.Building)(nil)))
}

// POST /buildings/add
func (c *BuildingsController) AddHandler(w http.ResponseWriter, r *http.Request) {
	form, err := parseBuildingForm(r)
	if err != nil {
		web.AddFlash(w, r, web.FlashWarning, err.Error())
		redirect(w, r, routes.BuildingsAdd)
		return
	}
	if _, err := c.buildings.Create(r.Context(), form); err != nil {
		utils.Logger.WithError(err).Error("Failed to add building")
		web.AddFlash(w, r, web.FlashDanger, userMessage(err, "Could not add building"))
		redirect(w, r, routes.BuildingsAdd)
		return
	}
	web.AddFlash(w, r, web.FlashSuccess, "Building added successfully")
	redirect(w, r, routes.Buildings)
}

// GET /buildings/edit/{id}
func (c *BuildingsController) EditPage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		c.notFound(w, r)
		return
	}
	b, err := c.buildings.Get(r.Context(), id)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	c.renderer.Render(w, http.StatusOK, "building_form", newPage(w, r, "Edit building", "buildings", b))
}

// POST /buildings/edit/{id}
func (c *BuildingsController) EditHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		c.notFound(w, r)
		return
	}
	back := "/buildings/edit/" + id.String()
	form, err := parseBuildingForm(r)
	if err != nil {
		web.AddFlash(w, r, web.FlashWarning, err.Error())
		redirect(w, r, back)
		return
	}
	if _, err := c.buildings.Update(r.Context(), id, form); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			c.notFound(w, r)
			return
		}
		utils.Logger.WithError(err).Error("Failed to update building")
		web.AddFlash(w, r, web.FlashDanger, userMessage(err, "Could not update building"))
		redirect(w, r, back)
		return
	}
	web.AddFlash(w, r, web.FlashSuccess, "Building updated successfully")
	redirect(w, r, routes.Buildings)
}

// POST /buildings/delete/{id}
func (c *BuildingsController) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		c.notFound(w, r)
		return
	}
	if err := c.buildings.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, utils.ErrNotFound):
			c.notFound(w, r)
			return
		case errors.Is(err, utils.ErrConflict):
			web.AddFlash(w, r, web.FlashWarning, "Remove the building's tenants before deleting it.")
		default:
			utils.Logger.WithError(err).Error("Failed to delete building")
			web.AddFlash(w, r, web.FlashDanger, "Could not delete building")
		}
		redirect(w, r, routes.Buildings)
		return
	}
	web.AddFlash(w, r, web.FlashInfo, "Building deleted")
	redirect(w, r, routes.Buildings)
}

// GET /buildings/detail/{id}
func (c *BuildingsController) DetailPage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		c.notFound(w, r)
		return
	}
	b, tenants, err := c.buildings.Detail(r.Context(), id)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	c.renderer.Render(w, http.StatusOK, "building_detail",
		newPage(w, r, b.Name, "buildings", BuildingDetailView{Building: b, Tenants: tenants}))
}

func (c *BuildingsController) notFound(w http.ResponseWriter, r *http.Request) {
	renderNotFound(c.renderer, w, r)
}

func (c *BuildingsController) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, utils.ErrNotFound) {
		c.notFound(w, r)
		return
	}
	serverError(w, err, "Failed to load building")
}

func parseBuildingForm(r *http.Request) (dtos.BuildingForm, error) {
	f := &formReader{r: r}
	form := dtos.BuildingForm{
		Name:       f.str("name"),
		Address:    f.str("address"),
		Pincode:    f.str("pincode"),
		TotalRooms: f.int("total_rooms"),
	}
	if f.err != nil {
		return form, f.err
	}
	if err := validate.StructCtx(r.Context(), form); err != nil {
		return form, errors.New(validationMessage(err))
	}
	return form, nil
}

func renderNotFound(renderer *web.Renderer, w http.ResponseWriter, r *http.Request) {
	renderer.Render(w, http.StatusNotFound, "not_found", newPage(w, r, "Not found", "", nil))
}

func serverError(w http.ResponseWriter, err error, msg string) {
	utils.Logger.WithError(err).Error(msg)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
