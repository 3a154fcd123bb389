package controllers

import (
	"errors"
	"net/http"

	"github.com/bibujohny/rentalAI/internal/dtos"
	"github.com/bibujohny/rentalAI/internal/models"
	"github.com/bibujohny/rentalAI/internal/repositories"
	"github.com/bibujohny/rentalAI/internal/routes"
	"github.com/bibujohny/rentalAI/internal/services"
	"github.com/bibujohny/rentalAI/internal/utils"
	"github.com/bibujohny/rentalAI/internal/web"
)

type LodgeController struct {
	lodge    services.LodgeService
	renderer *web.Renderer
}

func NewLodgeController(lodge services.LodgeService, renderer *web.Renderer) *LodgeController {
	return &LodgeController{lodge: lodge, renderer: renderer}
}

type LodgeView struct {
	Guests   []*models.LodgeGuest
	Status   string
	StayType string
}

// GET /lodge/?status=&stay_type=
func (c *LodgeController) ListPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view := LodgeView{Status: q.Get("status"), StayType: q.Get("stay_type")}
	filter := repositories.LodgeGuestFilter{}
	switch models.GuestStatus(view.Status) {
	case models.GuestStatusCheckedIn, models.GuestStatusCheckedOut:
		filter.Status = models.GuestStatus(view.Status)
	default:
		view.Status = ""
	}
	switch models.StayType(view.StayType) {
	case models.StayTypeDaily, models.StayTypeMonthly:
		filter.StayType = models.StayType(view.StayType)
	default:
		view.StayType = ""
	}

	guests, err := c.lodge.List(r.Context(), filter)
	if err != nil {
		serverError(w, err, "Failed to list lodge guests")
		return
	}
	view.Guests = guests
	c.renderer.Render(w, http.StatusOK, "lodge", newPage(w, r, "Lodge", "lodge", view))
}

// POST /lodge/add
func (c *LodgeController) AddHandler(w http.ResponseWriter, r *http.Request) {
	form, err := parseLodgeGuestForm(r)
	if err != nil {
		web.AddFlash(w, r, web.FlashWarning, err.Error())
		redirect(w, r, routes.Lodge)
		return
	}
	if _, err := c.lodge.Create(r.Context(), form); err != nil {
		c.flashFailure(w, r, err, "Could not add guest")
		redirect(w, r, routes.Lodge)
		return
	}
	web.AddFlash(w, r, web.FlashSuccess, "Guest added successfully")
	redirect(w, r, routes.Lodge)
}

// POST /lodge/edit/{id}
func (c *LodgeController) EditHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderNotFound(c.renderer, w, r)
		return
	}
	form, err := parseLodgeGuestForm(r)
	if err != nil {
		web.AddFlash(w, r, web.FlashWarning, err.Error())
		redirect(w, r, routes.Lodge)
		return
	}
	if _, err := c.lodge.Update(r.Context(), id, form); err != nil {
		c.flashFailure(w, r, err, "Could not update guest")
		redirect(w, r, routes.Lodge)
		return
	}
	web.AddFlash(w, r, web.FlashSuccess, "Guest updated successfully")
	redirect(w, r, routes.Lodge)
}

// POST /lodge/checkout/{id}
func (c *LodgeController) CheckoutHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderNotFound(c.renderer, w, r)
		return
	}
	if _, err := c.lodge.Checkout(r.Context(), id); err != nil {
		c.flashFailure(w, r, err, "Could not check out guest")
		redirect(w, r, routes.Lodge)
		return
	}
	web.AddFlash(w, r, web.FlashInfo, "Guest checked out")
	redirect(w, r, routes.Lodge)
}

// POST /lodge/delete/{id}
func (c *LodgeController) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderNotFound(c.renderer, w, r)
		return
	}
	if err := c.lodge.Delete(r.Context(), id); err != nil {
		c.flashFailure(w, r, err, "Could not delete entry")
		redirect(w, r, routes.Lodge)
		return
	}
	web.AddFlash(w, r, web.FlashInfo, "Entry deleted")
	redirect(w, r, routes.Lodge)
}

func (c *LodgeController) flashFailure(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, utils.ErrValidation):
		web.AddFlash(w, r, web.FlashWarning, userMessage(err, fallback))
	case errors.Is(err, utils.ErrNotFound):
		web.AddFlash(w, r, web.FlashWarning, "Lodge entry no longer exists")
	case errors.Is(err, utils.ErrRowVersionConflict):
		web.AddFlash(w, r, web.FlashWarning, "The entry was changed by someone else. Please retry.")
	default:
		utils.Logger.WithError(err).Error(fallback)
		web.AddFlash(w, r, web.FlashDanger, fallback)
	}
}

func parseLodgeGuestForm(r *http.Request) (dtos.LodgeGuestForm, error) {
	f := &formReader{r: r}
	form := dtos.LodgeGuestForm{
		GuestName:    f.str("guest_name"),
		RoomNo:       f.str("room_no"),
		StayType:     models.StayType(f.str("stay_type")),
		CheckInDate:  f.date("check_in_date"),
		CheckOutDate: f.date("check_out_date"),
		RatePerDay:   f.float("rate_per_day"),
		MonthlyRate:  f.float("monthly_rate"),
		Status:       models.GuestStatus(f.str("status")),
	}
	if f.err != nil {
		return form, f.err
	}
	if err := validate.StructCtx(r.Context(), form); err != nil {
		return form, errors.New(validationMessage(err))
	}
	return form, nil
}
