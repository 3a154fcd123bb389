package controllers

import (
	"net/http"

	"github.com/bibujohny/rentalAI/internal/services"
	"github.com/bibujohny/rentalAI/internal/utils"
	"github.com/bibujohny/rentalAI/internal/web"
)

type DashboardController struct {
	dashboard services.DashboardService
	renderer  *web.Renderer
}

func NewDashboardController(dashboard services.DashboardService, renderer *web.Renderer) *DashboardController {
	return &DashboardController{dashboard: dashboard, renderer: renderer}
}

// GET /
func (c *DashboardController) DashboardPage(w http.ResponseWriter, r *http.Request) {
	resp, err := c.dashboard.Build(r.Context())
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to build dashboard")
		http.Error(w, "Dashboard unavailable", http.StatusInternalServerError)
		return
	}
	c.renderer.Render(w, http.StatusOK, "dashboard", newPage(w, r, "Dashboard", "dashboard", resp))
}

// GET /api/v1/dashboard
func (c *DashboardController) DashboardAPIHandler(w http.ResponseWriter, r *http.Request) {
	resp, err := c.dashboard.Build(r.Context())
	if err != nil {
		utils.HandleAppError(w, utils.NewAppError(err, "Could not build dashboard"))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
