package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/bibujohny/rentalAI/internal/dtos"
	"github.com/bibujohny/rentalAI/internal/models"
	"github.com/bibujohny/rentalAI/internal/routes"
	"github.com/bibujohny/rentalAI/internal/services"
	"github.com/bibujohny/rentalAI/internal/utils"
	"github.com/bibujohny/rentalAI/internal/web"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type SummariesController struct {
	summaries services.SummaryService
	renderer  *web.Renderer
	now       func() time.Time
}

func NewSummariesController(summaries services.SummaryService, renderer *web.Renderer) *SummariesController {
	return &SummariesController{summaries: summaries, renderer: renderer, now: time.Now}
}

type SummaryFormView struct {
	Summary *models.MonthlySummary
	Year    int
	Month   int
	Months  []int
}

var allMonths = []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}

// GET /summaries/?year=
func (c *SummariesController) ListPage(w http.ResponseWriter, r *http.Request) {
	view, err := c.summaries.ListYear(r.Context(), queryYear(r))
	if err != nil {
		serverError(w, err, "Failed to list summaries")
		return
	}
	c.renderer.Render(w, http.StatusOK, "summaries", newPage(w, r, "Monthly summaries", "summaries", view))
}

// GET /summaries/add?year=
func (c *SummariesController) AddPage(w http.ResponseWriter, r *http.Request) {
	now := c.now()
	year := queryYear(r)
	if year == 0 {
		year = now.Year()
	}
	view := SummaryFormView{Year: year, Month: int(now.Month()), Months: allMonths}
	c.renderer.Render(w, http.StatusOK, "summary_form", newPage(w, r, "Add summary", "summaries", view))
}

// POST /summaries/add
func (c *SummariesController) AddHandler(w http.ResponseWriter, r *http.Request) {
	form, err := parseSummaryForm(r)
	if err != nil {
		web.AddFlash(w, r, web.FlashWarning, err.Error())
		redirect(w, r, routes.SummariesAdd)
		return
	}
	if _, err := c.summaries.Create(r.Context(), form); err != nil {
		c.flashFailure(w, r, err, "Could not add summary")
		redirect(w, r, routes.SummariesAdd+"?year="+strconv.Itoa(form.Year))
		return
	}
	web.AddFlash(w, r, web.FlashInfo, "Summary added.")
	redirect(w, r, yearURL(form.Year))
}

// GET /summaries/edit/{id}
func (c *SummariesController) EditPage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderNotFound(c.renderer, w, r)
		return
	}
	m, err := c.summaries.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			renderNotFound(c.renderer, w, r)
			return
		}
		serverError(w, err, "Failed to load summary")
		return
	}
	view := SummaryFormView{Summary: m, Year: m.Year, Month: m.Month, Months: allMonths}
	c.renderer.Render(w, http.StatusOK, "summary_form", newPage(w, r, "Edit summary", "summaries", view))
}

// POST /summaries/edit/{id}
func (c *SummariesController) EditHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderNotFound(c.renderer, w, r)
		return
	}
	back := "/summaries/edit/" + id.String()
	form, err := parseSummaryForm(r)
	if err != nil {
		web.AddFlash(w, r, web.FlashWarning, err.Error())
		redirect(w, r, back)
		return
	}
	if _, err := c.summaries.Update(r.Context(), id, form); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			renderNotFound(c.renderer, w, r)
			return
		}
		c.flashFailure(w, r, err, "Could not update summary")
		redirect(w, r, back)
		return
	}
	web.AddFlash(w, r, web.FlashInfo, "Summary updated.")
	redirect(w, r, yearURL(form.Year))
}

// POST /summaries/delete/{id}
func (c *SummariesController) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderNotFound(c.renderer, w, r)
		return
	}
	year, err := c.summaries.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			renderNotFound(c.renderer, w, r)
			return
		}
		c.flashFailure(w, r, err, "Could not delete summary")
		redirect(w, r, routes.Summaries)
		return
	}
	web.AddFlash(w, r, web.FlashInfo, "Summary deleted.")
	redirect(w, r, yearURL(year))
}

// GET /summaries/export?year=
func (c *SummariesController) ExportHandler(w http.ResponseWriter, r *http.Request) {
	year := queryYear(r)
	if year == 0 {
		year = c.now().Year()
	}
	raw, err := c.summaries.ExportXLSX(r.Context(), year)
	if err != nil {
		serverError(w, err, "Failed to export summaries")
		return
	}
	utils.RespondAttachment(w, xlsxContentType, fmt.Sprintf("monthly_summaries_%d.xlsx", year), raw)
}

func (c *SummariesController) flashFailure(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, utils.ErrConflict):
		web.AddFlash(w, r, web.FlashWarning, "A summary for this month already exists.")
	case errors.Is(err, utils.ErrValidation):
		web.AddFlash(w, r, web.FlashWarning, userMessage(err, fallback))
	case errors.Is(err, utils.ErrRowVersionConflict):
		web.AddFlash(w, r, web.FlashWarning, "The summary was changed by someone else. Please retry.")
	default:
		utils.Logger.WithError(err).Error(fallback)
		web.AddFlash(w, r, web.FlashDanger, fallback)
	}
}

// queryYear reads ?year=; anything unparsable means "current year".
func queryYear(r *http.Request) int {
	y, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || y < 2000 || y > 2100 {
		return 0
	}
	return y
}

func yearURL(year int) string {
	return routes.Summaries + "?year=" + strconv.Itoa(year)
}

func parseSummaryForm(r *http.Request) (dtos.MonthlySummaryForm, error) {
	f := &formReader{r: r}
	form := dtos.MonthlySummaryForm{
		Year:                f.int("year"),
		Month:               f.int("month"),
		PeriodStart:         f.date("period_start"),
		PeriodEnd:           f.date("period_end"),
		LodgeChakravarthy:   f.float("lodge_chakravarthy"),
		MonthlyRentBuilding: f.float("monthly_rent_building"),
		LodgeRelaxInn:       f.float("lodge_relax_inn"),
		MiscIncome:          f.float("misc_income"),
		Notes:               f.str("notes"),
	}
	if f.err != nil {
		return form, f.err
	}
	if err := validate.StructCtx(r.Context(), form); err != nil {
		return form, errors.New(validationMessage(err))
	}
	return form, nil
}
