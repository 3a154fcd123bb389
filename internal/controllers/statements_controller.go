package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/bibujohny/rentalAI/internal/constants"
	"github.com/bibujohny/rentalAI/internal/dtos"
	"github.com/bibujohny/rentalAI/internal/services"
	"github.com/bibujohny/rentalAI/internal/utils"
	"github.com/bibujohny/rentalAI/internal/web"
)

// multipart overhead allowed on top of the file itself
const uploadSlack = 1 << 20

type StatementsController struct {
	statements services.StatementService
	renderer   *web.Renderer
}

func NewStatementsController(statements services.StatementService, renderer *web.Renderer) *StatementsController {
	return &StatementsController{statements: statements, renderer: renderer}
}

type StatementsView struct {
	Filename string
	Summary  *dtos.StatementSummary
}

// GET /statements/summary
func (c *StatementsController) Page(w http.ResponseWriter, r *http.Request) {
	c.renderer.Render(w, http.StatusOK, "statements", newPage(w, r, "Statement summary", "statements", StatementsView{}))
}

// POST /statements/summary
func (c *StatementsController) UploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxStatementUploadBytes+uploadSlack)
	if err := r.ParseMultipartForm(constants.MaxStatementUploadBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			c.renderError(w, r, "File too large (max 10 MB).")
			return
		}
		c.renderError(w, r, "Please choose a PDF file.")
		return
	}

	file, header, err := r.FormFile(constants.StatementFormField)
	if err != nil {
		c.renderError(w, r, "Please choose a PDF file.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, constants.MaxStatementUploadBytes+1))
	if err != nil {
		c.renderError(w, r, "Could not read the uploaded file.")
		return
	}

	password := r.FormValue(constants.StatementPasswordField)
	sum, err := c.statements.Summarize(header.Filename, data, password)
	if err != nil {
		c.renderError(w, r, userMessage(err, "Could not summarize the statement."))
		return
	}

	c.renderer.Render(w, http.StatusOK, "statements",
		newPage(w, r, "Statement summary", "statements", StatementsView{Filename: header.Filename, Summary: sum}))
}

func (c *StatementsController) renderError(w http.ResponseWriter, r *http.Request, msg string) {
	utils.Logger.WithField("reason", msg).Info("Statement upload rejected")
	p := newPage(w, r, "Statement summary", "statements", StatementsView{})
	p.Flashes = append(p.Flashes, web.Flash{Category: web.FlashDanger, Message: msg})
	c.renderer.Render(w, http.StatusBadRequest, "statements", p)
}
