package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/bibujohny/rentalAI/internal/middleware"
	"github.com/bibujohny/rentalAI/internal/utils"
	"github.com/bibujohny/rentalAI/internal/web"
)

var validate = validator.New()

// newPage collects the per-request layout data.
func newPage(w http.ResponseWriter, r *http.Request, title, active string, data any) web.Page {
	return web.Page{
		Title:    title,
		Active:   active,
		Username: middleware.Username(r.Context()),
		Flashes:  web.PopFlashes(w, r),
		Data:     data,
	}
}

func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusFound)
}

func pathID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)["id"])
}

// formReader pulls typed values out of a parsed form and remembers the first
// parse failure.
type formReader struct {
	r   *http.Request
	err error
}

func (f *formReader) str(key string) string {
	return strings.TrimSpace(f.r.PostFormValue(key))
}

func (f *formReader) float(key string) float64 {
	s := f.str(key)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && f.err == nil {
		f.err = fmt.Errorf("%s must be a number", humanize(key))
	}
	return v
}

func (f *formReader) int(key string) int {
	s := f.str(key)
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil && f.err == nil {
		f.err = fmt.Errorf("%s must be a whole number", humanize(key))
	}
	return v
}

func (f *formReader) date(key string) *time.Time {
	t, err := utils.ParseDate(f.str(key))
	if err != nil && f.err == nil {
		f.err = fmt.Errorf("%s must be a date (YYYY-MM-DD)", humanize(key))
	}
	return t
}

func (f *formReader) uuid(key string) uuid.UUID {
	s := f.str(key)
	if s == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(s)
	if err != nil && f.err == nil {
		f.err = fmt.Errorf("%s is invalid", humanize(key))
	}
	return id
}

// validationMessage turns a validator failure into one readable sentence.
func validationMessage(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return err.Error()
	}
	fe := ve[0]
	field := humanize(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	}
	return field + " is invalid"
}

// humanize turns "RentAmount", "BuildingID" or "rent_amount" into
// "Rent amount", "Building id" and "Rent amount".
func humanize(name string) string {
	var b strings.Builder
	prevLower := false
	for i, r := range name {
		switch {
		case r == '_':
			b.WriteByte(' ')
			prevLower = false
			continue
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			if prevLower {
				b.WriteByte(' ')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
		prevLower = unicode.IsLower(r)
	}
	return b.String()
}

// userMessage picks the text shown to the user for a service error.
func userMessage(err error, fallback string) string {
	var appErr *utils.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	if errors.Is(err, utils.ErrValidation) {
		msg := err.Error()
		if i := strings.LastIndex(msg, utils.ErrValidation.Error()+": "); i >= 0 {
			msg = msg[i+len(utils.ErrValidation.Error())+2:]
		}
		return upperFirst(msg)
	}
	return fallback
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
