package controllers

import (
	"errors"
	"net/http"

	"github.com/bibujohny/rentalAI/internal/dtos"
	"github.com/bibujohny/rentalAI/internal/middleware"
	"github.com/bibujohny/rentalAI/internal/routes"
	"github.com/bibujohny/rentalAI/internal/services"
	"github.com/bibujohny/rentalAI/internal/utils"
	"github.com/bibujohny/rentalAI/internal/web"
)

type AuthController struct {
	auth          services.AuthService
	sessions      services.SessionService
	renderer      *web.Renderer
	secureCookies bool
}

func NewAuthController(
	auth services.AuthService,
	sessions services.SessionService,
	renderer *web.Renderer,
	secureCookies bool,
) *AuthController {
	return &AuthController{auth: auth, sessions: sessions, renderer: renderer, secureCookies: secureCookies}
}

// GET /login
func (c *AuthController) LoginPage(w http.ResponseWriter, r *http.Request) {
	c.renderer.Render(w, http.StatusOK, "login", newPage(w, r, "Login", "login", nil))
}

// POST /login
func (c *AuthController) LoginHandler(w http.ResponseWriter, r *http.Request) {
	form := dtos.CredentialsForm{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	if err := validate.StructCtx(r.Context(), form); err != nil {
		web.AddFlash(w, r, web.FlashDanger, "Invalid credentials")
		redirect(w, r, routes.Login)
		return
	}

	user, err := c.auth.Login(r.Context(), form.Username, form.Password)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrInvalidCredentials):
			web.AddFlash(w, r, web.FlashDanger, "Invalid credentials")
		case errors.Is(err, utils.ErrLockedAccount):
			web.AddFlash(w, r, web.FlashDanger, "Too many failed attempts. Try again in a few minutes.")
		default:
			utils.Logger.WithError(err).Error("Login failed")
			web.AddFlash(w, r, web.FlashDanger, "Login is unavailable right now. Please try again.")
		}
		redirect(w, r, routes.Login)
		return
	}

	token, err := c.sessions.Issue(user)
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to issue session")
		web.AddFlash(w, r, web.FlashDanger, "Login is unavailable right now. Please try again.")
		redirect(w, r, routes.Login)
		return
	}
	middleware.SetSessionCookie(w, token, c.sessions.TTL(), c.secureCookies)
	redirect(w, r, routes.Dashboard)
}

// GET /register
func (c *AuthController) RegisterPage(w http.ResponseWriter, r *http.Request) {
	c.renderer.Render(w, http.StatusOK, "register", newPage(w, r, "Register", "register", nil))
}

// POST /register
func (c *AuthController) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	form := dtos.CredentialsForm{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	if err := validate.StructCtx(r.Context(), form); err != nil {
		web.AddFlash(w, r, web.FlashWarning, validationMessage(err))
		redirect(w, r, routes.Register)
		return
	}

	if _, err := c.auth.Register(r.Context(), form.Username, form.Password); err != nil {
		if errors.Is(err, utils.ErrUsernameExists) {
			web.AddFlash(w, r, web.FlashWarning, "Username already exists")
		} else {
			utils.Logger.WithError(err).Error("Registration failed")
			web.AddFlash(w, r, web.FlashDanger, "Registration failed. Please try again.")
		}
		redirect(w, r, routes.Register)
		return
	}

	web.AddFlash(w, r, web.FlashSuccess, "Registration successful. Please login.")
	redirect(w, r, routes.Login)
}

// GET /logout
func (c *AuthController) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	middleware.ClearSessionCookie(w, c.secureCookies)
	web.AddFlash(w, r, web.FlashInfo, "Logged out successfully")
	redirect(w, r, routes.Login)
}
