package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bibujohny/rentalAI/internal/constants"
	"github.com/bibujohny/rentalAI/internal/services"
	"github.com/bibujohny/rentalAI/internal/utils"
)

type contextKey string

const (
	ContextKeyUserID   = contextKey("userID")
	ContextKeyUsername = contextKey("username")
)

// SessionParser validates a session token.
type SessionParser interface {
	Parse(token string) (*services.SessionClaims, error)
}

// RequireSession guards the HTML pages: a missing or invalid session
// redirects to loginPath and drops the stale cookie.
func RequireSession(sessions SessionParser, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := sessionFromRequest(r, sessions)
			if err != nil {
				if !errors.Is(err, http.ErrNoCookie) {
					utils.Logger.WithError(err).Debug("Rejected session cookie")
					ClearSessionCookie(w, false)
				}
				http.Redirect(w, r, loginPath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// RequireSessionAPI is RequireSession for JSON endpoints: failures are 401s.
func RequireSessionAPI(sessions SessionParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := sessionFromRequest(r, sessions)
			if err != nil {
				switch {
				case errors.Is(err, http.ErrNoCookie):
					utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Missing session", nil)
				case errors.Is(err, jwt.ErrTokenExpired):
					utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeTokenExpired, "Session expired", err)
				default:
					utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid session", err)
				}
				return
			}
			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

func sessionFromRequest(r *http.Request, sessions SessionParser) (*services.SessionClaims, error) {
	c, err := r.Cookie(constants.SessionCookieName)
	if err != nil {
		return nil, err
	}
	if c.Value == "" {
		return nil, http.ErrNoCookie
	}
	return sessions.Parse(c.Value)
}

func withClaims(ctx context.Context, c *services.SessionClaims) context.Context {
	ctx = context.WithValue(ctx, ContextKeyUserID, c.UserID)
	return context.WithValue(ctx, ContextKeyUsername, c.Username)
}

// UserID returns the signed-in user's id, or uuid.Nil outside a session.
func UserID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(ContextKeyUserID).(uuid.UUID)
	return id
}

func Username(ctx context.Context) string {
	u, _ := ctx.Value(ContextKeyUsername).(string)
	return u
}

// SetSessionCookie stores token for ttl. secure marks the cookie HTTPS-only.
func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
