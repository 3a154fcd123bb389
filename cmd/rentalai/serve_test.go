package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibujohny/rentalAI/internal/app"
	"github.com/bibujohny/rentalAI/internal/config"
	"github.com/bibujohny/rentalAI/internal/constants"
	"github.com/bibujohny/rentalAI/internal/routes"
	"github.com/bibujohny/rentalAI/internal/utils"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	utils.PasswordHashCost = 4
	cfg := &config.Config{
		AppName:                  config.DefaultAppName,
		Env:                      config.EnvDevelopment,
		AppPort:                  "5000",
		AppUrl:                   "http://localhost:5000",
		DataBackend:              config.BackendMemory,
		SecretKey:                "test-secret",
		SessionTTL:               time.Hour,
		InsightsCacheTTL:         time.Minute,
		LDFlag_AIInsightsEnabled: true,
	}
	application, err := app.NewApp(cfg)
	require.NoError(t, err)
	t.Cleanup(application.Close)
	require.NoError(t, app.SeedDemoData(context.Background(), application.Repos))

	h, err := newHandler(application)
	require.NoError(t, err)
	return h
}

func sessionCookie(t *testing.T, h http.Handler) *http.Cookie {
	t.Helper()
	form := url.Values{"username": {app.DemoUsername}, "password": {app.DemoPassword}}
	req := httptest.NewRequest(http.MethodPost, routes.Login, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusFound, rec.Code)
	for _, c := range rec.Result().Cookies() {
		if c.Name == constants.SessionCookieName {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func TestPagesRequireSession(t *testing.T) {
	h := newTestHandler(t)

	for _, path := range []string{routes.Dashboard, routes.Buildings, routes.Tenants, routes.Lodge, routes.Summaries, routes.StatementsSummary} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusFound, rec.Code, path)
		assert.Equal(t, routes.Login, rec.Header().Get("Location"), path)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, routes.APIDashboard, nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, routes.Health, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, routes.Login, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoggedInWalkthrough(t *testing.T) {
	h := newTestHandler(t)
	cookie := sessionCookie(t, h)

	for _, path := range []string{routes.Dashboard, routes.Buildings, routes.BuildingsAdd, routes.Tenants,
		routes.Lodge, routes.Summaries, routes.SummariesAdd, routes.StatementsSummary} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"), path)
	}

	req := httptest.NewRequest(http.MethodGet, routes.Buildings, nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Contains(t, rec.Body.String(), "Puthenpurayil Arcade")

	req = httptest.NewRequest(http.MethodGet, routes.APIDashboard, nil)
	req.AddCookie(cookie)
	req.Header.Set("Origin", "http://localhost:3000")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Body.String(), `"total_tenants":2`)

	req = httptest.NewRequest(http.MethodGet, "/no/such/page", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
