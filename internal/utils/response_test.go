package utils

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevLevel := Logger.Out, Logger.GetLevel()
	Logger.SetOutput(&buf)
	Logger.SetLevel(logrus.DebugLevel)
	t.Cleanup(func() {
		Logger.SetOutput(prevOut)
		Logger.SetLevel(prevLevel)
	})
	return &buf
}

func TestRespondErrorWithCode(t *testing.T) {
	logs := captureLog(t)

	rec := httptest.NewRecorder()
	RespondErrorWithCode(rec, http.StatusUnauthorized, ErrCodeUnauthorized, "Missing session", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"code":"unauthorized","message":"Missing session"}`, rec.Body.String())
	assert.Contains(t, logs.String(), "level=warning")

	logs.Reset()
	rec = httptest.NewRecorder()
	RespondErrorWithCode(rec, http.StatusInternalServerError, ErrCodeInternal, "Boom", map[string]int{"n": 1}, errors.New("db down"))
	assert.JSONEq(t, `{"code":"internal_server_error","message":"Boom","details":{"n":1}}`, rec.Body.String())
	assert.Contains(t, logs.String(), "level=error")
	assert.Contains(t, logs.String(), "db down")
	assert.NotContains(t, rec.Body.String(), "db down")
}

func TestRespondAttachment(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondAttachment(rec, "text/csv", "report 2024.csv", []byte("a,b\n"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="report 2024.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "4", rec.Header().Get("Content-Length"))
	assert.Equal(t, "a,b\n", rec.Body.String())
}
