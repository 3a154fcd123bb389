package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppErrorMapsDomainErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("building: %w", ErrNotFound), http.StatusNotFound, ErrCodeNotFound},
		{ErrConflict, http.StatusConflict, ErrCodeConflict},
		{ErrUsernameExists, http.StatusConflict, ErrCodeConflict},
		{ErrLockedAccount, http.StatusUnauthorized, ErrCodeLockedAccount},
		{errors.New("boom"), http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tc := range cases {
		appErr := NewAppError(tc.err, "msg")
		assert.Equal(t, tc.status, appErr.StatusCode, tc.err.Error())
		assert.Equal(t, tc.code, appErr.Code, tc.err.Error())
		assert.ErrorIs(t, appErr, tc.err)
	}
}

func TestHandleAppErrorWritesJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleAppError(rec, NewAppError(ErrNotFound, "Building not found"))

	require.Equal(t, http.StatusNotFound, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ErrCodeNotFound, body.Code)
	assert.Equal(t, "Building not found", body.Message)

	rec = httptest.NewRecorder()
	HandleAppError(rec, errors.New("raw"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
