package utils

import (
	"errors"
	"net/http"
)

// Sentinel errors returned by repositories and services. Wrap them with %w.
var (
	ErrNotFound           = errors.New("not_found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrLockedAccount      = errors.New("locked_account")
	ErrUsernameExists     = errors.New("username_exists")
	ErrInvalidUpload      = errors.New("invalid_upload")
	ErrValidation         = errors.New("validation_error")
	ErrRowVersionConflict = errors.New("row_version_conflict")
	// OpenAI, Redis or Bitwarden failed.
	ErrExternalServiceFailure = errors.New("external_service_failure")
)

// AppError for structured error handling from services to controllers.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// NewAppError maps a domain error onto the status/code pair the JSON API uses.
func NewAppError(err error, message string) *AppError {
	status, code := http.StatusInternalServerError, ErrCodeInternal
	switch {
	case errors.Is(err, ErrNotFound):
		status, code = http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, ErrUsernameExists):
		status, code = http.StatusConflict, ErrCodeConflict
	case errors.Is(err, ErrRowVersionConflict):
		status, code = http.StatusConflict, ErrCodeRowVersionConflict
	case errors.Is(err, ErrInvalidCredentials):
		status, code = http.StatusUnauthorized, ErrCodeInvalidCredentials
	case errors.Is(err, ErrLockedAccount):
		status, code = http.StatusUnauthorized, ErrCodeLockedAccount
	case errors.Is(err, ErrInvalidUpload):
		status, code = http.StatusBadRequest, ErrCodeInvalidPayload
	case errors.Is(err, ErrValidation):
		status, code = http.StatusBadRequest, ErrCodeValidation
	case errors.Is(err, ErrExternalServiceFailure):
		status, code = http.StatusBadGateway, ErrCodeExternalServiceFailure
	}
	return &AppError{StatusCode: status, Code: code, Message: message, Err: err}
}

// HandleAppError writes err as JSON. Anything that is not an AppError is a 500.
func HandleAppError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, nil, appErr.Err)
	} else {
		RespondErrorWithCode(w, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", nil, err)
	}
}
