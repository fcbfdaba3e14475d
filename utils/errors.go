// utils/errors.go
package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	ErrCodeValidation        = "validation_error"
	ErrCodeUnauthorized      = "unauthorized"
	ErrCodeForbidden         = "forbidden"
	ErrCodeNotFound          = "not_found"
	ErrCodeInvalidTransition = "invalid_transition"
	ErrCodeConflict          = "conflict"
	ErrCodeInternal          = "internal_server_error"
)

// Domain-level errors wrapped by every AppError, so callers can match with errors.Is.
var (
	ErrValidation        = errors.New("validation_error")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not_found")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrConflict          = errors.New("conflict")
	ErrInternal          = errors.New("internal_error")
)

// AppError carries the HTTP status, a stable code and the public message
// from the service layer to the controllers.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NewValidationError(format string, args ...any) *AppError {
	return &AppError{http.StatusBadRequest, ErrCodeValidation, fmt.Sprintf(format, args...), ErrValidation}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{http.StatusUnauthorized, ErrCodeUnauthorized, message, ErrUnauthorized}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{http.StatusForbidden, ErrCodeForbidden, message, ErrForbidden}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{http.StatusNotFound, ErrCodeNotFound, message, ErrNotFound}
}

func NewInvalidTransitionError(format string, args ...any) *AppError {
	return &AppError{http.StatusBadRequest, ErrCodeInvalidTransition, fmt.Sprintf(format, args...), ErrInvalidTransition}
}

func NewConflictError(message string) *AppError {
	return &AppError{http.StatusConflict, ErrCodeConflict, message, ErrConflict}
}

// NewInternalError hides cause from the caller; it is only logged.
func NewInternalError(message string, cause error) *AppError {
	err := ErrInternal
	if cause != nil {
		err = fmt.Errorf("%w: %w", ErrInternal, cause)
	}
	return &AppError{http.StatusInternalServerError, ErrCodeInternal, message, err}
}

// FromDBError translates gorm errors into the AppError taxonomy.
func FromDBError(err error, notFoundMessage string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NewNotFoundError(notFoundMessage)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return NewConflictError("Record already exists")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return NewConflictError("Record is still referenced")
	default:
		return NewInternalError("Database error", err)
	}
}

// HandleAppError centralizes responding to AppErrors.
func HandleAppError(c *gin.Context, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = NewInternalError("An unexpected error occurred", err)
	}

	if appErr.StatusCode >= http.StatusInternalServerError {
		Logger.WithFields(logrus.Fields{
			"status": appErr.StatusCode,
			"path":   c.Request.URL.Path,
			"error":  appErr.Error(),
		}).Error(appErr.Message)
	}

	respondErrorWithCode(c, appErr.StatusCode, appErr.Code, appErr.Message)
}

func IsDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
