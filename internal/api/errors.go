package api

import (
	"errors"
	"net/http"

	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/domain"
	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidCount),
		errors.Is(err, domain.ErrInvalidTaskID):
		return http.StatusBadRequest

	case store.IsNotFoundError(err):
		return http.StatusNotFound

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCount):
		return "Count must be a positive integer"

	case errors.Is(err, domain.ErrInvalidTaskID):
		return "Task ID must be a positive integer"

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case store.IsNotFoundError(err):
		return "Resource not found"

	default:
		return "An unexpected error occurred"
	}
}
