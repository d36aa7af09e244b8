// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/invoicedesk/invoicedesk/internal/shared"
)

// Sentinel errors for domain layer.
var (
	ErrNotFound      = shared.ErrNotFound
	ErrDuplicate     = shared.ErrDuplicate
	ErrConflict      = shared.ErrConflict
	ErrValidation    = shared.ErrValidation
	ErrConfiguration = shared.ErrConfiguration
	ErrUnauthorized  = shared.ErrUnauthorized
)

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrConfiguration):
		Problem(w, http.StatusBadRequest, "Configuration Required", err.Error())
	case errors.Is(err, shared.ErrInvalidCredentials), errors.Is(err, ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// Fail logs unexpected errors and responds with the mapped problem.
func Fail(logger *slog.Logger, w http.ResponseWriter, r *http.Request, msg string, err error) {
	if logger != nil && isUnexpected(err) {
		logger.Error(msg, slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	RespondError(w, err)
}

func isUnexpected(err error) bool {
	for _, known := range []error{ErrNotFound, ErrDuplicate, ErrConflict, ErrValidation, ErrConfiguration, ErrUnauthorized, shared.ErrInvalidCredentials} {
		if errors.Is(err, known) {
			return false
		}
	}
	return true
}
