package http

import (
	"errors"
	"net/http"

	"github.com/wardenhq/warden/internal/admin/domain"
	"github.com/wardenhq/warden/pkg/httpx"
	"github.com/wardenhq/warden/pkg/slogx"
)

// statusFor maps the domain error taxonomy to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrTransient):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError renders a service-layer error in the standard
// envelope. Internal errors are logged with detail but echoed without.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	kind := domain.ErrorKind(err)

	description := err.Error()
	if status == http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
		description = "An internal error occurred"
	}

	httpx.WriteError(w, status, kind, description)
}
