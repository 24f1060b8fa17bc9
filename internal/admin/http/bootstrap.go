package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wardenhq/warden/internal/admin/service"
	"github.com/wardenhq/warden/pkg/adminsdk"
	"github.com/wardenhq/warden/pkg/httpx"
	"github.com/wardenhq/warden/pkg/slogx"
)

type BootstrapHandler struct {
	BootstrapService *service.BootstrapService
}

// ServeHTTP handles the bootstrap endpoint for initial system setup.
//
//	@Summary		Bootstrap the admin service
//	@Description	Seeds an empty deployment with the superadmin root role, the default role ladder and the first account. Only available when a bootstrap token is configured, and only once.
//	@Tags			Bootstrap
//	@Accept			json
//	@Produce		json
//	@Param			X-Bootstrap-Token	header		string						true	"Bootstrap token for authorization"
//	@Param			request				body		adminsdk.BootstrapRequest	true	"Root account details"
//	@Success		201					{object}	adminsdk.BootstrapResponse	"Seeded root account"
//	@Failure		400					{object}	adminsdk.ErrorResponse		"Invalid request body"
//	@Failure		401					{object}	adminsdk.ErrorResponse		"Missing or wrong bootstrap token, or already bootstrapped"
//	@Failure		404					{object}	adminsdk.ErrorResponse		"Bootstrap not enabled (no token configured)"
//	@Failure		503					{object}	adminsdk.ErrorResponse		"Identity provider unreachable"
//	@Router			/v1/bootstrap [post].
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l := slogx.FromContext(r.Context())
	l.Info("starting to bootstrap")

	if h.BootstrapService.Token == "" {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "Bootstrap endpoint is not enabled")
		return
	}

	token := r.Header.Get("X-Bootstrap-Token")
	if token == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated",
			"Bootstrap token is required in X-Bootstrap-Token header")
		return
	}

	var req adminsdk.BootstrapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "Request body must be valid JSON")
		return
	}

	result, err := h.BootstrapService.Bootstrap(r.Context(), token, service.BootstrapParams{
		AdminEmail:     req.AdminEmail,
		AdminFirstName: req.AdminFirstName,
		AdminLastName:  req.AdminLastName,
		AdminPassword:  req.AdminPassword,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBootstrapAlready):
			httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "System is already bootstrapped")
		case errors.Is(err, service.ErrBootstrapUnauthorized):
			httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "Invalid bootstrap token")
		default:
			writeServiceError(w, r, err)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, adminsdk.BootstrapResponse{
		AdminUserID:     result.AdminUserID,
		InitialPassword: result.InitialPassword,
	})
}
