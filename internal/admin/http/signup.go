package http

import (
	"encoding/json"
	"net/http"

	"github.com/wardenhq/warden/internal/admin/service"
	"github.com/wardenhq/warden/pkg/adminsdk"
	"github.com/wardenhq/warden/pkg/httpx"
)

type SignupHandler struct {
	UserService *service.UserService
}

// ServeHTTP handles self-service signup.
//
//	@Summary		Sign up
//	@Description	Registers the identity asserted by the Bearer token as a local user with the default role. The token must come from the identity provider; the email is taken from it, not the body.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		adminsdk.SignupRequest	true	"Profile fields"
//	@Success		201		{object}	adminsdk.UserInfo		"Created user"
//	@Failure		400		{object}	adminsdk.ErrorResponse	"Invalid request body"
//	@Failure		401		{object}	adminsdk.ErrorResponse	"Token verification failed"
//	@Failure		409		{object}	adminsdk.ErrorResponse	"Account already exists"
//	@Security		BearerAuth
//	@Router			/v1/users/signup [post].
func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw := bearerToken(r)
	if raw == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "Missing Bearer token")
		return
	}

	var req adminsdk.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "Request body must be valid JSON")
		return
	}

	view, err := h.UserService.Signup(r.Context(), raw, service.SignupParams{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Phone:      req.Phone,
		ProfilePic: req.ProfilePic,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, userInfo(view))
}
