package http

import (
	"encoding/json"
	"net/http"

	"github.com/wardenhq/warden/internal/admin/domain"
	"github.com/wardenhq/warden/internal/admin/service"
	"github.com/wardenhq/warden/pkg/adminsdk"
	"github.com/wardenhq/warden/pkg/httpx"
)

type UsersHandler struct {
	UserService *service.UserService
}

// HandleCreate handles admin user creation.
//
//	@Summary		Create a user
//	@Description	Provisions a user with the given role and, unless an external id is supplied, a fresh identity-provider account. The caller must outrank the target role.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		adminsdk.CreateUserRequest	true	"User to create"
//	@Success		201		{object}	adminsdk.UserInfo			"Created user"
//	@Failure		400		{object}	adminsdk.ErrorResponse		"Invalid request body or unknown role"
//	@Failure		401		{object}	adminsdk.ErrorResponse		"Missing or invalid token"
//	@Failure		403		{object}	adminsdk.ErrorResponse		"Caller does not outrank the target role"
//	@Failure		409		{object}	adminsdk.ErrorResponse		"Email or identity already in use"
//	@Failure		503		{object}	adminsdk.ErrorResponse		"Identity provider unreachable"
//	@Security		BearerAuth
//	@Router			/v1/users [post].
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "Authentication required")
		return
	}

	var req adminsdk.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "Request body must be valid JSON")
		return
	}

	view, err := h.UserService.Create(r.Context(), actor, service.CreateUserParams{
		Email:      req.Email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Phone:      req.Phone,
		ProfilePic: req.ProfilePic,
		RoleName:   req.Role,
		ExternalID: req.ExternalID,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, userInfo(view))
}

// HandleList handles the user listing endpoint.
//
//	@Summary		List visible users
//	@Description	Returns the users the caller is allowed to see: all of them for the root role, strictly lower-privileged ones for everyone else.
//	@Tags			Users
//	@Produce		json
//	@Success		200	{object}	adminsdk.ListUsersResponse	"Visible users"
//	@Failure		401	{object}	adminsdk.ErrorResponse		"Missing or invalid token"
//	@Security		BearerAuth
//	@Router			/v1/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "Authentication required")
		return
	}

	views, err := h.UserService.List(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := adminsdk.ListUsersResponse{Users: make([]adminsdk.UserInfo, len(views))}
	for i, v := range views {
		resp.Users[i] = userInfo(v)
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleGet handles single-user lookup.
//
//	@Summary		Get a user
//	@Description	Returns a single user by id. Users outside the caller's visibility read as absent.
//	@Tags			Users
//	@Produce		json
//	@Param			id	path		string					true	"User id"
//	@Success		200	{object}	adminsdk.UserInfo		"The user"
//	@Failure		401	{object}	adminsdk.ErrorResponse	"Missing or invalid token"
//	@Failure		404	{object}	adminsdk.ErrorResponse	"Unknown or invisible user"
//	@Security		BearerAuth
//	@Router			/v1/users/{id} [get].
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "Authentication required")
		return
	}

	view, err := h.UserService.Get(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userInfo(view))
}

// HandleUpdate handles profile and role updates.
//
//	@Summary		Update a user
//	@Description	Patches the allow-listed profile fields and, when a role is supplied, reassigns it. Role changes are policy-checked against both the current and the new role level.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"User id"
//	@Param			request	body		adminsdk.UpdateUserRequest	true	"Fields to update"
//	@Success		200		{object}	adminsdk.UserInfo			"Updated user"
//	@Failure		400		{object}	adminsdk.ErrorResponse		"Invalid request body"
//	@Failure		401		{object}	adminsdk.ErrorResponse		"Missing or invalid token"
//	@Failure		403		{object}	adminsdk.ErrorResponse		"Policy violation"
//	@Failure		404		{object}	adminsdk.ErrorResponse		"Unknown user"
//	@Security		BearerAuth
//	@Router			/v1/users/{id} [put].
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "Authentication required")
		return
	}

	var req adminsdk.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "Request body must be valid JSON")
		return
	}

	patch := domain.UserProfilePatch{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Phone:      req.Phone,
		ProfilePic: req.ProfilePic,
	}

	view, err := h.UserService.Update(r.Context(), actor, r.PathValue("id"), patch, req.Role)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userInfo(view))
}

// HandleDelete handles user deletion.
//
//	@Summary		Delete a user
//	@Description	Soft-deletes the user locally and removes its identity-provider account. Root-role holders cannot be deleted.
//	@Tags			Users
//	@Param			id	path	string	true	"User id"
//	@Success		204	"User deleted"
//	@Failure		401	{object}	adminsdk.ErrorResponse	"Missing or invalid token"
//	@Failure		403	{object}	adminsdk.ErrorResponse	"Policy violation or root account"
//	@Failure		404	{object}	adminsdk.ErrorResponse	"Unknown user"
//	@Failure		503	{object}	adminsdk.ErrorResponse	"Identity provider unreachable; retry"
//	@Security		BearerAuth
//	@Router			/v1/users/{id} [delete].
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "Authentication required")
		return
	}

	if err := h.UserService.Delete(r.Context(), actor, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
