package http

import (
	"encoding/json"
	"net/http"

	"github.com/wardenhq/warden/internal/admin/domain"
	"github.com/wardenhq/warden/internal/admin/service"
	"github.com/wardenhq/warden/pkg/adminsdk"
	"github.com/wardenhq/warden/pkg/httpx"
)

type RolesHandler struct {
	RolesService *service.RolesService
}

// HandleList handles the list roles endpoint.
//
//	@Summary		List all roles
//	@Description	Returns every role in the hierarchy ordered by level, most privileged first.
//	@Tags			Roles
//	@Produce		json
//	@Success		200	{object}	adminsdk.ListRolesResponse	"List of roles"
//	@Failure		401	{object}	adminsdk.ErrorResponse		"Missing or invalid token"
//	@Security		BearerAuth
//	@Router			/v1/roles [get].
func (h *RolesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	roles, err := h.RolesService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := adminsdk.ListRolesResponse{Roles: make([]adminsdk.RoleInfo, len(roles))}
	for i, role := range roles {
		resp.Roles[i] = roleInfo(role)
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleCreate handles role creation.
//
//	@Summary		Create a role
//	@Description	Inserts a new role. The caller must hold the manage-roles permission and outrank the level being created; name and level must be unused.
//	@Tags			Roles
//	@Accept			json
//	@Produce		json
//	@Param			request	body		adminsdk.CreateRoleRequest	true	"Role to create"
//	@Success		201		{object}	adminsdk.RoleInfo			"Created role"
//	@Failure		400		{object}	adminsdk.ErrorResponse		"Invalid request body"
//	@Failure		401		{object}	adminsdk.ErrorResponse		"Missing or invalid token"
//	@Failure		403		{object}	adminsdk.ErrorResponse		"Policy violation"
//	@Failure		409		{object}	adminsdk.ErrorResponse		"Name or level already taken"
//	@Security		BearerAuth
//	@Router			/v1/roles [post].
func (h *RolesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "Authentication required")
		return
	}

	var req adminsdk.CreateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "Request body must be valid JSON")
		return
	}

	role, err := h.RolesService.Create(r.Context(), actor, service.CreateRoleParams{
		Name:        req.Name,
		Description: req.Description,
		Level:       req.Level,
		Permissions: domain.Permissions{
			ManageUsers: req.Permissions.ManageUsers,
			ManageRoles: req.Permissions.ManageRoles,
		},
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, roleInfo(role))
}

// HandleUpdate handles role updates.
//
//	@Summary		Update a role
//	@Description	Patches a role's name, description, level or permissions. The root role is immutable.
//	@Tags			Roles
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Role id"
//	@Param			request	body		adminsdk.UpdateRoleRequest	true	"Fields to update"
//	@Success		200		{object}	adminsdk.RoleInfo			"Updated role"
//	@Failure		400		{object}	adminsdk.ErrorResponse		"Invalid request body"
//	@Failure		401		{object}	adminsdk.ErrorResponse		"Missing or invalid token"
//	@Failure		403		{object}	adminsdk.ErrorResponse		"Policy violation or root role"
//	@Failure		404		{object}	adminsdk.ErrorResponse		"Unknown role"
//	@Failure		409		{object}	adminsdk.ErrorResponse		"Name or level already taken"
//	@Security		BearerAuth
//	@Router			/v1/roles/{id} [put].
func (h *RolesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "Authentication required")
		return
	}

	var req adminsdk.UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "Request body must be valid JSON")
		return
	}

	patch := domain.RolePatch{
		Name:        req.Name,
		Description: req.Description,
		Level:       req.Level,
	}
	if req.Permissions != nil {
		patch.Permissions = &domain.Permissions{
			ManageUsers: req.Permissions.ManageUsers,
			ManageRoles: req.Permissions.ManageRoles,
		}
	}

	role, err := h.RolesService.Update(r.Context(), actor, r.PathValue("id"), patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, roleInfo(role))
}

// HandleDelete handles role deletion.
//
//	@Summary		Delete a role
//	@Description	Removes a role. Refused for the root role and for roles still assigned to users.
//	@Tags			Roles
//	@Param			id	path	string	true	"Role id"
//	@Success		204	"Role deleted"
//	@Failure		401	{object}	adminsdk.ErrorResponse	"Missing or invalid token"
//	@Failure		403	{object}	adminsdk.ErrorResponse	"Policy violation or root role"
//	@Failure		404	{object}	adminsdk.ErrorResponse	"Unknown role"
//	@Failure		409	{object}	adminsdk.ErrorResponse	"Role still assigned"
//	@Security		BearerAuth
//	@Router			/v1/roles/{id} [delete].
func (h *RolesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "Authentication required")
		return
	}

	if err := h.RolesService.Delete(r.Context(), actor, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
