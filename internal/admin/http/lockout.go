package http

import (
	"encoding/json"
	"net/http"

	"github.com/wardenhq/warden/internal/admin/service"
	"github.com/wardenhq/warden/pkg/adminsdk"
	"github.com/wardenhq/warden/pkg/httpx"
)

type LockoutHandler struct {
	UserService    *service.UserService
	LockoutService *service.LockoutService
}

// HandleLockStatus serves the public lock-state view.
//
//	@Summary		Get lock status for an email
//	@Description	Returns the minimal lock-state projection the SPA login and forgot-password flows need. Unauthenticated but strictly rate limited.
//	@Tags			Lockout
//	@Produce		json
//	@Param			email	path		string							true	"Account email"
//	@Success		200		{object}	adminsdk.LockStatusResponse		"Lock state"
//	@Failure		404		{object}	adminsdk.ErrorResponse			"Unknown account"
//	@Router			/v1/users/email/{email} [get].
func (h *LockoutHandler) HandleLockStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.UserService.GetLockStatus(r.Context(), r.PathValue("email"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, adminsdk.LockStatusResponse{
		Email:               status.Email,
		LockState:           status.State.String(),
		FailedAttempts:      status.FailedAttempts,
		LockUntil:           status.LockUntil,
		AdminUnlockRequired: status.AdminUnlockRequired,
	})
}

// HandleFailedAttempt records one failed credential verification.
//
//	@Summary		Record a failed login attempt
//	@Description	Increments the account's failure counter and applies the lock transitions: the second consecutive failure locks for a minute, the third lock episode requires an administrative unlock.
//	@Tags			Lockout
//	@Produce		json
//	@Param			email	path		string							true	"Account email"
//	@Success		200		{object}	adminsdk.LockDecisionResponse	"Resulting lock state"
//	@Failure		404		{object}	adminsdk.ErrorResponse			"Unknown account"
//	@Router			/v1/users/{email}/failedAttempt [put].
func (h *LockoutHandler) HandleFailedAttempt(w http.ResponseWriter, r *http.Request) {
	decision, err := h.LockoutService.RecordFailure(r.Context(), r.PathValue("email"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, lockDecision(decision))
}

// HandleLoginCheck gates a login attempt.
//
//	@Summary		Check whether a login may proceed
//	@Description	Reports the account's lock state before credential verification. Expired timed locks are cleared here; unknown emails report active so account existence is not leaked.
//	@Tags			Lockout
//	@Accept			json
//	@Produce		json
//	@Param			request	body		adminsdk.LoginCheckRequest		true	"Account email"
//	@Success		200		{object}	adminsdk.LockDecisionResponse	"Lock decision"
//	@Failure		400		{object}	adminsdk.ErrorResponse			"Invalid request body"
//	@Router			/v1/login/check [post].
func (h *LockoutHandler) HandleLoginCheck(w http.ResponseWriter, r *http.Request) {
	var req adminsdk.LoginCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "Request body must be valid JSON")
		return
	}

	decision, err := h.LockoutService.Check(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, lockDecision(decision))
}

// HandleResetAttempts clears a user's failure counter.
//
//	@Summary		Reset failed attempts
//	@Description	Clears the failure counter and any timed lock. The SPA calls this with the user's own token after a successful login; resetting another user requires the manageUsers permission. The lockout episode counter is preserved.
//	@Tags			Lockout
//	@Param			id	path	string	true	"User id"
//	@Success		204	"Counter cleared"
//	@Failure		401	{object}	adminsdk.ErrorResponse	"Missing or invalid token"
//	@Failure		403	{object}	adminsdk.ErrorResponse	"Policy violation"
//	@Failure		404	{object}	adminsdk.ErrorResponse	"Unknown user"
//	@Security		BearerAuth
//	@Router			/v1/users/{id}/resetAttempts [put].
func (h *LockoutHandler) HandleResetAttempts(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "Authentication required")
		return
	}

	if err := h.LockoutService.ResetAttempts(r.Context(), actor, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleUnlock performs an administrative unlock.
//
//	@Summary		Unlock a user
//	@Description	Returns the account to the active state: failure counter, timed lock, episode counter and the admin-unlock flag are all reset.
//	@Tags			Lockout
//	@Param			id	path	string	true	"User id"
//	@Success		204	"Account unlocked"
//	@Failure		401	{object}	adminsdk.ErrorResponse	"Missing or invalid token"
//	@Failure		403	{object}	adminsdk.ErrorResponse	"Policy violation"
//	@Failure		404	{object}	adminsdk.ErrorResponse	"Unknown user"
//	@Security		BearerAuth
//	@Router			/v1/users/{id}/unlock [put].
func (h *LockoutHandler) HandleUnlock(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "Authentication required")
		return
	}

	if err := h.LockoutService.Unlock(r.Context(), actor, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleLock performs an administrative lock.
//
//	@Summary		Lock a user
//	@Description	Places the account directly into the admin-locked state. Only an administrative unlock releases it.
//	@Tags			Lockout
//	@Param			id	path	string	true	"User id"
//	@Success		204	"Account locked"
//	@Failure		401	{object}	adminsdk.ErrorResponse	"Missing or invalid token"
//	@Failure		403	{object}	adminsdk.ErrorResponse	"Policy violation"
//	@Failure		404	{object}	adminsdk.ErrorResponse	"Unknown user"
//	@Security		BearerAuth
//	@Router			/v1/users/{id}/lock [put].
func (h *LockoutHandler) HandleLock(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "Authentication required")
		return
	}

	if err := h.LockoutService.Lock(r.Context(), actor, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
