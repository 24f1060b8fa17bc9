package adminsdk

import "time"

// ErrorResponse is the standard error envelope every endpoint returns
// on failure. This is used internally for parsing HTTP error responses;
// client code should use the APIError type from errors.go instead.
type ErrorResponse struct {
	// Error is the stable machine-readable kind (e.g. "forbidden",
	// "conflict", "locked")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description,omitempty"`
}

// ============================================================================
// Role Types
// ============================================================================

// PermissionsInfo is the capability set attached to a role.
type PermissionsInfo struct {
	ManageUsers bool `json:"manage_users"`
	ManageRoles bool `json:"manage_roles"`
}

// RoleInfo represents a role in the hierarchy. Lower level means more
// privilege; level 0 is the protected root role.
type RoleInfo struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Level       int             `json:"level"`
	Permissions PermissionsInfo `json:"permissions"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ListRolesResponse is returned from GET /v1/roles, ordered most
// privileged first.
type ListRolesResponse struct {
	Roles []RoleInfo `json:"roles"`
}

// CreateRoleRequest is the body of POST /v1/roles.
type CreateRoleRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Level       int             `json:"level"`
	Permissions PermissionsInfo `json:"permissions"`
}

// UpdateRoleRequest is the body of PUT /v1/roles/{id}. Nil fields are
// left unchanged.
type UpdateRoleRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Level       *int             `json:"level,omitempty"`
	Permissions *PermissionsInfo `json:"permissions,omitempty"`
}

// ============================================================================
// User Types
// ============================================================================

// UserInfo represents a user with its resolved role and lock state.
type UserInfo struct {
	ID         string   `json:"id"`
	Email      string   `json:"email"`
	FirstName  string   `json:"first_name,omitempty"`
	LastName   string   `json:"last_name,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	ProfilePic string   `json:"profile_pic,omitempty"`
	Role       RoleInfo `json:"role"`

	// LockState is "active", "locked" or "locked_admin".
	LockState      string     `json:"lock_state"`
	FailedAttempts int        `json:"failed_attempts"`
	LockUntil      *time.Time `json:"lock_until,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListUsersResponse is returned from GET /v1/users. Only users the
// caller is allowed to see are included.
type ListUsersResponse struct {
	Users []UserInfo `json:"users"`
}

// CreateUserRequest is the body of POST /v1/users.
type CreateUserRequest struct {
	Email      string `json:"email"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	Phone      string `json:"phone,omitempty"`
	ProfilePic string `json:"profile_pic,omitempty"`
	Role       string `json:"role"`

	// ExternalID optionally binds the user to an existing identity
	// provider account instead of provisioning a fresh one.
	ExternalID string `json:"external_id,omitempty"`
}

// UpdateUserRequest is the body of PUT /v1/users/{id}. Nil profile
// fields are left unchanged; an empty Role keeps the current role.
type UpdateUserRequest struct {
	FirstName  *string `json:"first_name,omitempty"`
	LastName   *string `json:"last_name,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	ProfilePic *string `json:"profile_pic,omitempty"`
	Role       string  `json:"role,omitempty"`
}

// SignupRequest is the body of POST /v1/users/signup. The identity
// comes from the Bearer token, not the body.
type SignupRequest struct {
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	Phone      string `json:"phone,omitempty"`
	ProfilePic string `json:"profile_pic,omitempty"`
}

// ============================================================================
// Lockout Types
// ============================================================================

// LockStatusResponse is the minimal public projection returned by
// GET /v1/users/email/{email} for the SPA login and forgot-password
// flows.
type LockStatusResponse struct {
	Email               string     `json:"email"`
	LockState           string     `json:"lock_state"`
	FailedAttempts      int        `json:"failed_attempts"`
	LockUntil           *time.Time `json:"lock_until,omitempty"`
	AdminUnlockRequired bool       `json:"admin_unlock_required"`
}

// LoginCheckRequest is the body of POST /v1/login/check.
type LoginCheckRequest struct {
	Email string `json:"email"`
}

// LockDecisionResponse reports whether a login attempt may proceed.
// Returned by POST /v1/login/check and PUT /v1/users/{email}/failedAttempt.
type LockDecisionResponse struct {
	// LockState is "active", "locked" or "locked_admin".
	LockState string `json:"lock_state"`
	Allowed   bool   `json:"allowed"`

	// RetryAt is set for timed locks: when the lock expires.
	RetryAt *time.Time `json:"retry_at,omitempty"`
}

// ============================================================================
// Bootstrap Types
// ============================================================================

// BootstrapRequest is the body of POST /v1/bootstrap.
type BootstrapRequest struct {
	AdminEmail     string `json:"admin_email"`
	AdminFirstName string `json:"admin_first_name,omitempty"`
	AdminLastName  string `json:"admin_last_name,omitempty"`

	// AdminPassword is optional; when empty a random initial password
	// is generated and returned once in the response.
	AdminPassword string `json:"admin_password,omitempty"`
}

// BootstrapResponse is returned once from a successful bootstrap.
type BootstrapResponse struct {
	AdminUserID string `json:"admin_user_id"`

	// InitialPassword is only set when the password was generated
	// server-side. It is never retrievable again.
	InitialPassword string `json:"initial_password,omitempty"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthChecks reports per-dependency status in readiness responses.
type HealthChecks struct {
	Database string `json:"database,omitempty"`
}

// HealthResponse is returned from GET /livez and GET /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
