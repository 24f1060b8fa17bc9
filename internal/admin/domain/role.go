package domain

import (
	"strings"
	"time"
)

// RootLevel is the privilege level reserved for the single root role.
// Lower levels mean more privilege; level 0 is the superadmin root.
const RootLevel = 0

// RootRoleName is the canonical name of the root role.
const RootRoleName = "superadmin"

// Permissions are the named capabilities a role grants.
type Permissions struct {
	ManageUsers bool
	ManageRoles bool
}

type Role struct {
	ID          string
	Name        string // normalized lowercase, unique
	Description string
	Level       int // unique, 0 = root
	Permissions Permissions
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsRoot reports whether the role is the protected root role.
func (r Role) IsRoot() bool { return r.Level == RootLevel }

// NormalizeRoleName returns the canonical form used for storage and
// comparison: trimmed and lowercased.
func NormalizeRoleName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// RolePatch is the allow-list of mutable role fields. Nil fields are
// left untouched.
type RolePatch struct {
	Name        *string
	Description *string
	Level       *int
	Permissions *Permissions
}
