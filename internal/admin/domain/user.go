package domain

import "time"

type User struct {
	ID         string
	ExternalID string // identity-provider subject id, immutable once set
	Email      string
	FirstName  string
	LastName   string
	Phone      string
	ProfilePic string
	RoleID     string // Foreign key to roles table

	// Lockout state, mutated only through atomic store transitions.
	FailedAttempts      int
	IsLocked            bool
	LockUntil           *time.Time
	LockoutCount        int
	AdminUnlockRequired bool

	IsDeleted bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LockState is the lockout machine's view of a user.
type LockState int

const (
	// LockStateActive means logins may proceed to credential verification.
	LockStateActive LockState = iota
	// LockStateTimed means the account is locked until LockUntil passes.
	LockStateTimed
	// LockStateAdmin means only an explicit administrative unlock helps.
	LockStateAdmin
)

func (s LockState) String() string {
	switch s {
	case LockStateTimed:
		return "locked"
	case LockStateAdmin:
		return "locked_admin"
	default:
		return "active"
	}
}

// Lock returns the user's current lock state.
func (u User) Lock() LockState {
	switch {
	case u.IsLocked && u.AdminUnlockRequired:
		return LockStateAdmin
	case u.IsLocked:
		return LockStateTimed
	default:
		return LockStateActive
	}
}

// UserProfilePatch is the allow-list of mutable profile fields. Nil
// fields are left untouched. Role changes go through their own
// policy-checked path and are deliberately not part of the patch.
type UserProfilePatch struct {
	FirstName  *string
	LastName   *string
	Phone      *string
	ProfilePic *string
}

// IsZero reports whether the patch changes nothing.
func (p UserProfilePatch) IsZero() bool {
	return p.FirstName == nil && p.LastName == nil && p.Phone == nil && p.ProfilePic == nil
}
