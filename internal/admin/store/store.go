package store

import (
	"context"
	"errors"
	"time"

	"github.com/wardenhq/warden/internal/admin/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	ErrInUse         = errors.New("store: still referenced")
)

// Store is the root data access interface. Concrete drivers (sqlite for
// now) implement this. Sub-repositories keep concerns tidy and testable
// and stop callers from accidentally nesting transactions.
type Store interface {
	Users() Users
	Roles() Roles

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error
	// the transaction is rolled back, otherwise it is committed. This is
	// the required path for every lockout transition and every
	// check-then-write role mutation.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by local id, including soft-deleted rows
	// so admin tooling can inspect them.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByExternalID resolves a provider subject id to the local
	// record. Soft-deleted users are excluded; they must not authenticate.
	GetUserByExternalID(ctx context.Context, externalID string) (domain.User, error)

	// GetUserByEmail is used by the lockout recorder and the
	// forgot-password lookup. Soft-deleted users are excluded.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// ListUsersBelowLevel returns non-deleted users whose role level is
	// strictly greater than level, ordered by role level then email.
	// Pass a negative level to list everyone (root view).
	ListUsersBelowLevel(ctx context.Context, level int) ([]domain.User, error)

	// UpdateProfile applies the allow-listed profile patch and bumps
	// updated_at.
	UpdateProfile(ctx context.Context, userID string, patch domain.UserProfilePatch) error

	// SetUserRole repoints the role reference.
	SetUserRole(ctx context.Context, userID, roleID string) error

	// SoftDeleteUser marks the user deleted; listings and authentication
	// exclude it from then on.
	SoftDeleteUser(ctx context.Context, userID string) error

	// PurgeDeletedUsersBefore hard-deletes soft-deleted users whose last
	// update predates cutoff. Housekeeping only.
	PurgeDeletedUsersBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// CountUsersWithRole counts non-deleted users referencing a role.
	CountUsersWithRole(ctx context.Context, roleID string) (int, error)

	// IncrementFailedAttempts bumps failed_attempts in a single atomic
	// statement and returns the resulting row. Two concurrent failures
	// must never observe the same counter value.
	IncrementFailedAttempts(ctx context.Context, userID string) (domain.User, error)

	// ApplyTimedLock enters the timed-lock state in a single statement:
	// locked, counter reset, lockout_count incremented, and
	// admin_unlock_required set when the new episode count reaches
	// maxLockouts. Returns the resulting row.
	ApplyTimedLock(ctx context.Context, userID string, lockUntil time.Time, maxLockouts int) (domain.User, error)

	// ClearExpiredLock transitions a timed lock back to active, guarded
	// so an admin-required lock is never cleared. Reports whether a row
	// changed.
	ClearExpiredLock(ctx context.Context, userID string) (bool, error)

	// ClearExpiredLocks is the housekeeping sweep over every timed lock
	// whose deadline has passed. Admin-required locks are untouched.
	ClearExpiredLocks(ctx context.Context, now time.Time) (int64, error)

	// ResetFailedAttempts zeroes the counter (idempotent success path).
	ResetFailedAttempts(ctx context.Context, userID string) error

	// AdminUnlock clears all five lockout fields unconditionally.
	AdminUnlock(ctx context.Context, userID string) error

	// AdminLock forces the admin-required lock immediately.
	AdminLock(ctx context.Context, userID string) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type Roles interface {
	// GetRoleByID fetches a role by its ID.
	GetRoleByID(ctx context.Context, id string) (domain.Role, error)

	// GetRoleByName fetches a role by its normalized name.
	GetRoleByName(ctx context.Context, name string) (domain.Role, error)

	// ListRoles returns all roles ordered by ascending level (most
	// privileged first).
	ListRoles(ctx context.Context) ([]domain.Role, error)

	// MaxLevel returns the highest level currently in use, or -1 when no
	// roles exist.
	MaxLevel(ctx context.Context) (int, error)

	// CreateRole inserts a new role (id is ULID). Name and level
	// collisions surface as ErrAlreadyExists.
	CreateRole(ctx context.Context, r domain.Role) error

	// UpdateRole applies the allow-listed patch and bumps updated_at.
	UpdateRole(ctx context.Context, roleID string, patch domain.RolePatch) error

	// DeleteRole removes a role. Callers check references first; the FK
	// constraint is the backstop and surfaces as ErrInUse.
	DeleteRole(ctx context.Context, roleID string) error

	// IsEmpty returns true if there are no roles.
	IsEmpty(ctx context.Context) (bool, error)
}
