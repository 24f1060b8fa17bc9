package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/wardenhq/warden/internal/admin/domain"
	"github.com/wardenhq/warden/internal/admin/store"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, external_id, email, first_name, last_name, phone, profile_pic, role_id,
	failed_attempts, is_locked, lock_until, lockout_count, admin_unlock_required,
	is_deleted, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u         domain.User
		lockUntil sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.ExternalID, &u.Email, &u.FirstName, &u.LastName, &u.Phone, &u.ProfilePic, &u.RoleID,
		&u.FailedAttempts, &u.IsLocked, &lockUntil, &u.LockoutCount, &u.AdminUnlockRequired,
		&u.IsDeleted, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapErr(err)
	}
	if lockUntil.Valid {
		t := lockUntil.Time
		u.LockUntil = &t
	}
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *usersRepo) GetUserByExternalID(ctx context.Context, externalID string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE external_id = ? AND is_deleted = 0`, externalID))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? AND is_deleted = 0`, email))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			id, external_id, email, first_name, last_name, phone, profile_pic, role_id,
			failed_attempts, is_locked, lock_until, lockout_count, admin_unlock_required,
			is_deleted, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, 0, NULL, 0, 0, 0, ?, ?)`,
		u.ID, u.ExternalID, u.Email, u.FirstName, u.LastName, u.Phone, u.ProfilePic, u.RoleID,
		now, now,
	)
	return mapErr(err)
}

func (r *usersRepo) ListUsersBelowLevel(ctx context.Context, level int) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.external_id, u.email, u.first_name, u.last_name, u.phone, u.profile_pic, u.role_id,
			u.failed_attempts, u.is_locked, u.lock_until, u.lockout_count, u.admin_unlock_required,
			u.is_deleted, u.created_at, u.updated_at
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE u.is_deleted = 0 AND r.level > ?
		ORDER BY r.level ASC, u.email ASC`,
		level,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, mapErr(rows.Err())
}

func (r *usersRepo) UpdateProfile(ctx context.Context, userID string, patch domain.UserProfilePatch) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET
			first_name  = COALESCE(?, first_name),
			last_name   = COALESCE(?, last_name),
			phone       = COALESCE(?, phone),
			profile_pic = COALESCE(?, profile_pic),
			updated_at  = ?
		WHERE id = ? AND is_deleted = 0`,
		patch.FirstName, patch.LastName, patch.Phone, patch.ProfilePic,
		time.Now().UTC(), userID,
	)
	if err != nil {
		return mapErr(err)
	}
	return requireRow(res)
}

func (r *usersRepo) SetUserRole(ctx context.Context, userID, roleID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET role_id = ?, updated_at = ? WHERE id = ? AND is_deleted = 0`,
		roleID, time.Now().UTC(), userID,
	)
	if err != nil {
		return mapErr(err)
	}
	return requireRow(res)
}

func (r *usersRepo) SoftDeleteUser(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_deleted = 1, updated_at = ? WHERE id = ? AND is_deleted = 0`,
		time.Now().UTC(), userID,
	)
	if err != nil {
		return mapErr(err)
	}
	return requireRow(res)
}

func (r *usersRepo) PurgeDeletedUsersBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM users WHERE is_deleted = 1 AND updated_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, mapErr(err)
	}
	return res.RowsAffected()
}

func (r *usersRepo) CountUsersWithRole(ctx context.Context, roleID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE role_id = ? AND is_deleted = 0`, roleID,
	).Scan(&count)
	return count, mapErr(err)
}

// IncrementFailedAttempts is a single atomic statement so two concurrent
// failures can never both read N and both write N+1.
func (r *usersRepo) IncrementFailedAttempts(ctx context.Context, userID string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `
		UPDATE users SET failed_attempts = failed_attempts + 1, updated_at = ?
		WHERE id = ? AND is_deleted = 0
		RETURNING `+userColumns,
		time.Now().UTC(), userID,
	))
}

func (r *usersRepo) ApplyTimedLock(ctx context.Context, userID string, lockUntil time.Time, maxLockouts int) (domain.User, error) {
	// The escalation decision reads the post-increment count in the same
	// statement, keeping the whole transition atomic.
	return scanUser(r.db.QueryRowContext(ctx, `
		UPDATE users SET
			is_locked = 1,
			failed_attempts = 0,
			lock_until = ?,
			lockout_count = lockout_count + 1,
			admin_unlock_required = CASE WHEN lockout_count + 1 >= ? THEN 1 ELSE admin_unlock_required END,
			updated_at = ?
		WHERE id = ? AND is_deleted = 0
		RETURNING `+userColumns,
		lockUntil.UTC(), maxLockouts, time.Now().UTC(), userID,
	))
}

func (r *usersRepo) ClearExpiredLock(ctx context.Context, userID string) (bool, error) {
	// Guarded so an admin-required lock is never cleared by this path.
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET is_locked = 0, failed_attempts = 0, lock_until = NULL, updated_at = ?
		WHERE id = ? AND is_locked = 1 AND admin_unlock_required = 0`,
		time.Now().UTC(), userID,
	)
	if err != nil {
		return false, mapErr(err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *usersRepo) ClearExpiredLocks(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET is_locked = 0, failed_attempts = 0, lock_until = NULL, updated_at = ?
		WHERE is_locked = 1 AND admin_unlock_required = 0 AND lock_until IS NOT NULL AND lock_until < ?`,
		time.Now().UTC(), now.UTC(),
	)
	if err != nil {
		return 0, mapErr(err)
	}
	return res.RowsAffected()
}

func (r *usersRepo) ResetFailedAttempts(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET failed_attempts = 0, updated_at = ? WHERE id = ? AND is_deleted = 0`,
		time.Now().UTC(), userID,
	)
	return mapErr(err)
}

func (r *usersRepo) AdminUnlock(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET
			failed_attempts = 0,
			is_locked = 0,
			lock_until = NULL,
			lockout_count = 0,
			admin_unlock_required = 0,
			updated_at = ?
		WHERE id = ?`,
		time.Now().UTC(), userID,
	)
	if err != nil {
		return mapErr(err)
	}
	return requireRow(res)
}

func (r *usersRepo) AdminLock(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_locked = 1, admin_unlock_required = 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), userID,
	)
	if err != nil {
		return mapErr(err)
	}
	return requireRow(res)
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}

// requireRow turns a zero-row UPDATE into store.ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
