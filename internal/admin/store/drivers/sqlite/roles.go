package sqlite

import (
	"context"
	"time"

	"github.com/wardenhq/warden/internal/admin/domain"
)

type rolesRepo struct {
	db dbtx
}

const roleColumns = `id, name, description, level, manage_users, manage_roles, created_at, updated_at`

func scanRole(row rowScanner) (domain.Role, error) {
	var r domain.Role
	err := row.Scan(
		&r.ID, &r.Name, &r.Description, &r.Level,
		&r.Permissions.ManageUsers, &r.Permissions.ManageRoles,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return domain.Role{}, mapErr(err)
	}
	return r, nil
}

func (r *rolesRepo) GetRoleByID(ctx context.Context, id string) (domain.Role, error) {
	return scanRole(r.db.QueryRowContext(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE id = ?`, id))
}

func (r *rolesRepo) GetRoleByName(ctx context.Context, name string) (domain.Role, error) {
	return scanRole(r.db.QueryRowContext(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE name = ?`, name))
}

func (r *rolesRepo) ListRoles(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+roleColumns+` FROM roles ORDER BY level ASC`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, mapErr(rows.Err())
}

func (r *rolesRepo) MaxLevel(ctx context.Context) (int, error) {
	var level int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(level), -1) FROM roles`).Scan(&level)
	return level, mapErr(err)
}

func (r *rolesRepo) CreateRole(ctx context.Context, role domain.Role) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO roles (id, name, description, level, manage_users, manage_roles, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		role.ID, role.Name, role.Description, role.Level,
		role.Permissions.ManageUsers, role.Permissions.ManageRoles,
		now, now,
	)
	return mapErr(err)
}

func (r *rolesRepo) UpdateRole(ctx context.Context, roleID string, patch domain.RolePatch) error {
	var manageUsers, manageRoles *bool
	if patch.Permissions != nil {
		manageUsers = &patch.Permissions.ManageUsers
		manageRoles = &patch.Permissions.ManageRoles
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE roles SET
			name         = COALESCE(?, name),
			description  = COALESCE(?, description),
			level        = COALESCE(?, level),
			manage_users = COALESCE(?, manage_users),
			manage_roles = COALESCE(?, manage_roles),
			updated_at   = ?
		WHERE id = ?`,
		patch.Name, patch.Description, patch.Level,
		manageUsers, manageRoles,
		time.Now().UTC(), roleID,
	)
	if err != nil {
		return mapErr(err)
	}
	return requireRow(res)
}

func (r *rolesRepo) DeleteRole(ctx context.Context, roleID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM roles WHERE id = ?`, roleID)
	if err != nil {
		return mapErr(err)
	}
	return requireRow(res)
}

func (r *rolesRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM roles`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}
