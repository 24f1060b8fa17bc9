package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wardenhq/warden/internal/admin/domain"
	"github.com/wardenhq/warden/internal/admin/store"
	"github.com/wardenhq/warden/pkg/idx"
	"github.com/wardenhq/warden/pkg/slogx"
)

// RolesService manages the role hierarchy. Every mutation is gated on
// the actor's manage-roles permission and on level dominance over the
// role being touched.
type RolesService struct {
	Store store.Store

	// AllowImplicitRoleCreation lets a user mutation reference a role
	// that does not exist yet; the role is created at the bottom of the
	// hierarchy. Off by default.
	AllowImplicitRoleCreation bool
}

// CreateRoleParams carries the request body of a role creation.
type CreateRoleParams struct {
	Name        string
	Description string
	Level       int
	Permissions domain.Permissions
}

func (p CreateRoleParams) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: role name is required", domain.ErrValidation)
	}
	if p.Level < 0 {
		return fmt.Errorf("%w: role level must be non-negative", domain.ErrValidation)
	}
	return nil
}

// List returns all roles ordered by level, most privileged first.
// Read-only, so any authenticated admin-panel user may call it.
func (s *RolesService) List(ctx context.Context) ([]domain.Role, error) {
	return s.Store.Roles().ListRoles(ctx)
}

// Get looks up a single role by id.
func (s *RolesService) Get(ctx context.Context, id string) (domain.Role, error) {
	role, err := s.Store.Roles().GetRoleByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Role{}, fmt.Errorf("%w: unknown role", domain.ErrNotFound)
		}
		return domain.Role{}, err
	}
	return role, nil
}

// Create inserts a new role. The actor must hold manage-roles and must
// dominate the level being created; nobody can mint a peer or superior.
func (s *RolesService) Create(ctx context.Context, actor Actor, params CreateRoleParams) (domain.Role, error) {
	if err := requireManageRoles(actor); err != nil {
		return domain.Role{}, err
	}
	if err := params.validate(); err != nil {
		return domain.Role{}, err
	}
	if !CanAct(actor.Role.Level, params.Level) {
		return domain.Role{}, fmt.Errorf("%w: cannot create a role at or above your own level", domain.ErrForbidden)
	}

	name := domain.NormalizeRoleName(params.Name)
	if name == domain.RootRoleName {
		return domain.Role{}, fmt.Errorf("%w: role name %q is reserved", domain.ErrConflict, domain.RootRoleName)
	}

	role := domain.Role{
		ID:          idx.New().String(),
		Name:        name,
		Description: params.Description,
		Level:       params.Level,
		Permissions: params.Permissions,
	}
	if err := s.Store.Roles().CreateRole(ctx, role); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Role{}, fmt.Errorf("%w: role name or level already taken", domain.ErrConflict)
		}
		return domain.Role{}, err
	}

	slogx.FromContext(ctx).Info("role created",
		"role_id", role.ID, "name", role.Name, "level", role.Level,
		"actor_id", actor.User.ID)
	return role, nil
}

// Update patches a role. The root role is immutable; the actor must
// dominate both the role's current level and, when the level changes,
// the new level.
func (s *RolesService) Update(ctx context.Context, actor Actor, id string, patch domain.RolePatch) (domain.Role, error) {
	if err := requireManageRoles(actor); err != nil {
		return domain.Role{}, err
	}

	var updated domain.Role
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		role, err := tx.Roles().GetRoleByID(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%w: unknown role", domain.ErrNotFound)
			}
			return err
		}
		if role.IsRoot() {
			return fmt.Errorf("%w: the root role cannot be modified", domain.ErrForbidden)
		}
		if err := requireDominates(actor, role.Level); err != nil {
			return err
		}

		if patch.Name != nil {
			name := domain.NormalizeRoleName(*patch.Name)
			if name == "" {
				return fmt.Errorf("%w: role name cannot be empty", domain.ErrValidation)
			}
			if name == domain.RootRoleName {
				return fmt.Errorf("%w: role name %q is reserved", domain.ErrConflict, domain.RootRoleName)
			}
			patch.Name = &name
		}
		if patch.Level != nil {
			if *patch.Level <= domain.RootLevel {
				return fmt.Errorf("%w: only the root role holds level %d", domain.ErrValidation, domain.RootLevel)
			}
			if !CanAct(actor.Role.Level, *patch.Level) {
				return fmt.Errorf("%w: cannot raise a role to or above your own level", domain.ErrForbidden)
			}
		}

		if err := tx.Roles().UpdateRole(ctx, id, patch); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return fmt.Errorf("%w: role name or level already taken", domain.ErrConflict)
			}
			return err
		}

		updated, err = tx.Roles().GetRoleByID(ctx, id)
		return err
	})
	if err != nil {
		return domain.Role{}, err
	}

	slogx.FromContext(ctx).Info("role updated", "role_id", id, "actor_id", actor.User.ID)
	return updated, nil
}

// Delete removes a role. The root role and any role still assigned to
// users are refused.
func (s *RolesService) Delete(ctx context.Context, actor Actor, id string) error {
	if err := requireManageRoles(actor); err != nil {
		return err
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		role, err := tx.Roles().GetRoleByID(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%w: unknown role", domain.ErrNotFound)
			}
			return err
		}
		if role.IsRoot() {
			return fmt.Errorf("%w: the root role cannot be deleted", domain.ErrForbidden)
		}
		if err := requireDominates(actor, role.Level); err != nil {
			return err
		}

		n, err := tx.Users().CountUsersWithRole(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: role is assigned to %d user(s)", domain.ErrConflict, n)
		}

		if err := tx.Roles().DeleteRole(ctx, id); err != nil {
			if errors.Is(err, store.ErrInUse) {
				return fmt.Errorf("%w: role is still in use", domain.ErrConflict)
			}
			return err
		}

		slogx.FromContext(ctx).Info("role deleted",
			"role_id", id, "name", role.Name, "actor_id", actor.User.ID)
		return nil
	})
}

// EnsureRole resolves a role name to a role, creating it one level
// below the current bottom of the hierarchy when implicit creation is
// enabled. Runs inside the caller's transaction.
func (s *RolesService) EnsureRole(ctx context.Context, tx store.Tx, actor Actor, name string) (domain.Role, error) {
	name = domain.NormalizeRoleName(name)
	if name == "" {
		return domain.Role{}, fmt.Errorf("%w: role name is required", domain.ErrValidation)
	}

	role, err := tx.Roles().GetRoleByName(ctx, name)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Role{}, err
	}

	if !s.AllowImplicitRoleCreation {
		return domain.Role{}, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, name)
	}
	if err := requireManageRoles(actor); err != nil {
		return domain.Role{}, err
	}

	max, err := tx.Roles().MaxLevel(ctx)
	if err != nil {
		return domain.Role{}, err
	}

	role = domain.Role{
		ID:    idx.New().String(),
		Name:  name,
		Level: max + 1,
	}
	if err := tx.Roles().CreateRole(ctx, role); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Lost the creation race; the other writer's row wins.
			return tx.Roles().GetRoleByName(ctx, name)
		}
		return domain.Role{}, err
	}

	slogx.FromContext(ctx).Info("role implicitly created",
		"role_id", role.ID, "name", role.Name, "level", role.Level)
	return role, nil
}
