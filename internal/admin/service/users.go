package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/wardenhq/warden/internal/admin/domain"
	"github.com/wardenhq/warden/internal/admin/identity"
	"github.com/wardenhq/warden/internal/admin/store"
	"github.com/wardenhq/warden/pkg/idx"
	"github.com/wardenhq/warden/pkg/slogx"
)

// UserService implements user lifecycle on top of the store, the role
// hierarchy, and the external identity provider.
type UserService struct {
	Store    store.Store
	Sessions *SessionService
	Roles    *RolesService

	// DefaultRoleName is assigned on self-service signup.
	DefaultRoleName string
}

// CreateUserParams is the admin-side user creation input.
type CreateUserParams struct {
	Email      string
	FirstName  string
	LastName   string
	Phone      string
	ProfilePic string
	RoleName   string
	// ExternalID optionally binds to an existing provider identity.
	ExternalID string
}

// SignupParams is the self-service signup input; the identity comes
// from the verified provider token, not the body.
type SignupParams struct {
	FirstName  string
	LastName   string
	Phone      string
	ProfilePic string
}

// UserView is the user plus its resolved role, the shape every read
// endpoint returns.
type UserView struct {
	User domain.User
	Role domain.Role
}

// LockStatusView is the minimal public projection served to the
// unauthenticated forgot-password / login-gate lookups.
type LockStatusView struct {
	Email               string
	State               domain.LockState
	FailedAttempts      int
	LockUntil           *time.Time
	AdminUnlockRequired bool
}

func validateEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("%w: invalid email address", domain.ErrValidation)
	}
	return email, nil
}

// Signup registers the caller of a freshly-minted provider token as a
// local user with the default role.
func (s *UserService) Signup(ctx context.Context, rawToken string, params SignupParams) (UserView, error) {
	id, err := s.Sessions.Provider.VerifyToken(ctx, rawToken)
	if err != nil {
		if errors.Is(err, identity.ErrUnavailable) {
			return UserView{}, fmt.Errorf("%w: identity provider unreachable", domain.ErrTransient)
		}
		return UserView{}, fmt.Errorf("%w: token verification failed", domain.ErrUnauthenticated)
	}

	email, err := validateEmail(id.Email)
	if err != nil {
		return UserView{}, err
	}

	var view UserView
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		role, err := tx.Roles().GetRoleByName(ctx, domain.NormalizeRoleName(s.DefaultRoleName))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%w: default role is not provisioned", domain.ErrInternal)
			}
			return err
		}

		user := domain.User{
			ID:         idx.New().String(),
			ExternalID: id.SubjectID,
			Email:      email,
			FirstName:  strings.TrimSpace(params.FirstName),
			LastName:   strings.TrimSpace(params.LastName),
			Phone:      strings.TrimSpace(params.Phone),
			ProfilePic: params.ProfilePic,
			RoleID:     role.ID,
		}
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return fmt.Errorf("%w: an account already exists for this email or identity", domain.ErrConflict)
			}
			return err
		}

		view = UserView{User: user, Role: role}
		return nil
	})
	if err != nil {
		return UserView{}, err
	}

	slogx.FromContext(ctx).Info("user signed up",
		"user_id", view.User.ID, "email", view.User.Email)
	return view, nil
}

// Create provisions a user on behalf of an administrator. Validation
// and policy run before any side effect; if the local insert fails
// after a provider identity was provisioned, the identity is deleted
// again so no orphan remains.
func (s *UserService) Create(ctx context.Context, actor Actor, params CreateUserParams) (UserView, error) {
	if err := requireManageUsers(actor); err != nil {
		return UserView{}, err
	}

	email, err := validateEmail(params.Email)
	if err != nil {
		return UserView{}, err
	}
	if strings.TrimSpace(params.RoleName) == "" {
		return UserView{}, fmt.Errorf("%w: role name is required", domain.ErrValidation)
	}

	// Resolve the target role up front so the policy check precedes
	// remote provisioning. Implicit creation happens later inside the
	// write transaction.
	targetRole, err := s.Store.Roles().GetRoleByName(ctx, domain.NormalizeRoleName(params.RoleName))
	switch {
	case err == nil:
		if err := requireDominates(actor, targetRole.Level); err != nil {
			return UserView{}, err
		}
	case errors.Is(err, store.ErrNotFound):
		if !s.Roles.AllowImplicitRoleCreation {
			return UserView{}, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, params.RoleName)
		}
	default:
		return UserView{}, err
	}

	externalID, cleanup, err := s.Sessions.BindExternalIdentity(ctx, params.ExternalID, email)
	if err != nil {
		return UserView{}, err
	}

	var view UserView
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		role, err := s.Roles.EnsureRole(ctx, tx, actor, params.RoleName)
		if err != nil {
			return err
		}
		if err := requireDominates(actor, role.Level); err != nil {
			return err
		}

		user := domain.User{
			ID:         idx.New().String(),
			ExternalID: externalID,
			Email:      email,
			FirstName:  strings.TrimSpace(params.FirstName),
			LastName:   strings.TrimSpace(params.LastName),
			Phone:      strings.TrimSpace(params.Phone),
			ProfilePic: params.ProfilePic,
			RoleID:     role.ID,
		}
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return fmt.Errorf("%w: an account already exists for this email or identity", domain.ErrConflict)
			}
			return err
		}

		view = UserView{User: user, Role: role}
		return nil
	})
	if err != nil {
		if cleanup != nil {
			cleanup(ctx)
		}
		return UserView{}, err
	}

	slogx.FromContext(ctx).Info("user created",
		"user_id", view.User.ID, "email", view.User.Email,
		"role", view.Role.Name, "actor_id", actor.User.ID)
	return view, nil
}

// Get returns a user the actor is allowed to see. Users outside the
// actor's visibility window read as absent, not forbidden.
func (s *UserService) Get(ctx context.Context, actor Actor, id string) (UserView, error) {
	user, err := s.Store.Users().GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return UserView{}, fmt.Errorf("%w: unknown user", domain.ErrNotFound)
		}
		return UserView{}, err
	}
	if user.IsDeleted && user.ID != actor.User.ID {
		return UserView{}, fmt.Errorf("%w: unknown user", domain.ErrNotFound)
	}

	role, err := s.Store.Roles().GetRoleByID(ctx, user.RoleID)
	if err != nil {
		return UserView{}, err
	}

	if user.ID != actor.User.ID && !actor.Dominates(role.Level) {
		return UserView{}, fmt.Errorf("%w: unknown user", domain.ErrNotFound)
	}
	return UserView{User: user, Role: role}, nil
}

// List returns the users inside the actor's visibility window: root
// sees everyone, everyone else sees only strictly lower-privileged
// accounts. Soft-deleted users are excluded.
func (s *UserService) List(ctx context.Context, actor Actor) ([]UserView, error) {
	users, err := s.Store.Users().ListUsersBelowLevel(ctx, actor.VisibleLevelFloor())
	if err != nil {
		return nil, err
	}

	roles, err := s.Store.Roles().ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Role, len(roles))
	for _, r := range roles {
		byID[r.ID] = r
	}

	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, UserView{User: u, Role: byID[u.RoleID]})
	}
	return views, nil
}

// GetLockStatus is the unauthenticated lock-state projection used by
// the SPA's login and forgot-password flows.
func (s *UserService) GetLockStatus(ctx context.Context, email string) (LockStatusView, error) {
	email, err := validateEmail(email)
	if err != nil {
		return LockStatusView{}, err
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return LockStatusView{}, fmt.Errorf("%w: unknown account", domain.ErrNotFound)
		}
		return LockStatusView{}, err
	}

	return LockStatusView{
		Email:               user.Email,
		State:               user.Lock(),
		FailedAttempts:      user.FailedAttempts,
		LockUntil:           user.LockUntil,
		AdminUnlockRequired: user.AdminUnlockRequired,
	}, nil
}

// Update patches a user's profile and, when roleName is non-empty,
// reassigns the role. The policy is re-checked against both the current
// and the new role level.
func (s *UserService) Update(ctx context.Context, actor Actor, id string, patch domain.UserProfilePatch, roleName string) (UserView, error) {
	if err := requireManageUsers(actor); err != nil {
		return UserView{}, err
	}

	var view UserView
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := tx.Users().GetUserByID(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%w: unknown user", domain.ErrNotFound)
			}
			return err
		}
		if user.IsDeleted {
			return fmt.Errorf("%w: unknown user", domain.ErrNotFound)
		}

		currentRole, err := tx.Roles().GetRoleByID(ctx, user.RoleID)
		if err != nil {
			return err
		}
		if err := requireDominates(actor, currentRole.Level); err != nil {
			return err
		}

		role := currentRole
		if roleName != "" {
			role, err = s.Roles.EnsureRole(ctx, tx, actor, roleName)
			if err != nil {
				return err
			}
			if role.IsRoot() {
				return fmt.Errorf("%w: the root role cannot be assigned", domain.ErrForbidden)
			}
			if err := requireDominates(actor, role.Level); err != nil {
				return err
			}
			if role.ID != currentRole.ID {
				if err := tx.Users().SetUserRole(ctx, user.ID, role.ID); err != nil {
					return err
				}
				user.RoleID = role.ID
			}
		}

		if !patch.IsZero() {
			if err := tx.Users().UpdateProfile(ctx, user.ID, patch); err != nil {
				return err
			}
			user, err = tx.Users().GetUserByID(ctx, user.ID)
			if err != nil {
				return err
			}
		}

		view = UserView{User: user, Role: role}
		return nil
	})
	if err != nil {
		return UserView{}, err
	}

	if !patch.IsZero() {
		// Best-effort mirror of the display fields to the provider; the
		// local record is authoritative either way.
		display := strings.TrimSpace(view.User.FirstName + " " + view.User.LastName)
		if err := s.Sessions.Provider.UpdateIdentity(ctx, view.User.ExternalID, display, view.User.ProfilePic); err != nil {
			slogx.FromContext(ctx).Warn("provider profile sync failed",
				"user_id", id, "error", err)
		}
	}

	slogx.FromContext(ctx).Info("user updated",
		"user_id", id, "actor_id", actor.User.ID)
	return view, nil
}

// Delete soft-deletes a user locally and removes the provider identity.
// Root-role holders are never deletable. The remote delete runs first:
// if the provider is unreachable the local state stays untouched and
// the caller gets a transient error to retry.
func (s *UserService) Delete(ctx context.Context, actor Actor, id string) error {
	if err := requireManageUsers(actor); err != nil {
		return err
	}

	user, err := s.Store.Users().GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: unknown user", domain.ErrNotFound)
		}
		return err
	}
	if user.IsDeleted {
		return fmt.Errorf("%w: unknown user", domain.ErrNotFound)
	}

	role, err := s.Store.Roles().GetRoleByID(ctx, user.RoleID)
	if err != nil {
		return err
	}
	if role.IsRoot() {
		return fmt.Errorf("%w: the root account cannot be deleted", domain.ErrForbidden)
	}
	if err := requireDominates(actor, role.Level); err != nil {
		return err
	}

	if err := s.Sessions.Provider.DeleteIdentity(ctx, user.ExternalID); err != nil {
		if errors.Is(err, identity.ErrUnavailable) {
			return fmt.Errorf("%w: identity provider unreachable, retry later", domain.ErrTransient)
		}
		if !errors.Is(err, identity.ErrNotFound) {
			return err
		}
		// Already gone remotely; proceed with the local delete.
	}

	if err := s.Store.Users().SoftDeleteUser(ctx, id); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("user deleted",
		"user_id", id, "email", user.Email, "actor_id", actor.User.ID)
	return nil
}
