package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wardenhq/warden/internal/admin/domain"
	"github.com/wardenhq/warden/internal/admin/identity"
	"github.com/wardenhq/warden/internal/admin/store"
	"github.com/wardenhq/warden/pkg/cryptox"
	"github.com/wardenhq/warden/pkg/idx"
	"github.com/wardenhq/warden/pkg/slogx"
)

var (
	ErrBootstrapAlready      = errors.New("system already bootstrapped")
	ErrBootstrapUnauthorized = errors.New("unauthorized bootstrap attempt")
)

// BootstrapParams describes the first-run seed: the root account plus
// the initial role ladder.
type BootstrapParams struct {
	AdminEmail     string
	AdminFirstName string
	AdminLastName  string
	// AdminPassword is optional; when empty a random initial password
	// is generated and returned for out-of-band delivery.
	AdminPassword string
}

// BootstrapResult reports what the seed produced.
type BootstrapResult struct {
	AdminUserID string
	// InitialPassword is set only when the password was generated.
	InitialPassword string
}

// BootstrapService seeds an empty deployment: the superadmin root role,
// the admin and user roles below it, and the first account bound to a
// freshly-provisioned provider identity. Guarded by a pre-shared token.
type BootstrapService struct {
	Store    store.Store
	Provider identity.Provider
	Token    string

	DefaultRoleName string
}

// IsBootstrapped reports whether the deployment already has roles and
// users; readiness checks use it too.
func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	usersEmpty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	rolesEmpty, err := s.Store.Roles().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !usersEmpty && !rolesEmpty, nil
}

// Bootstrap performs the one-time seed. Refuses on a non-empty system
// or a wrong token.
func (s *BootstrapService) Bootstrap(ctx context.Context, token string, params BootstrapParams) (BootstrapResult, error) {
	l := slogx.FromContext(ctx)

	if bootstrapped, err := s.IsBootstrapped(ctx); err != nil {
		return BootstrapResult{}, err
	} else if bootstrapped {
		l.Warn("attempted bootstrap on already-bootstrapped system")
		return BootstrapResult{}, ErrBootstrapAlready
	}

	if s.Token == "" || token != s.Token {
		l.Warn("unauthorized bootstrap attempt")
		return BootstrapResult{}, ErrBootstrapUnauthorized
	}

	email, err := validateEmail(params.AdminEmail)
	if err != nil {
		return BootstrapResult{}, err
	}

	password := params.AdminPassword
	generated := ""
	if password == "" {
		password, err = cryptox.GenerateInitialPassword()
		if err != nil {
			return BootstrapResult{}, fmt.Errorf("%w: could not generate initial password", domain.ErrInternal)
		}
		generated = password
	}

	subjectID, err := s.Provider.CreateIdentity(ctx, identity.NewIdentity{
		Email:    email,
		Password: password,
	})
	if err != nil {
		if errors.Is(err, identity.ErrUnavailable) {
			return BootstrapResult{}, fmt.Errorf("%w: identity provider unreachable", domain.ErrTransient)
		}
		return BootstrapResult{}, err
	}

	adminUserID := idx.New().String()
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		seed := []domain.Role{
			{
				ID:          idx.New().String(),
				Name:        domain.RootRoleName,
				Description: "Full control over the deployment",
				Level:       domain.RootLevel,
				Permissions: domain.Permissions{ManageUsers: true, ManageRoles: true},
			},
			{
				ID:          idx.New().String(),
				Name:        "admin",
				Description: "Manages users below their level",
				Level:       domain.RootLevel + 1,
				Permissions: domain.Permissions{ManageUsers: true},
			},
			{
				ID:          idx.New().String(),
				Name:        domain.NormalizeRoleName(s.DefaultRoleName),
				Description: "Default role for self-service signups",
				Level:       domain.RootLevel + 2,
			},
		}

		var rootRoleID string
		for i := range seed {
			if err := tx.Roles().CreateRole(ctx, seed[i]); err != nil {
				return fmt.Errorf("create role %q: %w", seed[i].Name, err)
			}
			if seed[i].IsRoot() {
				rootRoleID = seed[i].ID
			}
		}

		return tx.Users().CreateUser(ctx, domain.User{
			ID:         adminUserID,
			ExternalID: subjectID,
			Email:      email,
			FirstName:  params.AdminFirstName,
			LastName:   params.AdminLastName,
			RoleID:     rootRoleID,
		})
	})
	if err != nil {
		// Do not leave an orphaned provider identity behind.
		_ = s.Provider.DeleteIdentity(ctx, subjectID)
		return BootstrapResult{}, err
	}

	l.Info("successfully bootstrapped system",
		slog.String("admin_user_id", adminUserID),
		slog.String("admin_email", email),
	)
	return BootstrapResult{AdminUserID: adminUserID, InitialPassword: generated}, nil
}
