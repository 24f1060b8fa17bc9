package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wardenhq/warden/internal/admin/domain"
	"github.com/wardenhq/warden/internal/admin/identity"
	"github.com/wardenhq/warden/internal/admin/store"
	"github.com/wardenhq/warden/pkg/cryptox"
)

// SessionService bridges bearer tokens minted by the identity provider
// to local user records. It never stores credentials; the provider owns
// those.
type SessionService struct {
	Store    store.Store
	Provider identity.Provider
}

// ResolveIdentity verifies a raw bearer token against the provider and
// maps its subject to a local, non-deleted user. The returned Actor
// carries the user's resolved role so handlers can make policy
// decisions without another lookup.
func (s *SessionService) ResolveIdentity(ctx context.Context, rawToken string) (Actor, error) {
	id, err := s.Provider.VerifyToken(ctx, rawToken)
	if err != nil {
		if errors.Is(err, identity.ErrUnavailable) {
			return Actor{}, fmt.Errorf("%w: identity provider unreachable", domain.ErrTransient)
		}
		return Actor{}, fmt.Errorf("%w: token verification failed", domain.ErrUnauthenticated)
	}

	user, err := s.Store.Users().GetUserByExternalID(ctx, id.SubjectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Actor{}, fmt.Errorf("%w: no account for this identity", domain.ErrNotFound)
		}
		return Actor{}, err
	}

	role, err := s.Store.Roles().GetRoleByID(ctx, user.RoleID)
	if err != nil {
		return Actor{}, err
	}

	return Actor{User: user, Role: role}, nil
}

// BindExternalIdentity resolves the provider identity a new local user
// should attach to. A supplied external id must already exist at the
// provider and carry the same email; with no id, a fresh identity is
// provisioned with a random initial password. The returned cleanup
// function undoes a provisioned identity and is non-nil only when this
// call created one; callers invoke it when the local insert fails.
func (s *SessionService) BindExternalIdentity(ctx context.Context, externalID, email string) (string, func(context.Context), error) {
	if externalID != "" {
		id, err := s.Provider.GetIdentity(ctx, externalID)
		if err != nil {
			if errors.Is(err, identity.ErrNotFound) {
				return "", nil, fmt.Errorf("%w: external identity does not exist", domain.ErrValidation)
			}
			if errors.Is(err, identity.ErrUnavailable) {
				return "", nil, fmt.Errorf("%w: identity provider unreachable", domain.ErrTransient)
			}
			return "", nil, err
		}
		// Local emails are stored lowercased; the provider keeps
		// whatever casing the identity was registered with.
		if !strings.EqualFold(id.Email, email) {
			return "", nil, fmt.Errorf("%w: external identity is bound to a different email", domain.ErrConflict)
		}
		return externalID, nil, nil
	}

	password, err := cryptox.GenerateInitialPassword()
	if err != nil {
		return "", nil, fmt.Errorf("%w: could not generate initial password", domain.ErrInternal)
	}

	subjectID, err := s.Provider.CreateIdentity(ctx, identity.NewIdentity{
		Email:    email,
		Password: password,
	})
	if err != nil {
		if errors.Is(err, identity.ErrUnavailable) {
			return "", nil, fmt.Errorf("%w: identity provider unreachable", domain.ErrTransient)
		}
		return "", nil, err
	}

	cleanup := func(ctx context.Context) {
		// Best effort; a leaked identity is reconciled by housekeeping
		// on the provider side, not by us.
		_ = s.Provider.DeleteIdentity(ctx, subjectID)
	}
	return subjectID, cleanup, nil
}
