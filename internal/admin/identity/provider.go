// Package identity defines the narrow contract the admin service has
// with its external identity provider. Credentials, password resets and
// MFA all live on the provider side; the service only verifies ID
// tokens and administers accounts through this interface.
package identity

import (
	"context"
	"errors"
)

var (
	// ErrTokenInvalid reports an ID token that failed verification.
	ErrTokenInvalid = errors.New("identity: token invalid")

	// ErrNotFound reports a subject id or email with no provider account.
	ErrNotFound = errors.New("identity: not found")

	// ErrUnavailable reports a provider that timed out or is down.
	// Callers may retry.
	ErrUnavailable = errors.New("identity: provider unavailable")
)

// Identity is the provider's view of an account.
type Identity struct {
	SubjectID     string
	Email         string
	EmailVerified bool
	DisplayName   string
	PhotoURL      string
}

// NewIdentity describes an account to provision server-side.
type NewIdentity struct {
	Email       string
	Password    string
	DisplayName string
	PhotoURL    string
}

type Provider interface {
	// VerifyToken validates a raw ID token and returns the identity it
	// asserts. Fails with ErrTokenInvalid on any verification failure.
	VerifyToken(ctx context.Context, rawToken string) (Identity, error)

	// CreateIdentity provisions a provider-side account and returns its
	// subject id.
	CreateIdentity(ctx context.Context, n NewIdentity) (string, error)

	// GetIdentity fetches an account by subject id.
	GetIdentity(ctx context.Context, subjectID string) (Identity, error)

	// GetIdentityByEmail fetches an account by email.
	GetIdentityByEmail(ctx context.Context, email string) (Identity, error)

	// UpdateIdentity syncs display name and photo after a profile edit.
	UpdateIdentity(ctx context.Context, subjectID, displayName, photoURL string) error

	// DeleteIdentity removes the provider-side account.
	DeleteIdentity(ctx context.Context, subjectID string) error
}
