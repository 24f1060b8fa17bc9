// Package dev is an embedded identity provider for local development
// and tests. Accounts live in memory with bcrypt password hashes and ID
// tokens are HS256 JWTs signed with a shared dev secret. It must never
// back a production deployment.
package dev

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wardenhq/warden/internal/admin/identity"
	"github.com/wardenhq/warden/pkg/idx"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const issuer = "warden-dev"

type account struct {
	identity.Identity
	passwordHash []byte
}

type Provider struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	byID    map[string]*account
	byEmail map[string]*account
}

func New(secret string) *Provider {
	return &Provider{
		secret:  []byte(secret),
		ttl:     time.Hour,
		now:     time.Now,
		byID:    make(map[string]*account),
		byEmail: make(map[string]*account),
	}
}

func (p *Provider) CreateIdentity(ctx context.Context, n identity.NewIdentity) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(n.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.byEmail[n.Email]; ok {
		return "", fmt.Errorf("dev: account exists for %s", n.Email)
	}

	acct := &account{
		Identity: identity.Identity{
			SubjectID:   idx.New().String(),
			Email:       n.Email,
			DisplayName: n.DisplayName,
			PhotoURL:    n.PhotoURL,
		},
		passwordHash: hash,
	}
	p.byID[acct.SubjectID] = acct
	p.byEmail[acct.Email] = acct
	return acct.SubjectID, nil
}

// SignIn verifies an email/password pair and mints an ID token, mimicking
// the hosted provider's sign-in endpoint for the SPA login flow.
func (p *Provider) SignIn(ctx context.Context, email, password string) (string, error) {
	p.mu.Lock()
	acct, ok := p.byEmail[email]
	p.mu.Unlock()
	if !ok {
		return "", identity.ErrNotFound
	}

	if err := bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(password)); err != nil {
		return "", identity.ErrTokenInvalid
	}

	now := p.now()
	claims := jwt.MapClaims{
		"iss":            issuer,
		"aud":            issuer,
		"sub":            acct.SubjectID,
		"email":          acct.Email,
		"email_verified": acct.EmailVerified,
		"name":           acct.DisplayName,
		"iat":            now.Unix(),
		"exp":            now.Add(p.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

func (p *Provider) VerifyToken(ctx context.Context, rawToken string) (identity.Identity, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(rawToken, claims,
		func(*jwt.Token) (any, error) { return p.secret, nil },
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(issuer),
		jwt.WithTimeFunc(func() time.Time { return p.now() }),
	)
	if err != nil || !token.Valid {
		return identity.Identity{}, identity.ErrTokenInvalid
	}

	sub, _ := claims.GetSubject()

	p.mu.Lock()
	defer p.mu.Unlock()
	acct, ok := p.byID[sub]
	if !ok {
		return identity.Identity{}, identity.ErrTokenInvalid
	}
	return acct.Identity, nil
}

func (p *Provider) GetIdentity(ctx context.Context, subjectID string) (identity.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	acct, ok := p.byID[subjectID]
	if !ok {
		return identity.Identity{}, identity.ErrNotFound
	}
	return acct.Identity, nil
}

func (p *Provider) GetIdentityByEmail(ctx context.Context, email string) (identity.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	acct, ok := p.byEmail[email]
	if !ok {
		return identity.Identity{}, identity.ErrNotFound
	}
	return acct.Identity, nil
}

func (p *Provider) UpdateIdentity(ctx context.Context, subjectID, displayName, photoURL string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	acct, ok := p.byID[subjectID]
	if !ok {
		return identity.ErrNotFound
	}
	acct.DisplayName = displayName
	acct.PhotoURL = photoURL
	return nil
}

func (p *Provider) DeleteIdentity(ctx context.Context, subjectID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	acct, ok := p.byID[subjectID]
	if !ok {
		return identity.ErrNotFound
	}
	delete(p.byID, subjectID)
	delete(p.byEmail, acct.Email)
	return nil
}
