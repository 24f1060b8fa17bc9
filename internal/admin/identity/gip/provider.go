// Package gip implements the identity.Provider contract against Google
// Identity Platform (Firebase Authentication). ID tokens are RS256 JWTs
// verified against the securetoken JWKS; account administration goes
// through the Identity Toolkit REST API.
package gip

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/wardenhq/warden/internal/admin/identity"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultJWKSURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"
	defaultAPIBase = "https://identitytoolkit.googleapis.com/v1"

	defaultCallTimeout = 10 * time.Second
)

type Config struct {
	ProjectID string // token audience and issuer suffix
	APIKey    string // Identity Toolkit API key
	JWKSURL   string // override for tests
	APIBase   string // override for tests

	JWKSRefreshInterval time.Duration
	CallTimeout         time.Duration
}

type Provider struct {
	cfg    Config
	keys   keyfunc.Keyfunc
	client *http.Client
	logger *slog.Logger
}

func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Provider, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("gip: project id is required")
	}
	if cfg.JWKSURL == "" {
		cfg.JWKSURL = defaultJWKSURL
	}
	if cfg.APIBase == "" {
		cfg.APIBase = defaultAPIBase
	}
	if cfg.JWKSRefreshInterval <= 0 {
		cfg.JWKSRefreshInterval = time.Hour
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}

	client := &http.Client{Timeout: cfg.CallTimeout}

	// JWKS storage with background refresh. NoErrorReturnFirstHTTPReq
	// lets the service start even when the provider is briefly
	// unreachable.
	storage, err := jwkset.NewStorageFromHTTP(cfg.JWKSURL, jwkset.HTTPClientStorageOptions{
		Ctx:                       ctx,
		Client:                    client,
		NoErrorReturnFirstHTTPReq: true,
		RefreshInterval:           cfg.JWKSRefreshInterval,
		RefreshErrorHandler: func(_ context.Context, err error) {
			logger.Error("jwks refresh failed", "url", cfg.JWKSURL, "error", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gip: jwks storage: %w", err)
	}

	keys, err := keyfunc.New(keyfunc.Options{
		Ctx:     ctx,
		Storage: storage,
	})
	if err != nil {
		return nil, fmt.Errorf("gip: keyfunc: %w", err)
	}

	return &Provider{
		cfg:    cfg,
		keys:   keys,
		client: client,
		logger: logger,
	}, nil
}

type tokenClaims struct {
	jwt.RegisteredClaims

	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (p *Provider) VerifyToken(ctx context.Context, rawToken string) (identity.Identity, error) {
	claims := &tokenClaims{}

	token, err := jwt.ParseWithClaims(rawToken, claims, p.keys.KeyfuncCtx(ctx),
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer("https://securetoken.google.com/"+p.cfg.ProjectID),
		jwt.WithAudience(p.cfg.ProjectID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		// Keyfunc execution failures mean the JWKS could not be read,
		// not that the token is bad; callers map these to 503.
		if errors.Is(err, jwt.ErrTokenUnverifiable) {
			p.logger.Error("token verification unavailable", "error", err)
			return identity.Identity{}, fmt.Errorf("%w: %w", identity.ErrUnavailable, err)
		}
		return identity.Identity{}, identity.ErrTokenInvalid
	}
	if !token.Valid {
		return identity.Identity{}, identity.ErrTokenInvalid
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return identity.Identity{}, identity.ErrTokenInvalid
	}

	return identity.Identity{
		SubjectID:     sub,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		DisplayName:   claims.Name,
		PhotoURL:      claims.Picture,
	}, nil
}

// accountInfo is the Identity Toolkit wire shape for a user record.
type accountInfo struct {
	LocalID       string `json:"localId"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
	DisplayName   string `json:"displayName"`
	PhotoURL      string `json:"photoUrl"`
}

func (p *Provider) CreateIdentity(ctx context.Context, n identity.NewIdentity) (string, error) {
	var resp struct {
		LocalID string `json:"localId"`
	}
	err := p.call(ctx, "accounts:signUp", map[string]any{
		"email":             n.Email,
		"password":          n.Password,
		"displayName":       n.DisplayName,
		"photoUrl":          n.PhotoURL,
		"returnSecureToken": false,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.LocalID, nil
}

func (p *Provider) GetIdentity(ctx context.Context, subjectID string) (identity.Identity, error) {
	return p.lookup(ctx, map[string]any{"localId": []string{subjectID}})
}

func (p *Provider) GetIdentityByEmail(ctx context.Context, email string) (identity.Identity, error) {
	return p.lookup(ctx, map[string]any{"email": []string{email}})
}

func (p *Provider) lookup(ctx context.Context, query map[string]any) (identity.Identity, error) {
	var resp struct {
		Users []accountInfo `json:"users"`
	}
	if err := p.call(ctx, "accounts:lookup", query, &resp); err != nil {
		return identity.Identity{}, err
	}
	if len(resp.Users) == 0 {
		return identity.Identity{}, identity.ErrNotFound
	}

	u := resp.Users[0]
	return identity.Identity{
		SubjectID:     u.LocalID,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		DisplayName:   u.DisplayName,
		PhotoURL:      u.PhotoURL,
	}, nil
}

func (p *Provider) UpdateIdentity(ctx context.Context, subjectID, displayName, photoURL string) error {
	return p.call(ctx, "accounts:update", map[string]any{
		"localId":     subjectID,
		"displayName": displayName,
		"photoUrl":    photoURL,
	}, nil)
}

func (p *Provider) DeleteIdentity(ctx context.Context, subjectID string) error {
	return p.call(ctx, "accounts:delete", map[string]any{
		"localId": subjectID,
	}, nil)
}

// call posts a JSON body to an Identity Toolkit endpoint and decodes the
// response into out (when non-nil). Provider failures map onto the
// identity error taxonomy.
func (p *Provider) call(ctx context.Context, endpoint string, body map[string]any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s?key=%s", p.cfg.APIBase, endpoint, p.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return identity.ErrUnavailable
		}
		return fmt.Errorf("%w: %v", identity.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return identity.ErrNotFound
	case resp.StatusCode >= 500:
		return identity.ErrUnavailable
	case resp.StatusCode >= 400:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		p.logger.Warn("identity toolkit call rejected",
			"endpoint", endpoint,
			"status", resp.StatusCode,
			"body", string(msg),
		)
		return identity.ErrNotFound
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
