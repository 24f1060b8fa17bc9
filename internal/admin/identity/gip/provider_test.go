package gip

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"log/slog"
	"testing"
	"time"

	"github.com/wardenhq/warden/internal/admin/identity"

	"github.com/MicahParks/jwkset"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// stubKeys satisfies keyfunc.Keyfunc with a fixed key or error, so
// VerifyToken can be exercised without a JWKS endpoint.
type stubKeys struct {
	key any
	err error
}

func (s stubKeys) Keyfunc(*jwt.Token) (any, error) { return s.key, s.err }

func (s stubKeys) KeyfuncCtx(context.Context) jwt.Keyfunc {
	return func(*jwt.Token) (any, error) { return s.key, s.err }
}

func (s stubKeys) Storage() jwkset.Storage { return nil }

func (s stubKeys) VerificationKeySet(context.Context) (jwt.VerificationKeySet, error) {
	return jwt.VerificationKeySet{}, s.err
}

func newTestProvider(t *testing.T, keys stubKeys) *Provider {
	t.Helper()

	return &Provider{
		cfg:    Config{ProjectID: "demo"},
		keys:   keys,
		logger: slog.New(slog.DiscardHandler),
	}
}

func signTestToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()

	raw, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return raw
}

func testClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"iss":   "https://securetoken.google.com/demo",
		"aud":   "demo",
		"sub":   "uid-1",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"email": "alice@example.com",
		"name":  "Alice",
	}
}

func TestVerifyTokenRoundTrip(t *testing.T) {
	ctx := context.Background()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	p := newTestProvider(t, stubKeys{key: &key.PublicKey})

	id, err := p.VerifyToken(ctx, signTestToken(t, key, testClaims()))
	require.NoError(t, err)
	require.Equal(t, "uid-1", id.SubjectID)
	require.Equal(t, "alice@example.com", id.Email)
	require.Equal(t, "Alice", id.DisplayName)
}

func TestVerifyTokenRejectsBadTokens(t *testing.T) {
	ctx := context.Background()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	p := newTestProvider(t, stubKeys{key: &key.PublicKey})

	t.Run("garbage", func(t *testing.T) {
		_, err := p.VerifyToken(ctx, "not-a-token")
		require.ErrorIs(t, err, identity.ErrTokenInvalid)
	})

	t.Run("wrong signing method", func(t *testing.T) {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, testClaims()).
			SignedString([]byte("shared-secret"))
		require.NoError(t, err)

		_, err = p.VerifyToken(ctx, raw)
		require.ErrorIs(t, err, identity.ErrTokenInvalid)
	})

	t.Run("wrong audience", func(t *testing.T) {
		claims := testClaims()
		claims["aud"] = "someone-else"

		_, err := p.VerifyToken(ctx, signTestToken(t, key, claims))
		require.ErrorIs(t, err, identity.ErrTokenInvalid)
	})

	t.Run("expired", func(t *testing.T) {
		claims := testClaims()
		claims["exp"] = time.Now().Add(-time.Hour).Unix()

		_, err := p.VerifyToken(ctx, signTestToken(t, key, claims))
		require.ErrorIs(t, err, identity.ErrTokenInvalid)
	})

	t.Run("missing subject", func(t *testing.T) {
		claims := testClaims()
		delete(claims, "sub")

		_, err := p.VerifyToken(ctx, signTestToken(t, key, claims))
		require.ErrorIs(t, err, identity.ErrTokenInvalid)
	})
}

func TestVerifyTokenJWKSFailureIsUnavailable(t *testing.T) {
	ctx := context.Background()

	p := newTestProvider(t, stubKeys{err: jwkset.ErrKeyNotFound})

	// A structurally valid RS256 token whose key cannot be read is an
	// outage, not a bad credential.
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"RS256","typ":"JWT"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"aud":"demo"}`))
	raw := header + "." + payload + "." + base64.RawURLEncoding.EncodeToString([]byte("sig"))

	_, err := p.VerifyToken(ctx, raw)
	require.ErrorIs(t, err, identity.ErrUnavailable)
	require.NotErrorIs(t, err, identity.ErrTokenInvalid)
}
