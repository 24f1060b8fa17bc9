package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wardenhq/warden/internal/admin/identity"
	"github.com/wardenhq/warden/internal/admin/identity/dev"
	"github.com/wardenhq/warden/internal/admin/service"
	"github.com/wardenhq/warden/internal/admin/store/drivers/sqlite"
	"github.com/wardenhq/warden/pkg/adminsdk"
)

type routerFixture struct {
	router   *Router
	provider *dev.Provider
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	provider := dev.New("test-secret")
	logger := slog.New(slog.DiscardHandler)

	sessions := &service.SessionService{Store: st, Provider: provider}
	roles := &service.RolesService{Store: st}
	users := &service.UserService{
		Store:           st,
		Sessions:        sessions,
		Roles:           roles,
		DefaultRoleName: "user",
	}
	lockout := &service.LockoutService{Store: st, Policy: service.DefaultLockoutPolicy()}
	bootstrap := &service.BootstrapService{
		Store:           st,
		Provider:        provider,
		Token:           "seed-token",
		DefaultRoleName: "user",
	}

	r := NewRouter("test", st, logger)
	r.SessionService = sessions
	r.UserService = users
	r.RolesService = roles
	r.LockoutService = lockout
	r.BootstrapService = bootstrap
	r.ApplyRoutes()

	return &routerFixture{router: r, provider: provider}
}

func (f *routerFixture) do(t *testing.T, method, path, token string, body, out any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if out != nil && rec.Code < 300 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

// bootstrapRoot seeds the deployment over HTTP and returns a signed-in
// root token.
func (f *routerFixture) bootstrapRoot(t *testing.T) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/v1/bootstrap",
		bytes.NewReader(mustJSON(t, adminsdk.BootstrapRequest{
			AdminEmail:    "root@example.com",
			AdminPassword: "hunter2hunter2",
		})))
	req.Header.Set("X-Bootstrap-Token", "seed-token")

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	token, err := f.provider.SignIn(context.Background(), "root@example.com", "hunter2hunter2")
	require.NoError(t, err)
	return token
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	buf, err := json.Marshal(v)
	require.NoError(t, err)
	return buf
}

func TestRouterBootstrapAndAuth(t *testing.T) {
	f := newRouterFixture(t)

	t.Run("bootstrap refuses a bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/bootstrap",
			bytes.NewReader(mustJSON(t, adminsdk.BootstrapRequest{AdminEmail: "root@example.com"})))
		req.Header.Set("X-Bootstrap-Token", "wrong")

		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	token := f.bootstrapRoot(t)

	t.Run("bootstrap refuses a second run", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/bootstrap",
			bytes.NewReader(mustJSON(t, adminsdk.BootstrapRequest{AdminEmail: "other@example.com"})))
		req.Header.Set("X-Bootstrap-Token", "seed-token")

		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing bearer token is unauthenticated", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/v1/users", "", nil, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		var envelope adminsdk.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		require.Equal(t, "unauthenticated", envelope.Error)
	})

	t.Run("the seeded roles are listed most privileged first", func(t *testing.T) {
		var resp adminsdk.ListRolesResponse
		rec := f.do(t, http.MethodGet, "/v1/roles", token, nil, &resp)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, resp.Roles, 3)
		require.Equal(t, "superadmin", resp.Roles[0].Name)
		require.Equal(t, 0, resp.Roles[0].Level)
	})
}

func TestRouterUserLifecycle(t *testing.T) {
	f := newRouterFixture(t)
	token := f.bootstrapRoot(t)

	var created adminsdk.UserInfo
	rec := f.do(t, http.MethodPost, "/v1/users", token, adminsdk.CreateUserRequest{
		Email:     "dave@example.com",
		FirstName: "Dave",
		Role:      "user",
	}, &created)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Equal(t, "dave@example.com", created.Email)
	require.Equal(t, "user", created.Role.Name)
	require.Equal(t, "active", created.LockState)

	t.Run("shows up in the listing", func(t *testing.T) {
		var resp adminsdk.ListUsersResponse
		rec := f.do(t, http.MethodGet, "/v1/users", token, nil, &resp)
		require.Equal(t, http.StatusOK, rec.Code)

		emails := make([]string, 0, len(resp.Users))
		for _, u := range resp.Users {
			emails = append(emails, u.Email)
		}
		require.Contains(t, emails, "dave@example.com")
		require.Contains(t, emails, "root@example.com")
	})

	t.Run("profile update", func(t *testing.T) {
		first := "David"
		var updated adminsdk.UserInfo
		rec := f.do(t, http.MethodPut, "/v1/users/"+created.ID, token,
			adminsdk.UpdateUserRequest{FirstName: &first}, &updated)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.Equal(t, "David", updated.FirstName)
	})

	t.Run("delete then read back as absent", func(t *testing.T) {
		rec := f.do(t, http.MethodDelete, "/v1/users/"+created.ID, token, nil, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = f.do(t, http.MethodGet, "/v1/users/"+created.ID, token, nil, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRouterLockoutFlow(t *testing.T) {
	f := newRouterFixture(t)
	token := f.bootstrapRoot(t)

	var created adminsdk.UserInfo
	rec := f.do(t, http.MethodPost, "/v1/users", token, adminsdk.CreateUserRequest{
		Email: "dave@example.com",
		Role:  "user",
	}, &created)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	t.Run("two failures lock the account", func(t *testing.T) {
		var decision adminsdk.LockDecisionResponse
		rec := f.do(t, http.MethodPut, "/v1/users/dave@example.com/failedAttempt", "", nil, &decision)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "active", decision.LockState)
		require.True(t, decision.Allowed)

		rec = f.do(t, http.MethodPut, "/v1/users/dave@example.com/failedAttempt", "", nil, &decision)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "locked", decision.LockState)
		require.False(t, decision.Allowed)
		require.NotNil(t, decision.RetryAt)
	})

	t.Run("the login gate reports the lock", func(t *testing.T) {
		var decision adminsdk.LockDecisionResponse
		rec := f.do(t, http.MethodPost, "/v1/login/check", "",
			adminsdk.LoginCheckRequest{Email: "dave@example.com"}, &decision)
		require.Equal(t, http.StatusOK, rec.Code)
		require.False(t, decision.Allowed)
	})

	t.Run("the public status endpoint agrees", func(t *testing.T) {
		var status adminsdk.LockStatusResponse
		rec := f.do(t, http.MethodGet, "/v1/users/email/dave@example.com", "", nil, &status)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "locked", status.LockState)
	})

	t.Run("an admin unlock restores access", func(t *testing.T) {
		rec := f.do(t, http.MethodPut, "/v1/users/"+created.ID+"/unlock", token, nil, nil)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		var status adminsdk.LockStatusResponse
		rec = f.do(t, http.MethodGet, "/v1/users/email/dave@example.com", "", nil, &status)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "active", status.LockState)
		require.Zero(t, status.FailedAttempts)
	})
}

func TestRouterSelfResetAttempts(t *testing.T) {
	ctx := context.Background()
	f := newRouterFixture(t)
	rootToken := f.bootstrapRoot(t)

	// Carol registers herself through the public signup flow.
	_, err := f.provider.CreateIdentity(ctx, identity.NewIdentity{
		Email:    "carol@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	carolToken, err := f.provider.SignIn(ctx, "carol@example.com", "hunter2hunter2")
	require.NoError(t, err)

	var carol adminsdk.UserInfo
	rec := f.do(t, http.MethodPost, "/v1/users/signup", carolToken,
		adminsdk.SignupRequest{FirstName: "Carol"}, &carol)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPut, "/v1/users/carol@example.com/failedAttempt", "", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("a user clears their own counter after logging in", func(t *testing.T) {
		rec := f.do(t, http.MethodPut, "/v1/users/"+carol.ID+"/resetAttempts", carolToken, nil, nil)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		var status adminsdk.LockStatusResponse
		rec = f.do(t, http.MethodGet, "/v1/users/email/carol@example.com", "", nil, &status)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Zero(t, status.FailedAttempts)
	})

	t.Run("resetting someone else still needs manageUsers", func(t *testing.T) {
		var dan adminsdk.UserInfo
		rec := f.do(t, http.MethodPost, "/v1/users", rootToken, adminsdk.CreateUserRequest{
			Email: "dan@example.com",
			Role:  "user",
		}, &dan)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		rec = f.do(t, http.MethodPut, "/v1/users/"+dan.ID+"/resetAttempts", carolToken, nil, nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestRouterHealth(t *testing.T) {
	f := newRouterFixture(t)

	var health adminsdk.HealthResponse
	rec := f.do(t, http.MethodGet, "/livez", "", nil, &health)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", health.Status)
	require.Equal(t, "test", health.Version)

	rec = f.do(t, http.MethodGet, "/readyz", "", nil, &health)
	require.Equal(t, http.StatusOK, rec.Code)
}
