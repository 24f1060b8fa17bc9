// Package adminsdk provides the wire types of the warden admin API and
// a small Go client for it. The server's HTTP handlers and its
// consumers share these types so the two cannot drift.
package adminsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a client for the warden admin service. Token is a raw
// identity-provider ID token; unauthenticated endpoints work with an
// empty one.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// WithToken returns a copy of the client authenticated with the given
// ID token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.Token = token
	return &cp
}

func (c *Client) do(ctx context.Context, method, path string, body, target any, expectedStatus int) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp, respBody)
	}
	if target == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// ============================================================================
// Users
// ============================================================================

// Signup registers the token's identity as a local user.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (UserInfo, error) {
	var out UserInfo
	err := c.do(ctx, http.MethodPost, "/v1/users/signup", req, &out, http.StatusCreated)
	return out, err
}

// CreateUser provisions a user on behalf of an administrator.
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (UserInfo, error) {
	var out UserInfo
	err := c.do(ctx, http.MethodPost, "/v1/users", req, &out, http.StatusCreated)
	return out, err
}

// ListUsers returns the users visible to the caller.
func (c *Client) ListUsers(ctx context.Context) (ListUsersResponse, error) {
	var out ListUsersResponse
	err := c.do(ctx, http.MethodGet, "/v1/users", nil, &out, http.StatusOK)
	return out, err
}

// GetUser returns a single user by id.
func (c *Client) GetUser(ctx context.Context, id string) (UserInfo, error) {
	var out UserInfo
	err := c.do(ctx, http.MethodGet, "/v1/users/"+url.PathEscape(id), nil, &out, http.StatusOK)
	return out, err
}

// UpdateUser patches a user's profile and optionally its role.
func (c *Client) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (UserInfo, error) {
	var out UserInfo
	err := c.do(ctx, http.MethodPut, "/v1/users/"+url.PathEscape(id), req, &out, http.StatusOK)
	return out, err
}

// DeleteUser removes a user and its provider identity.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/users/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}

// ============================================================================
// Lockout
// ============================================================================

// GetLockStatus returns the public lock-state view for an email.
func (c *Client) GetLockStatus(ctx context.Context, email string) (LockStatusResponse, error) {
	var out LockStatusResponse
	err := c.do(ctx, http.MethodGet, "/v1/users/email/"+url.PathEscape(email), nil, &out, http.StatusOK)
	return out, err
}

// CheckLogin asks whether a login attempt for the email may proceed.
func (c *Client) CheckLogin(ctx context.Context, email string) (LockDecisionResponse, error) {
	var out LockDecisionResponse
	err := c.do(ctx, http.MethodPost, "/v1/login/check", LoginCheckRequest{Email: email}, &out, http.StatusOK)
	return out, err
}

// RecordFailedAttempt reports a failed credential verification.
func (c *Client) RecordFailedAttempt(ctx context.Context, email string) (LockDecisionResponse, error) {
	var out LockDecisionResponse
	err := c.do(ctx, http.MethodPut, "/v1/users/"+url.PathEscape(email)+"/failedAttempt", nil, &out, http.StatusOK)
	return out, err
}

// ResetAttempts clears a user's failure counter.
func (c *Client) ResetAttempts(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, "/v1/users/"+url.PathEscape(id)+"/resetAttempts", nil, nil, http.StatusNoContent)
}

// UnlockUser performs an administrative unlock.
func (c *Client) UnlockUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, "/v1/users/"+url.PathEscape(id)+"/unlock", nil, nil, http.StatusNoContent)
}

// LockUser performs an administrative lock.
func (c *Client) LockUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, "/v1/users/"+url.PathEscape(id)+"/lock", nil, nil, http.StatusNoContent)
}

// ============================================================================
// Roles
// ============================================================================

// ListRoles returns every role, most privileged first.
func (c *Client) ListRoles(ctx context.Context) (ListRolesResponse, error) {
	var out ListRolesResponse
	err := c.do(ctx, http.MethodGet, "/v1/roles", nil, &out, http.StatusOK)
	return out, err
}

// CreateRole inserts a new role into the hierarchy.
func (c *Client) CreateRole(ctx context.Context, req CreateRoleRequest) (RoleInfo, error) {
	var out RoleInfo
	err := c.do(ctx, http.MethodPost, "/v1/roles", req, &out, http.StatusCreated)
	return out, err
}

// UpdateRole patches a role.
func (c *Client) UpdateRole(ctx context.Context, id string, req UpdateRoleRequest) (RoleInfo, error) {
	var out RoleInfo
	err := c.do(ctx, http.MethodPut, "/v1/roles/"+url.PathEscape(id), req, &out, http.StatusOK)
	return out, err
}

// DeleteRole removes an unassigned role.
func (c *Client) DeleteRole(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/roles/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}

// ============================================================================
// System
// ============================================================================

// Bootstrap performs the one-time first-run seed.
func (c *Client) Bootstrap(ctx context.Context, token string, req BootstrapRequest) (BootstrapResponse, error) {
	buf, err := json.Marshal(req)
	if err != nil {
		return BootstrapResponse{}, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/bootstrap", bytes.NewReader(buf))
	if err != nil {
		return BootstrapResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Bootstrap-Token", token)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return BootstrapResponse{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return BootstrapResponse{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusCreated {
		return BootstrapResponse{}, parseErrorResponse(resp, respBody)
	}

	var out BootstrapResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return BootstrapResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return out, nil
}

// Readyz reports whether the service and its dependencies are ready.
func (c *Client) Readyz(ctx context.Context) (HealthResponse, error) {
	var out HealthResponse
	err := c.do(ctx, http.MethodGet, "/readyz", nil, &out, http.StatusOK)
	return out, err
}
