// Package api wraps the backend's RBAC endpoints with typed calls. The
// shapes mirror the server contract; all transport concerns (cookies,
// CSRF, error normalization) live in the transport package.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	apperrors "github.com/tancool/adminx-console/internal/errors"
	"github.com/tancool/adminx-console/internal/menu"
	"github.com/tancool/adminx-console/internal/session"
	"github.com/tancool/adminx-console/internal/transport"
	"github.com/tancool/adminx-console/pkg/logger"
)

const (
	menuTreePath        = "/api/rbac/menu-tree/"
	checkPermissionPath = "/api/rbac/auth/check-permission/"
	loginPath           = "/api/rbac/auth/login/"
	logoutPath          = "/api/rbac/auth/logout/"
	userInfoPath        = "/api/rbac/auth/user-info/"
	changePasswordPath  = "/api/rbac/auth/change-password/"
)

// Client is the typed API surface over the transport.
type Client struct {
	transport *transport.Client
	log       *logger.Logger
}

// NewClient creates an API client.
func NewClient(t *transport.Client, log *logger.Logger) *Client {
	if log == nil {
		log = logger.NewDefault("api")
	}
	return &Client{transport: t, log: log}
}

// FetchMenuTree returns the menu tree for the current session.
func (c *Client) FetchMenuTree(ctx context.Context) ([]menu.Node, error) {
	payload, err := c.transport.Get(ctx, menuTreePath, nil)
	if err != nil {
		return nil, err
	}
	var tree []menu.Node
	if err := json.Unmarshal(payload, &tree); err != nil {
		return nil, fmt.Errorf("decode menu tree: %w", err)
	}
	return tree, nil
}

// VerifySession fetches the current principal, validating the session
// cookie in passing. An unauthenticated session surfaces as an
// AuthRequired error.
func (c *Client) VerifySession(ctx context.Context) (session.Principal, error) {
	payload, err := c.transport.Get(ctx, userInfoPath, nil)
	if err != nil {
		var serverErr *transport.Error
		if errors.As(err, &serverErr) && (serverErr.Status == http.StatusUnauthorized || serverErr.Status == http.StatusForbidden) {
			return session.Principal{}, apperrors.AuthRequired(serverErr.Message)
		}
		return session.Principal{}, err
	}
	return c.principalFrom(payload, nil)
}

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates and returns the resulting principal.
func (c *Client) Login(ctx context.Context, creds Credentials) (session.Principal, error) {
	return c.principalFrom(c.transport.Post(ctx, loginPath, creds))
}

// Logout terminates the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.transport.Post(ctx, logoutPath, nil)
	return err
}

// CheckPermission asks the backend whether the current principal holds
// the permission code.
func (c *Client) CheckPermission(ctx context.Context, code string) (bool, error) {
	payload, err := c.transport.Post(ctx, checkPermissionPath, map[string]string{"code": code})
	if err != nil {
		return false, err
	}
	var result struct {
		HasPermission bool `json:"has_permission"`
	}
	if err := json.Unmarshal(payload, &result); err != nil {
		return false, fmt.Errorf("decode permission check: %w", err)
	}
	return result.HasPermission, nil
}

// ChangePassword updates the current principal's password.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	_, err := c.transport.Post(ctx, changePasswordPath, map[string]string{
		"old_password": oldPassword,
		"new_password": newPassword,
	})
	return err
}

func (c *Client) principalFrom(payload json.RawMessage, err error) (session.Principal, error) {
	if err != nil {
		return session.Principal{}, err
	}
	var p session.Principal
	if err := json.Unmarshal(payload, &p); err != nil {
		return session.Principal{}, fmt.Errorf("decode principal: %w", err)
	}
	return p, nil
}
