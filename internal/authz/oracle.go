// Package authz answers capability questions for the current principal.
// The oracle prefers the locally cached permission set and falls back to
// an authoritative remote check; remote failures are treated as denials.
package authz

import (
	"context"

	apperrors "github.com/tancool/adminx-console/internal/errors"
	"github.com/tancool/adminx-console/internal/session"
	"github.com/tancool/adminx-console/pkg/logger"
)

// Checker performs the remote authoritative permission check.
type Checker interface {
	CheckPermission(ctx context.Context, code string) (bool, error)
}

// Oracle resolves permission codes against session state and the backend.
type Oracle struct {
	state  *session.State
	remote Checker
	log    *logger.Logger
}

// NewOracle creates an oracle over the session state and remote checker.
func NewOracle(state *session.State, remote Checker, log *logger.Logger) *Oracle {
	if log == nil {
		log = logger.NewDefault("authz")
	}
	return &Oracle{state: state, remote: remote, log: log}
}

// HasPermission reports whether the current principal holds the code.
// Superusers hold every permission. A cache miss falls back to the remote
// check; any transport failure is fail-closed and logged.
func (o *Oracle) HasPermission(ctx context.Context, code string) bool {
	if o.state.Superuser() {
		return true
	}
	if o.state.HasPermission(code) {
		return true
	}
	granted, err := o.remote.CheckPermission(ctx, code)
	if err != nil {
		checkErr := apperrors.PermissionCheckFailed(code, err)
		o.log.WithError(checkErr).Warn("remote permission check failed; denying")
		return false
	}
	return granted
}

// HasPermissionSync consults only cached state, never performing I/O.
func (o *Oracle) HasPermissionSync(code string) bool {
	if o.state.Superuser() {
		return true
	}
	return o.state.HasPermission(code)
}

// HasRole reports whether the current principal carries the role code.
// Superusers match every role.
func (o *Oracle) HasRole(code string) bool {
	if o.state.Superuser() {
		return true
	}
	return o.state.HasRole(code)
}
