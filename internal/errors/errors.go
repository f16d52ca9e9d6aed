// Package errors defines the coded error taxonomy shared by the navigation
// engine: authentication, menu loading, route installation and permission
// failures each carry a stable code so callers can branch without string
// matching.
package errors

import (
	"errors"
	"fmt"
)

// Code identifies an error category.
type Code string

const (
	CodeAuthRequired          Code = "auth_required"
	CodeMenuLoadFailed        Code = "menu_load_failed"
	CodeRouteInstallFailed    Code = "route_install_failed"
	CodePermissionCheckFailed Code = "permission_check_failed"
	CodeUnmatchedRoute        Code = "unmatched_route"
)

// Error is a coded error, optionally wrapping a cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is/As chains.
func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by code, so sentinel comparisons like
// errors.Is(err, AuthRequired("")) work regardless of message.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// AuthRequired reports a missing or invalid session.
func AuthRequired(message string) *Error {
	if message == "" {
		message = "authentication required"
	}
	return &Error{Code: CodeAuthRequired, Message: message}
}

// MenuLoadFailed reports a failed or empty menu-tree fetch.
func MenuLoadFailed(message string, cause error) *Error {
	return &Error{Code: CodeMenuLoadFailed, Message: message, Err: cause}
}

// RouteInstallFailed reports a per-route installation error.
func RouteInstallFailed(message string, cause error) *Error {
	return &Error{Code: CodeRouteInstallFailed, Message: message, Err: cause}
}

// PermissionCheckFailed reports a transport error during a remote
// permission check. Callers treat it as a denial.
func PermissionCheckFailed(message string, cause error) *Error {
	return &Error{Code: CodePermissionCheckFailed, Message: message, Err: cause}
}

// UnmatchedRoute reports a navigation target that matched nothing.
func UnmatchedRoute(path string) *Error {
	return &Error{Code: CodeUnmatchedRoute, Message: fmt.Sprintf("no route matches %q", path)}
}

// CodeOf returns the code of err, or the empty code for uncoded errors.
func CodeOf(err error) Code {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ""
}
