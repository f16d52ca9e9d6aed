// Package app wires the navigation engine together: transport, API
// surface, session state, menu repository, route table and guard.
package app

import (
	"context"

	"github.com/tancool/adminx-console/internal/api"
	"github.com/tancool/adminx-console/internal/authz"
	"github.com/tancool/adminx-console/internal/config"
	apperrors "github.com/tancool/adminx-console/internal/errors"
	"github.com/tancool/adminx-console/internal/guard"
	"github.com/tancool/adminx-console/internal/menu"
	"github.com/tancool/adminx-console/internal/route"
	"github.com/tancool/adminx-console/internal/session"
	"github.com/tancool/adminx-console/internal/transport"
	"github.com/tancool/adminx-console/pkg/logger"
)

// Application ties the engine's collaborators together. The route table
// is mutated only through the manager, and the manager only from within
// the guard's sequential navigation processing.
type Application struct {
	log *logger.Logger

	API     *api.Client
	Session *session.State
	Menus   *menu.Repository
	Views   *route.Registry
	Table   *route.Table
	Manager *route.Manager
	Guard   *guard.Guard
	Authz   *authz.Oracle
}

// New builds a fully initialised application.
func New(cfg *config.Config, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	client, err := transport.New(transport.Config{
		BaseURL:    cfg.Server.BaseURL,
		Timeout:    cfg.Server.Timeout,
		CSRFCookie: cfg.Server.CSRFCookie,
		Logger:     logger.NewDefault("transport"),
	})
	if err != nil {
		return nil, err
	}

	apiClient := api.NewClient(client, logger.NewDefault("api"))
	sessionState := session.NewState()
	menus := menu.NewRepository(apiClient, logger.NewDefault("menu"))
	views := route.NewRegistry(logger.NewDefault("components"))
	table := route.NewTable(views, logger.NewDefault("route-table"))
	manager := route.NewManager(table, logger.NewDefault("route-manager"))
	navGuard := guard.New(sessionState, apiClient, menus, manager, table, logger.NewDefault("guard"))

	return &Application{
		log:     log,
		API:     apiClient,
		Session: sessionState,
		Menus:   menus,
		Views:   views,
		Table:   table,
		Manager: manager,
		Guard:   navGuard,
		Authz:   authz.NewOracle(sessionState, apiClient, logger.NewDefault("authz")),
	}, nil
}

// NavigationResult combines the guard decision with the route table's
// resolution of the final target.
type NavigationResult struct {
	Decision guard.Decision `json:"decision"`
	Match    *route.Match   `json:"match,omitempty"`
}

// Navigate processes one navigation intent end to end: the guard decides,
// then the decided target is resolved through the route table (following
// redirects and the catch-all) so the caller always lands on a defined
// outcome.
func (a *Application) Navigate(ctx context.Context, target string) NavigationResult {
	decision := a.Guard.BeforeEach(ctx, target)
	result := NavigationResult{Decision: decision}
	if match, ok := a.Table.Resolve(decision.Target); ok {
		result.Match = &match
	} else {
		a.log.WithError(apperrors.UnmatchedRoute(decision.Target)).Warn("navigation target has no defined outcome")
	}
	return result
}

// Login authenticates and populates the session. A failed login leaves
// the session reset to anonymous defaults.
func (a *Application) Login(ctx context.Context, username, password string) error {
	principal, err := a.API.Login(ctx, api.Credentials{Username: username, Password: password})
	if err != nil {
		a.Session.Reset()
		return err
	}
	a.Session.Populate(principal)
	return nil
}

// Logout terminates the server-side session (best effort), resets the
// session state, clears the cached menu and returns the guard to
// anonymous so the next navigation rebuilds the route table.
func (a *Application) Logout(ctx context.Context) {
	if err := a.API.Logout(ctx); err != nil {
		a.log.WithError(err).Warn("server-side logout failed; clearing local state anyway")
	}
	a.Session.Reset()
	a.Menus.Clear()
	a.Guard.Reset()
}
