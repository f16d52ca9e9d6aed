package route

import (
	"sync"

	apperrors "github.com/tancool/adminx-console/internal/errors"
	"github.com/tancool/adminx-console/pkg/logger"
)

// Manager owns the dynamic portion of the route table. It tracks the set
// of routes it installed so a later installation removes exactly its own
// prior output, keeps the root redirect pointing at the first route, and
// always reinstalls the catch-all last. Install is idempotent: repeated
// calls with the same compiled list leave the reachable-path set
// unchanged.
type Manager struct {
	mu      sync.Mutex
	table   *Table
	log     *logger.Logger
	tracked []Definition
}

// NewManager creates a manager for the table.
func NewManager(table *Table, log *logger.Logger) *Manager {
	if log == nil {
		log = logger.NewDefault("route-manager")
	}
	return &Manager{table: table, log: log}
}

// Install replaces the previously installed dynamic routes with the
// compiled set. A failure to install one route is logged and skipped;
// partial installation is an accepted degraded state, with the catch-all
// still guaranteeing a defined outcome for affected paths.
func (m *Manager) Install(routes []Definition) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Remove the prior output set: by name when the route has one,
	// falling back to path. Missing routes are a no-op.
	for _, def := range m.tracked {
		ref := def.Name
		if ref == "" {
			ref = def.Path
		}
		m.table.Remove(ref)
	}
	m.table.Remove(CatchAllName)

	m.tracked = append([]Definition(nil), routes...)

	for _, def := range routes {
		if err := m.table.Add(def); err != nil {
			installErr := apperrors.RouteInstallFailed(def.Path, err)
			m.log.WithError(installErr).WithField("menu_id", def.Meta.MenuID).Error("route installation failed; skipping")
		}
	}

	// Refresh the root redirect from the first new route. It is removed
	// and reinstalled every call so it never duplicates, and it is never
	// part of the tracked set.
	if len(routes) > 0 {
		first := routes[0]
		target := first.Redirect
		if target.IsZero() {
			target = Redirect{Path: first.Path}
		}
		m.table.Remove(RootPath)
		if err := m.table.Add(Definition{Path: RootPath, Redirect: target, Hidden: true}); err != nil {
			m.log.WithError(err).Error("root redirect installation failed")
		}
	}

	// The catch-all goes in last so it stays the lowest-priority route.
	if err := m.table.Add(CatchAllDefinition()); err != nil {
		m.log.WithError(err).Error("catch-all installation failed")
	}
}

// Installed returns a copy of the currently tracked dynamic route set.
func (m *Manager) Installed() []Definition {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Definition, 0, len(m.tracked))
	for _, def := range m.tracked {
		out = append(out, cloneDefinition(def))
	}
	return out
}
