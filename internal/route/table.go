package route

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tancool/adminx-console/pkg/logger"
)

const (
	// RootPath is the bare root target, redirected to the first
	// installed route once the menu is loaded.
	RootPath = "/"
	// LoginPath is the login surface, always navigable.
	LoginPath = "/login"
	// NotFoundPath is the target the catch-all resolves to.
	NotFoundPath = "/404"
	// CatchAllName names the single lowest-priority fallback route.
	CatchAllName = "catchAll"

	catchAllPath    = "/:catchAll(.*)"
	maxRedirectHops = 8
)

// Table is the live route registry: the only routing state in the
// process. It is mutated exclusively through Add and Remove, which the
// Manager owns; everything else gets read-only views.
type Table struct {
	mu       sync.Mutex
	log      *logger.Logger
	registry *Registry
	entries  []Definition
	views    map[string]View // lazily resolved leaf views, keyed by full path
}

// NewTable creates a table seeded with the constant routes (login,
// not-found, root placeholder) and the catch-all. Constant routes are
// never removed across install cycles; the root redirect and catch-all
// are refreshed by the Manager on every installation.
func NewTable(registry *Registry, log *logger.Logger) *Table {
	if log == nil {
		log = logger.NewDefault("route-table")
	}
	t := &Table{log: log, registry: registry}
	t.entries = []Definition{
		{Path: NotFoundPath, Name: "not_found", Component: "404", Hidden: true},
		{Path: LoginPath, Name: "login", Component: "login", Hidden: true},
		// Placeholder until the first menu load overrides it.
		{Path: RootPath, Redirect: Redirect{Path: "/system"}, Hidden: true},
		CatchAllDefinition(),
	}
	return t
}

// CatchAllDefinition is the fallback route matching any otherwise
// unmatched path, redirecting to the not-found target.
func CatchAllDefinition() Definition {
	return Definition{
		Path:     catchAllPath,
		Name:     CatchAllName,
		Redirect: Redirect{Path: NotFoundPath},
		Hidden:   true,
	}
}

// Add appends a route to the table. A duplicate name replaces the
// previously registered route with that name (last-installed wins) with a
// logged warning. Definitions with empty paths are rejected.
func (t *Table) Add(def Definition) error {
	if err := validateDefinition(def); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, name := range collectNames(def) {
		existing, _, ok := t.findByNameLocked(name)
		if !ok {
			continue
		}
		t.log.WithFields(map[string]interface{}{
			"name":        name,
			"old_menu_id": existing.Meta.MenuID,
			"new_menu_id": def.Meta.MenuID,
		}).Warn("duplicate route name; previous route replaced")
		t.removeNamedLocked(name)
	}
	t.entries = append(t.entries, def)
	t.views = nil
	return nil
}

// Remove removes a route by name, falling back to top-level path.
// Removing a route that does not exist is a no-op returning false.
func (t *Table) Remove(ref string) bool {
	if ref == "" {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.removeNamedLocked(ref) {
		t.views = nil
		return true
	}
	for i, def := range t.entries {
		if def.Path == ref {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			t.views = nil
			return true
		}
	}
	return false
}

// Routes returns a deep-copied snapshot of the table, in priority order.
func (t *Table) Routes() []Definition {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Definition, 0, len(t.entries))
	for _, def := range t.entries {
		out = append(out, cloneDefinition(def))
	}
	return out
}

// Matches reports whether the target resolves to an installed route other
// than the catch-all.
func (t *Table) Matches(target string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _, ok := t.lookupLocked(NormalizePath(target))
	return ok
}

// Match is the outcome of resolving a navigation target through the
// table: the final route after following redirects, its full path, and
// the rendered view payload for leaf routes.
type Match struct {
	Def        Definition `json:"route"`
	FullPath   string     `json:"full_path"`
	Redirected bool       `json:"redirected"`
	NotFound   bool       `json:"not_found"`
	View       any        `json:"view,omitempty"`
}

// Resolve matches a target against the table, falling back to the
// catch-all, and follows redirects to the final route. The boolean is
// false only when nothing matches and no catch-all is installed.
func (t *Table) Resolve(target string) (Match, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var match Match
	def, full, ok := t.lookupLocked(NormalizePath(target))
	if !ok {
		if !t.hasCatchAllLocked() {
			return Match{}, false
		}
		match.NotFound = true
		if def, full, ok = t.lookupLocked(NotFoundPath); !ok {
			return Match{}, false
		}
	}

	for hops := 0; hops < maxRedirectHops && !def.Redirect.IsZero(); hops++ {
		match.Redirected = true
		var (
			next     Definition
			nextFull string
			found    bool
		)
		if def.Redirect.Name != "" {
			next, nextFull, found = t.findByNameLocked(def.Redirect.Name)
		} else {
			next, nextFull, found = t.lookupLocked(NormalizePath(def.Redirect.Path))
		}
		if !found {
			t.log.WithFields(map[string]interface{}{
				"name": def.Redirect.Name,
				"path": def.Redirect.Path,
			}).Warn("redirect target not installed")
			break
		}
		def, full = next, nextFull
	}

	match.Def = cloneDefinition(def)
	match.FullPath = full
	if len(def.Children) == 0 && t.registry != nil {
		view := t.viewForLocked(full, def)
		match.View = view(def.Meta)
	}
	return match, true
}

// HasCatchAll reports whether the fallback route is installed.
func (t *Table) HasCatchAll() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hasCatchAllLocked()
}

func (t *Table) hasCatchAllLocked() bool {
	for _, def := range t.entries {
		if def.Name == CatchAllName {
			return true
		}
	}
	return false
}

// lookupLocked matches a normalized target against the table, descending
// into nested children. The catch-all never matches here.
func (t *Table) lookupLocked(target string) (Definition, string, bool) {
	for _, def := range t.entries {
		if def.Name == CatchAllName {
			continue
		}
		if found, full, ok := matchIn(def, "", target); ok {
			return found, full, true
		}
	}
	return Definition{}, "", false
}

func matchIn(def Definition, parent, target string) (Definition, string, bool) {
	full := joinPaths(parent, def.Path)
	if full == target {
		return def, full, true
	}
	for _, child := range def.Children {
		if found, childFull, ok := matchIn(child, full, target); ok {
			return found, childFull, true
		}
	}
	return Definition{}, "", false
}

// findByNameLocked locates a named route anywhere in the table, returning
// its definition and full path.
func (t *Table) findByNameLocked(name string) (Definition, string, bool) {
	var walk func(def Definition, parent string) (Definition, string, bool)
	walk = func(def Definition, parent string) (Definition, string, bool) {
		full := joinPaths(parent, def.Path)
		if def.Name != "" && def.Name == name {
			return def, full, true
		}
		for _, child := range def.Children {
			if found, childFull, ok := walk(child, full); ok {
				return found, childFull, true
			}
		}
		return Definition{}, "", false
	}
	for _, def := range t.entries {
		if found, full, ok := walk(def, ""); ok {
			return found, full, true
		}
	}
	return Definition{}, "", false
}

// removeNamedLocked removes the route carrying the name, wherever it
// nests. Removing a nested child leaves its group in place.
func (t *Table) removeNamedLocked(name string) bool {
	for i, def := range t.entries {
		if def.Name != "" && def.Name == name {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			return true
		}
		if updated, ok := removeChildNamed(def, name); ok {
			t.entries[i] = updated
			return true
		}
	}
	return false
}

func removeChildNamed(def Definition, name string) (Definition, bool) {
	for i, child := range def.Children {
		if child.Name != "" && child.Name == name {
			def.Children = append(append([]Definition(nil), def.Children[:i]...), def.Children[i+1:]...)
			return def, true
		}
		if updated, ok := removeChildNamed(child, name); ok {
			children := append([]Definition(nil), def.Children...)
			children[i] = updated
			def.Children = children
			return def, true
		}
	}
	return def, false
}

func (t *Table) viewForLocked(fullPath string, def Definition) View {
	if t.views == nil {
		t.views = make(map[string]View)
	}
	if view, ok := t.views[fullPath]; ok {
		return view
	}
	view := t.registry.Resolve(def.Component)
	t.views[fullPath] = view
	return view
}

// NormalizePath canonicalizes a navigation target: leading slash forced,
// duplicate slashes collapsed, trailing slash stripped (except root).
func NormalizePath(p string) string {
	if p == "" {
		return RootPath
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	p = duplicateSlashes.ReplaceAllString(p, "/")
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}

func joinPaths(parent, child string) string {
	if strings.HasPrefix(child, "/") {
		return child
	}
	if parent == "" {
		return "/" + child
	}
	return duplicateSlashes.ReplaceAllString(parent+"/"+child, "/")
}

func validateDefinition(def Definition) error {
	if def.Path == "" {
		return fmt.Errorf("route path is empty (menu %d)", def.Meta.MenuID)
	}
	for _, child := range def.Children {
		if err := validateDefinition(child); err != nil {
			return err
		}
	}
	return nil
}

func collectNames(def Definition) []string {
	var names []string
	if def.Name != "" {
		names = append(names, def.Name)
	}
	for _, child := range def.Children {
		names = append(names, collectNames(child)...)
	}
	return names
}

func cloneDefinition(def Definition) Definition {
	if len(def.Children) == 0 {
		return def
	}
	children := make([]Definition, 0, len(def.Children))
	for _, child := range def.Children {
		children = append(children, cloneDefinition(child))
	}
	def.Children = children
	return def
}
