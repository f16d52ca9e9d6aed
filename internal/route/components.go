package route

import (
	"sync"

	"github.com/tancool/adminx-console/pkg/logger"
)

// View renders the page payload for a leaf route. The console renders
// views as JSON page descriptors; a browser shell maps the same component
// paths to page components.
type View func(meta Meta) any

// GenericMenuPage is the placeholder view bound to leaves whose component
// is absent or unknown to the registry.
func GenericMenuPage(meta Meta) any {
	return map[string]any{
		"view":    "menu-page",
		"title":   meta.Title,
		"menu_id": meta.MenuID,
	}
}

// Registry maps component paths to views. It is built at startup; a miss
// at resolution time falls back to the placeholder and is logged, never a
// hard failure.
type Registry struct {
	mu          sync.RWMutex
	views       map[string]View
	placeholder View
	log         *logger.Logger
}

// NewRegistry creates an empty registry with GenericMenuPage as the
// placeholder.
func NewRegistry(log *logger.Logger) *Registry {
	if log == nil {
		log = logger.NewDefault("components")
	}
	return &Registry{
		views:       make(map[string]View),
		placeholder: GenericMenuPage,
		log:         log,
	}
}

// Register binds a component path to a view.
func (r *Registry) Register(componentPath string, view View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views[componentPath] = view
}

// SetPlaceholder replaces the fallback view.
func (r *Registry) SetPlaceholder(view View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.placeholder = view
}

// Resolve looks up the view for a component path, trying the exact path
// first and then an index completion for paths registered per directory.
// An empty path or a miss yields the placeholder.
func (r *Registry) Resolve(componentPath string) View {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if componentPath == "" {
		return r.placeholder
	}
	if view, ok := r.views[componentPath]; ok {
		return view
	}
	if view, ok := r.views[componentPath+"/index"]; ok {
		return view
	}
	r.log.WithField("component", componentPath).Warn("component view not found; using placeholder")
	return r.placeholder
}
