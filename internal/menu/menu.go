// Package menu holds the server-supplied menu tree model and the
// per-session repository that caches it.
package menu

import (
	"context"
	"sync"

	apperrors "github.com/tancool/adminx-console/internal/errors"
	"github.com/tancool/adminx-console/pkg/logger"
)

// Node is one entry of the server-supplied menu tree. A node with children
// is a group node (nesting only); a node without children is a leaf that
// resolves to a renderable page.
type Node struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Path      string `json:"path,omitempty"`
	Component string `json:"component,omitempty"`
	Icon      string `json:"icon,omitempty"`
	Order     int    `json:"order"`
	Hidden    bool   `json:"is_hidden"`
	Children  []Node `json:"children,omitempty"`
}

// IsGroup reports whether the node nests children. A present-but-empty
// children list still counts as a leaf.
func (n Node) IsGroup() bool { return len(n.Children) > 0 }

// Fetcher retrieves the menu tree for the current session.
type Fetcher interface {
	FetchMenuTree(ctx context.Context) ([]Node, error)
}

// Repository caches the menu tree for the current session. It starts
// empty, is populated by Load and cleared on logout.
type Repository struct {
	mu      sync.RWMutex
	fetcher Fetcher
	log     *logger.Logger
	tree    []Node
	loaded  bool
}

// NewRepository creates a repository backed by the given fetcher.
func NewRepository(fetcher Fetcher, log *logger.Logger) *Repository {
	if log == nil {
		log = logger.NewDefault("menu")
	}
	return &Repository{fetcher: fetcher, log: log}
}

// Load fetches the menu tree and caches it. On failure the cache is
// emptied and a MenuLoadFailed error is returned; the caller decides
// whether to retry on a later navigation.
func (r *Repository) Load(ctx context.Context) error {
	tree, err := r.fetcher.FetchMenuTree(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.tree = nil
		r.loaded = false
		return apperrors.MenuLoadFailed("fetch menu tree", err)
	}
	r.tree = tree
	r.loaded = true
	return nil
}

// Tree returns the cached menu tree. Callers must not mutate it.
func (r *Repository) Tree() []Node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tree
}

// Loaded reports whether a load has succeeded this session.
func (r *Repository) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}

// Clear drops the cached tree, typically on logout.
func (r *Repository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tree = nil
	r.loaded = false
}
