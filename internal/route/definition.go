// Package route contains the navigation core: the menu-tree compiler that
// derives route definitions from server data, the live route table with
// its installer, and the component registry that binds leaf routes to
// renderable views.
package route

// Definition is one derived route table entry. Top-level paths are
// absolute (leading slash); nested child paths are relative to their
// parent unless explicitly absolute.
type Definition struct {
	Path      string       `json:"path"`
	Name      string       `json:"name,omitempty"`
	Redirect  Redirect     `json:"redirect,omitempty"`
	Component string       `json:"component,omitempty"`
	Children  []Definition `json:"children,omitempty"`
	Meta      Meta         `json:"meta"`
	Hidden    bool         `json:"hidden,omitempty"`
}

// Redirect targets another route, by name when available (names survive
// path ambiguity), otherwise by full path.
type Redirect struct {
	Name string `json:"name,omitempty"`
	Path string `json:"path,omitempty"`
}

// IsZero reports whether no redirect is set.
func (r Redirect) IsZero() bool { return r.Name == "" && r.Path == "" }

// Meta carries display metadata and traceability back to the source menu
// node.
type Meta struct {
	Title  string `json:"title,omitempty"`
	Icon   string `json:"icon,omitempty"`
	MenuID int64  `json:"menu_id,omitempty"`
}
