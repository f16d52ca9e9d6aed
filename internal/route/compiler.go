package route

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tancool/adminx-console/internal/menu"
)

const defaultGroupIcon = "icon-apps"

var duplicateSlashes = regexp.MustCompile(`/+`)

// Compile derives route definitions from the menu tree. It is pure and
// deterministic: no I/O, and an unchanged tree always yields structurally
// identical output. Group nodes whose every descendant fails to produce a
// route are pruned.
func Compile(tree []menu.Node) []Definition {
	routes := make([]Definition, 0, len(tree))
	for _, node := range tree {
		if def, ok := compileNode(node, ""); ok {
			routes = append(routes, def)
		}
	}
	return routes
}

// compileNode compiles one node, carrying the accumulated absolute parent
// path. The boolean is false when the node contributes no route: a
// malformed leaf (no path and no identifier to synthesize one from), or a
// group whose every descendant failed.
func compileNode(node menu.Node, parentPath string) (Definition, bool) {
	if node.IsGroup() {
		return compileGroup(node)
	}
	if node.Path == "" && node.ID == 0 {
		return Definition{}, false
	}
	return compileLeaf(node, parentPath), true
}

func compileGroup(node menu.Node) (Definition, bool) {
	groupPath := node.Path
	if groupPath == "" {
		groupPath = fmt.Sprintf("/%d", node.ID)
	}
	if !strings.HasPrefix(groupPath, "/") {
		groupPath = "/" + groupPath
	}

	children := make([]Definition, 0, len(node.Children))
	for _, child := range node.Children {
		if def, ok := compileNode(child, groupPath); ok {
			children = append(children, def)
		}
	}
	if len(children) == 0 {
		return Definition{}, false
	}

	icon := node.Icon
	if icon == "" {
		icon = defaultGroupIcon
	}
	def := Definition{
		Path:      groupPath,
		Component: node.Component,
		Children:  children,
		Meta:      Meta{Title: node.Title, Icon: icon, MenuID: node.ID},
		Hidden:    node.Hidden,
	}

	// A group without its own component routes to its first surviving
	// child: by name when the child has one, else by joined path.
	if node.Component == "" {
		first := children[0]
		if first.Name != "" {
			def.Redirect = Redirect{Name: first.Name}
		} else {
			target := first.Path
			if !strings.HasPrefix(target, "/") {
				target = duplicateSlashes.ReplaceAllString(groupPath+"/"+target, "/")
			}
			def.Redirect = Redirect{Path: target}
		}
	}
	return def, true
}

func compileLeaf(node menu.Node, parentPath string) Definition {
	routePath := node.Path
	if routePath == "" {
		routePath = fmt.Sprintf("/%d", node.ID)
	}

	if parentPath != "" && strings.HasPrefix(routePath, parentPath) {
		// Nested leaf: strip the parent prefix to get the relative path.
		routePath = strings.TrimPrefix(routePath, parentPath)
		if routePath == "" || routePath == "/" {
			// Self-referencing leaf, fall back to the parent's own path.
			routePath = parentPath
		}
		routePath = strings.TrimPrefix(routePath, "/")
		if routePath == "" {
			routePath = fmt.Sprintf("menu_%d", node.ID)
		}
	} else if !strings.HasPrefix(routePath, "/") {
		routePath = "/" + routePath
	}

	name := ""
	if node.Path != "" {
		name = strings.TrimPrefix(strings.ReplaceAll(node.Path, "/", "_"), "_")
	}
	if name == "" {
		name = fmt.Sprintf("menu_%d", node.ID)
	}

	return Definition{
		Path:      routePath,
		Name:      name,
		Component: node.Component,
		Meta:      Meta{Title: node.Title, Icon: node.Icon, MenuID: node.ID},
		Hidden:    node.Hidden,
	}
}

// FirstLeaf returns the first leaf with a usable path found by pre-order
// search: groups are descended into, leaves without a path are skipped.
func FirstLeaf(tree []menu.Node) (menu.Node, bool) {
	for _, node := range tree {
		if node.IsGroup() {
			if leaf, ok := FirstLeaf(node.Children); ok {
				return leaf, true
			}
		} else if node.Path != "" {
			return node, true
		}
	}
	return menu.Node{}, false
}

// FirstLeafPath returns the absolute path of the first discoverable leaf.
func FirstLeafPath(tree []menu.Node) (string, bool) {
	leaf, ok := FirstLeaf(tree)
	if !ok {
		return "", false
	}
	path := leaf.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path, true
}

// SidebarItem is a flattened menu entry with its accumulated full path,
// used by sidebar renderers.
type SidebarItem struct {
	Node     menu.Node `json:"node"`
	FullPath string    `json:"full_path"`
}

// Flatten lists the menu tree in pre-order with accumulated full paths.
func Flatten(tree []menu.Node) []SidebarItem {
	var result []SidebarItem
	var walk func(nodes []menu.Node, parentPath string)
	walk = func(nodes []menu.Node, parentPath string) {
		for _, node := range nodes {
			fullPath := node.Path
			if parentPath != "" && !strings.HasPrefix(node.Path, "/") {
				fullPath = parentPath + "/" + node.Path
			}
			result = append(result, SidebarItem{Node: node, FullPath: fullPath})
			if node.IsGroup() {
				walk(node.Children, fullPath)
			}
		}
	}
	walk(tree, "")
	return result
}
