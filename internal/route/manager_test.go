package route

import (
	"reflect"
	"sort"
	"testing"
)

// reachablePaths collects every full path matchable in the table, for
// comparing reachable sets across installations.
func reachablePaths(table *Table) []string {
	var paths []string
	var walk func(def Definition, parent string)
	walk = func(def Definition, parent string) {
		full := joinPaths(parent, def.Path)
		paths = append(paths, full)
		for _, child := range def.Children {
			walk(child, full)
		}
	}
	for _, def := range table.Routes() {
		if def.Name == CatchAllName {
			continue
		}
		walk(def, "")
	}
	sort.Strings(paths)
	return paths
}

func catchAllCount(table *Table) int {
	count := 0
	for _, def := range table.Routes() {
		if def.Name == CatchAllName {
			count++
		}
	}
	return count
}

func TestManager_InstallIdempotent(t *testing.T) {
	table := newTestTable()
	manager := NewManager(table, nil)
	routes := Compile(systemTree())

	manager.Install(routes)
	first := reachablePaths(table)

	manager.Install(routes)
	second := reachablePaths(table)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("reachable set changed across identical installs:\nfirst  = %v\nsecond = %v", first, second)
	}
	if n := catchAllCount(table); n != 1 {
		t.Errorf("catch-all count = %d, want 1", n)
	}
}

func TestManager_CatchAllAlwaysLast(t *testing.T) {
	table := newTestTable()
	manager := NewManager(table, nil)

	manager.Install(Compile(systemTree()))
	routes := table.Routes()
	if routes[len(routes)-1].Name != CatchAllName {
		t.Errorf("last route = %q, want %q", routes[len(routes)-1].Name, CatchAllName)
	}
}

func TestManager_RootRedirectFollowsFirstRoute(t *testing.T) {
	table := newTestTable()
	manager := NewManager(table, nil)

	manager.Install(Compile(systemTree()))

	match, ok := table.Resolve("/")
	if !ok {
		t.Fatal("Resolve(/) found nothing")
	}
	if match.FullPath != "/system/users" {
		t.Errorf("root resolves to %q, want /system/users", match.FullPath)
	}
}

func TestManager_RootRedirectUsesPathWhenFirstRouteHasNoRedirect(t *testing.T) {
	table := newTestTable()
	manager := NewManager(table, nil)

	manager.Install([]Definition{
		{Path: "/tasks", Name: "tasks", Component: "task/index"},
	})

	match, ok := table.Resolve("/")
	if !ok {
		t.Fatal("Resolve(/) found nothing")
	}
	if match.FullPath != "/tasks" {
		t.Errorf("root resolves to %q, want /tasks", match.FullPath)
	}
}

func TestManager_ReplacementUninstallsPriorSet(t *testing.T) {
	table := newTestTable()
	manager := NewManager(table, nil)

	manager.Install(Compile(systemTree()))
	if !table.Matches("/system/users") {
		t.Fatal("first install did not take")
	}

	manager.Install([]Definition{{Path: "/tasks", Name: "tasks"}})
	if table.Matches("/system/users") {
		t.Error("stale route /system/users survived reinstallation")
	}
	if !table.Matches("/tasks") {
		t.Error("new route /tasks not installed")
	}

	// Constant routes survive every cycle.
	if !table.Matches(LoginPath) || !table.Matches(NotFoundPath) {
		t.Error("constant routes removed by reinstallation")
	}
}

func TestManager_EmptyInstallLeavesConstantsAndCatchAll(t *testing.T) {
	table := newTestTable()
	manager := NewManager(table, nil)

	manager.Install(Compile(systemTree()))
	manager.Install(nil)

	if table.Matches("/system/users") {
		t.Error("dynamic route survived empty reinstallation")
	}
	if !table.Matches(LoginPath) {
		t.Error("login route missing")
	}
	if n := catchAllCount(table); n != 1 {
		t.Errorf("catch-all count = %d, want 1", n)
	}
}

func TestManager_PartialInstallContinuesPastFailure(t *testing.T) {
	table := newTestTable()
	manager := NewManager(table, nil)

	manager.Install([]Definition{
		{Name: "broken"}, // empty path: rejected, logged, skipped
		{Path: "/ok", Name: "ok"},
	})

	if !table.Matches("/ok") {
		t.Error("route after the failing one was not installed")
	}
	if n := catchAllCount(table); n != 1 {
		t.Errorf("catch-all count = %d, want 1", n)
	}
}

func TestManager_InstalledSnapshot(t *testing.T) {
	table := newTestTable()
	manager := NewManager(table, nil)
	routes := Compile(systemTree())

	manager.Install(routes)
	installed := manager.Installed()
	if len(installed) != len(routes) {
		t.Errorf("Installed() = %d routes, want %d", len(installed), len(routes))
	}
}
