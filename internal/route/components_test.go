package route

import "testing"

func TestRegistry_ResolveExactAndIndexFallback(t *testing.T) {
	registry := NewRegistry(nil)
	registry.Register("system/user/index", func(meta Meta) any { return "user-page" })

	if got := registry.Resolve("system/user/index")(Meta{}); got != "user-page" {
		t.Errorf("exact resolve = %v, want user-page", got)
	}
	// A directory-style component path completes with /index.
	if got := registry.Resolve("system/user")(Meta{}); got != "user-page" {
		t.Errorf("index fallback resolve = %v, want user-page", got)
	}
}

func TestRegistry_MissFallsBackToPlaceholder(t *testing.T) {
	registry := NewRegistry(nil)
	view := registry.Resolve("nowhere/index")
	payload, ok := view(Meta{Title: "Ghost", MenuID: 7}).(map[string]any)
	if !ok {
		t.Fatalf("placeholder payload type = %T, want map", view(Meta{}))
	}
	if payload["view"] != "menu-page" {
		t.Errorf("placeholder view = %v, want menu-page", payload["view"])
	}
	if payload["menu_id"] != int64(7) {
		t.Errorf("placeholder menu_id = %v, want 7", payload["menu_id"])
	}
}

func TestRegistry_EmptyComponentIsPlaceholder(t *testing.T) {
	registry := NewRegistry(nil)
	payload := registry.Resolve("")(Meta{Title: "Bare"}).(map[string]any)
	if payload["view"] != "menu-page" {
		t.Errorf("empty component view = %v, want menu-page", payload["view"])
	}
}
