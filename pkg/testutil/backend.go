// Package testutil provides a scriptable fake of the admin backend for
// package tests: the session, menu and permission endpoints with failure
// injection and call counters.
package testutil

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/tancool/adminx-console/internal/menu"
	"github.com/tancool/adminx-console/internal/session"
)

// CSRFToken is the fixed token the fake backend hands out in its cookie.
const CSRFToken = "test-csrf-token"

// Backend is an http.Handler implementing the RBAC API surface the
// engine consumes. Configure it through the setters, serve it with
// httptest.NewServer, and point a transport client at it.
type Backend struct {
	mu sync.Mutex

	router *mux.Router

	principal    session.Principal
	tree         []menu.Node
	sessionValid bool
	failMenu     bool
	failLogin    bool
	failCheck    bool
	grants       map[string]bool

	menuFetches  int
	lastCSRFSeen string
}

// NewBackend creates a fake backend with no session and an empty tree.
func NewBackend() *Backend {
	b := &Backend{grants: make(map[string]bool)}
	r := mux.NewRouter()
	r.HandleFunc("/api/rbac/menu-tree/", b.handleMenuTree).Methods(http.MethodGet)
	r.HandleFunc("/api/rbac/auth/user-info/", b.handleUserInfo).Methods(http.MethodGet)
	r.HandleFunc("/api/rbac/auth/login/", b.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/rbac/auth/logout/", b.handleLogout).Methods(http.MethodPost)
	r.HandleFunc("/api/rbac/auth/check-permission/", b.handleCheckPermission).Methods(http.MethodPost)
	b.router = r
	return b
}

func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Hand out the CSRF cookie the way the backend does on any response.
	http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: CSRFToken, Path: "/"})
	if r.Method != http.MethodGet {
		b.mu.Lock()
		b.lastCSRFSeen = r.Header.Get("X-CSRFToken")
		b.mu.Unlock()
	}
	b.router.ServeHTTP(w, r)
}

// SetPrincipal configures the identity returned by login and user-info.
func (b *Backend) SetPrincipal(p session.Principal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.principal = p
}

// SetTree configures the menu tree.
func (b *Backend) SetTree(tree []menu.Node) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tree = tree
}

// SetSessionValid controls whether user-info succeeds.
func (b *Backend) SetSessionValid(valid bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessionValid = valid
}

// SetFailMenu makes the menu-tree endpoint return a server error.
func (b *Backend) SetFailMenu(fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failMenu = fail
}

// SetFailLogin makes login return an error.
func (b *Backend) SetFailLogin(fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failLogin = fail
}

// SetFailCheck makes the permission check endpoint return a server error.
func (b *Backend) SetFailCheck(fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failCheck = fail
}

// Grant records a remote permission grant.
func (b *Backend) Grant(code string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.grants[code] = true
}

// MenuFetches reports how many times the menu tree was requested.
func (b *Backend) MenuFetches() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.menuFetches
}

// LastCSRFSeen returns the CSRF header of the most recent state-changing
// request.
func (b *Backend) LastCSRFSeen() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastCSRFSeen
}

func (b *Backend) handleMenuTree(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	b.menuFetches++
	fail := b.failMenu
	tree := b.tree
	b.mu.Unlock()

	if fail {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "menu service unavailable"})
		return
	}
	if tree == nil {
		tree = []menu.Node{}
	}
	writeJSON(w, http.StatusOK, tree)
}

func (b *Backend) handleUserInfo(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	valid := b.sessionValid
	principal := b.principal
	b.mu.Unlock()

	if !valid {
		writeJSON(w, http.StatusForbidden, map[string]string{"detail": "Authentication credentials were not provided."})
		return
	}
	writeJSON(w, http.StatusOK, principal)
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid request"})
		return
	}

	b.mu.Lock()
	fail := b.failLogin
	if !fail {
		b.sessionValid = true
	}
	principal := b.principal
	b.mu.Unlock()

	if fail {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid credentials"})
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: "test-session", Path: "/"})
	writeJSON(w, http.StatusOK, principal)
}

func (b *Backend) handleLogout(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	b.sessionValid = false
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{})
}

func (b *Backend) handleCheckPermission(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid request"})
		return
	}

	b.mu.Lock()
	fail := b.failCheck
	granted := b.grants[body.Code]
	b.mu.Unlock()

	if fail {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "permission service unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"has_permission": granted})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
