// Package guard implements the navigation gate: every navigation intent
// passes through it, and it orchestrates session verification, the
// once-per-session menu load, route installation and default-target
// redirection before letting the navigation proceed.
package guard

import (
	"context"
	"sync"

	"github.com/tancool/adminx-console/internal/menu"
	"github.com/tancool/adminx-console/internal/route"
	"github.com/tancool/adminx-console/internal/session"
	"github.com/tancool/adminx-console/pkg/logger"
)

// State names the guard's position in its session lifecycle.
type State string

const (
	StateAnonymous        State = "anonymous"
	StateSessionVerifying State = "session_verifying"
	StateMenuLoading      State = "menu_loading"
	StateReady            State = "ready"
)

// Outcome is a per-navigation decision.
type Outcome string

const (
	OutcomeAllow           Outcome = "allow"
	OutcomeRedirectLogin   Outcome = "redirect_login"
	OutcomeRedirectDefault Outcome = "redirect_default"
)

// Decision is the guard's answer to one navigation intent. Target is the
// path the navigation should proceed to (the original target for Allow,
// the redirect destination otherwise).
type Decision struct {
	Outcome Outcome `json:"outcome"`
	Target  string  `json:"target"`
}

// Verifier performs the external identity fetch that validates the
// session and yields the principal.
type Verifier interface {
	VerifySession(ctx context.Context) (session.Principal, error)
}

// Guard is the sequential navigation gate. One logical instance exists
// per application; its state persists across navigations within a session
// and resets to anonymous on logout or verification failure.
type Guard struct {
	mu         sync.Mutex
	state      State
	menuLoaded bool

	sessionState *session.State
	verifier     Verifier
	menus        *menu.Repository
	manager      *route.Manager
	table        *route.Table
	log          *logger.Logger
	loginPath    string
}

// New creates a guard in the anonymous state.
func New(sessionState *session.State, verifier Verifier, menus *menu.Repository, manager *route.Manager, table *route.Table, log *logger.Logger) *Guard {
	if log == nil {
		log = logger.NewDefault("guard")
	}
	return &Guard{
		state:        StateAnonymous,
		sessionState: sessionState,
		verifier:     verifier,
		menus:        menus,
		manager:      manager,
		table:        table,
		log:          log,
		loginPath:    route.LoginPath,
	}
}

// BeforeEach evaluates one navigation intent. Navigations are processed
// one at a time to completion, including any awaited remote calls, so the
// route table only ever mutates from within this sequential gate.
func (g *Guard) BeforeEach(ctx context.Context, target string) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	target = route.NormalizePath(target)
	decision := g.beforeEachLocked(ctx, target)
	observeDecision(decision.Outcome)
	return decision
}

func (g *Guard) beforeEachLocked(ctx context.Context, target string) Decision {
	// The login surface is always navigable; arriving there covers
	// logout-via-navigation, so the guard resets for the next session.
	if target == g.loginPath {
		g.resetLocked()
		return Decision{Outcome: OutcomeAllow, Target: target}
	}

	if !g.sessionState.Authenticated() {
		g.state = StateSessionVerifying
		principal, err := g.verifier.VerifySession(ctx)
		if err != nil {
			g.state = StateAnonymous
			g.log.WithError(err).Info("session verification failed; redirecting to login")
			return Decision{Outcome: OutcomeRedirectLogin, Target: g.loginPath}
		}
		g.sessionState.Populate(principal)
	}

	if !g.menuLoaded {
		g.state = StateMenuLoading
		if err := g.menus.Load(ctx); err != nil {
			// A menu-load error never fails the whole session; the
			// navigation proceeds without dynamic routes and the next
			// navigation retries the load.
			g.log.WithError(err).Error("menu load failed; continuing without dynamic routes")
		} else if tree := g.menus.Tree(); len(tree) == 0 {
			g.log.Warn("menu tree is empty; no dynamic routes installed")
		} else {
			g.manager.Install(route.Compile(tree))
			g.menuLoaded = true
			g.state = StateReady

			// The first navigation can race ahead of installation:
			// reconcile root and unmatched targets onto the first leaf.
			if target == route.RootPath || !g.table.Matches(target) {
				if leaf, ok := route.FirstLeafPath(tree); ok {
					return Decision{Outcome: OutcomeRedirectDefault, Target: leaf}
				}
			}
		}
	}

	if g.menuLoaded && !g.table.Matches(target) {
		if leaf, ok := route.FirstLeafPath(g.menus.Tree()); ok {
			return Decision{Outcome: OutcomeRedirectDefault, Target: leaf}
		}
	}

	return Decision{Outcome: OutcomeAllow, Target: target}
}

// Reset returns the guard to the anonymous state, typically on logout.
func (g *Guard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resetLocked()
}

func (g *Guard) resetLocked() {
	g.state = StateAnonymous
	g.menuLoaded = false
}

// State reports the guard's current lifecycle state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// MenuLoaded reports whether routes have been installed this session.
func (g *Guard) MenuLoaded() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.menuLoaded
}
