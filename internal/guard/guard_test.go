package guard

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tancool/adminx-console/internal/menu"
	"github.com/tancool/adminx-console/internal/route"
	"github.com/tancool/adminx-console/internal/session"
)

type fakeVerifier struct {
	mu        sync.Mutex
	principal session.Principal
	err       error
	calls     int
}

func (f *fakeVerifier) VerifySession(_ context.Context) (session.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return session.Principal{}, f.err
	}
	return f.principal, nil
}

func (f *fakeVerifier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeFetcher struct {
	mu    sync.Mutex
	tree  []menu.Node
	err   error
	calls int
}

func (f *fakeFetcher) FetchMenuTree(_ context.Context) ([]menu.Node, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.tree, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeFetcher) set(tree []menu.Node, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tree = tree
	f.err = err
}

func adminTree() []menu.Node {
	return []menu.Node{
		{ID: 1, Title: "System", Path: "/system", Children: []menu.Node{
			{ID: 2, Title: "Users", Path: "/system/users", Component: "system/user/index"},
			{ID: 3, Title: "Roles", Path: "/system/roles", Component: "system/role/index"},
		}},
	}
}

type fixture struct {
	guard    *Guard
	verifier *fakeVerifier
	fetcher  *fakeFetcher
	table    *route.Table
	state    *session.State
}

func newFixture(tree []menu.Node) *fixture {
	verifier := &fakeVerifier{principal: session.Principal{ID: 1, Username: "admin"}}
	fetcher := &fakeFetcher{tree: tree}
	state := session.NewState()
	menus := menu.NewRepository(fetcher, nil)
	table := route.NewTable(route.NewRegistry(nil), nil)
	manager := route.NewManager(table, nil)
	return &fixture{
		guard:    New(state, verifier, menus, manager, table, nil),
		verifier: verifier,
		fetcher:  fetcher,
		table:    table,
		state:    state,
	}
}

func TestGuard_LoginSurfaceAlwaysAllowedAndResets(t *testing.T) {
	f := newFixture(adminTree())
	ctx := context.Background()

	// Establish a session and load the menu.
	d := f.guard.BeforeEach(ctx, "/")
	require.Equal(t, OutcomeRedirectDefault, d.Outcome)
	require.True(t, f.guard.MenuLoaded())

	// Navigating to the login surface allows unconditionally and resets
	// the guard for the next session.
	d = f.guard.BeforeEach(ctx, route.LoginPath)
	require.Equal(t, OutcomeAllow, d.Outcome)
	require.Equal(t, StateAnonymous, f.guard.State())
	require.False(t, f.guard.MenuLoaded())

	// Identity fetch was not re-attempted for the login navigation.
	require.Equal(t, 1, f.verifier.callCount())
}

func TestGuard_VerificationFailureRedirectsToLogin(t *testing.T) {
	f := newFixture(adminTree())
	f.verifier.err = errors.New("session expired")

	d := f.guard.BeforeEach(context.Background(), "/system/users")
	require.Equal(t, OutcomeRedirectLogin, d.Outcome)
	require.Equal(t, route.LoginPath, d.Target)
	require.Equal(t, StateAnonymous, f.guard.State())
	require.False(t, f.state.Authenticated())
	require.Equal(t, 0, f.fetcher.callCount(), "menu must not load without a session")
}

func TestGuard_FirstNavigationInstallsRoutesAndRedirectsToFirstLeaf(t *testing.T) {
	f := newFixture(adminTree())

	d := f.guard.BeforeEach(context.Background(), "/")
	require.Equal(t, OutcomeRedirectDefault, d.Outcome)
	require.Equal(t, "/system/users", d.Target)
	require.Equal(t, StateReady, f.guard.State())
	require.True(t, f.table.Matches("/system/users"))
}

func TestGuard_MenuFetchedOncePerSession(t *testing.T) {
	f := newFixture(adminTree())
	ctx := context.Background()

	f.guard.BeforeEach(ctx, "/")
	for _, target := range []string{"/system/users", "/system/roles", "/system/users"} {
		d := f.guard.BeforeEach(ctx, target)
		require.Equal(t, OutcomeAllow, d.Outcome)
		require.Equal(t, target, d.Target)
	}

	require.Equal(t, 1, f.fetcher.callCount(), "menu fetched more than once per session")
	require.Equal(t, 1, f.verifier.callCount(), "session verified more than once per session")
}

func TestGuard_MatchedFirstNavigationNotRedirected(t *testing.T) {
	f := newFixture(adminTree())

	d := f.guard.BeforeEach(context.Background(), "/system/users")
	require.Equal(t, OutcomeAllow, d.Outcome)
	require.Equal(t, "/system/users", d.Target)
}

func TestGuard_UnmatchedTargetFallsBackToFirstLeaf(t *testing.T) {
	f := newFixture(adminTree())
	ctx := context.Background()

	f.guard.BeforeEach(ctx, "/")
	d := f.guard.BeforeEach(ctx, "/no/such/page")
	require.Equal(t, OutcomeRedirectDefault, d.Outcome)
	require.Equal(t, "/system/users", d.Target)
}

func TestGuard_EmptyTreeContinuesWithoutDynamicRoutes(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()

	d := f.guard.BeforeEach(ctx, "/anything")
	require.Equal(t, OutcomeAllow, d.Outcome)
	require.False(t, f.guard.MenuLoaded())
	require.False(t, f.table.Matches("/anything"))

	// An empty tree is not marked loaded, so the next navigation retries.
	f.guard.BeforeEach(ctx, "/anything")
	require.Equal(t, 2, f.fetcher.callCount())
}

func TestGuard_MenuLoadFailureIsRecoverable(t *testing.T) {
	f := newFixture(nil)
	f.fetcher.set(nil, errors.New("backend down"))
	ctx := context.Background()

	d := f.guard.BeforeEach(ctx, "/system/users")
	require.Equal(t, OutcomeAllow, d.Outcome, "menu-load failure must not fail the session")
	require.False(t, f.guard.MenuLoaded())

	// The backend recovers; the next navigation installs routes.
	f.fetcher.set(adminTree(), nil)
	d = f.guard.BeforeEach(ctx, "/system/users")
	require.Equal(t, OutcomeAllow, d.Outcome)
	require.True(t, f.guard.MenuLoaded())
	require.True(t, f.table.Matches("/system/users"))
}

func TestGuard_ReloadAfterLoginRoundTrip(t *testing.T) {
	f := newFixture(adminTree())
	ctx := context.Background()

	f.guard.BeforeEach(ctx, "/")
	require.Equal(t, 1, f.fetcher.callCount())

	// Logout-via-navigation, then a fresh session: routes reinstall.
	f.guard.BeforeEach(ctx, route.LoginPath)
	f.state.Reset()

	d := f.guard.BeforeEach(ctx, "/")
	require.Equal(t, OutcomeRedirectDefault, d.Outcome)
	require.Equal(t, 2, f.fetcher.callCount())
	require.Equal(t, 2, f.verifier.callCount())
}
