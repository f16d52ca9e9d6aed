package api

import (
	"context"
	"net/http/httptest"
	"testing"

	apperrors "github.com/tancool/adminx-console/internal/errors"
	"github.com/tancool/adminx-console/internal/menu"
	"github.com/tancool/adminx-console/internal/session"
	"github.com/tancool/adminx-console/internal/transport"
	"github.com/tancool/adminx-console/pkg/testutil"
)

func newClient(t *testing.T, backend *testutil.Backend) (*Client, func()) {
	t.Helper()
	server := httptest.NewServer(backend)
	tc, err := transport.New(transport.Config{BaseURL: server.URL})
	if err != nil {
		server.Close()
		t.Fatalf("transport.New() error: %v", err)
	}
	return NewClient(tc, nil), server.Close
}

func TestClient_LoginThenVerifySession(t *testing.T) {
	backend := testutil.NewBackend()
	backend.SetPrincipal(session.Principal{ID: 7, Username: "alice", Superuser: true})
	client, done := newClient(t, backend)
	defer done()

	ctx := context.Background()

	if _, err := client.VerifySession(ctx); apperrors.CodeOf(err) != apperrors.CodeAuthRequired {
		t.Fatalf("VerifySession() before login error = %v, want auth_required", err)
	}

	p, err := client.Login(ctx, Credentials{Username: "alice", Password: "secret"})
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if p.Username != "alice" || !p.Superuser {
		t.Errorf("Login() principal = %+v, want alice superuser", p)
	}
	// Login is a POST; the transport must have sent the CSRF token it was
	// handed by the failed user-info call above.
	if got := backend.LastCSRFSeen(); got != testutil.CSRFToken {
		t.Errorf("CSRF seen by backend = %q, want %q", got, testutil.CSRFToken)
	}

	p, err = client.VerifySession(ctx)
	if err != nil {
		t.Fatalf("VerifySession() after login error: %v", err)
	}
	if p.ID != 7 {
		t.Errorf("VerifySession() ID = %d, want 7", p.ID)
	}
}

func TestClient_LoginFailure(t *testing.T) {
	backend := testutil.NewBackend()
	backend.SetFailLogin(true)
	client, done := newClient(t, backend)
	defer done()

	if _, err := client.Login(context.Background(), Credentials{Username: "alice", Password: "wrong"}); err == nil {
		t.Fatal("Login() with rejected credentials succeeded")
	}
}

func TestClient_FetchMenuTree(t *testing.T) {
	backend := testutil.NewBackend()
	backend.SetSessionValid(true)
	backend.SetTree([]menu.Node{
		{ID: 1, Title: "System", Children: []menu.Node{
			{ID: 2, Title: "Users", Path: "users", Component: "system/user/index"},
		}},
	})
	client, done := newClient(t, backend)
	defer done()

	tree, err := client.FetchMenuTree(context.Background())
	if err != nil {
		t.Fatalf("FetchMenuTree() error: %v", err)
	}
	if len(tree) != 1 {
		t.Fatalf("tree length = %d, want 1", len(tree))
	}
	if !tree[0].IsGroup() {
		t.Error("root node not a group")
	}
	if got := tree[0].Children[0].Component; got != "system/user/index" {
		t.Errorf("child component = %q, want system/user/index", got)
	}
	if backend.MenuFetches() != 1 {
		t.Errorf("menu fetches = %d, want 1", backend.MenuFetches())
	}
}

func TestClient_CheckPermission(t *testing.T) {
	backend := testutil.NewBackend()
	backend.SetSessionValid(true)
	backend.Grant("system:user:delete")
	client, done := newClient(t, backend)
	defer done()

	ctx := context.Background()

	ok, err := client.CheckPermission(ctx, "system:user:delete")
	if err != nil {
		t.Fatalf("CheckPermission() error: %v", err)
	}
	if !ok {
		t.Error("granted permission reported as denied")
	}

	ok, err = client.CheckPermission(ctx, "system:user:export")
	if err != nil {
		t.Fatalf("CheckPermission() error: %v", err)
	}
	if ok {
		t.Error("ungranted permission reported as held")
	}
}

func TestClient_CheckPermissionServerError(t *testing.T) {
	backend := testutil.NewBackend()
	backend.SetFailCheck(true)
	client, done := newClient(t, backend)
	defer done()

	if _, err := client.CheckPermission(context.Background(), "anything"); err == nil {
		t.Fatal("CheckPermission() against failing backend succeeded")
	}
}

func TestClient_Logout(t *testing.T) {
	backend := testutil.NewBackend()
	backend.SetSessionValid(true)
	client, done := newClient(t, backend)
	defer done()

	ctx := context.Background()
	if err := client.Logout(ctx); err != nil {
		t.Fatalf("Logout() error: %v", err)
	}
	if _, err := client.VerifySession(ctx); err == nil {
		t.Error("VerifySession() after logout succeeded")
	}
}
