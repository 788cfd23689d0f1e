package proxyman

import (
	"errors"
	"testing"
	"time"

	"pkt.systems/proxyman/internal/perm"
	"pkt.systems/proxyman/internal/sessionstore"
)

func TestGuardRequireAuthAnonymous(t *testing.T) {
	mgr := NewSessionManager(SessionOptions{
		API:   AuthClient{Endpoint: "http://localhost:81/api"},
		Store: sessionstore.New(t.TempDir()),
	})
	guard := Guard{Manager: mgr}

	err := guard.RequireAuth("/hosts")
	if !errors.Is(err, ErrLoginRequired) {
		t.Fatalf("error = %v, want ErrLoginRequired", err)
	}
	if err := guard.RequirePermission("/hosts", perm.ResourceProxyHosts, perm.LevelView); !errors.Is(err, ErrLoginRequired) {
		t.Fatalf("error = %v, want ErrLoginRequired", err)
	}
}

func TestGuardPermissionLevels(t *testing.T) {
	restricted := perm.Identity{
		ID:    4,
		Email: "viewer@example.com",
		Permissions: map[perm.Resource]perm.Level{
			perm.ResourceProxyHosts: perm.LevelView,
		},
	}
	mgr := seedManager(t, "http://localhost:81/api",
		makeToken(time.Now().Add(time.Hour)), restricted)
	guard := Guard{Manager: mgr}

	if err := guard.RequireAuth("/hosts"); err != nil {
		t.Fatalf("RequireAuth: %v", err)
	}
	if err := guard.RequirePermission("/hosts", perm.ResourceProxyHosts, perm.LevelView); err != nil {
		t.Fatalf("view on viewable resource: %v", err)
	}
	if err := guard.RequirePermission("/hosts", perm.ResourceProxyHosts, perm.LevelManage); !errors.Is(err, ErrForbidden) {
		t.Fatalf("manage on view-only resource: %v, want ErrForbidden", err)
	}
	if err := guard.RequirePermission("/users", perm.ResourceUsers, perm.LevelView); !errors.Is(err, ErrForbidden) {
		t.Fatalf("unlisted resource: %v, want ErrForbidden (default hidden)", err)
	}
}

func TestGuardAdminOverride(t *testing.T) {
	mgr := seedManager(t, "http://localhost:81/api",
		makeToken(time.Now().Add(time.Hour)), adminID())
	guard := Guard{Manager: mgr}

	for _, r := range perm.Resources() {
		if err := guard.RequirePermission("/any", r, perm.LevelManage); err != nil {
			t.Fatalf("admin denied manage on %s: %v", r, err)
		}
	}
}

func TestGuardDisabledAccount(t *testing.T) {
	disabled := adminID()
	disabled.Disabled = true
	mgr := seedManager(t, "http://localhost:81/api",
		makeToken(time.Now().Add(time.Hour)), disabled)
	guard := Guard{Manager: mgr}

	err := guard.RequirePermission("/hosts", perm.ResourceProxyHosts, perm.LevelView)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("error = %v, want ErrForbidden for disabled account", err)
	}
}
