package app

import (
	"context"
	"testing"
	"time"

	"greenlaunch/pkg/domain"
	"greenlaunch/pkg/storage"
	"greenlaunch/pkg/store"
)

type fakeEnqueuer struct {
	calls []string
	err   error
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, sessionID, reminder string) error {
	f.calls = append(f.calls, sessionID+"|"+reminder)
	return f.err
}

func newTestApp(t *testing.T) (*App, *store.MemoryStore, *fakeEnqueuer) {
	t.Helper()
	mem := store.NewMemoryStore()
	objects, err := storage.NewDiskStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("new disk store: %v", err)
	}
	enqueuer := &fakeEnqueuer{}
	a, err := New(Config{Store: mem, Objects: objects, Reminders: enqueuer})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a, mem, enqueuer
}

func profile(uid string, role domain.Role) domain.Profile {
	return domain.Profile{UID: uid, Role: role, CreatedAt: time.Now().UTC()}
}

func TestResolveProfileCreatesEntrepreneurOnFirstSight(t *testing.T) {
	a, _, _ := newTestApp(t)
	p, err := a.ResolveProfile("u-1", "u@example.org", "U One")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if p.Role != domain.RoleEntrepreneur {
		t.Fatalf("role = %q, want entrepreneur", p.Role)
	}

	again, err := a.ResolveProfile("u-1", "changed@example.org", "Other")
	if err != nil {
		t.Fatalf("resolve again: %v", err)
	}
	if again.Email != "u@example.org" {
		t.Fatalf("resolve must not overwrite an existing profile, email = %q", again.Email)
	}
}

func TestRegisterProfileRestrictsSelfServiceRoles(t *testing.T) {
	a, _, _ := newTestApp(t)
	caller, _ := a.ResolveProfile("u-1", "u@example.org", "U")

	updated, err := a.RegisterProfile(caller, "Amina", domain.RoleMentor)
	if err != nil {
		t.Fatalf("register mentor: %v", err)
	}
	if updated.Role != domain.RoleMentor || updated.Name != "Amina" {
		t.Fatalf("updated = %+v", updated)
	}

	// Privileged roles cannot be self-assigned.
	updated, err = a.RegisterProfile(updated, "", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("register admin attempt: %v", err)
	}
	if updated.Role != domain.RoleEntrepreneur {
		t.Fatalf("self-service admin request downgraded to %q, want entrepreneur", updated.Role)
	}

	// An existing admin keeps admin no matter what is sent.
	admin := profile("a-1", domain.RoleAdmin)
	if err := a.Store().SaveProfile(admin); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	updated, err = a.RegisterProfile(admin, "Root", domain.RoleEntrepreneur)
	if err != nil {
		t.Fatalf("register as admin: %v", err)
	}
	if updated.Role != domain.RoleAdmin {
		t.Fatalf("admin role lost, got %q", updated.Role)
	}
}

func TestSetRoleValidatesRole(t *testing.T) {
	a, _, _ := newTestApp(t)
	if _, err := a.ResolveProfile("u-1", "u@example.org", "U"); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	p, err := a.SetRole("u-1", domain.RoleBusinessSupport)
	if err != nil {
		t.Fatalf("set role: %v", err)
	}
	if p.Role != domain.RoleBusinessSupport {
		t.Fatalf("role = %q", p.Role)
	}

	if _, err := a.SetRole("u-1", "superuser"); HTTPStatus(err) != 400 {
		t.Fatalf("invalid role expected 400, got %v", err)
	}
	if _, err := a.SetRole("ghost", domain.RoleMentor); HTTPStatus(err) != 404 {
		t.Fatalf("unknown uid expected 404, got %v", err)
	}
}
