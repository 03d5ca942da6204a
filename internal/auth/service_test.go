package auth

import (
	"context"
	"errors"
	"testing"

	"denialdesk.org/internal/validate"
)

func newTestService(t *testing.T) (*Service, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	svc, err := NewService(store)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, store
}

func TestRegisterAggregatesFieldErrors(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register(context.Background(), "a", "nope", "weak")
	if err == nil {
		t.Fatal("expected validation failure")
	}
	var fieldErrs validate.FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("expected FieldErrors, got %T", err)
	}
	// Username, email and password are all invalid; all three must be reported.
	if len(fieldErrs) != 3 {
		t.Fatalf("expected 3 aggregated messages, got %d: %v", len(fieldErrs), fieldErrs)
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "alice@example.com", "Sup3r#Secret")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != RoleUser {
		t.Fatalf("new accounts must get the user role, got %v", user.Role)
	}
	if !user.Active {
		t.Fatal("new accounts must start active")
	}

	got, err := svc.Authenticate(ctx, "alice", "Sup3r#Secret")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("authenticated wrong user: %s", got.ID)
	}
	if got.LastLogin == nil {
		t.Fatal("last login not recorded")
	}

	if _, err := svc.Authenticate(ctx, "alice", "wrong-password"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody", "Sup3r#Secret"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unknown user, got %v", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "alice@example.com", "Sup3r#Secret"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(ctx, "alice", "other@example.com", "Sup3r#Secret"); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists for username, got %v", err)
	}
	if _, err := svc.Register(ctx, "bob", "alice@example.com", "Sup3r#Secret"); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists for email, got %v", err)
	}
}

func TestAuthenticateInactiveRejected(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "carol", "carol@example.com", "Sup3r#Secret")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := store.SetActive(ctx, user.ID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "carol", "Sup3r#Secret"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for inactive account, got %v", err)
	}
}

func TestToggleActive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	admin, err := svc.CreateAdmin(ctx, "admin", "admin@example.com", "Adm1n#Secret")
	if err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	target, err := svc.Register(ctx, "dave", "dave@example.com", "Sup3r#Secret")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	actor := Principal{UserID: admin.ID, Role: RoleAdmin}
	updated, err := svc.ToggleActive(ctx, actor, target.ID)
	if err != nil {
		t.Fatalf("ToggleActive: %v", err)
	}
	if updated.Active {
		t.Fatal("expected account deactivated")
	}

	// Toggling again reactivates.
	updated, err = svc.ToggleActive(ctx, actor, target.ID)
	if err != nil {
		t.Fatalf("ToggleActive: %v", err)
	}
	if !updated.Active {
		t.Fatal("expected account reactivated")
	}

	// Self-deactivation is refused.
	if _, err := svc.ToggleActive(ctx, actor, admin.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden on self toggle, got %v", err)
	}

	// Non-admins are refused.
	peon := Principal{UserID: target.ID, Role: RoleUser}
	if _, err := svc.ToggleActive(ctx, peon, admin.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-admin, got %v", err)
	}
}

func TestListUsersAdminOnly(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "alice@example.com", "Sup3r#Secret"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.ListUsers(ctx, Principal{UserID: "x", Role: RoleManager}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for manager, got %v", err)
	}
	users, err := svc.ListUsers(ctx, Principal{UserID: "x", Role: RoleAdmin})
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}
}
