package service

import (
	"errors"
	"testing"

	"github.com/taskhub/taskhub/auth"
	"github.com/taskhub/taskhub/policy"
	"github.com/taskhub/taskhub/store"
)

func newAuthService(t *testing.T) (*AuthService, *store.Store) {
	t.Helper()
	s := newTestStore(t)
	tokens := auth.NewTokenIssuer("test-secret-key-1234567890")
	svc := NewAuthService(s, tokens, SystemCredentials{Username: "sys", Password: "syspass"})
	return svc, s
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	svc, _ := newAuthService(t)

	reg, err := svc.Register("alice", "Alice", "hunter2")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.Role != policy.RoleUser {
		t.Errorf("Register role = %q, want User", reg.Role)
	}
	if reg.Token == "" {
		t.Error("Register returned empty token")
	}

	login, err := svc.Login("alice", "hunter2")
	if err != nil {
		t.Fatalf("Login after Register: %v", err)
	}
	if login.Role != policy.RoleUser {
		t.Errorf("Login role = %q, want User", login.Role)
	}
}

func TestAuthService_Login_FailuresIndistinguishable(t *testing.T) {
	svc, _ := newAuthService(t)
	if _, err := svc.Register("alice", "Alice", "hunter2"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "alice", "wrong"},
		{"unknown user", "nobody", "hunter2"},
		{"blank username", "", "hunter2"},
		{"blank password", "alice", ""},
	}
	for _, tc := range cases {
		_, err := svc.Login(tc.username, tc.password)
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("%s: got %v, want ErrInvalidCredentials", tc.name, err)
		}
	}
}

func TestAuthService_Login_BlankStoredHash(t *testing.T) {
	svc, s := newAuthService(t)

	role, _ := s.EnsureRole(policy.RoleUser)
	if _, err := s.CreateUser(&store.User{Username: "ghost", RoleID: role.ID}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := svc.Login("ghost", "anything"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for blank stored hash, got %v", err)
	}
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	svc, _ := newAuthService(t)
	if _, err := svc.Register("alice", "Alice", "hunter2"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, err := svc.Register("alice", "Other Alice", "different")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestAuthService_Register_BlankPassword(t *testing.T) {
	svc, _ := newAuthService(t)
	_, err := svc.Register("alice", "Alice", "")
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestAuthService_Register_PreservesExistingRole(t *testing.T) {
	svc, s := newAuthService(t)

	if _, err := svc.Register("alice", "Alice", "a"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register("bob", "Bob", "b"); err != nil {
		t.Fatalf("Register again: %v", err)
	}
	roles, err := s.ListRoles()
	if err != nil {
		t.Fatalf("ListRoles: %v", err)
	}
	n := 0
	for _, r := range roles {
		if r.Name == policy.RoleUser {
			n++
		}
	}
	if n != 1 {
		t.Errorf("expected a single User role row, got %d", n)
	}
}

func TestAuthService_SystemToken(t *testing.T) {
	svc, _ := newAuthService(t)
	tokens := auth.NewTokenIssuer("test-secret-key-1234567890")

	token, err := svc.SystemToken("sys", "syspass")
	if err != nil {
		t.Fatalf("SystemToken: %v", err)
	}
	p, err := tokens.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if p.UserID != 0 || p.Role != policy.RoleAdmin {
		t.Errorf("system principal = %+v, want id 0 role Admin", p)
	}

	if _, err := svc.SystemToken("sys", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong system password: got %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.SystemToken("other", "syspass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong system user: got %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthService_SystemCredentialsUnconfigured(t *testing.T) {
	s := newTestStore(t)
	svc := NewAuthService(s, auth.NewTokenIssuer("secret"), SystemCredentials{})
	if svc.ValidateSystemCredentials("", "") {
		t.Error("empty configured credentials must never validate")
	}
}
