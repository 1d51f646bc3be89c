package store

import (
	"errors"
	"os"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	f, err := os.CreateTemp("", "taskhub-*.db")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	f.Close()
	path := f.Name()
	t.Cleanup(func() { os.Remove(path) })

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_CreateAndGetUser(t *testing.T) {
	s := newTestStore(t)

	role, err := s.EnsureRole("User")
	if err != nil {
		t.Fatalf("EnsureRole: %v", err)
	}

	u := &User{Username: "alice", Name: "Alice", PasswordHash: "hash", RoleID: role.ID}
	id, err := s.CreateUser(u)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if id == 0 {
		t.Fatal("CreateUser returned zero ID")
	}

	got, err := s.GetUser(id)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Username != "alice" || got.Name != "Alice" || got.PasswordHash != "hash" {
		t.Errorf("GetUser = %+v, want alice/Alice/hash", got)
	}

	byName, err := s.GetUserByUsername("alice")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if byName.ID != id {
		t.Errorf("GetUserByUsername ID = %d, want %d", byName.ID, id)
	}
}

func TestStore_CreateUser_DuplicateUsername(t *testing.T) {
	s := newTestStore(t)
	role, _ := s.EnsureRole("User")

	u1 := &User{Username: "alice", RoleID: role.ID}
	if _, err := s.CreateUser(u1); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	u2 := &User{Username: "alice", RoleID: role.ID}
	_, err := s.CreateUser(u2)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestStore_GetUser_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetUser(999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_UpdateAndDeleteUser(t *testing.T) {
	s := newTestStore(t)
	role, _ := s.EnsureRole("User")

	u := &User{Username: "alice", Name: "Alice", RoleID: role.ID}
	id, err := s.CreateUser(u)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	u.Name = "Alice B"
	u.PasswordHash = "newhash"
	if err := s.UpdateUser(u); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	got, err := s.GetUser(id)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Name != "Alice B" || got.PasswordHash != "newhash" {
		t.Errorf("after update got %+v", got)
	}

	if err := s.DeleteUser(id); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if err := s.DeleteUser(id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestStore_ListAndCountUsers(t *testing.T) {
	s := newTestStore(t)
	role, _ := s.EnsureRole("User")

	for _, name := range []string{"a", "b", "c"} {
		if _, err := s.CreateUser(&User{Username: name, RoleID: role.ID}); err != nil {
			t.Fatalf("CreateUser %s: %v", name, err)
		}
	}

	users, err := s.ListUsers(2, 1)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("ListUsers: got %d, want 2", len(users))
	}
	if users[0].Username != "b" {
		t.Errorf("offset 1 first user = %q, want b", users[0].Username)
	}

	n, err := s.CountUsers()
	if err != nil {
		t.Fatalf("CountUsers: %v", err)
	}
	if n != 3 {
		t.Errorf("CountUsers = %d, want 3", n)
	}
}

func TestStore_EnsureRole_NoDuplicates(t *testing.T) {
	s := newTestStore(t)

	r1, err := s.EnsureRole("Reviewer")
	if err != nil {
		t.Fatalf("EnsureRole: %v", err)
	}
	r2, err := s.EnsureRole("Reviewer")
	if err != nil {
		t.Fatalf("EnsureRole again: %v", err)
	}
	if r1.ID != r2.ID {
		t.Errorf("EnsureRole created duplicate rows: %d vs %d", r1.ID, r2.ID)
	}

	roles, err := s.ListRoles()
	if err != nil {
		t.Fatalf("ListRoles: %v", err)
	}
	n := 0
	for _, r := range roles {
		if r.Name == "Reviewer" {
			n++
		}
	}
	if n != 1 {
		t.Errorf("got %d Reviewer rows, want 1", n)
	}
}

func TestStore_SeedsBuiltinRoles(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"Admin", "User"} {
		if _, err := s.GetRoleByName(name); err != nil {
			t.Errorf("GetRoleByName %s on fresh database: %v", name, err)
		}
	}
}

func TestStore_GetRoleByName_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetRoleByName("Ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
