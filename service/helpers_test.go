package service

import (
	"os"
	"testing"

	"github.com/taskhub/taskhub/auth"
	"github.com/taskhub/taskhub/policy"
	"github.com/taskhub/taskhub/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	f, err := os.CreateTemp("", "taskhub-svc-*.db")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	f.Close()
	path := f.Name()
	t.Cleanup(func() { os.Remove(path) })

	s, err := store.Open(path)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedUser creates a user with the given role (creating the role row if
// needed) and returns the user and a matching principal.
func seedUser(t *testing.T, s *store.Store, username, roleName string) (*store.User, policy.Principal) {
	t.Helper()
	role, err := s.EnsureRole(roleName)
	if err != nil {
		t.Fatalf("EnsureRole %s: %v", roleName, err)
	}
	hash, err := auth.HashPassword("password-" + username)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	u := &store.User{Username: username, Name: username, PasswordHash: hash, RoleID: role.ID}
	if _, err := s.CreateUser(u); err != nil {
		t.Fatalf("CreateUser %s: %v", username, err)
	}
	return u, policy.Principal{UserID: u.ID, Role: roleName}
}

// seedTask creates a task assigned to the given user id (or unassigned when
// assignee is nil).
func seedTask(t *testing.T, s *store.Store, title string, assignee *int64) int64 {
	t.Helper()
	id, err := s.CreateTask(&store.Task{Title: title, AssignedUserID: assignee})
	if err != nil {
		t.Fatalf("CreateTask %s: %v", title, err)
	}
	return id
}
