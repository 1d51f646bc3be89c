package auth

import (
	"testing"

	"github.com/taskhub/taskhub/policy"
)

func TestTokenIssuer_IssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer("test-secret-key-1234567890")

	token, err := issuer.Issue("alice", policy.RoleUser, 42)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	p, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if p.UserID != 42 {
		t.Errorf("UserID = %d, want 42", p.UserID)
	}
	if p.Role != policy.RoleUser {
		t.Errorf("Role = %q, want %q", p.Role, policy.RoleUser)
	}
}

func TestTokenIssuer_SystemSubjectZero(t *testing.T) {
	issuer := NewTokenIssuer("secret")

	token, err := issuer.Issue("system", policy.RoleAdmin, 0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	p, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if p.UserID != 0 || p.Role != policy.RoleAdmin {
		t.Errorf("principal = %+v, want id 0 role Admin", p)
	}
}

func TestTokenIssuer_EmptySecret(t *testing.T) {
	issuer := NewTokenIssuer("")
	if _, err := issuer.Issue("alice", policy.RoleUser, 1); err == nil {
		t.Fatal("expected error with empty signing key")
	}
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("correct-secret").Issue("alice", policy.RoleUser, 1)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := NewTokenIssuer("wrong-secret").Verify(token); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestTokenIssuer_Garbage(t *testing.T) {
	issuer := NewTokenIssuer("secret")
	if _, err := issuer.Verify("not.a.token"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("hash equals plaintext")
	}
	if !VerifyPassword("s3cret", hash) {
		t.Error("VerifyPassword rejected the correct password")
	}
	if VerifyPassword("wrong", hash) {
		t.Error("VerifyPassword accepted a wrong password")
	}
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	// A malformed stored hash is a verification failure, never a panic.
	if VerifyPassword("anything", "not-a-bcrypt-hash") {
		t.Error("VerifyPassword accepted a malformed hash")
	}
	if VerifyPassword("anything", "") {
		t.Error("VerifyPassword accepted an empty hash")
	}
}
