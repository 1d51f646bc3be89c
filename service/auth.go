package service

import (
	"errors"
	"fmt"

	"github.com/taskhub/taskhub/auth"
	"github.com/taskhub/taskhub/policy"
	"github.com/taskhub/taskhub/store"
)

// SystemCredentials is the static shared-secret pair accepted for the
// machine-to-machine token grant.
type SystemCredentials struct {
	Username string
	Password string
}

// AuthService validates credentials and issues identity tokens. Login,
// registration, and the system grant all produce the same token shape, so
// downstream services only ever need the (subject id, role) pair.
type AuthService struct {
	store  *store.Store
	tokens *auth.TokenIssuer
	system SystemCredentials
}

// NewAuthService creates an AuthService.
func NewAuthService(s *store.Store, tokens *auth.TokenIssuer, system SystemCredentials) *AuthService {
	return &AuthService{store: s, tokens: tokens, system: system}
}

// Session is the result of a successful login or registration.
type Session struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// Login validates a username/password pair and issues a token carrying the
// user's role and id. Every failure mode returns ErrInvalidCredentials; the
// caller cannot tell an unknown user from a wrong password.
func (s *AuthService) Login(username, password string) (*Session, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.store.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.issueSession(user)
}

// Register creates an account with the default "User" role and issues a
// token exactly as Login does.
func (s *AuthService) Register(username, name, password string) (*Session, error) {
	if username == "" {
		return nil, fmt.Errorf("username required: %w", ErrInvalidArgument)
	}
	if password == "" {
		return nil, fmt.Errorf("password required: %w", ErrInvalidArgument)
	}

	role, err := s.store.EnsureRole(policy.RoleUser)
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &store.User{
		Username:     username,
		Name:         name,
		PasswordHash: hash,
		RoleID:       role.ID,
	}
	if _, err := s.store.CreateUser(user); err != nil {
		return nil, err // ErrDuplicate surfaces as ErrConflict
	}

	return s.issueSession(user)
}

// issueSession resolves the user's role name and issues a token for it.
func (s *AuthService) issueSession(user *store.User) (*Session, error) {
	roleName := policy.RoleUser
	if role, err := s.store.GetRole(user.RoleID); err == nil {
		roleName = role.Name
	}
	token, err := s.tokens.Issue(user.Username, roleName, user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, Role: roleName}, nil
}

// ValidateSystemCredentials performs the exact-match check for the
// privileged machine-to-machine grant.
func (s *AuthService) ValidateSystemCredentials(username, password string) bool {
	return s.system.Username != "" &&
		username == s.system.Username && password == s.system.Password
}

// SystemToken issues an Admin token with subject id 0 against the static
// system credentials.
func (s *AuthService) SystemToken(username, password string) (string, error) {
	if !s.ValidateSystemCredentials(username, password) {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(username, policy.RoleAdmin, 0)
}
