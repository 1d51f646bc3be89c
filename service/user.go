package service

import (
	"errors"
	"fmt"

	"github.com/taskhub/taskhub/auth"
	"github.com/taskhub/taskhub/policy"
	"github.com/taskhub/taskhub/store"
)

// UserService implements account CRUD with self-or-admin visibility and the
// role-change carve-outs.
type UserService struct {
	store *store.Store
}

// NewUserService creates a UserService.
func NewUserService(s *store.Store) *UserService {
	return &UserService{store: s}
}

// UserView is the read projection of a user. It never carries the password
// hash.
type UserView struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// CreateUser carries the field set for direct user creation (as opposed to
// self-registration, which fixes the role to "User").
type CreateUser struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UpdateUser carries a partial update. Blank fields are left unchanged.
type UpdateUser struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// List returns a page of users joined to their role names. Restricting this
// to admins happens at the transport boundary; the service itself only
// paginates.
func (s *UserService) List(pg Pagination) ([]UserView, error) {
	pg = pg.normalize()
	users, err := s.store.ListUsers(pg.PageSize, pg.offset())
	if err != nil {
		return nil, err
	}

	roles, err := s.store.ListRoles()
	if err != nil {
		return nil, err
	}
	roleNames := make(map[int64]string, len(roles))
	for _, r := range roles {
		roleNames[r.ID] = r.Name
	}

	views := make([]UserView, 0, len(users))
	for _, u := range users {
		name, ok := roleNames[u.RoleID]
		if !ok {
			name = policy.RoleUser
		}
		views = append(views, UserView{ID: u.ID, Username: u.Username, Name: u.Name, Role: name})
	}
	return views, nil
}

// Get returns a single user. A missing id reports ErrNotFound before any
// permission check; callers must be admin or the user themselves.
func (s *UserService) Get(id int64, p policy.Principal) (*UserView, error) {
	u, err := s.store.GetUser(id)
	if err != nil {
		return nil, err
	}
	if !policy.OwnsOrAdmin(p, u.ID) {
		return nil, fmt.Errorf("view user %d: %w", id, ErrUnauthorized)
	}

	roleName := policy.RoleUser
	if r, err := s.store.GetRole(u.RoleID); err == nil {
		roleName = r.Name
	}
	return &UserView{ID: u.ID, Username: u.Username, Name: u.Name, Role: roleName}, nil
}

// Create provisions a user with an explicit role. The role must already
// exist; the password is hashed before it is persisted.
func (s *UserService) Create(in CreateUser) (int64, error) {
	if in.Username == "" {
		return 0, fmt.Errorf("username required: %w", ErrInvalidArgument)
	}
	if in.Password == "" {
		return 0, fmt.Errorf("password required: %w", ErrInvalidArgument)
	}

	role, err := s.store.GetRoleByName(in.Role)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, fmt.Errorf("role %q: %w", in.Role, ErrInvalidArgument)
		}
		return 0, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return 0, err
	}
	u := &store.User{
		Username:     in.Username,
		Name:         in.Name,
		PasswordHash: hash,
		RoleID:       role.ID,
	}
	return s.store.CreateUser(u) // ErrDuplicate surfaces as ErrConflict
}

// Update applies a partial update. Name and password change freely for the
// user themselves or an admin. Role changes additionally require admin, a
// target other than the caller (an admin may never change their own role,
// even to its current value), and a known role name.
func (s *UserService) Update(id int64, in UpdateUser, p policy.Principal) error {
	u, err := s.store.GetUser(id)
	if err != nil {
		return err
	}
	if !policy.OwnsOrAdmin(p, u.ID) {
		return fmt.Errorf("update user %d: %w", id, ErrUnauthorized)
	}

	if in.Name != "" {
		u.Name = in.Name
	}
	if in.Password != "" {
		hash, err := auth.HashPassword(in.Password)
		if err != nil {
			return err
		}
		u.PasswordHash = hash
	}

	if in.Role != "" {
		if !policy.CanChangeRestrictedField(p.Role) {
			return fmt.Errorf("change user role: %w", ErrUnauthorized)
		}
		if !policy.CanChangeRole(p, u.ID) {
			return fmt.Errorf("change own role: %w", ErrInvalidArgument)
		}
		if in.Role != policy.RoleAdmin && in.Role != policy.RoleUser {
			return fmt.Errorf("role %q: %w", in.Role, ErrInvalidArgument)
		}
		role, err := s.store.GetRoleByName(in.Role)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("role %q: %w", in.Role, ErrInvalidArgument)
			}
			return err
		}
		u.RoleID = role.ID
	}

	return s.store.UpdateUser(u)
}

// Delete removes a user. Restricting this to admins happens at the transport
// boundary. Tasks and comments referencing the user are left as orphans.
func (s *UserService) Delete(id int64) error {
	return s.store.DeleteUser(id)
}
