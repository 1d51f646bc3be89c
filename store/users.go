package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// CreateUser persists a new user and sets its ID. Returns ErrDuplicate when
// the username is already taken.
func (s *Store) CreateUser(u *User) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO users (username, name, password_hash, role_id)
		VALUES (?,?,?,?)`,
		u.Username, u.Name, u.PasswordHash, u.RoleID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("username %s: %w", u.Username, ErrDuplicate)
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	u.ID = id
	return id, nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(id int64) (*User, error) {
	row := s.db.QueryRow(`SELECT id, username, name, password_hash, role_id FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return u, err
}

// GetUserByUsername retrieves a user by their unique username.
func (s *Store) GetUserByUsername(username string) (*User, error) {
	row := s.db.QueryRow(`SELECT id, username, name, password_hash, role_id FROM users WHERE username = ?`, username)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	return u, err
}

// ListUsers returns users in creation order. A limit of 0 means no limit.
func (s *Store) ListUsers(limit, offset int) ([]*User, error) {
	q := `SELECT id, username, name, password_hash, role_id FROM users ORDER BY id ASC`
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
	}
	rows, err := s.db.Query(q)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUser saves changes to an existing user.
func (s *Store) UpdateUser(u *User) error {
	res, err := s.db.Exec(`
		UPDATE users SET name=?, password_hash=?, role_id=? WHERE id=?`,
		u.Name, u.PasswordHash, u.RoleID, u.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("user %d: %w", u.ID, ErrNotFound)
	}
	return nil
}

// DeleteUser removes a user by ID. Tasks and comments referencing the user
// are left in place.
func (s *Store) DeleteUser(id int64) error {
	res, err := s.db.Exec(`DELETE FROM users WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return nil
}

// CountUsers returns the total number of users.
func (s *Store) CountUsers() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func scanUser(sc scanner) (*User, error) {
	var u User
	if err := sc.Scan(&u.ID, &u.Username, &u.Name, &u.PasswordHash, &u.RoleID); err != nil {
		return nil, err
	}
	return &u, nil
}
