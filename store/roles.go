package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// EnsureRole returns the role with the given name, creating it if absent.
// The insert relies on the UNIQUE constraint and falls back to a re-fetch,
// so concurrent first use of a name cannot produce duplicate rows.
func (s *Store) EnsureRole(name string) (*Role, error) {
	if _, err := s.db.Exec(`INSERT INTO roles (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, name); err != nil {
		return nil, fmt.Errorf("ensure role %s: %w", name, err)
	}
	return s.GetRoleByName(name)
}

// GetRole retrieves a role by ID.
func (s *Store) GetRole(id int64) (*Role, error) {
	row := s.db.QueryRow(`SELECT id, name FROM roles WHERE id = ?`, id)
	r, err := scanRole(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("role %d: %w", id, ErrNotFound)
	}
	return r, err
}

// GetRoleByName retrieves a role by its unique name.
func (s *Store) GetRoleByName(name string) (*Role, error) {
	row := s.db.QueryRow(`SELECT id, name FROM roles WHERE name = ?`, name)
	r, err := scanRole(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("role %s: %w", name, ErrNotFound)
	}
	return r, err
}

// ListRoles returns all roles.
func (s *Store) ListRoles() ([]*Role, error) {
	rows, err := s.db.Query(`SELECT id, name FROM roles ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	var roles []*Role
	for rows.Next() {
		r, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

func scanRole(sc scanner) (*Role, error) {
	var r Role
	if err := sc.Scan(&r.ID, &r.Name); err != nil {
		return nil, err
	}
	return &r, nil
}
