package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver
)

// Sentinel errors returned by store operations. Callers compare with
// errors.Is; the service layer maps them onto its outcome taxonomy.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

const schema = `
CREATE TABLE IF NOT EXISTS roles (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	username      TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL DEFAULT '',
	role_id       INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	title            TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	status           INTEGER NOT NULL DEFAULT 0,
	assigned_user_id INTEGER
);

CREATE TABLE IF NOT EXISTS comments (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	content    TEXT NOT NULL,
	task_id    INTEGER NOT NULL,
	author_id  INTEGER NOT NULL,
	created_at DATETIME NOT NULL
);

INSERT INTO roles (name) VALUES ('Admin'), ('User')
	ON CONFLICT(name) DO NOTHING;
`

// Store persists TaskHub entities in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database at dbPath and ensures the schema
// exists. The two built-in roles are seeded so a fresh database can accept
// its first admin. The caller is responsible for calling Close.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	db.SetMaxOpenConns(1) // prevent SQLITE_BUSY
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error { return s.db.Close() }

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// scanner abstracts sql.Row and sql.Rows for the scan helpers.
type scanner interface {
	Scan(dest ...any) error
}

func nullInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
