// Package store defines the TaskHub entities and their SQLite persistence.
package store

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status represents the lifecycle state of a task. The zero value is
// StatusToDo, which task updates also use as the "not provided" sentinel.
type Status int

const (
	StatusToDo Status = iota
	StatusInProgress
	StatusCompleted
	StatusCancelled
)

var statusNames = map[Status]string{
	StatusToDo:       "ToDo",
	StatusInProgress: "InProgress",
	StatusCompleted:  "Completed",
	StatusCancelled:  "Cancelled",
}

// String returns the wire name of the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// ParseStatus converts a wire name back to a Status.
func ParseStatus(name string) (Status, error) {
	for s, n := range statusNames {
		if n == name {
			return s, nil
		}
	}
	return StatusToDo, fmt.Errorf("unknown status %q", name)
}

// MarshalJSON encodes the status as its wire name.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts either a wire name or a bare integer.
func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		if name == "" {
			*s = StatusToDo
			return nil
		}
		parsed, err := ParseStatus(name)
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid status %s", data)
	}
	*s = Status(n)
	if !s.Valid() {
		return fmt.Errorf("unknown status %d", n)
	}
	return nil
}

// User is an account that can authenticate and own tasks.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
	RoleID       int64  `json:"role_id"`
}

// Role names a privilege level. In practice only "Admin" and "User" exist,
// but the schema permits arbitrary names.
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Task is a unit of work, optionally assigned to a user. The assignee is the
// task's owner for access-control purposes; an unassigned task is visible to
// admins only.
type Task struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Status         Status `json:"status"`
	AssignedUserID *int64 `json:"assigned_user_id,omitempty"`
}

// Comment is a note attached to a task. The author is its owner for
// access-control purposes.
type Comment struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	TaskID    int64     `json:"task_id"`
	AuthorID  int64     `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}
