package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// TaskFilter controls which tasks are returned by ListTasks.
type TaskFilter struct {
	AssignedUserID *int64 // only tasks assigned to this user
	Limit          int
	Offset         int
}

// CreateTask persists a new task and sets its ID.
func (s *Store) CreateTask(t *Task) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO tasks (title, description, status, assigned_user_id)
		VALUES (?,?,?,?)`,
		t.Title, t.Description, int(t.Status), nullInt(t.AssignedUserID),
	)
	if err != nil {
		return 0, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	t.ID = id
	return id, nil
}

// GetTask retrieves a task by ID.
func (s *Store) GetTask(id int64) (*Task, error) {
	row := s.db.QueryRow(`SELECT id, title, description, status, assigned_user_id FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return t, err
}

// UpdateTask saves changes to an existing task.
func (s *Store) UpdateTask(t *Task) error {
	res, err := s.db.Exec(`
		UPDATE tasks SET title=?, description=?, status=?, assigned_user_id=? WHERE id=?`,
		t.Title, t.Description, int(t.Status), nullInt(t.AssignedUserID), t.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("task %d: %w", t.ID, ErrNotFound)
	}
	return nil
}

// DeleteTask removes a task by ID. Comments referencing the task are left in
// place.
func (s *Store) DeleteTask(id int64) error {
	res, err := s.db.Exec(`DELETE FROM tasks WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return nil
}

// ListTasks returns tasks matching the filter in creation order.
func (s *Store) ListTasks(filter TaskFilter) ([]*Task, error) {
	q := strings.Builder{}
	q.WriteString(`SELECT id, title, description, status, assigned_user_id FROM tasks WHERE 1=1`)
	args := []any{}

	if filter.AssignedUserID != nil {
		q.WriteString(" AND assigned_user_id=?")
		args = append(args, *filter.AssignedUserID)
	}
	q.WriteString(" ORDER BY id ASC")
	if filter.Limit > 0 {
		q.WriteString(fmt.Sprintf(" LIMIT %d", filter.Limit))
		if filter.Offset > 0 {
			q.WriteString(fmt.Sprintf(" OFFSET %d", filter.Offset))
		}
	}

	rows, err := s.db.Query(q.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// CountTasksByStatus returns per-status task counts, optionally restricted to
// a single assignee.
func (s *Store) CountTasksByStatus(assignedUserID *int64) (map[Status]int, error) {
	q := `SELECT status, COUNT(*) FROM tasks`
	args := []any{}
	if assignedUserID != nil {
		q += ` WHERE assigned_user_id=?`
		args = append(args, *assignedUserID)
	}
	q += ` GROUP BY status`

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var status, n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[Status(status)] = n
	}
	return counts, rows.Err()
}

func scanTask(sc scanner) (*Task, error) {
	var t Task
	var status int
	var assigned sql.NullInt64
	if err := sc.Scan(&t.ID, &t.Title, &t.Description, &status, &assigned); err != nil {
		return nil, err
	}
	t.Status = Status(status)
	if assigned.Valid {
		t.AssignedUserID = &assigned.Int64
	}
	return &t, nil
}
