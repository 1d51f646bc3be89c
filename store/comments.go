package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// CommentFilter controls which comments are returned by ListComments.
type CommentFilter struct {
	TaskID *int64 // only comments on this task
	// TaskAssignee restricts results to comments whose parent task is
	// assigned to this user. Comments on deleted or unassigned tasks are
	// excluded by the join.
	TaskAssignee *int64
	Limit        int
	Offset       int
}

// CreateComment persists a new comment and sets its ID and CreatedAt.
func (s *Store) CreateComment(c *Comment) (int64, error) {
	c.CreatedAt = time.Now().UTC()
	res, err := s.db.Exec(`
		INSERT INTO comments (content, task_id, author_id, created_at)
		VALUES (?,?,?,?)`,
		c.Content, c.TaskID, c.AuthorID, c.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert comment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	c.ID = id
	return id, nil
}

// GetComment retrieves a comment by ID.
func (s *Store) GetComment(id int64) (*Comment, error) {
	row := s.db.QueryRow(`SELECT id, content, task_id, author_id, created_at FROM comments WHERE id = ?`, id)
	c, err := scanComment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("comment %d: %w", id, ErrNotFound)
	}
	return c, err
}

// DeleteComment removes a comment by ID.
func (s *Store) DeleteComment(id int64) error {
	res, err := s.db.Exec(`DELETE FROM comments WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("comment %d: %w", id, ErrNotFound)
	}
	return nil
}

// ListComments returns comments matching the filter in creation order.
func (s *Store) ListComments(filter CommentFilter) ([]*Comment, error) {
	q := strings.Builder{}
	q.WriteString(`SELECT c.id, c.content, c.task_id, c.author_id, c.created_at FROM comments c`)
	args := []any{}

	if filter.TaskAssignee != nil {
		q.WriteString(` JOIN tasks t ON t.id = c.task_id AND t.assigned_user_id = ?`)
		args = append(args, *filter.TaskAssignee)
	}
	q.WriteString(` WHERE 1=1`)
	if filter.TaskID != nil {
		q.WriteString(` AND c.task_id = ?`)
		args = append(args, *filter.TaskID)
	}
	q.WriteString(` ORDER BY c.id ASC`)
	if filter.Limit > 0 {
		q.WriteString(fmt.Sprintf(" LIMIT %d", filter.Limit))
		if filter.Offset > 0 {
			q.WriteString(fmt.Sprintf(" OFFSET %d", filter.Offset))
		}
	}

	rows, err := s.db.Query(q.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []*Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func scanComment(sc scanner) (*Comment, error) {
	var c Comment
	if err := sc.Scan(&c.ID, &c.Content, &c.TaskID, &c.AuthorID, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
