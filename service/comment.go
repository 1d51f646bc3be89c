package service

import (
	"fmt"
	"time"

	"github.com/taskhub/taskhub/policy"
	"github.com/taskhub/taskhub/store"
)

// CommentService implements comment CRUD. Visibility is scoped to the parent
// task's assignee unless the caller is admin; deletion is author-or-admin.
type CommentService struct {
	store *store.Store
}

// NewCommentService creates a CommentService.
func NewCommentService(s *store.Store) *CommentService {
	return &CommentService{store: s}
}

// CommentView is the read projection of a comment. UserName is the author's
// username, or nil when the author no longer exists.
type CommentView struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	TaskID    int64     `json:"taskId"`
	UserID    int64     `json:"userId"`
	UserName  *string   `json:"userName"`
	CreatedAt time.Time `json:"createdAt"`
}

// List returns a page of comments, optionally filtered to one task. For
// non-admins only comments whose parent task is assigned to the caller are
// returned; comments on deleted tasks are excluded by that scoping.
func (s *CommentService) List(p policy.Principal, taskID *int64, pg Pagination) ([]CommentView, error) {
	pg = pg.normalize()
	filter := store.CommentFilter{TaskID: taskID, Limit: pg.PageSize, Offset: pg.offset()}
	if !policy.IsAdmin(p.Role) {
		filter.TaskAssignee = &p.UserID
	}

	comments, err := s.store.ListComments(filter)
	if err != nil {
		return nil, err
	}

	views := make([]CommentView, 0, len(comments))
	names := map[int64]*string{}
	for _, c := range comments {
		name, ok := names[c.AuthorID]
		if !ok {
			if u, err := s.store.GetUser(c.AuthorID); err == nil {
				name = &u.Username
			}
			names[c.AuthorID] = name
		}
		views = append(views, CommentView{
			ID:        c.ID,
			Content:   c.Content,
			TaskID:    c.TaskID,
			UserID:    c.AuthorID,
			UserName:  name,
			CreatedAt: c.CreatedAt,
		})
	}
	return views, nil
}

// Create attaches a comment to a task with the caller as author. The
// creation timestamp is set server-side.
func (s *CommentService) Create(content string, taskID int64, p policy.Principal) (int64, error) {
	if content == "" {
		return 0, fmt.Errorf("content required: %w", ErrInvalidArgument)
	}
	c := &store.Comment{
		Content:  content,
		TaskID:   taskID,
		AuthorID: p.UserID,
	}
	return s.store.CreateComment(c)
}

// Delete removes a comment. A missing id reports ErrNotFound; otherwise the
// caller must be admin or the original author.
func (s *CommentService) Delete(id int64, p policy.Principal) error {
	c, err := s.store.GetComment(id)
	if err != nil {
		return err
	}
	if !policy.OwnsOrAdmin(p, c.AuthorID) {
		return fmt.Errorf("delete comment %d: %w", id, ErrUnauthorized)
	}
	return s.store.DeleteComment(id)
}
