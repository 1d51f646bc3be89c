package service

import (
	"errors"
	"fmt"

	"github.com/taskhub/taskhub/policy"
	"github.com/taskhub/taskhub/store"
)

// TaskService implements task CRUD and status transitions, enforcing the
// owner-or-admin policy and the field-level restrictions on status and
// assignee.
type TaskService struct {
	store *store.Store
}

// NewTaskService creates a TaskService.
func NewTaskService(s *store.Store) *TaskService {
	return &TaskService{store: s}
}

// TaskView is the read projection of a task. AssignedUserID is 0 when the
// task has no assignee; AssignedUser carries the assignee's username, or nil
// when there is no assignee or the user no longer exists.
type TaskView struct {
	ID             int64        `json:"id"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Status         store.Status `json:"status"`
	AssignedUserID int64        `json:"assignedUserId"`
	AssignedUser   *string      `json:"assignedUser"`
}

// CreateTask carries the full field set for task creation.
type CreateTask struct {
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Status         store.Status `json:"status"`
	AssignedUserID *int64       `json:"assignedUserId"`
}

// UpdateTask carries a partial update. Empty strings mean "leave unchanged";
// the zero status value doubles as "not provided", so an explicit ToDo
// cannot be distinguished from an absent status here.
type UpdateTask struct {
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Status         store.Status `json:"status"`
	AssignedUserID *int64       `json:"assignedUserId"`
}

// List returns a page of tasks: the full set for admins, only the caller's
// assigned tasks otherwise. Pagination applies after the role filter.
func (s *TaskService) List(p policy.Principal, pg Pagination) ([]TaskView, error) {
	pg = pg.normalize()
	filter := store.TaskFilter{Limit: pg.PageSize, Offset: pg.offset()}
	if !policy.IsAdmin(p.Role) {
		filter.AssignedUserID = &p.UserID
	}

	tasks, err := s.store.ListTasks(filter)
	if err != nil {
		return nil, err
	}

	views := make([]TaskView, 0, len(tasks))
	names := map[int64]*string{}
	for _, t := range tasks {
		views = append(views, s.view(t, names))
	}
	return views, nil
}

// Get returns a single task. A missing id reports ErrNotFound before any
// permission check; a non-admin who is not the assignee gets
// ErrUnauthorized.
func (s *TaskService) Get(id int64, p policy.Principal) (*TaskView, error) {
	t, err := s.store.GetTask(id)
	if err != nil {
		return nil, err
	}
	if !policy.OwnsOrAdmin(p, taskOwner(t)) {
		return nil, fmt.Errorf("view task %d: %w", id, ErrUnauthorized)
	}
	v := s.view(t, map[int64]*string{})
	return &v, nil
}

// Create persists a new task. Any authenticated caller may create a task
// with any status and assignee; no ownership is assigned to the creator.
func (s *TaskService) Create(in CreateTask) (int64, error) {
	if in.Title == "" {
		return 0, fmt.Errorf("title required: %w", ErrInvalidArgument)
	}
	if !in.Status.Valid() {
		return 0, fmt.Errorf("status %d: %w", int(in.Status), ErrInvalidArgument)
	}
	t := &store.Task{
		Title:          in.Title,
		Description:    in.Description,
		Status:         in.Status,
		AssignedUserID: in.AssignedUserID,
	}
	return s.store.CreateTask(t)
}

// Update applies a partial update. Title and description are open to any
// caller who passes the owner-or-admin check. Status is applied only when
// non-zero AND the caller is admin: a non-admin providing any non-zero
// status is rejected even if it equals the current value, because the
// zero-value sentinel cannot distinguish "unset" from an explicit ToDo.
// Assignee changes are admin-only and the target user must exist.
func (s *TaskService) Update(id int64, in UpdateTask, p policy.Principal) error {
	t, err := s.store.GetTask(id)
	if err != nil {
		return err
	}
	if !policy.OwnsOrAdmin(p, taskOwner(t)) {
		return fmt.Errorf("update task %d: %w", id, ErrUnauthorized)
	}

	if in.Title != "" {
		t.Title = in.Title
	}
	if in.Description != "" {
		t.Description = in.Description
	}

	if in.Status != store.StatusToDo {
		if !policy.CanChangeRestrictedField(p.Role) {
			return fmt.Errorf("update task status: %w", ErrUnauthorized)
		}
		if !in.Status.Valid() {
			return fmt.Errorf("status %d: %w", int(in.Status), ErrInvalidArgument)
		}
		t.Status = in.Status
	}

	if in.AssignedUserID != nil {
		if !policy.CanChangeRestrictedField(p.Role) {
			return fmt.Errorf("update task assignee: %w", ErrUnauthorized)
		}
		if _, err := s.store.GetUser(*in.AssignedUserID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("assigned user %d: %w", *in.AssignedUserID, ErrInvalidArgument)
			}
			return err
		}
		t.AssignedUserID = in.AssignedUserID
	}

	return s.store.UpdateTask(t)
}

// Delete removes a task. A missing id reports ErrNotFound; otherwise the
// caller must be admin or the assignee.
func (s *TaskService) Delete(id int64, p policy.Principal) error {
	t, err := s.store.GetTask(id)
	if err != nil {
		return err
	}
	if !policy.OwnsOrAdmin(p, taskOwner(t)) {
		return fmt.Errorf("delete task %d: %w", id, ErrUnauthorized)
	}
	return s.store.DeleteTask(id)
}

// ChangeStatus sets the status unconditionally after the owner-or-admin
// check. Unlike Update there is no zero-value sentinel here: an explicit
// ToDo is a valid transition.
func (s *TaskService) ChangeStatus(id int64, status store.Status, p policy.Principal) error {
	if !status.Valid() {
		return fmt.Errorf("status %d: %w", int(status), ErrInvalidArgument)
	}
	t, err := s.store.GetTask(id)
	if err != nil {
		return err
	}
	if !policy.OwnsOrAdmin(p, taskOwner(t)) {
		return fmt.Errorf("change status of task %d: %w", id, ErrUnauthorized)
	}
	t.Status = status
	return s.store.UpdateTask(t)
}

// taskOwner resolves the task's owner id for access checks; 0 means no
// owner, which only admins pass.
func taskOwner(t *store.Task) int64 {
	if t.AssignedUserID == nil {
		return 0
	}
	return *t.AssignedUserID
}

// view builds the projection, caching username lookups across one List call.
// An assignee that no longer resolves yields a nil name, never an error.
func (s *TaskService) view(t *store.Task, names map[int64]*string) TaskView {
	v := TaskView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
	}
	if t.AssignedUserID == nil {
		return v
	}
	v.AssignedUserID = *t.AssignedUserID
	name, ok := names[*t.AssignedUserID]
	if !ok {
		if u, err := s.store.GetUser(*t.AssignedUserID); err == nil {
			name = &u.Username
		}
		names[*t.AssignedUserID] = name
	}
	v.AssignedUser = name
	return v
}
