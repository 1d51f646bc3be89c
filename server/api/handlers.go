// Package api implements the REST handlers for the TaskHub domain services.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/taskhub/taskhub/policy"
	"github.com/taskhub/taskhub/service"
	"github.com/taskhub/taskhub/store"
)

// Handlers bundles all REST API handler dependencies.
type Handlers struct {
	Tasks     *service.TaskService
	Users     *service.UserService
	Comments  *service.CommentService
	Dashboard *service.DashboardService
	Logger    *slog.Logger
	Version   string
}

// RegisterRoutes registers all protected API routes on the given mux. The
// caller is expected to wrap the mux in the auth middleware; every handler
// here assumes a principal in the request context.
func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/tasks", h.listTasks)
	mux.HandleFunc("POST /api/tasks", h.createTask)
	mux.HandleFunc("GET /api/tasks/{id}", h.getTask)
	mux.HandleFunc("PUT /api/tasks/{id}", h.updateTask)
	mux.HandleFunc("DELETE /api/tasks/{id}", h.deleteTask)
	mux.HandleFunc("PATCH /api/tasks/{id}/status", h.changeTaskStatus)

	mux.HandleFunc("GET /api/users", h.listUsers)
	mux.HandleFunc("GET /api/users/{id}", h.getUser)
	mux.HandleFunc("PUT /api/users/{id}", h.updateUser)
	mux.HandleFunc("DELETE /api/users/{id}", h.deleteUser)

	mux.HandleFunc("GET /api/comments", h.listComments)
	mux.HandleFunc("POST /api/comments", h.createComment)
	mux.HandleFunc("DELETE /api/comments/{id}", h.deleteComment)

	mux.HandleFunc("GET /api/dashboard", h.dashboard)

	mux.HandleFunc("GET /api/version", h.version)
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps the service error taxonomy onto HTTP status codes.
// This is the single place domain failures become responses; handlers never
// inspect error text.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// principal extracts the caller set by the auth middleware.
func principal(r *http.Request, w http.ResponseWriter) (policy.Principal, bool) {
	p, ok := policy.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no principal")
	}
	return p, ok
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// pagination reads pageNumber/pageSize query parameters.
func pagination(r *http.Request) service.Pagination {
	q := r.URL.Query()
	pg := service.Pagination{}
	if n, err := strconv.Atoi(q.Get("pageNumber")); err == nil {
		pg.PageNumber = n
	}
	if n, err := strconv.Atoi(q.Get("pageSize")); err == nil {
		pg.PageSize = n
	}
	return pg
}

// --- Task handlers ---

func (h *Handlers) listTasks(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r, w)
	if !ok {
		return
	}
	tasks, err := h.Tasks.List(p, pagination(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *Handlers) getTask(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r, w)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	task, err := h.Tasks.Get(id, p)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *Handlers) createTask(w http.ResponseWriter, r *http.Request) {
	if _, ok := principal(r, w); !ok {
		return
	}
	var in service.CreateTask
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	id, err := h.Tasks.Create(in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handlers) updateTask(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r, w)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var in service.UpdateTask
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := h.Tasks.Update(id, in, p); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "task updated"})
}

func (h *Handlers) deleteTask(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r, w)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.Tasks.Delete(id, p); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// changeStatusRequest is the body accepted by PATCH /api/tasks/{id}/status.
type changeStatusRequest struct {
	Status store.Status `json:"status"`
}

func (h *Handlers) changeTaskStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r, w)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req changeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := h.Tasks.ChangeStatus(id, req.Status, p); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "task status updated"})
}

// --- User handlers ---

func (h *Handlers) listUsers(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r, w)
	if !ok {
		return
	}
	// Admin-only at the transport boundary; the service itself does not
	// filter.
	if !policy.IsAdmin(p.Role) {
		writeError(w, http.StatusForbidden, "admin only")
		return
	}
	users, err := h.Users.List(pagination(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handlers) getUser(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r, w)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	user, err := h.Users.Get(id, p)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// CreateUserHandler returns the user creation handler for registration
// outside the auth middleware: it is deliberately anonymous, as it is the
// only way to provision the first admin account.
func (h *Handlers) CreateUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in service.CreateUser
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		id, err := h.Users.Create(in)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
	}
}

func (h *Handlers) updateUser(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r, w)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var in service.UpdateUser
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := h.Users.Update(id, in, p); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "user updated"})
}

func (h *Handlers) deleteUser(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r, w)
	if !ok {
		return
	}
	if !policy.IsAdmin(p.Role) {
		writeError(w, http.StatusForbidden, "admin only")
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.Users.Delete(id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Comment handlers ---

func (h *Handlers) listComments(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r, w)
	if !ok {
		return
	}
	var taskID *int64
	if v := r.URL.Query().Get("taskId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid taskId")
			return
		}
		taskID = &id
	}
	comments, err := h.Comments.List(p, taskID, pagination(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// createCommentRequest is the body accepted by POST /api/comments.
type createCommentRequest struct {
	Content string `json:"content"`
	TaskID  int64  `json:"taskId"`
}

func (h *Handlers) createComment(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r, w)
	if !ok {
		return
	}
	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	id, err := h.Comments.Create(req.Content, req.TaskID, p)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handlers) deleteComment(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r, w)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.Comments.Delete(id, p); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Dashboard ---

func (h *Handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r, w)
	if !ok {
		return
	}
	var view *service.DashboardView
	var err error
	if policy.IsAdmin(p.Role) {
		view, err = h.Dashboard.AdminView()
	} else {
		view, err = h.Dashboard.UserView(p.UserID)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// --- Status / version ---

func (h *Handlers) status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": h.Version,
	})
}

// StatusHandler returns the status handler function for external registration.
func (h *Handlers) StatusHandler() http.HandlerFunc {
	return h.status
}

func (h *Handlers) version(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": h.Version,
	})
}
