package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	service "github.com/goldedge/rewards/internal/app"
	"github.com/goldedge/rewards/internal/domain/tasks"
)

// TaskDependencies covers the daily task flow.
type TaskDependencies interface {
	DailyTasks(ctx context.Context, userID string) (tasks.Batch, error)
	SearchTasks(ctx context.Context, userID, query string) ([]tasks.Task, error)
	CompleteTask(ctx context.Context, userID, taskID string, seconds int) (service.TaskCompletion, error)
}

// TaskHandler handles task requests.
type TaskHandler struct {
	deps TaskDependencies
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(deps TaskDependencies) *TaskHandler {
	return &TaskHandler{deps: deps}
}

type completeRequest struct {
	Seconds int `json:"seconds"`
}

// HandleList handles GET /users/{userID}/tasks.
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	batch, err := h.deps.DailyTasks(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		fail(w, r, "api.daily_tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

// HandleSearch handles GET /users/{userID}/tasks/search?q=.
func (h *TaskHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	found, err := h.deps.SearchTasks(r.Context(), chi.URLParam(r, "userID"), r.URL.Query().Get("q"))
	if err != nil {
		fail(w, r, "api.search_tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

// HandleComplete handles POST /users/{userID}/tasks/{taskID}/complete with an
// optional {"seconds": n} body.
func (h *TaskHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	const op = "api.complete_task"
	var req completeRequest
	if err := decode(r, w, &req, true); err != nil {
		fail(w, r, op, err)
		return
	}
	done, err := h.deps.CompleteTask(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "taskID"), req.Seconds)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, done)
}
