package api

import (
	"fmt"
	"net/http"
	"time"

	service "github.com/goldedge/rewards/internal/app"
	"github.com/goldedge/rewards/internal/domain/fraud"
	"github.com/goldedge/rewards/internal/domain/model"
	"github.com/goldedge/rewards/internal/domain/tasks"
)

// EngineDependencies exposes the stateless engine operations.
type EngineDependencies interface {
	GenerateTasks(tierID int, date time.Time) (tasks.Batch, error)
	Evaluate(data []byte) (service.Evaluation, error)
	Assess(amount float64, history []model.Transaction) (fraud.Assessment, error)
}

// EngineHandler serves the engine endpoints that run on caller-supplied
// input.
type EngineHandler struct {
	deps EngineDependencies
	now  func() time.Time
}

// NewEngineHandler creates a new engine handler.
func NewEngineHandler(deps EngineDependencies) *EngineHandler {
	return &EngineHandler{deps: deps, now: time.Now}
}

type generateRequest struct {
	Tier int    `json:"tier"`
	Date string `json:"date,omitempty"`
}

type assessRequest struct {
	Amount  *float64            `json:"amount"`
	History []model.Transaction `json:"history"`
}

// HandleTasks handles POST /engine/tasks with {"tier": n, "date": "YYYY-MM-DD"}.
// A missing date means today.
func (h *EngineHandler) HandleTasks(w http.ResponseWriter, r *http.Request) {
	const op = "api.engine_tasks"
	var req generateRequest
	if err := decode(r, w, &req, false); err != nil {
		fail(w, r, op, err)
		return
	}
	date := h.now()
	if req.Date != "" {
		d, err := time.Parse(time.DateOnly, req.Date)
		if err != nil {
			fail(w, r, op, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrBadRequest))
			return
		}
		date = d
	}
	batch, err := h.deps.GenerateTasks(req.Tier, date)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

// HandleAnalyze handles POST /engine/analyze with a raw user snapshot.
func (h *EngineHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.engine_analyze"
	body, err := readBody(r, w)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	ev, err := h.deps.Evaluate(body)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// HandleAssess handles POST /engine/assess with {"amount": x, "history": [...]}.
func (h *EngineHandler) HandleAssess(w http.ResponseWriter, r *http.Request) {
	const op = "api.engine_assess"
	var req assessRequest
	if err := decode(r, w, &req, false); err != nil {
		fail(w, r, op, err)
		return
	}
	if req.Amount == nil {
		fail(w, r, op, fmt.Errorf("%w: amount is required", ErrBadRequest))
		return
	}
	a, err := h.deps.Assess(*req.Amount, req.History)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
