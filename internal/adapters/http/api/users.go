package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	service "github.com/goldedge/rewards/internal/app"
)

// UserDependencies covers account operations.
type UserDependencies interface {
	Register(ctx context.Context, r service.Registration) (service.UserView, error)
	User(ctx context.Context, userID string) (service.UserView, error)
	Activate(ctx context.Context, userID string, tierID int) (service.UserView, error)
	ClaimWelcomeBonus(ctx context.Context, userID string) (service.UserView, error)
	SuspendUser(ctx context.Context, userID string, suspended bool) (service.UserView, error)
	Team(ctx context.Context, userID string) ([]service.TeamMember, error)
}

// UserHandler handles account requests.
type UserHandler struct {
	deps UserDependencies
}

// NewUserHandler creates a new user handler.
func NewUserHandler(deps UserDependencies) *UserHandler {
	return &UserHandler{deps: deps}
}

type activateRequest struct {
	Tier *int `json:"tier"`
}

type suspendRequest struct {
	Suspended *bool `json:"suspended"`
}

// HandleRegister handles POST /users.
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	const op = "api.register"
	var req service.Registration
	if err := decode(r, w, &req, false); err != nil {
		fail(w, r, op, err)
		return
	}
	u, err := h.deps.Register(r.Context(), req)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// HandleGet handles GET /users/{userID}.
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	u, err := h.deps.User(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		fail(w, r, "api.get_user", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// HandleActivate handles POST /users/{userID}/activate with {"tier": n}.
func (h *UserHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	const op = "api.activate"
	var req activateRequest
	if err := decode(r, w, &req, false); err != nil {
		fail(w, r, op, err)
		return
	}
	if req.Tier == nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	u, err := h.deps.Activate(r.Context(), chi.URLParam(r, "userID"), *req.Tier)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// HandleBonus handles POST /users/{userID}/bonus.
func (h *UserHandler) HandleBonus(w http.ResponseWriter, r *http.Request) {
	u, err := h.deps.ClaimWelcomeBonus(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		fail(w, r, "api.claim_bonus", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// HandleTeam handles GET /users/{userID}/team.
func (h *UserHandler) HandleTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.deps.Team(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		fail(w, r, "api.get_team", err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

// HandleSuspend handles POST /admin/users/{userID}/suspend. An empty body
// suspends; {"suspended": false} lifts the suspension.
func (h *UserHandler) HandleSuspend(w http.ResponseWriter, r *http.Request) {
	const op = "api.suspend"
	var req suspendRequest
	if err := decode(r, w, &req, true); err != nil {
		fail(w, r, op, err)
		return
	}
	suspended := req.Suspended == nil || *req.Suspended
	u, err := h.deps.SuspendUser(r.Context(), chi.URLParam(r, "userID"), suspended)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
