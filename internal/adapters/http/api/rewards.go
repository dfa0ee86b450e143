package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	service "github.com/goldedge/rewards/internal/app"
)

// RewardDependencies covers insights and the lucky wheel.
type RewardDependencies interface {
	Insights(ctx context.Context, userID string) (service.Insights, error)
	Spin(ctx context.Context, userID string) (service.SpinResult, error)
}

// RewardHandler handles insight and wheel requests.
type RewardHandler struct {
	deps RewardDependencies
}

// NewRewardHandler creates a new reward handler.
func NewRewardHandler(deps RewardDependencies) *RewardHandler {
	return &RewardHandler{deps: deps}
}

// HandleInsights handles GET /users/{userID}/insights.
func (h *RewardHandler) HandleInsights(w http.ResponseWriter, r *http.Request) {
	in, err := h.deps.Insights(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		fail(w, r, "api.insights", err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

// HandleSpin handles POST /users/{userID}/wheel/spin.
func (h *RewardHandler) HandleSpin(w http.ResponseWriter, r *http.Request) {
	res, err := h.deps.Spin(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		fail(w, r, "api.spin", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
