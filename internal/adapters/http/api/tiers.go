package api

import (
	"net/http"

	"github.com/goldedge/rewards/internal/domain/tier"
)

// TierDependencies exposes the tier catalog.
type TierDependencies interface {
	Tier(id int) (tier.Config, error)
	Tiers() []tier.Config
}

// TierHandler serves the tier catalog.
type TierHandler struct {
	deps TierDependencies
}

// NewTierHandler creates a new tier handler.
func NewTierHandler(deps TierDependencies) *TierHandler {
	return &TierHandler{deps: deps}
}

// HandleList handles GET /tiers.
func (h *TierHandler) HandleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Tiers())
}

// HandleGet handles GET /tiers/{tierID}.
func (h *TierHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_tier"
	id, err := pathInt(r, "tierID")
	if err != nil {
		fail(w, r, op, err)
		return
	}
	cfg, err := h.deps.Tier(id)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}
