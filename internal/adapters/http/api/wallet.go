package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	service "github.com/goldedge/rewards/internal/app"
	"github.com/goldedge/rewards/internal/domain/wallet"
)

// WalletDependencies covers deposits, withdrawals and their review.
type WalletDependencies interface {
	RequestTransaction(ctx context.Context, userID string, req service.TransactionRequest) (wallet.Transaction, error)
	ReviewWithdrawal(ctx context.Context, userID, txID string, approve bool) (wallet.Transaction, error)
}

// WalletHandler handles wallet requests.
type WalletHandler struct {
	deps WalletDependencies
}

// NewWalletHandler creates a new wallet handler.
func NewWalletHandler(deps WalletDependencies) *WalletHandler {
	return &WalletHandler{deps: deps}
}

// HandleRequest handles POST /users/{userID}/transactions. The
// Idempotency-Key header stands in for a missing request_id.
func (h *WalletHandler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	const op = "api.request_transaction"
	var req service.TransactionRequest
	if err := decode(r, w, &req, false); err != nil {
		fail(w, r, op, err)
		return
	}
	if strings.TrimSpace(req.RequestID) == "" {
		req.RequestID = r.Header.Get(idempotencyKey)
	}
	tx, err := h.deps.RequestTransaction(r.Context(), chi.URLParam(r, "userID"), req)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	status := http.StatusCreated
	if tx.Status == wallet.Pending {
		status = http.StatusAccepted
	}
	writeJSON(w, status, tx)
}

// HandleReview handles POST /admin/users/{userID}/withdrawals/{txID}/{decision}
// where decision is approve or reject.
func (h *WalletHandler) HandleReview(w http.ResponseWriter, r *http.Request) {
	const op = "api.review_withdrawal"
	var approve bool
	switch strings.ToLower(chi.URLParam(r, "decision")) {
	case "approve":
		approve = true
	case "reject":
	default:
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	tx, err := h.deps.ReviewWithdrawal(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "txID"), approve)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}
