package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/goldedge/rewards/internal/adapters/session"
	"github.com/goldedge/rewards/internal/domain/fraud"
	"github.com/goldedge/rewards/internal/domain/referral"
	"github.com/goldedge/rewards/internal/domain/wallet"
	"github.com/goldedge/rewards/pkg/logger"
	"github.com/goldedge/rewards/pkg/metrics"
)

// TransactionRequest is the input of RequestTransaction. RequestID makes
// retries idempotent; blank ids are never deduplicated.
type TransactionRequest struct {
	RequestID string  `json:"request_id"`
	Kind      string  `json:"kind"`
	Method    string  `json:"method,omitempty"`
	Phone     string  `json:"phone,omitempty"`
	Amount    float64 `json:"amount"`
}

// RequestTransaction scores and records a deposit or withdrawal.
//
// Minimums and the balance are checked before the fraud scorer runs, so
// only valid requests are scored. Unsafe requests are recorded as flagged
// and move no money. Safe deposits settle at once and pay referral commissions
// up the chain; safe withdrawals hold the amount until reviewed. A retry
// with a known RequestID returns the original transaction; one that arrives
// while the original is still running gets ErrDuplicateRequest.
func (s *Service) RequestTransaction(ctx context.Context, userID string, req TransactionRequest) (wallet.Transaction, error) {
	kind, err := wallet.ParseKind(req.Kind)
	if err != nil {
		return wallet.Transaction{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	method, err := wallet.ParseMethod(req.Method)
	if err != nil {
		return wallet.Transaction{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	requestID := strings.TrimSpace(req.RequestID)
	if requestID != "" {
		// Claimed before the user lock so a duplicate in flight fails fast
		// instead of queueing behind the original.
		key := userID + "/" + requestID
		if s.deduper.SeenAndRecord(ctx, key) {
			return wallet.Transaction{}, fmt.Errorf("%w: %s in flight", ErrDuplicateRequest, requestID)
		}
		defer s.deduper.Unrecord(ctx, key)
	}

	var (
		tx         wallet.Transaction
		replayed   bool
		assessment fraud.Assessment
	)
	sess, err := s.update(ctx, userID, func(u *session.Session) error {
		if err := usable(u); err != nil {
			return err
		}
		if prev, ok := u.ByRequest(requestID); ok {
			tx, replayed = prev, true
			return errReplay
		}
		if err := s.limits.Check(kind, req.Amount); err != nil {
			return err
		}
		if kind == wallet.Withdrawal && u.Balance < req.Amount {
			return fmt.Errorf("%w: balance %.2f, requested %.2f", ErrInsufficientBalance, u.Balance, req.Amount)
		}

		var err error
		assessment, err = s.scorer.Assess(req.Amount, u.Snapshot().Transactions)
		if err != nil {
			return err
		}
		tx = wallet.Transaction{
			ID:        uuid.NewString(),
			RequestID: requestID,
			Kind:      kind,
			Method:    method,
			Phone:     strings.TrimSpace(req.Phone),
			Amount:    req.Amount,
			RiskScore: assessment.RiskScore,
			Reason:    assessment.Reason,
			CreatedAt: s.now(),
		}
		if !assessment.Safe {
			tx.Status = wallet.Flagged
			u.Transactions = append(u.Transactions, tx)
			return nil
		}

		tx.Status = wallet.InitialStatus(kind)
		switch kind {
		case wallet.Deposit:
			u.Balance += req.Amount
		case wallet.Withdrawal:
			u.Balance -= req.Amount
			u.WithdrawalCount++
		}
		u.Transactions = append(u.Transactions, tx)
		return nil
	})
	if replayed {
		s.logger.Debug(ctx, "transaction replayed", logger.String("userID", userID), logger.String("requestID", requestID))
		return tx, nil
	}
	if err != nil {
		return wallet.Transaction{}, err
	}

	metrics.RecordFraudAssessment(assessment.Safe, assessment.RiskScore)
	metrics.RecordTransaction(string(tx.Kind), string(tx.Status))
	s.logger.Info(ctx, "transaction recorded",
		logger.String("userID", userID),
		logger.String("txID", tx.ID),
		logger.String("kind", string(tx.Kind)),
		logger.String("status", string(tx.Status)),
		logger.Float64("amount", tx.Amount),
		logger.Float64("riskScore", tx.RiskScore),
	)

	if tx.Kind == wallet.Deposit && tx.Status == wallet.Completed {
		s.payCommissions(ctx, sess.UserID, sess.ReferredBy, tx.Amount)
	}
	return tx, nil
}

// payCommissions credits up to four uplines of a settled deposit. Each
// upline books the commission against its direct referral on the path.
func (s *Service) payCommissions(ctx context.Context, depositor, referrer string, amount float64) {
	via := []string{depositor}
	uplines := make([]string, 0, len(referral.Rates))
	for next := referrer; next != "" && len(uplines) < len(referral.Rates); {
		uplines = append(uplines, next)
		u, err := s.load(ctx, next)
		if err != nil {
			s.logger.Warn(ctx, "referral chain broken", logger.String("userID", next), logger.Error(err))
			break
		}
		via = append(via, next)
		next = u.ReferredBy
	}

	day := s.today()
	for _, p := range referral.Commissions(amount, uplines) {
		from := via[p.Level-1]
		_, err := s.update(ctx, p.UserID, func(u *session.Session) error {
			if u.Commissions == nil {
				u.Commissions = make(map[string]float64)
			}
			u.Commissions[from] += p.Amount
			u.Credit(day, p.Amount)
			return nil
		})
		if err != nil {
			s.logger.Warn(ctx, "commission not paid",
				logger.String("userID", p.UserID),
				logger.Int("level", p.Level),
				logger.Error(err),
			)
			continue
		}
		s.publish(ctx, p.UserID, SourceReferral, p.Amount)
	}
}

// ReviewWithdrawal approves or rejects a pending withdrawal. A rejected
// withdrawal returns the held amount to the balance.
func (s *Service) ReviewWithdrawal(ctx context.Context, userID, txID string, approve bool) (wallet.Transaction, error) {
	to := wallet.Rejected
	if approve {
		to = wallet.Approved
	}
	var tx wallet.Transaction
	_, err := s.update(ctx, userID, func(u *session.Session) error {
		i, ok := u.Transaction(txID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrTransactionNotFound, txID)
		}
		t := &u.Transactions[i]
		if t.Kind != wallet.Withdrawal {
			return fmt.Errorf("%w: %s is a %s", wallet.ErrInvalidTransition, txID, t.Kind)
		}
		if err := wallet.Transition(t.Status, to); err != nil {
			return err
		}
		now := s.now()
		t.Status = to
		t.ReviewedAt = &now
		if to == wallet.Rejected {
			u.Balance += t.Amount
		}
		tx = *t
		return nil
	})
	if err != nil {
		return wallet.Transaction{}, err
	}
	metrics.RecordTransaction(string(tx.Kind), string(tx.Status))
	s.logger.Info(ctx, "withdrawal reviewed",
		logger.String("userID", userID),
		logger.String("txID", txID),
		logger.String("status", string(tx.Status)),
	)
	return tx, nil
}
