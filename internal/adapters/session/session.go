// Package session keeps per-user account state behind an explicit
// load/save store.
package session

import (
	"time"

	"github.com/goldedge/rewards/internal/domain/model"
	"github.com/goldedge/rewards/internal/domain/tasks"
	"github.com/goldedge/rewards/internal/domain/wallet"
)

// DailyEarning is the amount credited to a user on one calendar day.
type DailyEarning struct {
	Day    string  `json:"day"`
	Amount float64 `json:"amount"`
}

// Session is the full account state of one user. Values returned by a Store
// are private copies; changes take effect on Save.
type Session struct {
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	ReferralCode string    `json:"referral_code"`
	ReferredBy   string    `json:"referred_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`

	Tier         int     `json:"tier"`
	Activated    bool    `json:"activated"`
	Suspended    bool    `json:"suspended"`
	Balance      float64 `json:"balance"`
	BonusClaimed bool    `json:"bonus_claimed"`

	Batch           *tasks.Batch         `json:"batch,omitempty"`
	CompletedTasks  []model.TaskRecord   `json:"completed_tasks,omitempty"`
	Earnings        []DailyEarning       `json:"earnings,omitempty"`
	Transactions    []wallet.Transaction `json:"transactions,omitempty"`
	WithdrawalCount int                  `json:"withdrawal_count"`
	ReferralCount   int                  `json:"referral_count"`
	Commissions     map[string]float64   `json:"commissions,omitempty"`

	SpinDay    string `json:"spin_day,omitempty"`
	SpinsToday int    `json:"spins_today"`
}

// Credit adds amount to the balance and to the day's earnings.
func (s *Session) Credit(day string, amount float64) {
	s.Balance += amount
	if n := len(s.Earnings); n > 0 && s.Earnings[n-1].Day == day {
		s.Earnings[n-1].Amount += amount
		return
	}
	s.Earnings = append(s.Earnings, DailyEarning{Day: day, Amount: amount})
}

// Transaction returns the index of transaction id.
func (s *Session) Transaction(id string) (int, bool) {
	for i := range s.Transactions {
		if s.Transactions[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// ByRequest returns the transaction created for requestID.
func (s *Session) ByRequest(requestID string) (wallet.Transaction, bool) {
	if requestID == "" {
		return wallet.Transaction{}, false
	}
	for _, t := range s.Transactions {
		if t.RequestID == requestID {
			return t, true
		}
	}
	return wallet.Transaction{}, false
}

// Snapshot builds the read model the engine consumes.
func (s *Session) Snapshot() *model.UserSnapshot {
	snap := &model.UserSnapshot{
		UserID:          s.UserID,
		Tier:            s.Tier,
		Balance:         s.Balance,
		CompletedTasks:  append([]model.TaskRecord(nil), s.CompletedTasks...),
		TaskHistory:     append([]model.TaskRecord(nil), s.CompletedTasks...),
		WithdrawalCount: s.WithdrawalCount,
		ReferralCount:   s.ReferralCount,
	}
	for _, e := range s.Earnings {
		snap.EarningHistory = append(snap.EarningHistory, e.Amount)
	}
	for _, t := range s.Transactions {
		snap.Transactions = append(snap.Transactions, model.Transaction{ID: t.ID, Amount: t.Amount, Date: t.CreatedAt})
	}
	return snap
}

// Clone returns a deep copy.
func (s *Session) Clone() Session {
	out := *s
	if s.Batch != nil {
		b := s.Batch.Clone()
		out.Batch = &b
	}
	out.CompletedTasks = append([]model.TaskRecord(nil), s.CompletedTasks...)
	out.Earnings = append([]DailyEarning(nil), s.Earnings...)
	out.Transactions = append([]wallet.Transaction(nil), s.Transactions...)
	for i, t := range out.Transactions {
		if t.ReviewedAt != nil {
			at := *t.ReviewedAt
			out.Transactions[i].ReviewedAt = &at
		}
	}
	if s.Commissions != nil {
		out.Commissions = make(map[string]float64, len(s.Commissions))
		for k, v := range s.Commissions {
			out.Commissions[k] = v
		}
	}
	return out
}
