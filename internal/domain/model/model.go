// Package model contains domain models passed between layers.
package model

import "time"

// TaskRecord is one entry of a user's completed-task log.
type TaskRecord struct {
	TaskID         string    `json:"task_id"`
	Category       string    `json:"category"`
	CompletionTime int       `json:"completion_time"` // seconds
	Reward         float64   `json:"reward"`
	CompletedAt    time.Time `json:"completed_at"`
}

// Transaction is a wallet movement as seen by the fraud scorer.
type Transaction struct {
	ID     string    `json:"id,omitempty"`
	Amount float64   `json:"amount"`
	Date   time.Time `json:"date"`
}

// UserSnapshot is the read model the engine receives from the account
// layer. The engine never mutates it.
type UserSnapshot struct {
	UserID          string        `json:"user_id"`
	Tier            int           `json:"tier"`
	Balance         float64       `json:"balance"`
	CompletedTasks  []TaskRecord  `json:"completed_tasks,omitempty"`
	TaskHistory     []TaskRecord  `json:"task_history,omitempty"`
	EarningHistory  []float64     `json:"earning_history,omitempty"`
	WithdrawalCount int           `json:"withdrawal_count"`
	ReferralCount   int           `json:"referral_count"`
	Transactions    []Transaction `json:"transactions,omitempty"`
}

// BehaviorProfile summarizes a user's history for recommendations and odds.
type BehaviorProfile struct {
	TaskPreferences     []string  `json:"task_preferences"`
	CompletionTimes     []int     `json:"completion_times"`
	EarningHistory      []float64 `json:"earning_history"`
	WithdrawalFrequency int       `json:"withdrawal_frequency"`
	ReferralActivity    int       `json:"referral_activity"`
}

// RewardEvent records money credited to a user, for the earnings
// leaderboard.
type RewardEvent struct {
	ID     string    `json:"id"`
	UserID string    `json:"user_id"`
	Source string    `json:"source"`
	Amount float64   `json:"amount"`
	At     time.Time `json:"at"`
}
