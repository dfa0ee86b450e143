// Package wallet holds the rules for deposits and withdrawals.
package wallet

import (
	"fmt"
	"strings"
	"time"
)

// WelcomeBonus is credited once to every new user who claims it.
const WelcomeBonus = 50.0

// Default minimum amounts in KES.
const (
	DefaultMinDeposit    = 100.0
	DefaultMinWithdrawal = 500.0
)

// Kind is the direction of a transaction.
type Kind string

const (
	Deposit    Kind = "deposit"
	Withdrawal Kind = "withdrawal"
)

// Method is the mobile money rail.
type Method string

const (
	MPesa  Method = "mpesa"
	Airtel Method = "airtel"
)

// Status tracks a transaction through review.
type Status string

const (
	Pending   Status = "pending"
	Completed Status = "completed"
	Approved  Status = "approved"
	Rejected  Status = "rejected"
	Flagged   Status = "flagged"
)

// Transaction is a wallet movement requested by a user.
type Transaction struct {
	ID         string     `json:"id"`
	RequestID  string     `json:"request_id"`
	Kind       Kind       `json:"kind"`
	Method     Method     `json:"method"`
	Phone      string     `json:"phone,omitempty"`
	Amount     float64    `json:"amount"`
	Status     Status     `json:"status"`
	RiskScore  float64    `json:"risk_score"`
	Reason     string     `json:"reason,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
}

// Settled reports whether the transaction moved money.
func (t Transaction) Settled() bool {
	return t.Status == Completed || t.Status == Approved
}

// ParseKind accepts a kind name case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Deposit, Withdrawal:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// ParseMethod accepts a method name case-insensitively. Blank means M-Pesa.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return MPesa, nil
	case MPesa, Airtel:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMethod, s)
	}
}

// Limits are the minimum amounts per kind.
type Limits struct {
	MinDeposit    float64
	MinWithdrawal float64
}

// DefaultLimits returns the standard minimums.
func DefaultLimits() Limits {
	return Limits{MinDeposit: DefaultMinDeposit, MinWithdrawal: DefaultMinWithdrawal}
}

// Check fails with ErrBelowMinimum when amount is under the minimum for kind.
func (l Limits) Check(kind Kind, amount float64) error {
	floor := l.MinDeposit
	if kind == Withdrawal {
		floor = l.MinWithdrawal
	}
	if amount < floor {
		return fmt.Errorf("%w: %s of %.2f, minimum %.2f", ErrBelowMinimum, kind, amount, floor)
	}
	return nil
}

// InitialStatus is where a new, fraud-cleared transaction starts. Deposits
// settle at once; withdrawals wait for review.
func InitialStatus(kind Kind) Status {
	if kind == Withdrawal {
		return Pending
	}
	return Completed
}

// Transition validates a review decision. Only pending transactions move,
// and only to approved or rejected.
func Transition(from, to Status) error {
	if from == Pending && (to == Approved || to == Rejected) {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
