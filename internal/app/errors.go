package service

import "errors"

// Sentinel kinds for service errors. Engine errors (tier.ErrInvalidTier,
// fraud.ErrInvalidAmount, wallet.ErrBelowMinimum, ...) are wrapped and pass
// through unchanged.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidReferral     = errors.New("unknown referral code")
	ErrNotActivated        = errors.New("account not activated")
	ErrTierDowngrade       = errors.New("cannot move to a lower tier")
	ErrSuspended           = errors.New("account suspended")
	ErrBonusClaimed        = errors.New("welcome bonus already claimed")
	ErrSpinLimit           = errors.New("daily spin limit reached")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDuplicateRequest    = errors.New("duplicate request")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrStopped             = errors.New("service stopped")
)

// errReplay aborts an update without saving when a request id is known.
var errReplay = errors.New("request replayed")
