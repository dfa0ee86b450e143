package wallet

import "errors"

// Sentinel kinds for wallet errors.
var (
	ErrBelowMinimum      = errors.New("amount below minimum")
	ErrInvalidKind       = errors.New("invalid transaction kind")
	ErrInvalidMethod     = errors.New("invalid payment method")
	ErrInvalidTransition = errors.New("invalid status transition")
)
