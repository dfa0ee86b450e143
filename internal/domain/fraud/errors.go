package fraud

import "errors"

// Sentinel kinds for fraud scoring errors.
var (
	ErrInvalidAmount = errors.New("invalid amount")
)
