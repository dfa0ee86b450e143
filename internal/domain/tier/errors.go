package tier

import "errors"

// Sentinel kinds for tier errors.
var (
	ErrInvalidTier = errors.New("invalid tier")
)
