package behavior

import "errors"

// Sentinel kinds for snapshot decoding errors.
var (
	ErrMalformedSnapshot = errors.New("malformed snapshot")
)
