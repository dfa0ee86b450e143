package content

import "errors"

// Sentinel kinds for content errors.
var (
	ErrDecode     = errors.New("decode content")
	ErrEmptyBanks = errors.New("content banks must not be empty")
)
