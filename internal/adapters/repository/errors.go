package repository

import "errors"

// Sentinel kinds for leaderboard errors.
var (
	ErrNotFound      = errors.New("user not ranked")
	ErrInvalidLimit  = errors.New("invalid leaderboard limit")
	ErrInvalidAmount = errors.New("invalid earning amount")
)
