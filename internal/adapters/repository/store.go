// Package repository keeps the earnings leaderboard.
package repository

import "context"

// Entry represents a leaderboard row.
type Entry struct {
	Rank       int     `json:"rank"`
	UserID     string  `json:"user_id"`
	Total      float64 `json:"total"`
	Events     int     `json:"events"`
	LastSource string  `json:"last_source,omitempty"`
}

// Store provides read/write access to the leaderboard.
type Store interface {
	// Add credits amount to userID and returns the new total.
	Add(ctx context.Context, userID string, amount float64, source string) (float64, error)

	// Rank returns the current rank and total for a user.
	// Returns ErrNotFound if the user has never earned.
	Rank(ctx context.Context, userID string) (Entry, error)

	// TopN returns the top-N entries ordered by total desc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of ranked users.
	Count(ctx context.Context) int
}
