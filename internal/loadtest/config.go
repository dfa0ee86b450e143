// Package loadtest drives a running rewards API with synthetic users and
// checks that the leaderboard agrees with what each user earned.
package loadtest

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid load test config")

// ErrMismatch reports that the server disagrees with the simulated totals.
var ErrMismatch = errors.New("leaderboard mismatch")

// Config holds configuration for a load test run.
type Config struct {
	BaseURL string        // service root, without trailing slash
	Users   int           // synthetic users to register
	Tier    int           // tier every user activates at
	Tasks   int           // tasks completed per user, 0 means the whole batch
	Workers int           // concurrent requests
	TopN    int           // leaderboard entries to fetch
	Timeout time.Duration // per request
	Settle  time.Duration // how long to wait for the leaderboard to catch up
	Verbose bool
}

// Validate checks for values a run cannot start with.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.BaseURL) == "":
		return fmt.Errorf("%w: base url is required", ErrInvalidConfig)
	case c.Users <= 0:
		return fmt.Errorf("%w: users must be positive", ErrInvalidConfig)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	case c.Tasks < 0:
		return fmt.Errorf("%w: tasks must not be negative", ErrInvalidConfig)
	case c.TopN <= 0:
		return fmt.Errorf("%w: top must be positive", ErrInvalidConfig)
	case c.Timeout <= 0 || c.Settle <= 0:
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidConfig)
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return nil
}

// User is the subset of the user view the run reads back.
type User struct {
	UserID  string  `json:"user_id"`
	Email   string  `json:"email"`
	Tier    int     `json:"tier"`
	Balance float64 `json:"balance"`
}

// Task is the subset of a generated task the run needs.
type Task struct {
	ID              string  `json:"id"`
	DurationSeconds int     `json:"duration_seconds"`
	Reward          float64 `json:"reward"`
	Completed       bool    `json:"completed"`
}

// Batch is a user's daily task batch.
type Batch struct {
	ID    string `json:"id"`
	Tasks []Task `json:"tasks"`
}

// Entry is one leaderboard row.
type Entry struct {
	Rank   int     `json:"rank"`
	UserID string  `json:"user_id"`
	Total  float64 `json:"total"`
	Events int     `json:"events"`
}

// Stats holds the outcome of a run.
type Stats struct {
	Registered         int
	RegisterFailed     int
	TasksCompleted     int
	TasksFailed        int
	Expected           map[string]float64 // user id to simulated earnings
	RanksRetrieved     int
	LeaderboardEntries int
	Mismatches         []string
	StartTime          time.Time
	Duration           time.Duration
}
