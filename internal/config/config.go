// Package config defines service configuration and its defaults.
package config

import (
	"context"
	"fmt"
	"strings"
)

// Validation modes.
const (
	ModeStrict  = "strict"
	ModeLenient = "lenient"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format"`
	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// ValidationMode is strict (reject bad tiers/snapshots) or lenient
	// (fall back to defaults).
	ValidationMode string `koanf:"validation_mode"`
	// RandomSeed seeds task and wheel randomness; 0 seeds from the clock.
	RandomSeed int64 `koanf:"random_seed"`
	// ContentFile optionally overrides the embedded task content banks.
	ContentFile string `koanf:"content_file"`

	// WorkerCount is the number of leaderboard workers; 0 uses the CPU count.
	WorkerCount int `koanf:"worker_count"`
	// QueueSize bounds the pending reward events awaiting the leaderboard.
	QueueSize int `koanf:"queue_size"`
	// DedupeSize bounds the transaction request-id idempotency window.
	DedupeSize int `koanf:"dedupe_size"`
	// MaxDailySpins caps lucky wheel spins per user per day.
	MaxDailySpins int `koanf:"max_daily_spins"`

	// MinDeposit and MinWithdrawal are wallet minimums in KES.
	MinDeposit    float64 `koanf:"min_deposit"`
	MinWithdrawal float64 `koanf:"min_withdrawal"`

	// Recommendation confidences.
	TierUpgradeConfidence float64 `koanf:"tier_upgrade_confidence"`
	TaskConfidence        float64 `koanf:"task_confidence"`
	WithdrawalConfidence  float64 `koanf:"withdrawal_confidence"`
}

// New creates a Config populated with defaults. Context is accepted first to
// follow the project-wide convention; it is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":9080",
		ValidationMode:        ModeStrict,
		RandomSeed:            0,
		WorkerCount:           0,
		QueueSize:             10_000,
		DedupeSize:            50_000,
		MaxDailySpins:         3,
		MinDeposit:            100,
		MinWithdrawal:         500,
		TierUpgradeConfidence: 0.85,
		TaskConfidence:        0.92,
		WithdrawalConfidence:  0.78,
	}
}

// Strict reports whether the strict validation mode is configured.
func (c *Config) Strict() bool {
	return strings.EqualFold(c.ValidationMode, ModeStrict)
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case !strings.EqualFold(c.ValidationMode, ModeStrict) && !strings.EqualFold(c.ValidationMode, ModeLenient):
		return fmt.Errorf("%w: validation_mode must be %q or %q", ErrInvalidConfig, ModeStrict, ModeLenient)
	case c.WorkerCount < 0:
		return fmt.Errorf("%w: worker_count must not be negative", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.DedupeSize <= 0:
		return fmt.Errorf("%w: dedupe_size must be positive", ErrInvalidConfig)
	case c.MaxDailySpins < 0:
		return fmt.Errorf("%w: max_daily_spins must not be negative", ErrInvalidConfig)
	case c.MinDeposit < 0 || c.MinWithdrawal < 0:
		return fmt.Errorf("%w: wallet minimums must not be negative", ErrInvalidConfig)
	}
	for name, v := range map[string]float64{
		"tier_upgrade_confidence": c.TierUpgradeConfidence,
		"task_confidence":         c.TaskConfidence,
		"withdrawal_confidence":   c.WithdrawalConfidence,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s must be within [0,1]", ErrInvalidConfig, name)
		}
	}
	return nil
}
