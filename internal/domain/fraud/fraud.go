// Package fraud scores wallet transactions with a linear heuristic.
package fraud

import (
	"fmt"
	"math"
	"time"

	"github.com/goldedge/rewards/internal/domain/model"
)

// Reason is reported on every unsafe assessment.
const Reason = "Unusual transaction pattern detected"

// Rule names reported in Assessment.Flags.
const (
	FlagAmountSpike   = "amount_spike"
	FlagHighFrequency = "high_frequency"
	FlagRoundAmount   = "round_amount"
)

// Scores are kept in tenths so sums stay exact.
const (
	spikeTenths     = 3
	frequencyTenths = 4
	roundTenths     = 2
	unsafeTenths    = 5

	spikeFactor       = 5
	frequencyLimit    = 10
	roundUnit         = 100
	roundFloor        = 1000
	frequencyInterval = 24 * time.Hour
)

// Assessment is the verdict on one transaction request.
type Assessment struct {
	Safe      bool     `json:"safe"`
	RiskScore float64  `json:"risk_score"`
	Reason    string   `json:"reason,omitempty"`
	Flags     []string `json:"flags,omitempty"`
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithClock overrides the clock that anchors the 24 hour window.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) {
		if now != nil {
			s.now = now
		}
	}
}

// Scorer is stateless apart from its clock.
type Scorer struct {
	now func() time.Time
}

// NewScorer creates a scorer on the wall clock.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Assess scores amount against the user's recent transactions. Each rule
// adds independently: +0.3 when amount exceeds five times the mean of
// history (an empty history has mean 0), +0.4 when more than ten entries
// fall within the last 24 hours, +0.2 for a multiple of 100 above 1000.
// Scores of 0.5 and above are unsafe.
func (s *Scorer) Assess(amount float64, history []model.Transaction) (Assessment, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Assessment{}, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}

	tenths := 0
	var flags []string

	mean := 0.0
	if len(history) > 0 {
		sum := 0.0
		for _, t := range history {
			sum += t.Amount
		}
		mean = sum / float64(len(history))
	}
	if amount > mean*spikeFactor {
		tenths += spikeTenths
		flags = append(flags, FlagAmountSpike)
	}

	cutoff := s.now().Add(-frequencyInterval)
	recent := 0
	for _, t := range history {
		if t.Date.After(cutoff) {
			recent++
		}
	}
	if recent > frequencyLimit {
		tenths += frequencyTenths
		flags = append(flags, FlagHighFrequency)
	}

	if math.Mod(amount, roundUnit) == 0 && amount > roundFloor {
		tenths += roundTenths
		flags = append(flags, FlagRoundAmount)
	}

	a := Assessment{
		Safe:      tenths < unsafeTenths,
		RiskScore: float64(tenths) / 10,
		Flags:     flags,
	}
	if !a.Safe {
		a.Reason = Reason
	}
	return a, nil
}
