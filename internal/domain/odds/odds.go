// Package odds computes lucky wheel win rates and resolves spins.
package odds

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/goldedge/rewards/internal/domain/model"
)

const (
	baseRate        = 0.1
	referralStep    = 0.02
	referralCap     = 0.3
	categoryStep    = 0.01
	categoryCap     = 0.1
	MaxWinRate      = 0.8
	MinWinRate      = baseRate
	DefaultMaxSpins = 3
)

// Prize is one wheel segment. Amount 0 marks the "try again" segment.
// Probability shapes the choice among wins only.
type Prize struct {
	ID          int     `json:"id"`
	Label       string  `json:"label"`
	Amount      float64 `json:"amount"`
	Probability float64 `json:"probability"`
}

// Won reports whether the prize pays out.
func (p Prize) Won() bool { return p.Amount > 0 }

// DefaultPrizeTable returns the standard wheel.
func DefaultPrizeTable() []Prize {
	return []Prize{
		{ID: 1, Label: "50 KES", Amount: 50, Probability: 0.3},
		{ID: 2, Label: "100 KES", Amount: 100, Probability: 0.25},
		{ID: 3, Label: "Try Again", Amount: 0, Probability: 0.2},
		{ID: 4, Label: "200 KES", Amount: 200, Probability: 0.15},
		{ID: 5, Label: "500 KES", Amount: 500, Probability: 0.08},
		{ID: 6, Label: "1000 KES", Amount: 1000, Probability: 0.02},
	}
}

// WinRate grows with referrals and task variety and stays within
// [MinWinRate, MaxWinRate]. Negative counters count as zero.
func WinRate(p model.BehaviorProfile) float64 {
	referrals := math.Max(float64(p.ReferralActivity), 0)
	rate := baseRate +
		math.Min(referrals*referralStep, referralCap) +
		math.Min(float64(len(p.TaskPreferences))*categoryStep, categoryCap)
	return math.Min(rate, MaxWinRate)
}

// Option applies a configuration option to the Wheel.
type Option func(*Wheel)

// WithSeed makes spins reproducible. A zero seed keeps the clock-based
// default.
func WithSeed(seed int64) Option {
	return func(w *Wheel) {
		if seed != 0 {
			w.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // not security sensitive
		}
	}
}

// Wheel resolves spins. It is safe for concurrent use.
type Wheel struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewWheel creates a wheel with a clock-seeded source.
func NewWheel(opts ...Option) *Wheel {
	w := &Wheel{rng: rand.New(rand.NewSource(time.Now().UnixNano()))} //nolint:gosec // not security sensitive
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Spin resolves one spin in two independent draws. The first decides win or
// lose against winRate (clamped to [0,1]). On a win the second is matched
// against the running sum of probabilities in table order and picks the
// first paying prize whose running sum reaches it, or the first paying prize
// when none does. On a loss the zero-amount prize is returned.
func (w *Wheel) Spin(table []Prize, winRate float64) (Prize, error) {
	if len(table) == 0 {
		return Prize{}, ErrEmptyPrizeTable
	}
	if math.IsNaN(winRate) {
		return Prize{}, ErrInvalidWinRate
	}
	lose, win := -1, -1
	for i, p := range table {
		if p.Amount == 0 && lose < 0 {
			lose = i
		}
		if p.Won() && win < 0 {
			win = i
		}
	}
	if lose < 0 || win < 0 {
		return Prize{}, ErrInvalidPrizeTable
	}
	winRate = math.Min(math.Max(winRate, 0), 1)

	w.mu.Lock()
	first := w.rng.Float64()
	var second float64
	if first < winRate {
		second = w.rng.Float64()
	}
	w.mu.Unlock()

	if first >= winRate {
		return table[lose], nil
	}
	cum := 0.0
	for _, p := range table {
		cum += p.Probability
		if p.Won() && second <= cum {
			return p, nil
		}
	}
	return table[win], nil
}
