// Package recommend turns a behavior profile into ranked-by-rule suggestions.
package recommend

import (
	"fmt"

	"github.com/goldedge/rewards/internal/domain/model"
	"github.com/goldedge/rewards/internal/domain/tier"
)

// Kind classifies a recommendation.
type Kind string

const (
	KindJobTier            Kind = "job-tier"
	KindTask               Kind = "task"
	KindWithdrawalMethod   Kind = "withdrawal-method"
	KindEarningOpportunity Kind = "earning-opportunity"
)

// Defaults for the rule parameters.
const (
	DefaultTierUpgradeConfidence = 0.85
	DefaultTaskConfidence        = 0.92
	DefaultWithdrawalConfidence  = 0.78
	DefaultTaskPotential         = 150.0

	// earningPerTierStep is the mean earning a user must exceed per tier
	// level before an upgrade is suggested.
	earningPerTierStep = 1000.0
	frequentWithdrawal = 5
)

// Recommendation is one suggestion. PotentialEarning is nil when the rule
// carries no figure.
type Recommendation struct {
	Kind             Kind     `json:"kind"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Confidence       float64  `json:"confidence"`
	PotentialEarning *float64 `json:"potential_earning,omitempty"`
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithTierUpgradeConfidence sets the confidence of tier upgrade suggestions.
func WithTierUpgradeConfidence(c float64) Option {
	return func(e *Engine) { e.tierUpgradeConfidence = clamp01(c) }
}

// WithTaskConfidence sets the confidence of task category suggestions.
func WithTaskConfidence(c float64) Option {
	return func(e *Engine) { e.taskConfidence = clamp01(c) }
}

// WithWithdrawalConfidence sets the confidence of withdrawal batching
// suggestions.
func WithWithdrawalConfidence(c float64) Option {
	return func(e *Engine) { e.withdrawalConfidence = clamp01(c) }
}

// WithTaskPotential sets the advertised earning of task category suggestions.
func WithTaskPotential(amount float64) Option {
	return func(e *Engine) {
		if amount >= 0 {
			e.taskPotential = amount
		}
	}
}

// WithPolicy selects how out-of-range tiers are handled.
func WithPolicy(p model.Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// Engine evaluates the recommendation rules. It holds only parameters and
// is safe for concurrent use.
type Engine struct {
	tierUpgradeConfidence float64
	taskConfidence        float64
	withdrawalConfidence  float64
	taskPotential         float64
	policy                model.Policy
}

// NewEngine creates an engine with the default parameters and strict policy.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		tierUpgradeConfidence: DefaultTierUpgradeConfidence,
		taskConfidence:        DefaultTaskConfidence,
		withdrawalConfidence:  DefaultWithdrawalConfidence,
		taskPotential:         DefaultTaskPotential,
		policy:                model.Strict,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recommend evaluates, in order, the tier upgrade, task category and
// withdrawal rules; each adds at most one recommendation. The result keeps
// rule order and may be empty. Under the strict policy a currentTier outside
// the catalog fails with tier.ErrInvalidTier; under the lenient one it is
// clamped to the nearest tier.
func (e *Engine) Recommend(p model.BehaviorProfile, currentTier int) ([]Recommendation, error) {
	if !tier.Valid(currentTier) {
		if e.policy == model.Strict {
			return nil, fmt.Errorf("recommend: %w: %d", tier.ErrInvalidTier, currentTier)
		}
		currentTier = tier.Nearest(currentTier).ID
	}

	out := make([]Recommendation, 0, 3)
	if r, ok := e.tierUpgrade(p, currentTier); ok {
		out = append(out, r)
	}
	if r, ok := e.taskCategory(p); ok {
		out = append(out, r)
	}
	if r, ok := e.withdrawalBatching(p); ok {
		out = append(out, r)
	}
	return out, nil
}

func (e *Engine) tierUpgrade(p model.BehaviorProfile, current int) (Recommendation, bool) {
	if len(p.EarningHistory) == 0 || current >= tier.MaxID {
		return Recommendation{}, false
	}
	sum := 0.0
	for _, v := range p.EarningHistory {
		sum += v
	}
	if sum/float64(len(p.EarningHistory)) <= float64(current)*earningPerTierStep {
		return Recommendation{}, false
	}

	next := current + 1
	increase := next*100 - current*100
	potential := float64(next) * earningPerTierStep
	return Recommendation{
		Kind:  KindJobTier,
		Title: fmt.Sprintf("Upgrade to Job Tier %d", next),
		Description: fmt.Sprintf(
			"Based on your earning patterns, upgrading could increase your daily income by %d%%.", increase),
		Confidence:       e.tierUpgradeConfidence,
		PotentialEarning: &potential,
	}, true
}

func (e *Engine) taskCategory(p model.BehaviorProfile) (Recommendation, bool) {
	if len(p.TaskPreferences) == 0 {
		return Recommendation{}, false
	}
	category := p.TaskPreferences[0]
	potential := e.taskPotential
	return Recommendation{
		Kind:             KindTask,
		Title:            fmt.Sprintf("New %s Tasks Available", category),
		Description:      fmt.Sprintf("We've found high-paying %s tasks that match your expertise.", category),
		Confidence:       e.taskConfidence,
		PotentialEarning: &potential,
	}, true
}

func (e *Engine) withdrawalBatching(p model.BehaviorProfile) (Recommendation, bool) {
	if p.WithdrawalFrequency <= frequentWithdrawal {
		return Recommendation{}, false
	}
	return Recommendation{
		Kind:        KindWithdrawalMethod,
		Title:       "Optimize Your Withdrawals",
		Description: "Consider batching withdrawals to reduce transaction fees and maximize your earnings.",
		Confidence:  e.withdrawalConfidence,
	}, true
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// RemainingTasks suggests finishing today's open tasks. It reports false when
// nothing is left to earn.
func (e *Engine) RemainingTasks(remaining int, unitReward float64) (Recommendation, bool) {
	if remaining <= 0 || unitReward <= 0 {
		return Recommendation{}, false
	}
	potential := float64(remaining) * unitReward
	return Recommendation{
		Kind:             KindEarningOpportunity,
		Title:            fmt.Sprintf("%d Tasks Left Today", remaining),
		Description:      fmt.Sprintf("Complete your remaining tasks to earn KES %.0f before the daily reset.", potential),
		Confidence:       1,
		PotentialEarning: &potential,
	}, true
}
