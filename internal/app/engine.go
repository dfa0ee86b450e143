package service

import (
	"time"

	"github.com/goldedge/rewards/internal/domain/behavior"
	"github.com/goldedge/rewards/internal/domain/fraud"
	"github.com/goldedge/rewards/internal/domain/model"
	"github.com/goldedge/rewards/internal/domain/odds"
	"github.com/goldedge/rewards/internal/domain/recommend"
	"github.com/goldedge/rewards/internal/domain/tasks"
	"github.com/goldedge/rewards/internal/domain/tier"
	"github.com/goldedge/rewards/pkg/metrics"
)

// Evaluation is the engine output for a snapshot supplied by a caller.
type Evaluation struct {
	Profile         model.BehaviorProfile      `json:"profile"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
	WinRate         float64                    `json:"win_rate"`
	OptimalTimes    []string                   `json:"optimal_times"`
	MeanSeconds     float64                    `json:"mean_completion_seconds"`
}

// Policy returns the input policy the service runs under.
func (s *Service) Policy() model.Policy { return s.policy }

// Tier returns the configuration of tier id under the service policy.
func (s *Service) Tier(id int) (tier.Config, error) {
	return tier.Lookup(id, s.policy)
}

// Tiers returns the whole catalog.
func (s *Service) Tiers() []tier.Config {
	return tier.All()
}

// GenerateTasks builds a detached batch for tierID on date. Nothing is
// stored.
func (s *Service) GenerateTasks(tierID int, date time.Time) (tasks.Batch, error) {
	cfg, err := tier.Lookup(tierID, s.policy)
	if err != nil {
		return tasks.Batch{}, err
	}
	batch, err := s.generator.GenerateFrom(cfg, date, s.banks)
	if err != nil {
		return tasks.Batch{}, err
	}
	metrics.RecordTasksGenerated(cfg.Label(), len(batch.Tasks))
	return batch, nil
}

// Evaluate decodes a raw user snapshot and runs the behavior analysis,
// recommendations and odds over it.
func (s *Service) Evaluate(data []byte) (Evaluation, error) {
	snap, err := behavior.DecodeSnapshot(data, s.policy)
	if err != nil {
		return Evaluation{}, err
	}
	profile := behavior.Analyze(snap)
	recs, err := s.recommender.Recommend(profile, snap.Tier)
	if err != nil {
		return Evaluation{}, err
	}
	return Evaluation{
		Profile:         profile,
		Recommendations: recs,
		WinRate:         odds.WinRate(profile),
		OptimalTimes:    behavior.OptimalTaskTimes(profile),
		MeanSeconds:     behavior.MeanCompletionSeconds(profile),
	}, nil
}

// Assess scores a transaction amount against a supplied history.
func (s *Service) Assess(amount float64, history []model.Transaction) (fraud.Assessment, error) {
	a, err := s.scorer.Assess(amount, history)
	if err != nil {
		return fraud.Assessment{}, err
	}
	metrics.RecordFraudAssessment(a.Safe, a.RiskScore)
	return a, nil
}

// Prizes returns the wheel segments.
func (s *Service) Prizes() []odds.Prize {
	return append([]odds.Prize(nil), s.prizes...)
}
