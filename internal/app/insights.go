package service

import (
	"context"
	"fmt"

	"github.com/goldedge/rewards/internal/adapters/session"
	"github.com/goldedge/rewards/internal/domain/behavior"
	"github.com/goldedge/rewards/internal/domain/model"
	"github.com/goldedge/rewards/internal/domain/odds"
	"github.com/goldedge/rewards/internal/domain/recommend"
	"github.com/goldedge/rewards/internal/domain/tasks"
	"github.com/goldedge/rewards/internal/domain/tier"
	"github.com/goldedge/rewards/pkg/logger"
	"github.com/goldedge/rewards/pkg/metrics"
)

// Insights is the engine's view of one user.
type Insights struct {
	Profile         model.BehaviorProfile      `json:"profile"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
	WinRate         float64                    `json:"win_rate"`
	OptimalTimes    []string                   `json:"optimal_times"`
	MeanSeconds     float64                    `json:"mean_completion_seconds"`
	SpinsLeft       int                        `json:"spins_left"`
}

// SpinResult is the outcome of one wheel spin.
type SpinResult struct {
	Prize     odds.Prize `json:"prize"`
	Won       bool       `json:"won"`
	WinRate   float64    `json:"win_rate"`
	SpinsLeft int        `json:"spins_left"`
	Balance   float64    `json:"balance"`
}

func (s *Service) spinsLeft(u *session.Session, day string) int {
	if u.SpinDay != day {
		return s.maxDailySpins
	}
	return max(s.maxDailySpins-u.SpinsToday, 0)
}

// Insights analyzes the user's history and returns recommendations, the
// current wheel odds and the best hours to work.
func (s *Service) Insights(ctx context.Context, userID string) (Insights, error) {
	sess, err := s.load(ctx, userID)
	if err != nil {
		return Insights{}, err
	}
	profile := behavior.Analyze(sess.Snapshot())
	recs, err := s.recommender.Recommend(profile, sess.Tier)
	if err != nil {
		return Insights{}, err
	}
	day := s.today()
	if sess.Activated && sess.Batch != nil && sess.Batch.Day == day {
		remaining := len(sess.Batch.Tasks) - sess.Batch.CompletedCount()
		if rec, ok := s.recommender.RemainingTasks(remaining, tier.Must(sess.Tier).UnitReward); ok {
			recs = append(recs, rec)
		}
	}
	for _, r := range recs {
		metrics.RecordRecommendation(string(r.Kind))
	}
	return Insights{
		Profile:         profile,
		Recommendations: recs,
		WinRate:         odds.WinRate(profile),
		OptimalTimes:    behavior.OptimalTaskTimes(profile),
		MeanSeconds:     behavior.MeanCompletionSeconds(profile),
		SpinsLeft:       s.spinsLeft(&sess, day),
	}, nil
}

// Spin resolves one lucky wheel spin at the user's current win rate and
// credits any prize. Each activated user gets a fixed number of spins per
// day.
func (s *Service) Spin(ctx context.Context, userID string) (SpinResult, error) {
	var res SpinResult
	_, err := s.update(ctx, userID, func(u *session.Session) error {
		if err := activated(u); err != nil {
			return err
		}
		day := tasks.DayKey(s.now())
		if u.SpinDay != day {
			u.SpinDay = day
			u.SpinsToday = 0
		}
		if u.SpinsToday >= s.maxDailySpins {
			return fmt.Errorf("%w: %d per day", ErrSpinLimit, s.maxDailySpins)
		}
		rate := odds.WinRate(behavior.Analyze(u.Snapshot()))
		prize, err := s.wheel.Spin(s.prizes, rate)
		if err != nil {
			return err
		}
		u.SpinsToday++
		if prize.Won() {
			u.Credit(day, prize.Amount)
		}
		res = SpinResult{
			Prize:     prize,
			Won:       prize.Won(),
			WinRate:   rate,
			SpinsLeft: s.maxDailySpins - u.SpinsToday,
			Balance:   u.Balance,
		}
		return nil
	})
	if err != nil {
		return SpinResult{}, err
	}
	outcome := "lose"
	if res.Won {
		outcome = "win"
		s.publish(ctx, userID, SourceWheel, res.Prize.Amount)
	}
	metrics.RecordWheelSpin(outcome)
	s.logger.Debug(ctx, "wheel spun",
		logger.String("userID", userID),
		logger.String("outcome", outcome),
		logger.Float64("winRate", res.WinRate),
	)
	return res, nil
}
