// Package behavior derives a BehaviorProfile from a user snapshot.
package behavior

import (
	"github.com/goldedge/rewards/internal/domain/model"
)

// defaultCompletionSeconds stands in for the mean completion time of a user
// without history.
const defaultCompletionSeconds = 30

// Analyze maps a snapshot onto a profile. It never fails: a nil snapshot or
// absent fields yield empty sequences and zero counters. The profile owns
// its slices, so analyzing the same snapshot twice yields equal values that
// share no memory with the snapshot or each other.
func Analyze(s *model.UserSnapshot) model.BehaviorProfile {
	p := model.BehaviorProfile{
		TaskPreferences: []string{},
		CompletionTimes: []int{},
		EarningHistory:  []float64{},
	}
	if s == nil {
		return p
	}

	for _, t := range s.CompletedTasks {
		p.TaskPreferences = append(p.TaskPreferences, t.Category)
	}
	for _, t := range s.TaskHistory {
		p.CompletionTimes = append(p.CompletionTimes, t.CompletionTime)
	}
	p.EarningHistory = append(p.EarningHistory, s.EarningHistory...)
	p.WithdrawalFrequency = s.WithdrawalCount
	p.ReferralActivity = s.ReferralCount
	return p
}

// MeanCompletionSeconds averages the profile's completion times. No history,
// or a zero mean, reads as 30 seconds.
func MeanCompletionSeconds(p model.BehaviorProfile) float64 {
	if len(p.CompletionTimes) == 0 {
		return defaultCompletionSeconds
	}
	sum := 0
	for _, v := range p.CompletionTimes {
		sum += v
	}
	mean := float64(sum) / float64(len(p.CompletionTimes))
	if mean == 0 {
		return defaultCompletionSeconds
	}
	return mean
}

// OptimalTaskTimes suggests times of day to work through tasks. Fast users
// get three windows, average users two, slow users one.
func OptimalTaskTimes(p model.BehaviorProfile) []string {
	switch mean := MeanCompletionSeconds(p); {
	case mean < 15:
		return []string{"9:00 AM", "2:00 PM", "7:00 PM"}
	case mean < 30:
		return []string{"10:00 AM", "3:00 PM"}
	default:
		return []string{"11:00 AM"}
	}
}
