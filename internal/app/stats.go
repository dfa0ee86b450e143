package service

import (
	"context"
	"fmt"

	"github.com/goldedge/rewards/internal/adapters/repository"
	"github.com/goldedge/rewards/internal/domain/wallet"
	"github.com/goldedge/rewards/pkg/metrics"
)

// Stats is a point-in-time summary of the platform.
type Stats struct {
	Started            bool    `json:"started"`
	Users              int     `json:"users"`
	Activated          int     `json:"activated"`
	Suspended          int     `json:"suspended"`
	ActiveBatches      int     `json:"active_batches"`
	PendingWithdrawals int     `json:"pending_withdrawals"`
	FlaggedRequests    int     `json:"flagged_requests"`
	TotalBalance       float64 `json:"total_balance"`
	RankedUsers        int     `json:"ranked_users"`
	QueueLength        int     `json:"queue_length"`
	ProcessedEvents    int64   `json:"processed_events"`
	InFlightRequests   int64   `json:"in_flight_requests"`
	Workers            int     `json:"workers"`
}

// GetStats walks every session and refreshes the platform gauges.
func (s *Service) GetStats(ctx context.Context) (Stats, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("list sessions: %w", err)
	}
	day := s.today()
	st := Stats{
		Started:            s.Started(),
		Users:              len(all),
		RankedUsers:        s.leaderboard.Count(ctx),
		QueueLength:        s.rewardQueue.Len(ctx),
		ProcessedEvents:    s.workerPool.Processed(),
		InFlightRequests:   s.deduper.Size(),
		Workers:            s.workerPool.Size(),
	}
	for i := range all {
		u := &all[i]
		st.TotalBalance += u.Balance
		if u.Activated {
			st.Activated++
		}
		if u.Suspended {
			st.Suspended++
		}
		if u.Batch != nil && u.Batch.Day == day {
			st.ActiveBatches++
		}
		for _, t := range u.Transactions {
			switch {
			case t.Kind == wallet.Withdrawal && t.Status == wallet.Pending:
				st.PendingWithdrawals++
			case t.Status == wallet.Flagged:
				st.FlaggedRequests++
			}
		}
	}

	metrics.UpdateRegisteredUsers(st.Users)
	metrics.UpdateSuspendedUsers(st.Suspended)
	metrics.UpdateActiveBatches(st.ActiveBatches)
	metrics.UpdateQueueSize(st.QueueLength)
	metrics.UpdateLeaderboardUsers(st.RankedUsers)
	return st, nil
}

// Leaderboard returns the top n earners.
func (s *Service) Leaderboard(ctx context.Context, n int) ([]repository.Entry, error) {
	return s.leaderboard.TopN(ctx, n)
}

// Rank returns the leaderboard position of userID.
func (s *Service) Rank(ctx context.Context, userID string) (repository.Entry, error) {
	return s.leaderboard.Rank(ctx, userID)
}
