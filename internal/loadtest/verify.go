package loadtest

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"
)

const totalTolerance = 1e-6

// verify compares every user's rank entry and the leaderboard against the
// earnings recorded during the run.
func verify(ctx context.Context, c *client, cfg Config, stats *Stats) error {
	ranks, err := fetchRanks(ctx, c, cfg, stats)
	if err != nil {
		return err
	}

	q := url.Values{"limit": {strconv.Itoa(cfg.TopN)}}
	var board []Entry
	if err := c.get(ctx, "/leaderboard?"+q.Encode(), &board); err != nil {
		return fmt.Errorf("leaderboard: %w", err)
	}
	stats.LeaderboardEntries = len(board)

	stats.Mismatches = append(stats.Mismatches, checkRanks(stats.Expected, ranks)...)
	stats.Mismatches = append(stats.Mismatches, checkBoard(board, ranks)...)
	if len(stats.Mismatches) > 0 {
		return fmt.Errorf("%w: %d problems, first: %s", ErrMismatch, len(stats.Mismatches), stats.Mismatches[0])
	}
	return nil
}

func fetchRanks(ctx context.Context, c *client, cfg Config, stats *Stats) (map[string]Entry, error) {
	var mu sync.Mutex
	ranks := make(map[string]Entry, len(stats.Expected))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for id := range stats.Expected {
		g.Go(func() error {
			var e Entry
			if err := c.get(gctx, "/users/"+id+"/rank", &e); err != nil {
				return fmt.Errorf("rank of %s: %w", id, err)
			}
			mu.Lock()
			ranks[id] = e
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	stats.RanksRetrieved = len(ranks)
	return ranks, nil
}

// checkRanks reports users whose ranked total differs from what they earned.
func checkRanks(expected map[string]float64, ranks map[string]Entry) []string {
	var out []string
	for id, want := range expected {
		got, ok := ranks[id]
		switch {
		case !ok:
			out = append(out, fmt.Sprintf("%s: not ranked", id))
		case math.Abs(got.Total-want) > totalTolerance:
			out = append(out, fmt.Sprintf("%s: total %.2f, earned %.2f", id, got.Total, want))
		}
	}
	return out
}

// checkBoard reports ordering problems in board, where tied totals share a
// rank, and rows that disagree with the per-user rank entries. Rows for
// users outside this run are only checked for ordering.
func checkBoard(board []Entry, ranks map[string]Entry) []string {
	var out []string
	for i, e := range board {
		want := i + 1
		if i > 0 && e.Total == board[i-1].Total {
			want = board[i-1].Rank
		}
		if e.Rank != want {
			out = append(out, fmt.Sprintf("row %d: rank %d, want %d", i, e.Rank, want))
		}
		if i > 0 && e.Total > board[i-1].Total {
			out = append(out, fmt.Sprintf("row %d: total %.2f above row %d", i, e.Total, i-1))
		}
		r, ok := ranks[e.UserID]
		if !ok {
			continue
		}
		if r.Rank != e.Rank || math.Abs(r.Total-e.Total) > totalTolerance {
			out = append(out, fmt.Sprintf("%s: leaderboard #%d %.2f, rank #%d %.2f",
				e.UserID, e.Rank, e.Total, r.Rank, r.Total))
		}
	}
	return out
}
