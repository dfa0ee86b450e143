package loadtest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/goldedge/rewards/pkg/logger"
)

const settlePoll = 100 * time.Millisecond

// Run executes a complete load test against cfg.BaseURL. The returned Stats
// are populated as far as the run got, even on error.
func Run(ctx context.Context, cfg Config) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.Get().Named("loadtest")
	c := newClient(cfg.BaseURL, cfg.Timeout)
	stats := &Stats{StartTime: time.Now(), Expected: make(map[string]float64)}
	defer func() { stats.Duration = time.Since(stats.StartTime) }()

	log.Info(ctx, "starting load test",
		logger.String("base_url", cfg.BaseURL),
		logger.Int("users", cfg.Users),
		logger.Int("tier", cfg.Tier),
		logger.Int("workers", cfg.Workers))

	if err := c.get(ctx, "/healthz", nil); err != nil {
		return stats, fmt.Errorf("health check: %w", err)
	}

	users, err := register(ctx, c, cfg, stats)
	if err != nil {
		return stats, fmt.Errorf("register users: %w", err)
	}
	log.Info(ctx, "users registered",
		logger.Int("registered", stats.Registered),
		logger.Int("failed", stats.RegisterFailed))
	if len(users) == 0 {
		return stats, errors.New("no user could be registered")
	}

	if err := work(ctx, c, cfg, users, stats); err != nil {
		return stats, fmt.Errorf("complete tasks: %w", err)
	}
	log.Info(ctx, "tasks completed",
		logger.Int("completed", stats.TasksCompleted),
		logger.Int("failed", stats.TasksFailed))

	if err := settle(ctx, c, cfg, len(stats.Expected)); err != nil {
		return stats, err
	}

	if err := verify(ctx, c, cfg, stats); err != nil {
		return stats, err
	}
	log.Info(ctx, "load test passed",
		logger.Int("ranks", stats.RanksRetrieved),
		logger.Int("leaderboard_entries", stats.LeaderboardEntries),
		logger.String("duration", time.Since(stats.StartTime).String()))
	return stats, nil
}

// register creates cfg.Users users concurrently. Individual failures are
// counted, not fatal.
func register(ctx context.Context, c *client, cfg Config, stats *Stats) ([]User, error) {
	var (
		mu     sync.Mutex
		users  = make([]User, 0, cfg.Users)
		failed atomic.Int64
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := range cfg.Users {
		g.Go(func() error {
			req := map[string]string{
				"name":  fmt.Sprintf("Load User %d", i+1),
				"email": "load-" + uuid.NewString() + "@example.com",
			}
			var u User
			if err := c.post(ctx, "/users", req, &u); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				failed.Add(1)
				if cfg.Verbose {
					logger.Get().Named("loadtest").Warn(ctx, "register failed", logger.Error(err))
				}
				return nil
			}
			mu.Lock()
			users = append(users, u)
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	stats.Registered = len(users)
	stats.RegisterFailed = int(failed.Load())
	return users, err
}

// work activates every user and completes their tasks, recording the
// rewards the server reports.
func work(ctx context.Context, c *client, cfg Config, users []User, stats *Stats) error {
	var (
		mu        sync.Mutex
		completed atomic.Int64
		failed    atomic.Int64
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, u := range users {
		g.Go(func() error {
			earned, done, errs := runUser(ctx, c, cfg, u.UserID)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			completed.Add(int64(done))
			failed.Add(int64(errs))
			if earned > 0 {
				mu.Lock()
				stats.Expected[u.UserID] = earned
				mu.Unlock()
			}
			return nil
		})
	}
	err := g.Wait()
	stats.TasksCompleted = int(completed.Load())
	stats.TasksFailed = int(failed.Load())
	return err
}

func runUser(ctx context.Context, c *client, cfg Config, userID string) (earned float64, done, failed int) {
	log := logger.Get().Named("loadtest")
	base := "/users/" + userID
	if err := c.post(ctx, base+"/activate", map[string]int{"tier": cfg.Tier}, nil); err != nil {
		if cfg.Verbose {
			log.Warn(ctx, "activate failed", logger.String("user_id", userID), logger.Error(err))
		}
		return 0, 0, 1
	}
	var batch Batch
	if err := c.get(ctx, base+"/tasks", &batch); err != nil {
		if cfg.Verbose {
			log.Warn(ctx, "list tasks failed", logger.String("user_id", userID), logger.Error(err))
		}
		return 0, 0, 1
	}
	todo := batch.Tasks
	if cfg.Tasks > 0 && cfg.Tasks < len(todo) {
		todo = todo[:cfg.Tasks]
	}
	for _, t := range todo {
		if t.Completed {
			continue
		}
		var res struct {
			Reward float64 `json:"reward"`
		}
		body := map[string]int{"seconds": t.DurationSeconds}
		if err := c.post(ctx, base+"/tasks/"+t.ID+"/complete", body, &res); err != nil {
			failed++
			if cfg.Verbose {
				log.Warn(ctx, "complete failed",
					logger.String("user_id", userID),
					logger.String("task_id", t.ID),
					logger.Error(err))
			}
			continue
		}
		earned += res.Reward
		done++
	}
	return earned, done, failed
}

// settle polls /stats until the reward pipeline has drained and at least
// want users are ranked.
func settle(ctx context.Context, c *client, cfg Config, want int) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Settle)
	defer cancel()
	ticker := time.NewTicker(settlePoll)
	defer ticker.Stop()

	var last struct {
		RankedUsers int `json:"ranked_users"`
		QueueLength int `json:"queue_length"`
	}
	for {
		if err := c.get(ctx, "/stats", &last); err == nil &&
			last.QueueLength == 0 && last.RankedUsers >= want {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: leaderboard did not settle: %d ranked, %d queued, want %d ranked",
				ErrMismatch, last.RankedUsers, last.QueueLength, want)
		case <-ticker.C:
		}
	}
}
