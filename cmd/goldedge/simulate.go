package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/goldedge/rewards/internal/loadtest"
)

const (
	defaultSimUsers   = 200
	defaultSimTier    = 1
	defaultSimTopN    = 50
	defaultSimTimeout = 30 * time.Second
	defaultSimSettle  = 2 * time.Minute
)

func (c *cli) simulateCmd() *cobra.Command {
	cfg := loadtest.Config{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Drive a running API with synthetic users and verify the leaderboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := loadtest.Run(cmd.Context(), cfg)
			if stats != nil {
				fmt.Fprintf(cmd.OutOrStdout(),
					"registered %d (failed %d), tasks %d (failed %d), ranked %d, leaderboard %d, in %s\n",
					stats.Registered, stats.RegisterFailed, stats.TasksCompleted, stats.TasksFailed,
					stats.RanksRetrieved, stats.LeaderboardEntries, stats.Duration.Round(time.Millisecond))
				for _, m := range stats.Mismatches {
					fmt.Fprintln(cmd.OutOrStdout(), "mismatch:", m)
				}
			}
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "base URL of the service")
	f.IntVar(&cfg.Users, "users", defaultSimUsers, "users to register")
	f.IntVar(&cfg.Tier, "tier", defaultSimTier, "tier every user activates at")
	f.IntVar(&cfg.Tasks, "tasks", 0, "tasks completed per user, 0 for the whole batch")
	f.IntVar(&cfg.Workers, "workers", runtime.NumCPU()*2, "concurrent requests")
	f.IntVar(&cfg.TopN, "top", defaultSimTopN, "leaderboard entries to fetch")
	f.DurationVar(&cfg.Timeout, "timeout", defaultSimTimeout, "per request timeout")
	f.DurationVar(&cfg.Settle, "settle", defaultSimSettle, "how long to wait for the leaderboard to catch up")
	f.BoolVar(&cfg.Verbose, "verbose", false, "log individual failures")
	return cmd
}
