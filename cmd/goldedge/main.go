// Command goldedge runs the rewards API and offers offline engine tools.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	service "github.com/goldedge/rewards/internal/app"
	"github.com/goldedge/rewards/internal/config"
	"github.com/goldedge/rewards/internal/content"
	"github.com/goldedge/rewards/internal/domain/model"
	"github.com/goldedge/rewards/internal/domain/recommend"
	"github.com/goldedge/rewards/internal/domain/wallet"
	"github.com/goldedge/rewards/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1) //nolint:gocritic // exitAfterDefer: stop already called
	}
}

// cli holds state shared by every subcommand.
type cli struct {
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "goldedge",
		Short:         "Tier-driven task and reward engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := logger.InitWith(cmd.ErrOrStderr(), cfg.LogFormat); err != nil {
				return fmt.Errorf("init logging: %w", err)
			}
			if err := logger.SetLevelString(cfg.LogLevel); err != nil {
				logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
					logger.String("log_level", cfg.LogLevel), logger.Error(err))
				_ = logger.SetLevelString("info")
			}
			c.cfg = cfg
			return nil
		},
	}
	root.AddCommand(
		c.serveCmd(),
		c.tiersCmd(),
		c.tasksCmd(),
		c.assessCmd(),
		c.simulateCmd(),
	)
	return root
}

// newService builds the service described by cfg.
func newService(cfg *config.Config, log logger.Logger) (*service.Service, error) {
	banks, err := content.Load(cfg.ContentFile)
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	return service.New(
		service.WithLogger(log),
		service.WithPolicy(model.PolicyFor(cfg.Strict())),
		service.WithSeed(cfg.RandomSeed),
		service.WithContent(banks),
		service.WithMaxDailySpins(cfg.MaxDailySpins),
		service.WithLimits(wallet.Limits{MinDeposit: cfg.MinDeposit, MinWithdrawal: cfg.MinWithdrawal}),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithRecommendOptions(
			recommend.WithTierUpgradeConfidence(cfg.TierUpgradeConfidence),
			recommend.WithTaskConfidence(cfg.TaskConfidence),
			recommend.WithWithdrawalConfidence(cfg.WithdrawalConfidence),
		),
	), nil
}
