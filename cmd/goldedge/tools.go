package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/goldedge/rewards/internal/domain/model"
	"github.com/goldedge/rewards/internal/domain/tier"
	"github.com/goldedge/rewards/pkg/logger"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) tiersCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "tiers",
		Short: "Print the tier catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tiers := tier.All()
			if asJSON {
				return printJSON(cmd.OutOrStdout(), tiers)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "ID\tNAME\tTASKS\tREWARD\tDAILY\tDEPOSIT\tMONTHLY\t")
			for _, t := range tiers {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%.0f\t%.0f\t%.0f\t%.0f\t\n",
					t.ID, t.Name, t.DailyTaskCount, t.UnitReward, t.DailyIncome, t.SecurityDeposit, t.MonthlyIncome)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (c *cli) tasksCmd() *cobra.Command {
	var (
		tierID int
		date   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Print a generated daily batch",
		RunE: func(cmd *cobra.Command, _ []string) error {
			day := time.Now()
			if date != "" {
				d, err := time.Parse(time.DateOnly, date)
				if err != nil {
					return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
				}
				day = d
			}
			svc, err := newService(c.cfg, logger.Get().Named("service"))
			if err != nil {
				return err
			}
			batch, err := svc.GenerateTasks(tierID, day)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), batch)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "batch %s  tier %d  day %s\n", batch.ID, batch.Tier, batch.Day)
			fmt.Fprintln(tw, "#\tKIND\tTITLE\tSECONDS\tREWARD\tDIFFICULTY")
			for i, t := range batch.Tasks {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%.0f\t%s\n", i+1, t.Kind, t.Title, t.DurationSeconds, t.Reward, t.Difficulty)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&tierID, "tier", 0, "tier id (0-9)")
	cmd.Flags().StringVar(&date, "date", "", "day as YYYY-MM-DD, default today")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (c *cli) assessCmd() *cobra.Command {
	var history string
	cmd := &cobra.Command{
		Use:   "assess AMOUNT",
		Short: "Score a transaction amount against an optional history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("amount %q: %w", args[0], err)
			}
			svc, err := newService(c.cfg, logger.Get().Named("service"))
			if err != nil {
				return err
			}
			past, err := parseHistory(history, time.Now())
			if err != nil {
				return err
			}
			a, err := svc.Assess(amount, past)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), a)
		},
	}
	cmd.Flags().StringVar(&history, "history", "", "comma separated past amounts, all dated now")
	return cmd
}

// parseHistory turns "100,250.5" into transactions dated at.
func parseHistory(s string, at time.Time) ([]model.Transaction, error) {
	var out []model.Transaction
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("history amount %q: %w", part, err)
		}
		out = append(out, model.Transaction{Amount: v, Date: at})
	}
	return out, nil
}
