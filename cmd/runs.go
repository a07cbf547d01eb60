package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/resellkit/research-core/internal/model"
	"github.com/resellkit/research-core/internal/monitoring"
	"github.com/resellkit/research-core/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect research run history",
	Long:  "Commands for listing, viewing, and summarizing research runs.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List research runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("runs"); err != nil {
			return err
		}
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		status, _ := cmd.Flags().GetString("status")
		itemID, _ := cmd.Flags().GetString("item")
		limit, _ := cmd.Flags().GetInt("limit")

		filter := store.RunFilter{
			Status: model.RunStatus(status),
			ItemID: itemID,
			Limit:  limit,
		}

		runs, err := st.ListRuns(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show full details of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("runs"); err != nil {
			return err
		}
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

// -- runs stats --

var runsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate run statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("runs"); err != nil {
			return err
		}
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		since, _ := cmd.Flags().GetDuration("since")
		lookback := 0
		if since > 0 {
			lookback = int(since / time.Hour)
			if lookback < 1 {
				lookback = 1
			}
		}

		snap, err := monitoring.NewCollector(st).Collect(ctx, lookback)
		if err != nil {
			return eris.Wrap(err, "runs stats")
		}

		formatRunStats(os.Stdout, snap)
		return nil
	},
}

// -- runs watch --

var runsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Periodically check run statistics and send webhook alerts",
	Long:  "Runs the monitoring loop in the foreground: collects run statistics on an interval and posts alerts when failure rate, stall rate, or spend cross their thresholds.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("watch"); err != nil {
			return err
		}
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		if cfg.Monitoring.WebhookURL == "" {
			zap.L().Warn("no webhook URL configured, alerts will only be logged")
		}

		checker := monitoring.NewChecker(
			monitoring.NewCollector(st),
			monitoring.NewAlerter(cfg.Monitoring),
			cfg.Monitoring,
		)
		checker.Run(ctx)
		return nil
	},
}

func init() {
	runsListCmd.Flags().String("status", "", "filter by run status (researching, complete, failed)")
	runsListCmd.Flags().String("item", "", "filter by item ID")
	runsListCmd.Flags().Int("limit", 50, "max number of runs to display")

	runsStatsCmd.Flags().Duration("since", 24*time.Hour, "time window for stats (e.g. 24h, 72h; 0 = all runs)")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsStatsCmd)
	runsCmd.AddCommand(runsWatchCmd)
	rootCmd.AddCommand(runsCmd)
}

// formatRunsList writes a tabular list of runs to w.
func formatRunsList(out io.Writer, runs []model.ResearchRun) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tITEM\tSTATUS\tSTOP\tSCORE\tCOST\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t----\t------\t----\t-----\t----\t-------")

	for _, r := range runs {
		stop := ""
		score := "-"
		cost := "-"
		if r.Result != nil {
			stop = string(r.Result.StopReason)
			score = fmt.Sprintf("%.2f", r.Result.CompletionScore)
			cost = fmt.Sprintf("$%.2f", r.Result.CostUsd)
		}

		item := r.Item.Name
		if len(item) > 30 {
			item = item[:27] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			truncateID(r.ID),
			item,
			r.Status,
			stop,
			score,
			cost,
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// formatRunStats writes a metrics snapshot to w.
func formatRunStats(out io.Writer, s monitoring.MetricsSnapshot) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if s.LookbackHours > 0 {
		_, _ = fmt.Fprintf(w, "Window:\tlast %dh\n", s.LookbackHours)
	} else {
		_, _ = fmt.Fprintf(w, "Window:\tall runs\n")
	}
	_, _ = fmt.Fprintf(w, "Total runs:\t%d\n", s.RunsTotal)
	_, _ = fmt.Fprintf(w, "Complete:\t%d\n", s.RunsComplete)
	_, _ = fmt.Fprintf(w, "Failed:\t%d\n", s.RunsFailed)
	_, _ = fmt.Fprintf(w, "Researching:\t%d\n", s.RunsResearching)
	_, _ = fmt.Fprintf(w, "Ready to publish:\t%d (%.0f%%)\n", s.ReadyToPublish, s.ReadyRate*100)
	if s.AvgCompletionScore > 0 {
		_, _ = fmt.Fprintf(w, "Avg completion score:\t%.2f\n", s.AvgCompletionScore)
	}
	_, _ = fmt.Fprintf(w, "Conflicts:\t%d\n", s.ConflictsTotal)
	_, _ = fmt.Fprintf(w, "Total spend:\t$%.2f\n", s.TotalCostUsd)
	if s.AvgCostUsd > 0 {
		_, _ = fmt.Fprintf(w, "Avg cost per run:\t$%.2f\n", s.AvgCostUsd)
	}
	if s.AvgIterations > 0 {
		_, _ = fmt.Fprintf(w, "Avg iterations:\t%.1f\n", s.AvgIterations)
	}

	if len(s.StopReasons) > 0 {
		_, _ = fmt.Fprintln(w, "Stop reasons:")
		reasons := make([]string, 0, len(s.StopReasons))
		for reason := range s.StopReasons {
			reasons = append(reasons, string(reason))
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			_, _ = fmt.Fprintf(w, "  %s:\t%d\n", reason, s.StopReasons[model.StopReason(reason)])
		}
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
