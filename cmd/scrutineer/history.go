package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"electoral-hq/scrutineer/pkg/cli"
	"electoral-hq/scrutineer/pkg/history"
)

var historyFlags struct {
	since  string
	limit  int
	output string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent validation runs",
	Long: `Show recorded validation runs, newest first.

Runs are recorded to the history database when history.enabled is set
in the configuration.

Examples:
  # Last 50 runs
  scrutineer history

  # Runs since a date
  scrutineer history --since 2026-08-01 --limit 20`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyFlags.since, "since", "", "only runs started on or after this date (YYYY-MM-DD)")
	historyCmd.Flags().IntVar(&historyFlags.limit, "limit", 50, "maximum number of runs")
	historyCmd.Flags().StringVarP(&historyFlags.output, "output", "o", "text", "output format: text, json")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	format, err := cli.ParseOutputFormat(historyFlags.output)
	if err != nil {
		return err
	}

	query := history.Query{Limit: historyFlags.limit}
	if historyFlags.since != "" {
		since, err := time.Parse("2006-01-02", historyFlags.since)
		if err != nil {
			return fmt.Errorf("invalid --since value %q: %w", historyFlags.since, err)
		}
		query.Since = since
	}

	store, err := history.Open(history.Config{Path: cfg.History.Path})
	if err != nil {
		return cli.NewCommandError("history", err)
	}
	defer store.Close()

	ctx, stop := cli.SignalContext()
	defer stop()

	runs, err := store.List(ctx, query)
	if err != nil {
		return cli.NewCommandError("history", err)
	}

	if format == cli.FormatJSON {
		return cli.NewFormatter(format).FormatTo(os.Stdout, runs)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tFEED\tRESULT\tERRORS\tWARNINGS\tDURATION")
	for _, run := range runs {
		result := "passed"
		if !run.Passed {
			result = "failed"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			run.StartedAt.Format(time.RFC3339),
			run.FeedPath,
			result,
			run.Errors,
			run.Warnings,
			run.Duration.Round(time.Millisecond),
		)
	}
	return w.Flush()
}
