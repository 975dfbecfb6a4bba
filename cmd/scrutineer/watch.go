package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"electoral-hq/scrutineer/pkg/cli"
	"electoral-hq/scrutineer/pkg/rules"
	"electoral-hq/scrutineer/pkg/watch"
)

var watchFlags struct {
	schema   string
	feedType string
	output   string
}

var watchCmd = &cobra.Command{
	Use:   "watch <feed.xml|directory>",
	Short: "Re-validate feeds when they change",
	Long: `Watch a feed file or a directory of feeds and re-validate on change.

Change events are debounced so one upload or editor save triggers one
validation. When watch.schedule is configured, validation also runs on
that cron schedule as a backstop for filesystems without change
notifications.

The command runs until interrupted. Each run's verdict is printed; the
exit code reflects only failures to start the watch, not validation
results.

Examples:
  # Watch a single feed
  scrutineer watch feed.xml --schema election_results.xsd

  # Watch a drop directory
  scrutineer watch /var/feeds --schema election_results.xsd`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchFlags.schema, "schema", "s", "", "XML schema file (required)")
	watchCmd.Flags().StringVar(&watchFlags.feedType, "feed-type", "", "feed type: election, officeholders (overrides config)")
	watchCmd.Flags().StringVarP(&watchFlags.output, "output", "o", "text", "output format: text, json")
	_ = watchCmd.MarkFlagRequired("schema")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if watchFlags.feedType != "" {
		cfg.Validation.FeedType = watchFlags.feedType
	}

	format, err := cli.ParseOutputFormat(watchFlags.output)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	v, cleanup, err := buildValidator(cfg, logger)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}
	defer cleanup()

	ctx, stop := cli.SignalContext()
	defer stop()

	formatter := cli.NewFormatter(format)
	validate := func(feedPath string) error {
		report, err := v.Run(ctx, feedPath, watchFlags.schema)
		if err != nil {
			return err
		}
		if err := formatter.FormatTo(os.Stdout, report); err != nil {
			return err
		}
		if !report.Passed {
			logger.Warn("feed failed validation",
				"feed", feedPath,
				"errors", report.Count(rules.SeverityError),
			)
		}
		return nil
	}

	watcher, err := watch.New(watch.Config{
		Path:     args[0],
		Debounce: cfg.Watch.Debounce,
	}, logger)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}
	defer watcher.Stop()

	if spec := cfg.Watch.Schedule; spec != "" {
		scheduler, err := watch.NewScheduler(spec, logger, func() error {
			return validate(args[0])
		})
		if err != nil {
			return cli.NewCommandError("watch", err)
		}
		scheduler.Start(ctx)
	}

	// Validate once up front so a bad schema path fails immediately.
	if info, statErr := os.Stat(args[0]); statErr == nil && !info.IsDir() {
		if err := validate(args[0]); err != nil {
			return cli.NewCommandError("watch", fmt.Errorf("initial validation: %w", err))
		}
	}

	return watcher.Run(ctx, validate)
}
