package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"electoral-hq/scrutineer/pkg/cli"
	"electoral-hq/scrutineer/pkg/config"
	"electoral-hq/scrutineer/pkg/history"
	"electoral-hq/scrutineer/pkg/rules"
	"electoral-hq/scrutineer/pkg/telemetry/metrics"
	"electoral-hq/scrutineer/pkg/validator"
)

var validateFlags struct {
	schema      string
	feedType    string
	ruleNames   []string
	skipRules   []string
	ruleOptions string
	output      string
}

var validateCmd = &cobra.Command{
	Use:   "validate <feed.xml>",
	Short: "Validate an election results feed",
	Long: `Validate a feed against its XML schema and the rule catalogue.

The exit code reports the verdict: 0 when the feed has no
error-severity issues, 1 when it does, 2 when scrutineer itself could
not complete the run.

Examples:
  # Validate an election feed
  scrutineer validate feed.xml --schema election_results.xsd

  # Validate an officeholders feed with two rules disabled
  scrutineer validate feed.xml --schema officeholders.xsd \
    --feed-type officeholders --skip-rules AllCaps,EmptyText

  # Machine-readable report
  scrutineer validate feed.xml --schema election_results.xsd --output json`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.schema, "schema", "s", "", "XML schema file (required)")
	validateCmd.Flags().StringVar(&validateFlags.feedType, "feed-type", "", "feed type: election, officeholders (overrides config)")
	validateCmd.Flags().StringSliceVar(&validateFlags.ruleNames, "rules", nil, "run only these rules")
	validateCmd.Flags().StringSliceVar(&validateFlags.skipRules, "skip-rules", nil, "skip these rules")
	validateCmd.Flags().StringVar(&validateFlags.ruleOptions, "rule-options", "", "JSON file with per-rule options")
	validateCmd.Flags().StringVarP(&validateFlags.output, "output", "o", "text", "output format: text, json")
	_ = validateCmd.MarkFlagRequired("schema")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyValidateFlags(cfg)

	format, err := cli.ParseOutputFormat(validateFlags.output)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	v, cleanup, err := buildValidator(cfg, logger)
	if err != nil {
		return cli.NewCommandError("validate", err)
	}
	defer cleanup()

	ctx, stop := cli.SignalContext()
	defer stop()

	report, err := v.Run(ctx, args[0], validateFlags.schema)
	if err != nil {
		return cli.NewCommandError("validate", err)
	}

	if err := cli.NewFormatter(format).FormatTo(os.Stdout, report); err != nil {
		return err
	}

	if !report.Passed {
		n := report.Count(rules.SeverityError)
		return cli.Exit(cli.ExitValidationFailed, fmt.Errorf("feed has %d validation errors", n))
	}
	return nil
}

// applyValidateFlags folds command-line overrides into the loaded
// configuration. Flags win over file and environment values.
func applyValidateFlags(cfg *config.Config) {
	if validateFlags.feedType != "" {
		cfg.Validation.FeedType = validateFlags.feedType
	}
	if len(validateFlags.ruleNames) > 0 {
		cfg.Validation.Rules = validateFlags.ruleNames
	}
	if len(validateFlags.skipRules) > 0 {
		cfg.Validation.SkipRules = append(cfg.Validation.SkipRules, validateFlags.skipRules...)
	}
	if validateFlags.ruleOptions != "" {
		cfg.Validation.RuleOptionsFile = validateFlags.ruleOptions
	}
}

// buildValidator wires metrics, history, and rule options per the
// configuration. The returned cleanup closes the history store.
func buildValidator(cfg *config.Config, logger *slog.Logger) (*validator.Validator, func(), error) {
	if cfg.Validation.RuleOptionsFile != "" {
		opts, err := config.LoadRuleOptions(cfg.Validation.RuleOptionsFile)
		if err != nil {
			return nil, nil, err
		}
		opts.Apply(&cfg.Validation)
	}

	var vopts []validator.Option
	cleanup := func() {}

	if cfg.Metrics.Enabled {
		vopts = append(vopts, validator.WithMetrics(metrics.NewCollector(nil)))
	}
	if cfg.History.Enabled {
		store, err := history.Open(history.Config{Path: cfg.History.Path})
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() {
			if err := store.Close(); err != nil {
				logger.Warn("failed to close history store", "error", err)
			}
		}
		vopts = append(vopts, validator.WithHistory(store))
	}

	v, err := validator.New(cfg, logger, vopts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return v, cleanup, nil
}
