package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"electoral-hq/scrutineer/pkg/cli"
	"electoral-hq/scrutineer/pkg/config"
	"electoral-hq/scrutineer/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "scrutineer",
	Short: "Scrutineer - election results feed validator",
	Long: `Scrutineer validates NIST 1500-100 election results feeds.

It checks a feed against its XML schema and a catalogue of semantic
rules, covering:
  - Schema conformance and encoding
  - Reference integrity between entities
  - Geopolitical unit composition (roots, cycles, duplicates)
  - Official OCD jurisdiction identifiers
  - Contest, party, person, and office consistency`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and maps errors to exit codes.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(cli.ExitRuntimeError)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "scrutineer.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig reads the configured file. A missing file is an error only
// when --config was given explicitly; otherwise defaults apply.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if _, err := os.Stat(cfgFile); err != nil {
		if os.IsNotExist(err) && !cmd.Flags().Changed("config") {
			return config.DefaultConfig(), nil
		}
		return nil, cli.NewConfigError("config", err.Error())
	}
	return config.LoadConfigWithEnvOverrides(cfgFile)
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	lc := logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format}
	if verbose {
		lc.Level = "debug"
	}
	return logging.New(lc)
}
