package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"electoral-hq/scrutineer/pkg/cli"
	"electoral-hq/scrutineer/pkg/config"
	"electoral-hq/scrutineer/pkg/ocdids"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the OCD identifier catalogue",
	Long: `Download the OCD identifier catalogue regardless of cache freshness.

Validation refreshes the catalogue automatically when the upstream
repository has newer data. This command forces the download, for
example after the cache was corrupted or to warm it before an offline
run.`,
	RunE: runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	var source ocdids.Source
	switch cfg.OCDIDs.Source {
	case config.OCDSourceGit:
		source = &ocdids.GitSource{URL: cfg.OCDIDs.GitRepo, Timeout: cfg.OCDIDs.Timeout}
	default:
		source = &ocdids.GitHubSource{}
	}

	cache, err := ocdids.New(ocdids.Config{
		CountryCode: cfg.OCDIDs.CountryCode,
		LocalFile:   cfg.OCDIDs.LocalFile,
		CacheDir:    cfg.OCDIDs.CacheDir,
		Source:      source,
		Logger:      logger,
	})
	if err != nil {
		return cli.NewCommandError("refresh", err)
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	path, err := cache.Refresh(ctx)
	if err != nil {
		return cli.NewCommandError("refresh", err)
	}
	fmt.Printf("OCD identifier catalogue refreshed: %s\n", path)
	return nil
}
