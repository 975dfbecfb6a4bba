package config

import (
	"time"
)

// Default values applied to unset fields.
const (
	DefaultFeedType    = FeedTypeElection
	DefaultCountryCode = "us"
	DefaultOCDSource   = OCDSourceGitHub
	DefaultOCDGitRepo  = "https://github.com/opencivicdata/ocd-division-ids.git"
	DefaultOCDTimeout  = 30 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	DefaultHistoryPath = "scrutineer-history.db"

	DefaultWatchDebounce = 500 * time.Millisecond
)

// ApplyDefaults fills unset fields with their default values. It never
// overwrites a value the user provided.
func ApplyDefaults(cfg *Config) {
	if cfg.Validation.FeedType == "" {
		cfg.Validation.FeedType = DefaultFeedType
	}
	if cfg.Validation.RequiredLanguages == nil {
		cfg.Validation.RequiredLanguages = []string{"en"}
	}

	if cfg.OCDIDs.CountryCode == "" {
		cfg.OCDIDs.CountryCode = DefaultCountryCode
	}
	if cfg.OCDIDs.Source == "" {
		cfg.OCDIDs.Source = DefaultOCDSource
	}
	if cfg.OCDIDs.GitRepo == "" {
		cfg.OCDIDs.GitRepo = DefaultOCDGitRepo
	}
	if cfg.OCDIDs.Timeout <= 0 {
		cfg.OCDIDs.Timeout = DefaultOCDTimeout
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}

	if cfg.History.Path == "" {
		cfg.History.Path = DefaultHistoryPath
	}

	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}
}

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
