package config

import (
	"time"
)

// Config is the root configuration for scrutineer.
type Config struct {
	Validation ValidationConfig `yaml:"validation"`
	OCDIDs     OCDIDsConfig     `yaml:"ocdids"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	History    HistoryConfig    `yaml:"history"`
	Watch      WatchConfig      `yaml:"watch"`
}

// ValidationConfig selects and tunes the rule set.
type ValidationConfig struct {
	// FeedType is "election" or "officeholders". Officeholders feeds
	// additionally prohibit election data.
	FeedType string `yaml:"feed_type"`

	// Rules, when non-empty, restricts the run to the named rules.
	Rules []string `yaml:"rules"`

	// SkipRules removes rules from the run.
	SkipRules []string `yaml:"skip_rules"`

	// SeverityOverrides rewrites the severity of a rule's issues, e.g.
	// demoting jurisdiction checks to warnings.
	SeverityOverrides map[string]string `yaml:"severity_overrides"`

	// RequiredLanguages is enforced on internationalized text.
	RequiredLanguages []string `yaml:"required_languages"`

	// RuleOptionsFile points at a JSON file with per-rule options,
	// validated against the rule options schema.
	RuleOptionsFile string `yaml:"rule_options_file"`
}

// OCDIDsConfig configures the jurisdiction identifier catalogue.
type OCDIDsConfig struct {
	// CountryCode selects the catalogue file, e.g. "us".
	CountryCode string `yaml:"country_code"`

	// LocalFile bypasses the remote and reads the catalogue from disk.
	LocalFile string `yaml:"local_file"`

	// CacheDir holds downloaded catalogues between runs.
	CacheDir string `yaml:"cache_dir"`

	// Source is "github" or "git".
	Source string `yaml:"source"`

	// GitRepo is the clone URL used by the git source.
	GitRepo string `yaml:"git_repo"`

	// Timeout bounds remote catalogue operations.
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is debug, info, warn, or error.
	Level string `yaml:"level"`

	// Format is json or text.
	Format string `yaml:"format"`
}

// MetricsConfig configures validation metrics collection.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`

	// TextFile, when set, receives a Prometheus text exposition dump
	// after each run.
	TextFile string `yaml:"text_file"`
}

// HistoryConfig configures the run history store.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file.
	Path string `yaml:"path"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	// Debounce coalesces bursts of file events into one revalidation.
	Debounce time.Duration `yaml:"debounce"`

	// Schedule is an optional cron expression for periodic
	// revalidation independent of file events.
	Schedule string `yaml:"schedule"`
}

// Feed types accepted by ValidationConfig.FeedType.
const (
	FeedTypeElection      = "election"
	FeedTypeOfficeholders = "officeholders"
)

// OCD catalogue sources accepted by OCDIDsConfig.Source.
const (
	OCDSourceGitHub = "github"
	OCDSourceGit    = "git"
)
