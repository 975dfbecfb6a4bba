package config

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"electoral-hq/scrutineer/pkg/rules"
)

// Validate checks the configuration for values the rest of the program
// cannot work with. It is called after defaults are applied, so unset
// fields have already been filled.
func Validate(cfg *Config) error {
	switch cfg.Validation.FeedType {
	case FeedTypeElection, FeedTypeOfficeholders:
	default:
		return fmt.Errorf("validation.feed_type must be %q or %q, got %q",
			FeedTypeElection, FeedTypeOfficeholders, cfg.Validation.FeedType)
	}

	for _, name := range cfg.Validation.Rules {
		if _, ok := rules.Lookup(name); !ok {
			return fmt.Errorf("validation.rules: unknown rule %q", name)
		}
	}
	for _, name := range cfg.Validation.SkipRules {
		if _, ok := rules.Lookup(name); !ok {
			return fmt.Errorf("validation.skip_rules: unknown rule %q", name)
		}
	}
	for name, severity := range cfg.Validation.SeverityOverrides {
		if _, ok := rules.Lookup(name); !ok {
			return fmt.Errorf("validation.severity_overrides: unknown rule %q", name)
		}
		if _, err := rules.ParseSeverity(severity); err != nil {
			return fmt.Errorf("validation.severity_overrides[%s]: %w", name, err)
		}
	}

	switch cfg.OCDIDs.Source {
	case OCDSourceGitHub, OCDSourceGit:
	default:
		return fmt.Errorf("ocdids.source must be %q or %q, got %q",
			OCDSourceGitHub, OCDSourceGit, cfg.OCDIDs.Source)
	}
	if cfg.OCDIDs.CountryCode == "" && cfg.OCDIDs.LocalFile == "" {
		return fmt.Errorf("ocdids.country_code cannot be empty without a local file")
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q",
			cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", cfg.Logging.Format)
	}

	if cfg.History.Enabled && cfg.History.Path == "" {
		return fmt.Errorf("history.path cannot be empty when history is enabled")
	}

	if cfg.Watch.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Watch.Schedule); err != nil {
			return fmt.Errorf("watch.schedule is not a valid cron expression: %w", err)
		}
	}
	if cfg.Watch.Debounce <= 0 {
		return fmt.Errorf("watch.debounce must be positive")
	}

	return nil
}

// Overrides converts the configured severity override names to rule
// severities. Validate must have accepted the configuration first.
func (c *ValidationConfig) Overrides() map[string]rules.Severity {
	if len(c.SeverityOverrides) == 0 {
		return nil
	}
	out := make(map[string]rules.Severity, len(c.SeverityOverrides))
	for name, severity := range c.SeverityOverrides {
		sev, err := rules.ParseSeverity(severity)
		if err != nil {
			continue
		}
		out[name] = sev
	}
	return out
}
