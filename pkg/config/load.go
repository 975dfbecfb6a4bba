package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults,
// and validates the result. Environment variables are not consulted;
// use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Variables follow the naming
// convention SCRUTINEER_SECTION_FIELD (e.g. SCRUTINEER_OCDIDS_SOURCE)
// and always take precedence over file values.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("SCRUTINEER_VALIDATION_FEED_TYPE"); val != "" {
		cfg.Validation.FeedType = val
	}
	if val := os.Getenv("SCRUTINEER_VALIDATION_REQUIRED_LANGUAGES"); val != "" {
		cfg.Validation.RequiredLanguages = splitList(val)
	}
	if val := os.Getenv("SCRUTINEER_VALIDATION_RULES"); val != "" {
		cfg.Validation.Rules = splitList(val)
	}
	if val := os.Getenv("SCRUTINEER_VALIDATION_SKIP_RULES"); val != "" {
		cfg.Validation.SkipRules = splitList(val)
	}

	if val := os.Getenv("SCRUTINEER_OCDIDS_COUNTRY_CODE"); val != "" {
		cfg.OCDIDs.CountryCode = val
	}
	if val := os.Getenv("SCRUTINEER_OCDIDS_LOCAL_FILE"); val != "" {
		cfg.OCDIDs.LocalFile = val
	}
	if val := os.Getenv("SCRUTINEER_OCDIDS_CACHE_DIR"); val != "" {
		cfg.OCDIDs.CacheDir = val
	}
	if val := os.Getenv("SCRUTINEER_OCDIDS_SOURCE"); val != "" {
		cfg.OCDIDs.Source = val
	}
	if val := os.Getenv("SCRUTINEER_OCDIDS_GIT_REPO"); val != "" {
		cfg.OCDIDs.GitRepo = val
	}
	if val := os.Getenv("SCRUTINEER_OCDIDS_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.OCDIDs.Timeout = d
		}
	}

	if val := os.Getenv("SCRUTINEER_LOGGING_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("SCRUTINEER_LOGGING_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}

	if val := os.Getenv("SCRUTINEER_HISTORY_PATH"); val != "" {
		cfg.History.Path = val
		cfg.History.Enabled = true
	}

	if val := os.Getenv("SCRUTINEER_WATCH_DEBOUNCE"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Watch.Debounce = d
		}
	}
	if val := os.Getenv("SCRUTINEER_WATCH_SCHEDULE"); val != "" {
		cfg.Watch.Schedule = val
	}
}

func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
