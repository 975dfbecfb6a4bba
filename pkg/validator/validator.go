package validator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jacoelho/xsd"

	"electoral-hq/scrutineer/pkg/config"
	"electoral-hq/scrutineer/pkg/history"
	"electoral-hq/scrutineer/pkg/ocdids"
	"electoral-hq/scrutineer/pkg/rules"
	"electoral-hq/scrutineer/pkg/schema"
	"electoral-hq/scrutineer/pkg/telemetry/metrics"
	"electoral-hq/scrutineer/pkg/xmltree"
)

// entityTags are the feed entities counted in the report summary.
var entityTags = []string{"Party", "Person", "Candidate", "Contest", "GpUnit", "Office"}

// Validator runs the rule catalogue against election feeds.
type Validator struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Collector
	history *history.Store
	ocd     *ocdids.Cache
}

// Option customizes a Validator.
type Option func(*Validator)

// WithMetrics attaches a metrics collector.
func WithMetrics(c *metrics.Collector) Option {
	return func(v *Validator) { v.metrics = c }
}

// WithHistory attaches a run history store.
func WithHistory(s *history.Store) Option {
	return func(v *Validator) { v.history = s }
}

// New builds a validator from the configuration. The OCD identifier
// cache is created lazily on the first run that needs it.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Validator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	v := &Validator{cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Run validates feedPath against schemaPath and returns the report.
// A feed that cannot be parsed or a schema that cannot be compiled is a
// fatal error, not a reported issue; a failed identifier catalogue
// fetch fails only the rules that need the catalogue.
func (v *Validator) Run(ctx context.Context, feedPath, schemaPath string) (*Report, error) {
	started := time.Now()

	tree, err := xmltree.ParseFile(feedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	facts, err := schema.ParseFile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema facts: %w", err)
	}
	compiled, err := xsd.LoadFile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	ruleCtx := &rules.Context{
		Tree:              tree,
		Facts:             facts,
		Schema:            compiled,
		SchemaPath:        schemaPath,
		FeedPath:          feedPath,
		RequiredLanguages: v.cfg.Validation.RequiredLanguages,
		Logger:            v.logger,
	}
	v.loadOCDIDs(ctx, ruleCtx)

	built, err := rules.Build(ruleCtx, rules.Options{
		Enabled:           v.cfg.Validation.Rules,
		Disabled:          v.disabledRules(),
		SeverityOverrides: v.cfg.Validation.Overrides(),
	})
	if err != nil {
		return nil, err
	}

	report := &Report{
		FeedPath:     feedPath,
		SchemaPath:   schemaPath,
		StartedAt:    started,
		EntityCounts: countEntities(tree),
	}
	v.execute(tree, built, report)
	report.Duration = time.Since(started)
	report.Passed = report.Count(rules.SeverityError) == 0

	v.record(ctx, report)
	return report, nil
}

// disabledRules merges the configured skip list with the rules that do
// not apply to the configured feed type.
func (v *Validator) disabledRules() []string {
	disabled := append([]string(nil), v.cfg.Validation.SkipRules...)
	if v.cfg.Validation.FeedType == config.FeedTypeElection {
		// Officeholder invariants do not hold for election feeds.
		disabled = append(disabled, "ProhibitElectionData", "PersonHasOffice")
	}
	return disabled
}

// loadOCDIDs populates the rule context with the identifier catalogue.
// Failures are recorded on the context so only OCD rules fail.
func (v *Validator) loadOCDIDs(ctx context.Context, ruleCtx *rules.Context) {
	if v.ocd == nil {
		cache, err := v.newOCDCache()
		if err != nil {
			ruleCtx.OCDErr = err
			return
		}
		v.ocd = cache
	}

	loadCtx, cancel := context.WithTimeout(ctx, v.cfg.OCDIDs.Timeout)
	defer cancel()

	ids, err := v.ocd.Load(loadCtx)
	if err != nil {
		v.logger.Warn("ocd catalogue unavailable", "error", err)
		ruleCtx.OCDErr = err
		return
	}
	ruleCtx.OCDIDs = ids
}

func (v *Validator) newOCDCache() (*ocdids.Cache, error) {
	cfg := v.cfg.OCDIDs

	var source ocdids.Source
	switch cfg.Source {
	case config.OCDSourceGit:
		source = &ocdids.GitSource{URL: cfg.GitRepo, Timeout: cfg.Timeout}
	default:
		source = &ocdids.GitHubSource{}
	}

	return ocdids.New(ocdids.Config{
		CountryCode: cfg.CountryCode,
		LocalFile:   cfg.LocalFile,
		CacheDir:    cfg.CacheDir,
		Source:      source,
		Logger:      v.logger,
	})
}

// execute runs every built rule and collects its issues on the report.
func (v *Validator) execute(tree *xmltree.Element, built []rules.Rule, report *Report) {
	for _, rule := range built {
		switch r := rule.(type) {
		case rules.ElementRule:
			tags := r.Elements()
			if len(tags) == 0 {
				continue
			}
			match := make(map[string]struct{}, len(tags))
			for _, tag := range tags {
				match[tag] = struct{}{}
			}
			tree.Walk(func(el *xmltree.Element) {
				if _, ok := match[el.Tag]; !ok {
					return
				}
				if issue := r.CheckElement(el); issue != nil {
					report.add(rule.Name(), issue)
				}
			})
		case rules.TreeRule:
			if issue := r.CheckTree(); issue != nil {
				report.add(rule.Name(), issue)
			}
		}
	}
}

func countEntities(tree *xmltree.Element) map[string]int {
	counts := make(map[string]int, len(entityTags))
	for _, tag := range entityTags {
		counts[tag] = 0
	}
	tree.Walk(func(el *xmltree.Element) {
		tag := el.Tag
		if tag == "ReportingUnit" {
			tag = "GpUnit"
		}
		if _, ok := counts[tag]; ok {
			counts[tag]++
		}
	})
	return counts
}

// record publishes the finished report to metrics and history.
func (v *Validator) record(ctx context.Context, report *Report) {
	v.logger.Info("validation finished",
		"feed", report.FeedPath,
		"passed", report.Passed,
		"errors", report.Count(rules.SeverityError),
		"warnings", report.Count(rules.SeverityWarning),
		"duration", report.Duration,
	)

	if v.metrics != nil {
		v.metrics.RecordRun(report.Passed, report.Duration)
		for _, issue := range report.Issues {
			v.metrics.RecordIssue(issue.Rule, issue.Severity)
		}
		for kind, count := range report.EntityCounts {
			v.metrics.RecordEntityCount(kind, count)
		}
		if path := v.cfg.Metrics.TextFile; path != "" {
			if err := v.metrics.WriteFile(path); err != nil {
				v.logger.Warn("failed to write metrics file", "path", path, "error", err)
			}
		}
	}

	if v.history != nil {
		_, err := v.history.Record(ctx, history.Run{
			FeedPath:   report.FeedPath,
			SchemaPath: report.SchemaPath,
			StartedAt:  report.StartedAt,
			Duration:   report.Duration,
			Errors:     report.Count(rules.SeverityError),
			Warnings:   report.Count(rules.SeverityWarning),
			Infos:      report.Count(rules.SeverityInfo),
			Passed:     report.Passed,
		})
		if err != nil {
			v.logger.Warn("failed to record run history", "error", err)
		}
	}
}
