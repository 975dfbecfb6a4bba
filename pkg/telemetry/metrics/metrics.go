package metrics

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"electoral-hq/scrutineer/pkg/rules"
)

// Collector registers and records validation metrics on a private
// Prometheus registry.
type Collector struct {
	registry *prometheus.Registry

	runsTotal   *prometheus.CounterVec
	runDuration prometheus.Histogram
	issuesTotal *prometheus.CounterVec
	entityCount *prometheus.GaugeVec
}

// NewCollector creates a collector with its own registry. If registry
// is nil a fresh one is used.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "scrutineer",
				Name:      "runs_total",
				Help:      "Total validation runs by result",
			},
			[]string{"result"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "scrutineer",
				Name:      "run_duration_seconds",
				Help:      "Duration of validation runs in seconds",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
		),
		issuesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "scrutineer",
				Name:      "issues_total",
				Help:      "Issues reported by severity and rule",
			},
			[]string{"severity", "rule"},
		),
		entityCount: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "scrutineer",
				Name:      "feed_entities",
				Help:      "Entities seen in the most recent feed by kind",
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(c.runsTotal, c.runDuration, c.issuesTotal, c.entityCount)
	return c
}

// Registry exposes the underlying registry, e.g. for an HTTP handler.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// RecordRun records the outcome and duration of one validation run.
func (c *Collector) RecordRun(passed bool, duration time.Duration) {
	result := "failed"
	if passed {
		result = "passed"
	}
	c.runsTotal.WithLabelValues(result).Inc()
	c.runDuration.Observe(duration.Seconds())
}

// RecordIssue counts one reported issue.
func (c *Collector) RecordIssue(rule string, severity rules.Severity) {
	c.issuesTotal.WithLabelValues(severity.String(), rule).Inc()
}

// RecordEntityCount records how many entities of one kind the feed
// contained.
func (c *Collector) RecordEntityCount(kind string, count int) {
	c.entityCount.WithLabelValues(kind).Set(float64(count))
}

// Write renders the registry in Prometheus text exposition format.
func (c *Collector) Write(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range families {
		if err := enc.Encode(family); err != nil {
			return fmt.Errorf("failed to encode metrics: %w", err)
		}
	}
	return nil
}

// WriteFile dumps the registry to a text file, replacing any previous
// dump.
func (c *Collector) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create metrics file: %w", err)
	}
	defer f.Close()

	if err := c.Write(f); err != nil {
		return err
	}
	return f.Close()
}
