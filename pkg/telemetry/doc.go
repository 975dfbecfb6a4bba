// Package telemetry provides observability for scrutineer.
//
// # Components
//
//   - logging: structured logging built on log/slog
//   - metrics: Prometheus metrics for validation runs
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "text"})
//
//	collector := metrics.NewCollector(nil)
//	collector.RecordRun(report.Passed, report.Duration)
//
// Metrics are held on a private registry and exposed through the text
// exposition format, written to a file after each run when configured.
// A long-lived scrape endpoint is deliberately out of scope for a batch
// validator.
package telemetry
