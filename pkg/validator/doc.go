// Package validator orchestrates a full validation run: it parses the
// feed, compiles the schema, builds the configured rule catalogue, runs
// every rule, and assembles the report. Metrics and run history are
// recorded when configured.
package validator
