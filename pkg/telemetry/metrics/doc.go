// Package metrics records validation run metrics on a private
// Prometheus registry and renders them in text exposition format.
package metrics
