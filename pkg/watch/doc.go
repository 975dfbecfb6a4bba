// Package watch re-runs feed validation when feeds change on disk,
// with debouncing to absorb editor and upload event bursts, and an
// optional cron schedule for periodic sweeps.
package watch
