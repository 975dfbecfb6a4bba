// Package logging builds the structured slog logger used across
// scrutineer, configured by level and output format.
package logging
