// Package history keeps a SQLite log of validation runs so repeated
// feed deliveries can be compared over time.
package history
