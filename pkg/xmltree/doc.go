// Package xmltree parses an election feed into a generic attributed
// element tree with source line tracking.
//
// The tree is loaded once per validation run and shared read-only by
// every rule; nothing in this package mutates an element after Parse
// returns.
package xmltree
