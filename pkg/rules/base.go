// Package rules implements the validation rule framework and the rule
// catalogue for election feeds.
//
// A rule is either an ElementRule, invoked once per matching element in
// document order, or a TreeRule, invoked exactly once against the whole
// document. Rules report violations as Issue values; they never panic
// out of a check and never mutate the tree.
package rules

import (
	"log/slog"

	"github.com/jacoelho/xsd"

	"electoral-hq/scrutineer/pkg/schema"
	"electoral-hq/scrutineer/pkg/xmltree"
)

// element aliases the tree node type used throughout the catalogue.
type element = xmltree.Element

// Rule is the unit of validation logic.
type Rule interface {
	// Name is the stable identifier the rule is registered under.
	Name() string
}

// ElementRule applies to every element whose tag appears in Elements().
// A rule returning an empty element list is never invoked; that is a
// valid outcome, not an error.
type ElementRule interface {
	Rule
	Elements() []string
	CheckElement(el *xmltree.Element) *Issue
}

// TreeRule checks a document-wide invariant against the whole tree.
type TreeRule interface {
	Rule
	CheckTree() *Issue
}

// Context carries the shared read-only inputs handed to every rule
// constructor. Working state scoped to a single check is built inside
// the check call, never stored on the rule across runs.
type Context struct {
	// Tree is the feed's root element. May be nil for fragment inputs
	// in tests; rules treat a missing root as nothing to validate.
	Tree *xmltree.Element

	// Facts holds the schema-derived element and type facts.
	Facts *schema.Facts

	// Schema is the compiled schema used for conformance checking.
	// When nil the conformance rule compiles SchemaPath itself.
	Schema *xsd.Schema

	// SchemaPath and FeedPath locate the raw inputs for rules that need
	// to re-read them (schema conformance, encoding declaration).
	SchemaPath string
	FeedPath   string

	// OCDIDs is the loaded jurisdiction identifier catalogue, keyed by
	// identifier. Nil when no OCD rule is active. OCDErr records a
	// failed dataset setup; OCD rules fail closed on it while unrelated
	// rules proceed.
	OCDIDs map[string]string
	OCDErr error

	// RequiredLanguages is the language set the AllLanguages rule
	// enforces on internationalized text.
	RequiredLanguages []string

	Logger *slog.Logger
}

func (c *Context) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
