package rules

import (
	"sort"
	"strings"
)

// RefGatherer supplies the two value sets a reference-integrity check
// operates on. Implementations gather fresh sets on every call; nothing
// is cached between runs.
type RefGatherer interface {
	// ReferenceValues returns every identifier actually referenced
	// somewhere in the document.
	ReferenceValues() map[string]struct{}

	// DefinedValues returns every identifier formally defined by an
	// authoritative collection in the document.
	DefinedValues() map[string]struct{}
}

// CheckReferences reports every referenced identifier that resolves to
// no defined entity. The difference is reported sorted, one finding per
// dangling value, bundled into a single Error. A nil result means every
// reference resolved.
func CheckReferences(what string, g RefGatherer) *Issue {
	defined := g.DefinedValues()

	var dangling []string
	for ref := range g.ReferenceValues() {
		if _, ok := defined[ref]; !ok {
			dangling = append(dangling, ref)
		}
	}
	if len(dangling) == 0 {
		return nil
	}
	sort.Strings(dangling)

	findings := make([]Finding, len(dangling))
	for i, ref := range dangling {
		findings[i] = Finding{Message: "no defined " + what + " for " + ref}
	}
	return Aggregate(SeverityError,
		"undefined "+what+" references: "+strings.Join(dangling, ", "),
		findings)
}

// collectSet inserts every whitespace-separated id of each value into
// dst. Single ids and IDREFS lists both pass through unchanged.
func collectSet(dst map[string]struct{}, values ...string) {
	for _, v := range values {
		for _, id := range strings.Fields(v) {
			dst[id] = struct{}{}
		}
	}
}
