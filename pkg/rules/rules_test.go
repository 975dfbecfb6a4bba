package rules

import (
	"testing"

	"electoral-hq/scrutineer/pkg/xmltree"
)

// parseFeed builds a rule context from an inline feed document.
func parseFeed(t *testing.T, src string) *Context {
	t.Helper()
	root, err := xmltree.ParseString(src)
	if err != nil {
		t.Fatalf("parse feed: %v", err)
	}
	return &Context{Tree: root}
}

// runElementRule applies an element rule to every matching element and
// returns the issues raised, in document order.
func runElementRule(ctx *Context, rule ElementRule) []*Issue {
	var issues []*Issue
	if ctx.Tree == nil {
		return issues
	}
	match := make(map[string]struct{})
	for _, tag := range rule.Elements() {
		match[tag] = struct{}{}
	}
	ctx.Tree.Walk(func(el *xmltree.Element) {
		if _, ok := match[el.Tag]; !ok {
			return
		}
		if issue := rule.CheckElement(el); issue != nil {
			issues = append(issues, issue)
		}
	})
	return issues
}
