package rules

import (
	"fmt"
	"sort"
)

// OnlyOneElection requires exactly one Election element per report.
type OnlyOneElection struct {
	ctx *Context
}

func NewOnlyOneElection(ctx *Context) *OnlyOneElection { return &OnlyOneElection{ctx: ctx} }

func (r *OnlyOneElection) Name() string { return "OnlyOneElection" }

func (r *OnlyOneElection) Elements() []string { return []string{"ElectionReport"} }

func (r *OnlyOneElection) CheckElement(el *element) *Issue {
	elections := el.FindAll("Election")
	if len(elections) > 1 {
		return Errorf("ElectionReport has more than one Election").At(elections[1].Line)
	}
	return nil
}

// ProhibitElectionData rejects feeds that carry Election data where only
// pre-election (officeholder) data is expected.
type ProhibitElectionData struct {
	ctx *Context
}

func NewProhibitElectionData(ctx *Context) *ProhibitElectionData {
	return &ProhibitElectionData{ctx: ctx}
}

func (r *ProhibitElectionData) Name() string { return "ProhibitElectionData" }

func (r *ProhibitElectionData) CheckTree() *Issue {
	if r.ctx.Tree == nil {
		return nil
	}
	if el := r.ctx.Tree.Find("Election"); el != nil {
		return Errorf("Election data is prohibited in officeholders feeds").At(el.Line)
	}
	return nil
}

// DuplicateID requires every objectId in the document to be unique.
type DuplicateID struct {
	ctx *Context
}

func NewDuplicateID(ctx *Context) *DuplicateID { return &DuplicateID{ctx: ctx} }

func (r *DuplicateID) Name() string { return "DuplicateID" }

func (r *DuplicateID) CheckTree() *Issue {
	if r.ctx.Tree == nil {
		return nil
	}

	firstSeen := make(map[string]int)
	var findings []Finding
	r.ctx.Tree.Walk(func(el *element) {
		id := el.ObjectID()
		if id == "" {
			return
		}
		if _, ok := firstSeen[id]; ok {
			findings = append(findings, Finding{
				Message: fmt.Sprintf("duplicate object id %s", id),
				Line:    el.Line,
			})
			return
		}
		firstSeen[id] = el.Line
	})

	if len(findings) == 0 {
		return nil
	}
	return Aggregate(SeverityError, "object ids are not unique in the feed", findings)
}

// UniqueLabel requires label attributes on internationalized text
// elements to be unique across the document.
type UniqueLabel struct {
	ctx *Context
}

func NewUniqueLabel(ctx *Context) *UniqueLabel { return &UniqueLabel{ctx: ctx} }

func (r *UniqueLabel) Name() string { return "UniqueLabel" }

func (r *UniqueLabel) CheckTree() *Issue {
	if r.ctx.Tree == nil {
		return nil
	}

	seen := make(map[string]struct{})
	duplicates := make(map[string]int)
	r.ctx.Tree.Walk(func(el *element) {
		label := el.AttrValue("label")
		if label == "" {
			return
		}
		if _, ok := seen[label]; ok {
			if _, already := duplicates[label]; !already {
				duplicates[label] = el.Line
			}
			return
		}
		seen[label] = struct{}{}
	})

	if len(duplicates) == 0 {
		return nil
	}

	labels := make([]string, 0, len(duplicates))
	for label := range duplicates {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	findings := make([]Finding, len(labels))
	for i, label := range labels {
		findings[i] = Finding{
			Message: fmt.Sprintf("label %s is reused", label),
			Line:    duplicates[label],
		}
	}
	return Aggregate(SeverityError, "labels are not unique in the feed", findings)
}
