package rules

import (
	"fmt"
	"sort"
	"strings"

	"electoral-hq/scrutineer/pkg/schema"
)

// OtherType enforces the Type/OtherType pairing on elements whose
// schema type carries an "other" enumeration: OtherType must be set
// exactly when Type is "other".
type OtherType struct {
	ctx *Context
}

func NewOtherType(ctx *Context) *OtherType { return &OtherType{ctx: ctx} }

func (r *OtherType) Name() string { return "OtherType" }

func (r *OtherType) Elements() []string {
	if r.ctx.Facts == nil {
		return nil
	}
	tags := make([]string, 0, len(r.ctx.Facts.TypesWithOther))
	for tag := range r.ctx.Facts.TypesWithOther {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func (r *OtherType) CheckElement(el *element) *Issue {
	typ := el.ChildText("Type")
	other := el.ChildText("OtherType")
	switch {
	case typ == "other" && strings.TrimSpace(other) == "":
		return Errorf("%s has type other but no OtherType value", el.Tag).At(el.Line)
	case typ != "other" && strings.TrimSpace(other) != "":
		return Errorf("%s has an OtherType value but type %q, expected other",
			el.Tag, typ).At(el.Line)
	}
	return nil
}

// ValidEnumerations rejects OtherType values that duplicate a proper
// enumeration value of the element's type.
type ValidEnumerations struct {
	ctx *Context
}

func NewValidEnumerations(ctx *Context) *ValidEnumerations {
	return &ValidEnumerations{ctx: ctx}
}

func (r *ValidEnumerations) Name() string { return "ValidEnumerations" }

func (r *ValidEnumerations) Elements() []string {
	if r.ctx.Facts == nil {
		return nil
	}
	tags := make([]string, 0, len(r.ctx.Facts.TypesWithOther))
	for tag := range r.ctx.Facts.TypesWithOther {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func (r *ValidEnumerations) CheckElement(el *element) *Issue {
	if el.ChildText("Type") != "other" {
		return nil
	}
	other := el.ChildText("OtherType")
	if other == "" {
		return nil
	}
	if _, ok := r.ctx.Facts.EnumerationValues()[other]; ok {
		return Errorf("%s OtherType %q duplicates an enumeration value, set Type instead",
			el.Tag, other).At(el.Line)
	}
	return nil
}

// ValidIDREF requires every schema-declared reference element to point
// at defined object ids.
type ValidIDREF struct {
	ctx     *Context
	defined map[string]struct{}
}

func NewValidIDREF(ctx *Context) *ValidIDREF {
	r := &ValidIDREF{ctx: ctx, defined: make(map[string]struct{})}
	if ctx.Tree != nil {
		ctx.Tree.Walk(func(el *element) {
			collectSet(r.defined, el.ObjectID())
		})
	}
	return r
}

func (r *ValidIDREF) Name() string { return "ValidIDREF" }

func (r *ValidIDREF) Elements() []string {
	if r.ctx.Facts == nil {
		return nil
	}
	tags := make([]string, 0, len(r.ctx.Facts.ReferenceElements))
	for tag := range r.ctx.Facts.ReferenceElements {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func (r *ValidIDREF) CheckElement(el *element) *Issue {
	kind := r.ctx.Facts.ReferenceElements[el.Tag]
	values := strings.Fields(el.TrimmedText())
	if kind == schema.RefSingle && len(values) > 1 {
		return Errorf("%s must reference a single id, got %d", el.Tag, len(values)).At(el.Line)
	}

	var findings []Finding
	for _, value := range values {
		if _, ok := r.defined[value]; !ok {
			findings = append(findings, Finding{
				Message: fmt.Sprintf("%s references undefined id %s", el.Tag, value),
				Line:    el.Line,
			})
		}
	}
	switch len(findings) {
	case 0:
		return nil
	case 1:
		return Errorf("%s", findings[0].Message).At(el.Line)
	default:
		return Aggregate(SeverityError,
			fmt.Sprintf("%s references undefined ids", el.Tag), findings)
	}
}
