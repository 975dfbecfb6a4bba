package rules

import (
	"strings"
)

// OfficeMissingOfficeHolderPersonData requires every office holder
// reference to point at a defined person, and every office to name at
// least one holder.
type OfficeMissingOfficeHolderPersonData struct {
	ctx *Context
}

func NewOfficeMissingOfficeHolderPersonData(ctx *Context) *OfficeMissingOfficeHolderPersonData {
	return &OfficeMissingOfficeHolderPersonData{ctx: ctx}
}

func (r *OfficeMissingOfficeHolderPersonData) Name() string {
	return "OfficeMissingOfficeHolderPersonData"
}

func (r *OfficeMissingOfficeHolderPersonData) ReferenceValues() map[string]struct{} {
	refs := make(map[string]struct{})
	if r.ctx.Tree == nil {
		return refs
	}
	for _, office := range r.ctx.Tree.FindAll("Office") {
		for _, ref := range office.FindAll("OfficeHolderPersonIds") {
			collectSet(refs, ref.TrimmedText())
		}
	}
	return refs
}

func (r *OfficeMissingOfficeHolderPersonData) DefinedValues() map[string]struct{} {
	defined := make(map[string]struct{})
	if r.ctx.Tree == nil {
		return defined
	}
	if parent := r.ctx.Tree.Find("PersonCollection"); parent != nil {
		for _, person := range parent.FindAll("Person") {
			collectSet(defined, person.ObjectID())
		}
	}
	return defined
}

func (r *OfficeMissingOfficeHolderPersonData) CheckTree() *Issue {
	if r.ctx.Tree != nil {
		for _, office := range r.ctx.Tree.FindAll("Office") {
			if strings.TrimSpace(office.ChildText("OfficeHolderPersonIds")) == "" {
				return Errorf("office %s is missing office holder person data",
					office.ObjectID()).At(office.Line)
			}
		}
	}
	return CheckReferences("person", r)
}

// OfficesHaveJurisdictionID requires every office to carry exactly one
// jurisdiction-id external identifier with a value.
type OfficesHaveJurisdictionID struct {
	ctx *Context
}

func NewOfficesHaveJurisdictionID(ctx *Context) *OfficesHaveJurisdictionID {
	return &OfficesHaveJurisdictionID{ctx: ctx}
}

func (r *OfficesHaveJurisdictionID) Name() string { return "OfficesHaveJurisdictionID" }

func (r *OfficesHaveJurisdictionID) Elements() []string { return []string{"Office"} }

func jurisdictionValues(office *element) []string {
	var values []string
	for _, ident := range office.FindAll("ExternalIdentifier") {
		if ident.ChildText("Type") != "other" {
			continue
		}
		if ident.ChildText("OtherType") != "jurisdiction-id" {
			continue
		}
		values = append(values, ident.ChildText("Value"))
	}
	return values
}

func (r *OfficesHaveJurisdictionID) CheckElement(el *element) *Issue {
	values := jurisdictionValues(el)
	switch {
	case len(values) == 0:
		return Errorf("office %s is missing a jurisdiction-id", el.ObjectID()).At(el.Line)
	case len(values) > 1:
		return Errorf("office %s has more than one jurisdiction-id", el.ObjectID()).At(el.Line)
	case strings.TrimSpace(values[0]) == "":
		return Errorf("office %s jurisdiction-id is empty", el.ObjectID()).At(el.Line)
	}
	return nil
}

// ValidJurisdictionID requires office jurisdiction ids to reference
// defined GpUnits.
type ValidJurisdictionID struct {
	ctx *Context
}

func NewValidJurisdictionID(ctx *Context) *ValidJurisdictionID {
	return &ValidJurisdictionID{ctx: ctx}
}

func (r *ValidJurisdictionID) Name() string { return "ValidJurisdictionID" }

func (r *ValidJurisdictionID) ReferenceValues() map[string]struct{} {
	refs := make(map[string]struct{})
	if r.ctx.Tree == nil {
		return refs
	}
	for _, office := range r.ctx.Tree.FindAll("Office") {
		for _, value := range jurisdictionValues(office) {
			collectSet(refs, value)
		}
	}
	return refs
}

func (r *ValidJurisdictionID) DefinedValues() map[string]struct{} {
	defined := make(map[string]struct{})
	for _, gp := range gpUnitElements(r.ctx.Tree) {
		collectSet(defined, gp.ObjectID())
	}
	return defined
}

func (r *ValidJurisdictionID) CheckTree() *Issue {
	return CheckReferences("GpUnit", r)
}
