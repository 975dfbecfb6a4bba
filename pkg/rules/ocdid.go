package rules

import (
	"strings"
)

// ocdIDValues returns the ocd-id external identifier values of a
// GpUnit.
func ocdIDValues(gp *element) []string {
	var values []string
	for _, ident := range gp.FindAll("ExternalIdentifier") {
		if ident.ChildText("Type") != "ocd-id" {
			continue
		}
		values = append(values, ident.ChildText("Value"))
	}
	return values
}

// ocdIDLabelTypo returns the first external identifier label that
// matches ocd-id in the wrong case, e.g. oCd-id. Such identifiers are
// skipped by ocdIDValues, so the typo must be reported on its own.
func ocdIDLabelTypo(gp *element) string {
	for _, ident := range gp.FindAll("ExternalIdentifier") {
		label := ident.ChildText("Type")
		if label != "ocd-id" && strings.EqualFold(label, "ocd-id") {
			return label
		}
	}
	return ""
}

// ocdSetupIssue converts a failed dataset setup into an error issue.
// OCD rules fail closed when the catalogue could not be loaded.
func ocdSetupIssue(ctx *Context) *Issue {
	if ctx.OCDErr != nil {
		return Errorf("OCD identifier dataset is unavailable: %v", ctx.OCDErr)
	}
	return nil
}

// ElectoralDistrictOcdID requires the GpUnit behind every electoral
// district reference to carry an ocd-id listed in the jurisdiction
// dataset.
type ElectoralDistrictOcdID struct {
	ctx     *Context
	gpUnits map[string]*element
}

func NewElectoralDistrictOcdID(ctx *Context) *ElectoralDistrictOcdID {
	r := &ElectoralDistrictOcdID{ctx: ctx, gpUnits: make(map[string]*element)}
	for _, gp := range gpUnitElements(ctx.Tree) {
		if id := gp.ObjectID(); id != "" {
			r.gpUnits[id] = gp
		}
	}
	return r
}

func (r *ElectoralDistrictOcdID) Name() string { return "ElectoralDistrictOcdID" }

func (r *ElectoralDistrictOcdID) Elements() []string { return []string{"ElectoralDistrictId"} }

func (r *ElectoralDistrictOcdID) CheckElement(el *element) *Issue {
	if issue := ocdSetupIssue(r.ctx); issue != nil {
		return issue.At(el.Line)
	}
	districtID := el.TrimmedText()
	if districtID == "" {
		return nil
	}
	gp, ok := r.gpUnits[districtID]
	if !ok {
		owner := districtID
		if el.Parent != nil && el.Parent.ObjectID() != "" {
			owner = el.Parent.ObjectID()
		}
		return Errorf("%s does not refer to a GpUnit", owner).At(el.Line)
	}
	if label := ocdIDLabelTypo(gp); label != "" {
		return Errorf("Should be ocd-id and not %s", label).At(gp.Line)
	}
	values := ocdIDValues(gp)
	if len(values) == 0 {
		return Errorf("GpUnit %s referenced by electoral district is missing an ocd-id",
			districtID).At(gp.Line)
	}
	for _, value := range values {
		if _, ok := r.ctx.OCDIDs[value]; !ok {
			return Errorf("ocd-id %q on GpUnit %s is not in the official identifier set",
				value, districtID).At(gp.Line)
		}
	}
	return nil
}

// GpUnitOcdID warns on reporting units whose ocd-id is missing from the
// jurisdiction dataset.
type GpUnitOcdID struct {
	ctx *Context
}

func NewGpUnitOcdID(ctx *Context) *GpUnitOcdID { return &GpUnitOcdID{ctx: ctx} }

func (r *GpUnitOcdID) Name() string { return "GpUnitOcdID" }

func (r *GpUnitOcdID) Elements() []string { return []string{"GpUnit", "ReportingUnit"} }

func (r *GpUnitOcdID) CheckElement(el *element) *Issue {
	if issue := ocdSetupIssue(r.ctx); issue != nil {
		return issue.At(el.Line)
	}
	for _, value := range ocdIDValues(el) {
		if value == "" {
			continue
		}
		if _, ok := r.ctx.OCDIDs[value]; !ok {
			return Warningf("ocd-id %q on reporting unit %s is not in the official identifier set",
				value, el.ObjectID()).At(el.Line)
		}
	}
	return nil
}

// OcdIDsAreLowerCase warns on ocd-id values containing upper-case
// characters.
type OcdIDsAreLowerCase struct {
	ctx *Context
}

func NewOcdIDsAreLowerCase(ctx *Context) *OcdIDsAreLowerCase {
	return &OcdIDsAreLowerCase{ctx: ctx}
}

func (r *OcdIDsAreLowerCase) Name() string { return "OcdIDsAreLowerCase" }

func (r *OcdIDsAreLowerCase) Elements() []string { return []string{"ExternalIdentifier"} }

func (r *OcdIDsAreLowerCase) CheckElement(el *element) *Issue {
	if el.ChildText("Type") != "ocd-id" {
		return nil
	}
	value := el.ChildText("Value")
	if value == "" || value == strings.ToLower(value) {
		return nil
	}
	return Warningf("ocd-id %q is not all lower case", value).At(el.Line)
}
