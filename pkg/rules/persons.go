package rules

import (
	"fmt"
	"sort"
	"strings"
)

// PersonHasUniqueFullName reports persons that share a full name with
// another person without carrying distinguishing birthday data.
type PersonHasUniqueFullName struct {
	ctx *Context
}

func NewPersonHasUniqueFullName(ctx *Context) *PersonHasUniqueFullName {
	return &PersonHasUniqueFullName{ctx: ctx}
}

func (r *PersonHasUniqueFullName) Name() string { return "PersonHasUniqueFullName" }

func (r *PersonHasUniqueFullName) CheckTree() *Issue {
	if r.ctx.Tree == nil {
		return nil
	}

	type personInfo struct {
		id       string
		birthday string
		line     int
	}
	byName := make(map[string][]personInfo)
	for _, person := range r.ctx.Tree.FindAll("Person") {
		name := person.ChildText("FullName")
		if name == "" {
			if fn := person.Child("FullName"); fn != nil {
				name = fn.ChildText("Text")
			}
		}
		if name == "" {
			continue
		}
		byName[name] = append(byName[name], personInfo{
			id:       person.ObjectID(),
			birthday: person.ChildText("DateOfBirth"),
			line:     person.Line,
		})
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	var findings []Finding
	for _, name := range names {
		persons := byName[name]
		if len(persons) < 2 {
			continue
		}
		// Birthdays that differ disambiguate the persons.
		birthdays := make(map[string]struct{})
		distinct := true
		for _, p := range persons {
			if p.birthday == "" {
				distinct = false
				break
			}
			if _, dup := birthdays[p.birthday]; dup {
				distinct = false
				break
			}
			birthdays[p.birthday] = struct{}{}
		}
		if distinct {
			continue
		}
		ids := make([]string, 0, len(persons))
		for _, p := range persons {
			ids = append(ids, p.id)
		}
		findings = append(findings, Finding{
			Message: fmt.Sprintf("persons %s share the full name %q",
				strings.Join(ids, ", "), name),
		})
	}
	if len(findings) == 0 {
		return nil
	}
	return Aggregate(SeverityInfo, "persons with ambiguous full names", findings)
}

// PersonsMissingPartyData warns on persons without a party affiliation.
type PersonsMissingPartyData struct {
	ctx *Context
}

func NewPersonsMissingPartyData(ctx *Context) *PersonsMissingPartyData {
	return &PersonsMissingPartyData{ctx: ctx}
}

func (r *PersonsMissingPartyData) Name() string { return "PersonsMissingPartyData" }

func (r *PersonsMissingPartyData) Elements() []string { return []string{"Person"} }

func (r *PersonsMissingPartyData) CheckElement(el *element) *Issue {
	if el.ChildText("PartyId") == "" {
		return Warningf("person %s is missing a party affiliation", el.ObjectID()).At(el.Line)
	}
	return nil
}

// validGenders are the accepted gender strings, matched
// case-insensitively. An absent or empty value is accepted.
var validGenders = map[string]struct{}{
	"male":       {},
	"m":          {},
	"female":     {},
	"f":          {},
	"nonbinary":  {},
	"other":      {},
	"unknown":    {},
	"undeclared": {},
}

// PersonsHaveValidGender rejects gender values outside the accepted
// set.
type PersonsHaveValidGender struct {
	ctx *Context
}

func NewPersonsHaveValidGender(ctx *Context) *PersonsHaveValidGender {
	return &PersonsHaveValidGender{ctx: ctx}
}

func (r *PersonsHaveValidGender) Name() string { return "PersonsHaveValidGender" }

func (r *PersonsHaveValidGender) Elements() []string { return []string{"Gender"} }

func (r *PersonsHaveValidGender) CheckElement(el *element) *Issue {
	gender := el.TrimmedText()
	if gender == "" {
		return nil
	}
	if _, ok := validGenders[strings.ToLower(gender)]; !ok {
		return Errorf("gender %q is not valid", gender).At(el.Line)
	}
	return nil
}

// PersonHasOffice requires every person in an officeholders feed to
// hold exactly one office, unless the person is only referenced as a
// party leader or chair.
type PersonHasOffice struct {
	ctx *Context
}

func NewPersonHasOffice(ctx *Context) *PersonHasOffice {
	return &PersonHasOffice{ctx: ctx}
}

func (r *PersonHasOffice) Name() string { return "PersonHasOffice" }

func (r *PersonHasOffice) CheckTree() *Issue {
	if r.ctx.Tree == nil {
		return nil
	}
	personParent := r.ctx.Tree.Find("PersonCollection")
	if personParent == nil {
		return nil
	}

	// Office holders and party leadership both legitimize a person.
	officeCounts := make(map[string]int)
	if officeParent := r.ctx.Tree.Find("OfficeCollection"); officeParent != nil {
		for _, office := range officeParent.FindAll("Office") {
			for _, ref := range office.FindAll("OfficeHolderPersonIds") {
				for _, id := range strings.Fields(ref.TrimmedText()) {
					officeCounts[id]++
				}
			}
		}
	}
	leadership := make(map[string]struct{})
	for _, ident := range r.ctx.Tree.FindAll("ExternalIdentifier") {
		if _, ok := leadershipTypes[ident.ChildText("OtherType")]; ok {
			if id := ident.ChildText("Value"); id != "" {
				leadership[id] = struct{}{}
			}
		}
	}

	var findings []Finding
	for _, person := range personParent.FindAll("Person") {
		id := person.ObjectID()
		if id == "" {
			continue
		}
		if _, ok := leadership[id]; ok {
			continue
		}
		if n := officeCounts[id]; n != 1 {
			findings = append(findings, Finding{
				Message: fmt.Sprintf("person %s is referenced by %d offices, must have exactly one", id, n),
				Line:    person.Line,
			})
		}
	}
	if len(findings) == 0 {
		return nil
	}
	return Aggregate(SeverityError, "persons without exactly one office", findings)
}
