package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var hexColorRe = regexp.MustCompile(`^[0-9a-fA-F]{6}$`)

// PartiesHaveValidColors warns on parties with missing or malformed
// color values.
type PartiesHaveValidColors struct {
	ctx *Context
}

func NewPartiesHaveValidColors(ctx *Context) *PartiesHaveValidColors {
	return &PartiesHaveValidColors{ctx: ctx}
}

func (r *PartiesHaveValidColors) Name() string { return "PartiesHaveValidColors" }

func (r *PartiesHaveValidColors) Elements() []string { return []string{"Party"} }

func (r *PartiesHaveValidColors) CheckElement(el *element) *Issue {
	colors := el.FindAll("Color")
	if len(colors) == 0 {
		return nil
	}
	if len(colors) > 1 {
		return Warningf("party %s has more than one color", el.ObjectID()).At(el.Line)
	}
	color := colors[0].TrimmedText()
	if color == "" {
		return Warningf("party %s has an empty color", el.ObjectID()).At(colors[0].Line)
	}
	if !hexColorRe.MatchString(color) {
		return Warningf("party %s color %q is not a valid hex color",
			el.ObjectID(), color).At(colors[0].Line)
	}
	return nil
}

// ValidateDuplicateColors reports parties sharing the same color.
type ValidateDuplicateColors struct {
	ctx *Context
}

func NewValidateDuplicateColors(ctx *Context) *ValidateDuplicateColors {
	return &ValidateDuplicateColors{ctx: ctx}
}

func (r *ValidateDuplicateColors) Name() string { return "ValidateDuplicateColors" }

func (r *ValidateDuplicateColors) CheckTree() *Issue {
	if r.ctx.Tree == nil {
		return nil
	}

	byColor := make(map[string][]string)
	for _, party := range r.ctx.Tree.FindAll("Party") {
		color := party.ChildText("Color")
		if color == "" {
			continue
		}
		byColor[color] = append(byColor[color], party.ObjectID())
	}

	colors := make([]string, 0, len(byColor))
	for color := range byColor {
		colors = append(colors, color)
	}
	sort.Strings(colors)

	var findings []Finding
	for _, color := range colors {
		if ids := byColor[color]; len(ids) > 1 {
			findings = append(findings, Finding{
				Message: fmt.Sprintf("parties %s share color %s", strings.Join(ids, ", "), color),
			})
		}
	}
	if len(findings) == 0 {
		return nil
	}
	return Aggregate(SeverityInfo, "parties with duplicate colors", findings)
}

// partyTextDuplicates reports duplicate values of a language-tagged
// child across all parties. Used for names and abbreviations.
func partyTextDuplicates(tree *element, child, what string) *Issue {
	if tree == nil {
		return nil
	}

	// language|text -> party object ids
	seen := make(map[string][]string)
	for _, party := range tree.FindAll("Party") {
		holder := party.Child(child)
		if holder == nil {
			continue
		}
		for _, text := range holder.FindAll("Text") {
			key := text.AttrValue("language") + "|" + text.TrimmedText()
			seen[key] = append(seen[key], party.ObjectID())
		}
	}

	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var findings []Finding
	for _, key := range keys {
		ids := seen[key]
		if len(ids) < 2 {
			continue
		}
		lang, value, _ := strings.Cut(key, "|")
		findings = append(findings, Finding{
			Message: fmt.Sprintf("parties %s share the %s %q (language %s)",
				strings.Join(ids, ", "), what, value, lang),
		})
	}
	if len(findings) == 0 {
		return nil
	}
	return Aggregate(SeverityInfo, fmt.Sprintf("parties with duplicate %ss", what), findings)
}

// DuplicatedPartyName reports parties sharing a name in the same
// language.
type DuplicatedPartyName struct {
	ctx *Context
}

func NewDuplicatedPartyName(ctx *Context) *DuplicatedPartyName {
	return &DuplicatedPartyName{ctx: ctx}
}

func (r *DuplicatedPartyName) Name() string { return "DuplicatedPartyName" }

func (r *DuplicatedPartyName) CheckTree() *Issue {
	return partyTextDuplicates(r.ctx.Tree, "Name", "name")
}

// DuplicatedPartyAbbreviation reports parties sharing an abbreviation
// in the same language.
type DuplicatedPartyAbbreviation struct {
	ctx *Context
}

func NewDuplicatedPartyAbbreviation(ctx *Context) *DuplicatedPartyAbbreviation {
	return &DuplicatedPartyAbbreviation{ctx: ctx}
}

func (r *DuplicatedPartyAbbreviation) Name() string { return "DuplicatedPartyAbbreviation" }

func (r *DuplicatedPartyAbbreviation) CheckTree() *Issue {
	return partyTextDuplicates(r.ctx.Tree, "InternationalizedAbbreviation", "abbreviation")
}

// partyMissingTranslations reports parties whose language-tagged child
// does not cover every language used by any party for that child.
func partyMissingTranslations(tree *element, child, what string) *Issue {
	if tree == nil {
		return nil
	}

	parties := tree.FindAll("Party")
	languages := make(map[string]struct{})
	for _, party := range parties {
		holder := party.Child(child)
		if holder == nil {
			continue
		}
		for _, text := range holder.FindAll("Text") {
			if lang := text.AttrValue("language"); lang != "" {
				languages[lang] = struct{}{}
			}
		}
	}
	if len(languages) == 0 {
		return nil
	}
	wanted := make([]string, 0, len(languages))
	for lang := range languages {
		wanted = append(wanted, lang)
	}
	sort.Strings(wanted)

	var findings []Finding
	for _, party := range parties {
		have := make(map[string]struct{})
		if holder := party.Child(child); holder != nil {
			for _, text := range holder.FindAll("Text") {
				have[text.AttrValue("language")] = struct{}{}
			}
		}
		var missing []string
		for _, lang := range wanted {
			if _, ok := have[lang]; !ok {
				missing = append(missing, lang)
			}
		}
		if len(missing) > 0 {
			findings = append(findings, Finding{
				Message: fmt.Sprintf("party %s is missing the %s translation for %s",
					party.ObjectID(), what, strings.Join(missing, ", ")),
				Line: party.Line,
			})
		}
	}
	if len(findings) == 0 {
		return nil
	}
	return Aggregate(SeverityInfo, fmt.Sprintf("parties with missing %s translations", what), findings)
}

// MissingPartyNameTranslation reports parties that do not translate
// their name into every language used by the feed's parties.
type MissingPartyNameTranslation struct {
	ctx *Context
}

func NewMissingPartyNameTranslation(ctx *Context) *MissingPartyNameTranslation {
	return &MissingPartyNameTranslation{ctx: ctx}
}

func (r *MissingPartyNameTranslation) Name() string { return "MissingPartyNameTranslation" }

func (r *MissingPartyNameTranslation) CheckTree() *Issue {
	return partyMissingTranslations(r.ctx.Tree, "Name", "name")
}

// MissingPartyAbbreviationTranslation reports parties that do not
// translate their abbreviation into every language used by the feed's
// parties.
type MissingPartyAbbreviationTranslation struct {
	ctx *Context
}

func NewMissingPartyAbbreviationTranslation(ctx *Context) *MissingPartyAbbreviationTranslation {
	return &MissingPartyAbbreviationTranslation{ctx: ctx}
}

func (r *MissingPartyAbbreviationTranslation) Name() string {
	return "MissingPartyAbbreviationTranslation"
}

func (r *MissingPartyAbbreviationTranslation) CheckTree() *Issue {
	return partyMissingTranslations(r.ctx.Tree, "InternationalizedAbbreviation", "abbreviation")
}

// MissingPartyAffiliation requires every party referenced by a person
// or candidate to be defined in the party collection.
type MissingPartyAffiliation struct {
	ctx *Context
}

func NewMissingPartyAffiliation(ctx *Context) *MissingPartyAffiliation {
	return &MissingPartyAffiliation{ctx: ctx}
}

func (r *MissingPartyAffiliation) Name() string { return "MissingPartyAffiliation" }

func (r *MissingPartyAffiliation) ReferenceValues() map[string]struct{} {
	refs := make(map[string]struct{})
	if r.ctx.Tree == nil {
		return refs
	}
	for _, collection := range []string{"PersonCollection", "CandidateCollection"} {
		parent := r.ctx.Tree.Find(collection)
		if parent == nil {
			continue
		}
		for _, ref := range parent.FindAll("PartyId") {
			collectSet(refs, ref.TrimmedText())
		}
	}
	return refs
}

func (r *MissingPartyAffiliation) DefinedValues() map[string]struct{} {
	defined := make(map[string]struct{})
	if r.ctx.Tree == nil {
		return defined
	}
	if parent := r.ctx.Tree.Find("PartyCollection"); parent != nil {
		for _, party := range parent.FindAll("Party") {
			collectSet(defined, party.ObjectID())
		}
	}
	return defined
}

func (r *MissingPartyAffiliation) CheckTree() *Issue {
	return CheckReferences("party", r)
}

// CoalitionParties requires every coalition to name at least two
// defined parties.
type CoalitionParties struct {
	ctx *Context
}

func NewCoalitionParties(ctx *Context) *CoalitionParties {
	return &CoalitionParties{ctx: ctx}
}

func (r *CoalitionParties) Name() string { return "CoalitionParties" }

func (r *CoalitionParties) Elements() []string { return []string{"Coalition"} }

func (r *CoalitionParties) CheckElement(el *element) *Issue {
	ids := strings.Fields(el.ChildText("PartyIds"))
	if len(ids) < 2 {
		return Errorf("coalition %s must define at least two party ids", el.ObjectID()).At(el.Line)
	}
	return nil
}

// PartyLeadershipMustExist requires the persons named as party leaders
// or chairs to be defined in the person collection.
type PartyLeadershipMustExist struct {
	ctx *Context
}

func NewPartyLeadershipMustExist(ctx *Context) *PartyLeadershipMustExist {
	return &PartyLeadershipMustExist{ctx: ctx}
}

func (r *PartyLeadershipMustExist) Name() string { return "PartyLeadershipMustExist" }

// leadershipTypes are the external identifier types that point at a
// person.
var leadershipTypes = map[string]struct{}{
	"party-leader-id": {},
	"party-chair-id":  {},
}

func (r *PartyLeadershipMustExist) ReferenceValues() map[string]struct{} {
	refs := make(map[string]struct{})
	if r.ctx.Tree == nil {
		return refs
	}
	for _, party := range r.ctx.Tree.FindAll("Party") {
		for _, ident := range party.FindAll("ExternalIdentifier") {
			if _, ok := leadershipTypes[ident.ChildText("OtherType")]; !ok {
				continue
			}
			collectSet(refs, ident.ChildText("Value"))
		}
	}
	return refs
}

func (r *PartyLeadershipMustExist) DefinedValues() map[string]struct{} {
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

func (r *PartyLeadershipMustExist) CheckTree() *Issue {
	return CheckReferences("person", r)
}
