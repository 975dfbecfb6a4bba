package rules

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/language"
)

// OptionalAndEmpty warns on optional elements present but empty; an
// empty optional element should simply be omitted.
type OptionalAndEmpty struct {
	ctx      *Context
	previous *element
}

func NewOptionalAndEmpty(ctx *Context) *OptionalAndEmpty { return &OptionalAndEmpty{ctx: ctx} }

func (r *OptionalAndEmpty) Name() string { return "OptionalAndEmpty" }

func (r *OptionalAndEmpty) Elements() []string {
	if r.ctx.Facts == nil {
		return nil
	}
	return r.ctx.Facts.OptionalChildren()
}

func (r *OptionalAndEmpty) CheckElement(el *element) *Issue {
	// The same element can be listed under several types; skip the
	// repeat invocation.
	if el == r.previous {
		return nil
	}
	r.previous = el

	if len(el.Children) == 0 && el.TrimmedText() == "" && len(el.Attrs) == 0 {
		return Warningf("optional element %s is empty", el.Tag).At(el.Line)
	}
	return nil
}

// EmptyText warns on Text elements that contain only whitespace.
type EmptyText struct {
	ctx *Context
}

func NewEmptyText(ctx *Context) *EmptyText { return &EmptyText{ctx: ctx} }

func (r *EmptyText) Name() string { return "EmptyText" }

func (r *EmptyText) Elements() []string { return []string{"Text"} }

func (r *EmptyText) CheckElement(el *element) *Issue {
	if el.Text != "" && el.TrimmedText() == "" {
		return Warningf("Text element is empty").At(el.Line)
	}
	return nil
}

// LanguageCode checks that Text language attributes are valid BCP-47
// tags with known subtags.
type LanguageCode struct {
	ctx *Context
}

func NewLanguageCode(ctx *Context) *LanguageCode { return &LanguageCode{ctx: ctx} }

func (r *LanguageCode) Name() string { return "LanguageCode" }

func (r *LanguageCode) Elements() []string { return []string{"Text"} }

func (r *LanguageCode) CheckElement(el *element) *Issue {
	lang, ok := el.Attr("language")
	if !ok {
		return nil
	}
	if _, err := language.Parse(lang); err != nil {
		return Errorf("%q is not a valid language code", lang).At(el.Line)
	}
	return nil
}

// AllCaps warns when ballot names, contest names, or full names are
// written entirely in capitals.
type AllCaps struct {
	ctx *Context
}

func NewAllCaps(ctx *Context) *AllCaps { return &AllCaps{ctx: ctx} }

func (r *AllCaps) Name() string { return "AllCaps" }

func (r *AllCaps) Elements() []string {
	return []string{"Candidate", "CandidateContest", "PartyContest", "Person"}
}

func (r *AllCaps) CheckElement(el *element) *Issue {
	var nameTag string
	switch el.Tag {
	case "Candidate":
		nameTag = "BallotName"
	case "CandidateContest", "PartyContest":
		nameTag = "Name"
	case "Person":
		nameTag = "FullName"
	}

	nameEl := el.Find(nameTag)
	if nameEl == nil {
		return nil
	}
	text := nameEl.TrimmedText()
	if text == "" {
		if t := nameEl.Find("Text"); t != nil {
			text = t.TrimmedText()
		}
	}
	if text == "" {
		return nil
	}
	if text == strings.ToUpper(text) && text != strings.ToLower(text) {
		return Warningf("%s of %s is in all caps: %q", nameTag, el.Tag, text).At(el.Line)
	}
	return nil
}

// AllLanguages requires name elements to carry a Text entry for every
// configured language.
type AllLanguages struct {
	ctx *Context
}

func NewAllLanguages(ctx *Context) *AllLanguages { return &AllLanguages{ctx: ctx} }

func (r *AllLanguages) Name() string { return "AllLanguages" }

func (r *AllLanguages) Elements() []string {
	return []string{"BallotName", "BallotTitle", "FullName", "Name"}
}

func (r *AllLanguages) CheckElement(el *element) *Issue {
	texts := el.FindAll("Text")
	if len(texts) == 0 {
		return nil
	}

	provided := make(map[string]struct{}, len(texts))
	for _, t := range texts {
		provided[t.AttrValue("language")] = struct{}{}
	}

	var missing []string
	for _, lang := range r.ctx.RequiredLanguages {
		if _, ok := provided[lang]; !ok {
			missing = append(missing, lang)
		}
	}
	if len(missing) > 0 {
		return Errorf("%s is missing required languages: %s",
			el.Tag, strings.Join(missing, ", ")).At(el.Line)
	}
	return nil
}

// hungarianPrefixes maps entity tags to their accepted objectId prefix.
var hungarianPrefixes = map[string]string{
	"BallotMeasureContest":   "bmc",
	"BallotMeasureSelection": "bms",
	"BallotStyle":            "bs",
	"Candidate":              "can",
	"CandidateContest":       "cc",
	"CandidateSelection":     "cs",
	"Coalition":              "coa",
	"ContactInformation":     "ci",
	"Hours":                  "hours",
	"Office":                 "off",
	"OfficeGroup":            "og",
	"Party":                  "par",
	"PartyContest":           "pc",
	"PartySelection":         "ps",
	"Person":                 "per",
	"ReportingDevice":        "rd",
	"ReportingUnit":          "ru",
	"RetentionContest":       "rc",
	"Schedule":               "sched",
}

// HungarianStyleNotation reports object ids that do not follow the
// naming convention for their entity type. Informational only.
type HungarianStyleNotation struct {
	ctx *Context
}

func NewHungarianStyleNotation(ctx *Context) *HungarianStyleNotation {
	return &HungarianStyleNotation{ctx: ctx}
}

func (r *HungarianStyleNotation) Name() string { return "HungarianStyleNotation" }

func (r *HungarianStyleNotation) Elements() []string {
	tags := make([]string, 0, len(hungarianPrefixes))
	for tag := range hungarianPrefixes {
		tags = append(tags, tag)
	}
	return tags
}

func (r *HungarianStyleNotation) CheckElement(el *element) *Issue {
	id := el.ObjectID()
	if id == "" {
		return nil
	}
	prefix := hungarianPrefixes[el.Tag]
	if !strings.HasPrefix(id, prefix) {
		return Infof("%s object id %s does not use the expected prefix %q",
			el.Tag, id, prefix).At(el.Line)
	}
	return nil
}

var stableIDRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidStableID checks external identifiers of other-type "stable"
// against the stable id format.
type ValidStableID struct {
	ctx *Context
}

func NewValidStableID(ctx *Context) *ValidStableID { return &ValidStableID{ctx: ctx} }

func (r *ValidStableID) Name() string { return "ValidStableID" }

func (r *ValidStableID) Elements() []string { return []string{"ExternalIdentifier"} }

func (r *ValidStableID) CheckElement(el *element) *Issue {
	if el.ChildText("Type") != "other" || el.ChildText("OtherType") != "stable" {
		return nil
	}
	value := el.ChildText("Value")
	if !stableIDRe.MatchString(value) {
		return Errorf("stable id %q is not in the correct format", value).At(el.Line)
	}
	return nil
}

// CheckIdentifiers requires contests, candidates, and parties to carry
// external identifiers with non-empty, unique values.
type CheckIdentifiers struct {
	ctx *Context
}

func NewCheckIdentifiers(ctx *Context) *CheckIdentifiers { return &CheckIdentifiers{ctx: ctx} }

func (r *CheckIdentifiers) Name() string { return "CheckIdentifiers" }

func (r *CheckIdentifiers) CheckTree() *Issue {
	if r.ctx.Tree == nil {
		return nil
	}

	var findings []Finding
	valueUses := make(map[string][]int)

	for _, tag := range []string{"Candidate", "Contest", "Party"} {
		for _, entity := range r.ctx.Tree.FindAll(tag) {
			// Contest stages restate the parent contest's identifiers.
			if entity.Parent != nil && entity.Parent.Tag == "ContestStageCollection" {
				continue
			}
			ids := entity.Child("ExternalIdentifiers")
			if ids == nil {
				findings = append(findings, Finding{
					Message: fmt.Sprintf("%s %s is missing external identifiers", tag, entity.ObjectID()),
					Line:    entity.Line,
				})
				continue
			}
			identifiers := ids.FindAll("ExternalIdentifier")
			if len(identifiers) == 0 {
				findings = append(findings, Finding{
					Message: fmt.Sprintf("%s %s is missing an external identifier", tag, entity.ObjectID()),
					Line:    ids.Line,
				})
				continue
			}
			for _, identifier := range identifiers {
				value := identifier.ChildText("Value")
				if value == "" {
					findings = append(findings, Finding{
						Message: fmt.Sprintf("%s %s has an external identifier without a value", tag, entity.ObjectID()),
						Line:    identifier.Line,
					})
					continue
				}
				valueUses[value] = append(valueUses[value], identifier.Line)
			}
		}
	}

	for value, lines := range valueUses {
		if len(lines) > 1 {
			findings = append(findings, Finding{
				Message: fmt.Sprintf("external identifier value %q is used %d times", value, len(lines)),
				Line:    lines[1],
			})
		}
	}

	if len(findings) == 0 {
		return nil
	}
	sortFindings(findings)
	return Aggregate(SeverityError, "entities have missing or duplicated external identifiers", findings)
}
