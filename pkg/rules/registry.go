package rules

import (
	"fmt"
	"sort"
)

// Definition describes one catalogue entry: the rule's stable name, a
// short description for listings, its default severity class, and the
// constructor producing a fresh instance per run.
type Definition struct {
	Name        string
	Description string
	Severity    Severity
	New         func(*Context) Rule
}

// Catalogue is the full static rule registry, in execution order.
// Schema conformance runs first so rule findings are reported against a
// structurally valid feed.
var Catalogue = []Definition{
	{"Schema", "feed must conform to the schema", SeverityError,
		func(ctx *Context) Rule { return NewSchemaConformance(ctx, nil) }},
	{"Encoding", "feed encoding declaration must be UTF-8", SeverityError,
		func(ctx *Context) Rule { return NewEncoding(ctx) }},
	{"OnlyOneElection", "a feed carries at most one election", SeverityError,
		func(ctx *Context) Rule { return NewOnlyOneElection(ctx) }},
	{"ProhibitElectionData", "officeholders feeds must not carry election data", SeverityError,
		func(ctx *Context) Rule { return NewProhibitElectionData(ctx) }},
	{"DuplicateID", "objectId values must be unique", SeverityError,
		func(ctx *Context) Rule { return NewDuplicateID(ctx) }},
	{"UniqueLabel", "label attributes must be unique", SeverityError,
		func(ctx *Context) Rule { return NewUniqueLabel(ctx) }},
	{"ValidIDREF", "reference elements must point at defined ids", SeverityError,
		func(ctx *Context) Rule { return NewValidIDREF(ctx) }},
	{"OtherType", "OtherType is set exactly when Type is other", SeverityError,
		func(ctx *Context) Rule { return NewOtherType(ctx) }},
	{"ValidEnumerations", "OtherType must not duplicate enumeration values", SeverityError,
		func(ctx *Context) Rule { return NewValidEnumerations(ctx) }},
	{"OptionalAndEmpty", "optional elements should not be empty", SeverityWarning,
		func(ctx *Context) Rule { return NewOptionalAndEmpty(ctx) }},
	{"EmptyText", "Text elements should not be whitespace only", SeverityWarning,
		func(ctx *Context) Rule { return NewEmptyText(ctx) }},
	{"LanguageCode", "language attributes must be valid BCP 47 codes", SeverityError,
		func(ctx *Context) Rule { return NewLanguageCode(ctx) }},
	{"AllCaps", "display names should not be all capitals", SeverityWarning,
		func(ctx *Context) Rule { return NewAllCaps(ctx) }},
	{"AllLanguages", "internationalized text must cover required languages", SeverityError,
		func(ctx *Context) Rule { return NewAllLanguages(ctx) }},
	{"HungarianStyleNotation", "objectId prefixes should follow entity conventions", SeverityInfo,
		func(ctx *Context) Rule { return NewHungarianStyleNotation(ctx) }},
	{"ValidStableID", "stable external identifiers must be well formed", SeverityError,
		func(ctx *Context) Rule { return NewValidStableID(ctx) }},
	{"CheckIdentifiers", "entities carry unique stable external identifiers", SeverityError,
		func(ctx *Context) Rule { return NewCheckIdentifiers(ctx) }},
	{"PercentSum", "total-percent counts sum to 0 or 100", SeverityError,
		func(ctx *Context) Rule { return NewPercentSum(ctx) }},
	{"ProperBallotSelection", "ballot selections match their contest type", SeverityError,
		func(ctx *Context) Rule { return NewProperBallotSelection(ctx) }},
	{"DuplicateContestNames", "contests carry unique non-empty names", SeverityError,
		func(ctx *Context) Rule { return NewDuplicateContestNames(ctx) }},
	{"CandidatesReferencedOnce", "each candidate belongs to exactly one contest", SeverityError,
		func(ctx *Context) Rule { return NewCandidatesReferencedOnce(ctx) }},
	{"ContestHasMultipleOffices", "candidate contests reference exactly one office", SeverityError,
		func(ctx *Context) Rule { return NewContestHasMultipleOffices(ctx) }},
	{"VoteCountTypesCoherency", "vote count classes match the contest type", SeverityError,
		func(ctx *Context) Rule { return NewVoteCountTypesCoherency(ctx) }},
	{"PartisanPrimary", "primary contests declare their primary parties", SeverityWarning,
		func(ctx *Context) Rule { return NewPartisanPrimary(ctx) }},
	{"PartisanPrimaryHeuristic", "contest names should not suggest undeclared primaries", SeverityWarning,
		func(ctx *Context) Rule { return NewPartisanPrimaryHeuristic(ctx) }},
	{"CoalitionParties", "coalitions name at least two parties", SeverityError,
		func(ctx *Context) Rule { return NewCoalitionParties(ctx) }},
	{"ElectionStartDates", "election start dates should not be in the past", SeverityWarning,
		func(ctx *Context) Rule { return NewElectionStartDates(ctx) }},
	{"ElectionEndDates", "election end dates must not precede start or today", SeverityError,
		func(ctx *Context) Rule { return NewElectionEndDates(ctx) }},
	{"PartiesHaveValidColors", "party colors are valid six-digit hex", SeverityWarning,
		func(ctx *Context) Rule { return NewPartiesHaveValidColors(ctx) }},
	{"ValidateDuplicateColors", "parties should not share colors", SeverityInfo,
		func(ctx *Context) Rule { return NewValidateDuplicateColors(ctx) }},
	{"DuplicatedPartyName", "parties should not share names per language", SeverityInfo,
		func(ctx *Context) Rule { return NewDuplicatedPartyName(ctx) }},
	{"DuplicatedPartyAbbreviation", "parties should not share abbreviations per language", SeverityInfo,
		func(ctx *Context) Rule { return NewDuplicatedPartyAbbreviation(ctx) }},
	{"MissingPartyNameTranslation", "party names cover every feed language", SeverityInfo,
		func(ctx *Context) Rule { return NewMissingPartyNameTranslation(ctx) }},
	{"MissingPartyAbbreviationTranslation", "party abbreviations cover every feed language", SeverityInfo,
		func(ctx *Context) Rule { return NewMissingPartyAbbreviationTranslation(ctx) }},
	{"MissingPartyAffiliation", "referenced parties must be defined", SeverityError,
		func(ctx *Context) Rule { return NewMissingPartyAffiliation(ctx) }},
	{"PartyLeadershipMustExist", "party leaders and chairs must be defined persons", SeverityError,
		func(ctx *Context) Rule { return NewPartyLeadershipMustExist(ctx) }},
	{"PersonHasUniqueFullName", "person full names should be unambiguous", SeverityInfo,
		func(ctx *Context) Rule { return NewPersonHasUniqueFullName(ctx) }},
	{"PersonsMissingPartyData", "persons should carry a party affiliation", SeverityWarning,
		func(ctx *Context) Rule { return NewPersonsMissingPartyData(ctx) }},
	{"PersonsHaveValidGender", "gender values come from the accepted set", SeverityError,
		func(ctx *Context) Rule { return NewPersonsHaveValidGender(ctx) }},
	{"PersonHasOffice", "officeholders hold exactly one office", SeverityError,
		func(ctx *Context) Rule { return NewPersonHasOffice(ctx) }},
	{"OfficeMissingOfficeHolderPersonData", "offices reference defined office holders", SeverityError,
		func(ctx *Context) Rule { return NewOfficeMissingOfficeHolderPersonData(ctx) }},
	{"OfficesHaveJurisdictionID", "offices carry exactly one jurisdiction-id", SeverityError,
		func(ctx *Context) Rule { return NewOfficesHaveJurisdictionID(ctx) }},
	{"ValidJurisdictionID", "jurisdiction ids reference defined GpUnits", SeverityError,
		func(ctx *Context) Rule { return NewValidJurisdictionID(ctx) }},
	{"GpUnitsHaveSingleRoot", "the GpUnit composition graph has one root", SeverityError,
		func(ctx *Context) Rule { return NewGpUnitsHaveSingleRoot(ctx) }},
	{"GpUnitsCyclesRefs", "the GpUnit composition graph is acyclic and closed", SeverityError,
		func(ctx *Context) Rule { return NewGpUnitsCyclesRefs(ctx) }},
	{"DuplicateGpUnits", "GpUnits are not duplicated", SeverityError,
		func(ctx *Context) Rule { return NewDuplicateGpUnits(ctx) }},
	{"ElectoralDistrictOcdID", "electoral district ocd-ids are in the official set", SeverityError,
		func(ctx *Context) Rule { return NewElectoralDistrictOcdID(ctx) }},
	{"GpUnitOcdID", "reporting unit ocd-ids are in the official set", SeverityWarning,
		func(ctx *Context) Rule { return NewGpUnitOcdID(ctx) }},
	{"OcdIDsAreLowerCase", "ocd-ids are lower case", SeverityWarning,
		func(ctx *Context) Rule { return NewOcdIDsAreLowerCase(ctx) }},
	{"URIValidator", "URIs carry protocol, domain and ascii encoding", SeverityError,
		func(ctx *Context) Rule { return NewURIValidator(ctx) }},
	{"ValidURIAnnotation", "contact URI annotations are well formed", SeverityError,
		func(ctx *Context) Rule { return NewValidURIAnnotation(ctx) }},
}

// Lookup returns the definition registered under name.
func Lookup(name string) (Definition, bool) {
	for _, def := range Catalogue {
		if def.Name == name {
			return def, true
		}
	}
	return Definition{}, false
}

// Names returns the catalogue's rule names sorted alphabetically.
func Names() []string {
	names := make([]string, len(Catalogue))
	for i, def := range Catalogue {
		names[i] = def.Name
	}
	sort.Strings(names)
	return names
}

// Options selects and tunes the rule set for a run. Enabled, when
// non-empty, restricts the run to the named rules; Disabled removes
// rules afterwards. SeverityOverrides rewrites the severity of every
// issue a rule reports.
type Options struct {
	Enabled           []string
	Disabled          []string
	SeverityOverrides map[string]Severity
}

// Build instantiates the selected catalogue rules against ctx, in
// catalogue order. Unknown rule names are an error.
func Build(ctx *Context, opts Options) ([]Rule, error) {
	for _, name := range opts.Enabled {
		if _, ok := Lookup(name); !ok {
			return nil, fmt.Errorf("unknown rule %q", name)
		}
	}
	for _, name := range opts.Disabled {
		if _, ok := Lookup(name); !ok {
			return nil, fmt.Errorf("unknown rule %q", name)
		}
	}
	for name := range opts.SeverityOverrides {
		if _, ok := Lookup(name); !ok {
			return nil, fmt.Errorf("unknown rule %q in severity overrides", name)
		}
	}

	enabled := make(map[string]struct{}, len(opts.Enabled))
	for _, name := range opts.Enabled {
		enabled[name] = struct{}{}
	}
	disabled := make(map[string]struct{}, len(opts.Disabled))
	for _, name := range opts.Disabled {
		disabled[name] = struct{}{}
	}

	var built []Rule
	for _, def := range Catalogue {
		if len(enabled) > 0 {
			if _, ok := enabled[def.Name]; !ok {
				continue
			}
		}
		if _, ok := disabled[def.Name]; ok {
			continue
		}
		rule := def.New(ctx)
		if sev, ok := opts.SeverityOverrides[def.Name]; ok {
			rule = overrideSeverity(rule, sev)
		}
		built = append(built, rule)
	}
	return built, nil
}

// overrideSeverity wraps a rule so every issue it reports carries the
// given severity.
func overrideSeverity(rule Rule, severity Severity) Rule {
	switch r := rule.(type) {
	case ElementRule:
		return &severityElementRule{inner: r, severity: severity}
	case TreeRule:
		return &severityTreeRule{inner: r, severity: severity}
	default:
		return rule
	}
}

type severityElementRule struct {
	inner    ElementRule
	severity Severity
}

func (r *severityElementRule) Name() string       { return r.inner.Name() }
func (r *severityElementRule) Elements() []string { return r.inner.Elements() }

func (r *severityElementRule) CheckElement(el *element) *Issue {
	return reclassify(r.inner.CheckElement(el), r.severity)
}

type severityTreeRule struct {
	inner    TreeRule
	severity Severity
}

func (r *severityTreeRule) Name() string { return r.inner.Name() }

func (r *severityTreeRule) CheckTree() *Issue {
	return reclassify(r.inner.CheckTree(), r.severity)
}

func reclassify(issue *Issue, severity Severity) *Issue {
	if issue == nil {
		return nil
	}
	issue.Severity = severity
	return issue
}
