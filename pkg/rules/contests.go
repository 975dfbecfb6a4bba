package rules

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// PercentSum checks that total-percent vote counts in a contest sum to
// 0 or 100 within floating tolerance.
type PercentSum struct {
	ctx *Context
}

func NewPercentSum(ctx *Context) *PercentSum { return &PercentSum{ctx: ctx} }

func (r *PercentSum) Name() string { return "PercentSum" }

func (r *PercentSum) Elements() []string { return []string{"Contest"} }

func (r *PercentSum) CheckElement(el *element) *Issue {
	sum := 0.0
	found := false
	for _, vc := range el.FindAll("VoteCounts") {
		if vc.ChildText("OtherType") != "total-percent" {
			continue
		}
		count, err := strconv.ParseFloat(vc.ChildText("Count"), 64)
		if err != nil {
			continue
		}
		sum += count
		found = true
	}
	if !found {
		return nil
	}
	if math.Abs(sum) > 1e-6 && math.Abs(sum-100.0) > 1e-6 {
		return Errorf("contest total-percent counts sum to %g, expected 0 or 100", sum).At(el.Line)
	}
	return nil
}

// contestSelections maps contest types to their matching selection type.
var contestSelections = map[string]string{
	"BallotMeasureContest": "BallotMeasureSelection",
	"CandidateContest":     "CandidateSelection",
	"PartyContest":         "PartySelection",
	"RetentionContest":     "BallotMeasureSelection",
}

// ProperBallotSelection requires every ballot selection in a contest to
// match the contest's type.
type ProperBallotSelection struct {
	ctx *Context
}

func NewProperBallotSelection(ctx *Context) *ProperBallotSelection {
	return &ProperBallotSelection{ctx: ctx}
}

func (r *ProperBallotSelection) Name() string { return "ProperBallotSelection" }

func (r *ProperBallotSelection) Elements() []string { return []string{"Contest"} }

func (r *ProperBallotSelection) CheckElement(el *element) *Issue {
	// Contests are encoded as <Contest xsi:type="...">.
	contestType := el.AttrValue("type")
	want, ok := contestSelections[contestType]
	if !ok {
		return nil
	}

	var findings []Finding
	for _, sel := range el.FindAll("BallotSelection") {
		if got := sel.AttrValue("type"); got != "" && got != want {
			findings = append(findings, Finding{
				Message: fmt.Sprintf("selection %s has type %s, expected %s in %s",
					sel.ObjectID(), got, want, contestType),
				Line: sel.Line,
			})
		}
	}
	if len(findings) == 0 {
		return nil
	}
	return Aggregate(SeverityError,
		fmt.Sprintf("contest %s contains mismatched ballot selections", el.ObjectID()),
		findings)
}

// DuplicateContestNames requires every contest to carry a unique,
// non-empty name.
type DuplicateContestNames struct {
	ctx *Context
}

func NewDuplicateContestNames(ctx *Context) *DuplicateContestNames {
	return &DuplicateContestNames{ctx: ctx}
}

func (r *DuplicateContestNames) Name() string { return "DuplicateContestNames" }

func (r *DuplicateContestNames) CheckTree() *Issue {
	if r.ctx.Tree == nil {
		return nil
	}

	// Name -> contest object ids, built fresh per check.
	byName := make(map[string][]string)
	var findings []Finding
	for _, contest := range r.ctx.Tree.FindAll("Contest") {
		name := contest.ChildText("Name")
		if name == "" {
			findings = append(findings, Finding{
				Message: fmt.Sprintf("contest %s is missing a name", contest.ObjectID()),
				Line:    contest.Line,
			})
			continue
		}
		byName[name] = append(byName[name], contest.ObjectID())
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if ids := byName[name]; len(ids) > 1 {
			findings = append(findings, Finding{
				Message: fmt.Sprintf("contest name %q is not unique, used by %s",
					name, strings.Join(ids, ", ")),
			})
		}
	}

	if len(findings) == 0 {
		return nil
	}
	return Aggregate(SeverityError, "contests have missing or duplicated names", findings)
}

// CandidatesReferencedOnce requires every candidate to be referenced by
// exactly one contest.
type CandidatesReferencedOnce struct {
	ctx *Context
}

func NewCandidatesReferencedOnce(ctx *Context) *CandidatesReferencedOnce {
	return &CandidatesReferencedOnce{ctx: ctx}
}

func (r *CandidatesReferencedOnce) Name() string { return "CandidatesReferencedOnce" }

func (r *CandidatesReferencedOnce) CheckTree() *Issue {
	if r.ctx.Tree == nil {
		return nil
	}

	registry := r.candidateContestMapping()

	var findings []Finding
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		contests := registry[id]
		switch {
		case len(contests) == 0:
			findings = append(findings, Finding{
				Message: fmt.Sprintf("candidate %s is not referenced by any contest", id),
			})
		case len(contests) > 1:
			findings = append(findings, Finding{
				Message: fmt.Sprintf("candidate %s is referenced by several contests: %s",
					id, strings.Join(contests, ", ")),
			})
		}
	}

	if len(findings) == 0 {
		return nil
	}
	return Aggregate(SeverityError, "candidates must be referenced by exactly one contest", findings)
}

// candidateContestMapping maps every defined candidate id to the
// contests referencing it. Computed fresh each check.
func (r *CandidatesReferencedOnce) candidateContestMapping() map[string][]string {
	mapping := make(map[string][]string)
	for _, cand := range r.ctx.Tree.FindAll("Candidate") {
		if id := cand.ObjectID(); id != "" {
			mapping[id] = nil
		}
	}

	for _, contest := range r.ctx.Tree.FindAll("Contest") {
		contestID := contest.ObjectID()
		for _, ref := range contest.FindAll("CandidateIds") {
			for _, id := range strings.Fields(ref.TrimmedText()) {
				mapping[id] = append(mapping[id], contestID)
			}
		}
		for _, ref := range contest.FindAll("CandidateId") {
			if id := ref.TrimmedText(); id != "" {
				mapping[id] = append(mapping[id], contestID)
			}
		}
	}
	return mapping
}

// ContestHasMultipleOffices requires each contest to reference exactly
// one office.
type ContestHasMultipleOffices struct {
	ctx *Context
}

func NewContestHasMultipleOffices(ctx *Context) *ContestHasMultipleOffices {
	return &ContestHasMultipleOffices{ctx: ctx}
}

func (r *ContestHasMultipleOffices) Name() string { return "ContestHasMultipleOffices" }

func (r *ContestHasMultipleOffices) Elements() []string { return []string{"CandidateContest"} }

func (r *ContestHasMultipleOffices) CheckElement(el *element) *Issue {
	ids := strings.Fields(el.ChildText("OfficeIds"))
	switch {
	case len(ids) == 0:
		return Errorf("contest %s has no offices", el.ObjectID()).At(el.Line)
	case len(ids) > 1:
		return Errorf("contest %s has more than one office: %s",
			el.ObjectID(), strings.Join(ids, ", ")).At(el.Line)
	}
	return nil
}

// candVoteCountTypes and partyVoteCountTypes are the other-type vote
// count classes valid only in their respective contest types.
var (
	candVoteCountTypes  = []string{"candidate-votes"}
	partyVoteCountTypes = []string{
		"seats-won", "seats-leading", "party-votes",
		"seats-no-election", "seats-total", "seats-delta",
	}
)

// VoteCountTypesCoherency rejects candidate-class vote counts inside
// party contests and party-class vote counts inside candidate contests.
type VoteCountTypesCoherency struct {
	ctx *Context
}

func NewVoteCountTypesCoherency(ctx *Context) *VoteCountTypesCoherency {
	return &VoteCountTypesCoherency{ctx: ctx}
}

func (r *VoteCountTypesCoherency) Name() string { return "VoteCountTypesCoherency" }

func (r *VoteCountTypesCoherency) Elements() []string { return []string{"Contest"} }

func (r *VoteCountTypesCoherency) CheckElement(el *element) *Issue {
	var invalid []string
	switch el.AttrValue("type") {
	case "PartyContest":
		invalid = candVoteCountTypes
	case "CandidateContest":
		invalid = partyVoteCountTypes
	default:
		return nil
	}

	present := make(map[string]struct{})
	for _, vc := range el.FindAll("VoteCounts") {
		present[vc.ChildText("OtherType")] = struct{}{}
	}

	var offending []string
	for _, vcType := range invalid {
		if _, ok := present[vcType]; ok {
			offending = append(offending, vcType)
		}
	}
	if len(offending) == 0 {
		return nil
	}
	return Errorf("vote count types %s are not valid in %s %s",
		strings.Join(offending, ", "), el.AttrValue("type"), el.ObjectID()).At(el.Line)
}

// primaryElectionTypes are election types that mark a partisan primary.
var primaryElectionTypes = map[string]struct{}{
	"primary":                 {},
	"partisan-primary-open":   {},
	"partisan-primary-closed": {},
}

func electionType(tree *element) string {
	if tree == nil {
		return ""
	}
	election := tree.Find("Election")
	if election == nil {
		return ""
	}
	return election.ChildText("Type")
}

// PartisanPrimary warns when a candidate contest in a primary election
// does not name its primary parties.
type PartisanPrimary struct {
	ctx          *Context
	electionType string
}

func NewPartisanPrimary(ctx *Context) *PartisanPrimary {
	return &PartisanPrimary{ctx: ctx, electionType: electionType(ctx.Tree)}
}

func (r *PartisanPrimary) Name() string { return "PartisanPrimary" }

// Elements is empty outside primary elections, so the rule is simply
// never invoked for general elections.
func (r *PartisanPrimary) Elements() []string {
	if _, ok := primaryElectionTypes[r.electionType]; !ok {
		return nil
	}
	return []string{"CandidateContest"}
}

func (r *PartisanPrimary) CheckElement(el *element) *Issue {
	ids := strings.Fields(el.ChildText("PrimaryPartyIds"))
	if len(ids) == 0 {
		return Warningf("primary contest %s is missing primary party ids", el.ObjectID()).At(el.Line)
	}
	return nil
}

// partyNameSuffixes are contest-name markers that suggest an undeclared
// party primary.
var partyNameSuffixes = []string{"(dem)", "(rep)", "(lib)"}

// PartisanPrimaryHeuristic warns when a non-primary contest's name
// suggests it is actually a party primary.
type PartisanPrimaryHeuristic struct {
	ctx          *Context
	electionType string
}

func NewPartisanPrimaryHeuristic(ctx *Context) *PartisanPrimaryHeuristic {
	return &PartisanPrimaryHeuristic{ctx: ctx, electionType: electionType(ctx.Tree)}
}

func (r *PartisanPrimaryHeuristic) Name() string { return "PartisanPrimaryHeuristic" }

func (r *PartisanPrimaryHeuristic) Elements() []string {
	if _, ok := primaryElectionTypes[r.electionType]; ok {
		return nil
	}
	return []string{"CandidateContest"}
}

func (r *PartisanPrimaryHeuristic) CheckElement(el *element) *Issue {
	name := strings.ToLower(el.ChildText("Name"))
	if name == "" {
		return nil
	}
	for _, suffix := range partyNameSuffixes {
		if strings.HasSuffix(name, suffix) || strings.Contains(name, suffix+" ") {
			return Warningf("contest %s name %q suggests a primary contest",
				el.ObjectID(), el.ChildText("Name")).At(el.Line)
		}
	}
	return nil
}

const dateLayout = "2006-01-02"

// ElectionStartDates warns when an election's start date is in the past.
type ElectionStartDates struct {
	ctx *Context
	now func() time.Time
}

func NewElectionStartDates(ctx *Context) *ElectionStartDates {
	return &ElectionStartDates{ctx: ctx, now: time.Now}
}

func (r *ElectionStartDates) Name() string { return "ElectionStartDates" }

func (r *ElectionStartDates) Elements() []string { return []string{"Election"} }

func (r *ElectionStartDates) CheckElement(el *element) *Issue {
	start, err := time.Parse(dateLayout, el.ChildText("StartDate"))
	if err != nil {
		return nil
	}
	today := r.now().Truncate(24 * time.Hour)
	if start.Before(today) {
		return Warningf("election start date %s is in the past",
			el.ChildText("StartDate")).At(el.Line)
	}
	return nil
}

// ElectionEndDates rejects end dates in the past or before the start
// date.
type ElectionEndDates struct {
	ctx *Context
	now func() time.Time
}

func NewElectionEndDates(ctx *Context) *ElectionEndDates {
	return &ElectionEndDates{ctx: ctx, now: time.Now}
}

func (r *ElectionEndDates) Name() string { return "ElectionEndDates" }

func (r *ElectionEndDates) Elements() []string { return []string{"Election"} }

func (r *ElectionEndDates) CheckElement(el *element) *Issue {
	end, err := time.Parse(dateLayout, el.ChildText("EndDate"))
	if err != nil {
		return nil
	}

	var findings []Finding
	today := r.now().Truncate(24 * time.Hour)
	if end.Before(today) {
		findings = append(findings, Finding{
			Message: fmt.Sprintf("election end date %s is in the past", el.ChildText("EndDate")),
			Line:    el.Line,
		})
	}
	if start, err := time.Parse(dateLayout, el.ChildText("StartDate")); err == nil && end.Before(start) {
		findings = append(findings, Finding{
			Message: fmt.Sprintf("election end date %s is before start date %s",
				el.ChildText("EndDate"), el.ChildText("StartDate")),
			Line: el.Line,
		})
	}

	switch len(findings) {
	case 0:
		return nil
	case 1:
		return Errorf("%s", findings[0].Message).At(findings[0].Line)
	default:
		return Aggregate(SeverityError, "election end date is invalid", findings)
	}
}
