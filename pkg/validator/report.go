package validator

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"electoral-hq/scrutineer/pkg/rules"
)

// RuleIssue attributes an issue to the rule that raised it.
type RuleIssue struct {
	Rule     string         `json:"rule"`
	Severity rules.Severity `json:"-"`
	Message  string         `json:"message"`
	Line     int            `json:"line,omitempty"`
	Findings []Finding      `json:"findings,omitempty"`
}

// Text renders the issue with one indented line per sub-finding.
func (ri RuleIssue) Text() string {
	var b strings.Builder
	b.WriteString(ri.Message)
	if ri.Line > 0 {
		fmt.Fprintf(&b, " (line %d)", ri.Line)
	}
	for _, f := range ri.Findings {
		b.WriteString("\n  ")
		b.WriteString(f.Message)
		if f.Line > 0 {
			fmt.Fprintf(&b, " (line %d)", f.Line)
		}
	}
	return b.String()
}

// Finding mirrors rules.Finding for serialization.
type Finding struct {
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// MarshalJSON includes the severity by name.
func (ri RuleIssue) MarshalJSON() ([]byte, error) {
	type alias RuleIssue
	return json.Marshal(struct {
		Severity string `json:"severity"`
		alias
	}{Severity: ri.Severity.String(), alias: alias(ri)})
}

// Report is the outcome of one validation run.
type Report struct {
	FeedPath     string         `json:"feed_path"`
	SchemaPath   string         `json:"schema_path"`
	StartedAt    time.Time      `json:"started_at"`
	Duration     time.Duration  `json:"duration"`
	Passed       bool           `json:"passed"`
	EntityCounts map[string]int `json:"entity_counts"`
	Issues       []RuleIssue    `json:"issues"`
}

func (r *Report) add(rule string, issue *rules.Issue) {
	findings := make([]Finding, 0, len(issue.Findings))
	for _, f := range issue.Findings {
		findings = append(findings, Finding{Message: f.Message, Line: f.Line})
	}
	r.Issues = append(r.Issues, RuleIssue{
		Rule:     rule,
		Severity: issue.Severity,
		Message:  issue.Message,
		Line:     issue.Line,
		Findings: findings,
	})
}

// Count returns the number of issues at the given severity.
func (r *Report) Count(severity rules.Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			n++
		}
	}
	return n
}

// RuleCounts returns how many issues each rule raised. Rules with no
// issues are absent.
func (r *Report) RuleCounts() map[string]int {
	counts := make(map[string]int)
	for _, issue := range r.Issues {
		counts[issue.Rule]++
	}
	return counts
}

// BySeverity returns the issues at the given severity, preserving
// catalogue order.
func (r *Report) BySeverity(severity rules.Severity) []RuleIssue {
	var out []RuleIssue
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			out = append(out, issue)
		}
	}
	return out
}

// WriteText renders the report as the human-readable summary, grouped
// by severity with errors first.
func (r *Report) WriteText(w io.Writer) error {
	fmt.Fprintf(w, "Feed:   %s\n", r.FeedPath)
	fmt.Fprintf(w, "Schema: %s\n", r.SchemaPath)

	for _, severity := range []rules.Severity{rules.SeverityError, rules.SeverityWarning, rules.SeverityInfo} {
		issues := r.BySeverity(severity)
		if len(issues) == 0 {
			continue
		}
		label := strings.ToUpper(severity.String())
		fmt.Fprintf(w, "\n%s (%d)\n", label, len(issues))
		for _, ri := range issues {
			fmt.Fprintf(w, "* [%s] %s\n", ri.Rule, strings.ReplaceAll(ri.Text(), "\n", "\n  "))
		}
	}

	verdict := "PASSED"
	if !r.Passed {
		verdict = "FAILED"
	}
	fmt.Fprintf(w, "\nEntities: %s\n", formatCounts(r.EntityCounts))
	fmt.Fprintf(w, "Result: %s (%d errors, %d warnings, %d info) in %s\n",
		verdict,
		r.Count(rules.SeverityError),
		r.Count(rules.SeverityWarning),
		r.Count(rules.SeverityInfo),
		r.Duration.Round(time.Millisecond),
	)
	return nil
}

// WriteJSON renders the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func formatCounts(counts map[string]int) string {
	kinds := make([]string, 0, len(counts))
	for kind := range counts {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	parts := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		parts = append(parts, fmt.Sprintf("%s=%d", kind, counts[kind]))
	}
	return strings.Join(parts, " ")
}
