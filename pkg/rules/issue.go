package rules

import (
	"fmt"
	"sort"
	"strings"
)

// Severity classifies how a finding affects the validation verdict.
// Error-severity issues fail the run; Warning and Info are surfaced in
// the report but do not.
type Severity int

const (
	// SeverityInfo marks purely observational findings.
	SeverityInfo Severity = iota
	// SeverityWarning marks advisory findings that warrant review.
	SeverityWarning
	// SeverityError marks blocking defects.
	SeverityError
)

// String returns the lower-case severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// ParseSeverity converts a severity name to its value.
func ParseSeverity(name string) (Severity, error) {
	switch strings.ToLower(name) {
	case "info":
		return SeverityInfo, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	default:
		return SeverityInfo, fmt.Errorf("unknown severity %q", name)
	}
}

// Finding is one instance inside an aggregate issue.
type Finding struct {
	Message string
	Line    int
}

// Issue is a single reported violation. It is created by a rule when a
// check fails and never mutated afterwards; the orchestrator attaches
// the emitting rule's name when collecting it.
type Issue struct {
	Severity Severity
	Message  string

	// Line is the source line of the offending element, 0 when the
	// issue is not tied to one location.
	Line int

	// Findings carries the individual instances when one logical check
	// discovered several violations at once.
	Findings []Finding
}

// Errorf builds an Error-severity issue.
func Errorf(format string, args ...any) *Issue {
	return &Issue{Severity: SeverityError, Message: fmt.Sprintf(format, args...)}
}

// Warningf builds a Warning-severity issue.
func Warningf(format string, args ...any) *Issue {
	return &Issue{Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)}
}

// Infof builds an Info-severity issue.
func Infof(format string, args ...any) *Issue {
	return &Issue{Severity: SeverityInfo, Message: fmt.Sprintf(format, args...)}
}

// At records the source line the issue refers to and returns the issue.
func (i *Issue) At(line int) *Issue {
	i.Line = line
	return i
}

// Aggregate builds an issue bundling several findings under one
// message. Findings are ordered by line, then message.
func Aggregate(severity Severity, message string, findings []Finding) *Issue {
	sortFindings(findings)
	return &Issue{Severity: severity, Message: message, Findings: findings}
}

// sortFindings orders findings by source line, then message, so
// aggregate issues read in document order.
func sortFindings(findings []Finding) {
	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Line != findings[j].Line {
			return findings[i].Line < findings[j].Line
		}
		return findings[i].Message < findings[j].Message
	})
}

// Text renders the issue as a single human-readable block, with one
// indented line per sub-finding.
func (i *Issue) Text() string {
	var b strings.Builder
	b.WriteString(i.Message)
	if i.Line > 0 {
		fmt.Fprintf(&b, " (line %d)", i.Line)
	}
	for _, f := range i.Findings {
		b.WriteString("\n  ")
		b.WriteString(f.Message)
		if f.Line > 0 {
			fmt.Fprintf(&b, " (line %d)", f.Line)
		}
	}
	return b.String()
}
