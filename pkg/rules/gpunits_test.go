package rules

import (
	"strings"
	"testing"
)

func TestGpUnitsHaveSingleRoot(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "single root",
			src: `
<GpUnitCollection>
  <GpUnit objectId="ru0001"><ComposingGpUnitIds>ru0002 ru0003</ComposingGpUnitIds></GpUnit>
  <GpUnit objectId="ru0002"/>
  <GpUnit objectId="ru0003"/>
</GpUnitCollection>`,
		},
		{
			name: "two roots",
			src: `
<GpUnitCollection>
  <GpUnit objectId="ru0001"><ComposingGpUnitIds>ru0003</ComposingGpUnitIds></GpUnit>
  <GpUnit objectId="ru0002"><ComposingGpUnitIds>ru0003</ComposingGpUnitIds></GpUnit>
  <GpUnit objectId="ru0003"/>
</GpUnitCollection>`,
			want: "GpUnits tree has more than one root: ru0001, ru0002",
		},
		{
			name: "no root",
			src: `
<GpUnitCollection>
  <GpUnit objectId="ru0001"><ComposingGpUnitIds>ru0002</ComposingGpUnitIds></GpUnit>
  <GpUnit objectId="ru0002"><ComposingGpUnitIds>ru0001</ComposingGpUnitIds></GpUnit>
</GpUnitCollection>`,
			want: "GpUnits have no geo district root",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := parseFeed(t, tt.src)
			issue := NewGpUnitsHaveSingleRoot(ctx).CheckTree()
			if tt.want == "" {
				if issue != nil {
					t.Fatalf("got issue %q, want none", issue.Message)
				}
				return
			}
			if issue == nil {
				t.Fatal("got no issue")
			}
			if issue.Message != tt.want {
				t.Fatalf("message = %q, want %q", issue.Message, tt.want)
			}
		})
	}
}

func TestGpUnitsCyclesRefs(t *testing.T) {
	ctx := parseFeed(t, `
<GpUnitCollection>
  <GpUnit objectId="ru0001"><ComposingGpUnitIds>ru0002</ComposingGpUnitIds></GpUnit>
  <GpUnit objectId="ru0002"><ComposingGpUnitIds>ru0003</ComposingGpUnitIds></GpUnit>
  <GpUnit objectId="ru0003"><ComposingGpUnitIds>ru0001 ru0099</ComposingGpUnitIds></GpUnit>
</GpUnitCollection>`)
	issue := NewGpUnitsCyclesRefs(ctx).CheckTree()
	if issue == nil {
		t.Fatal("cycle and undefined reference not reported")
	}
	if len(issue.Findings) != 2 {
		t.Fatalf("got %d findings, want 2: %v", len(issue.Findings), issue.Findings)
	}
	var sawCycle, sawUndefined bool
	for _, f := range issue.Findings {
		if strings.HasPrefix(f.Message, "Cycle detected at node") {
			sawCycle = true
		}
		if f.Message == "GpUnit ru0099 is composed but never defined" {
			sawUndefined = true
		}
	}
	if !sawCycle || !sawUndefined {
		t.Fatalf("findings = %v", issue.Findings)
	}
}

func TestGpUnitsCyclesRefsAcyclic(t *testing.T) {
	ctx := parseFeed(t, `
<GpUnitCollection>
  <GpUnit objectId="ru0001"><ComposingGpUnitIds>ru0002 ru0003</ComposingGpUnitIds></GpUnit>
  <GpUnit objectId="ru0002"><ComposingGpUnitIds>ru0003</ComposingGpUnitIds></GpUnit>
  <GpUnit objectId="ru0003"/>
</GpUnitCollection>`)
	if issue := NewGpUnitsCyclesRefs(ctx).CheckTree(); issue != nil {
		t.Fatalf("acyclic graph raised %q", issue.Message)
	}
}

func TestFindCycleSelfLoop(t *testing.T) {
	graph := map[string][]string{"ru0001": {"ru0001"}}
	if got := findCycle(graph, []string{"ru0001"}); got != "ru0001" {
		t.Fatalf("findCycle = %q, want ru0001", got)
	}
}

func TestDuplicateGpUnits(t *testing.T) {
	ctx := parseFeed(t, `
<GpUnitCollection>
  <GpUnit objectId="ru0002"><ComposingGpUnitIds>ru0001 ru0003</ComposingGpUnitIds></GpUnit>
  <GpUnit objectId="ru0004"><ComposingGpUnitIds>ru0003 ru0001</ComposingGpUnitIds></GpUnit>
  <GpUnit objectId="ru0002"/>
</GpUnitCollection>`)
	issue := NewDuplicateGpUnits(ctx).CheckTree()
	if issue == nil {
		t.Fatal("duplicates not reported")
	}
	if issue.Severity != SeverityError {
		t.Fatalf("severity = %v, want error", issue.Severity)
	}
	var sawID, sawSet bool
	for _, f := range issue.Findings {
		if f.Message == "GpUnit with object_id ru0002 is duplicated" {
			sawID = true
		}
		if f.Message == "GpUnits ('ru0002', 'ru0004') are duplicates" {
			sawSet = true
		}
	}
	if !sawID || !sawSet {
		t.Fatalf("findings = %v", issue.Findings)
	}
}
