package rules

import (
	"errors"
	"strings"
	"testing"
)

const ocdFeed = `
<ElectionReport>
  <GpUnitCollection>
    <GpUnit objectId="ru0001"/>
    <ReportingUnit objectId="ru0002">
      <ExternalIdentifiers>
        <ExternalIdentifier><Type>ocd-id</Type><Value>ocd-division/country:ro/ward:2</Value></ExternalIdentifier>
      </ExternalIdentifiers>
    </ReportingUnit>
  </GpUnitCollection>
  <Contest objectId="cc1">
    <ElectoralDistrictId>ru0002</ElectoralDistrictId>
  </Contest>
</ElectionReport>`

func TestElectoralDistrictOcdID(t *testing.T) {
	ctx := parseFeed(t, ocdFeed)
	ctx.OCDIDs = map[string]string{"ocd-division/country:ro/ward:2": "Ward 2"}

	// ReportingUnit elements are GpUnits too for reference purposes.
	if issues := runElementRule(ctx, NewElectoralDistrictOcdID(ctx)); len(issues) != 0 {
		t.Fatalf("listed ocd-id raised %d issues", len(issues))
	}

	ctx.OCDIDs = map[string]string{"ocd-division/country:ro/ward:9": "Ward 9"}
	issues := runElementRule(ctx, NewElectoralDistrictOcdID(ctx))
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1", len(issues))
	}
	if issues[0].Severity != SeverityError {
		t.Fatalf("severity = %v, want error", issues[0].Severity)
	}
}

func TestElectoralDistrictOcdIDMissingGpUnit(t *testing.T) {
	ctx := parseFeed(t, `
<ElectionReport>
  <Contest objectId="cc1"><ElectoralDistrictId>ru0404</ElectoralDistrictId></Contest>
</ElectionReport>`)
	ctx.OCDIDs = map[string]string{}
	issues := runElementRule(ctx, NewElectoralDistrictOcdID(ctx))
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1", len(issues))
	}
	// The message names the contest holding the dangling reference.
	if issues[0].Message != "cc1 does not refer to a GpUnit" {
		t.Fatalf("message = %q", issues[0].Message)
	}
}

func TestElectoralDistrictOcdIDLabelTypo(t *testing.T) {
	ctx := parseFeed(t, `
<ElectionReport>
  <GpUnitCollection>
    <ReportingUnit objectId="ru0002">
      <ExternalIdentifiers>
        <ExternalIdentifier><Type>oCd-id</Type><Value>ocd-division/country:ro/ward:2</Value></ExternalIdentifier>
        <ExternalIdentifier><Type>ocd-id</Type><Value>ocd-division/country:ro/ward:2</Value></ExternalIdentifier>
      </ExternalIdentifiers>
    </ReportingUnit>
  </GpUnitCollection>
  <Contest objectId="cc1"><ElectoralDistrictId>ru0002</ElectoralDistrictId></Contest>
</ElectionReport>`)
	ctx.OCDIDs = map[string]string{"ocd-division/country:ro/ward:2": "Ward 2"}

	issues := runElementRule(ctx, NewElectoralDistrictOcdID(ctx))
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1", len(issues))
	}
	if issues[0].Severity != SeverityError {
		t.Fatalf("severity = %v, want error", issues[0].Severity)
	}
	if issues[0].Message != "Should be ocd-id and not oCd-id" {
		t.Fatalf("message = %q", issues[0].Message)
	}
}

func TestGpUnitOcdID(t *testing.T) {
	ctx := parseFeed(t, ocdFeed)
	ctx.OCDIDs = map[string]string{}
	issues := runElementRule(ctx, NewGpUnitOcdID(ctx))
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1", len(issues))
	}
	if issues[0].Severity != SeverityWarning {
		t.Fatalf("severity = %v, want warning", issues[0].Severity)
	}
}

func TestOcdRulesFailClosedOnSetupError(t *testing.T) {
	ctx := parseFeed(t, ocdFeed)
	ctx.OCDErr = errors.New("download failed")

	for _, rule := range []ElementRule{NewElectoralDistrictOcdID(ctx), NewGpUnitOcdID(ctx)} {
		issues := runElementRule(ctx, rule)
		if len(issues) == 0 {
			t.Fatalf("%s passed despite setup failure", rule.Name())
		}
		for _, issue := range issues {
			if issue.Severity != SeverityError {
				t.Errorf("%s severity = %v, want error", rule.Name(), issue.Severity)
			}
			if !strings.Contains(issue.Message, "download failed") {
				t.Errorf("%s message = %q", rule.Name(), issue.Message)
			}
		}
	}
}

func TestOcdIDsAreLowerCase(t *testing.T) {
	ctx := parseFeed(t, `
<GpUnit objectId="ru0001">
  <ExternalIdentifiers>
    <ExternalIdentifier><Type>ocd-id</Type><Value>ocd-division/country:RO</Value></ExternalIdentifier>
    <ExternalIdentifier><Type>ocd-id</Type><Value>ocd-division/country:ro</Value></ExternalIdentifier>
  </ExternalIdentifiers>
</GpUnit>`)
	issues := runElementRule(ctx, NewOcdIDsAreLowerCase(ctx))
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1", len(issues))
	}
	if want := `ocd-id "ocd-division/country:RO" is not all lower case`; issues[0].Message != want {
		t.Fatalf("message = %q, want %q", issues[0].Message, want)
	}
}
