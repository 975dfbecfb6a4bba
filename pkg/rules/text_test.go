package rules

import (
	"strings"
	"testing"
)

func TestLanguageCode(t *testing.T) {
	tests := []struct {
		lang  string
		valid bool
	}{
		{"en", true},
		{"fr-CA", true},
		{"pt-BR", true},
		{"zzz", false},
		{"not a language", false},
	}
	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			ctx := parseFeed(t, `<Name><Text language="`+tt.lang+`">x</Text></Name>`)
			issues := runElementRule(ctx, NewLanguageCode(ctx))
			if tt.valid && len(issues) != 0 {
				t.Fatalf("%q rejected: %q", tt.lang, issues[0].Message)
			}
			if !tt.valid && len(issues) != 1 {
				t.Fatalf("%q not rejected", tt.lang)
			}
		})
	}
}

func TestLanguageCodeMissingAttribute(t *testing.T) {
	ctx := parseFeed(t, `<Name><Text>x</Text></Name>`)
	if issues := runElementRule(ctx, NewLanguageCode(ctx)); len(issues) != 0 {
		t.Fatalf("missing language attribute raised %d issues", len(issues))
	}
}

func TestEmptyText(t *testing.T) {
	ctx := parseFeed(t, `
<Report>
  <Text language="en">   </Text>
  <Text language="en">ok</Text>
  <Text language="en"></Text>
</Report>`)
	issues := runElementRule(ctx, NewEmptyText(ctx))
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1", len(issues))
	}
	if issues[0].Line != 3 {
		t.Fatalf("issue line = %d, want 3", issues[0].Line)
	}
}

func TestAllCaps(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want int
	}{
		{
			name: "candidate ballot name in caps",
			src:  `<Candidate objectId="can1"><BallotName><Text language="en">JOHN DOE</Text></BallotName></Candidate>`,
			want: 1,
		},
		{
			name: "mixed case passes",
			src:  `<Candidate objectId="can1"><BallotName><Text language="en">John Doe</Text></BallotName></Candidate>`,
			want: 0,
		},
		{
			name: "contest name in caps",
			src:  `<CandidateContest objectId="cc1"><Name>MAYOR OF SPRINGFIELD</Name></CandidateContest>`,
			want: 1,
		},
		{
			name: "person full name in caps",
			src:  `<Person objectId="per1"><FullName><Text language="en">JANE ROE</Text></FullName></Person>`,
			want: 1,
		},
		{
			name: "no name element",
			src:  `<Person objectId="per1"/>`,
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := parseFeed(t, tt.src)
			issues := runElementRule(ctx, NewAllCaps(ctx))
			if len(issues) != tt.want {
				t.Fatalf("got %d issues, want %d", len(issues), tt.want)
			}
			for _, issue := range issues {
				if issue.Severity != SeverityWarning {
					t.Errorf("severity = %v, want warning", issue.Severity)
				}
			}
		})
	}
}

func TestAllLanguages(t *testing.T) {
	ctx := parseFeed(t, `
<Party objectId="par1">
  <Name>
    <Text language="en">Freedom Party</Text>
    <Text language="ro">Partidul Libertatii</Text>
  </Name>
</Party>`)
	ctx.RequiredLanguages = []string{"en", "ro", "hu"}

	issues := runElementRule(ctx, NewAllLanguages(ctx))
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1", len(issues))
	}
	if !strings.Contains(issues[0].Message, "hu") {
		t.Fatalf("message %q does not name the missing language", issues[0].Message)
	}

	ctx.RequiredLanguages = []string{"en"}
	if issues := runElementRule(ctx, NewAllLanguages(ctx)); len(issues) != 0 {
		t.Fatalf("covered languages raised %d issues", len(issues))
	}
}

func TestHungarianStyleNotation(t *testing.T) {
	ctx := parseFeed(t, `
<Report>
  <Person objectId="per50001"/>
  <Party objectId="party1"/>
</Report>`)
	issues := runElementRule(ctx, NewHungarianStyleNotation(ctx))
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1", len(issues))
	}
	if issues[0].Severity != SeverityInfo {
		t.Fatalf("severity = %v, want info", issues[0].Severity)
	}
	if !strings.Contains(issues[0].Message, "party1") {
		t.Fatalf("message %q does not name party1", issues[0].Message)
	}
}

func TestValidStableID(t *testing.T) {
	tests := []struct {
		value string
		valid bool
	}{
		{"vageneral-cand-2013-va-obama", true},
		{"cand_2020", true},
		{"cand 2020", false},
		{"", false},
		{"cand$2020", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			ctx := parseFeed(t, `
<ExternalIdentifiers>
  <ExternalIdentifier>
    <Type>other</Type>
    <OtherType>stable</OtherType>
    <Value>`+tt.value+`</Value>
  </ExternalIdentifier>
</ExternalIdentifiers>`)
			issues := runElementRule(ctx, NewValidStableID(ctx))
			if tt.valid && len(issues) != 0 {
				t.Fatalf("%q rejected: %q", tt.value, issues[0].Message)
			}
			if !tt.valid && len(issues) != 1 {
				t.Fatalf("%q not rejected", tt.value)
			}
		})
	}
}

func TestValidStableIDIgnoresOtherIdentifiers(t *testing.T) {
	ctx := parseFeed(t, `
<ExternalIdentifier>
  <Type>ocd-id</Type>
  <Value>has spaces and $igns</Value>
</ExternalIdentifier>`)
	if issues := runElementRule(ctx, NewValidStableID(ctx)); len(issues) != 0 {
		t.Fatalf("non-stable identifier raised %d issues", len(issues))
	}
}

func TestCheckIdentifiers(t *testing.T) {
	ctx := parseFeed(t, `
<ElectionReport>
  <Candidate objectId="can1">
    <ExternalIdentifiers>
      <ExternalIdentifier><Type>other</Type><OtherType>stable</OtherType><Value>stable-1</Value></ExternalIdentifier>
    </ExternalIdentifiers>
  </Candidate>
  <Party objectId="par1"/>
  <Party objectId="par2">
    <ExternalIdentifiers>
      <ExternalIdentifier><Type>other</Type><OtherType>stable</OtherType><Value>stable-1</Value></ExternalIdentifier>
    </ExternalIdentifiers>
  </Party>
</ElectionReport>`)
	issue := NewCheckIdentifiers(ctx).CheckTree()
	if issue == nil {
		t.Fatal("missing and duplicated identifiers not reported")
	}
	if len(issue.Findings) != 2 {
		t.Fatalf("got %d findings, want 2", len(issue.Findings))
	}
	var sawMissing, sawDuplicate bool
	for _, f := range issue.Findings {
		if strings.Contains(f.Message, "par1") {
			sawMissing = true
		}
		if strings.Contains(f.Message, "stable-1") {
			sawDuplicate = true
		}
	}
	if !sawMissing || !sawDuplicate {
		t.Fatalf("findings = %v", issue.Findings)
	}
}

func TestCheckIdentifiersSkipsContestStages(t *testing.T) {
	ctx := parseFeed(t, `
<ElectionReport>
  <ContestStageCollection>
    <Contest objectId="cc1-stage"/>
  </ContestStageCollection>
</ElectionReport>`)
	if issue := NewCheckIdentifiers(ctx).CheckTree(); issue != nil {
		t.Fatalf("contest stage raised %q", issue.Message)
	}
}
