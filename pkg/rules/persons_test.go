package rules

import (
	"strings"
	"testing"
)

func TestPersonHasUniqueFullName(t *testing.T) {
	ctx := parseFeed(t, `
<PersonCollection>
  <Person objectId="per1"><FullName><Text language="en">Jane Roe</Text></FullName></Person>
  <Person objectId="per2"><FullName><Text language="en">Jane Roe</Text></FullName></Person>
</PersonCollection>`)
	issue := NewPersonHasUniqueFullName(ctx).CheckTree()
	if issue == nil {
		t.Fatal("ambiguous full name not reported")
	}
	if issue.Severity != SeverityInfo {
		t.Fatalf("severity = %v, want info", issue.Severity)
	}
	if !strings.Contains(issue.Findings[0].Message, "per1, per2") {
		t.Fatalf("finding = %q", issue.Findings[0].Message)
	}
}

func TestPersonHasUniqueFullNameBirthdaysDisambiguate(t *testing.T) {
	ctx := parseFeed(t, `
<PersonCollection>
  <Person objectId="per1">
    <FullName><Text language="en">Jane Roe</Text></FullName>
    <DateOfBirth>1960-01-01</DateOfBirth>
  </Person>
  <Person objectId="per2">
    <FullName><Text language="en">Jane Roe</Text></FullName>
    <DateOfBirth>1980-05-05</DateOfBirth>
  </Person>
</PersonCollection>`)
	if issue := NewPersonHasUniqueFullName(ctx).CheckTree(); issue != nil {
		t.Fatalf("distinct birthdays still raised %q", issue.Message)
	}
}

func TestPersonsMissingPartyData(t *testing.T) {
	ctx := parseFeed(t, `
<PersonCollection>
  <Person objectId="per1"><PartyId>par1</PartyId></Person>
  <Person objectId="per2"/>
</PersonCollection>`)
	issues := runElementRule(ctx, NewPersonsMissingPartyData(ctx))
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1", len(issues))
	}
	if !strings.Contains(issues[0].Message, "per2") {
		t.Fatalf("message = %q", issues[0].Message)
	}
}

func TestPersonsHaveValidGender(t *testing.T) {
	tests := []struct {
		value string
		valid bool
	}{
		{"male", true},
		{"F", true},
		{"nonBinary", true},
		{"unknown", true},
		{"", true},
		{"x", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			ctx := parseFeed(t, `<Person objectId="per1"><Gender>`+tt.value+`</Gender></Person>`)
			issues := runElementRule(ctx, NewPersonsHaveValidGender(ctx))
			if tt.valid && len(issues) != 0 {
				t.Fatalf("%q rejected: %q", tt.value, issues[0].Message)
			}
			if !tt.valid && len(issues) != 1 {
				t.Fatalf("%q not rejected", tt.value)
			}
		})
	}
}

func TestPersonHasOffice(t *testing.T) {
	ctx := parseFeed(t, `
<ElectionReport>
  <PersonCollection>
    <Person objectId="per1"/>
    <Person objectId="per2"/>
    <Person objectId="per3"/>
  </PersonCollection>
  <OfficeCollection>
    <Office objectId="off1"><OfficeHolderPersonIds>per1</OfficeHolderPersonIds></Office>
    <Office objectId="off2"><OfficeHolderPersonIds>per1</OfficeHolderPersonIds></Office>
  </OfficeCollection>
  <PartyCollection>
    <Party objectId="par1">
      <ExternalIdentifiers>
        <ExternalIdentifier><Type>other</Type><OtherType>party-leader-id</OtherType><Value>per3</Value></ExternalIdentifier>
      </ExternalIdentifiers>
    </Party>
  </PartyCollection>
</ElectionReport>`)
	issue := NewPersonHasOffice(ctx).CheckTree()
	if issue == nil {
		t.Fatal("office count violations not reported")
	}
	// per1 holds two offices, per2 holds none, per3 is exempt as a
	// party leader.
	if len(issue.Findings) != 2 {
		t.Fatalf("got %d findings, want 2: %v", len(issue.Findings), issue.Findings)
	}
	for _, f := range issue.Findings {
		if strings.Contains(f.Message, "per3") {
			t.Fatalf("party leader reported: %q", f.Message)
		}
	}
}
