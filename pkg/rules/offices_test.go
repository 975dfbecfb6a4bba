package rules

import (
	"strings"
	"testing"
)

func TestOfficeMissingOfficeHolderPersonData(t *testing.T) {
	ctx := parseFeed(t, `
<ElectionReport>
  <OfficeCollection>
    <Office objectId="off1"><OfficeHolderPersonIds>per1 per9</OfficeHolderPersonIds></Office>
  </OfficeCollection>
  <PersonCollection>
    <Person objectId="per1"/>
  </PersonCollection>
</ElectionReport>`)
	issue := NewOfficeMissingOfficeHolderPersonData(ctx).CheckTree()
	if issue == nil {
		t.Fatal("dangling office holder not reported")
	}
	want := "undefined person references: per9"
	if issue.Message != want {
		t.Fatalf("message = %q, want %q", issue.Message, want)
	}
}

func TestOfficeMissingOfficeHolderPersonDataEmpty(t *testing.T) {
	ctx := parseFeed(t, `
<ElectionReport>
  <OfficeCollection>
    <Office objectId="off1"/>
  </OfficeCollection>
</ElectionReport>`)
	issue := NewOfficeMissingOfficeHolderPersonData(ctx).CheckTree()
	if issue == nil {
		t.Fatal("office without holders not reported")
	}
	if !strings.Contains(issue.Message, "off1") {
		t.Fatalf("message = %q", issue.Message)
	}
}

func TestOfficesHaveJurisdictionID(t *testing.T) {
	const valid = `
<Office objectId="off1">
  <ExternalIdentifiers>
    <ExternalIdentifier><Type>other</Type><OtherType>jurisdiction-id</OtherType><Value>ru0001</Value></ExternalIdentifier>
  </ExternalIdentifiers>
</Office>`
	ctx := parseFeed(t, valid)
	if issues := runElementRule(ctx, NewOfficesHaveJurisdictionID(ctx)); len(issues) != 0 {
		t.Fatalf("valid office raised %d issues", len(issues))
	}

	tests := []struct {
		name string
		src  string
	}{
		{
			name: "missing",
			src:  `<Office objectId="off1"/>`,
		},
		{
			name: "duplicated",
			src: `
<Office objectId="off1">
  <ExternalIdentifiers>
    <ExternalIdentifier><Type>other</Type><OtherType>jurisdiction-id</OtherType><Value>ru0001</Value></ExternalIdentifier>
    <ExternalIdentifier><Type>other</Type><OtherType>jurisdiction-id</OtherType><Value>ru0002</Value></ExternalIdentifier>
  </ExternalIdentifiers>
</Office>`,
		},
		{
			name: "empty value",
			src: `
<Office objectId="off1">
  <ExternalIdentifiers>
    <ExternalIdentifier><Type>other</Type><OtherType>jurisdiction-id</OtherType><Value> </Value></ExternalIdentifier>
  </ExternalIdentifiers>
</Office>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := parseFeed(t, tt.src)
			issues := runElementRule(ctx, NewOfficesHaveJurisdictionID(ctx))
			if len(issues) != 1 {
				t.Fatalf("got %d issues, want 1", len(issues))
			}
		})
	}
}

func TestOfficesHaveJurisdictionIDIgnoresTypedIdentifiers(t *testing.T) {
	// A jurisdiction-id must be declared with Type other.
	ctx := parseFeed(t, `
<Office objectId="off1">
  <ExternalIdentifiers>
    <ExternalIdentifier><Type>ocd-id</Type><OtherType>jurisdiction-id</OtherType><Value>ru0001</Value></ExternalIdentifier>
  </ExternalIdentifiers>
</Office>`)
	issues := runElementRule(ctx, NewOfficesHaveJurisdictionID(ctx))
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1", len(issues))
	}
	if !strings.Contains(issues[0].Message, "missing") {
		t.Fatalf("message = %q", issues[0].Message)
	}
}

func TestValidJurisdictionID(t *testing.T) {
	ctx := parseFeed(t, `
<ElectionReport>
  <GpUnitCollection>
    <GpUnit objectId="ru0001"/>
  </GpUnitCollection>
  <OfficeCollection>
    <Office objectId="off1">
      <ExternalIdentifiers>
        <ExternalIdentifier><Type>other</Type><OtherType>jurisdiction-id</OtherType><Value>ru0001</Value></ExternalIdentifier>
      </ExternalIdentifiers>
    </Office>
    <Office objectId="off2">
      <ExternalIdentifiers>
        <ExternalIdentifier><Type>other</Type><OtherType>jurisdiction-id</OtherType><Value>ru0404</Value></ExternalIdentifier>
      </ExternalIdentifiers>
    </Office>
  </OfficeCollection>
</ElectionReport>`)
	issue := NewValidJurisdictionID(ctx).CheckTree()
	if issue == nil {
		t.Fatal("dangling jurisdiction id not reported")
	}
	want := "undefined GpUnit references: ru0404"
	if issue.Message != want {
		t.Fatalf("message = %q, want %q", issue.Message, want)
	}
}
