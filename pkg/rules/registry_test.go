package rules

import (
	"testing"
)

func TestCatalogueIsWellFormed(t *testing.T) {
	seen := make(map[string]struct{})
	ctx := parseFeed(t, `<ElectionReport></ElectionReport>`)
	for _, def := range Catalogue {
		if def.Name == "" {
			t.Fatal("catalogue entry with empty name")
		}
		if _, dup := seen[def.Name]; dup {
			t.Fatalf("catalogue entry %q registered twice", def.Name)
		}
		seen[def.Name] = struct{}{}
		if def.Description == "" {
			t.Errorf("rule %s has no description", def.Name)
		}
		if def.New == nil {
			t.Fatalf("rule %s has no constructor", def.Name)
		}
		rule := def.New(ctx)
		if rule.Name() != def.Name {
			t.Errorf("rule constructor for %s built a rule named %s", def.Name, rule.Name())
		}
		_, isElement := rule.(ElementRule)
		_, isTree := rule.(TreeRule)
		if !isElement && !isTree {
			t.Errorf("rule %s implements neither ElementRule nor TreeRule", def.Name)
		}
	}
}

func TestBuildSelectsAndOrders(t *testing.T) {
	ctx := parseFeed(t, `<ElectionReport></ElectionReport>`)

	all, err := Build(ctx, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(all) != len(Catalogue) {
		t.Fatalf("Build returned %d rules, want %d", len(all), len(Catalogue))
	}
	for i, rule := range all {
		if rule.Name() != Catalogue[i].Name {
			t.Fatalf("rule %d is %s, want catalogue order %s", i, rule.Name(), Catalogue[i].Name)
		}
	}

	some, err := Build(ctx, Options{Enabled: []string{"DuplicateID", "Encoding"}})
	if err != nil {
		t.Fatalf("Build enabled: %v", err)
	}
	if len(some) != 2 {
		t.Fatalf("Build enabled returned %d rules, want 2", len(some))
	}
	// Catalogue order wins over the enabled list's order.
	if some[0].Name() != "Encoding" || some[1].Name() != "DuplicateID" {
		t.Fatalf("Build enabled order = %s, %s", some[0].Name(), some[1].Name())
	}

	fewer, err := Build(ctx, Options{Disabled: []string{"Schema"}})
	if err != nil {
		t.Fatalf("Build disabled: %v", err)
	}
	if len(fewer) != len(Catalogue)-1 {
		t.Fatalf("Build disabled returned %d rules, want %d", len(fewer), len(Catalogue)-1)
	}
	for _, rule := range fewer {
		if rule.Name() == "Schema" {
			t.Fatal("disabled rule Schema still built")
		}
	}
}

func TestBuildRejectsUnknownRules(t *testing.T) {
	ctx := parseFeed(t, `<ElectionReport></ElectionReport>`)
	if _, err := Build(ctx, Options{Enabled: []string{"NoSuchRule"}}); err == nil {
		t.Fatal("Build accepted an unknown enabled rule")
	}
	if _, err := Build(ctx, Options{Disabled: []string{"NoSuchRule"}}); err == nil {
		t.Fatal("Build accepted an unknown disabled rule")
	}
	overrides := map[string]Severity{"NoSuchRule": SeverityWarning}
	if _, err := Build(ctx, Options{SeverityOverrides: overrides}); err == nil {
		t.Fatal("Build accepted an unknown override rule")
	}
}

func TestSeverityOverrideRewritesIssues(t *testing.T) {
	ctx := parseFeed(t, `
<ElectionReport>
  <Office objectId="off1"><ExternalIdentifiers></ExternalIdentifiers></Office>
</ElectionReport>`)

	rules, err := Build(ctx, Options{
		Enabled:           []string{"OfficesHaveJurisdictionID"},
		SeverityOverrides: map[string]Severity{"OfficesHaveJurisdictionID": SeverityWarning},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("Build returned %d rules, want 1", len(rules))
	}

	issues := runElementRule(ctx, rules[0].(ElementRule))
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1", len(issues))
	}
	if issues[0].Severity != SeverityWarning {
		t.Fatalf("issue severity = %v, want warning", issues[0].Severity)
	}
}

func TestLookup(t *testing.T) {
	def, ok := Lookup("GpUnitsCyclesRefs")
	if !ok {
		t.Fatal("Lookup did not find GpUnitsCyclesRefs")
	}
	if def.Severity != SeverityError {
		t.Fatalf("GpUnitsCyclesRefs severity = %v, want error", def.Severity)
	}
	if _, ok := Lookup("missing"); ok {
		t.Fatal("Lookup found a rule that does not exist")
	}
}

func TestCompositionGraphDefaultsAreErrors(t *testing.T) {
	// Duplicated or cyclic composition must fail the run, not warn.
	for _, name := range []string{"GpUnitsHaveSingleRoot", "GpUnitsCyclesRefs", "DuplicateGpUnits"} {
		def, ok := Lookup(name)
		if !ok {
			t.Fatalf("Lookup did not find %s", name)
		}
		if def.Severity != SeverityError {
			t.Errorf("%s severity = %v, want error", name, def.Severity)
		}
	}
}
