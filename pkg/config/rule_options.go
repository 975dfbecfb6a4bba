package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ruleOptionsSchema constrains the per-rule options document.
const ruleOptionsSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": {
    "type": "object",
    "properties": {
      "severity": {"enum": ["info", "warning", "error"]},
      "enabled": {"type": "boolean"}
    },
    "additionalProperties": false
  }
}`

// RuleOption tunes a single rule from the options file.
type RuleOption struct {
	Severity string `json:"severity"`
	Enabled  *bool  `json:"enabled"`
}

// RuleOptions maps rule names to their options.
type RuleOptions map[string]RuleOption

var compiledRuleOptionsSchema = jsonschema.MustCompileString("rule_options.json", ruleOptionsSchema)

// LoadRuleOptions reads and validates a per-rule options JSON file.
func LoadRuleOptions(path string) (RuleOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule options file %q: %w", path, err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse rule options file %q: %w", path, err)
	}
	if err := compiledRuleOptionsSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("rule options file %q is invalid: %w", path, err)
	}

	var opts RuleOptions
	if err := json.Unmarshal(data, &opts); err != nil {
		return nil, fmt.Errorf("failed to decode rule options file %q: %w", path, err)
	}
	return opts, nil
}

// Apply folds the options into the validation configuration: severities
// become overrides and disabled rules join the skip list.
func (o RuleOptions) Apply(v *ValidationConfig) {
	for name, opt := range o {
		if opt.Severity != "" {
			if v.SeverityOverrides == nil {
				v.SeverityOverrides = make(map[string]string)
			}
			v.SeverityOverrides[name] = opt.Severity
		}
		if opt.Enabled != nil && !*opt.Enabled && !contains(v.SkipRules, name) {
			v.SkipRules = append(v.SkipRules, name)
		}
	}
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}
