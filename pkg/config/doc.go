// Package config defines scrutineer's YAML configuration, its default
// values, and validation of the loaded result.
//
// Configuration is loaded in three steps: parse the YAML file, apply
// defaults to unset fields, then validate. Environment variables named
// SCRUTINEER_SECTION_FIELD override file values when loading through
// LoadConfigWithEnvOverrides. A separate JSON rule options file can
// tune individual rules; it is validated against an embedded JSON
// schema before being folded into the validation section.
package config
