// Scrutineer validates NIST 1500-100 election results feeds.
//
// It checks a feed against its XML schema and a catalogue of semantic
// rules covering reference integrity, geopolitical unit composition,
// official jurisdiction identifiers, and feed hygiene.
//
// Usage:
//
//	# Validate a feed against a schema
//	scrutineer validate feed.xml --schema election_results.xsd
//
//	# Re-validate automatically when the feed changes
//	scrutineer watch feed.xml --schema election_results.xsd
//
//	# List the rule catalogue
//	scrutineer rules
//
//	# Show recent validation runs
//	scrutineer history
//
//	# Force a refresh of the OCD identifier catalogue
//	scrutineer refresh
package main

func main() {
	Execute()
}
