package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"electoral-hq/scrutineer/pkg/cli"
	"electoral-hq/scrutineer/pkg/rules"
)

var rulesFlags struct {
	output string
}

// ruleInfo is the JSON shape of one catalogue entry.
type ruleInfo struct {
	Name        string `json:"name"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the rule catalogue",
	Long: `List every rule in the catalogue with its default severity.

Rule names are the values accepted by --rules, --skip-rules, and the
severity override configuration.`,
	RunE: runRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.Flags().StringVarP(&rulesFlags.output, "output", "o", "text", "output format: text, json")
}

func runRules(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(rulesFlags.output)
	if err != nil {
		return err
	}

	if format == cli.FormatJSON {
		infos := make([]ruleInfo, 0, len(rules.Catalogue))
		for _, def := range rules.Catalogue {
			infos = append(infos, ruleInfo{
				Name:        def.Name,
				Severity:    def.Severity.String(),
				Description: def.Description,
			})
		}
		return cli.NewFormatter(format).FormatTo(os.Stdout, infos)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSEVERITY\tDESCRIPTION")
	for _, def := range rules.Catalogue {
		fmt.Fprintf(w, "%s\t%s\t%s\n", def.Name, def.Severity, def.Description)
	}
	return w.Flush()
}
