package cmd

import (
	"fmt"

	"ruleform/internal/logger"
	"ruleform/internal/rule"

	"github.com/spf13/cobra"
)

var (
	formFile string
	oneLine  bool
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile a YAML form description into a policy rule",
	Long: `Compile reads the values of a rule form from a YAML file and prints
the resulting rule. Table schemas come from the configured catalog.`,
	Example: `  ruleform compile -f bad_servers.yaml --catalog catalog.json

  # bad_servers.yaml
  table: bad servers
  columns: [server id]
  mappings: ["nova:servers id"]
  negations:
    - {value: "nova:servers id", column: "blacklist:servers server_id"}`,
	RunE: runCompile,
}

func init() {
	compileCmd.Flags().StringVarP(&formFile, "file", "f", "", "YAML form file (required)")
	compileCmd.Flags().BoolVar(&oneLine, "one-line", false, "Print the rule on a single line")

	compileCmd.MarkFlagRequired("file")
}

func runCompile(cmd *cobra.Command, args []string) error {
	in, err := rule.LoadFile(formFile)
	if err != nil {
		return err
	}

	cat, err := loadCatalog(settings())
	if err != nil {
		return err
	}

	text, err := rule.Compile(*in, cat)
	if err != nil {
		return fmt.Errorf("failed to compile rule: %w", err)
	}
	logger.Info("Compiled rule %q from %s", in.Name, formFile)

	if !oneLine {
		text = rule.Format(text)
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
