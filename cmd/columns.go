package cmd

import (
	"fmt"
	"io"

	"ruleform/internal/autocomplete"
	"ruleform/internal/catalog"
	"ruleform/internal/form"

	"github.com/spf13/cobra"
)

var (
	columnValues []string
	removeRows   []int
)

var columnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "Show the mapping rows derived from policy column entries",
	Long: `Enter each --column value into its own policy column row, committing
after every entry as the form does when an input loses focus, then print
the column list, the combined field and the mapping rows.

--remove drops policy column rows by position (1-based, the first row
cannot be removed) after all values were entered.`,
	Example: "  ruleform columns -c a -c b -c a --remove 2",
	RunE:    runColumns,
}

func init() {
	columnsCmd.Flags().StringArrayVarP(&columnValues, "column", "c", nil, "Policy column value (repeatable)")
	columnsCmd.Flags().IntSliceVar(&removeRows, "remove", nil, "Policy column rows to remove, by position")
}

func runColumns(cmd *cobra.Command, args []string) error {
	cat := &catalog.Catalog{}
	f := form.New(form.Options{
		Binder:  autocomplete.NewRegistry(),
		Columns: cat.ColumnSource(),
		Tables:  cat.TableSource(),
	})

	for i, v := range columnValues {
		name := form.FieldName(form.ColumnRole, 0)
		if i > 0 {
			row := f.AddColumn()
			name = form.FieldName(form.ColumnRole, row.Index)
		}
		f.SetValue(name, v)
		f.ColumnChanged()
	}

	rows := f.Rows(form.PolicyColumns)
	var ids []string
	for _, pos := range removeRows {
		if pos < 1 || pos > len(rows) {
			return fmt.Errorf("no policy column row at position %d", pos)
		}
		if !rows[pos-1].Removable {
			return fmt.Errorf("policy column row %d cannot be removed", pos)
		}
		ids = append(ids, rows[pos-1].ID)
	}
	for _, id := range ids {
		f.RemoveColumn(id)
	}

	printColumns(cmd.OutOrStdout(), f)
	return nil
}

func printColumns(w io.Writer, f *form.Form) {
	fmt.Fprintf(w, "columns:  %q\n", f.Canonical())
	fmt.Fprintf(w, "%s: %q\n", form.CombinedField, f.Combined())
	fmt.Fprintln(w, "mappings:")
	for _, r := range f.Rows(form.Mappings) {
		fmt.Fprintf(w, "  %-12s %-24q %s\n", r.ID, r.Label, r.Column)
	}
}
