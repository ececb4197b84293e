package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/synthline-labs/synthline/internal/schema"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables [table]",
		Short: "Show the dataset schema",
		Long: `List the tables Synthline generates, or show the column layout of
one table.`,
		Example: `  # List every table
  synthline tables

  # Show the tickets schema
  synthline tables tickets`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := schema.Default()
			if len(args) == 0 {
				renderTableList(cmd.OutOrStdout(), reg)
				return nil
			}
			def, ok := reg.Table(args[0])
			if !ok {
				return fmt.Errorf("unknown table %q (available: %s)", args[0], strings.Join(reg.Names(), ", "))
			}
			renderTableDetail(cmd.OutOrStdout(), def)
			return nil
		},
	}
}

func renderTableList(w io.Writer, reg *schema.Registry) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Table", "Prefix", "Columns", "References"})
	for _, name := range reg.Names() {
		def, _ := reg.Table(name)
		refs := make([]string, 0, len(def.ForeignKeys))
		for _, fk := range def.ForeignKeys {
			refs = append(refs, fk.RefTable)
		}
		t.AppendRow(table.Row{def.Name, def.Prefix, len(def.Columns), strings.Join(refs, ", ")})
	}
	t.Render()
}

func renderTableDetail(w io.Writer, def *schema.Table) {
	styles := DefaultStyles()
	fmt.Fprintln(w, styles.Title.Render(def.Name))

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Column", "Kind", "Required", "Detail"})
	for _, col := range def.Columns {
		t.AppendRow(table.Row{col.Name, string(col.Kind), col.Required, columnDetail(def, &col)})
	}
	t.Render()
}

func columnDetail(def *schema.Table, col *schema.Column) string {
	if col.Name == def.PrimaryKey {
		return fmt.Sprintf("primary key (%s_NNNNNN)", def.Prefix)
	}
	if fk, ok := def.ForeignKey(col.Name); ok {
		detail := fmt.Sprintf("references %s.%s", fk.RefTable, fk.RefColumn)
		if fk.Nullable {
			detail += " (nullable)"
		}
		return detail
	}
	switch col.Kind {
	case schema.KindCategorical:
		return strings.Join(col.Domain, ", ")
	case schema.KindNumeric, schema.KindInteger:
		detail := fmt.Sprintf("%g..%g", col.Min, col.Max)
		if col.Distribution != "" {
			detail += " " + col.Distribution
		}
		return detail
	}
	return ""
}
