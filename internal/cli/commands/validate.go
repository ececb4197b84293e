package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/synthline-labs/synthline/internal/export"
	"github.com/synthline-labs/synthline/internal/postprocess"
	"github.com/synthline-labs/synthline/internal/schema"
	"github.com/synthline-labs/synthline/internal/table"
)

// ValidateOptions holds options for the validate command.
type ValidateOptions struct {
	Strict bool
}

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	opts := &ValidateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <bundle-dir>",
		Short: "Validate an exported bundle",
		Long: `Re-check an exported CSV bundle against the dataset schema: required
columns must be non-null and every foreign key must resolve to a parent
row. Issues are reported, not repaired.`,
		Example: `  # Check a bundle
  synthline validate out

  # Fail the command when issues are found
  synthline validate out --strict`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "Exit with an error when issues are found")

	return cmd
}

func runValidate(cmd *cobra.Command, opts *ValidateOptions, dir string) error {
	logger := GetLogger(cmd.Context())
	styles := DefaultStyles()

	manifest, err := export.ReadManifest(dir)
	if err != nil {
		return fmt.Errorf("failed to read bundle: %w", err)
	}

	reg := schema.Default()
	tables := make(map[string]*table.Table, len(manifest.Tables))
	for _, tc := range manifest.Tables {
		def, ok := reg.Table(tc.Name)
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), styles.Warning.Render("skipping unknown table "+tc.Name))
			continue
		}
		tbl, err := export.ReadTable(dir, def)
		if err != nil {
			return fmt.Errorf("failed to read table %s: %w", tc.Name, err)
		}
		if tbl.NumRows() != tc.Records {
			fmt.Fprintln(cmd.OutOrStdout(), styles.Warning.Render(fmt.Sprintf(
				"%s: manifest says %d records, file has %d", tc.Name, tc.Records, tbl.NumRows())))
		}
		tables[tc.Name] = tbl
	}

	issues := postprocess.NewValidator(reg, logger).Validate(tables)
	if len(issues) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), styles.Success.Render(fmt.Sprintf(
			"Bundle is clean: %d tables, %d records", len(tables), manifest.TotalRecords)))
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), styles.Error.Render(fmt.Sprintf("%d issues found:", len(issues))))
	for _, issue := range issues {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", issue.String())
	}
	if opts.Strict {
		return fmt.Errorf("bundle has %d validation issues", len(issues))
	}
	return nil
}
