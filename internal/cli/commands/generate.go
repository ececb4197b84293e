package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/synthline-labs/synthline/internal/config"
	"github.com/synthline-labs/synthline/internal/pipeline"
	"github.com/synthline-labs/synthline/internal/schema"
	"github.com/synthline-labs/synthline/internal/state"
)

// GenerateOptions holds options for the generate command.
type GenerateOptions struct {
	JSONOutput bool
	NoState    bool
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand() *cobra.Command {
	opts := &GenerateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic dataset bundle",
		Long: `Run the full generation pipeline and export a CSV bundle.

The pipeline seeds the base tables, scales them by the configured
multiplier, derives the dependent tables, validates referential
integrity, and writes one CSV per table plus a manifest. The output
directory must not already exist.`,
		Example: `  # Generate with defaults into ./out
  synthline generate

  # Reproducible run at 5x scale
  synthline generate --seed 42 --multiplier 5 -o out/run-42

  # JSON summary for scripting
  synthline generate --json`,
		Aliases: []string{"gen"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.JSONOutput, "json", false, "Output the run summary as JSON")
	cmd.Flags().BoolVar(&opts.NoState, "no-state", false, "Skip recording the run in the state database")

	return cmd
}

func runGenerate(cmd *cobra.Command, opts *GenerateOptions) error {
	cfg := GetConfig(cmd.Context())
	logger := GetLogger(cmd.Context())

	if err := cfg.Validate(); err != nil {
		return err
	}

	store, err := openStore(cfg, opts.NoState, logger)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	reg := schema.Default()
	pipe := pipeline.New(reg, store, logger)

	start := time.Now()
	result, err := pipe.Run(cmd.Context(), pipeline.Options{
		Clients:     cfg.Rows.Clients,
		TeamMembers: cfg.Rows.TeamMembers,
		Projects:    cfg.Rows.Projects,
		Multiplier:  cfg.Multiplier,
		Seed:        cfg.Seed,
		OutputDir:   cfg.OutputDir,
	})
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	if opts.JSONOutput {
		return renderGenerateJSON(cmd.OutOrStdout(), cfg.OutputDir, result, time.Since(start))
	}
	renderGenerateText(cmd.OutOrStdout(), cfg.OutputDir, result, time.Since(start))
	return nil
}

// openStore opens and migrates the run-state database, or returns nil
// when state tracking is disabled.
func openStore(cfg *config.Config, noState bool, logger *slog.Logger) (*state.SQLiteStore, error) {
	if noState || cfg.StatePath == "" {
		return nil, nil
	}
	if dir := filepath.Dir(cfg.StatePath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	store := state.NewSQLiteStore(logger)
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	if err := store.Migrate(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to migrate state database: %w", err)
	}
	return store, nil
}

func renderGenerateText(w io.Writer, outputDir string, result *pipeline.Result, elapsed time.Duration) {
	styles := DefaultStyles()

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Table", "Base Rows", "Final Rows", "Method"})
	for _, tr := range result.Tables {
		t.AppendRow(table.Row{tr.Name, tr.BaseRows, tr.FinalRows, string(tr.Method)})
	}
	t.AppendFooter(table.Row{"Total", "", result.Manifest.TotalRecords, ""})
	t.Render()

	if len(result.Issues) > 0 {
		fmt.Fprintln(w, styles.Warning.Render(fmt.Sprintf("%d validation issues:", len(result.Issues))))
		for _, issue := range result.Issues {
			fmt.Fprintf(w, "  %s\n", issue.String())
		}
	}

	fmt.Fprintln(w, styles.Success.Render(fmt.Sprintf("Wrote %d records to %s in %s",
		result.Manifest.TotalRecords, outputDir, elapsed.Round(time.Millisecond))))
	fmt.Fprintln(w, styles.Muted.Render(fmt.Sprintf("run %s  seed %d", result.RunID, result.Seed)))
}

func renderGenerateJSON(w io.Writer, outputDir string, result *pipeline.Result, elapsed time.Duration) error {
	type tableSummary struct {
		Name      string `json:"name"`
		BaseRows  int    `json:"base_rows"`
		FinalRows int    `json:"final_rows"`
		Method    string `json:"method"`
	}
	summary := struct {
		RunID        string         `json:"run_id"`
		Seed         int64          `json:"seed"`
		OutputDir    string         `json:"output_dir"`
		TotalRecords int            `json:"total_records"`
		IssueCount   int            `json:"issue_count"`
		DurationMS   int64          `json:"duration_ms"`
		Tables       []tableSummary `json:"tables"`
	}{
		RunID:        result.RunID,
		Seed:         result.Seed,
		OutputDir:    outputDir,
		TotalRecords: result.Manifest.TotalRecords,
		IssueCount:   len(result.Issues),
		DurationMS:   elapsed.Milliseconds(),
	}
	for _, tr := range result.Tables {
		summary.Tables = append(summary.Tables, tableSummary{
			Name:      tr.Name,
			BaseRows:  tr.BaseRows,
			FinalRows: tr.FinalRows,
			Method:    string(tr.Method),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
