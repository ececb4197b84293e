package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/synthline-labs/synthline/internal/state"
)

// RunsOptions holds options for the runs command.
type RunsOptions struct {
	Limit int
}

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	opts := &RunsOptions{}

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "Show recorded generation runs",
		Long: `List runs recorded in the state database, newest first, or show
the per-table breakdown of one run.`,
		Example: `  # List recent runs
  synthline runs

  # Show one run in detail
  synthline runs 2f9c1f4e-...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(cmd, opts, args)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum number of runs to list")

	return cmd
}

func runRuns(cmd *cobra.Command, opts *RunsOptions, args []string) error {
	cfg := GetConfig(cmd.Context())
	logger := GetLogger(cmd.Context())

	store, err := openStore(cfg, false, logger)
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("no state database configured: set state_path in synthline.yaml")
	}
	defer store.Close()

	if len(args) == 1 {
		return renderRunDetail(cmd.OutOrStdout(), store, args[0])
	}

	runs, err := store.ListRuns(opts.Limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet. Run `synthline generate` first.")
		return nil
	}

	renderRunList(cmd.OutOrStdout(), runs)
	return nil
}

func renderRunList(w io.Writer, runs []*state.Run) {
	styles := DefaultStyles()

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Run", "Started", "Status", "Seed", "Mult", "Records", "Issues"})
	for _, run := range runs {
		t.AppendRow(table.Row{
			shortID(run.ID),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			renderStatus(styles, run.Status),
			run.Seed,
			run.Multiplier,
			run.TotalRecords,
			run.IssueCount,
		})
	}
	t.Render()
}

func renderRunDetail(w io.Writer, store *state.SQLiteStore, runID string) error {
	styles := DefaultStyles()

	run, err := store.GetRun(runID)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, styles.Title.Render("Run "+run.ID))
	fmt.Fprintf(w, "Status:  %s\n", renderStatus(styles, run.Status))
	fmt.Fprintf(w, "Seed:    %d (multiplier %d)\n", run.Seed, run.Multiplier)
	fmt.Fprintf(w, "Started: %s\n", run.StartedAt.Local().Format(time.RFC3339))
	if run.CompletedAt != nil {
		fmt.Fprintf(w, "Took:    %s\n", run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond))
	}
	if run.OutputDir != "" {
		fmt.Fprintf(w, "Output:  %s\n", run.OutputDir)
	}
	if run.Error != "" {
		fmt.Fprintf(w, "Error:   %s\n", styles.Error.Render(run.Error))
	}

	tableRuns, err := store.GetTableRuns(runID)
	if err != nil {
		return err
	}
	if len(tableRuns) == 0 {
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Table", "Base Rows", "Final Rows", "Method"})
	for _, tr := range tableRuns {
		t.AppendRow(table.Row{tr.TableName, tr.BaseRows, tr.FinalRows, tr.Method})
	}
	t.Render()
	return nil
}

func renderStatus(styles *Styles, status state.RunStatus) string {
	switch status {
	case state.RunStatusCompleted:
		return styles.Success.Render(string(status))
	case state.RunStatusFailed:
		return styles.Error.Render(string(status))
	default:
		return styles.Muted.Render(string(status))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
