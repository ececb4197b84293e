package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/synthline-labs/synthline/internal/config"
	"github.com/synthline-labs/synthline/internal/dag"
	"github.com/synthline-labs/synthline/internal/export"
	"github.com/synthline-labs/synthline/internal/schema"
	"github.com/synthline-labs/synthline/internal/sink"

	// Register the built-in sinks.
	_ "github.com/synthline-labs/synthline/internal/sink/duckdb"
	_ "github.com/synthline-labs/synthline/internal/sink/postgres"
)

// LoadOptions holds options for the load command.
type LoadOptions struct {
	SinkType string
	Path     string
	Tables   string
}

// NewLoadCommand creates the load command.
func NewLoadCommand() *cobra.Command {
	opts := &LoadOptions{}

	cmd := &cobra.Command{
		Use:   "load <bundle-dir>",
		Short: "Load an exported bundle into a database",
		Long: `Load the CSV files of an exported bundle into a configured sink.

The sink is taken from the sink section of synthline.yaml and can be
overridden with --sink. Tables are loaded in dependency order so foreign
keys always point at rows that already exist.`,
		Example: `  # Load into the configured sink
  synthline load out

  # Load into a local DuckDB file
  synthline load out --sink duckdb --path analytics.db

  # Load a subset
  synthline load out --tables clients,projects`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.SinkType, "sink", "", fmt.Sprintf("Sink type (%s)", strings.Join(sink.List(), ", ")))
	cmd.Flags().StringVar(&opts.Path, "path", "", "Database path for file-backed sinks")
	cmd.Flags().StringVar(&opts.Tables, "tables", "", "Comma-separated subset of tables to load")

	return cmd
}

func runLoad(cmd *cobra.Command, opts *LoadOptions, dir string) error {
	cfg := GetConfig(cmd.Context())
	logger := GetLogger(cmd.Context())
	styles := DefaultStyles()

	sinkCfg, err := resolveSinkConfig(cfg, opts)
	if err != nil {
		return err
	}

	manifest, err := export.ReadManifest(dir)
	if err != nil {
		return fmt.Errorf("failed to read bundle: %w", err)
	}

	reg := schema.Default()
	order, err := loadOrder(reg, manifest, opts.Tables)
	if err != nil {
		return err
	}

	s, err := sink.New(sinkCfg, logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := s.Connect(ctx, sinkCfg); err != nil {
		return fmt.Errorf("failed to connect to %s sink: %w", sinkCfg.Type, err)
	}
	defer s.Close()

	start := time.Now()
	var total int64
	for _, name := range order {
		def, _ := reg.Table(name)
		rows, err := s.Load(ctx, def, dir)
		if err != nil {
			return fmt.Errorf("failed to load table %s: %w", name, err)
		}
		logger.Info("table loaded", "table", name, "rows", rows)
		fmt.Fprintf(cmd.OutOrStdout(), "  %s: %d rows\n", name, rows)
		total += rows
	}

	fmt.Fprintln(cmd.OutOrStdout(), styles.Success.Render(fmt.Sprintf(
		"Loaded %d rows into %s in %s", total, sinkCfg.Type, time.Since(start).Round(time.Millisecond))))
	return nil
}

// resolveSinkConfig merges the configured sink with command-line overrides.
func resolveSinkConfig(cfg *config.Config, opts *LoadOptions) (sink.Config, error) {
	var sinkCfg sink.Config
	if cfg.Sink != nil {
		if err := cfg.Sink.Validate(); err != nil && opts.SinkType == "" {
			return sink.Config{}, err
		}
		sinkCfg = cfg.Sink.ToSinkConfig()
	}
	if opts.SinkType != "" {
		sinkCfg.Type = opts.SinkType
	}
	if opts.Path != "" {
		sinkCfg.Path = opts.Path
	}
	if sinkCfg.Type == "" {
		return sink.Config{}, fmt.Errorf("no sink configured: set sink.type in synthline.yaml or pass --sink")
	}
	return sinkCfg, nil
}

// loadOrder returns the bundle's tables in dependency order, filtered to
// the requested subset.
func loadOrder(reg *schema.Registry, manifest *export.Manifest, subset string) ([]string, error) {
	inBundle := make(map[string]bool, len(manifest.Tables))
	for _, tc := range manifest.Tables {
		inBundle[tc.Name] = true
	}

	wanted := inBundle
	if subset != "" {
		wanted = make(map[string]bool)
		for _, name := range strings.Split(subset, ",") {
			name = strings.TrimSpace(name)
			if !inBundle[name] {
				return nil, fmt.Errorf("table %q is not in the bundle", name)
			}
			wanted[name] = true
		}
	}

	order, err := dag.GenerationOrder(reg)
	if err != nil {
		return nil, err
	}
	result := make([]string, 0, len(wanted))
	for _, name := range order {
		if wanted[name] {
			result = append(result, name)
		}
	}
	return result, nil
}
