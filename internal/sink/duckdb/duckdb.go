// Package duckdb provides a DuckDB sink for exported bundles.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/synthline-labs/synthline/internal/schema"
	"github.com/synthline-labs/synthline/internal/sink"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

func init() {
	sink.Register("duckdb", func(logger *slog.Logger) sink.Sink {
		return New(logger)
	})
}

// Sink implements the sink.Sink interface for DuckDB.
type Sink struct {
	sink.BaseSQLSink
}

// New creates a new DuckDB sink instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Sink{BaseSQLSink: sink.BaseSQLSink{Logger: logger}}
}

// Connect establishes a connection to DuckDB.
// Use ":memory:" as the path for an in-memory database.
func (s *Sink) Connect(ctx context.Context, cfg sink.Config) error {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	s.DB = db
	s.Cfg = cfg
	return nil
}

// Load creates or replaces the table from the bundle's CSV using
// read_csv_auto with automatic schema detection.
func (s *Sink) Load(ctx context.Context, def *schema.Table, bundleDir string) (int64, error) {
	csvPath := filepath.Join(bundleDir, def.Name+".csv")
	// read_csv_auto takes a quoted literal; escape embedded quotes.
	safePath := strings.ReplaceAll(csvPath, "'", "''")

	loadSQL := fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s AS SELECT * FROM read_csv_auto('%s', header=true)",
		def.Name, safePath)
	if err := s.Exec(ctx, loadSQL); err != nil {
		return 0, fmt.Errorf("failed to load %s: %w", def.Name, err)
	}

	var count int64
	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM %s", def.Name)
	if err := s.DB.QueryRowContext(ctx, countSQL).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", def.Name, err)
	}

	s.Logger.Debug("loaded table into duckdb", slog.String("table", def.Name), slog.Int64("rows", count))
	return count, nil
}
