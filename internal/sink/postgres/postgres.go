// Package postgres provides a PostgreSQL sink for exported bundles.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/synthline-labs/synthline/internal/schema"
	"github.com/synthline-labs/synthline/internal/sink"
)

func init() {
	sink.Register("postgres", func(logger *slog.Logger) sink.Sink {
		return New(logger)
	})
}

// Sink implements the sink.Sink interface for PostgreSQL.
type Sink struct {
	sink.BaseSQLSink
}

// New creates a new PostgreSQL sink instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Sink{BaseSQLSink: sink.BaseSQLSink{Logger: logger}}
}

// Connect establishes a connection to PostgreSQL.
func (s *Sink) Connect(ctx context.Context, cfg sink.Config) error {
	dsn := buildPostgresDSN(cfg)

	s.Logger.Debug("connecting to postgres",
		slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	s.DB = db
	s.Cfg = cfg
	return nil
}

// buildPostgresDSN constructs a PostgreSQL connection string.
func buildPostgresDSN(cfg sink.Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := "disable"
	if cfg.Options != nil {
		if mode, ok := cfg.Options["sslmode"]; ok {
			sslmode = mode
		}
	}

	parts := []string{
		fmt.Sprintf("host=%s", host),
		fmt.Sprintf("port=%d", port),
		fmt.Sprintf("dbname=%s", cfg.Database),
		fmt.Sprintf("sslmode=%s", sslmode),
	}
	if cfg.Username != "" {
		parts = append(parts, fmt.Sprintf("user=%s", cfg.Username))
	}
	if cfg.Password != "" {
		parts = append(parts, fmt.Sprintf("password=%s", cfg.Password))
	}
	return strings.Join(parts, " ")
}

// Load recreates the table with typed columns and bulk-loads the
// bundle's CSV via COPY FROM STDIN.
func (s *Sink) Load(ctx context.Context, def *schema.Table, bundleDir string) (int64, error) {
	if s.DB == nil {
		return 0, fmt.Errorf("database connection not established")
	}

	if err := s.createTable(ctx, def); err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", def.Name, err)
	}

	f, err := os.Open(filepath.Join(bundleDir, def.Name+".csv"))
	if err != nil {
		return 0, fmt.Errorf("failed to open csv for %s: %w", def.Name, err)
	}
	defer f.Close()

	rows, err := s.copyFromCSV(ctx, def.Name, f)
	if err != nil {
		return 0, fmt.Errorf("failed to copy data into %s: %w", def.Name, err)
	}

	s.Logger.Debug("loaded table into postgres", slog.String("table", def.Name), slog.Int64("rows", rows))
	return rows, nil
}

func (s *Sink) createTable(ctx context.Context, def *schema.Table) error {
	dropSQL := fmt.Sprintf("DROP TABLE IF EXISTS %s", def.Name)
	if err := s.Exec(ctx, dropSQL); err != nil {
		return err
	}
	return s.Exec(ctx, createTableSQL(def))
}

// createTableSQL builds a typed CREATE TABLE statement from a table
// definition.
func createTableSQL(def *schema.Table) string {
	var colDefs []string
	for _, col := range def.Columns {
		colDef := fmt.Sprintf("%s %s", sanitizeIdentifier(col.Name), sqlType(col.Kind))
		if col.Name == def.PrimaryKey {
			colDef += " PRIMARY KEY"
		} else if col.Required {
			colDef += " NOT NULL"
		}
		colDefs = append(colDefs, colDef)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", def.Name, strings.Join(colDefs, ", "))
}

func sqlType(kind schema.Kind) string {
	switch kind {
	case schema.KindNumeric:
		return "DOUBLE PRECISION"
	case schema.KindInteger:
		return "BIGINT"
	case schema.KindDate:
		return "DATE"
	default:
		return "TEXT"
	}
}

// copyFromCSV uses PostgreSQL COPY to load CSV data and returns the
// number of rows copied.
func (s *Sink) copyFromCSV(ctx context.Context, tableName string, f *os.File) (int64, error) {
	conn, err := s.DB.Conn(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	var rows int64
	err = conn.Raw(func(driverConn any) error {
		pgxConn := driverConn.(*stdlib.Conn).Conn()

		copySQL := fmt.Sprintf("COPY %s FROM STDIN WITH (FORMAT csv, HEADER true)", tableName)
		tag, err := pgxConn.PgConn().CopyFrom(ctx, f, copySQL)
		if err != nil {
			return err
		}
		rows = tag.RowsAffected()
		return nil
	})
	return rows, err
}

// sanitizeIdentifier makes a column name safe for SQL.
func sanitizeIdentifier(name string) string {
	safe := strings.ReplaceAll(name, " ", "_")
	safe = strings.ReplaceAll(safe, "-", "_")
	if isReservedWord(safe) {
		return fmt.Sprintf(`"%s"`, safe)
	}
	return safe
}

func isReservedWord(name string) bool {
	reserved := map[string]bool{
		"user": true, "order": true, "group": true, "table": true,
		"select": true, "from": true, "where": true, "index": true,
	}
	return reserved[strings.ToLower(name)]
}
