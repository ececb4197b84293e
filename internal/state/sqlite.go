package state

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists run history using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite state store instance.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger}
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=foreign_keys(on)&_pragma=journal_mode(WAL)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateRun records the start of a generation run.
func (s *SQLiteStore) CreateRun(seed int64, multiplier int) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run := &Run{
		ID:         uuid.New().String(),
		Seed:       seed,
		Multiplier: multiplier,
		Status:     RunStatusRunning,
		StartedAt:  time.Now().UTC(),
	}

	s.logger.Debug("creating run", slog.String("id", run.ID), slog.Int64("seed", seed))

	_, err := s.db.Exec(`
		INSERT INTO runs (id, seed, multiplier, status, started_at)
		VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Seed, run.Multiplier, string(run.Status), run.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// CompleteRun marks a run as finished with its final status and totals.
func (s *SQLiteStore) CompleteRun(id string, status RunStatus, outputDir string, totalRecords, issueCount int, errMsg string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	now := time.Now().UTC()
	res, err := s.db.Exec(`
		UPDATE runs
		SET status = ?, output_dir = ?, total_records = ?, issue_count = ?, error = ?, completed_at = ?
		WHERE id = ?`,
		string(status), outputDir, totalRecords, issueCount, errMsg, now, id)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

// RecordTable records one table's outcome within a run.
func (s *SQLiteStore) RecordTable(runID, tableName string, baseRows, finalRows int, method string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	_, err := s.db.Exec(`
		INSERT INTO table_runs (run_id, table_name, base_rows, final_rows, method, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		runID, tableName, baseRows, finalRows, method, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record table run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(id string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRow(`
		SELECT id, seed, multiplier, status, output_dir, total_records, issue_count, error, started_at, completed_at
		FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT id, seed, multiplier, status, output_dir, total_records, issue_count, error, started_at, completed_at
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetTableRuns returns the per-table outcomes of a run in insertion order.
func (s *SQLiteStore) GetTableRuns(runID string) ([]*TableRun, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(`
		SELECT run_id, table_name, base_rows, final_rows, method, created_at
		FROM table_runs WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get table runs: %w", err)
	}
	defer rows.Close()

	var out []*TableRun
	for rows.Next() {
		tr := &TableRun{}
		if err := rows.Scan(&tr.RunID, &tr.TableName, &tr.BaseRows, &tr.FinalRows, &tr.Method, &tr.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan table run: %w", err)
		}
		out = append(out, tr)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	run := &Run{}
	var status string
	var errMsg sql.NullString
	var completedAt sql.NullTime
	err := row.Scan(&run.ID, &run.Seed, &run.Multiplier, &status, &run.OutputDir,
		&run.TotalRecords, &run.IssueCount, &errMsg, &run.StartedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	run.Status = RunStatus(status)
	if errMsg.Valid {
		run.Error = errMsg.String
	}
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}
	return run, nil
}
