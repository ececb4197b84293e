package state

import (
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(nil)
	if err := store.Open(":memory:"); err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := store.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_OpenClose(t *testing.T) {
	store := NewSQLiteStore(nil)

	if err := store.Open(":memory:"); err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
}

func TestSQLiteStore_Migrate(t *testing.T) {
	store := setupTestStore(t)

	for _, table := range []string{"runs", "table_runs"} {
		rows, err := store.db.Query("SELECT 1 FROM " + table + " LIMIT 1")
		if err != nil {
			t.Errorf("table %s does not exist: %v", table, err)
		} else {
			rows.Close()
		}
	}

	version, err := store.MigrationVersion()
	if err != nil {
		t.Fatalf("failed to get migration version: %v", err)
	}
	if version < 1 {
		t.Errorf("expected migration version >= 1, got %d", version)
	}
}

func TestSQLiteStore_RunLifecycle(t *testing.T) {
	store := setupTestStore(t)

	run, err := store.CreateRun(42, 10)
	if err != nil {
		t.Fatalf("failed to create run: %v", err)
	}
	if run.ID == "" {
		t.Error("expected non-empty run ID")
	}
	if run.Status != RunStatusRunning {
		t.Errorf("expected status %s, got %s", RunStatusRunning, run.Status)
	}

	if err := store.RecordTable(run.ID, "clients", 100, 1000, "model"); err != nil {
		t.Fatalf("failed to record table: %v", err)
	}
	if err := store.RecordTable(run.ID, "projects", 300, 3000, "replication"); err != nil {
		t.Fatalf("failed to record table: %v", err)
	}

	if err := store.CompleteRun(run.ID, RunStatusCompleted, "/tmp/out", 4000, 0, ""); err != nil {
		t.Fatalf("failed to complete run: %v", err)
	}

	got, err := store.GetRun(run.ID)
	if err != nil {
		t.Fatalf("failed to get run: %v", err)
	}
	if got.Status != RunStatusCompleted {
		t.Errorf("expected status %s, got %s", RunStatusCompleted, got.Status)
	}
	if got.Seed != 42 || got.Multiplier != 10 {
		t.Errorf("unexpected run params: seed=%d multiplier=%d", got.Seed, got.Multiplier)
	}
	if got.TotalRecords != 4000 {
		t.Errorf("expected 4000 total records, got %d", got.TotalRecords)
	}
	if got.OutputDir != "/tmp/out" {
		t.Errorf("unexpected output dir %q", got.OutputDir)
	}
	if got.CompletedAt == nil {
		t.Error("expected completed_at to be set")
	}

	tableRuns, err := store.GetTableRuns(run.ID)
	if err != nil {
		t.Fatalf("failed to get table runs: %v", err)
	}
	if len(tableRuns) != 2 {
		t.Fatalf("expected 2 table runs, got %d", len(tableRuns))
	}
	if tableRuns[0].TableName != "clients" || tableRuns[0].Method != "model" {
		t.Errorf("unexpected first table run: %+v", tableRuns[0])
	}
	if tableRuns[1].FinalRows != 3000 {
		t.Errorf("expected 3000 final rows, got %d", tableRuns[1].FinalRows)
	}
}

func TestSQLiteStore_FailedRun(t *testing.T) {
	store := setupTestStore(t)

	run, err := store.CreateRun(7, 1)
	if err != nil {
		t.Fatalf("failed to create run: %v", err)
	}
	if err := store.CompleteRun(run.ID, RunStatusFailed, "", 0, 0, "export failed"); err != nil {
		t.Fatalf("failed to complete run: %v", err)
	}

	got, err := store.GetRun(run.ID)
	if err != nil {
		t.Fatalf("failed to get run: %v", err)
	}
	if got.Status != RunStatusFailed {
		t.Errorf("expected status %s, got %s", RunStatusFailed, got.Status)
	}
	if got.Error != "export failed" {
		t.Errorf("expected error message, got %q", got.Error)
	}
}

func TestSQLiteStore_GetRunNotFound(t *testing.T) {
	store := setupTestStore(t)

	if _, err := store.GetRun("no-such-id"); err == nil {
		t.Error("expected error for missing run")
	}
	if err := store.CompleteRun("no-such-id", RunStatusCompleted, "", 0, 0, ""); err == nil {
		t.Error("expected error completing missing run")
	}
}

func TestSQLiteStore_ListRuns(t *testing.T) {
	store := setupTestStore(t)

	first, err := store.CreateRun(1, 1)
	if err != nil {
		t.Fatalf("failed to create run: %v", err)
	}
	// Keep started_at strictly ordered.
	time.Sleep(5 * time.Millisecond)
	second, err := store.CreateRun(2, 1)
	if err != nil {
		t.Fatalf("failed to create run: %v", err)
	}

	runs, err := store.ListRuns(10)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != second.ID {
		t.Errorf("expected newest run first, got %s", runs[0].ID)
	}
	if runs[1].ID != first.ID {
		t.Errorf("expected oldest run last, got %s", runs[1].ID)
	}

	limited, err := store.ListRuns(1)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected 1 run with limit, got %d", len(limited))
	}
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore(nil)

	if _, err := store.CreateRun(1, 1); err == nil {
		t.Error("expected error when database not opened")
	}
	if err := store.Migrate(); err == nil {
		t.Error("expected error when database not opened")
	}
}
