// Package state persists generation run history in SQLite. Every run
// records its seed, multiplier, and per-table outcomes so a bundle can be
// traced back to the exact invocation that produced it.
package state

import "time"

// RunStatus is the lifecycle state of a generation run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one recorded generation run.
type Run struct {
	ID           string
	Seed         int64
	Multiplier   int
	Status       RunStatus
	OutputDir    string
	TotalRecords int
	IssueCount   int
	Error        string
	StartedAt    time.Time
	CompletedAt  *time.Time
}

// TableRun is the outcome of one table within a run.
type TableRun struct {
	RunID     string
	TableName string
	BaseRows  int
	FinalRows int
	Method    string
	CreatedAt time.Time
}
