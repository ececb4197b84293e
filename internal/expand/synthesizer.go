// Package expand inflates a table's row count while preserving each
// column's marginal distribution and domain. The primary path is a
// trainable generative model behind the Synthesizer interface; on any
// model failure the expander degrades to replication-with-noise behind
// the same interface, so either branch can be forced in tests.
package expand

import (
	"context"

	"github.com/synthline-labs/synthline/internal/schema"
	"github.com/synthline-labs/synthline/internal/table"
)

// Synthesizer is the external generative-model capability: train on a
// table, then sample rows with the same columns. Implementations may be
// arbitrarily expensive in Fit and Sample; both honor ctx cancellation
// only between rows, matching the synchronous contract of the model.
type Synthesizer interface {
	// Fit trains the synthesizer on a table.
	Fit(ctx context.Context, tbl *table.Table, def *schema.Table) error

	// Sample produces n rows with the training table's columns.
	Sample(ctx context.Context, n int) (*table.Table, error)
}

// Method identifies which expansion path produced a table.
type Method string

const (
	// MethodModel means the trainable generative model succeeded.
	MethodModel Method = "model"

	// MethodReplication means the replication-with-noise fallback ran.
	MethodReplication Method = "replication"

	// MethodNone means the table was passed through unexpanded.
	MethodNone Method = "none"
)
