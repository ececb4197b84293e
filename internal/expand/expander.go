package expand

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/synthline-labs/synthline/internal/schema"
	"github.com/synthline-labs/synthline/internal/table"
)

// Expander expands tables through the primary synthesizer, degrading to
// the fallback on any primary failure. A fallback failure is fatal.
type Expander struct {
	primary  Synthesizer
	fallback Synthesizer
	logger   *slog.Logger
}

// New creates an expander over a primary and fallback synthesizer.
func New(primary, fallback Synthesizer, logger *slog.Logger) *Expander {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Expander{primary: primary, fallback: fallback, logger: logger}
}

// Expand inflates tbl to NumRows * multiplier rows. It returns the
// expanded table and the method that produced it. A multiplier of one or
// less passes the table through untouched.
func (e *Expander) Expand(ctx context.Context, tbl *table.Table, def *schema.Table, multiplier int) (*table.Table, Method, error) {
	if multiplier <= 1 {
		return tbl, MethodNone, nil
	}

	target := tbl.NumRows() * multiplier

	out, err := e.tryPrimary(ctx, tbl, def, target)
	if err == nil {
		return out, MethodModel, nil
	}
	// Context cancellation is not a model failure; abort instead of
	// degrading.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, "", ctxErr
	}

	e.logger.Warn("generative model failed, falling back to replication",
		"table", tbl.Name, "error", err)

	if err := e.fallback.Fit(ctx, tbl, def); err != nil {
		return nil, "", fmt.Errorf("fallback fit on %s: %w", tbl.Name, err)
	}
	out, err = e.fallback.Sample(ctx, target)
	if err != nil {
		return nil, "", fmt.Errorf("fallback sample on %s: %w", tbl.Name, err)
	}
	return out, MethodReplication, nil
}

func (e *Expander) tryPrimary(ctx context.Context, tbl *table.Table, def *schema.Table, target int) (*table.Table, error) {
	if e.primary == nil {
		return nil, fmt.Errorf("no primary synthesizer configured")
	}
	if err := e.primary.Fit(ctx, tbl, def); err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}
	out, err := e.primary.Sample(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("sample: %w", err)
	}
	if out.NumRows() != target {
		return nil, fmt.Errorf("model produced %d rows, expected %d", out.NumRows(), target)
	}
	return out, nil
}
