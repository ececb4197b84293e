package expand

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/synthline-labs/synthline/internal/schema"
	"github.com/synthline-labs/synthline/internal/table"
)

// Replicator is the local fallback synthesizer: it replays the training
// table, adding Gaussian noise (sigma = 10% of each numeric column's
// standard deviation) to non-identifier numerics, clipping each value at
// the column's pre-noise minimum, and rewriting primary-key suffixes by
// replica_index * original_row_count so identifiers stay unique across
// replicas. Column statistics of the result approximate the original's,
// which downstream clipping depends on.
type Replicator struct {
	rng    *rand.Rand
	logger *slog.Logger

	src    *table.Table
	def    *schema.Table
	sigmas map[string]float64
	mins   map[string]float64
	fitted bool
}

// noiseFraction is the share of a column's stddev used as noise sigma.
const noiseFraction = 0.10

// NewReplicator creates the replication-with-noise fallback.
func NewReplicator(rng *rand.Rand, logger *slog.Logger) *Replicator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Replicator{rng: rng, logger: logger}
}

// Fit records the source table and per-column noise parameters.
func (r *Replicator) Fit(_ context.Context, tbl *table.Table, def *schema.Table) error {
	if tbl.NumRows() == 0 {
		return fmt.Errorf("cannot replicate empty table %s", tbl.Name)
	}

	r.src = tbl
	r.def = def
	r.sigmas = make(map[string]float64)
	r.mins = make(map[string]float64)

	for _, col := range def.Columns {
		if col.Kind != schema.KindNumeric && col.Kind != schema.KindInteger {
			continue
		}
		if !tbl.HasColumn(col.Name) {
			return fmt.Errorf("table %s is missing column %q", tbl.Name, col.Name)
		}
		st, err := tbl.Stats(col.Name)
		if err != nil {
			// A fully-null optional numeric column carries no noise.
			continue
		}
		r.sigmas[col.Name] = st.StdDev * noiseFraction
		r.mins[col.Name] = st.Min
	}

	r.fitted = true
	return nil
}

// Sample produces n rows by cycling replicas of the source table.
func (r *Replicator) Sample(ctx context.Context, n int) (*table.Table, error) {
	if !r.fitted {
		return nil, fmt.Errorf("replicator not fitted")
	}

	orig := r.src.NumRows()
	out := table.New(r.src.Name, r.src.Columns)

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		srcRow := r.src.Rows[i%orig]
		replica := i / orig

		row := make([]any, len(srcRow))
		copy(row, srcRow)

		for c, name := range r.src.Columns {
			col, ok := r.def.Column(name)
			if !ok {
				continue
			}
			switch {
			case col.Kind == schema.KindID && name == r.def.PrimaryKey && replica > 0:
				id, okS := row[c].(string)
				if !okS {
					continue
				}
				prefix, seq, err := schema.ParseID(id)
				if err != nil {
					return nil, fmt.Errorf("rewriting identifier in %s: %w", r.src.Name, err)
				}
				row[c] = schema.FormatID(prefix, seq+replica*orig)

			case col.Kind == schema.KindNumeric || col.Kind == schema.KindInteger:
				v, okF := table.AsFloat(row[c])
				if !okF {
					continue
				}
				noisy := v + r.rng.NormFloat64()*r.sigmas[name]
				if min, okM := r.mins[name]; okM && noisy < min {
					noisy = min
				}
				if col.Kind == schema.KindInteger {
					row[c] = int(math.Round(noisy))
				} else {
					row[c] = round2(noisy)
				}
			}
		}

		if err := out.AppendRow(row); err != nil {
			return nil, err
		}
	}

	r.logger.Debug("replicated table", "table", r.src.Name, "rows", n, "replicas", (n+orig-1)/orig)
	return out, nil
}
