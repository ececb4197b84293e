package expand

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/synthline-labs/synthline/internal/schema"
	"github.com/synthline-labs/synthline/internal/table"
)

// Marginal is the in-process generative model. Fit learns each column's
// marginal: Gaussian parameters for numerics (log-space for lognormal
// hints), value frequencies for categoricals and text-like columns, and
// date bounds for dates. Sample draws columns independently; primary-key
// columns are re-sequenced from zero so sampled identifiers stay unique.
type Marginal struct {
	rng    *rand.Rand
	logger *slog.Logger

	name    string
	columns []string
	cols    []marginalColumn
	fitted  bool
}

type marginalColumn struct {
	def schema.Column

	// primary key re-sequencing
	resequence bool
	prefix     string

	// numeric marginal (log-space when logSpace is set)
	mean, sd, min, max float64
	logSpace           bool

	// value-frequency marginal (categorical, text, email, phone, FK ids)
	values  []string
	weights []float64

	// date bounds
	minT, maxT time.Time

	// observed fraction of nil cells
	nullFrac float64
}

// NewMarginal creates the marginal-distribution model.
func NewMarginal(rng *rand.Rand, logger *slog.Logger) *Marginal {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Marginal{rng: rng, logger: logger}
}

// Fit trains the model on a table. It fails on empty tables, on columns
// missing from the table, and on numeric columns without numeric values.
func (m *Marginal) Fit(_ context.Context, tbl *table.Table, def *schema.Table) error {
	if tbl.NumRows() == 0 {
		return fmt.Errorf("cannot fit on empty table %s", tbl.Name)
	}

	m.name = tbl.Name
	m.columns = def.ColumnNames()
	m.cols = make([]marginalColumn, 0, len(def.Columns))

	for _, colDef := range def.Columns {
		if !tbl.HasColumn(colDef.Name) {
			return fmt.Errorf("table %s is missing column %q", tbl.Name, colDef.Name)
		}

		mc := marginalColumn{def: colDef}

		vals, err := tbl.Column(colDef.Name)
		if err != nil {
			return err
		}
		var nils int
		for _, v := range vals {
			if v == nil {
				nils++
			}
		}
		mc.nullFrac = float64(nils) / float64(len(vals))

		switch colDef.Kind {
		case schema.KindID:
			if colDef.Name == def.PrimaryKey {
				mc.resequence = true
				mc.prefix = def.Prefix
			} else {
				// Foreign keys: draw from observed parent ids so sampled
				// rows keep resolving.
				mc.values, mc.weights = valueFrequencies(vals)
			}

		case schema.KindNumeric, schema.KindInteger:
			st, err := tbl.Stats(colDef.Name)
			if err != nil {
				return fmt.Errorf("fitting %s.%s: %w", tbl.Name, colDef.Name, err)
			}
			mc.min, mc.max = st.Min, st.Max
			if colDef.Distribution == "lognormal" && st.Min > 0 {
				logs := make([]float64, 0, st.Count)
				sample, _ := tbl.FloatColumn(colDef.Name)
				for _, v := range sample {
					logs = append(logs, math.Log(v))
				}
				mc.mean, mc.sd = meanStd(logs)
				mc.logSpace = true
			} else {
				mc.mean, mc.sd = st.Mean, st.StdDev
			}

		case schema.KindDate:
			for _, v := range vals {
				t, ok := v.(time.Time)
				if !ok {
					continue
				}
				if mc.minT.IsZero() || t.Before(mc.minT) {
					mc.minT = t
				}
				if mc.maxT.IsZero() || t.After(mc.maxT) {
					mc.maxT = t
				}
			}
			if mc.minT.IsZero() {
				return fmt.Errorf("fitting %s.%s: no date values", tbl.Name, colDef.Name)
			}

		default:
			mc.values, mc.weights = valueFrequencies(vals)
			if len(mc.values) == 0 {
				return fmt.Errorf("fitting %s.%s: no values to learn from", tbl.Name, colDef.Name)
			}
		}

		m.cols = append(m.cols, mc)
	}

	m.fitted = true
	m.logger.Debug("fitted marginal model", "table", m.name, "rows", tbl.NumRows())
	return nil
}

// Sample produces n rows drawn from the learned marginals.
func (m *Marginal) Sample(ctx context.Context, n int) (*table.Table, error) {
	if !m.fitted {
		return nil, fmt.Errorf("marginal model not fitted")
	}

	out := table.New(m.name, m.columns)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row := make([]any, len(m.cols))
		for c := range m.cols {
			row[c] = m.sampleCell(&m.cols[c], i)
		}
		if err := out.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (m *Marginal) sampleCell(mc *marginalColumn, rowIdx int) any {
	if mc.resequence {
		return schema.FormatID(mc.prefix, rowIdx)
	}
	// Preserve the observed null fraction for optional columns.
	if mc.nullFrac > 0 && m.rng.Float64() < mc.nullFrac {
		return nil
	}

	switch mc.def.Kind {
	case schema.KindNumeric:
		return round2(m.drawNumeric(mc))
	case schema.KindInteger:
		return int(math.Round(m.drawNumeric(mc)))
	case schema.KindDate:
		span := int(mc.maxT.Sub(mc.minT).Hours() / 24)
		if span <= 0 {
			return mc.minT
		}
		return mc.minT.AddDate(0, 0, m.rng.Intn(span+1))
	default:
		i, err := weightedDraw(m.rng, mc.weights)
		if err != nil {
			return mc.values[0]
		}
		return mc.values[i]
	}
}

func (m *Marginal) drawNumeric(mc *marginalColumn) float64 {
	if mc.logSpace {
		v := math.Exp(m.rng.NormFloat64()*mc.sd + mc.mean)
		return clampF(v, mc.min, mc.max)
	}
	return clampF(m.rng.NormFloat64()*mc.sd+mc.mean, mc.min, mc.max)
}

// valueFrequencies builds an order-preserving frequency table over the
// non-nil values of a column.
func valueFrequencies(vals []any) ([]string, []float64) {
	index := make(map[string]int)
	var values []string
	var weights []float64
	for _, v := range vals {
		if v == nil {
			continue
		}
		s := table.RenderValue(v)
		if i, ok := index[s]; ok {
			weights[i]++
			continue
		}
		index[s] = len(values)
		values = append(values, s)
		weights = append(weights, 1)
	}
	return values, weights
}

// weightedDraw resolves to the first index whose cumulative weight
// reaches the uniform draw.
func weightedDraw(rng *rand.Rand, weights []float64) (int, error) {
	var total float64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return 0, fmt.Errorf("no positive weight")
	}
	draw := rng.Float64() * total
	var cum float64
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cum += w
		last = i
		if cum >= draw {
			return i, nil
		}
	}
	return last, nil
}

func meanStd(sample []float64) (mean, sd float64) {
	if len(sample) == 0 {
		return 0, 0
	}
	for _, v := range sample {
		mean += v
	}
	mean /= float64(len(sample))
	for _, v := range sample {
		sd += (v - mean) * (v - mean)
	}
	sd = math.Sqrt(sd / float64(len(sample)))
	return mean, sd
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
