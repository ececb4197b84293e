// Package postprocess repairs expanded tables and validates the final
// table set. Repair clips numeric columns back to a band around the
// original range and resamples categorical values that fall outside the
// original domain. Validation reports data-quality issues without ever
// mutating data.
package postprocess

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/synthline-labs/synthline/internal/schema"
	"github.com/synthline-labs/synthline/internal/table"
)

// Numeric clip bounds relative to the original column range.
const (
	clipMinFactor = 0.1
	clipMaxFactor = 2.0
)

// Processor repairs generative-model artifacts in expanded tables.
type Processor struct {
	rng    *rand.Rand
	logger *slog.Logger
}

// New creates a post-processor drawing repairs from rng.
func New(rng *rand.Rand, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Processor{rng: rng, logger: logger}
}

// Process clips numeric columns of expanded to [0.1*min, 2.0*max] of the
// original table and replaces out-of-domain categorical values with
// uniform resamples from the original value set. The expanded table is
// modified in place and returned.
func (p *Processor) Process(expanded, original *table.Table, def *schema.Table) (*table.Table, error) {
	var clipped, repaired int

	for _, col := range def.Columns {
		if !expanded.HasColumn(col.Name) {
			return nil, fmt.Errorf("table %s is missing column %q", expanded.Name, col.Name)
		}

		switch col.Kind {
		case schema.KindNumeric, schema.KindInteger:
			n, err := p.clipNumeric(expanded, original, col)
			if err != nil {
				return nil, err
			}
			clipped += n
		case schema.KindCategorical:
			n, err := p.repairCategorical(expanded, original, col)
			if err != nil {
				return nil, err
			}
			repaired += n
		}
	}

	if clipped > 0 || repaired > 0 {
		p.logger.Debug("post-processed table",
			"table", expanded.Name, "clipped", clipped, "repaired", repaired)
	}
	return expanded, nil
}

func (p *Processor) clipNumeric(expanded, original *table.Table, col schema.Column) (int, error) {
	st, err := original.Stats(col.Name)
	if err != nil {
		// A fully-null optional numeric column has no range to clip to.
		return 0, nil
	}
	lo := st.Min * clipMinFactor
	hi := st.Max * clipMaxFactor

	var clipped int
	for r := 0; r < expanded.NumRows(); r++ {
		v, err := expanded.Value(r, col.Name)
		if err != nil {
			return 0, err
		}
		if v == nil {
			continue
		}
		f, ok := table.AsFloat(v)
		if !ok {
			continue
		}
		bounded := f
		if bounded < lo {
			bounded = lo
		}
		if bounded > hi {
			bounded = hi
		}
		if bounded == f {
			continue
		}
		clipped++
		var repl any = bounded
		if col.Kind == schema.KindInteger {
			repl = int(math.Round(bounded))
		}
		if err := expanded.SetValue(r, col.Name, repl); err != nil {
			return 0, err
		}
	}
	return clipped, nil
}

func (p *Processor) repairCategorical(expanded, original *table.Table, col schema.Column) (int, error) {
	domain, err := originalDomain(original, col.Name)
	if err != nil {
		return 0, err
	}
	if len(domain) == 0 {
		return 0, nil
	}
	known := make(map[string]struct{}, len(domain))
	for _, v := range domain {
		known[v] = struct{}{}
	}

	var repaired int
	for r := 0; r < expanded.NumRows(); r++ {
		v, err := expanded.Value(r, col.Name)
		if err != nil {
			return 0, err
		}
		if v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			s = table.RenderValue(v)
		}
		if _, inDomain := known[s]; inDomain {
			continue
		}
		repaired++
		repl := domain[p.rng.Intn(len(domain))]
		if err := expanded.SetValue(r, col.Name, repl); err != nil {
			return 0, err
		}
	}
	return repaired, nil
}

// originalDomain lists the distinct non-nil values of a column in
// first-seen order, so repair draws are reproducible for a fixed seed.
func originalDomain(tbl *table.Table, column string) ([]string, error) {
	vals, err := tbl.Column(column)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var out []string
	for _, v := range vals {
		if v == nil {
			continue
		}
		s := table.RenderValue(v)
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}
