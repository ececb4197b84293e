// Package synth generates the base and dependent records of the dataset.
// Base tables (clients, team members) are produced from explicit
// correlation rules; dependent tables sample already-generated parent rows
// and derive child fields from parent attributes plus new randomness.
//
// Every generator takes an explicit *rand.Rand so runs are reproducible
// given a seed.
package synth

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/synthline-labs/synthline/internal/table"
)

// WeightedIndex draws an index with probability proportional to weights.
// The draw is resolved as the first index whose cumulative weight reaches
// the uniform draw, which keeps tie-breaking deterministic for a given
// seed. Zero and negative weights are never selected.
func WeightedIndex(rng *rand.Rand, weights []float64) (int, error) {
	var total float64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return 0, fmt.Errorf("weighted draw requires at least one positive weight")
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
	// Floating point can leave cum fractionally below total; fall back to
	// the last selectable index.
	return last, nil
}

// WeightedChoice draws a value from a fixed categorical distribution.
// The values slice fixes the iteration order so draws are deterministic.
func WeightedChoice(rng *rand.Rand, values []string, weights map[string]float64) (string, error) {
	ws := make([]float64, len(values))
	for i, v := range values {
		ws[i] = weights[v]
	}
	i, err := WeightedIndex(rng, ws)
	if err != nil {
		return "", err
	}
	return values[i], nil
}

// rowWeights extracts a row-aligned weight vector from a table column.
// Non-numeric and nil cells weigh zero so they are never selected.
func rowWeights(t *table.Table, column string) ([]float64, error) {
	vals, err := t.Column(column)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(vals))
	for i, v := range vals {
		if f, ok := table.AsFloat(v); ok {
			out[i] = f
		}
	}
	return out, nil
}

func pick(rng *rand.Rand, pool []string) string {
	return pool[rng.Intn(len(pool))]
}

func pickInt(rng *rand.Rand, pool []int) int {
	return pool[rng.Intn(len(pool))]
}

// pickN samples n distinct values from the pool, fewer if the pool is
// smaller.
func pickN(rng *rand.Rand, pool []string, n int) []string {
	if n >= len(pool) {
		out := append([]string(nil), pool...)
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		return out
	}
	idx := rng.Perm(len(pool))[:n]
	out := make([]string, n)
	for i, j := range idx {
		out[i] = pool[j]
	}
	return out
}

func uniform(rng *rand.Rand, min, max float64) float64 {
	return min + rng.Float64()*(max-min)
}

// logUniform draws log-uniformly between min and max, both > 0.
// Used for revenue-like quantities that span orders of magnitude.
func logUniform(rng *rand.Rand, min, max float64) float64 {
	return math.Exp(uniform(rng, math.Log(min), math.Log(max)))
}

// normalClamped draws from N(mean, sd) and clamps into [lo, hi].
// Clamping replaces rejection sampling so the draw always succeeds.
func normalClamped(rng *rand.Rand, mean, sd, lo, hi float64) float64 {
	return clamp(rng.NormFloat64()*sd+mean, lo, hi)
}

func clamp(v, lo, hi float64) float64 {
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

// dateBetween draws a calendar date (midnight UTC) in [from, to].
func dateBetween(rng *rand.Rand, from, to time.Time) time.Time {
	if !to.After(from) {
		return truncateDay(from)
	}
	span := int(to.Sub(from).Hours() / 24)
	d := from.AddDate(0, 0, rng.Intn(span+1))
	return truncateDay(d)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// asInt reads an integer cell that may have become float64 through
// expansion noise.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(math.Round(n)), true
	default:
		return 0, false
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asTime(v any) (time.Time, bool) {
	t, ok := v.(time.Time)
	return t, ok
}
