package table

import (
	"fmt"
	"strconv"

	"github.com/montanaflynn/stats"
)

// ColumnStats summarizes a numeric column.
type ColumnStats struct {
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
	Count  int
}

// Stats computes summary statistics for a numeric column. Nil and
// non-numeric cells are excluded from the sample.
func (t *Table) Stats(column string) (ColumnStats, error) {
	sample, err := t.FloatColumn(column)
	if err != nil {
		return ColumnStats{}, err
	}
	if len(sample) == 0 {
		return ColumnStats{}, fmt.Errorf("table %s: column %q has no numeric values", t.Name, column)
	}

	min, err := stats.Min(sample)
	if err != nil {
		return ColumnStats{}, fmt.Errorf("min of %s.%s: %w", t.Name, column, err)
	}
	max, err := stats.Max(sample)
	if err != nil {
		return ColumnStats{}, fmt.Errorf("max of %s.%s: %w", t.Name, column, err)
	}
	mean, err := stats.Mean(sample)
	if err != nil {
		return ColumnStats{}, fmt.Errorf("mean of %s.%s: %w", t.Name, column, err)
	}
	// Population stddev; a single-row table has stddev 0.
	sd, err := stats.StandardDeviationPopulation(sample)
	if err != nil {
		return ColumnStats{}, fmt.Errorf("stddev of %s.%s: %w", t.Name, column, err)
	}

	return ColumnStats{
		Min:    min,
		Max:    max,
		Mean:   mean,
		StdDev: sd,
		Count:  len(sample),
	}, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
