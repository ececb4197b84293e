// Package table provides the in-memory table container passed between
// pipeline stages. A table is an ordered set of named columns over
// row-major data; cell values are string, float64, int, time.Time, or nil.
package table

import (
	"fmt"
	"time"
)

// Table holds generated rows for a single dataset table.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any

	// colIndex caches column name -> position lookups.
	colIndex map[string]int
}

// New creates an empty table with the given column order.
func New(name string, columns []string) *Table {
	t := &Table{
		Name:    name,
		Columns: append([]string(nil), columns...),
	}
	t.rebuildIndex()
	return t
}

func (t *Table) rebuildIndex() {
	t.colIndex = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		t.colIndex[c] = i
	}
}

// NumRows returns the number of rows in the table.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of a column, or -1 if absent.
func (t *Table) ColumnIndex(name string) int {
	if t.colIndex == nil {
		t.rebuildIndex()
	}
	if i, ok := t.colIndex[name]; ok {
		return i
	}
	return -1
}

// HasColumn reports whether the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// AppendRow appends a row. The row length must match the column count.
func (t *Table) AppendRow(row []any) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("table %s: row has %d values, expected %d", t.Name, len(row), len(t.Columns))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// Value returns the cell at (row, column name).
func (t *Table) Value(row int, column string) (any, error) {
	i := t.ColumnIndex(column)
	if i < 0 {
		return nil, fmt.Errorf("table %s: unknown column %q", t.Name, column)
	}
	if row < 0 || row >= len(t.Rows) {
		return nil, fmt.Errorf("table %s: row %d out of range", t.Name, row)
	}
	return t.Rows[row][i], nil
}

// SetValue sets the cell at (row, column name).
func (t *Table) SetValue(row int, column string, v any) error {
	i := t.ColumnIndex(column)
	if i < 0 {
		return fmt.Errorf("table %s: unknown column %q", t.Name, column)
	}
	if row < 0 || row >= len(t.Rows) {
		return fmt.Errorf("table %s: row %d out of range", t.Name, row)
	}
	t.Rows[row][i] = v
	return nil
}

// Column returns all values of a column in row order.
func (t *Table) Column(name string) ([]any, error) {
	i := t.ColumnIndex(name)
	if i < 0 {
		return nil, fmt.Errorf("table %s: unknown column %q", t.Name, name)
	}
	out := make([]any, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out, nil
}

// StringColumn returns a column's values as strings, skipping nils.
func (t *Table) StringColumn(name string) ([]string, error) {
	vals, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// FloatColumn returns a column's numeric values as float64, skipping nils
// and non-numeric cells. int and float64 cells are included.
func (t *Table) FloatColumn(name string) ([]float64, error) {
	vals, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		f, ok := AsFloat(v)
		if !ok {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

// ValueSet returns the distinct non-nil values of a column, rendered as
// strings. Used for categorical domain checks.
func (t *Table) ValueSet(name string) (map[string]struct{}, error) {
	vals, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		if v == nil {
			continue
		}
		set[RenderValue(v)] = struct{}{}
	}
	return set, nil
}

// Clone returns a deep copy of the table. Cell values are copied by
// assignment, which is safe for the value types tables carry.
func (t *Table) Clone() *Table {
	out := New(t.Name, t.Columns)
	out.Rows = make([][]any, len(t.Rows))
	for r, row := range t.Rows {
		cp := make([]any, len(row))
		copy(cp, row)
		out.Rows[r] = cp
	}
	return out
}

// AsFloat converts a numeric cell value to float64.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// RenderValue renders a cell value the way the exporter writes it:
// dates as YYYY-MM-DD, nil as the empty string.
func RenderValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return x.Format("2006-01-02")
	case float64:
		return formatFloat(x)
	case int:
		return fmt.Sprintf("%d", x)
	case int64:
		return fmt.Sprintf("%d", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
