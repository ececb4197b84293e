// Package schema provides the declarative registry of dataset tables:
// columns, kinds, categorical domains, numeric ranges, distribution hints,
// primary keys, and foreign keys. The registry is pure data consumed
// read-only by the synthesizers, expander, post-processor, and sinks.
package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind classifies a column for generation and post-processing.
type Kind string

const (
	KindID          Kind = "id"
	KindCategorical Kind = "categorical"
	KindNumeric     Kind = "numeric"
	KindInteger     Kind = "integer"
	KindDate        Kind = "date"
	KindText        Kind = "text"
	KindEmail       Kind = "email"
	KindPhone       Kind = "phone"
)

// Column describes a single table column.
type Column struct {
	Name string
	Kind Kind

	// Domain is the closed value set for categorical columns.
	Domain []string

	// Min and Max bound numeric and integer columns.
	Min float64
	Max float64

	// Distribution is a sampling hint for numeric columns
	// ("uniform", "normal", "lognormal").
	Distribution string

	// Required columns must never be null in the final dataset.
	Required bool
}

// ForeignKey declares that a column references another table's primary key.
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string

	// Nullable foreign keys may legitimately be empty (e.g. an invoice
	// not tied to a project).
	Nullable bool
}

// Table describes one dataset table.
type Table struct {
	Name        string
	Prefix      string // identifier prefix, e.g. "CLT"
	PrimaryKey  string
	Columns     []Column
	ForeignKeys []ForeignKey
}

// Column returns the column definition by name.
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// RequiredColumns returns the names of columns that must be non-null.
func (t *Table) RequiredColumns() []string {
	var out []string
	for _, c := range t.Columns {
		if c.Required {
			out = append(out, c.Name)
		}
	}
	return out
}

// ForeignKey returns the FK declaration for a column, if any.
func (t *Table) ForeignKey(column string) (*ForeignKey, bool) {
	for i := range t.ForeignKeys {
		if t.ForeignKeys[i].Column == column {
			return &t.ForeignKeys[i], true
		}
	}
	return nil, false
}

// Registry holds all table definitions in dependency-friendly
// declaration order (parents before children).
type Registry struct {
	tables map[string]*Table
	order  []string
}

// NewRegistry builds a registry from table definitions.
func NewRegistry(tables ...*Table) *Registry {
	r := &Registry{tables: make(map[string]*Table, len(tables))}
	for _, t := range tables {
		r.tables[t.Name] = t
		r.order = append(r.order, t.Name)
	}
	return r
}

// Table returns a table definition by name.
func (r *Registry) Table(name string) (*Table, bool) {
	t, ok := r.tables[name]
	return t, ok
}

// Names returns the table names in declaration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Count returns the number of registered tables.
func (r *Registry) Count() int {
	return len(r.tables)
}

// idWidth is the fixed zero-padded width of identifier sequence numbers.
const idWidth = 6

// FormatID renders an identifier as PREFIX_%06d.
func FormatID(prefix string, n int) string {
	return fmt.Sprintf("%s_%0*d", prefix, idWidth, n)
}

// ParseID splits an identifier into prefix and sequence number.
// The sequence may exceed the padded width once expansion has
// rewritten identifiers past the original range.
func ParseID(id string) (prefix string, n int, err error) {
	i := strings.LastIndex(id, "_")
	if i <= 0 || i == len(id)-1 {
		return "", 0, fmt.Errorf("malformed identifier %q", id)
	}
	n, err = strconv.Atoi(id[i+1:])
	if err != nil {
		return "", 0, fmt.Errorf("malformed identifier %q: %w", id, err)
	}
	return id[:i], n, nil
}
