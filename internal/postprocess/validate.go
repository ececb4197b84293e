package postprocess

import (
	"fmt"
	"log/slog"

	"github.com/synthline-labs/synthline/internal/schema"
	"github.com/synthline-labs/synthline/internal/table"
)

// Issue kinds reported by the validator.
const (
	IssueNullRequired = "null_required"
	IssueOrphanFK     = "orphan_fk"
)

// Issue is a single data-quality finding. Issues are reported, never
// raised; a run with issues still exports.
type Issue struct {
	Table  string
	Column string
	Kind   string
	Count  int
	Detail string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s.%s [%s] count=%d: %s", i.Table, i.Column, i.Kind, i.Count, i.Detail)
}

// Validator checks a final table set against its schema.
type Validator struct {
	reg    *schema.Registry
	logger *slog.Logger
}

// NewValidator creates a validator over the given schema.
func NewValidator(reg *schema.Registry, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Validator{reg: reg, logger: logger}
}

// Validate reports null required columns and orphaned foreign keys. It
// never mutates the tables. Tables absent from the set are skipped so the
// validator can run over partial results in tests.
func (v *Validator) Validate(tables map[string]*table.Table) []Issue {
	var issues []Issue

	for _, name := range v.reg.Names() {
		tbl, ok := tables[name]
		if !ok {
			continue
		}
		def, _ := v.reg.Table(name)

		issues = append(issues, v.checkRequired(tbl, def)...)
		issues = append(issues, v.checkForeignKeys(tbl, def, tables)...)
	}

	for _, iss := range issues {
		v.logger.Warn("validation issue",
			"table", iss.Table, "column", iss.Column, "kind", iss.Kind, "count", iss.Count)
	}
	return issues
}

func (v *Validator) checkRequired(tbl *table.Table, def *schema.Table) []Issue {
	var issues []Issue
	for _, name := range def.RequiredColumns() {
		if !tbl.HasColumn(name) {
			issues = append(issues, Issue{
				Table:  def.Name,
				Column: name,
				Kind:   IssueNullRequired,
				Count:  tbl.NumRows(),
				Detail: "required column missing from table",
			})
			continue
		}
		vals, err := tbl.Column(name)
		if err != nil {
			continue
		}
		var nulls int
		for _, val := range vals {
			if val == nil {
				nulls++
			}
		}
		if nulls > 0 {
			issues = append(issues, Issue{
				Table:  def.Name,
				Column: name,
				Kind:   IssueNullRequired,
				Count:  nulls,
				Detail: fmt.Sprintf("%d null values in required column", nulls),
			})
		}
	}
	return issues
}

// checkForeignKeys computes the set difference between each child
// foreign-key column and the parent primary-key set and reports the
// number of orphaned values.
func (v *Validator) checkForeignKeys(tbl *table.Table, def *schema.Table, tables map[string]*table.Table) []Issue {
	var issues []Issue
	for _, fk := range def.ForeignKeys {
		parent, ok := tables[fk.RefTable]
		if !ok {
			continue
		}
		parentIDs, err := parent.ValueSet(fk.RefColumn)
		if err != nil {
			continue
		}
		childVals, err := tbl.Column(fk.Column)
		if err != nil {
			continue
		}

		orphans := make(map[string]struct{})
		for _, val := range childVals {
			if val == nil {
				continue
			}
			s, okS := val.(string)
			if !okS {
				s = table.RenderValue(val)
			}
			if _, found := parentIDs[s]; !found {
				orphans[s] = struct{}{}
			}
		}
		if len(orphans) > 0 {
			issues = append(issues, Issue{
				Table:  def.Name,
				Column: fk.Column,
				Kind:   IssueOrphanFK,
				Count:  len(orphans),
				Detail: fmt.Sprintf("%d distinct values missing from %s.%s", len(orphans), fk.RefTable, fk.RefColumn),
			})
		}
	}
	return issues
}
