package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_TableSet(t *testing.T) {
	reg := Default()

	assert.Equal(t, 7, reg.Count())
	assert.Equal(t, []string{
		TableClients, TableTeamMembers, TableProjects, TableAssignments,
		TableTickets, TableInvoices, TableContracts,
	}, reg.Names(), "tables must be declared parents-first")
}

func TestDefault_ForeignKeysResolve(t *testing.T) {
	reg := Default()

	for _, name := range reg.Names() {
		tbl, ok := reg.Table(name)
		require.True(t, ok)

		for _, fk := range tbl.ForeignKeys {
			_, hasCol := tbl.Column(fk.Column)
			assert.True(t, hasCol, "%s: FK column %q must exist", name, fk.Column)

			parent, hasParent := reg.Table(fk.RefTable)
			require.True(t, hasParent, "%s: FK references unknown table %q", name, fk.RefTable)
			assert.Equal(t, parent.PrimaryKey, fk.RefColumn,
				"%s.%s must reference the parent primary key", name, fk.Column)
		}
	}
}

func TestDefault_PrimaryKeys(t *testing.T) {
	reg := Default()

	for _, name := range reg.Names() {
		tbl, _ := reg.Table(name)
		col, ok := tbl.Column(tbl.PrimaryKey)
		require.True(t, ok, "%s: primary key column missing", name)
		assert.Equal(t, KindID, col.Kind)
		assert.True(t, col.Required)
		assert.NotEmpty(t, tbl.Prefix)
	}
}

func TestDefault_CategoricalDomains(t *testing.T) {
	reg := Default()

	for _, name := range reg.Names() {
		tbl, _ := reg.Table(name)
		for _, col := range tbl.Columns {
			if col.Kind == KindCategorical {
				assert.NotEmpty(t, col.Domain, "%s.%s: categorical column needs a domain", name, col.Name)
			}
		}
	}
}

func TestRevenueBrackets_CoverAllSizes(t *testing.T) {
	for _, size := range CompanySizes {
		b, ok := RevenueBrackets[size]
		require.True(t, ok, "missing bracket for size %q", size)
		assert.Less(t, b.Min, b.Max)
	}
}

func TestHourlyRates_CoverAllSeniorities(t *testing.T) {
	for _, s := range Seniorities {
		r, ok := HourlyRates[s]
		require.True(t, ok, "missing rate range for %q", s)
		assert.Less(t, r.Min, r.Max)
	}
}

func TestFormatID(t *testing.T) {
	assert.Equal(t, "CLT_000042", FormatID("CLT", 42))
	assert.Equal(t, "PRJ_000000", FormatID("PRJ", 0))
	// Sequence numbers past the padded width stay unambiguous.
	assert.Equal(t, "TKT_1000000", FormatID("TKT", 1_000_000))
}

func TestParseID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		prefix  string
		n       int
		wantErr bool
	}{
		{"simple", "CLT_000042", "CLT", 42, false},
		{"wide", "TKT_1000000", "TKT", 1_000_000, false},
		{"roundtrip zero", "ASG_000000", "ASG", 0, false},
		{"no separator", "CLT000042", "", 0, true},
		{"no digits", "CLT_", "", 0, true},
		{"non-numeric suffix", "CLT_xyz", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefix, n, err := ParseID(tt.id)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.prefix, prefix)
			assert.Equal(t, tt.n, n)
		})
	}
}

func TestPaymentStatusWeights_MatchDomain(t *testing.T) {
	var sum float64
	for _, s := range PaymentStatuses {
		w, ok := PaymentStatusWeights[s]
		require.True(t, ok, "missing weight for %q", s)
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}
