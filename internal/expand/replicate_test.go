package expand

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthline-labs/synthline/internal/schema"
	"github.com/synthline-labs/synthline/internal/table"
)

func TestReplicator_FitEmptyTableFails(t *testing.T) {
	r := NewReplicator(rand.New(rand.NewSource(1)), nil)
	def := widgetDef()
	err := r.Fit(context.Background(), table.New(def.Name, def.ColumnNames()), def)
	assert.Error(t, err)
}

func TestReplicator_SampleUnfittedFails(t *testing.T) {
	r := NewReplicator(rand.New(rand.NewSource(1)), nil)
	_, err := r.Sample(context.Background(), 5)
	assert.Error(t, err)
}

func TestReplicator_IdentifiersDistinctAcrossReplicas(t *testing.T) {
	def := widgetDef()
	src := widgetTable(t, 25)

	r := NewReplicator(rand.New(rand.NewSource(2)), nil)
	require.NoError(t, r.Fit(context.Background(), src, def))

	const multiplier = 4
	out, err := r.Sample(context.Background(), 25*multiplier)
	require.NoError(t, err)
	require.Equal(t, 25*multiplier, out.NumRows())

	ids, err := out.StringColumn("widget_id")
	require.NoError(t, err)

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		_, dup := seen[id]
		require.False(t, dup, "duplicate identifier %s", id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 25*multiplier)

	// First replica keeps the original identifiers verbatim.
	for i := 0; i < 25; i++ {
		assert.Equal(t, schema.FormatID("WGT", i), ids[i])
	}
	// Later replicas shift the suffix by replica_index * original_rows.
	assert.Equal(t, schema.FormatID("WGT", 25), ids[25])
	assert.Equal(t, schema.FormatID("WGT", 25*3+7), ids[25*3+7])
}

func TestReplicator_NoiseClippedAtOriginalMin(t *testing.T) {
	def := widgetDef()
	src := widgetTable(t, 40)

	origStats, err := src.Stats("price")
	require.NoError(t, err)

	r := NewReplicator(rand.New(rand.NewSource(3)), nil)
	require.NoError(t, r.Fit(context.Background(), src, def))

	out, err := r.Sample(context.Background(), 40*5)
	require.NoError(t, err)

	prices, err := out.FloatColumn("price")
	require.NoError(t, err)
	for _, p := range prices {
		assert.GreaterOrEqual(t, p, origStats.Min)
	}
}

func TestReplicator_PreservesColumnStatistics(t *testing.T) {
	def := widgetDef()
	src := widgetTable(t, 50)

	origStats, err := src.Stats("price")
	require.NoError(t, err)

	r := NewReplicator(rand.New(rand.NewSource(4)), nil)
	require.NoError(t, r.Fit(context.Background(), src, def))

	out, err := r.Sample(context.Background(), 50*6)
	require.NoError(t, err)

	outStats, err := out.Stats("price")
	require.NoError(t, err)

	// 10% noise plus min clipping nudges the stats only slightly.
	assert.InDelta(t, origStats.Mean, outStats.Mean, origStats.StdDev*0.2)
	assert.InDelta(t, origStats.StdDev, outStats.StdDev, origStats.StdDev*0.2)
}

func TestReplicator_LeavesNonNumericColumnsUntouched(t *testing.T) {
	def := widgetDef()
	src := widgetTable(t, 10)

	r := NewReplicator(rand.New(rand.NewSource(5)), nil)
	require.NoError(t, r.Fit(context.Background(), src, def))

	out, err := r.Sample(context.Background(), 30)
	require.NoError(t, err)

	for i := 0; i < 30; i++ {
		srcRow := i % 10
		for _, name := range []string{"owner_id", "category", "made", "note"} {
			want, err := src.Value(srcRow, name)
			require.NoError(t, err)
			got, err := out.Value(i, name)
			require.NoError(t, err)
			assert.Equal(t, want, got, "row %d column %s", i, name)
		}
	}
}

func TestReplicator_IntegerColumnsStayIntegers(t *testing.T) {
	def := widgetDef()
	src := widgetTable(t, 20)

	r := NewReplicator(rand.New(rand.NewSource(6)), nil)
	require.NoError(t, r.Fit(context.Background(), src, def))

	out, err := r.Sample(context.Background(), 60)
	require.NoError(t, err)

	qtys, err := out.Column("qty")
	require.NoError(t, err)
	for i, v := range qtys {
		if v == nil {
			continue
		}
		_, isInt := v.(int)
		assert.True(t, isInt, "row %d", i)
	}
}
