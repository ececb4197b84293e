package expand

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthline-labs/synthline/internal/schema"
	"github.com/synthline-labs/synthline/internal/table"
)

// failingSynthesizer fails at the configured stage, standing in for a
// generative model that cannot handle the input.
type failingSynthesizer struct {
	failFit    bool
	failSample bool
	inner      Synthesizer
}

func (f *failingSynthesizer) Fit(ctx context.Context, tbl *table.Table, def *schema.Table) error {
	if f.failFit {
		return errors.New("model refused to converge")
	}
	return f.inner.Fit(ctx, tbl, def)
}

func (f *failingSynthesizer) Sample(ctx context.Context, n int) (*table.Table, error) {
	if f.failSample {
		return nil, errors.New("model sampling blew up")
	}
	return f.inner.Sample(ctx, n)
}

func TestExpander_MultiplierOnePassesThrough(t *testing.T) {
	src := widgetTable(t, 10)
	e := New(NewMarginal(rand.New(rand.NewSource(1)), nil), NewReplicator(rand.New(rand.NewSource(2)), nil), nil)

	out, method, err := e.Expand(context.Background(), src, widgetDef(), 1)
	require.NoError(t, err)
	assert.Equal(t, MethodNone, method)
	assert.Same(t, src, out)
}

func TestExpander_PrimarySucceeds(t *testing.T) {
	src := widgetTable(t, 20)
	e := New(NewMarginal(rand.New(rand.NewSource(3)), nil), NewReplicator(rand.New(rand.NewSource(4)), nil), nil)

	out, method, err := e.Expand(context.Background(), src, widgetDef(), 4)
	require.NoError(t, err)
	assert.Equal(t, MethodModel, method)
	assert.Equal(t, 80, out.NumRows())
}

func TestExpander_FallsBackWhenFitFails(t *testing.T) {
	src := widgetTable(t, 15)
	primary := &failingSynthesizer{failFit: true}
	e := New(primary, NewReplicator(rand.New(rand.NewSource(5)), nil), nil)

	out, method, err := e.Expand(context.Background(), src, widgetDef(), 3)
	require.NoError(t, err)
	assert.Equal(t, MethodReplication, method)
	assert.Equal(t, 45, out.NumRows())
}

func TestExpander_FallsBackWhenSampleFails(t *testing.T) {
	src := widgetTable(t, 15)
	primary := &failingSynthesizer{
		failSample: true,
		inner:      NewMarginal(rand.New(rand.NewSource(6)), nil),
	}
	e := New(primary, NewReplicator(rand.New(rand.NewSource(7)), nil), nil)

	out, method, err := e.Expand(context.Background(), src, widgetDef(), 3)
	require.NoError(t, err)
	assert.Equal(t, MethodReplication, method)
	assert.Equal(t, 45, out.NumRows())
}

func TestExpander_FallbackFailureIsFatal(t *testing.T) {
	src := widgetTable(t, 15)
	primary := &failingSynthesizer{failFit: true}
	fallback := &failingSynthesizer{failFit: true}
	e := New(primary, fallback, nil)

	_, _, err := e.Expand(context.Background(), src, widgetDef(), 3)
	assert.Error(t, err)
}

func TestExpander_CancelledContextAborts(t *testing.T) {
	src := widgetTable(t, 15)
	e := New(NewMarginal(rand.New(rand.NewSource(8)), nil), NewReplicator(rand.New(rand.NewSource(9)), nil), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := e.Expand(ctx, src, widgetDef(), 3)
	assert.ErrorIs(t, err, context.Canceled)
}
