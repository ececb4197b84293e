package sink

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"log/slog"

	"github.com/synthline-labs/synthline/internal/schema"
)

type fakeSink struct {
	BaseSQLSink
}

func (f *fakeSink) Connect(ctx context.Context, cfg Config) error { return nil }
func (f *fakeSink) Load(ctx context.Context, def *schema.Table, dir string) (int64, error) {
	return 0, nil
}

func TestRegistry(t *testing.T) {
	Register("fake", func(logger *slog.Logger) Sink { return &fakeSink{} })

	assert.True(t, IsRegistered("fake"))
	assert.False(t, IsRegistered("no-such-sink"))
	assert.Contains(t, List(), "fake")

	factory, ok := Get("fake")
	require.True(t, ok)
	assert.NotNil(t, factory(nil))
}

func TestNew(t *testing.T) {
	Register("fake", func(logger *slog.Logger) Sink { return &fakeSink{} })

	s, err := New(Config{Type: "fake"}, nil)
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestNew_UnknownType(t *testing.T) {
	_, err := New(Config{Type: "no-such-sink"}, nil)
	require.Error(t, err)

	var unknownErr *UnknownSinkError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "no-such-sink", unknownErr.Type)
	assert.Contains(t, unknownErr.Error(), "no-such-sink")
}

func TestNew_EmptyType(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.Error(t, err)
}

func TestBaseSQLSink_NotConnected(t *testing.T) {
	var b BaseSQLSink
	assert.False(t, b.IsConnected())
	assert.NoError(t, b.Close())
	assert.Error(t, b.Exec(context.Background(), "SELECT 1"))
}

func TestBaseSQLSink_Exec(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	b := BaseSQLSink{DB: db}
	assert.True(t, b.IsConnected())

	mock.ExpectExec("CREATE TABLE t").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, b.Exec(context.Background(), "CREATE TABLE t (id TEXT)"))

	mock.ExpectClose()
	require.NoError(t, b.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
