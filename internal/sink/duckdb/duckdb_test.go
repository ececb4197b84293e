package duckdb

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthline-labs/synthline/internal/schema"
	"github.com/synthline-labs/synthline/internal/sink"
)

func TestSinkIsRegistered(t *testing.T) {
	assert.True(t, sink.IsRegistered("duckdb"))
}

func TestLoad_NotConnected(t *testing.T) {
	s := New(nil)
	def, ok := schema.Default().Table(schema.TableClients)
	require.True(t, ok)

	_, err := s.Load(context.Background(), def, "/tmp/bundle")
	assert.Error(t, err)
}

func TestLoad_IssuesReadCSVAuto(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := New(nil)
	s.DB = db

	def, ok := schema.Default().Table(schema.TableClients)
	require.True(t, ok)

	mock.ExpectExec(`CREATE OR REPLACE TABLE clients AS SELECT \* FROM read_csv_auto\('.*clients\.csv', header=true\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM clients`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(120))

	rows, err := s.Load(context.Background(), def, "/tmp/bundle")
	require.NoError(t, err)
	assert.Equal(t, int64(120), rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_ExecFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := New(nil)
	s.DB = db

	def, ok := schema.Default().Table(schema.TableClients)
	require.True(t, ok)

	mock.ExpectExec("CREATE OR REPLACE TABLE clients").
		WillReturnError(assert.AnError)

	_, err = s.Load(context.Background(), def, "/tmp/bundle")
	assert.Error(t, err)
}
