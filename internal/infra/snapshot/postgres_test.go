package snapshot_test

import (
	"context"
	"errors"
	"testing"

	"github.com/boddenberg/lessence-studio-bfa/internal/infra/snapshot"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgres_EnsureSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS salon_snapshots").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	require.NoError(t, snapshot.NewPostgres(mock).EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetMissingKey(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT value FROM salon_snapshots").
		WithArgs("lessence_users").
		WillReturnError(pgx.ErrNoRows)

	v, err := snapshot.NewPostgres(mock).Get(context.Background(), "lessence_users")
	require.NoError(t, err)
	assert.Nil(t, v)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetReturnsValue(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT value FROM salon_snapshots").
		WithArgs("lessence_services").
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow([]byte(`[]`)))

	v, err := snapshot.NewPostgres(mock).Get(context.Background(), "lessence_services")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(v))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SetUpserts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO salon_snapshots").
		WithArgs("k", []byte(`[1]`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, snapshot.NewPostgres(mock).Set(context.Background(), "k", []byte(`[1]`)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_UpdateCommits(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO salon_snapshots").
		WithArgs("k").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectQuery("SELECT value FROM salon_snapshots WHERE key = \\$1 FOR UPDATE").
		WithArgs("k").
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow([]byte(`[1]`)))
	mock.ExpectExec("UPDATE salon_snapshots SET value").
		WithArgs("k", []byte(`[1,2]`)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err = snapshot.NewPostgres(mock).Update(context.Background(), "k", func(cur []byte) ([]byte, error) {
		assert.Equal(t, `[1]`, string(cur))
		return []byte(`[1,2]`), nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_UpdateRollsBackOnError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO salon_snapshots").
		WithArgs("k").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectQuery("SELECT value FROM salon_snapshots WHERE key = \\$1 FOR UPDATE").
		WithArgs("k").
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow([]byte(`[1]`)))
	mock.ExpectRollback()

	boom := errors.New("slot taken")
	err = snapshot.NewPostgres(mock).Update(context.Background(), "k", func([]byte) ([]byte, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}
