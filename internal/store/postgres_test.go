package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyc-osyd/atlas-cli/internal/model"
)

func TestPostgresSaveSnapshot(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO snapshots`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`DELETE FROM snapshots`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	s := NewPostgresWithPool(mock)
	err = s.SaveSnapshot(context.Background(), testEntities(), time.Now())
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLoadSnapshot(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	payload, err := json.Marshal(testEntities())
	require.NoError(t, err)
	loadedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT entities, loaded_at FROM snapshots`).
		WillReturnRows(pgxmock.NewRows([]string{"entities", "loaded_at"}).AddRow(payload, loadedAt))

	s := NewPostgresWithPool(mock)
	entities, got, err := s.LoadSnapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, entities, 3)
	assert.Equal(t, model.StatusNone, entities[0].TrainingStatus)
	assert.True(t, got.Equal(loadedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLoadDropsUnknownStatusRows(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	corrupted := append(testEntities(), model.Entity{ID: "Z", TrainingStatus: "certified"})
	payload, err := json.Marshal(corrupted)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT entities, loaded_at FROM snapshots`).
		WillReturnRows(pgxmock.NewRows([]string{"entities", "loaded_at"}).AddRow(payload, time.Now()))

	s := NewPostgresWithPool(mock)
	entities, _, err := s.LoadSnapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, entities, 3, "row with unknown status is dropped")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLoadSnapshotEmpty(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT entities, loaded_at FROM snapshots`).
		WillReturnRows(pgxmock.NewRows([]string{"entities", "loaded_at"}))

	s := NewPostgresWithPool(mock)
	_, _, err = s.LoadSnapshot(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshot)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMigrate(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS snapshots`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	s := NewPostgresWithPool(mock)
	assert.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
