package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/nyc-osyd/atlas-cli/internal/db"
	"github.com/nyc-osyd/atlas-cli/internal/model"
)

// PostgresStore implements SnapshotStore on a pgx pool. Used for shared
// server deployments where several serve instances read one snapshot.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres connects to Postgres and returns a snapshot store.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := db.Connect(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool; tests pass a pgxmock pool.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS snapshots (
	id        TEXT PRIMARY KEY,
	entities  JSONB NOT NULL,
	loaded_at TIMESTAMPTZ NOT NULL,
	saved_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "postgres: migrate")
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// SaveSnapshot stores the entities as the new current snapshot and drops
// prior snapshots.
func (s *PostgresStore) SaveSnapshot(ctx context.Context, entities []model.Entity, loadedAt time.Time) error {
	payload, err := json.Marshal(entities)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal entities")
	}

	id := uuid.New().String()
	if _, err := s.pool.Exec(ctx,
		`INSERT INTO snapshots (id, entities, loaded_at) VALUES ($1, $2, $3)`,
		id, payload, loadedAt.UTC(),
	); err != nil {
		return eris.Wrap(err, "postgres: insert snapshot")
	}

	if _, err := s.pool.Exec(ctx, `DELETE FROM snapshots WHERE id != $1`, id); err != nil {
		return eris.Wrap(err, "postgres: prune snapshots")
	}
	return nil
}

// LoadSnapshot returns the most recent snapshot, or ErrNoSnapshot.
func (s *PostgresStore) LoadSnapshot(ctx context.Context) ([]model.Entity, time.Time, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT entities, loaded_at FROM snapshots ORDER BY loaded_at DESC LIMIT 1`)

	var payload []byte
	var loadedAt time.Time
	if err := row.Scan(&payload, &loadedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, time.Time{}, ErrNoSnapshot
		}
		return nil, time.Time{}, eris.Wrap(err, "postgres: scan snapshot")
	}

	var entities []model.Entity
	if err := json.Unmarshal(payload, &entities); err != nil {
		return nil, time.Time{}, eris.Wrap(err, "postgres: unmarshal entities")
	}
	return validSnapshot(entities, "postgres"), loadedAt, nil
}
