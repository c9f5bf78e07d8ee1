package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/nyc-osyd/atlas-cli/internal/model"
)

// SQLiteStore implements SnapshotStore using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS snapshots (
	id        TEXT PRIMARY KEY,
	entities  TEXT NOT NULL,
	loaded_at DATETIME NOT NULL,
	saved_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_snapshots_loaded_at ON snapshots(loaded_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveSnapshot stores the entities as the new current snapshot and drops
// prior snapshots. The insert lands before the delete so a crash between
// the two statements leaves a loadable snapshot either way.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, entities []model.Entity, loadedAt time.Time) error {
	payload, err := json.Marshal(entities)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal entities")
	}

	id := uuid.New().String()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, entities, loaded_at) VALUES (?, ?, ?)`,
		id, string(payload), loadedAt.UTC(),
	); err != nil {
		return eris.Wrap(err, "sqlite: insert snapshot")
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id != ?`, id); err != nil {
		return eris.Wrap(err, "sqlite: prune snapshots")
	}
	return nil
}

// LoadSnapshot returns the most recent snapshot, or ErrNoSnapshot.
func (s *SQLiteStore) LoadSnapshot(ctx context.Context) ([]model.Entity, time.Time, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT entities, loaded_at FROM snapshots ORDER BY loaded_at DESC LIMIT 1`)

	var payload string
	var loadedAt time.Time
	if err := row.Scan(&payload, &loadedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, time.Time{}, ErrNoSnapshot
		}
		return nil, time.Time{}, eris.Wrap(err, "sqlite: scan snapshot")
	}

	var entities []model.Entity
	if err := json.Unmarshal([]byte(payload), &entities); err != nil {
		return nil, time.Time{}, eris.Wrap(err, "sqlite: unmarshal entities")
	}
	return validSnapshot(entities, "sqlite"), loadedAt, nil
}
