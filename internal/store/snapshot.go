package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/nyc-osyd/atlas-cli/internal/model"
)

// ErrNoSnapshot is returned when no persisted snapshot exists yet.
var ErrNoSnapshot = eris.New("store: no snapshot available")

// SnapshotStore persists the last validated entity snapshot so commands can
// start without re-fetching the upstream workbook. A new load replaces the
// snapshot wholesale; backends never mutate a stored snapshot in place.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, entities []model.Entity, loadedAt time.Time) error
	LoadSnapshot(ctx context.Context) ([]model.Entity, time.Time, error)
	Migrate(ctx context.Context) error
	Close() error
}

// validSnapshot drops cached rows whose training status is not one of the
// known values. The loader only ever persists valid statuses, so a bad row
// means the cache was edited or corrupted; letting it through would break
// the per-status count sums downstream.
func validSnapshot(entities []model.Entity, backend string) []model.Entity {
	dropped := 0
	valid := entities[:0]
	for _, e := range entities {
		if !e.TrainingStatus.Valid() {
			dropped++
			continue
		}
		valid = append(valid, e)
	}
	if dropped > 0 {
		zap.L().Warn("snapshot rows dropped: unknown training status",
			zap.String("backend", backend),
			zap.Int("dropped", dropped),
		)
	}
	return valid
}
