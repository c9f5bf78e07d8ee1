// Package cluster turns the entity snapshot and the active filters into a
// subset, its summary statistics against the citywide baseline, and the
// ranked priority list.
package cluster

import (
	"github.com/nyc-osyd/atlas-cli/internal/model"
	"github.com/nyc-osyd/atlas-cli/internal/store"
)

// Filter returns the entities matching every active predicate, preserving
// the store's stable order. Single O(n) pass; the entity count is bounded
// (low thousands) so no indexing is kept.
func Filter(s *store.EntityStore, f model.FilterState) []model.Entity {
	entities := s.Entities()
	if f.IsEmpty() {
		return entities
	}

	subset := make([]model.Entity, 0, len(entities))
	for i := range entities {
		if f.Matches(&entities[i]) {
			subset = append(subset, entities[i])
		}
	}
	return subset
}
