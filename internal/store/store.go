// Package store holds the immutable entity snapshot, its precomputed
// citywide baseline, and the snapshot persistence backends.
package store

import (
	"sync/atomic"
	"time"

	"github.com/nyc-osyd/atlas-cli/internal/model"
)

// StatusBaseline is the citywide count and percent for one training status.
type StatusBaseline struct {
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Baseline is the citywide statistical reference computed once per load.
// Filtered-subset stats are compared against it for display.
type Baseline struct {
	Total      int                                     `json:"total"`
	Statuses   map[model.TrainingStatus]StatusBaseline `json:"statuses"`
	MeanSTH    float64                                 `json:"mean_sth"`
	STHSamples int                                     `json:"sth_samples"`
	MeanENI    float64                                 `json:"mean_eni"`
	ENISamples int                                     `json:"eni_samples"`
}

// EntityStore is an immutable snapshot of all entities plus the memoized
// baseline. A data refresh builds a new store; nothing mutates an existing
// one, so any computation holding a store pointer sees consistent data even
// if a reload swaps the active snapshot mid-flight.
type EntityStore struct {
	entities []model.Entity
	byID     map[string]int
	baseline Baseline
	loadedAt time.Time
}

// New builds a store from entities in their stable load order and computes
// the citywide baseline.
func New(entities []model.Entity, loadedAt time.Time) *EntityStore {
	s := &EntityStore{
		entities: entities,
		byID:     make(map[string]int, len(entities)),
		loadedAt: loadedAt,
	}
	for i := range entities {
		s.byID[entities[i].ID] = i
	}
	s.baseline = computeBaseline(entities)
	return s
}

// Entities returns all entities in stable load order. Callers must not
// mutate the returned slice.
func (s *EntityStore) Entities() []model.Entity { return s.entities }

// Len returns the number of entities in the snapshot.
func (s *EntityStore) Len() int { return len(s.entities) }

// Get looks up an entity by id.
func (s *EntityStore) Get(id string) (*model.Entity, bool) {
	i, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return &s.entities[i], true
}

// Contains reports whether the id exists in this snapshot.
func (s *EntityStore) Contains(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Baseline returns the citywide baseline for this snapshot.
func (s *EntityStore) Baseline() Baseline { return s.baseline }

// LoadedAt returns when the snapshot was loaded.
func (s *EntityStore) LoadedAt() time.Time { return s.loadedAt }

func computeBaseline(entities []model.Entity) Baseline {
	b := Baseline{
		Total:    len(entities),
		Statuses: make(map[model.TrainingStatus]StatusBaseline, len(model.Statuses)),
	}

	counts := make(map[model.TrainingStatus]int, len(model.Statuses))
	var sthSum, eniSum float64
	for i := range entities {
		e := &entities[i]
		counts[e.TrainingStatus]++
		if e.STH != nil {
			sthSum += *e.STH
			b.STHSamples++
		}
		if e.ENI != nil {
			eniSum += *e.ENI
			b.ENISamples++
		}
	}

	for _, st := range model.Statuses {
		sb := StatusBaseline{Count: counts[st]}
		if b.Total > 0 {
			sb.Percent = float64(sb.Count) / float64(b.Total) * 100
		}
		b.Statuses[st] = sb
	}
	if b.STHSamples > 0 {
		b.MeanSTH = sthSum / float64(b.STHSamples)
	}
	if b.ENISamples > 0 {
		b.MeanENI = eniSum / float64(b.ENISamples)
	}
	return b
}

// Holder publishes the active snapshot. Replacement is an atomic pointer
// swap, so readers never observe a partially-updated store and no locks
// are needed on the read path.
type Holder struct {
	p atomic.Pointer[EntityStore]
}

// NewHolder creates a holder seeded with the given snapshot.
func NewHolder(s *EntityStore) *Holder {
	h := &Holder{}
	h.p.Store(s)
	return h
}

// Current returns the active snapshot.
func (h *Holder) Current() *EntityStore { return h.p.Load() }

// Swap atomically replaces the active snapshot and returns the previous one.
func (h *Holder) Swap(s *EntityStore) *EntityStore { return h.p.Swap(s) }
