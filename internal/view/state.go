// Package view owns the side-panel mode machine and the read-path view
// model. Mode cannot be re-derived from filters and selection alone (the
// origin a School view returns to depends on transition order), so it is
// tracked as explicit state.
package view

import (
	"go.uber.org/zap"

	"github.com/nyc-osyd/atlas-cli/internal/model"
	"github.com/nyc-osyd/atlas-cli/internal/store"
)

// Mode is the side-panel view mode.
type Mode string

const (
	ModeOverview Mode = "overview"
	ModeCluster  Mode = "cluster"
	ModeSchool   Mode = "school"
)

// Origin records the state a School view was entered from, so "back" is
// well-defined. Only meaningful while Mode == ModeSchool.
type Origin struct {
	Mode    Mode              `json:"mode"`
	Filters model.FilterState `json:"filters"`
}

// ViewState is the full navigation state. It is a plain value; Apply
// returns a new state and never mutates its input.
type ViewState struct {
	Mode       Mode              `json:"mode"`
	Filters    model.FilterState `json:"filters"`
	SelectedID string            `json:"selected_id,omitempty"`
	Origin     Origin            `json:"origin,omitzero"`
}

// NewViewState returns the initial Overview state.
func NewViewState() ViewState {
	return ViewState{Mode: ModeOverview}
}

// Event is a user interaction or external change the state machine
// consumes.
type Event interface {
	eventName() string
}

// FilterChanged replaces the active filters wholesale. An empty FilterState
// means all filters were cleared.
type FilterChanged struct {
	Filters model.FilterState `json:"filters"`
}

// MarkerClicked selects the entity with the given id.
type MarkerClicked struct {
	ID string `json:"id"`
}

// EmptyAreaClicked is a click on the map away from any marker.
type EmptyAreaClicked struct{}

// BackPressed is the sidebar back navigation.
type BackPressed struct{}

// StoreReloaded signals that the active snapshot was replaced; the state
// must be re-validated against the new store.
type StoreReloaded struct{}

func (FilterChanged) eventName() string    { return "filter_changed" }
func (MarkerClicked) eventName() string    { return "marker_clicked" }
func (EmptyAreaClicked) eventName() string { return "empty_area_clicked" }
func (BackPressed) eventName() string      { return "back_pressed" }
func (StoreReloaded) eventName() string    { return "store_reloaded" }

// Apply is the pure transition function: it returns the state after the
// event against the given snapshot. Identical inputs always yield identical
// output. Events that are invalid for the current state are no-ops, logged
// at debug level, never errors.
func Apply(ev Event, vs ViewState, s *store.EntityStore) ViewState {
	switch e := ev.(type) {
	case FilterChanged:
		return applyFilterChanged(e, vs)
	case MarkerClicked:
		return applyMarkerClicked(e, vs, s)
	case EmptyAreaClicked, BackPressed:
		return applyReturnToOrigin(ev, vs)
	case StoreReloaded:
		return applyStoreReloaded(vs, s)
	default:
		noop(ev, vs, "unknown event")
		return vs
	}
}

func applyFilterChanged(e FilterChanged, vs ViewState) ViewState {
	// The transition table defines filter changes for Overview and Cluster
	// only; in School mode the event is a no-op.
	if vs.Mode == ModeSchool {
		noop(e, vs, "filter change while a school is selected")
		return vs
	}
	if e.Filters.IsEmpty() {
		return ViewState{Mode: ModeOverview}
	}
	return ViewState{Mode: ModeCluster, Filters: e.Filters}
}

func applyMarkerClicked(e MarkerClicked, vs ViewState, s *store.EntityStore) ViewState {
	if !s.Contains(e.ID) {
		noop(e, vs, "clicked id not in snapshot")
		return vs
	}

	switch vs.Mode {
	case ModeOverview, ModeCluster:
		return ViewState{
			Mode:       ModeSchool,
			Filters:    vs.Filters, // preserved for Cluster, empty for Overview
			SelectedID: e.ID,
			Origin:     Origin{Mode: vs.Mode, Filters: vs.Filters},
		}
	case ModeSchool:
		// Different id replaces the selection; the origin is preserved.
		next := vs
		next.SelectedID = e.ID
		return next
	}
	noop(e, vs, "marker click in unknown mode")
	return vs
}

func applyReturnToOrigin(ev Event, vs ViewState) ViewState {
	if vs.Mode != ModeSchool {
		noop(ev, vs, "no selection to leave")
		return vs
	}
	return ViewState{Mode: vs.Origin.Mode, Filters: vs.Origin.Filters}
}

func applyStoreReloaded(vs ViewState, s *store.EntityStore) ViewState {
	if vs.Mode != ModeSchool {
		return vs
	}
	if s.Contains(vs.SelectedID) {
		return vs
	}
	// Dangling selection: fall back to the origin state silently.
	zap.L().Debug("view: selection missing after reload, falling back",
		zap.String("selected_id", vs.SelectedID),
		zap.String("origin_mode", string(vs.Origin.Mode)),
	)
	return ViewState{Mode: vs.Origin.Mode, Filters: vs.Origin.Filters}
}

func noop(ev Event, vs ViewState, reason string) {
	zap.L().Debug("view: ignoring event",
		zap.String("event", ev.eventName()),
		zap.String("mode", string(vs.Mode)),
		zap.String("reason", reason),
	)
}
