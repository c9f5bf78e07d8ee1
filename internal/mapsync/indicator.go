// Package mapsync keeps the single selection indicator on the map surface
// in step with the current selection. The per-entity marker collection is
// created once per snapshot and never touched here; every sync step is
// O(1) regardless of how many markers the surface holds.
package mapsync

import (
	"fmt"

	"github.com/nyc-osyd/atlas-cli/internal/model"
	"github.com/nyc-osyd/atlas-cli/internal/store"
)

// Surface is the rendering-side indicator resource. Implementations wrap
// whatever map widget is in use; tests use a recording fake.
type Surface interface {
	Attach()
	Detach()
	SetLocation(lat, lon float64)
	SetLabel(text string)
}

// IndicatorState mirrors the surface-side indicator so Sync can compute a
// minimal mutation without querying the surface.
type IndicatorState struct {
	Attached bool
	Location model.Location
	Label    string
}

// Mutation is the set of surface operations one sync step requires. The
// zero value means the indicator is already in the right state.
type Mutation struct {
	Detach      bool
	Attach      bool
	SetLocation *model.Location
	SetLabel    *string
}

// IsZero reports whether the mutation requires no surface work.
func (m Mutation) IsZero() bool {
	return !m.Detach && !m.Attach && m.SetLocation == nil && m.SetLabel == nil
}

// Label renders the indicator text for an entity.
func Label(e *model.Entity) string {
	return fmt.Sprintf("%s (%s)", e.Name, e.TrainingStatus.Display())
}

// Sync computes the mutation that brings the indicator in line with the
// current selection, plus the indicator state after that mutation is
// applied. Pure: it never touches the surface itself.
//
// An empty selection detaches an attached indicator. A selection that does
// not resolve in the snapshot, or resolves to an entity without a
// location, also detaches — explicitly, so a stale label never lingers on
// screen.
func Sync(selectedID string, s *store.EntityStore, cur IndicatorState) (IndicatorState, Mutation) {
	var e *model.Entity
	if selectedID != "" {
		e, _ = s.Get(selectedID)
	}
	if e == nil || !e.HasLocation() {
		if !cur.Attached {
			return cur, Mutation{}
		}
		next := cur
		next.Attached = false
		return next, Mutation{Detach: true}
	}

	next := IndicatorState{
		Attached: true,
		Location: *e.Location,
		Label:    Label(e),
	}

	var m Mutation
	// A detached indicator's remembered location and label are not trusted;
	// both are set on every attach.
	if !cur.Attached || next.Location != cur.Location {
		loc := next.Location
		m.SetLocation = &loc
	}
	if !cur.Attached || next.Label != cur.Label {
		label := next.Label
		m.SetLabel = &label
	}
	if !cur.Attached {
		m.Attach = true
	}
	return next, m
}

// Apply performs the mutation against the surface. Content is set before
// attaching so a fresh indicator never flashes stale text.
func Apply(m Mutation, surface Surface) {
	if m.Detach {
		surface.Detach()
		return
	}
	if m.SetLocation != nil {
		surface.SetLocation(m.SetLocation.Lat, m.SetLocation.Lon)
	}
	if m.SetLabel != nil {
		surface.SetLabel(*m.SetLabel)
	}
	if m.Attach {
		surface.Attach()
	}
}
