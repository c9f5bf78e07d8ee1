package mapsync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyc-osyd/atlas-cli/internal/model"
	"github.com/nyc-osyd/atlas-cli/internal/store"
)

func pct(v float64) *float64 { return &v }

func testStore() *store.EntityStore {
	return store.New([]model.Entity{
		{ID: "A", Name: "Alpha", TrainingStatus: model.StatusNone, STH: pct(10),
			Location: &model.Location{Lat: 40.71, Lon: -74.00}},
		{ID: "B", Name: "Beta", TrainingStatus: model.StatusComplete,
			Location: &model.Location{Lat: 40.72, Lon: -74.01}},
		{ID: "C", Name: "Gamma", TrainingStatus: model.StatusFundamentalsOnly}, // no location
	}, time.Now())
}

// recordingSurface captures the operation sequence Apply performs.
type recordingSurface struct {
	ops []string
}

func (r *recordingSurface) Attach()         { r.ops = append(r.ops, "attach") }
func (r *recordingSurface) Detach()         { r.ops = append(r.ops, "detach") }
func (r *recordingSurface) SetLabel(string) { r.ops = append(r.ops, "label") }
func (r *recordingSurface) SetLocation(float64, float64) {
	r.ops = append(r.ops, "location")
}

func TestSyncFirstSelectionAttaches(t *testing.T) {
	t.Parallel()

	s := testStore()
	next, m := Sync("A", s, IndicatorState{})

	assert.True(t, next.Attached)
	assert.Equal(t, model.Location{Lat: 40.71, Lon: -74.00}, next.Location)
	assert.Equal(t, "Alpha (Not trained)", next.Label)

	require.NotNil(t, m.SetLocation)
	require.NotNil(t, m.SetLabel)
	assert.True(t, m.Attach)
	assert.False(t, m.Detach)
}

func TestSyncReselectionMovesWithoutReattach(t *testing.T) {
	t.Parallel()

	s := testStore()
	state, _ := Sync("A", s, IndicatorState{})

	next, m := Sync("B", s, state)
	assert.True(t, next.Attached)
	assert.Equal(t, "Beta (Complete)", next.Label)
	require.NotNil(t, m.SetLocation)
	require.NotNil(t, m.SetLabel)
	assert.False(t, m.Attach, "already attached, only moved and relabeled")
}

func TestSyncSameSelectionIsZeroMutation(t *testing.T) {
	t.Parallel()

	s := testStore()
	state, _ := Sync("A", s, IndicatorState{})

	next, m := Sync("A", s, state)
	assert.Equal(t, state, next)
	assert.True(t, m.IsZero())
}

func TestSyncClearedSelectionDetaches(t *testing.T) {
	t.Parallel()

	s := testStore()
	state, _ := Sync("A", s, IndicatorState{})

	next, m := Sync("", s, state)
	assert.False(t, next.Attached)
	assert.True(t, m.Detach)

	// Detaching an already-detached indicator is a no-op.
	again, m2 := Sync("", s, next)
	assert.Equal(t, next, again)
	assert.True(t, m2.IsZero())
}

func TestSyncEntityWithoutLocationDetaches(t *testing.T) {
	t.Parallel()

	s := testStore()
	state, _ := Sync("A", s, IndicatorState{})

	next, m := Sync("C", s, state)
	assert.False(t, next.Attached)
	assert.True(t, m.Detach, "nothing to anchor to, the detach is explicit")
}

func TestSyncUnresolvedIDDetaches(t *testing.T) {
	t.Parallel()

	s := testStore()
	state, _ := Sync("A", s, IndicatorState{})

	next, m := Sync("gone", s, state)
	assert.False(t, next.Attached)
	assert.True(t, m.Detach)
}

func TestSyncReloadKeepsIndicatorWhenEntityUnchanged(t *testing.T) {
	t.Parallel()

	state, _ := Sync("A", testStore(), IndicatorState{})

	// A fresh snapshot with the same entity values requires no surface work.
	_, m := Sync("A", testStore(), state)
	assert.True(t, m.IsZero())
}

func TestSyncReloadRelabelsChangedEntity(t *testing.T) {
	t.Parallel()

	state, _ := Sync("A", testStore(), IndicatorState{})

	reloaded := store.New([]model.Entity{
		{ID: "A", Name: "Alpha", TrainingStatus: model.StatusComplete,
			Location: &model.Location{Lat: 40.71, Lon: -74.00}},
	}, time.Now())

	next, m := Sync("A", reloaded, state)
	assert.Equal(t, "Alpha (Complete)", next.Label)
	assert.Nil(t, m.SetLocation, "location unchanged")
	require.NotNil(t, m.SetLabel)
	assert.False(t, m.Attach)
}

func TestApplySetsContentBeforeAttaching(t *testing.T) {
	t.Parallel()

	_, m := Sync("A", testStore(), IndicatorState{})

	surface := &recordingSurface{}
	Apply(m, surface)
	assert.Equal(t, []string{"location", "label", "attach"}, surface.ops)
}

func TestApplyDetachOnly(t *testing.T) {
	t.Parallel()

	surface := &recordingSurface{}
	Apply(Mutation{Detach: true}, surface)
	assert.Equal(t, []string{"detach"}, surface.ops)
}

func TestApplyZeroMutationTouchesNothing(t *testing.T) {
	t.Parallel()

	surface := &recordingSurface{}
	Apply(Mutation{}, surface)
	assert.Empty(t, surface.ops)
}
