package cluster

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyc-osyd/atlas-cli/internal/model"
	"github.com/nyc-osyd/atlas-cli/internal/store"
)

func pct(v float64) *float64 { return &v }

// scenarioStore builds the three-school fixture used across the engine
// tests: A(district 2, sth 10, eni 85, untrained), B(district 2, sth 2,
// eni 40, complete), C(district 3, sth 0, eni 20, fundamentals only).
func scenarioStore() *store.EntityStore {
	return store.New([]model.Entity{
		{ID: "A", Name: "Alpha", Borough: "Manhattan", DistrictID: "02", SuperintendentID: "S1",
			TrainingStatus: model.StatusNone, STH: pct(10), ENI: pct(85),
			Location: &model.Location{Lat: 40.71, Lon: -74.00}},
		{ID: "B", Name: "Beta", Borough: "Manhattan", DistrictID: "02", SuperintendentID: "S1",
			TrainingStatus: model.StatusComplete, STH: pct(2), ENI: pct(40),
			Location: &model.Location{Lat: 40.72, Lon: -74.01}},
		{ID: "C", Name: "Gamma", Borough: "Brooklyn", DistrictID: "03", SuperintendentID: "S2",
			TrainingStatus: model.StatusFundamentalsOnly, STH: pct(0), ENI: pct(20),
			Location: &model.Location{Lat: 40.65, Lon: -73.95}},
	}, time.Now())
}

func TestFilterByDistrict(t *testing.T) {
	t.Parallel()

	s := scenarioStore()
	subset := Filter(s, model.FilterState{DistrictID: "02"})

	require.Len(t, subset, 2)
	assert.Equal(t, "A", subset[0].ID)
	assert.Equal(t, "B", subset[1].ID)
}

func TestFilterEmptyStateReturnsAll(t *testing.T) {
	t.Parallel()

	s := scenarioStore()
	subset := Filter(s, model.FilterState{})
	assert.Len(t, subset, 3)
}

func TestFilterDeterministicAndIdempotent(t *testing.T) {
	t.Parallel()

	s := scenarioStore()
	f := model.FilterState{Borough: "Manhattan", TrainingStatus: model.StatusComplete}

	first := Filter(s, f)
	second := Filter(s, f)
	assert.Equal(t, first, second)

	for i := range first {
		assert.True(t, f.Matches(&first[i]))
	}
}

func TestFilterPreservesStableOrder(t *testing.T) {
	t.Parallel()

	s := scenarioStore()
	subset := Filter(s, model.FilterState{Borough: "Manhattan"})

	require.Len(t, subset, 2)
	assert.Equal(t, []string{"A", "B"}, []string{subset[0].ID, subset[1].ID})
}

func TestFilterNoMatches(t *testing.T) {
	t.Parallel()

	s := scenarioStore()
	subset := Filter(s, model.FilterState{Borough: "Queens"})
	assert.Empty(t, subset)
}
