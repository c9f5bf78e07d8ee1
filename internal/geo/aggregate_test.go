package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyc-osyd/atlas-cli/internal/model"
)

func TestAggregateByDistrict(t *testing.T) {
	t.Parallel()

	entities := []model.Entity{
		{ID: "A", DistrictID: "02", TrainingStatus: model.StatusComplete},
		{ID: "B", DistrictID: "02", TrainingStatus: model.StatusFundamentalsOnly},
		{ID: "C", DistrictID: "02", TrainingStatus: model.StatusNone},
		{ID: "D", DistrictID: "03", TrainingStatus: model.StatusNone},
		{ID: "E", TrainingStatus: model.StatusComplete}, // no district
	}

	coverage, unassigned := Aggregate(entities)
	assert.Equal(t, 1, unassigned)
	require.Len(t, coverage, 2)

	d2 := coverage[0]
	assert.Equal(t, "02", d2.DistrictID)
	assert.Equal(t, 3, d2.Schools)
	assert.Equal(t, 1, d2.Complete)
	assert.Equal(t, 1, d2.FundamentalsOnly)
	assert.Equal(t, 1, d2.None)
	assert.InDelta(t, 66.7, d2.CoveragePct, 1e-9, "rounded to one decimal")

	d3 := coverage[1]
	assert.Equal(t, "03", d3.DistrictID)
	assert.Zero(t, d3.CoveragePct)
}

func TestAggregateEmpty(t *testing.T) {
	t.Parallel()

	coverage, unassigned := Aggregate(nil)
	assert.Empty(t, coverage)
	assert.Zero(t, unassigned)
}

func TestAggregateStableOrder(t *testing.T) {
	t.Parallel()

	entities := []model.Entity{
		{ID: "A", DistrictID: "10", TrainingStatus: model.StatusNone},
		{ID: "B", DistrictID: "02", TrainingStatus: model.StatusNone},
		{ID: "C", DistrictID: "07", TrainingStatus: model.StatusNone},
	}

	coverage, _ := Aggregate(entities)
	require.Len(t, coverage, 3)
	assert.Equal(t, "02", coverage[0].DistrictID)
	assert.Equal(t, "07", coverage[1].DistrictID)
	assert.Equal(t, "10", coverage[2].DistrictID)
}
