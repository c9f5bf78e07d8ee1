package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func pct(v float64) *float64 { return &v }

func TestPriorityCriteriaHits(t *testing.T) {
	t.Parallel()

	e := &Entity{
		ID:             "A",
		TrainingStatus: StatusNone,
		STH:            pct(10),
		ENI:            pct(85),
	}

	t.Run("disabled criteria never count", func(t *testing.T) {
		t.Parallel()
		_, n := PriorityCriteria{}.Hits(e)
		assert.Equal(t, 0, n)
	})

	t.Run("enabled criteria OR together", func(t *testing.T) {
		t.Parallel()
		c := PriorityCriteria{HighENI: true, Untrained: true}
		hits, n := c.Hits(e)
		assert.Equal(t, 2, n)
		assert.True(t, hits.HighENI)
		assert.True(t, hits.Untrained)
		assert.False(t, hits.HighSTH) // enabled=false even though STH=10
	})

	t.Run("nil indices never qualify", func(t *testing.T) {
		t.Parallel()
		blank := &Entity{ID: "B", TrainingStatus: StatusComplete}
		c := PriorityCriteria{HighSTH: true, HighENI: true}
		_, n := c.Hits(blank)
		assert.Equal(t, 0, n)
	})

	t.Run("thresholds are inclusive", func(t *testing.T) {
		t.Parallel()
		edge := &Entity{ID: "C", TrainingStatus: StatusComplete, STH: pct(5), ENI: pct(80)}
		c := PriorityCriteria{HighSTH: true, HighENI: true}
		_, n := c.Hits(edge)
		assert.Equal(t, 2, n)
	})
}

func TestEntityHighNeed(t *testing.T) {
	t.Parallel()

	assert.True(t, (&Entity{STH: pct(5)}).HighNeed())
	assert.True(t, (&Entity{ENI: pct(80)}).HighNeed())
	assert.False(t, (&Entity{STH: pct(4.9), ENI: pct(79.9)}).HighNeed())
	assert.False(t, (&Entity{}).HighNeed())
}
