package geo

import (
	"math"
	"sort"

	"github.com/nyc-osyd/atlas-cli/internal/model"
)

// Coverage summarizes training coverage for one district.
type Coverage struct {
	DistrictID       string  `json:"district_id"`
	Schools          int     `json:"schools"`
	Complete         int     `json:"complete"`
	FundamentalsOnly int     `json:"fundamentals_only"`
	None             int     `json:"none"`
	CoveragePct      float64 `json:"coverage_pct"` // percent with any training, 1 decimal
}

// Aggregate groups entities by district and computes per-district
// coverage, ordered by district id. Entities without a district id are
// returned in the second value, not dropped silently.
func Aggregate(entities []model.Entity) ([]Coverage, int) {
	byDistrict := make(map[string]*Coverage)
	unassigned := 0

	for i := range entities {
		e := &entities[i]
		if e.DistrictID == "" {
			unassigned++
			continue
		}

		c, ok := byDistrict[e.DistrictID]
		if !ok {
			c = &Coverage{DistrictID: e.DistrictID}
			byDistrict[e.DistrictID] = c
		}

		c.Schools++
		switch e.TrainingStatus {
		case model.StatusComplete:
			c.Complete++
		case model.StatusFundamentalsOnly:
			c.FundamentalsOnly++
		case model.StatusNone:
			c.None++
		}
	}

	out := make([]Coverage, 0, len(byDistrict))
	for _, c := range byDistrict {
		trained := c.Complete + c.FundamentalsOnly
		c.CoveragePct = math.Round(float64(trained)/float64(c.Schools)*1000) / 10
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DistrictID < out[j].DistrictID })
	return out, unassigned
}
