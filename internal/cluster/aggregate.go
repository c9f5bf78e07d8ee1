package cluster

import (
	"github.com/nyc-osyd/atlas-cli/internal/model"
	"github.com/nyc-osyd/atlas-cli/internal/store"
)

// StatusStat is the subset count and percent for one training status, with
// the citywide percent attached for comparison display. Delta is nil when
// the subset is empty (no comparison to show), never NaN.
type StatusStat struct {
	Status      model.TrainingStatus `json:"status"`
	Count       int                  `json:"count"`
	Percent     float64              `json:"percent"`
	CityPercent float64              `json:"city_percent"`
	Delta       *float64             `json:"delta,omitempty"`
}

// Stats summarizes a filtered subset against the citywide baseline.
type Stats struct {
	Size          int          `json:"size"`
	Statuses      []StatusStat `json:"statuses"`
	MeanSTH       float64      `json:"mean_sth"`
	STHSamples    int          `json:"sth_samples"`
	MeanENI       float64      `json:"mean_eni"`
	ENISamples    int          `json:"eni_samples"`
	CityMeanSTH   float64      `json:"city_mean_sth"`
	CityMeanENI   float64      `json:"city_mean_eni"`
	HighNeedCount int          `json:"high_need_count"`
}

// Aggregate computes subset statistics. An empty subset yields defined
// zero-valued output with comparison deltas omitted. Entities with a nil
// index are excluded from that mean's denominator rather than counted as
// zero.
func Aggregate(subset []model.Entity, baseline store.Baseline) Stats {
	st := Stats{
		Size:        len(subset),
		CityMeanSTH: baseline.MeanSTH,
		CityMeanENI: baseline.MeanENI,
	}

	counts := make(map[model.TrainingStatus]int, len(model.Statuses))
	var sthSum, eniSum float64
	for i := range subset {
		e := &subset[i]
		counts[e.TrainingStatus]++
		if e.STH != nil {
			sthSum += *e.STH
			st.STHSamples++
		}
		if e.ENI != nil {
			eniSum += *e.ENI
			st.ENISamples++
		}
		if e.HighNeed() {
			st.HighNeedCount++
		}
	}
	if st.STHSamples > 0 {
		st.MeanSTH = sthSum / float64(st.STHSamples)
	}
	if st.ENISamples > 0 {
		st.MeanENI = eniSum / float64(st.ENISamples)
	}

	st.Statuses = make([]StatusStat, 0, len(model.Statuses))
	for _, status := range model.Statuses {
		ss := StatusStat{
			Status:      status,
			Count:       counts[status],
			CityPercent: baseline.Statuses[status].Percent,
		}
		if st.Size > 0 {
			ss.Percent = float64(ss.Count) / float64(st.Size) * 100
			d := ss.Percent - ss.CityPercent
			ss.Delta = &d
		}
		st.Statuses = append(st.Statuses, ss)
	}
	return st
}
