package model

// PriorityCriteria is a set of independently toggleable outreach criteria.
// An entity qualifies for the priority list when it satisfies the OR of all
// enabled criteria. Enabling zero criteria yields an empty list, not "all".
type PriorityCriteria struct {
	HighSTH          bool `json:"high_sth"`
	HighENI          bool `json:"high_eni"`
	Untrained        bool `json:"untrained"`
	FundamentalsOnly bool `json:"fundamentals_only"`
}

// Any reports whether at least one criterion is enabled.
func (c PriorityCriteria) Any() bool {
	return c.HighSTH || c.HighENI || c.Untrained || c.FundamentalsOnly
}

// Hits returns which enabled criteria the entity satisfies and how many.
// Disabled criteria never count, so toggling a criterion only changes the
// derived list, never the entities.
func (c PriorityCriteria) Hits(e *Entity) (CriteriaHits, int) {
	var h CriteriaHits
	n := 0
	if c.HighSTH && e.STH != nil && *e.STH >= HighSTHThreshold {
		h.HighSTH = true
		n++
	}
	if c.HighENI && e.ENI != nil && *e.ENI >= HighENIThreshold {
		h.HighENI = true
		n++
	}
	if c.Untrained && e.TrainingStatus == StatusNone {
		h.Untrained = true
		n++
	}
	if c.FundamentalsOnly && e.TrainingStatus == StatusFundamentalsOnly {
		h.FundamentalsOnly = true
		n++
	}
	return h, n
}

// CriteriaHits records which criteria a ranked entity satisfied.
type CriteriaHits struct {
	HighSTH          bool `json:"high_sth"`
	HighENI          bool `json:"high_eni"`
	Untrained        bool `json:"untrained"`
	FundamentalsOnly bool `json:"fundamentals_only"`
}
