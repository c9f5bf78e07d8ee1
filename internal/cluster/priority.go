package cluster

import (
	"sort"

	"github.com/nyc-osyd/atlas-cli/internal/model"
)

// Ranked is one priority-list entry: the entity plus which enabled criteria
// it satisfied.
type Ranked struct {
	Entity      model.Entity       `json:"entity"`
	Hits        model.CriteriaHits `json:"hits"`
	CriteriaMet int                `json:"criteria_met"`
}

// Group is the priority entries for one superintendent.
type Group struct {
	SuperintendentID string   `json:"superintendent_id"`
	Schools          []Ranked `json:"schools"`
}

// Score filters the subset to entities satisfying the OR of the enabled
// criteria, groups them by superintendent, and orders everything by a total
// order so repeated runs on identical inputs produce identical output.
//
// In-group order: more criteria met first, then STH descending, then ENI
// descending, then name ascending. A nil index sorts below any measured
// value, so a school with unknown vulnerability never outranks one with
// data at the same criteria count. Groups are ordered by size descending,
// ties by superintendent id ascending.
func Score(subset []model.Entity, criteria model.PriorityCriteria) []Group {
	if !criteria.Any() {
		return nil
	}

	byOwner := make(map[string][]Ranked)
	var owners []string
	for i := range subset {
		e := &subset[i]
		hits, n := criteria.Hits(e)
		if n == 0 {
			continue
		}
		if _, seen := byOwner[e.SuperintendentID]; !seen {
			owners = append(owners, e.SuperintendentID)
		}
		byOwner[e.SuperintendentID] = append(byOwner[e.SuperintendentID], Ranked{
			Entity:      subset[i],
			Hits:        hits,
			CriteriaMet: n,
		})
	}
	if len(byOwner) == 0 {
		return nil
	}

	groups := make([]Group, 0, len(byOwner))
	for _, owner := range owners {
		schools := byOwner[owner]
		sort.Slice(schools, func(i, j int) bool {
			return lessRanked(&schools[i], &schools[j])
		})
		groups = append(groups, Group{SuperintendentID: owner, Schools: schools})
	}

	sort.Slice(groups, func(i, j int) bool {
		if len(groups[i].Schools) != len(groups[j].Schools) {
			return len(groups[i].Schools) > len(groups[j].Schools)
		}
		return groups[i].SuperintendentID < groups[j].SuperintendentID
	})
	return groups
}

// Flatten returns all ranked entries in final group-then-rank order, the
// shape the CSV sink consumes.
func Flatten(groups []Group) []Ranked {
	var out []Ranked
	for _, g := range groups {
		out = append(out, g.Schools...)
	}
	return out
}

func lessRanked(a, b *Ranked) bool {
	if a.CriteriaMet != b.CriteriaMet {
		return a.CriteriaMet > b.CriteriaMet
	}
	if c := compareDesc(a.Entity.STH, b.Entity.STH); c != 0 {
		return c < 0
	}
	if c := compareDesc(a.Entity.ENI, b.Entity.ENI); c != 0 {
		return c < 0
	}
	return a.Entity.Name < b.Entity.Name
}

// compareDesc orders two optional percents descending with nil below any
// value. Returns -1 when a sorts first, +1 when b does, 0 on ties.
func compareDesc(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a > *b:
		return -1
	case *a < *b:
		return 1
	default:
		return 0
	}
}
