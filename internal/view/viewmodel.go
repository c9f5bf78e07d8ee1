package view

import (
	"github.com/nyc-osyd/atlas-cli/internal/cluster"
	"github.com/nyc-osyd/atlas-cli/internal/model"
	"github.com/nyc-osyd/atlas-cli/internal/store"
)

// ViewModel is the single read path the presentation layer renders from.
// Overview and Cluster carry the subset, its stats, and the priority
// groups; School carries the selected entity (with participants) plus the
// origin subset so the map keeps its markers.
type ViewModel struct {
	Mode     Mode              `json:"mode"`
	Filters  model.FilterState `json:"filters"`
	Subset   []model.Entity    `json:"subset"`
	Selected *model.Entity     `json:"selected,omitempty"`
	Stats    *cluster.Stats    `json:"stats,omitempty"`
	Priority []cluster.Group   `json:"priority,omitempty"`
	Baseline store.Baseline    `json:"baseline"`
}

// ComputeViewModel derives the renderable model from one snapshot and the
// current navigation state. Pure: recomputed on every state or store
// change, never cached. A selection that no longer resolves (reload raced
// an interaction) renders as the origin view; the stored state is corrected
// separately by the StoreReloaded transition.
func ComputeViewModel(s *store.EntityStore, vs ViewState, criteria model.PriorityCriteria) ViewModel {
	vm := ViewModel{
		Mode:     vs.Mode,
		Filters:  vs.Filters,
		Baseline: s.Baseline(),
	}

	if vs.Mode == ModeSchool {
		if e, ok := s.Get(vs.SelectedID); ok {
			vm.Subset = cluster.Filter(s, vs.Filters)
			vm.Selected = e
			return vm
		}
		vm.Mode = vs.Origin.Mode
		vm.Filters = vs.Origin.Filters
	}

	vm.Subset = cluster.Filter(s, vm.Filters)
	stats := cluster.Aggregate(vm.Subset, s.Baseline())
	vm.Stats = &stats
	vm.Priority = cluster.Score(vm.Subset, criteria)
	return vm
}
