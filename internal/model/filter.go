package model

// FilterState holds the active geographic and training filters. An empty
// field imposes no constraint. FilterState is a pure comparable value:
// two equal states always select the same subset from the same store.
type FilterState struct {
	Borough          string         `json:"borough,omitempty"`
	DistrictID       string         `json:"district_id,omitempty"`
	SuperintendentID string         `json:"superintendent_id,omitempty"`
	SchoolType       string         `json:"school_type,omitempty"`
	TrainingStatus   TrainingStatus `json:"training_status,omitempty"`
}

// IsEmpty reports whether no predicate is active. An empty FilterState
// corresponds to Overview mode.
func (f FilterState) IsEmpty() bool {
	return f == FilterState{}
}

// Matches reports whether the entity satisfies every active predicate.
// Predicates are conjunctive, and an entity with an unknown (empty) field
// never matches a predicate targeting that field.
func (f FilterState) Matches(e *Entity) bool {
	if f.Borough != "" && e.Borough != f.Borough {
		return false
	}
	if f.DistrictID != "" && e.DistrictID != f.DistrictID {
		return false
	}
	if f.SuperintendentID != "" && e.SuperintendentID != f.SuperintendentID {
		return false
	}
	if f.SchoolType != "" && e.SchoolType != f.SchoolType {
		return false
	}
	if f.TrainingStatus != "" && e.TrainingStatus != f.TrainingStatus {
		return false
	}
	return true
}
