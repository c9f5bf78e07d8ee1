package model

import "time"

// TrainingStatus is the resolved training state of a school, derived at load
// time from per-program completion columns.
type TrainingStatus string

const (
	StatusComplete         TrainingStatus = "complete"
	StatusFundamentalsOnly TrainingStatus = "fundamentals_only"
	StatusNone             TrainingStatus = "none"
)

// Statuses lists all training statuses in display order. Aggregation output
// follows this order so percentages are stable across runs.
var Statuses = []TrainingStatus{StatusComplete, StatusFundamentalsOnly, StatusNone}

// Display is the human-readable form used by map labels and exports.
func (s TrainingStatus) Display() string {
	switch s {
	case StatusComplete:
		return "Complete"
	case StatusFundamentalsOnly:
		return "Fundamentals only"
	case StatusNone:
		return "Not trained"
	}
	return string(s)
}

// Valid reports whether s is one of the known statuses.
func (s TrainingStatus) Valid() bool {
	switch s {
	case StatusComplete, StatusFundamentalsOnly, StatusNone:
		return true
	}
	return false
}

// Vulnerability thresholds. STH is percent of students in temporary housing;
// ENI is the DOE economic need index, also on a 0-100 percent scale.
const (
	HighSTHThreshold = 5.0
	HighENIThreshold = 80.0
)

// Location is a WGS84 point.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Participant is one trained staff member at a school, grouped by program.
// Consumed only by the School-mode detail panel, never by aggregation.
type Participant struct {
	Program      string     `json:"program"`
	Role         string     `json:"role"`
	Name         string     `json:"name"`
	TrainingDate *time.Time `json:"training_date,omitempty"`
}

// Entity is one school record. Immutable once loaded; a data refresh
// produces a whole new slice rather than mutating entities in place.
// Empty categorical strings and nil pointers mean "unknown" and are never
// conflated with real values.
type Entity struct {
	ID               string         `json:"id"` // DBN, e.g. "02M047"
	Name             string         `json:"name"`
	Borough          string         `json:"borough"`
	DistrictID       string         `json:"district_id"`
	SuperintendentID string         `json:"superintendent_id"`
	SchoolType       string         `json:"school_type"`
	Location         *Location      `json:"location,omitempty"`
	TrainingStatus   TrainingStatus `json:"training_status"`
	STH              *float64       `json:"sth_percent,omitempty"`
	ENI              *float64       `json:"eni_percent,omitempty"`
	Participants     []Participant  `json:"participants,omitempty"`
}

// HasLocation reports whether the entity can be placed on the map.
// Entities without a location are excluded from map-bound operations but
// still participate in non-spatial aggregation.
func (e *Entity) HasLocation() bool {
	return e.Location != nil
}

// HighNeed reports whether the entity crosses either vulnerability
// threshold. Nil indices never qualify.
func (e *Entity) HighNeed() bool {
	if e.STH != nil && *e.STH >= HighSTHThreshold {
		return true
	}
	if e.ENI != nil && *e.ENI >= HighENIThreshold {
		return true
	}
	return false
}
