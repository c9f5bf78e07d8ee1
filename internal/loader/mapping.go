// Package loader turns raw workbook rows into validated school entities.
// Header names drift between exports, so columns are resolved through an
// alias map; rows missing an id or an underivable training status are
// excluded and counted, never silently defaulted.
package loader

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Canonical field names the loader understands.
const (
	FieldID              = "id"
	FieldName            = "name"
	FieldBorough         = "borough"
	FieldDistrict        = "district"
	FieldSuperintendent  = "superintendent"
	FieldSchoolType      = "school_type"
	FieldCoordinates     = "coordinates"
	FieldTrainingStatus  = "training_status"
	FieldHasFundamentals = "has_fundamentals"
	FieldHasLights       = "has_lights"
	FieldSTH             = "sth_percent"
	FieldENI             = "eni_percent"
	FieldProgram         = "program"
	FieldRole            = "role"
	FieldParticipantName = "participant_name"
	FieldTrainingDate    = "training_date"
)

// Mapping maps canonical field names to the header aliases seen in
// workbook exports. Comparison is case- and whitespace-insensitive.
type Mapping map[string][]string

// DefaultMapping covers the header variants of the known export formats.
func DefaultMapping() Mapping {
	return Mapping{
		FieldID:              {"school_dbn", "dbn"},
		FieldName:            {"school_name", "location_name"},
		FieldBorough:         {"borough", "boro"},
		FieldDistrict:        {"district", "geo_district"},
		FieldSuperintendent:  {"superintendent_name", "superintendent"},
		FieldSchoolType:      {"school_type", "location_category"},
		FieldCoordinates:     {"geo_coordinates", "coordinates"},
		FieldTrainingStatus:  {"training_completion_status", "training_status"},
		FieldHasFundamentals: {"has_fundamentals", "fundamentals_trained"},
		FieldHasLights:       {"has_lights", "lights_trained"},
		FieldSTH:             {"sth_percent", "sth_pct", "students_temp_housing_pct"},
		FieldENI:             {"economic_need_index", "eni", "eni_percent"},
		FieldProgram:         {"program", "training_program"},
		FieldRole:            {"role", "participant_role"},
		FieldParticipantName: {"participant_name", "participant"},
		FieldTrainingDate:    {"training_date", "completion_date"},
	}
}

// LoadMapping reads a YAML alias map and merges it over the defaults, so a
// config file only needs to list the headers that differ.
func LoadMapping(path string) (Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "loader: read mapping file")
	}

	var overrides Mapping
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, eris.Wrap(err, "loader: parse mapping yaml")
	}

	m := DefaultMapping()
	for field, aliases := range overrides {
		if _, known := m[field]; !known {
			return nil, eris.Errorf("loader: mapping file names unknown field %q", field)
		}
		m[field] = aliases
	}
	return m, nil
}

// Resolve matches a header row against the mapping and returns the column
// index of each canonical field found. The id column is required.
func (m Mapping) Resolve(header []string) (map[string]int, error) {
	byAlias := make(map[string]string)
	for field, aliases := range m {
		byAlias[normalizeHeader(field)] = field
		for _, a := range aliases {
			byAlias[normalizeHeader(a)] = field
		}
	}

	cols := make(map[string]int)
	for i, cell := range header {
		if field, ok := byAlias[normalizeHeader(cell)]; ok {
			if _, dup := cols[field]; !dup {
				cols[field] = i
			}
		}
	}

	if _, ok := cols[FieldID]; !ok {
		return nil, eris.Errorf("loader: no id column found in header %v", header)
	}
	return cols, nil
}

func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, " ", "_")
}
