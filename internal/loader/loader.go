package loader

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/nyc-osyd/atlas-cli/internal/model"
)

// NYC bounding box; coordinates outside it are treated as unknown.
const (
	minLat = 40.4
	maxLat = 41.0
	minLon = -74.3
	maxLon = -73.6
)

// RowError describes why one workbook row was excluded.
type RowError struct {
	Row    int // 1-based row number within the data rows
	ID     string
	Reason string
}

func (e RowError) String() string {
	if e.ID == "" {
		return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
	}
	return fmt.Sprintf("row %d (%s): %s", e.Row, e.ID, e.Reason)
}

// Report summarizes one load: how many rows became entities and which were
// excluded. Exclusion is not fatal.
type Report struct {
	Loaded   int
	Excluded int
	Errors   []RowError
}

func (r *Report) exclude(row int, id, reason string) {
	r.Excluded++
	r.Errors = append(r.Errors, RowError{Row: row, ID: id, Reason: reason})
}

// Schools converts workbook rows (header first) into entities. Rows with
// no id, a duplicate id, or an underivable training status are excluded
// and reported.
func Schools(rows [][]string, m Mapping) ([]model.Entity, Report, error) {
	var report Report
	if len(rows) == 0 {
		return nil, report, eris.New("loader: workbook has no header row")
	}

	cols, err := m.Resolve(rows[0])
	if err != nil {
		return nil, report, err
	}

	sthFractional := columnIsFractional(rows[1:], cols, FieldSTH)
	eniFractional := columnIsFractional(rows[1:], cols, FieldENI)

	seen := make(map[string]bool)
	var entities []model.Entity
	for i, row := range rows[1:] {
		rowNum := i + 1

		id := cell(row, cols, FieldID)
		if id == "" {
			report.exclude(rowNum, "", "missing id")
			continue
		}
		if seen[id] {
			report.exclude(rowNum, id, "duplicate id")
			continue
		}

		status, ok := deriveStatus(row, cols)
		if !ok {
			report.exclude(rowNum, id, "training status not derivable")
			continue
		}

		seen[id] = true
		entities = append(entities, model.Entity{
			ID:               id,
			Name:             cell(row, cols, FieldName),
			Borough:          normalizeBorough(cell(row, cols, FieldBorough)),
			DistrictID:       normalizeDistrict(cell(row, cols, FieldDistrict)),
			SuperintendentID: normalizeSuperintendent(cell(row, cols, FieldSuperintendent)),
			SchoolType:       cell(row, cols, FieldSchoolType),
			Location:         parseCoordinates(cell(row, cols, FieldCoordinates)),
			TrainingStatus:   status,
			STH:              parsePercent(cell(row, cols, FieldSTH), sthFractional),
			ENI:              parsePercent(cell(row, cols, FieldENI), eniFractional),
		})
	}

	report.Loaded = len(entities)
	zap.L().Info("loader: schools parsed",
		zap.Int("loaded", report.Loaded),
		zap.Int("excluded", report.Excluded),
	)
	return entities, report, nil
}

// Participants parses the participant detail rows (header first) and
// attaches them, in row order, to the matching entity. Rows referencing an
// unknown id are counted in the returned report.
func Participants(rows [][]string, m Mapping, entities []model.Entity) (Report, error) {
	var report Report
	if len(rows) == 0 {
		return report, nil
	}

	cols, err := m.Resolve(rows[0])
	if err != nil {
		return report, err
	}

	byID := make(map[string]*model.Entity, len(entities))
	for i := range entities {
		byID[entities[i].ID] = &entities[i]
	}

	for i, row := range rows[1:] {
		rowNum := i + 1

		id := cell(row, cols, FieldID)
		if id == "" {
			report.exclude(rowNum, "", "missing id")
			continue
		}
		e, ok := byID[id]
		if !ok {
			report.exclude(rowNum, id, "no matching school")
			continue
		}

		e.Participants = append(e.Participants, model.Participant{
			Program:      cell(row, cols, FieldProgram),
			Role:         cell(row, cols, FieldRole),
			Name:         cell(row, cols, FieldParticipantName),
			TrainingDate: parseDate(cell(row, cols, FieldTrainingDate)),
		})
		report.Loaded++
	}

	return report, nil
}

func cell(row []string, cols map[string]int, field string) string {
	i, ok := cols[field]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// deriveStatus resolves the training status, preferring an explicit status
// column and falling back to the per-program yes/no columns. Partial
// coverage (exactly one program) resolves to fundamentals-only.
func deriveStatus(row []string, cols map[string]int) (model.TrainingStatus, bool) {
	if raw := cell(row, cols, FieldTrainingStatus); raw != "" {
		return normalizeStatus(raw)
	}

	_, hasFundCol := cols[FieldHasFundamentals]
	_, hasLightsCol := cols[FieldHasLights]
	if !hasFundCol || !hasLightsCol {
		return "", false
	}

	fund := isYes(cell(row, cols, FieldHasFundamentals))
	lights := isYes(cell(row, cols, FieldHasLights))
	switch {
	case fund && lights:
		return model.StatusComplete, true
	case fund || lights:
		return model.StatusFundamentalsOnly, true
	default:
		return model.StatusNone, true
	}
}

func normalizeStatus(raw string) (model.TrainingStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "complete", "complete training":
		return model.StatusComplete, true
	case "fundamentals only", "lights only", "partial":
		return model.StatusFundamentalsOnly, true
	case "no training", "none", "not started":
		return model.StatusNone, true
	}
	return "", false
}

func isYes(s string) bool {
	switch strings.ToLower(s) {
	case "yes", "y", "true", "1":
		return true
	}
	return false
}

// parseCoordinates parses a "lat,lon" cell. Out-of-bounds or malformed
// values yield nil, not an error: the entity stays in the store, it just
// never lands on the map.
func parseCoordinates(raw string) *model.Location {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return nil
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return nil
	}
	if lat < minLat || lat > maxLat || lon < minLon || lon > maxLon {
		return nil
	}
	return &model.Location{Lat: lat, Lon: lon}
}

// columnIsFractional reports whether a percent column is on a 0-1 scale:
// every bare numeric value in it is at most 1. Deciding per column rather
// than per cell keeps a genuine "1" in a 0-100 column at 1%, since any
// sibling value above 1 pins the whole column to the 0-100 scale.
// "%"-suffixed cells are always 0-100 and don't vote.
func columnIsFractional(rows [][]string, cols map[string]int, field string) bool {
	sawBare := false
	for _, row := range rows {
		raw := cell(row, cols, field)
		if raw == "" || strings.HasSuffix(raw, "%") {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		if v > 1.0 {
			return false
		}
		sawBare = true
	}
	return sawBare
}

// parsePercent parses one percent cell. fractional marks a 0-1 scale
// column whose bare values are scaled to 0-100; "%"-suffixed values are
// taken as-is either way. Empty and out-of-range cells are unknown (nil),
// never zero.
func parsePercent(raw string, fractional bool) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	hadSuffix := strings.HasSuffix(raw, "%")
	v, err := strconv.ParseFloat(strings.TrimSuffix(raw, "%"), 64)
	if err != nil {
		return nil
	}
	if !hadSuffix && fractional {
		v *= 100
	}
	if v < 0 || v > 100 {
		return nil
	}
	return &v
}

var dateLayouts = []string{"2006-01-02", "1/2/2006", "01/02/2006", time.RFC3339}

func parseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

var boroughAliases = map[string]string{
	"BROOKLN":   "BROOKLYN",
	"STATEN IS": "STATEN ISLAND",
	"SI":        "STATEN ISLAND",
	"BX":        "BRONX",
	"BK":        "BROOKLYN",
	"MN":        "MANHATTAN",
	"QN":        "QUEENS",
}

func normalizeBorough(raw string) string {
	b := strings.ToUpper(strings.TrimSpace(raw))
	if full, ok := boroughAliases[b]; ok {
		return full
	}
	return b
}

// normalizeDistrict strips leading zeros so "02" and "2" filter alike,
// then re-pads to two digits to match DBN prefixes.
func normalizeDistrict(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return ""
	}
	return fmt.Sprintf("%02d", n)
}

// normalizeSuperintendent flips "Last, First" to "First Last" and
// collapses whitespace, so the same person filters as one value across
// export variants.
func normalizeSuperintendent(raw string) string {
	name := strings.TrimSpace(raw)
	if i := strings.Index(name, ","); i >= 0 {
		name = strings.TrimSpace(name[i+1:]) + " " + strings.TrimSpace(name[:i])
	}
	return strings.Join(strings.Fields(name), " ")
}
