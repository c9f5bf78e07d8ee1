// Package export serializes the filtered subset and the flattened
// priority list as CSV.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/nyc-osyd/atlas-cli/internal/cluster"
	"github.com/nyc-osyd/atlas-cli/internal/model"
)

// entityColumns defines the ordered school export columns.
var entityColumns = []string{
	"DBN",
	"School Name",
	"Borough",
	"District",
	"Superintendent",
	"School Type",
	"Training Status",
	"STH %",
	"ENI %",
	"Latitude",
	"Longitude",
	"Participants",
}

// priorityColumns defines the ordered priority-list export columns. Rows
// keep the scorer's group order, flattened.
var priorityColumns = []string{
	"Superintendent",
	"DBN",
	"School Name",
	"District",
	"Criteria Met",
	"High STH",
	"High ENI",
	"Untrained",
	"Fundamentals Only",
	"STH %",
	"ENI %",
}

// WriteEntitiesCSV writes the subset as CSV in store order.
func WriteEntitiesCSV(w io.Writer, entities []model.Entity) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(entityColumns); err != nil {
		return eris.Wrap(err, "export: write header")
	}

	for i := range entities {
		if err := cw.Write(entityRow(&entities[i])); err != nil {
			return eris.Wrap(err, "export: write row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush")
}

// WritePriorityCSV writes the flattened priority list as CSV.
func WritePriorityCSV(w io.Writer, groups []cluster.Group) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(priorityColumns); err != nil {
		return eris.Wrap(err, "export: write header")
	}

	for _, r := range cluster.Flatten(groups) {
		if err := cw.Write(priorityRow(r)); err != nil {
			return eris.Wrap(err, "export: write row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush")
}

func entityRow(e *model.Entity) []string {
	lat, lon := "", ""
	if e.Location != nil {
		lat = strconv.FormatFloat(e.Location.Lat, 'f', -1, 64)
		lon = strconv.FormatFloat(e.Location.Lon, 'f', -1, 64)
	}

	return []string{
		e.ID,
		e.Name,
		e.Borough,
		e.DistrictID,
		e.SuperintendentID,
		e.SchoolType,
		e.TrainingStatus.Display(),
		fmtPct(e.STH),
		fmtPct(e.ENI),
		lat,
		lon,
		strconv.Itoa(len(e.Participants)),
	}
}

func priorityRow(r cluster.Ranked) []string {
	return []string{
		r.Entity.SuperintendentID,
		r.Entity.ID,
		r.Entity.Name,
		r.Entity.DistrictID,
		strconv.Itoa(r.CriteriaMet),
		yesNo(r.Hits.HighSTH),
		yesNo(r.Hits.HighENI),
		yesNo(r.Hits.Untrained),
		yesNo(r.Hits.FundamentalsOnly),
		fmtPct(r.Entity.STH),
		fmtPct(r.Entity.ENI),
	}
}

// fmtPct leaves unknown values empty rather than writing a zero.
func fmtPct(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
