// Package geo loads NYC school-district boundary polygons and aggregates
// per-district training coverage, the feed behind the district choropleth.
package geo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"

	"github.com/nyc-osyd/atlas-cli/internal/model"
)

// districtFieldNames are the id field variants seen across published
// district boundary datasets.
var districtFieldNames = []string{"SchoolDist", "school_dist", "schooldist", "DISTRICT", "district"}

// District is one school district's boundary geometry.
type District struct {
	ID    string
	rings [][]float64 // flat XY rings; containment uses the even-odd rule
}

// Contains reports whether the point falls inside the district. Holes
// cancel out: a point inside an odd number of rings is inside the
// district.
func (d *District) Contains(loc model.Location) bool {
	c := geom.Coord{loc.Lon, loc.Lat}
	inside := false
	for _, ring := range d.rings {
		if xy.IsPointInRing(geom.XY, c, ring) {
			inside = !inside
		}
	}
	return inside
}

// LoadDistricts reads district polygons from a shapefile. Records with no
// district id or no geometry are skipped, not fatal.
func LoadDistricts(shpPath string) ([]District, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	idIdx := -1
	for _, name := range districtFieldNames {
		if idIdx = fieldIndex(reader, name); idIdx >= 0 {
			break
		}
	}
	if idIdx < 0 {
		return nil, eris.Errorf("geo: no district id field found (tried %v)", districtFieldNames)
	}

	var districts []District
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()

		id := normalizeDistrictID(reader.Attribute(idIdx))
		poly, ok := shape.(*shp.Polygon)
		if id == "" || !ok || poly.NumParts == 0 {
			skipped++
			continue
		}

		districts = append(districts, District{ID: id, rings: polygonRings(poly)})
	}

	if skipped > 0 {
		zap.L().Debug("geo: skipped shapefile records", zap.Int("skipped", skipped))
	}
	zap.L().Info("geo: districts loaded", zap.Int("districts", len(districts)))
	return districts, nil
}

// AssignDistricts fills in the district id of entities that have a
// location but no district, by point-in-polygon lookup. Returns the number
// assigned.
func AssignDistricts(entities []model.Entity, districts []District) int {
	assigned := 0
	for i := range entities {
		e := &entities[i]
		if e.DistrictID != "" || !e.HasLocation() {
			continue
		}
		for j := range districts {
			if districts[j].Contains(*e.Location) {
				e.DistrictID = districts[j].ID
				assigned++
				break
			}
		}
	}
	return assigned
}

func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}

// normalizeDistrictID pads numeric ids to two digits so they match the
// loader's DBN-derived district ids.
func normalizeDistrictID(raw string) string {
	raw = strings.TrimSpace(strings.TrimRight(raw, "\x00"))
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return ""
	}
	return fmt.Sprintf("%02d", n)
}

func polygonRings(p *shp.Polygon) [][]float64 {
	rings := make([][]float64, 0, p.NumParts)
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}

		ring := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			ring = append(ring, p.Points[j].X, p.Points[j].Y)
		}
		rings = append(rings, ring)
	}
	return rings
}
