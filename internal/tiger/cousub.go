package tiger

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/dirtybirdnj/vt-geodata/internal/cutout"
	"github.com/dirtybirdnj/vt-geodata/internal/geo"
)

// ReadCountySubdivisions reads a TIGER COUSUB shapefile into town
// boundaries. ALAND and AWATER survey figures are converted to km² once,
// here; county names are attached from the Vermont COUNTYFP table when the
// code is known.
func ReadCountySubdivisions(shpPath string) ([]cutout.Boundary, error) {
	layer, _ := LayerByName("COUSUB")
	records, err := parseShapefile(shpPath, layer)
	if err != nil {
		return nil, err
	}

	boundaries := make([]cutout.Boundary, 0, len(records))
	var noID int
	for _, rec := range records {
		id := rec.attrs["geoid"]
		if id == "" {
			noID++
			continue
		}
		b := cutout.Boundary{
			GEOID:      id,
			Name:       rec.attrs["name"],
			CountyFIPS: rec.attrs["countyfp"],
			State:      rec.attrs["statefp"],
			Geometry:   rec.geom,
		}
		// COUNTYFP codes repeat across states; only Vermont towns get a
		// county name from the table.
		if b.State == StateFIPS["VT"] {
			if name, ok := CountyName(b.CountyFIPS); ok {
				b.CountyName = name
			}
		}
		if raw, ok := rec.attrs["aland"]; ok {
			if sqm, parseErr := strconv.ParseFloat(raw, 64); parseErr == nil {
				b.LandAreaSqKm = geo.SurveyAreaSqKm(sqm)
			}
		}
		if raw, ok := rec.attrs["awater"]; ok {
			if sqm, parseErr := strconv.ParseFloat(raw, 64); parseErr == nil {
				b.WaterAreaSqKm = geo.SurveyAreaSqKm(sqm)
			}
		}
		boundaries = append(boundaries, b)
	}

	log := zap.L().With(zap.String("component", "tiger.cousub"))
	if noID > 0 {
		log.Warn("dropped records without GEOID", zap.Int("count", noID))
	}
	log.Info("COUSUB read",
		zap.String("path", shpPath),
		zap.Int("boundaries", len(boundaries)),
	)
	return boundaries, nil
}
