package tiger

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/dirtybirdnj/vt-geodata/internal/geo"
	"github.com/dirtybirdnj/vt-geodata/internal/water"
)

// ReadAreaWater reads a TIGER AREAWATER shapefile into water features.
// Every feature gets its planar area and elongation stamped; the AWATER
// survey figure is carried alongside in km². Records without a HYDROID or
// usable geometry are dropped with a logged count.
func ReadAreaWater(shpPath, state string) ([]water.Feature, error) {
	layer, _ := LayerByName("AREAWATER")
	records, err := parseShapefile(shpPath, layer)
	if err != nil {
		return nil, err
	}

	features := make([]water.Feature, 0, len(records))
	var noID int
	for _, rec := range records {
		id := rec.attrs["hydroid"]
		if id == "" {
			noID++
			continue
		}
		f := water.Feature{
			HydroID:  id,
			Name:     rec.attrs["fullname"],
			State:    state,
			Geometry: rec.geom,
		}
		if raw, ok := rec.attrs["awater"]; ok {
			if sqm, parseErr := strconv.ParseFloat(raw, 64); parseErr == nil {
				f.SurveyAreaSqKm = geo.SurveyAreaSqKm(sqm)
			}
		}
		f.Measure()
		features = append(features, f)
	}

	log := zap.L().With(zap.String("component", "tiger.areawater"))
	if noID > 0 {
		log.Warn("dropped records without HYDROID", zap.Int("count", noID))
	}
	log.Info("AREAWATER read",
		zap.String("path", shpPath),
		zap.String("state", state),
		zap.Int("features", len(features)),
	)
	return features, nil
}
