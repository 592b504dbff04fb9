package dataset

import (
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/dirtybirdnj/vt-geodata/internal/water"
)

// waterFeature renders one water feature with its derived measures.
func waterFeature(f water.Feature, category water.Category) *geojson.Feature {
	props := map[string]any{
		"hydroid":    f.HydroID,
		"area_sqkm":  f.AreaSqKm,
		"elongation": f.Elongation,
	}
	if f.Name != "" {
		props["fullname"] = f.Name
	}
	if f.State != "" {
		props["state"] = f.State
	}
	if f.SurveyAreaSqKm > 0 {
		props["survey_area_sqkm"] = f.SurveyAreaSqKm
	}
	if category != "" {
		props["category"] = string(category)
	}
	return &geojson.Feature{
		ID:         f.HydroID,
		Geometry:   f.Geometry,
		Properties: props,
	}
}

// FromCategory packages one tier of a partition. Stats and thresholds come
// from the partition itself, never from stale figures.
func FromCategory(p *water.Partition, cat water.Category, meta Metadata) *Collection {
	members := p.Features(cat)
	features := make([]*geojson.Feature, 0, len(members))
	for _, f := range members {
		features = append(features, waterFeature(f, cat))
	}

	stats := p.Stats(cat)
	meta.TotalAreaSqKm = stats.TotalAreaSqKm
	meta.AvgAreaSqKm = stats.AvgAreaSqKm
	th := p.Thresholds()
	meta.Thresholds = &th

	return newCollection(meta, features)
}

// FromWaterFeatures packages a curated selection of water features.
func FromWaterFeatures(selected []water.Feature, meta Metadata) *Collection {
	features := make([]*geojson.Feature, 0, len(selected))
	var total float64
	for _, f := range selected {
		features = append(features, waterFeature(f, ""))
		total += f.AreaSqKm
	}
	meta.TotalAreaSqKm = total
	if len(selected) > 0 {
		meta.AvgAreaSqKm = total / float64(len(selected))
	}
	return newCollection(meta, features)
}

// Combine concatenates selections from multiple states into one collection,
// preserving per-state counts and area sums in the metadata.
func Combine(meta Metadata, collections ...*Collection) *Collection {
	var features []*geojson.Feature
	perState := make(map[string]StateStats)
	var total float64

	for _, c := range collections {
		features = append(features, c.Features...)
		total += c.Metadata.TotalAreaSqKm

		state := c.Metadata.State
		if state == "" {
			state = c.Metadata.Name
		}
		s := perState[state]
		s.Count += c.Metadata.FeaturesCount
		s.TotalAreaSqKm += c.Metadata.TotalAreaSqKm
		perState[state] = s
	}

	meta.TotalAreaSqKm = total
	if len(features) > 0 {
		meta.AvgAreaSqKm = total / float64(len(features))
	}
	meta.PerState = perState
	return newCollection(meta, features)
}

// WaterFeatures converts the collection back to domain features, remeasuring
// geometry rather than trusting stored figures.
func (c *Collection) WaterFeatures() []water.Feature {
	features := make([]water.Feature, 0, len(c.Features))
	for _, gf := range c.Features {
		id := gf.ID
		if id == "" {
			id = propString(gf, "hydroid")
		}
		f := water.Feature{
			HydroID:        id,
			Name:           propString(gf, "fullname"),
			State:          propString(gf, "state"),
			Geometry:       gf.Geometry,
			SurveyAreaSqKm: propFloat(gf, "survey_area_sqkm"),
		}
		f.Measure()
		features = append(features, f)
	}
	return features
}

// ReadWater loads a water collection and converts it to domain features.
func ReadWater(path string) ([]water.Feature, Metadata, error) {
	c, err := Read(path)
	if err != nil {
		return nil, Metadata{}, err
	}
	return c.WaterFeatures(), c.Metadata, nil
}
