package dataset

import (
	"sort"

	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/dirtybirdnj/vt-geodata/internal/cutout"
)

// townProps renders the shared boundary attributes.
func townProps(b cutout.Boundary) map[string]any {
	props := map[string]any{
		"geoid": b.GEOID,
		"name":  b.Name,
	}
	if b.CountyFIPS != "" {
		props["county_fips"] = b.CountyFIPS
	}
	if b.CountyName != "" {
		props["county_name"] = b.CountyName
	}
	if b.State != "" {
		props["state"] = b.State
	}
	return props
}

// FromBoundaries packages town boundaries with their survey areas: the
// towns dataset that feeds the cutout stage and publishes on its own.
func FromBoundaries(boundaries []cutout.Boundary, meta Metadata) *Collection {
	features := make([]*geojson.Feature, 0, len(boundaries))
	counties := make(map[string]bool)
	var totalLand float64

	for _, b := range boundaries {
		props := townProps(b)
		props["land_area_sqkm"] = b.LandAreaSqKm
		props["water_area_sqkm"] = b.WaterAreaSqKm
		props["total_area_sqkm"] = b.LandAreaSqKm + b.WaterAreaSqKm
		features = append(features, &geojson.Feature{
			ID:         b.GEOID,
			Geometry:   b.Geometry,
			Properties: props,
		})
		totalLand += b.LandAreaSqKm
		if b.CountyName != "" {
			counties[b.CountyName] = true
		}
	}

	meta.TotalAreaSqKm = totalLand
	if len(boundaries) > 0 {
		meta.AvgAreaSqKm = totalLand / float64(len(boundaries))
	}
	meta.Counties = sortedKeys(counties)
	return newCollection(meta, features)
}

// FromTrimResults packages cutout results: every town annotated with its
// original, new, and removed areas, trimmed or not.
func FromTrimResults(results []cutout.Result, meta Metadata) *Collection {
	features := make([]*geojson.Feature, 0, len(results))
	sources := make(map[string]bool)
	summary := cutout.Summarize(results)

	for _, r := range results {
		props := townProps(r.Boundary)
		props["original_land_area_sqkm"] = r.OriginalSqKm
		props["new_land_area_sqkm"] = r.NewSqKm
		props["water_removed_sqkm"] = r.RemovedSqKm
		props["water_cutout_applied"] = r.Applied
		if r.WaterSource != "" {
			props["water_source"] = r.WaterSource
			sources[r.WaterSource] = true
		}
		if r.Err != nil {
			props["cutout_error"] = r.Err.Error()
		}
		features = append(features, &geojson.Feature{
			ID:         r.Boundary.GEOID,
			Geometry:   r.Boundary.Geometry,
			Properties: props,
		})
	}

	meta.TownsTrimmed = summary.Trimmed
	meta.WaterRemovedSqKm = summary.RemovedSqKm
	meta.WaterSources = sortedKeys(sources)

	var totalNew float64
	for _, r := range results {
		totalNew += r.NewSqKm
	}
	meta.TotalAreaSqKm = totalNew
	if len(results) > 0 {
		meta.AvgAreaSqKm = totalNew / float64(len(results))
	}
	return newCollection(meta, features)
}

// Boundaries converts the collection back to boundary values. The land
// figure prefers the survey-derived property; post-cutout collections carry
// it as new_land_area_sqkm.
func (c *Collection) Boundaries() []cutout.Boundary {
	boundaries := make([]cutout.Boundary, 0, len(c.Features))
	for _, gf := range c.Features {
		id := gf.ID
		if id == "" {
			id = propString(gf, "geoid")
		}
		land := propFloat(gf, "land_area_sqkm")
		if land == 0 && propBool(gf, "water_cutout_applied") {
			land = propFloat(gf, "new_land_area_sqkm")
		}
		boundaries = append(boundaries, cutout.Boundary{
			GEOID:         id,
			Name:          propString(gf, "name"),
			CountyFIPS:    propString(gf, "county_fips"),
			CountyName:    propString(gf, "county_name"),
			State:         propString(gf, "state"),
			Geometry:      gf.Geometry,
			LandAreaSqKm:  land,
			WaterAreaSqKm: propFloat(gf, "water_area_sqkm"),
		})
	}
	return boundaries
}

// ReadBoundaries loads a towns collection and converts it to boundaries.
func ReadBoundaries(path string) ([]cutout.Boundary, Metadata, error) {
	c, err := Read(path)
	if err != nil {
		return nil, Metadata{}, err
	}
	return c.Boundaries(), c.Metadata, nil
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
