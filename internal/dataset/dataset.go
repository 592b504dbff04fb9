// Package dataset packages classified water tiers, curated selections, and
// trimmed town boundaries into GeoJSON collections with a metadata block,
// and reads them back.
package dataset

import (
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/dirtybirdnj/vt-geodata/internal/water"
)

// StateStats is the per-state slice of a combined collection's metadata.
type StateStats struct {
	Count         int     `json:"count"`
	TotalAreaSqKm float64 `json:"total_area_sqkm"`
}

// Metadata describes a collection: where it came from, what it holds, and
// the configuration that produced it.
type Metadata struct {
	Name               string                `json:"name"`
	Description        string                `json:"description,omitempty"`
	Source             string                `json:"source,omitempty"`
	State              string                `json:"state,omitempty"`
	Counties           []string              `json:"counties,omitempty"`
	FeaturesCount      int                   `json:"features_count"`
	TotalAreaSqKm      float64               `json:"total_area_sqkm"`
	AvgAreaSqKm        float64               `json:"avg_area_sqkm"`
	Thresholds         *water.Thresholds     `json:"thresholds,omitempty"`
	ManualEditsApplied int                   `json:"manual_edits_applied,omitempty"`
	MissingHydroIDs    []string              `json:"missing_hydroids,omitempty"`
	TownsTrimmed       int                   `json:"towns_trimmed,omitempty"`
	WaterRemovedSqKm   float64               `json:"water_removed_sqkm,omitempty"`
	WaterSources       []string              `json:"water_sources,omitempty"`
	PerState           map[string]StateStats `json:"per_state,omitempty"`
	GeneratedAt        time.Time             `json:"generated_at"`
	BuildID            string                `json:"build_id,omitempty"`
}

// Collection is a GeoJSON FeatureCollection with a metadata sibling block,
// the shape the published datasets use.
type Collection struct {
	Type     string             `json:"type"`
	Metadata Metadata           `json:"metadata"`
	Features []*geojson.Feature `json:"features"`
}

// newCollection stamps the invariant fields every builder shares.
func newCollection(meta Metadata, features []*geojson.Feature) *Collection {
	if features == nil {
		features = []*geojson.Feature{}
	}
	meta.FeaturesCount = len(features)
	if meta.GeneratedAt.IsZero() {
		meta.GeneratedAt = time.Now().UTC()
	}
	if meta.BuildID == "" {
		meta.BuildID = uuid.New().String()
	}
	return &Collection{Type: "FeatureCollection", Metadata: meta, Features: features}
}

// Write renders the collection as indented GeoJSON at path.
func (c *Collection) Write(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "dataset: encode %s", c.Metadata.Name)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "dataset: write %s", path)
	}
	return nil
}

// Read loads a collection from a GeoJSON file.
func Read(path string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: read %s", path)
	}
	var c Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, eris.Wrapf(err, "dataset: parse %s", path)
	}
	return &c, nil
}

// propString reads a string property, tolerating absence.
func propString(f *geojson.Feature, key string) string {
	if f.Properties == nil {
		return ""
	}
	if v, ok := f.Properties[key].(string); ok {
		return v
	}
	return ""
}

// propFloat reads a numeric property, tolerating absence.
func propFloat(f *geojson.Feature, key string) float64 {
	if f.Properties == nil {
		return 0
	}
	if v, ok := f.Properties[key].(float64); ok {
		return v
	}
	return 0
}

// propBool reads a boolean property, tolerating absence.
func propBool(f *geojson.Feature, key string) bool {
	if f.Properties == nil {
		return false
	}
	if v, ok := f.Properties[key].(bool); ok {
		return v
	}
	return false
}
