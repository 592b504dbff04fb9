// Package water classifies TIGER AREAWATER features into the published
// lake, river, and pond tiers and carries the curated feature selections.
package water

import (
	"strings"

	"github.com/twpayne/go-geom"

	"github.com/dirtybirdnj/vt-geodata/internal/geo"
)

// Category is a water classification tier.
type Category string

// Canonical tier labels as they appear in dataset properties.
const (
	CategoryBigLake   Category = "Big Lake"
	CategoryRiver     Category = "River"
	CategorySmallPond Category = "Small Pond"
)

// Categories lists the tiers in presentation order.
var Categories = []Category{CategoryBigLake, CategoryRiver, CategorySmallPond}

// NormalizeCategory maps a free-form tier label onto its canonical
// Category. Historical variants ("Small Pond (misc)", "big_lake") collapse
// by case-insensitive substring. The second return is false for labels that
// match no tier.
func NormalizeCategory(label string) (Category, bool) {
	s := strings.ToLower(strings.ReplaceAll(label, "_", " "))
	switch {
	case strings.Contains(s, "small pond"):
		return CategorySmallPond, true
	case strings.Contains(s, "river"):
		return CategoryRiver, true
	case strings.Contains(s, "big lake"):
		return CategoryBigLake, true
	}
	return "", false
}

// Feature is one polygonal water record from a TIGER AREAWATER file.
// Tier membership lives in the Partition, not on the feature. AreaSqKm is
// the planar area driving classification; SurveyAreaSqKm carries the AWATER
// figure (already in km²) when the source provides one.
type Feature struct {
	HydroID        string
	Name           string
	CountyFIPS     string
	State          string
	Geometry       geom.T
	AreaSqKm       float64
	SurveyAreaSqKm float64
	Elongation     float64
}

// Named reports whether the feature carries a display name.
func (f Feature) Named() bool {
	return strings.TrimSpace(f.Name) != ""
}

// Measure stamps the planar AreaSqKm and Elongation on f from its geometry.
func (f *Feature) Measure() {
	f.AreaSqKm = geo.AreaSqKm(f.Geometry)
	f.Elongation = geo.Elongation(f.Geometry)
}
