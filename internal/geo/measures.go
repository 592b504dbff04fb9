// Package geo provides planar measures and set operations for polygonal
// TIGER geometries.
package geo

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// ErrDataShape indicates source data whose shape cannot be read as
// polygonal geometry.
var ErrDataShape = eris.New("unusable geometry data shape")

// KmPerDegree is the approximate ground distance spanned by one degree of
// latitude or longitude. Planar areas in square degrees scale by its square.
const KmPerDegree = 111.0

// AreaSqKm returns the planar area of g in square kilometers. Ring winding
// is ignored: every polygon contributes the absolute value of its signed
// area. Nil and empty geometries measure zero.
func AreaSqKm(g geom.T) float64 {
	return degreeArea(g) * KmPerDegree * KmPerDegree
}

// SurveyAreaSqKm converts a Census survey area in square meters (ALAND,
// AWATER) to square kilometers.
func SurveyAreaSqKm(sqMeters float64) float64 {
	return sqMeters / 1e6
}

// Elongation returns the ratio of the longer to the shorter side of the
// geometry's bounding box. Boxes with a zero-length side return zero.
func Elongation(g geom.T) float64 {
	if g == nil || g.Empty() {
		return 0
	}
	b := g.Bounds()
	w := b.Max(0) - b.Min(0)
	h := b.Max(1) - b.Min(1)
	if w <= 0 || h <= 0 {
		return 0
	}
	if w > h {
		return w / h
	}
	return h / w
}

func degreeArea(g geom.T) float64 {
	switch p := g.(type) {
	case *geom.Polygon:
		return math.Abs(p.Area())
	case *geom.MultiPolygon:
		var sum float64
		for i := 0; i < p.NumPolygons(); i++ {
			sum += math.Abs(p.Polygon(i).Area())
		}
		return sum
	default:
		return 0
	}
}
