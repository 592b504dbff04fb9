package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/twpayne/go-geom"
)

// rect builds a counterclockwise rectangle from (minX, minY) spanning
// width x height degrees.
func rect(minX, minY, width, height float64) *geom.Polygon {
	return geom.NewPolygonFlat(geom.XY, []float64{
		minX, minY,
		minX + width, minY,
		minX + width, minY + height,
		minX, minY + height,
		minX, minY,
	}, []int{10})
}

func TestAreaSqKm(t *testing.T) {
	tests := []struct {
		name     string
		geometry geom.T
		expected float64
	}{
		{
			name:     "tenth degree square",
			geometry: rect(-73.3, 44.5, 0.1, 0.1),
			expected: 0.01 * KmPerDegree * KmPerDegree,
		},
		{
			name: "clockwise winding measures positive",
			geometry: geom.NewPolygonFlat(geom.XY, []float64{
				0, 0,
				0, 0.1,
				0.1, 0.1,
				0.1, 0,
				0, 0,
			}, []int{10}),
			expected: 0.01 * KmPerDegree * KmPerDegree,
		},
		{
			name: "multipolygon sums absolute part areas",
			geometry: geom.NewMultiPolygonFlat(geom.XY, []float64{
				0, 0, 1, 0, 1, 1, 0, 1, 0, 0,
				10, 0, 10.5, 0, 10.5, 0.5, 10, 0.5, 10, 0,
			}, [][]int{{10}, {20}}),
			expected: 1.25 * KmPerDegree * KmPerDegree,
		},
		{
			name:     "nil geometry",
			geometry: nil,
			expected: 0,
		},
		{
			name:     "empty polygon",
			geometry: geom.NewPolygon(geom.XY),
			expected: 0,
		},
		{
			name:     "non-polygonal geometry",
			geometry: geom.NewPointFlat(geom.XY, []float64{-73.2, 44.4}),
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, AreaSqKm(tt.geometry), 1e-9)
		})
	}
}

func TestElongation(t *testing.T) {
	tests := []struct {
		name     string
		geometry geom.T
		expected float64
	}{
		{
			name:     "wide box",
			geometry: rect(0, 0, 0.5, 0.1),
			expected: 5.0,
		},
		{
			name:     "tall box measures the same",
			geometry: rect(0, 0, 0.1, 0.5),
			expected: 5.0,
		},
		{
			name:     "square",
			geometry: rect(-73, 44, 0.2, 0.2),
			expected: 1.0,
		},
		{
			name:     "degenerate point box",
			geometry: geom.NewPointFlat(geom.XY, []float64{1, 1}),
			expected: 0,
		},
		{
			name: "degenerate flat line box",
			geometry: geom.NewLineStringFlat(geom.XY, []float64{
				0, 0, 1, 0,
			}),
			expected: 0,
		},
		{
			name:     "nil geometry",
			geometry: nil,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Elongation(tt.geometry), 1e-9)
		})
	}
}

func TestSurveyAreaSqKm(t *testing.T) {
	assert.InDelta(t, 2.5, SurveyAreaSqKm(2_500_000), 1e-9)
	assert.InDelta(t, 0, SurveyAreaSqKm(0), 1e-9)
}
