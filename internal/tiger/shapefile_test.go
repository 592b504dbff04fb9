package tiger

import (
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolygonToMultiPolygon(t *testing.T) {
	poly := &shp.Polygon{
		NumParts:  1,
		NumPoints: 5,
		Parts:     []int32{0},
		Points: []shp.Point{
			{X: -73.0, Y: 44.0},
			{X: -73.0, Y: 45.0},
			{X: -72.0, Y: 45.0},
			{X: -72.0, Y: 44.0},
			{X: -73.0, Y: 44.0},
		},
	}

	mp := polygonToMultiPolygon(poly)
	require.NotNil(t, mp)
	assert.Equal(t, 1, mp.NumPolygons())
	assert.Equal(t, 4326, mp.SRID())
}

func TestPolygonToMultiPolygon_MultiPart(t *testing.T) {
	poly := &shp.Polygon{
		NumParts:  2,
		NumPoints: 10,
		Parts:     []int32{0, 5},
		Points: []shp.Point{
			{X: -73.0, Y: 44.0},
			{X: -73.0, Y: 45.0},
			{X: -72.0, Y: 45.0},
			{X: -72.0, Y: 44.0},
			{X: -73.0, Y: 44.0},
			{X: -71.0, Y: 44.0},
			{X: -71.0, Y: 44.5},
			{X: -70.5, Y: 44.5},
			{X: -70.5, Y: 44.0},
			{X: -71.0, Y: 44.0},
		},
	}

	mp := polygonToMultiPolygon(poly)
	require.NotNil(t, mp)
	assert.Equal(t, 2, mp.NumPolygons())
}

func TestPolygonToMultiPolygon_Empty(t *testing.T) {
	assert.Nil(t, polygonToMultiPolygon(nil))
	assert.Nil(t, polygonToMultiPolygon(&shp.Polygon{}))
}

// writeFixture builds a small polygon shapefile with string/float DBF
// attributes for the reader tests.
func writeFixture(t *testing.T, name string, fields []shp.Field, rows []fixtureRow) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)

	w.SetFields(fields)
	for i, row := range rows {
		w.Write(row.shape)
		for j, val := range row.attrs {
			w.WriteAttribute(i, j, val)
		}
	}
	w.Close()
	return path
}

type fixtureRow struct {
	shape *shp.Polygon
	attrs []any
}

// square returns a closed unit-ish square polygon at the given origin.
func square(x, y, side float64) *shp.Polygon {
	return &shp.Polygon{
		NumParts:  1,
		NumPoints: 5,
		Parts:     []int32{0},
		Points: []shp.Point{
			{X: x, Y: y},
			{X: x, Y: y + side},
			{X: x + side, Y: y + side},
			{X: x + side, Y: y},
			{X: x, Y: y},
		},
	}
}
