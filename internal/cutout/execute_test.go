package cutout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dirtybirdnj/vt-geodata/internal/water"
)

func TestPlanExecute(t *testing.T) {
	boundaries := []Boundary{
		{GEOID: "5000710675", Name: "Burlington", Geometry: rect(0, 0, 1, 1)},
		{GEOID: "5001948925", Name: "Newport", Geometry: rect(5, 0, 1, 1)},
		{GEOID: "5002756700", Name: "Rutland", Geometry: rect(10, 0, 1, 1)},
	}
	plan := &Plan{Sources: []Source{
		{Name: "champlain", Selection: "champlain-vt", GEOIDs: []string{"5000710675"}},
		{Name: "memphremagog", Selection: "memphremagog", GEOIDs: []string{"5001948925"}},
	}}

	waterFor := func(src Source) ([]water.Feature, error) {
		switch src.Selection {
		case "champlain-vt":
			return []water.Feature{{HydroID: "C1", Geometry: rect(0, 0, 0.5, 1)}}, nil
		case "memphremagog":
			return []water.Feature{{HydroID: "M1", Geometry: rect(5, 0, 0.25, 1)}}, nil
		}
		return nil, nil
	}

	results, err := plan.Execute(context.Background(), boundaries, waterFor, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)

	burlington := results[0]
	assert.True(t, burlington.Applied)
	assert.Equal(t, "champlain", burlington.WaterSource)
	assert.InDelta(t, 0.5*sqKmPerSqDeg, burlington.RemovedSqKm, 1e-6)

	newport := results[1]
	assert.True(t, newport.Applied)
	assert.Equal(t, "memphremagog", newport.WaterSource)
	assert.InDelta(t, 0.25*sqKmPerSqDeg, newport.RemovedSqKm, 1e-6)

	rutland := results[2]
	assert.False(t, rutland.Applied)
	assert.Empty(t, rutland.WaterSource)
	assert.Equal(t, rutland.OriginalSqKm, rutland.NewSqKm)
}

func TestPlanExecuteCompoundsSources(t *testing.T) {
	// One town trimmed by two sources: original stays pre-plan, removal sums,
	// and the second pass cuts the geometry the first left behind.
	boundaries := []Boundary{
		{GEOID: "A", Name: "Alburgh", Geometry: rect(0, 0, 1, 1)},
	}
	plan := &Plan{Sources: []Source{
		{Name: "west", WaterPath: "west.geojson", GEOIDs: []string{"A"}},
		{Name: "east", WaterPath: "east.geojson", GEOIDs: []string{"A"}},
	}}

	waterFor := func(src Source) ([]water.Feature, error) {
		if src.Name == "west" {
			return []water.Feature{{HydroID: "W", Geometry: rect(0, 0, 0.25, 1)}}, nil
		}
		return []water.Feature{{HydroID: "E", Geometry: rect(0.75, 0, 0.25, 1)}}, nil
	}

	results, err := plan.Execute(context.Background(), boundaries, waterFor, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.True(t, r.Applied)
	assert.Equal(t, "west,east", r.WaterSource)
	assert.InDelta(t, 1.0*sqKmPerSqDeg, r.OriginalSqKm, 1e-6)
	assert.InDelta(t, 0.5*sqKmPerSqDeg, r.NewSqKm, 1e-6)
	assert.InDelta(t, 0.5*sqKmPerSqDeg, r.RemovedSqKm, 1e-6)
}

func TestPlanExecuteResolverError(t *testing.T) {
	plan := &Plan{Sources: []Source{
		{Name: "champlain", Selection: "champlain-vt", GEOIDs: []string{"A"}},
	}}
	waterFor := func(Source) ([]water.Feature, error) {
		return nil, assert.AnError
	}

	_, err := plan.Execute(context.Background(), []Boundary{{GEOID: "A", Geometry: rect(0, 0, 1, 1)}}, waterFor, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}
