package water

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func TestClassify(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name     string
		feature  Feature
		expected Category
	}{
		{
			name:     "big lake: area at threshold",
			feature:  Feature{HydroID: "W1", Name: "Lake Memphremagog", AreaSqKm: 100, Elongation: 2},
			expected: CategoryBigLake,
		},
		{
			name:     "big lake: champlain name overrides small area",
			feature:  Feature{HydroID: "W2", Name: "Lk Champlain", AreaSqKm: 45, Elongation: 1.2},
			expected: CategoryBigLake,
		},
		{
			name:     "big lake: champlain override is case-insensitive",
			feature:  Feature{HydroID: "W3", Name: "LAKE CHAMPLAIN", AreaSqKm: 0.2, Elongation: 1},
			expected: CategoryBigLake,
		},
		{
			name:     "big lake: unnamed large feature",
			feature:  Feature{HydroID: "W4", AreaSqKm: 60, Elongation: 1.5},
			expected: CategoryBigLake,
		},
		{
			name:     "small pond: unnamed below unnamed-large floor",
			feature:  Feature{HydroID: "W5", AreaSqKm: 40, Elongation: 1.5},
			expected: CategorySmallPond,
		},
		{
			name:     "river: elongated medium feature",
			feature:  Feature{HydroID: "W6", Name: "Otter Crk", AreaSqKm: 10, Elongation: 8},
			expected: CategoryRiver,
		},
		{
			name:     "river: floor and elongation are inclusive",
			feature:  Feature{HydroID: "W7", Name: "Mill Brk", AreaSqKm: 0.5, Elongation: 5},
			expected: CategoryRiver,
		},
		{
			name:     "small pond: compact medium feature",
			feature:  Feature{HydroID: "W8", Name: "Shelburne Pond", AreaSqKm: 10, Elongation: 2},
			expected: CategorySmallPond,
		},
		{
			name:     "small pond: elongated but below river floor",
			feature:  Feature{HydroID: "W9", Name: "Roadside Ditch", AreaSqKm: 0.4, Elongation: 9},
			expected: CategorySmallPond,
		},
		{
			name:     "small pond: whitespace-only name counts as unnamed",
			feature:  Feature{HydroID: "W10", Name: "   ", AreaSqKm: 3, Elongation: 1},
			expected: CategorySmallPond,
		},
		{
			name:     "big lake: whitespace-only name with large area",
			feature:  Feature{HydroID: "W11", Name: "   ", AreaSqKm: 55, Elongation: 1},
			expected: CategoryBigLake,
		},
		{
			name:     "small pond: zero-area degenerate feature",
			feature:  Feature{HydroID: "W12", Name: "Sliver"},
			expected: CategorySmallPond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.feature, th))
		})
	}
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		label    string
		expected Category
		ok       bool
	}{
		{"Big Lake", CategoryBigLake, true},
		{"big_lake", CategoryBigLake, true},
		{"BIG LAKE", CategoryBigLake, true},
		{"River", CategoryRiver, true},
		{"Rivers & Streams", CategoryRiver, true},
		{"Small Pond", CategorySmallPond, true},
		{"Small Pond (misc)", CategorySmallPond, true},
		{"small_pond", CategorySmallPond, true},
		{"wetland", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			cat, ok := NormalizeCategory(tt.label)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, cat)
		})
	}
}

func classifyFixture() []Feature {
	return []Feature{
		{HydroID: "A", Name: "Lk Champlain", AreaSqKm: 45, Elongation: 1.2},
		{HydroID: "B", AreaSqKm: 60, Elongation: 1.5},
		{HydroID: "C", Name: "Otter Crk", AreaSqKm: 10, Elongation: 8},
		{HydroID: "D", Name: "Shelburne Pond", AreaSqKm: 3.5, Elongation: 1.3},
		{HydroID: "E", AreaSqKm: 40, Elongation: 1.1},
		{HydroID: "F", Name: "Winooski Riv", AreaSqKm: 6, Elongation: 12},
	}
}

func TestClassifyAll_PartitionCompleteness(t *testing.T) {
	features := classifyFixture()
	p, err := ClassifyAll(context.Background(), features, DefaultThresholds(), 3)
	require.NoError(t, err)
	require.Equal(t, len(features), p.Size())

	total := 0
	seen := map[string]bool{}
	for _, cat := range Categories {
		for _, f := range p.Features(cat) {
			assert.False(t, seen[f.HydroID], "feature %s in two tiers", f.HydroID)
			seen[f.HydroID] = true
			total++
		}
	}
	assert.Equal(t, len(features), total)
}

func TestClassifyAll_DeterministicAcrossConcurrency(t *testing.T) {
	features := classifyFixture()

	serial, err := ClassifyAll(context.Background(), features, DefaultThresholds(), 1)
	require.NoError(t, err)
	parallel, err := ClassifyAll(context.Background(), features, DefaultThresholds(), 8)
	require.NoError(t, err)

	for _, cat := range Categories {
		var serialIDs, parallelIDs []string
		for _, f := range serial.Features(cat) {
			serialIDs = append(serialIDs, f.HydroID)
		}
		for _, f := range parallel.Features(cat) {
			parallelIDs = append(parallelIDs, f.HydroID)
		}
		assert.Equal(t, serialIDs, parallelIDs, "tier %s order depends on concurrency", cat)
	}
}

func TestFeatureMeasure(t *testing.T) {
	square := geom.NewPolygonFlat(geom.XY, []float64{
		0, 0,
		0.1, 0,
		0.1, 0.1,
		0, 0.1,
		0, 0,
	}, []int{10})

	f := Feature{HydroID: "W1", Geometry: square}
	f.Measure()
	assert.InDelta(t, 123.21, f.AreaSqKm, 1e-9)
	assert.InDelta(t, 1.0, f.Elongation, 1e-9)

	empty := Feature{HydroID: "W2"}
	empty.Measure()
	assert.Zero(t, empty.AreaSqKm)
	assert.Zero(t, empty.Elongation)
}
