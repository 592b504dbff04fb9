package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dirtybirdnj/vt-geodata/internal/water"
)

func applyFixture() *water.Partition {
	p := water.NewPartition(water.DefaultThresholds())
	p.Add(water.Feature{HydroID: "X", Name: "Dead Crk", AreaSqKm: 2}, water.CategorySmallPond)
	p.Add(water.Feature{HydroID: "Y", Name: "Otter Crk", AreaSqKm: 10}, water.CategoryRiver)
	p.Add(water.Feature{HydroID: "Z", Name: "Round Pond", AreaSqKm: 0.3}, water.CategorySmallPond)
	return p
}

func TestApplyMovesAndReplaysIdempotently(t *testing.T) {
	p := applyFixture()

	l := New()
	l.Merge([]EditRecord{
		{HydroID: "X", FromCategory: "Small Pond", ToCategory: "Big Lake", Timestamp: t1},
		{HydroID: "X", FromCategory: "Small Pond", ToCategory: "River", Timestamp: t2},
	})

	res := Apply(p, l)
	assert.Equal(t, 1, res.Applied)
	assert.Equal(t, 0, res.Skipped)
	require.Len(t, res.Moves, 1)
	assert.Equal(t, water.CategoryRiver, res.Moves[0].To)

	cat, ok := p.Category("X")
	require.True(t, ok)
	assert.Equal(t, water.CategoryRiver, cat)

	// Replay: the feature already left its from tier, nothing moves.
	again := Apply(p, l)
	assert.Equal(t, 0, again.Applied)
	assert.Equal(t, 1, again.NoOps)

	cat, _ = p.Category("X")
	assert.Equal(t, water.CategoryRiver, cat)
	assert.Len(t, p.Features(water.CategoryRiver), 2)
}

func TestApplyNormalizesHistoricalLabels(t *testing.T) {
	p := applyFixture()

	l := New()
	l.Merge([]EditRecord{
		{HydroID: "Z", FromCategory: "Small Pond (misc)", ToCategory: "big_lake", Timestamp: t1},
	})

	res := Apply(p, l)
	assert.Equal(t, 1, res.Applied)

	cat, ok := p.Category("Z")
	require.True(t, ok)
	assert.Equal(t, water.CategoryBigLake, cat)
}

func TestApplyUnknownCategorySkipped(t *testing.T) {
	p := applyFixture()

	l := New()
	l.Merge([]EditRecord{
		{HydroID: "X", FromCategory: "wetland", ToCategory: "River", Timestamp: t1},
		{HydroID: "Y", FromCategory: "River", ToCategory: "swamp", Timestamp: t1},
	})

	res := Apply(p, l)
	assert.Equal(t, 0, res.Applied)
	assert.Equal(t, 2, res.Skipped)

	cat, _ := p.Category("X")
	assert.Equal(t, water.CategorySmallPond, cat)
	cat, _ = p.Category("Y")
	assert.Equal(t, water.CategoryRiver, cat)
}

func TestApplyAbsentFeatureIsNoOp(t *testing.T) {
	p := applyFixture()

	l := New()
	l.Merge([]EditRecord{
		{HydroID: "GHOST", FromCategory: "Small Pond", ToCategory: "River", Timestamp: t1},
	})

	res := Apply(p, l)
	assert.Equal(t, 0, res.Applied)
	assert.Equal(t, 1, res.NoOps)
	assert.Equal(t, 3, p.Size())
}

func TestApplyDestinationNeverGainsSecondCopy(t *testing.T) {
	p := applyFixture()

	// Y is already a River; the edit claims it still sits in Small Pond.
	l := New()
	l.Merge([]EditRecord{
		{HydroID: "Y", FromCategory: "Small Pond", ToCategory: "River", Timestamp: t1},
	})

	res := Apply(p, l)
	assert.Equal(t, 0, res.Applied)
	assert.Equal(t, 1, res.NoOps)

	count := 0
	for _, f := range p.Features(water.CategoryRiver) {
		if f.HydroID == "Y" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestApplyRecomputesStats(t *testing.T) {
	p := applyFixture()

	l := New()
	l.Merge([]EditRecord{
		{HydroID: "X", FromCategory: "Small Pond", ToCategory: "River", Timestamp: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
	})

	res := Apply(p, l)
	require.Equal(t, 1, res.Applied)

	river := res.Stats[water.CategoryRiver]
	assert.Equal(t, 2, river.Count)
	assert.InDelta(t, 12.0, river.TotalAreaSqKm, 1e-9)
	assert.InDelta(t, 6.0, river.AvgAreaSqKm, 1e-9)

	pond := res.Stats[water.CategorySmallPond]
	assert.Equal(t, 1, pond.Count)
	assert.InDelta(t, 0.3, pond.TotalAreaSqKm, 1e-9)
}
