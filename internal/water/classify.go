package water

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"
)

// Thresholds carries the classification cutoffs. Areas are square
// kilometers.
type Thresholds struct {
	BigLakeMinArea      float64 `mapstructure:"big_lake_min_area" yaml:"big_lake_min_area" json:"big_lake_min_area"`
	UnnamedLargeMinArea float64 `mapstructure:"unnamed_large_min_area" yaml:"unnamed_large_min_area" json:"unnamed_large_min_area"`
	SmallPondMaxArea    float64 `mapstructure:"small_pond_max_area" yaml:"small_pond_max_area" json:"small_pond_max_area"`
	RiverMinElongation  float64 `mapstructure:"river_min_elongation" yaml:"river_min_elongation" json:"river_min_elongation"`
}

// DefaultThresholds returns the cutoffs the published datasets were built
// with.
func DefaultThresholds() Thresholds {
	return Thresholds{
		BigLakeMinArea:      100,
		UnnamedLargeMinArea: 50,
		SmallPondMaxArea:    0.5,
		RiverMinElongation:  5,
	}
}

// Classify assigns one feature to a tier. Rules, first match wins:
//   - Big Lake: area >= BigLakeMinArea, or the name contains "champlain"
//     (case-insensitive), or the feature is unnamed with
//     area >= UnnamedLargeMinArea
//   - River: SmallPondMaxArea <= area < BigLakeMinArea and
//     elongation >= RiverMinElongation
//   - Small Pond: everything else
func Classify(f Feature, th Thresholds) Category {
	switch {
	case f.AreaSqKm >= th.BigLakeMinArea:
		return CategoryBigLake
	case strings.Contains(strings.ToLower(f.Name), "champlain"):
		return CategoryBigLake
	case !f.Named() && f.AreaSqKm >= th.UnnamedLargeMinArea:
		return CategoryBigLake
	case f.AreaSqKm >= th.SmallPondMaxArea && f.AreaSqKm < th.BigLakeMinArea &&
		f.Elongation >= th.RiverMinElongation:
		return CategoryRiver
	default:
		return CategorySmallPond
	}
}

// ClassifyAll partitions features into tiers. Features are classified in
// parallel; tier membership keeps input order regardless of concurrency.
func ClassifyAll(ctx context.Context, features []Feature, th Thresholds, concurrency int) (*Partition, error) {
	if concurrency <= 0 {
		concurrency = 4
	}

	categories := make([]Category, len(features))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := range features {
		idx := i
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			categories[idx] = Classify(features[idx], th)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "water: classify features")
	}

	p := NewPartition(th)
	for i, f := range features {
		p.Add(f, categories[i])
	}
	return p, nil
}
