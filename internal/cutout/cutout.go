// Package cutout subtracts water-polygon unions from municipal boundary
// polygons, producing shoreline-accurate land geometries with recomputed
// areas.
package cutout

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dirtybirdnj/vt-geodata/internal/geo"
	"github.com/dirtybirdnj/vt-geodata/internal/water"
)

// Boundary is one municipal polygon from a TIGER county-subdivision file.
// Survey areas are square kilometers.
type Boundary struct {
	GEOID         string
	Name          string
	CountyFIPS    string
	CountyName    string
	State         string
	Geometry      geom.T
	LandAreaSqKm  float64
	WaterAreaSqKm float64
}

// Result is one boundary after a trim pass. Unselected boundaries keep
// their original geometry with Applied false; a failed difference keeps the
// original geometry and carries Err.
type Result struct {
	Boundary     Boundary
	Applied      bool
	WaterSource  string
	OriginalSqKm float64
	NewSqKm      float64
	RemovedSqKm  float64
	Err          error
}

// Options configures one trim pass.
type Options struct {
	// WaterSource labels the water union on trimmed boundaries.
	WaterSource string
	// GEOIDs selects the boundaries to trim. Unlisted boundaries pass
	// through untouched.
	GEOIDs []string
	// Concurrency bounds the parallel difference calls (default 4).
	Concurrency int
}

// Trim subtracts the union of waterFeatures from every selected boundary.
// Results keep the input boundary order. The water union is built once per
// invocation; callers combining several water sources run Trim once per
// source and concatenate the results.
func Trim(ctx context.Context, boundaries []Boundary, waterFeatures []water.Feature, opts Options) ([]Result, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	log := zap.L().With(
		zap.String("component", "cutout.trim"),
		zap.String("water_source", opts.WaterSource),
	)

	selected := make(map[string]bool, len(opts.GEOIDs))
	for _, id := range opts.GEOIDs {
		selected[id] = true
	}

	geoms := make([]geom.T, 0, len(waterFeatures))
	for _, f := range waterFeatures {
		if f.Geometry != nil {
			geoms = append(geoms, f.Geometry)
		}
	}
	sub, err := geo.NewSubtractor(geoms)
	if err != nil {
		return nil, eris.Wrapf(err, "cutout: union %d water features", len(geoms))
	}
	defer sub.Close()

	log.Info("water union ready",
		zap.Int("water_features", len(geoms)),
		zap.Int("selected_towns", len(selected)),
	)

	results := make([]Result, len(boundaries))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i := range boundaries {
		idx := i
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			b := boundaries[idx]
			results[idx] = trimOne(b, sub, selected[b.GEOID], opts.WaterSource, log)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "cutout: trim boundaries")
	}
	return results, nil
}

// trimOne cuts the water union out of a single boundary. The original area
// is the survey figure when present, the planar area otherwise.
func trimOne(b Boundary, sub *geo.Subtractor, selected bool, source string, log *zap.Logger) Result {
	original := b.LandAreaSqKm
	if original <= 0 {
		original = geo.AreaSqKm(b.Geometry)
	}

	if !selected {
		return Result{Boundary: b, OriginalSqKm: original, NewSqKm: original}
	}

	trimmed, err := sub.Difference(b.Geometry)
	if err != nil {
		log.Warn("difference failed, boundary passed through",
			zap.String("geoid", b.GEOID),
			zap.String("town", b.Name),
			zap.Error(err),
		)
		return Result{
			Boundary:     b,
			WaterSource:  source,
			OriginalSqKm: original,
			NewSqKm:      original,
			Err:          err,
		}
	}

	b.Geometry = trimmed
	newArea := geo.AreaSqKm(trimmed)
	removed := original - newArea
	if removed < 0 {
		log.Warn("negative water removal, survey and planar areas disagree",
			zap.String("geoid", b.GEOID),
			zap.String("town", b.Name),
			zap.Float64("original_sqkm", original),
			zap.Float64("new_sqkm", newArea),
		)
	}
	log.Debug("boundary trimmed",
		zap.String("geoid", b.GEOID),
		zap.String("town", b.Name),
		zap.Float64("removed_sqkm", removed),
	)
	return Result{
		Boundary:     b,
		Applied:      true,
		WaterSource:  source,
		OriginalSqKm: original,
		NewSqKm:      newArea,
		RemovedSqKm:  removed,
	}
}

// Summary aggregates one or more trim passes.
type Summary struct {
	Total       int
	Trimmed     int
	Unchanged   int
	Failed      int
	RemovedSqKm float64
}

// Summarize folds results into totals for reporting.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		s.Total++
		switch {
		case r.Err != nil:
			s.Failed++
		case r.Applied:
			s.Trimmed++
			s.RemovedSqKm += r.RemovedSqKm
		default:
			s.Unchanged++
		}
	}
	return s
}
