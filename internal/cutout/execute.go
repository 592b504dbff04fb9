package cutout

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dirtybirdnj/vt-geodata/internal/geo"
	"github.com/dirtybirdnj/vt-geodata/internal/water"
)

// WaterResolver materializes the water features for one plan source, from a
// curated selection or a dataset on disk.
type WaterResolver func(Source) ([]water.Feature, error)

// Execute runs the plan over the boundaries: one Trim pass per source, each
// pass operating on the geometry the previous passes left behind. The
// returned results keep boundary input order and fold the passes together,
// so a town trimmed by two sources reports its pre-plan original area and
// the summed removal.
func (p *Plan) Execute(ctx context.Context, boundaries []Boundary, waterFor WaterResolver, concurrency int) ([]Result, error) {
	log := zap.L().With(zap.String("component", "cutout.plan"))

	final := make([]Result, len(boundaries))
	current := make([]Boundary, len(boundaries))
	copy(current, boundaries)
	for i, b := range boundaries {
		original := b.LandAreaSqKm
		if original <= 0 {
			original = geo.AreaSqKm(b.Geometry)
		}
		final[i] = Result{Boundary: b, OriginalSqKm: original, NewSqKm: original}
	}

	for _, src := range p.Sources {
		waterFeatures, err := waterFor(src)
		if err != nil {
			return nil, eris.Wrapf(err, "cutout: resolve water for source %q", src.Name)
		}

		results, err := Trim(ctx, current, waterFeatures, Options{
			WaterSource: src.Name,
			GEOIDs:      src.GEOIDs,
			Concurrency: concurrency,
		})
		if err != nil {
			return nil, eris.Wrapf(err, "cutout: trim with source %q", src.Name)
		}

		for i, r := range results {
			switch {
			case r.Applied:
				final[i] = foldPass(final[i], r)
				// Later sources trim the already-trimmed geometry; the
				// planar figure replaces the survey one from here on.
				current[i].Geometry = r.Boundary.Geometry
				current[i].LandAreaSqKm = r.NewSqKm
			case r.Err != nil:
				final[i].Err = r.Err
				if final[i].WaterSource == "" {
					final[i].WaterSource = r.WaterSource
				}
			}
		}

		s := Summarize(results)
		log.Info("plan source applied",
			zap.String("source", src.Name),
			zap.Int("trimmed", s.Trimmed),
			zap.Int("failed", s.Failed),
			zap.Float64("removed_sqkm", s.RemovedSqKm),
		)
	}
	return final, nil
}

// foldPass merges one pass result onto the accumulated one for the same
// boundary.
func foldPass(prev, r Result) Result {
	folded := r
	folded.Boundary.LandAreaSqKm = prev.Boundary.LandAreaSqKm
	folded.Boundary.WaterAreaSqKm = prev.Boundary.WaterAreaSqKm
	folded.OriginalSqKm = prev.OriginalSqKm
	folded.RemovedSqKm = prev.RemovedSqKm + r.RemovedSqKm
	if prev.Applied && prev.WaterSource != "" {
		folded.WaterSource = prev.WaterSource + "," + r.WaterSource
	}
	return folded
}
