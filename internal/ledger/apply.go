package ledger

import (
	"go.uber.org/zap"

	"github.com/dirtybirdnj/vt-geodata/internal/water"
)

// Move records one reclassification the applier performed.
type Move struct {
	HydroID string
	Name    string
	From    water.Category
	To      water.Category
}

// ApplyResult summarizes one replay of the ledger over a partition.
type ApplyResult struct {
	Applied int
	NoOps   int
	Skipped int
	Moves   []Move
	Stats   map[water.Category]water.Stats
}

// Apply replays the ledger over the partition. An edit whose feature is not
// sitting in its from tier is a no-op, so replaying an already-applied
// ledger changes nothing. Edits naming unknown tiers are logged and
// skipped, never fatal. Tier stats are recomputed from the final
// membership.
func Apply(p *water.Partition, l *Ledger) ApplyResult {
	log := zap.L().With(zap.String("component", "ledger.apply"))

	res := ApplyResult{Stats: make(map[water.Category]water.Stats)}
	for _, e := range l.Edits() {
		from, ok := water.NormalizeCategory(e.FromCategory)
		if !ok {
			log.Warn("skipping edit",
				zap.String("hydroid", e.HydroID),
				zap.String("from_category", e.FromCategory),
				zap.Error(ErrEditReference),
			)
			res.Skipped++
			continue
		}
		to, ok := water.NormalizeCategory(e.ToCategory)
		if !ok {
			log.Warn("skipping edit",
				zap.String("hydroid", e.HydroID),
				zap.String("to_category", e.ToCategory),
				zap.Error(ErrEditReference),
			)
			res.Skipped++
			continue
		}

		cur, ok := p.Category(e.HydroID)
		if !ok || cur != from {
			log.Debug("edit is a no-op",
				zap.String("hydroid", e.HydroID),
				zap.String("from", string(from)),
				zap.String("to", string(to)),
			)
			res.NoOps++
			continue
		}
		if !p.Move(e.HydroID, to) {
			res.NoOps++
			continue
		}
		res.Applied++
		res.Moves = append(res.Moves, Move{
			HydroID: e.HydroID,
			Name:    e.DisplayName,
			From:    from,
			To:      to,
		})
	}

	for _, cat := range water.Categories {
		res.Stats[cat] = p.Stats(cat)
	}

	log.Info("ledger applied",
		zap.Int("applied", res.Applied),
		zap.Int("noops", res.NoOps),
		zap.Int("skipped", res.Skipped),
	)
	return res
}
