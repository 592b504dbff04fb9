package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/dirtybirdnj/vt-geodata/internal/cutout"
	"github.com/dirtybirdnj/vt-geodata/internal/dataset"
	"github.com/dirtybirdnj/vt-geodata/internal/store"
	"github.com/dirtybirdnj/vt-geodata/internal/tiger"
	"github.com/dirtybirdnj/vt-geodata/internal/water"
)

// openStore opens the configured ledger store and runs migrations.
func openStore(ctx context.Context) (store.Store, error) {
	var (
		s   store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "postgres":
		s, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		s, err = store.NewSQLite(cfg.Store.Path)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// readWaterInput accepts either a TIGER AREAWATER shapefile or a GeoJSON
// dataset written by an earlier run.
func readWaterInput(path, state string) ([]water.Feature, error) {
	if strings.HasSuffix(path, ".geojson") || strings.HasSuffix(path, ".json") {
		features, _, err := dataset.ReadWater(path)
		return features, err
	}
	return tiger.ReadAreaWater(path, state)
}

// readBoundaryInput accepts either a TIGER COUSUB shapefile or a towns
// GeoJSON dataset.
func readBoundaryInput(path string) ([]cutout.Boundary, error) {
	if strings.HasSuffix(path, ".geojson") || strings.HasSuffix(path, ".json") {
		boundaries, _, err := dataset.ReadBoundaries(path)
		return boundaries, err
	}
	return tiger.ReadCountySubdivisions(path)
}

// tierFile maps a tier to its dataset file under dir.
func tierFile(dir string, cat water.Category) string {
	name := strings.ReplaceAll(strings.ToLower(string(cat)), " ", "_")
	return filepath.Join(dir, name+".geojson")
}

// loadPartition rebuilds a partition from the three tier datasets in dir.
func loadPartition(dir string) (*water.Partition, error) {
	p := water.NewPartition(cfg.Thresholds)
	for _, cat := range water.Categories {
		features, _, err := dataset.ReadWater(tierFile(dir, cat))
		if err != nil {
			return nil, err
		}
		for _, f := range features {
			p.Add(f, cat)
		}
	}
	return p, nil
}

// writeTierDatasets writes one dataset per tier into dir.
func writeTierDatasets(p *water.Partition, dir, source, state string, editsApplied int) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "create output dir %s", dir)
	}
	for _, cat := range water.Categories {
		c := dataset.FromCategory(p, cat, dataset.Metadata{
			Name:               string(cat),
			Source:             source,
			State:              state,
			ManualEditsApplied: editsApplied,
		})
		if err := c.Write(tierFile(dir, cat)); err != nil {
			return err
		}
	}
	return nil
}

// printTierStats displays per-tier counts and areas.
func printTierStats(p *water.Partition) {
	fmt.Printf("%-12s %8s %14s %12s\n", "Tier", "Count", "Total sq km", "Avg sq km")
	fmt.Println(strings.Repeat("-", 50))
	for _, cat := range water.Categories {
		s := p.Stats(cat)
		fmt.Printf("%-12s %8d %14.2f %12.3f\n", cat, s.Count, s.TotalAreaSqKm, s.AvgAreaSqKm)
	}
}
