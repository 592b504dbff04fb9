package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dirtybirdnj/vt-geodata/internal/dataset"
	"github.com/dirtybirdnj/vt-geodata/internal/tiger"
	"github.com/dirtybirdnj/vt-geodata/internal/water"
)

var hydroidsCmd = &cobra.Command{
	Use:   "hydroids",
	Short: "Extract the curated water selections from AREAWATER shapefiles",
	Long: `Pulls the hand-curated feature selections (Champlain VT, Champlain NY,
Memphremagog) out of state AREAWATER shapefiles and writes one dataset
per selection. When both Champlain shores are available they are also
combined into a single cross-state dataset.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		vtPath, _ := cmd.Flags().GetString("areawater-vt")
		nyPath, _ := cmd.Flags().GetString("areawater-ny")
		outDir, _ := cmd.Flags().GetString("output-dir")
		if outDir == "" {
			outDir = cfg.Paths.OutputDir
		}
		if vtPath == "" && nyPath == "" {
			return eris.New("hydroids: at least one of --areawater-vt or --areawater-ny is required")
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return eris.Wrapf(err, "hydroids: create output dir %s", outDir)
		}

		log := zap.L().With(zap.String("command", "hydroids"))

		featuresByState := make(map[string][]water.Feature)
		if vtPath != "" {
			features, err := tiger.ReadAreaWater(vtPath, "VT")
			if err != nil {
				return eris.Wrap(err, "hydroids: read VT shapefile")
			}
			featuresByState["VT"] = features
		}
		if nyPath != "" {
			features, err := tiger.ReadAreaWater(nyPath, "NY")
			if err != nil {
				return eris.Wrap(err, "hydroids: read NY shapefile")
			}
			featuresByState["NY"] = features
		}

		written := make(map[string]*dataset.Collection)
		for _, sel := range water.Selections {
			features, ok := featuresByState[sel.State]
			if !ok {
				log.Debug("selection skipped, no shapefile for its state",
					zap.String("selection", sel.Name),
					zap.String("state", sel.State),
				)
				continue
			}

			selected, missing := sel.Apply(features)
			if len(missing) > 0 {
				log.Warn("selection has unmatched HYDROIDs",
					zap.String("selection", sel.Name),
					zap.Strings("missing", missing),
				)
			}

			c := dataset.FromWaterFeatures(selected, dataset.Metadata{
				Name:            sel.Name,
				Source:          "TIGER/Line AREAWATER",
				State:           sel.State,
				MissingHydroIDs: missing,
			})
			path := filepath.Join(outDir, sel.Name+".geojson")
			if err := c.Write(path); err != nil {
				return eris.Wrapf(err, "hydroids: write %s", sel.Name)
			}
			written[sel.Name] = c
			fmt.Printf("%-18s %4d features %10.2f sq km  %s\n",
				sel.Name, c.Metadata.FeaturesCount, c.Metadata.TotalAreaSqKm, path)
		}

		vt, haveVT := written["champlain-vt"]
		ny, haveNY := written["champlain-ny"]
		if haveVT && haveNY {
			combined := dataset.Combine(dataset.Metadata{
				Name:        "champlain-combined",
				Description: "Lake Champlain water features, Vermont and New York shores",
				Source:      "TIGER/Line AREAWATER",
			}, vt, ny)
			path := filepath.Join(outDir, "champlain-combined.geojson")
			if err := combined.Write(path); err != nil {
				return eris.Wrap(err, "hydroids: write combined dataset")
			}
			fmt.Printf("%-18s %4d features %10.2f sq km  %s\n",
				"champlain-combined", combined.Metadata.FeaturesCount, combined.Metadata.TotalAreaSqKm, path)
		}

		return nil
	},
}

func init() {
	hydroidsCmd.Flags().String("areawater-vt", "", "Vermont AREAWATER shapefile")
	hydroidsCmd.Flags().String("areawater-ny", "", "New York AREAWATER shapefile")
	hydroidsCmd.Flags().String("output-dir", "", "dataset output directory (default: from config)")
	rootCmd.AddCommand(hydroidsCmd)
}
