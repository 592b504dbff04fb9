package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/dirtybirdnj/vt-geodata/internal/cutout"
	"github.com/dirtybirdnj/vt-geodata/internal/dataset"
	"github.com/dirtybirdnj/vt-geodata/internal/water"
)

var cutoutCmd = &cobra.Command{
	Use:   "cutout",
	Short: "Trim town boundaries against the planned water unions",
	Long: `Subtracts water-polygon unions from the town boundaries named in the
trim plan, producing shoreline-accurate land geometries. Plan sources
referencing a curated selection read the dataset the hydroids command
wrote; sources with an explicit water path read that dataset directly.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		townsPath, _ := cmd.Flags().GetString("towns")
		planPath, _ := cmd.Flags().GetString("plan")
		waterDir, _ := cmd.Flags().GetString("water-dir")
		out, _ := cmd.Flags().GetString("output")
		if planPath == "" {
			planPath = cfg.Cutout.PlanFile
		}
		if waterDir == "" {
			waterDir = cfg.Paths.OutputDir
		}
		if out == "" {
			out = filepath.Join(cfg.Paths.OutputDir, "vt_towns_cutout.geojson")
		}

		boundaries, townsMeta, err := dataset.ReadBoundaries(townsPath)
		if err != nil {
			return eris.Wrap(err, "cutout: read towns dataset")
		}

		plan := cutout.DefaultPlan()
		if planPath != "" {
			plan, err = cutout.LoadPlan(planPath)
			if err != nil {
				return eris.Wrap(err, "cutout")
			}
		}

		waterFor := func(src cutout.Source) ([]water.Feature, error) {
			path := src.WaterPath
			if path == "" {
				path = filepath.Join(waterDir, src.Selection+".geojson")
			}
			features, _, err := dataset.ReadWater(path)
			return features, err
		}

		results, err := plan.Execute(ctx, boundaries, waterFor, cfg.Cutout.Concurrency)
		if err != nil {
			return eris.Wrap(err, "cutout")
		}

		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return eris.Wrapf(err, "cutout: create output dir %s", filepath.Dir(out))
		}
		c := dataset.FromTrimResults(results, dataset.Metadata{
			Name:   townsMeta.Name + " with Water Cutouts",
			Source: townsMeta.Source,
		})
		if err := c.Write(out); err != nil {
			return eris.Wrap(err, "cutout: write dataset")
		}

		s := cutout.Summarize(results)
		fmt.Printf("trimmed %d of %d towns, removed %.2f sq km of water", s.Trimmed, s.Total, s.RemovedSqKm)
		if s.Failed > 0 {
			fmt.Printf(" (%d failed, passed through untrimmed)", s.Failed)
		}
		fmt.Printf("\nwrote %s\n", out)
		return nil
	},
}

func init() {
	cutoutCmd.Flags().String("towns", "", "town boundaries dataset (required)")
	cutoutCmd.Flags().String("plan", "", "trim plan YAML (default: from config, else the shipped plan)")
	cutoutCmd.Flags().String("water-dir", "", "directory holding the selection datasets (default: from config)")
	cutoutCmd.Flags().String("output", "", "trimmed dataset path (default: vt_towns_cutout.geojson in the output directory)")
	_ = cutoutCmd.MarkFlagRequired("towns")
	rootCmd.AddCommand(cutoutCmd)
}
