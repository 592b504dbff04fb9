package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dirtybirdnj/vt-geodata/internal/ledger"
	"github.com/dirtybirdnj/vt-geodata/internal/water"
)

var categorizeCmd = &cobra.Command{
	Use:   "categorize",
	Short: "Classify AREAWATER features into lake, river, and pond tiers",
	Long: `Reads a TIGER/Line AREAWATER shapefile, classifies every polygon into
Big Lake, River, or Small Pond by area and elongation, and writes one
GeoJSON dataset per tier. With --apply-edits the stored manual
corrections are replayed before the datasets are written.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		shpPath, _ := cmd.Flags().GetString("areawater")
		state, _ := cmd.Flags().GetString("state")
		outDir, _ := cmd.Flags().GetString("output-dir")
		applyEdits, _ := cmd.Flags().GetBool("apply-edits")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		if outDir == "" {
			outDir = cfg.Paths.OutputDir
		}
		if concurrency == 0 {
			concurrency = cfg.Cutout.Concurrency
		}

		log := zap.L().With(zap.String("command", "categorize"))

		features, err := readWaterInput(shpPath, state)
		if err != nil {
			return eris.Wrap(err, "categorize")
		}

		p, err := water.ClassifyAll(ctx, features, cfg.Thresholds, concurrency)
		if err != nil {
			return eris.Wrap(err, "categorize")
		}

		editsApplied := 0
		if applyEdits {
			s, err := openStore(ctx)
			if err != nil {
				return eris.Wrap(err, "categorize: open store")
			}
			defer s.Close()

			l, err := s.LoadLedger(ctx)
			if err != nil {
				return eris.Wrap(err, "categorize: load ledger")
			}
			res := ledger.Apply(p, l)
			editsApplied = res.Applied
			log.Info("manual edits replayed",
				zap.Int("applied", res.Applied),
				zap.Int("noops", res.NoOps),
				zap.Int("skipped", res.Skipped),
			)
		}

		if err := writeTierDatasets(p, outDir, "TIGER/Line AREAWATER", state, editsApplied); err != nil {
			return eris.Wrap(err, "categorize: write datasets")
		}

		printTierStats(p)
		fmt.Printf("\ncategorized %d features into %s\n", p.Size(), outDir)
		return nil
	},
}

func init() {
	categorizeCmd.Flags().String("areawater", "", "AREAWATER shapefile or water GeoJSON dataset (required)")
	categorizeCmd.Flags().String("state", "VT", "state abbreviation stamped on the features")
	categorizeCmd.Flags().String("output-dir", "", "dataset output directory (default: from config)")
	categorizeCmd.Flags().Bool("apply-edits", false, "replay stored manual edits before writing")
	categorizeCmd.Flags().Int("concurrency", 0, "parallel classification workers (default: from config)")
	_ = categorizeCmd.MarkFlagRequired("areawater")
	rootCmd.AddCommand(categorizeCmd)
}
