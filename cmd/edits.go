package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/dirtybirdnj/vt-geodata/internal/ledger"
	"github.com/dirtybirdnj/vt-geodata/internal/store"
	"github.com/dirtybirdnj/vt-geodata/internal/worksheet"
)

var editsCmd = &cobra.Command{
	Use:   "edits",
	Short: "Manage the manual reclassification ledger",
}

var editsMergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge an edit batch into the stored ledger",
	Long: `Folds a batch of manual reclassifications into the durable ledger,
last write per HYDROID wins. The batch comes from a JSON file (--input)
or a reviewed XLSX workbook (--worksheet). Every merge is recorded in
the audit trail.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		input, _ := cmd.Flags().GetString("input")
		workbook, _ := cmd.Flags().GetString("worksheet")
		source, _ := cmd.Flags().GetString("source")

		var (
			batch []ledger.EditRecord
			err   error
		)
		switch {
		case workbook != "":
			batch, err = worksheet.ReadBatch(workbook)
			if source == "" {
				source = filepath.Base(workbook)
			}
		case input != "":
			batch, err = ledger.LoadBatch(input)
			if source == "" {
				source = filepath.Base(input)
			}
		default:
			return eris.New("edits merge: --input or --worksheet is required")
		}
		if err != nil {
			return eris.Wrap(err, "edits merge: read batch")
		}

		s, err := openStore(ctx)
		if err != nil {
			return eris.Wrap(err, "edits merge: open store")
		}
		defer s.Close()

		l, err := s.LoadLedger(ctx)
		if err != nil {
			return eris.Wrap(err, "edits merge: load ledger")
		}

		res := l.Merge(batch)
		if err := s.SaveLedger(ctx, l); err != nil {
			return eris.Wrap(err, "edits merge: save ledger")
		}
		audit := store.MergeAudit{
			ID:       uuid.New().String(),
			Source:   source,
			Added:    res.Added,
			Updated:  res.Updated,
			Skipped:  res.Skipped,
			MergedAt: time.Now().UTC(),
		}
		if err := s.RecordMerge(ctx, audit); err != nil {
			return eris.Wrap(err, "edits merge: record audit")
		}

		fmt.Printf("merged %d edits from %s: %d added, %d updated, %d skipped (%d total)\n",
			len(batch), source, res.Added, res.Updated, res.Skipped, l.Len())
		return nil
	},
}

var editsApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Replay the stored ledger over the categorized datasets",
	Long: `Loads the tier datasets, replays the stored ledger over them, and
rewrites the datasets with the corrections applied. Replaying an
already-applied ledger changes nothing.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		dir, _ := cmd.Flags().GetString("output-dir")
		if dir == "" {
			dir = cfg.Paths.OutputDir
		}

		p, err := loadPartition(dir)
		if err != nil {
			return eris.Wrap(err, "edits apply: load datasets")
		}

		s, err := openStore(ctx)
		if err != nil {
			return eris.Wrap(err, "edits apply: open store")
		}
		defer s.Close()

		l, err := s.LoadLedger(ctx)
		if err != nil {
			return eris.Wrap(err, "edits apply: load ledger")
		}

		res := ledger.Apply(p, l)
		if err := writeTierDatasets(p, dir, "TIGER/Line AREAWATER", "", res.Applied); err != nil {
			return eris.Wrap(err, "edits apply: write datasets")
		}

		for _, m := range res.Moves {
			name := m.Name
			if name == "" {
				name = "(unnamed)"
			}
			fmt.Printf("  %s %s: %s -> %s\n", m.HydroID, name, m.From, m.To)
		}
		printTierStats(p)
		fmt.Printf("\napplied %d edits (%d no-ops, %d skipped)\n", res.Applied, res.NoOps, res.Skipped)
		return nil
	},
}

var editsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the stored ledger to its JSON interchange file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		out, _ := cmd.Flags().GetString("output")
		if out == "" {
			out = cfg.Paths.LedgerFile
		}

		s, err := openStore(ctx)
		if err != nil {
			return eris.Wrap(err, "edits export: open store")
		}
		defer s.Close()

		l, err := s.LoadLedger(ctx)
		if err != nil {
			return eris.Wrap(err, "edits export: load ledger")
		}
		if err := l.Save(out); err != nil {
			return eris.Wrap(err, "edits export")
		}

		fmt.Printf("exported %d edits to %s\n", l.Len(), out)
		return nil
	},
}

var editsWorksheetCmd = &cobra.Command{
	Use:   "worksheet",
	Short: "Export the categorized features to an XLSX review workbook",
	Long: `Writes the tier datasets to an XLSX workbook, one sheet per tier, for
manual review. Reviewers fill the Corrected Category column; the result
feeds back through "edits merge --worksheet".`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dir, _ := cmd.Flags().GetString("output-dir")
		out, _ := cmd.Flags().GetString("output")
		if dir == "" {
			dir = cfg.Paths.OutputDir
		}
		if out == "" {
			out = filepath.Join(dir, "water_review.xlsx")
		}

		p, err := loadPartition(dir)
		if err != nil {
			return eris.Wrap(err, "edits worksheet: load datasets")
		}
		if err := worksheet.Export(p, out); err != nil {
			return eris.Wrap(err, "edits worksheet")
		}

		fmt.Printf("wrote review workbook with %d features to %s\n", p.Size(), out)
		return nil
	},
}

func init() {
	editsMergeCmd.Flags().String("input", "", "edit batch JSON file")
	editsMergeCmd.Flags().String("worksheet", "", "reviewed XLSX workbook")
	editsMergeCmd.Flags().String("source", "", "audit label for the batch (default: file name)")

	editsApplyCmd.Flags().String("output-dir", "", "dataset directory (default: from config)")

	editsExportCmd.Flags().String("output", "", "ledger JSON path (default: from config)")

	editsWorksheetCmd.Flags().String("output-dir", "", "dataset directory (default: from config)")
	editsWorksheetCmd.Flags().String("output", "", "workbook path (default: water_review.xlsx in the dataset directory)")

	editsCmd.AddCommand(editsMergeCmd, editsApplyCmd, editsExportCmd, editsWorksheetCmd)
	rootCmd.AddCommand(editsCmd)
}
