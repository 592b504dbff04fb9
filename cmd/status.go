package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/dirtybirdnj/vt-geodata/internal/water"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored ledger and its merge history",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		limit, _ := cmd.Flags().GetInt("limit")
		dir, _ := cmd.Flags().GetString("output-dir")
		if dir == "" {
			dir = cfg.Paths.OutputDir
		}

		// Dataset stats, when the tier datasets have been written.
		if p, err := loadPartition(dir); err == nil {
			printTierStats(p)
			fmt.Println()
		}

		s, err := openStore(ctx)
		if err != nil {
			return eris.Wrap(err, "status: open store")
		}
		defer s.Close()

		l, err := s.LoadLedger(ctx)
		if err != nil {
			return eris.Wrap(err, "status: load ledger")
		}

		meta := l.Metadata()
		fmt.Printf("Ledger store: %s\n", cfg.Store.Driver)
		fmt.Printf("Total edits:  %d\n", meta.TotalEdits)
		if !meta.Created.IsZero() {
			fmt.Printf("Created:      %s\n", meta.Created.Format("2006-01-02 15:04"))
		}
		if !meta.LastUpdated.IsZero() {
			fmt.Printf("Last updated: %s\n", meta.LastUpdated.Format("2006-01-02 15:04"))
		}

		moves := make(map[string]int)
		for _, e := range l.Edits() {
			if to, ok := water.NormalizeCategory(e.ToCategory); ok {
				moves[string(to)]++
			}
		}
		if len(moves) > 0 {
			fmt.Println()
			for _, cat := range water.Categories {
				if n := moves[string(cat)]; n > 0 {
					fmt.Printf("  -> %-12s %d\n", cat, n)
				}
			}
		}

		audits, err := s.ListMerges(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "status: list merges")
		}
		if len(audits) == 0 {
			fmt.Println("\nNo merges recorded yet")
			return nil
		}

		fmt.Printf("\n%-20s %7s %7s %7s  %s\n", "Merged At", "Added", "Updated", "Skipped", "Source")
		fmt.Println(strings.Repeat("-", 72))
		for _, a := range audits {
			fmt.Printf("%-20s %7d %7d %7d  %s\n",
				a.MergedAt.Format("2006-01-02 15:04"), a.Added, a.Updated, a.Skipped, a.Source)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().Int("limit", 10, "number of merge audits to show")
	statusCmd.Flags().String("output-dir", "", "dataset directory for tier stats (default: from config)")
	rootCmd.AddCommand(statusCmd)
}
