package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dirtybirdnj/vt-geodata/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "vt-geodata",
	Short: "Vermont water and town boundary dataset pipeline",
	Long:  "Classifies TIGER AREAWATER features into lake, river, and pond tiers, maintains a durable ledger of manual corrections, and trims town boundaries against water unions.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("validate config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
