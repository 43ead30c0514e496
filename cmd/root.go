package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/grazbites/scraper/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "grazbites",
	Short: "Restaurant data pipeline for Graz",
	Long:  "Fetches restaurants from OpenStreetMap, normalizes and deduplicates them, discovers missing websites, extracts summaries and menus, and seeds the result into a database.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
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
