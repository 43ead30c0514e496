package main

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/grazbites/scraper/internal/config"
	"github.com/grazbites/scraper/internal/pipeline"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace the database contents with a clean snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate(config.ModeSeed); err != nil {
			return err
		}

		snap, err := pipeline.ReadCleanSnapshot(seedFile)
		if err != nil {
			return err
		}
		if len(snap.Restaurants) == 0 {
			zap.L().Warn("seed: snapshot has no restaurants, database left unchanged",
				zap.String("file", seedFile))
			return nil
		}

		if cfg.Store.Driver == "sqlite" {
			if err := os.MkdirAll(filepath.Dir(cfg.Store.DatabaseURL), 0o755); err != nil {
				return eris.Wrap(err, "seed: create database directory")
			}
		}
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		stats, err := st.ReplaceRestaurants(ctx, snap.Restaurants)
		if err != nil {
			return err
		}
		zap.L().Info("seed: complete",
			zap.Int("cleared", stats.Cleared),
			zap.Int("restaurants", stats.Restaurants),
			zap.Int("menu_items", stats.MenuItems),
		)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", filepath.Join("data", pipeline.CleanFile), "clean snapshot to load")
	rootCmd.AddCommand(seedCmd)
}
