package main

import (
	"github.com/spf13/cobra"

	"github.com/grazbites/scraper/internal/pipeline"
)

var scrapeOpts pipeline.Options

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Fetch, normalize and optionally enrich restaurants",
	Long: `Fetches every restaurant-like venue in the configured region, writes
restaurants_raw.json, normalizes and deduplicates, optionally discovers
missing websites and enriches from them, then writes restaurants.json.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := initPipeline(scrapeOpts)
		if err != nil {
			return err
		}
		_, err = p.Run(cmd.Context(), scrapeOpts)
		return err
	},
}

func init() {
	f := scrapeCmd.Flags()
	f.BoolVar(&scrapeOpts.Discover, "discover-websites", false, "search the web for missing websites")
	f.BoolVar(&scrapeOpts.Enrich, "enrich", false, "extract summaries and menus from websites")
	f.BoolVar(&scrapeOpts.EnrichJS, "enrich-js", false, "render JavaScript menu pages (requires --enrich)")
	f.BoolVar(&scrapeOpts.EnrichVision, "enrich-vision", false, "read PDF and image menus (requires --enrich)")
	f.StringVar(&scrapeOpts.OutputDir, "output-dir", "", "snapshot directory (default output.dir)")
	f.IntVar(&scrapeOpts.Limit, "limit", 0, "keep only the first N venues after dedupe (0 = all)")
	rootCmd.AddCommand(scrapeCmd)
}
