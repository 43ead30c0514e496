package main

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/grazbites/scraper/internal/config"
	"github.com/grazbites/scraper/internal/cost"
	"github.com/grazbites/scraper/internal/enrich"
	"github.com/grazbites/scraper/internal/model"
	"github.com/grazbites/scraper/internal/pipeline"
	"github.com/grazbites/scraper/internal/scrape"
)

var (
	menuURL    string
	menuJS     bool
	menuVision bool
)

// menuOutput is the JSON printed by the menu command.
type menuOutput struct {
	Summary     string           `json:"summary,omitempty"`
	MenuURL     string           `json:"menu_url,omitempty"`
	MenuFileURL string           `json:"menu_file_url,omitempty"`
	Method      string           `json:"method,omitempty"`
	Strategy    string           `json:"strategy,omitempty"`
	Items       []model.MenuItem `json:"menu_items"`
}

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Extract the summary and menu of one website",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var renderer scrape.Renderer
		if menuJS {
			r, err := pipeline.NewRendererFactory(cfg, newFirecrawlClient(), newJinaClient())()
			if err != nil {
				return err
			}
			defer func() {
				if err := r.Close(); err != nil {
					zap.L().Warn("menu: close renderer", zap.Error(err))
				}
			}()
			renderer = r
		}

		costs := cost.NewLedger()
		var files enrich.FileExtractor
		if menuVision {
			if err := cfg.Validate(config.ModeVision); err != nil {
				return err
			}
			fe, err := newFileExtractor(costs)
			if err != nil {
				return err
			}
			files = fe
		}

		e := enrich.NewEnricher(newPageFetcher(), renderer, files, nil, enrich.Options{
			MinItems:      cfg.Scrape.MinItems,
			SubfetchDelay: cfg.Scrape.SubfetchDelay,
		})
		res, err := e.Enrich(ctx, menuURL)
		if err != nil {
			return err
		}
		if total := costs.Total(); total.Calls > 0 {
			zap.L().Info("menu: llm usage",
				zap.Int("calls", total.Calls),
				zap.Float64("cost_usd", total.USD),
			)
		}
		return writeMenuOutput(cmd, res)
	},
}

func writeMenuOutput(cmd *cobra.Command, res *enrich.Result) error {
	out := menuOutput{
		Summary:     res.Summary,
		MenuURL:     res.MenuURL,
		MenuFileURL: res.MenuFileURL,
		Method:      string(res.Method),
		Strategy:    string(res.Strategy),
		Items:       res.Items,
	}
	if out.Items == nil {
		out.Items = []model.MenuItem{}
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return eris.Wrap(enc.Encode(out), "menu: write output")
}

func init() {
	menuCmd.Flags().StringVar(&menuURL, "url", "", "website to enrich")
	menuCmd.Flags().BoolVar(&menuJS, "js", false, "render the menu page with JavaScript")
	menuCmd.Flags().BoolVar(&menuVision, "vision", false, "read PDF and image menus")
	_ = menuCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(menuCmd)
}
