package main

import (
	"context"
	"net/http"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/grazbites/scraper/internal/config"
	"github.com/grazbites/scraper/internal/cost"
	"github.com/grazbites/scraper/internal/discovery"
	"github.com/grazbites/scraper/internal/menu"
	"github.com/grazbites/scraper/internal/ocr"
	"github.com/grazbites/scraper/internal/osm"
	"github.com/grazbites/scraper/internal/pipeline"
	"github.com/grazbites/scraper/internal/resilience"
	"github.com/grazbites/scraper/internal/scrape"
	"github.com/grazbites/scraper/internal/store"
	anthropicpkg "github.com/grazbites/scraper/pkg/anthropic"
	"github.com/grazbites/scraper/pkg/firecrawl"
	"github.com/grazbites/scraper/pkg/jina"
	"github.com/grazbites/scraper/pkg/overpass"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func newOSMFetcher() *osm.Fetcher {
	client := overpass.NewClient(
		overpass.WithBaseURL(cfg.Overpass.BaseURL),
		overpass.WithUserAgent(cfg.Overpass.UserAgent),
		overpass.WithHTTPClient(&http.Client{Timeout: cfg.Overpass.HTTPTimeout}),
	)
	return osm.NewFetcher(client, osm.FetchOptions{
		AdminLevel:    cfg.Region.AdminLevel,
		Amenities:     cfg.Overpass.Amenities,
		CourtesyPause: cfg.Overpass.CourtesyPause,
		MaxAttempts:   cfg.Overpass.MaxAttempts,
		Backoff:       cfg.Overpass.BackoffSchedule,
	}, nil)
}

// newJinaClient returns nil without jina.key.
func newJinaClient() jina.Client {
	if cfg.Jina.Key == "" {
		return nil
	}
	opts := []jina.Option{jina.WithBaseURL(cfg.Jina.BaseURL)}
	if cfg.Jina.SearchBaseURL != "" {
		opts = append(opts, jina.WithSearchBaseURL(cfg.Jina.SearchBaseURL))
	}
	if cfg.Search.RateLimit > 0 {
		opts = append(opts, jina.WithRateLimit(rate.NewLimiter(rate.Limit(cfg.Search.RateLimit), 1)))
	}
	return jina.NewClient(cfg.Jina.Key, opts...)
}

// newFirecrawlClient returns nil without firecrawl.key.
func newFirecrawlClient() firecrawl.Client {
	if cfg.Firecrawl.Key == "" {
		return nil
	}
	return firecrawl.NewClient(cfg.Firecrawl.Key, firecrawl.WithBaseURL(cfg.Firecrawl.BaseURL))
}

func newMatcher(jc jina.Client) (*discovery.Matcher, error) {
	rules, err := discovery.DefaultRules()
	if cfg.Search.RulesPath != "" {
		rules, err = discovery.LoadRules(cfg.Search.RulesPath)
	}
	if err != nil {
		return nil, eris.Wrap(err, "load discovery rules")
	}
	breaker := resilience.NewCircuitBreaker(
		resilience.FromCircuitConfig(cfg.Search.FailureThreshold, cfg.Search.ResetTimeout))
	searcher := discovery.NewJinaSearcher(jc, breaker, cfg.Search.MaxResults)
	return discovery.NewMatcher(searcher, rules, cfg.Region.City), nil
}

func newPageFetcher() *scrape.Fetcher {
	return scrape.NewFetcher(scrape.FetcherOptions{
		UserAgent:    cfg.Scrape.UserAgent,
		Timeout:      cfg.Scrape.Timeout,
		MaxBodyBytes: cfg.Scrape.MaxBodyBytes,
		MaxFileBytes: cfg.Vision.MaxFileBytes,
	})
}

func newFileExtractor(costs *cost.Ledger) (*menu.FileExtractor, error) {
	text, err := ocr.NewExtractor(cfg.Vision.OCR, cfg.Vision.DPI)
	if err != nil {
		return nil, err
	}
	llm := menu.NewLLM(anthropicpkg.NewClient(cfg.Anthropic.Key), menu.LLMOptions{
		Model:        cfg.Anthropic.Model,
		MaxTokens:    cfg.Anthropic.MaxTokens,
		Temperature:  cfg.Anthropic.Temperature,
		MaxTextChars: cfg.Vision.MaxTextChars,
		Costs:        costs,
	})
	return menu.NewFileExtractor(llm, text, ocr.NewFitz(cfg.Vision.DPI), menu.FileOptions{
		MaxPages:     cfg.Vision.MaxPages,
		MinTextChars: cfg.Vision.MinTextChars,
		MinItems:     cfg.Scrape.MinItems,
	}), nil
}

// initPipeline wires the collaborators of the selected stages. Discovery
// without jina.key and vision without anthropic.key are left unset; the
// pipeline warns and skips them.
func initPipeline(opts pipeline.Options) (*pipeline.Pipeline, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(config.ModeScrape); err != nil {
		return nil, err
	}

	jc := newJinaClient()
	costs := cost.NewLedger()
	deps := pipeline.Deps{
		Costs:     costs,
		Fetcher:   newOSMFetcher(),
		Pages:     newPageFetcher(),
		Renderers: pipeline.NewRendererFactory(cfg, newFirecrawlClient(), jc),
	}

	if opts.Discover && cfg.Jina.Key != "" {
		matcher, err := newMatcher(jc)
		if err != nil {
			return nil, err
		}
		deps.Discoverer = discovery.NewDiscoverer(matcher, cfg.Search.Delay, nil)
	}

	if opts.EnrichVision && cfg.Anthropic.Key != "" {
		files, err := newFileExtractor(costs)
		if err != nil {
			return nil, err
		}
		deps.Files = files
	}

	zap.L().Debug("pipeline initialized",
		zap.Bool("discover", opts.Discover),
		zap.Bool("enrich", opts.Enrich),
		zap.Bool("enrich_js", opts.EnrichJS),
		zap.Bool("enrich_vision", opts.EnrichVision),
	)
	return pipeline.New(cfg, deps), nil
}
