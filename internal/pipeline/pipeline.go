// Package pipeline runs the full scrape: fetch, normalize, dedupe, and the
// optional discovery and enrichment stages, writing snapshots as it goes.
package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/grazbites/scraper/internal/config"
	"github.com/grazbites/scraper/internal/cost"
	"github.com/grazbites/scraper/internal/discovery"
	"github.com/grazbites/scraper/internal/enrich"
	"github.com/grazbites/scraper/internal/model"
	"github.com/grazbites/scraper/internal/osm"
	"github.com/grazbites/scraper/internal/resilience"
	"github.com/grazbites/scraper/internal/scrape"
)

// Snapshot file names inside the output directory.
const (
	RawFile   = "restaurants_raw.json"
	CleanFile = "restaurants.json"
)

// Options selects the stages of one run.
type Options struct {
	Discover     bool
	Enrich       bool
	EnrichJS     bool
	EnrichVision bool
	OutputDir    string
	// Limit truncates the deduplicated list. Zero means no limit.
	Limit int
}

// Validate rejects sub-flags used without enrichment.
func (o Options) Validate() error {
	if o.EnrichJS && !o.Enrich {
		return eris.New("pipeline: --enrich-js requires --enrich")
	}
	if o.EnrichVision && !o.Enrich {
		return eris.New("pipeline: --enrich-vision requires --enrich")
	}
	if o.Limit < 0 {
		return eris.New("pipeline: limit must not be negative")
	}
	return nil
}

// Fetcher returns the raw venues of an area.
type Fetcher interface {
	Fetch(ctx context.Context, area string, timeoutSecs int) ([]model.RawElement, error)
}

// Discoverer fills in missing websites.
type Discoverer interface {
	DiscoverAll(ctx context.Context, rs []*model.Restaurant) discovery.Stats
}

// RendererFactory starts the JS renderer for a run. The pipeline closes it.
type RendererFactory func() (scrape.Renderer, error)

// Deps are the collaborators of a Pipeline. Discoverer, Files and
// Renderers may be nil, which disables the matching stage.
type Deps struct {
	Fetcher    Fetcher
	Normalizer *osm.Normalizer
	Discoverer Discoverer
	Pages      enrich.Fetcher
	Files      enrich.FileExtractor
	Renderers  RendererFactory
	Sleeper    resilience.Sleeper
	Now        func() time.Time
	// Costs is the ledger the menu LLM records into, read for the report.
	Costs *cost.Ledger
}

// Pipeline sequences the stages.
type Pipeline struct {
	cfg  *config.Config
	deps Deps
}

// New creates a Pipeline.
func New(cfg *config.Config, deps Deps) *Pipeline {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Normalizer == nil {
		deps.Normalizer = osm.NewNormalizer(cfg.Region.City, cfg.Region.Country)
	}
	deps.Sleeper = resilience.OrReal(deps.Sleeper)
	return &Pipeline{cfg: cfg, deps: deps}
}

// Run executes one pipeline run. Only the upstream fetch and snapshot
// writes can fail it; per-venue problems are logged and absorbed.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Report, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.OutputDir == "" {
		opts.OutputDir = p.cfg.Output.Dir
	}
	started := p.deps.Now()

	zap.L().Info("pipeline: fetching venues", zap.String("area", p.cfg.Region.City))
	raw, err := p.deps.Fetcher.Fetch(ctx, p.cfg.Region.City, p.cfg.Overpass.QueryTimeout)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: fetch")
	}
	if len(raw) == 0 {
		zap.L().Warn("pipeline: no venues returned, nothing written")
		return &Report{}, nil
	}

	rawPath := filepath.Join(opts.OutputDir, RawFile)
	if err := WriteSnapshot(rawPath, model.NewSnapshot(raw, p.deps.Now())); err != nil {
		return nil, err
	}
	zap.L().Info("pipeline: wrote raw snapshot", zap.Int("count", len(raw)), zap.String("path", rawPath))

	restaurants, removed := osm.Dedupe(p.deps.Normalizer.NormalizeAll(raw))
	zap.L().Info("pipeline: normalized",
		zap.Int("raw", len(raw)),
		zap.Int("unique", len(restaurants)),
		zap.Int("duplicates", removed),
	)

	if opts.Limit > 0 && len(restaurants) > opts.Limit {
		zap.L().Warn("pipeline: limit set, output will be truncated; use --output-dir to keep production data intact",
			zap.Int("limit", opts.Limit),
			zap.Int("available", len(restaurants)),
		)
		restaurants = restaurants[:opts.Limit]
	}

	ptrs := make([]*model.Restaurant, len(restaurants))
	for i := range restaurants {
		ptrs[i] = &restaurants[i]
	}

	report := &Report{Raw: len(raw), Duplicates: removed}

	if opts.Discover {
		if p.deps.Discoverer == nil {
			zap.L().Warn("pipeline: website discovery requested but no search backend is configured")
		} else {
			report.Discovery = p.deps.Discoverer.DiscoverAll(ctx, ptrs)
		}
	}

	if opts.Enrich {
		report.Enrichment = p.enrich(ctx, opts, ptrs)
	}

	cleanPath := filepath.Join(opts.OutputDir, CleanFile)
	if err := WriteSnapshot(cleanPath, model.NewSnapshot(restaurants, p.deps.Now())); err != nil {
		return nil, err
	}
	zap.L().Info("pipeline: wrote clean snapshot", zap.Int("count", len(restaurants)), zap.String("path", cleanPath))

	report.Coverage = NewCoverage(restaurants)
	report.LLM = p.deps.Costs.Total()
	report.Elapsed = p.deps.Now().Sub(started)
	report.Log()
	return report, nil
}

func (p *Pipeline) enrich(ctx context.Context, opts Options, rs []*model.Restaurant) enrich.Stats {
	var renderer scrape.Renderer
	if opts.EnrichJS {
		if p.deps.Renderers == nil {
			zap.L().Warn("pipeline: js rendering requested but no renderer is configured")
		} else if r, err := p.deps.Renderers(); err != nil {
			zap.L().Warn("pipeline: renderer unavailable, continuing without js rendering", zap.Error(err))
		} else {
			renderer = r
			defer func() {
				if err := renderer.Close(); err != nil {
					zap.L().Warn("pipeline: close renderer", zap.Error(err))
				}
			}()
		}
	}

	var files enrich.FileExtractor
	if opts.EnrichVision {
		if p.deps.Files == nil {
			zap.L().Warn("pipeline: vision requested but anthropic.key is not set, skipping menu files")
		} else {
			files = p.deps.Files
		}
	}

	zap.L().Info("pipeline: enriching from websites",
		zap.Bool("js", renderer != nil),
		zap.Bool("vision", files != nil),
	)

	e := enrich.NewEnricher(p.deps.Pages, renderer, files, p.deps.Sleeper, enrich.Options{
		MinItems:      p.cfg.Scrape.MinItems,
		SubfetchDelay: p.cfg.Scrape.SubfetchDelay,
	})
	return enrich.NewRunner(e, p.cfg.Scrape.EntityDelay, p.deps.Sleeper).EnrichAll(ctx, rs)
}
