package enrich

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/grazbites/scraper/internal/model"
	"github.com/grazbites/scraper/internal/resilience"
)

// Stats summarizes an enrichment pass.
type Stats struct {
	Total       int
	Enriched    int
	WithMenu    int
	ViaRenderer int
	ViaVision   int
	Failed      int
	Transient   int
}

// Runner enriches venues one at a time with a pause between venues.
type Runner struct {
	enricher *Enricher
	delay    time.Duration
	sleeper  resilience.Sleeper
}

// NewRunner creates a Runner.
func NewRunner(enricher *Enricher, delay time.Duration, sleeper resilience.Sleeper) *Runner {
	return &Runner{enricher: enricher, delay: delay, sleeper: resilience.OrReal(sleeper)}
}

// EnrichAll enriches every venue with a usable website in place. Failures
// are logged and the venue keeps what it had.
func (r *Runner) EnrichAll(ctx context.Context, rs []*model.Restaurant) Stats {
	stats := Stats{Total: len(rs)}

	for i, rest := range rs {
		if rest.Website == "" {
			continue
		}
		if !strings.HasPrefix(rest.Website, "http://") && !strings.HasPrefix(rest.Website, "https://") {
			zap.L().Debug("enrich: skipping invalid url", zap.String("url", rest.Website))
			continue
		}

		log := zap.L().With(zap.String("name", rest.Name), zap.String("url", rest.Website))
		log.Info("enrich: venue", zap.Int("index", i+1), zap.Int("total", len(rs)))

		res, err := r.enricher.Enrich(ctx, rest.Website)
		if err != nil {
			stats.Failed++
			transient := resilience.IsTransient(err)
			if transient {
				stats.Transient++
			}
			log.Warn("enrich: venue failed", zap.Bool("transient", transient), zap.Error(err))
		} else {
			merge(rest, res, &stats)
		}

		if err := r.sleeper.Sleep(ctx, r.delay); err != nil {
			zap.L().Warn("enrich: interrupted", zap.Error(err))
			break
		}
	}

	zap.L().Info("enrich: complete",
		zap.Int("enriched", stats.Enriched),
		zap.Int("total", stats.Total),
		zap.Int("with_menu", stats.WithMenu),
		zap.Int("via_renderer", stats.ViaRenderer),
		zap.Int("via_vision", stats.ViaVision),
		zap.Int("failed", stats.Failed),
		zap.Int("transient", stats.Transient),
	)
	return stats
}

func merge(rest *model.Restaurant, res *Result, stats *Stats) {
	if res.Summary != "" && rest.Summary == "" {
		rest.Summary = res.Summary
	}
	if res.MenuURL != "" {
		rest.MenuURL = res.MenuURL
	}
	if len(res.Items) > 0 {
		rest.MenuItems = res.Items
		stats.WithMenu++
		switch res.Method {
		case MethodRenderer:
			stats.ViaRenderer++
		case MethodVision:
			stats.ViaVision++
		}
	}
	rest.AddSource(model.SourceWebsite)
	stats.Enriched++
}
