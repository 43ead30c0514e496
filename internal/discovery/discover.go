// Package discovery finds official websites for venues that have none,
// scoring web search results against the venue name.
package discovery

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/grazbites/scraper/internal/model"
	"github.com/grazbites/scraper/internal/resilience"
)

// Stats summarizes a discovery pass.
type Stats struct {
	Missing int
	Found   int
}

// Discoverer runs the Matcher over every venue without a website.
type Discoverer struct {
	matcher *Matcher
	delay   time.Duration
	sleeper resilience.Sleeper
}

// NewDiscoverer creates a Discoverer that waits delay between searches.
func NewDiscoverer(matcher *Matcher, delay time.Duration, sleeper resilience.Sleeper) *Discoverer {
	return &Discoverer{matcher: matcher, delay: delay, sleeper: resilience.OrReal(sleeper)}
}

// DiscoverAll fills in Website for venues that lack one. Venues are searched
// one at a time with a pause after each search.
func (d *Discoverer) DiscoverAll(ctx context.Context, rs []*model.Restaurant) Stats {
	var missing []*model.Restaurant
	for _, r := range rs {
		if r.Website == "" {
			missing = append(missing, r)
		}
	}

	stats := Stats{Missing: len(missing)}
	if len(missing) == 0 {
		zap.L().Info("discovery: all venues already have websites")
		return stats
	}

	zap.L().Info("discovery: searching for missing websites",
		zap.Int("missing", len(missing)),
		zap.Int("total", len(rs)),
	)

	for i, r := range missing {
		log := zap.L().With(zap.String("name", r.Name), zap.Int("index", i+1))
		log.Debug("discovery: searching")

		if url, ok := d.matcher.Match(ctx, r.Name, r.Address); ok {
			r.Website = url
			r.AddSource(model.SourceWebSearch)
			stats.Found++
			log.Info("discovery: website found", zap.String("url", url))
		} else {
			log.Debug("discovery: no website found")
		}

		if err := d.sleeper.Sleep(ctx, d.delay); err != nil {
			zap.L().Warn("discovery: interrupted", zap.Error(err))
			break
		}
	}

	zap.L().Info("discovery: complete",
		zap.Int("found", stats.Found),
		zap.Int("missing", stats.Missing),
	)
	return stats
}
