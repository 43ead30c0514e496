package pipeline

import (
	"time"

	"go.uber.org/zap"

	"github.com/grazbites/scraper/internal/cost"
	"github.com/grazbites/scraper/internal/discovery"
	"github.com/grazbites/scraper/internal/enrich"
	"github.com/grazbites/scraper/internal/model"
)

// Report summarizes a run.
type Report struct {
	Raw        int
	Duplicates int
	Discovery  discovery.Stats
	Enrichment enrich.Stats
	Coverage   Coverage
	LLM        cost.Entry
	Elapsed    time.Duration
}

// Coverage counts how many venues carry each kind of data.
type Coverage struct {
	Total   int
	Address int
	Phone   int
	Website int
	Hours   int
	Cuisine int
	Summary int
	Menu    int

	// Discovered counts websites found by web search.
	Discovered int
}

// NewCoverage tallies the venues.
func NewCoverage(rs []model.Restaurant) Coverage {
	c := Coverage{Total: len(rs)}
	for _, r := range rs {
		if r.Address != "" {
			c.Address++
		}
		if r.Phone != "" {
			c.Phone++
		}
		if r.Website != "" {
			c.Website++
		}
		if r.HasSource(model.SourceWebSearch) {
			c.Discovered++
		}
		if len(r.OpeningHours) > 0 {
			c.Hours++
		}
		if len(r.Cuisine) > 0 {
			c.Cuisine++
		}
		if r.Summary != "" {
			c.Summary++
		}
		if len(r.MenuItems) > 0 {
			c.Menu++
		}
	}
	return c
}

// Pct returns part as a percentage of Total, or 0 for an empty run.
func (c Coverage) Pct(part int) float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(part) / float64(c.Total) * 100
}

// Log writes the run summary.
func (r *Report) Log() {
	c := r.Coverage
	zap.L().Info("pipeline: scrape summary",
		zap.Int("total", c.Total),
		zap.Int("raw", r.Raw),
		zap.Int("duplicates", r.Duplicates),
		zap.Int("with_address", c.Address),
		zap.Float64("pct_address", c.Pct(c.Address)),
		zap.Int("with_phone", c.Phone),
		zap.Float64("pct_phone", c.Pct(c.Phone)),
		zap.Int("with_website", c.Website),
		zap.Float64("pct_website", c.Pct(c.Website)),
		zap.Int("with_discovered_website", c.Discovered),
		zap.Int("with_hours", c.Hours),
		zap.Float64("pct_hours", c.Pct(c.Hours)),
		zap.Int("with_cuisine", c.Cuisine),
		zap.Float64("pct_cuisine", c.Pct(c.Cuisine)),
		zap.Int("with_summary", c.Summary),
		zap.Float64("pct_summary", c.Pct(c.Summary)),
		zap.Int("with_menu", c.Menu),
		zap.Float64("pct_menu", c.Pct(c.Menu)),
		zap.Int("llm_calls", r.LLM.Calls),
		zap.Float64("llm_cost_usd", r.LLM.USD),
		zap.Duration("elapsed", r.Elapsed),
	)
}
