package config

import (
	"slices"
	"strings"

	"github.com/rotisserie/eris"
)

// Modes accepted by Validate.
const (
	ModeScrape   = "scrape"
	ModeDiscover = "discover"
	ModeVision   = "vision"
	ModeSeed     = "seed"
)

var knownRenderers = []string{"chrome", "firecrawl", "jina"}

// Validate checks the settings a command mode depends on and reports every
// problem at once.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case ModeScrape:
		if c.Overpass.BaseURL == "" {
			errs = append(errs, "overpass.base_url is required")
		}
		if c.Region.City == "" {
			errs = append(errs, "region.city is required")
		}
		if c.Overpass.MaxAttempts < 1 {
			errs = append(errs, "overpass.max_attempts must be >= 1")
		}
		if len(c.Overpass.Amenities) == 0 {
			errs = append(errs, "overpass.amenities must not be empty")
		}
		for _, r := range c.Browser.Renderers {
			if !slices.Contains(knownRenderers, r) {
				errs = append(errs, "browser.renderers: unknown renderer "+r)
			}
		}
	case ModeDiscover:
		if c.Jina.Key == "" {
			errs = append(errs, "jina.key is required")
		}
		if c.Search.MaxResults < 1 {
			errs = append(errs, "search.max_results must be >= 1")
		}
	case ModeVision:
		if c.Anthropic.Key == "" {
			errs = append(errs, "anthropic.key is required")
		}
	case ModeSeed:
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
		if c.Store.Driver != "sqlite" && c.Store.Driver != "postgres" {
			errs = append(errs, "store.driver must be sqlite or postgres")
		}
	default:
		return eris.Errorf("config: unknown validation mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}
