// Package osm fetches food and drink venues from OpenStreetMap and turns
// their raw tags into canonical restaurant records.
package osm

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/grazbites/scraper/internal/model"
	"github.com/grazbites/scraper/internal/resilience"
	"github.com/grazbites/scraper/pkg/overpass"
)

// FetchOptions tunes the upstream query and its retry policy.
type FetchOptions struct {
	AdminLevel    int
	Amenities     []string
	CourtesyPause time.Duration
	MaxAttempts   int
	Backoff       []time.Duration
}

// Fetcher pulls all venues in an administrative area from Overpass.
type Fetcher struct {
	client  overpass.Client
	opts    FetchOptions
	sleeper resilience.Sleeper
}

// NewFetcher creates a Fetcher. A nil sleeper waits in real time.
func NewFetcher(client overpass.Client, opts FetchOptions, sleeper resilience.Sleeper) *Fetcher {
	return &Fetcher{
		client:  client,
		opts:    opts,
		sleeper: resilience.OrReal(sleeper),
	}
}

// Fetch queries every configured amenity kind inside area. It retries only
// on HTTP 429/504 and transport failures, following the backoff schedule.
// Any other HTTP error, or running out of attempts, is returned as-is.
func (f *Fetcher) Fetch(ctx context.Context, area string, timeoutSecs int) ([]model.RawElement, error) {
	query := overpass.AmenityQuery{
		Area:        area,
		AdminLevel:  f.opts.AdminLevel,
		Amenities:   f.opts.Amenities,
		TimeoutSecs: timeoutSecs,
	}.String()

	zap.L().Info("osm: querying overpass", zap.String("area", area))

	if err := f.sleeper.Sleep(ctx, f.opts.CourtesyPause); err != nil {
		return nil, eris.Wrap(err, "osm: courtesy pause")
	}

	retry := resilience.FromSchedule(f.opts.MaxAttempts, f.opts.Backoff)
	retry.Sleeper = f.sleeper
	retry.ShouldRetry = shouldRetryFetch
	retry.OnRetry = resilience.RetryLogger("overpass", "interpret")

	resp, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (*overpass.Response, error) {
		return f.client.Interpret(ctx, query)
	})
	if err != nil {
		zap.L().Error("osm: overpass fetch failed", zap.Error(err))
		return nil, eris.Wrap(err, "osm: fetch venues")
	}

	out := make([]model.RawElement, 0, len(resp.Elements))
	for _, el := range resp.Elements {
		if el.Tags["name"] == "" {
			continue
		}
		out = append(out, toRaw(el))
	}

	zap.L().Info("osm: overpass returned elements",
		zap.Int("total", len(resp.Elements)),
		zap.Int("named", len(out)),
		zap.Int("skipped_no_name", len(resp.Elements)-len(out)),
	)
	return out, nil
}

// shouldRetryFetch retries rate limiting, gateway timeouts and transport
// failures. Every other HTTP status is fatal.
func shouldRetryFetch(err error) bool {
	var apiErr *overpass.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests ||
			apiErr.StatusCode == http.StatusGatewayTimeout
	}
	return resilience.IsNetworkError(err)
}

func toRaw(el overpass.Element) model.RawElement {
	raw := model.RawElement{
		OSMID:   el.ID,
		OSMType: model.ElementKind(el.Type),
		Tags:    el.Tags,
	}
	if lat, lon, ok := el.Coordinates(); ok {
		raw.Latitude = &lat
		raw.Longitude = &lon
	}
	return raw
}
