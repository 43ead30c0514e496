package pipeline

import (
	"context"
	"time"

	"github.com/grazbites/scraper/internal/discovery"
	"github.com/grazbites/scraper/internal/model"
)

type fakeFetcher struct {
	elems   []model.RawElement
	err     error
	area    string
	timeout int
}

func (f *fakeFetcher) Fetch(_ context.Context, area string, timeoutSecs int) ([]model.RawElement, error) {
	f.area = area
	f.timeout = timeoutSecs
	return f.elems, f.err
}

type fakeDiscoverer struct {
	website string
	seen    int
}

func (f *fakeDiscoverer) DiscoverAll(_ context.Context, rs []*model.Restaurant) discovery.Stats {
	stats := discovery.Stats{}
	for _, r := range rs {
		f.seen++
		if r.Website == "" {
			stats.Missing++
			r.Website = f.website
			r.AddSource(model.SourceWebSearch)
			stats.Found++
		}
	}
	return stats
}

type fakeRenderer struct {
	html   string
	closed int
}

func (f *fakeRenderer) Render(context.Context, string) (string, error) { return f.html, nil }

func (f *fakeRenderer) Name() string { return "fake" }

func (f *fakeRenderer) Close() error {
	f.closed++
	return nil
}

func fixedClock() func() time.Time {
	t := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	return func() time.Time { return t }
}
