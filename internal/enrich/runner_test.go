package enrich

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/grazbites/scraper/internal/model"
	"github.com/grazbites/scraper/internal/resilience"
)

func TestEnrichAll(t *testing.T) {
	srv := newSite(t, map[string]string{
		"/":            homepage,
		"/speisekarte": threeItemPage,
	})

	rs := []*model.Restaurant{
		{Name: "No Site", DataSources: []string{model.SourceOpenStreetMap}},
		{Name: "Bad URL", Website: "www.bad-url.at"},
		{Name: "Aiola", Website: srv.URL + "/", Summary: "Kept", DataSources: []string{model.SourceOpenStreetMap}},
		{Name: "Broken", Website: srv.URL + "/gone"},
	}

	sleeper := &resilience.RecordingSleeper{}
	r := NewRunner(newEnricher(nil, nil, sleeper), 2*time.Second, sleeper)
	stats := r.EnrichAll(context.Background(), rs)

	assert.Equal(t, Stats{Total: 4, Enriched: 1, WithMenu: 1, Failed: 1}, stats)

	aiola := rs[2]
	assert.Equal(t, "Kept", aiola.Summary)
	assert.Equal(t, srv.URL+"/speisekarte", aiola.MenuURL)
	assert.Len(t, aiola.MenuItems, 3)
	assert.Equal(t, []string{model.SourceOpenStreetMap, model.SourceWebsite}, aiola.DataSources)

	assert.False(t, rs[0].HasSource(model.SourceWebsite))
	assert.False(t, rs[1].HasSource(model.SourceWebsite))
	assert.False(t, rs[3].HasSource(model.SourceWebsite))

	// One sub-fetch pause for Aiola, then an entity pause after each attempted venue.
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 2 * time.Second}, sleeper.Delays())
}

func TestEnrichAll_PausesAfterFailedVenue(t *testing.T) {
	srv := newSite(t, map[string]string{"/": `<html><body><p>Willkommen</p></body></html>`})
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(down.Close)

	rs := []*model.Restaurant{
		{Name: "Down", Website: down.URL + "/"},
		{Name: "Aiola", Website: srv.URL + "/"},
	}

	sleeper := &resilience.RecordingSleeper{}
	stats := NewRunner(newEnricher(nil, nil, sleeper), 2*time.Second, sleeper).EnrichAll(context.Background(), rs)

	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Transient)
	assert.Equal(t, 1, stats.Enriched)
	assert.False(t, rs[0].HasSource(model.SourceWebsite))
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, sleeper.Delays())
}

func TestEnrichAll_SummaryFilledWhenEmpty(t *testing.T) {
	srv := newSite(t, map[string]string{"/": homepage})
	rs := []*model.Restaurant{{Name: "Aiola", Website: srv.URL + "/"}}

	sleeper := &resilience.RecordingSleeper{}
	stats := NewRunner(newEnricher(nil, nil, sleeper), 2*time.Second, sleeper).EnrichAll(context.Background(), rs)

	assert.Equal(t, 1, stats.Enriched)
	assert.Zero(t, stats.WithMenu)
	assert.Equal(t, "Aiola Upstairs: Restaurant und Bar am Grazer Schlossberg.", rs[0].Summary)
	assert.Empty(t, rs[0].MenuItems)
}

func TestEnrichAll_StopsOnCancel(t *testing.T) {
	srv := newSite(t, map[string]string{"/": `<p>hi</p>`})
	rs := []*model.Restaurant{
		{Name: "A", Website: srv.URL + "/"},
		{Name: "B", Website: srv.URL + "/"},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sleeper := &resilience.RecordingSleeper{}
	stats := NewRunner(newEnricher(nil, nil, sleeper), 2*time.Second, sleeper).EnrichAll(ctx, rs)

	assert.Equal(t, 1, stats.Failed)
	assert.Len(t, sleeper.Delays(), 1)
}
