package discovery

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/grazbites/scraper/internal/model"
	"github.com/grazbites/scraper/internal/resilience"
)

func TestDiscoverAll(t *testing.T) {
	s := &mockSearcher{}
	s.On("Search", mock.Anything, `"Aiola" Graz Restaurant`).Return([]SearchResult{
		{Href: "https://www.aiola.at/", Title: "Aiola - Restaurant in Graz"},
	}, nil).Once()
	s.On("Search", mock.Anything, `"Nowhere" Graz Restaurant`).Return([]SearchResult{}, nil).Once()

	rs := []*model.Restaurant{
		{Name: "Aiola", Address: "Graz, Austria", DataSources: []string{model.SourceOpenStreetMap}},
		{Name: "Has Site", Website: "https://has-site.at"},
		{Name: "Nowhere", Address: "Graz, Austria"},
	}

	sleeper := &resilience.RecordingSleeper{}
	d := NewDiscoverer(newTestMatcher(t, s), 3*time.Second, sleeper)
	stats := d.DiscoverAll(context.Background(), rs)

	assert.Equal(t, Stats{Missing: 2, Found: 1}, stats)
	assert.Equal(t, "https://www.aiola.at/", rs[0].Website)
	assert.Equal(t, []string{model.SourceOpenStreetMap, model.SourceWebSearch}, rs[0].DataSources)
	assert.Equal(t, "https://has-site.at", rs[1].Website)
	assert.Empty(t, rs[2].Website)
	assert.False(t, rs[2].HasSource(model.SourceWebSearch))
	assert.Equal(t, []time.Duration{3 * time.Second, 3 * time.Second}, sleeper.Delays())
	s.AssertExpectations(t)
}

func TestDiscoverAll_NothingMissing(t *testing.T) {
	s := &mockSearcher{}
	sleeper := &resilience.RecordingSleeper{}
	d := NewDiscoverer(newTestMatcher(t, s), 3*time.Second, sleeper)

	stats := d.DiscoverAll(context.Background(), []*model.Restaurant{{Name: "A", Website: "https://a.at"}})

	assert.Zero(t, stats.Missing)
	assert.Empty(t, sleeper.Delays())
	s.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestDiscoverAll_StopsOnCancel(t *testing.T) {
	s := &mockSearcher{}
	s.On("Search", mock.Anything, mock.Anything).Return([]SearchResult{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewDiscoverer(newTestMatcher(t, s), 3*time.Second, &resilience.RecordingSleeper{})
	d.DiscoverAll(ctx, []*model.Restaurant{{Name: "A"}, {Name: "B"}})

	s.AssertNumberOfCalls(t, "Search", 1)
}
