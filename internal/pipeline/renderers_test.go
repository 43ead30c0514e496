package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grazbites/scraper/internal/config"
	"github.com/grazbites/scraper/internal/scrape"
	"github.com/grazbites/scraper/pkg/firecrawl"
	"github.com/grazbites/scraper/pkg/jina"
)

func withChrome(t *testing.T, fn func(scrape.ChromeOptions) (scrape.Renderer, error)) {
	t.Helper()
	orig := chromeStarter
	chromeStarter = fn
	t.Cleanup(func() { chromeStarter = orig })
}

func rendererConfig(names ...string) *config.Config {
	cfg := testConfig("")
	cfg.Browser.Renderers = names
	return cfg
}

func TestNewRendererFactory_Chain(t *testing.T) {
	withChrome(t, func(scrape.ChromeOptions) (scrape.Renderer, error) {
		return nil, errors.New("chrome not installed")
	})

	fc := firecrawl.NewClient("fc-key")
	jc := jina.NewClient("jina-key")
	r, err := NewRendererFactory(rendererConfig("chrome", "firecrawl", "jina"), fc, jc)()
	require.NoError(t, err)

	chain, ok := r.(*scrape.Chain)
	require.True(t, ok)
	assert.Equal(t, 2, chain.Len())
	assert.Equal(t, "chain(firecrawl,jina)", chain.Name())
}

func TestNewRendererFactory_Single(t *testing.T) {
	fake := &fakeRenderer{}
	var got scrape.ChromeOptions
	withChrome(t, func(opts scrape.ChromeOptions) (scrape.Renderer, error) {
		got = opts
		return fake, nil
	})

	cfg := rendererConfig("chrome", "firecrawl")
	cfg.Browser.ExecPath = "/usr/bin/chromium"
	cfg.Scrape.UserAgent = "grazbites-test"

	r, err := NewRendererFactory(cfg, nil, nil)()
	require.NoError(t, err)
	assert.Same(t, fake, r)
	assert.Equal(t, "/usr/bin/chromium", got.ExecPath)
	assert.Equal(t, "grazbites-test", got.UserAgent)
}

func TestNewRendererFactory_NoneAvailable(t *testing.T) {
	_, err := NewRendererFactory(rendererConfig("firecrawl", "jina"), nil, nil)()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no renderer could be started")
}
