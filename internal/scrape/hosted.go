package scrape

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/grazbites/scraper/pkg/firecrawl"
	"github.com/grazbites/scraper/pkg/jina"
)

// FirecrawlRenderer renders pages through the Firecrawl scrape API.
type FirecrawlRenderer struct {
	client  firecrawl.Client
	waitFor int
}

// NewFirecrawlRenderer creates a FirecrawlRenderer. waitForMillis is the
// extra settle time Firecrawl waits after load.
func NewFirecrawlRenderer(client firecrawl.Client, waitForMillis int) *FirecrawlRenderer {
	return &FirecrawlRenderer{client: client, waitFor: waitForMillis}
}

// Name implements Renderer.
func (f *FirecrawlRenderer) Name() string { return "firecrawl" }

// Close implements Renderer.
func (f *FirecrawlRenderer) Close() error { return nil }

// Render implements Renderer.
func (f *FirecrawlRenderer) Render(ctx context.Context, url string) (string, error) {
	resp, err := f.client.Scrape(ctx, firecrawl.ScrapeRequest{
		URL:     url,
		Formats: []string{"rawHtml"},
		WaitFor: f.waitFor,
	})
	if err != nil {
		return "", err
	}
	html := resp.Data.RawHTML
	if html == "" {
		html = resp.Data.HTML
	}
	if strings.TrimSpace(html) == "" {
		return "", eris.New("firecrawl: empty html")
	}
	return html, nil
}

// JinaRenderer renders pages through the Jina Reader in HTML mode.
type JinaRenderer struct {
	client jina.Client
}

// NewJinaRenderer creates a JinaRenderer.
func NewJinaRenderer(client jina.Client) *JinaRenderer {
	return &JinaRenderer{client: client}
}

// Name implements Renderer.
func (j *JinaRenderer) Name() string { return "jina" }

// Close implements Renderer.
func (j *JinaRenderer) Close() error { return nil }

// Render implements Renderer.
func (j *JinaRenderer) Render(ctx context.Context, url string) (string, error) {
	resp, err := j.client.Read(ctx, url, jina.WithReturnFormat("html"))
	if err != nil {
		return "", err
	}
	if resp.Code != 0 && resp.Code != 200 {
		return "", eris.Errorf("jina: reader code %d", resp.Code)
	}
	html := resp.Data.HTML
	if html == "" {
		html = resp.Data.Content
	}
	if strings.TrimSpace(html) == "" {
		return "", eris.New("jina: empty html")
	}
	return html, nil
}
