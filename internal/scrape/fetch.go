// Package scrape fetches venue web pages and menu files, and renders
// JavaScript-heavy pages through a headless browser or hosted renderers.
package scrape

import (
	"context"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/grazbites/scraper/internal/resilience"
)

// ErrNotHTML is returned by FetchHTML when the response is not an HTML page.
var ErrNotHTML = eris.New("scrape: response is not html")

// ErrTooLarge is returned when a body exceeds the configured cap.
var ErrTooLarge = eris.New("scrape: response too large")

// Page is a fetched resource.
type Page struct {
	// URL is the final URL after redirects.
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// HTML returns the body as a string.
func (p *Page) HTML() string { return string(p.Body) }

// MediaType returns the lowercase MIME type without parameters.
func (p *Page) MediaType() string {
	return mediaType(p.ContentType)
}

// FetcherOptions configures a Fetcher.
type FetcherOptions struct {
	UserAgent    string
	Timeout      time.Duration
	MaxBodyBytes int64
	MaxFileBytes int64
}

// Fetcher performs plain HTTP GETs with block detection. No retries.
type Fetcher struct {
	client *http.Client
	opts   FetcherOptions
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts FetcherOptions) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 5 << 20
	}
	if opts.MaxFileBytes <= 0 {
		opts.MaxFileBytes = 20 << 20
	}
	return &Fetcher{
		opts: opts,
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

// FetchHTML fetches a web page. Non-HTML responses fail with ErrNotHTML.
func (f *Fetcher) FetchHTML(ctx context.Context, targetURL string) (*Page, error) {
	p, err := f.get(ctx, targetURL, f.opts.MaxBodyBytes, "text/html,application/xhtml+xml")
	if err != nil {
		return nil, err
	}

	if blocked, kind := DetectBlock(p.StatusCode, p.header, p.Body); blocked {
		return nil, eris.Errorf("scrape: blocked (%s) %s", kind, targetURL)
	}
	if err := statusError(p.StatusCode, targetURL); err != nil {
		return nil, err
	}
	if mt := p.MediaType(); mt != "text/html" && mt != "application/xhtml+xml" {
		return nil, eris.Wrapf(ErrNotHTML, "scrape: %s is %q", targetURL, mt)
	}
	return &p.Page, nil
}

// FetchFile downloads a menu file (PDF or image) up to the file size cap.
func (f *Fetcher) FetchFile(ctx context.Context, targetURL string) (*Page, error) {
	p, err := f.get(ctx, targetURL, f.opts.MaxFileBytes, "*/*")
	if err != nil {
		return nil, err
	}
	if err := statusError(p.StatusCode, targetURL); err != nil {
		return nil, err
	}
	return &p.Page, nil
}

// statusError fails HTTP error statuses. Server hiccups and rate limiting
// are marked transient.
func statusError(status int, targetURL string) error {
	if status < 400 {
		return nil
	}
	err := eris.Errorf("scrape: status %d for %s", status, targetURL)
	if resilience.IsTransientHTTPStatus(status) {
		return resilience.NewTransientError(err, status)
	}
	return err
}

type fetched struct {
	Page
	header http.Header
}

func (f *Fetcher) get(ctx context.Context, targetURL string, limit int64, accept string) (*fetched, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "scrape: create request")
	}
	if f.opts.UserAgent != "" {
		req.Header.Set("User-Agent", f.opts.UserAgent)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "de-AT,de;q=0.9,en;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: fetch %s", targetURL)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: read body %s", targetURL)
	}
	if int64(len(body)) > limit {
		return nil, eris.Wrapf(ErrTooLarge, "scrape: %s exceeds %d bytes", targetURL, limit)
	}

	return &fetched{
		Page: Page{
			URL:         resp.Request.URL.String(),
			StatusCode:  resp.StatusCode,
			ContentType: resp.Header.Get("Content-Type"),
			Body:        body,
		},
		header: resp.Header,
	}, nil
}

func mediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt, _, _ = strings.Cut(contentType, ";")
	}
	return strings.ToLower(strings.TrimSpace(mt))
}
