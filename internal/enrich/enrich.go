// Package enrich visits venue websites to collect a short summary and menu
// items, falling back to rendered pages and menu files when the static
// page yields too little.
package enrich

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/grazbites/scraper/internal/menu"
	"github.com/grazbites/scraper/internal/model"
	"github.com/grazbites/scraper/internal/resilience"
	"github.com/grazbites/scraper/internal/scrape"
)

// Method names the step that produced a Result's items.
type Method string

const (
	MethodNone     Method = ""
	MethodHomepage Method = "homepage"
	MethodMenuPage Method = "menu_page"
	MethodRenderer Method = "renderer"
	MethodVision   Method = "vision"
)

// Fetcher downloads pages and menu files.
type Fetcher interface {
	FetchHTML(ctx context.Context, url string) (*scrape.Page, error)
	FetchFile(ctx context.Context, url string) (*scrape.Page, error)
}

// FileExtractor reads menu items from a downloaded PDF or image.
type FileExtractor interface {
	Extract(ctx context.Context, f menu.File) menu.Result
}

// Result is what one website yielded.
type Result struct {
	Summary     string
	MenuURL     string
	MenuFileURL string
	Items       []model.MenuItem
	Method      Method
	Strategy    menu.Strategy
}

// Options configures an Enricher.
type Options struct {
	// MinItems is the item count below which fallbacks run.
	MinItems int
	// SubfetchDelay separates requests made for the same venue.
	SubfetchDelay time.Duration
}

// Enricher extracts a summary and menu from one website.
type Enricher struct {
	fetcher  Fetcher
	renderer scrape.Renderer
	files    FileExtractor
	sleeper  resilience.Sleeper
	opts     Options
}

// NewEnricher creates an Enricher. renderer and files are optional; a nil
// value disables that fallback.
func NewEnricher(fetcher Fetcher, renderer scrape.Renderer, files FileExtractor, sleeper resilience.Sleeper, opts Options) *Enricher {
	if opts.MinItems <= 0 {
		opts.MinItems = 3
	}
	return &Enricher{
		fetcher:  fetcher,
		renderer: renderer,
		files:    files,
		sleeper:  resilience.OrReal(sleeper),
		opts:     opts,
	}
}

// Enrich fetches siteURL and extracts what it can. An error means the
// homepage itself could not be used; later fallbacks only log.
func (e *Enricher) Enrich(ctx context.Context, siteURL string) (*Result, error) {
	page, err := e.fetcher.FetchHTML(ctx, siteURL)
	if err != nil {
		return nil, eris.Wrap(err, "enrich: fetch homepage")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML()))
	if err != nil {
		return nil, eris.Wrap(err, "enrich: parse homepage")
	}

	res := &Result{Summary: Summary(doc)}
	menuPage, menuFile := MenuLinks(doc, page.URL)
	res.MenuFileURL = menuFile
	res.MenuURL = menuPage
	if res.MenuURL == "" {
		res.MenuURL = menuFile
	}
	res.take(menu.FromDocument(doc), MethodHomepage)

	log := zap.L().With(zap.String("url", siteURL))

	if menuPage != "" && menuPage != siteURL && menuPage != page.URL && e.short(res) {
		if err := e.sleeper.Sleep(ctx, e.opts.SubfetchDelay); err != nil {
			return res, nil
		}
		if mp, err := e.fetcher.FetchHTML(ctx, menuPage); err != nil {
			log.Debug("enrich: menu page fetch failed", zap.String("menu_url", menuPage), zap.Error(err))
		} else {
			res.takeLarger(menu.FromHTML(mp.HTML()), MethodMenuPage)
		}
	}

	if e.renderer != nil && menuPage != "" && e.short(res) {
		if html, err := e.renderer.Render(ctx, menuPage); err != nil {
			log.Debug("enrich: render failed", zap.String("menu_url", menuPage), zap.Error(err))
		} else {
			res.takeLarger(menu.FromHTML(html), MethodRenderer)
		}
	}

	if e.files != nil && menuFile != "" && e.short(res) {
		if err := e.sleeper.Sleep(ctx, e.opts.SubfetchDelay); err != nil {
			return res, nil
		}
		log.Info("enrich: reading menu file", zap.String("file_url", menuFile))
		if f, err := e.fetcher.FetchFile(ctx, menuFile); err != nil {
			log.Debug("enrich: menu file fetch failed", zap.String("file_url", menuFile), zap.Error(err))
		} else {
			res.takeLarger(e.files.Extract(ctx, menu.File{
				URL:         f.URL,
				ContentType: f.ContentType,
				Body:        f.Body,
			}), MethodVision)
		}
	}

	return res, nil
}

// short reports whether another fallback should run. Structured data is
// trusted as complete.
func (e *Enricher) short(r *Result) bool {
	return r.Strategy != menu.StrategyStructured && len(r.Items) < e.opts.MinItems
}

func (r *Result) take(m menu.Result, method Method) {
	if m.Len() == 0 {
		return
	}
	r.Items = m.Items
	r.Strategy = m.Strategy
	r.Method = method
}

func (r *Result) takeLarger(m menu.Result, method Method) {
	if m.Len() > len(r.Items) {
		r.take(m, method)
	}
}
