package scrape

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ChromeOptions configures the headless browser.
type ChromeOptions struct {
	ExecPath  string
	UserAgent string
	// NavTimeout bounds navigation until the load event.
	NavTimeout time.Duration
	// IdleTimeout bounds the wait for network idle after load.
	IdleTimeout time.Duration
	// Settle is a fixed pause after network idle for late scripts.
	Settle time.Duration
}

// ChromeRenderer renders pages in one shared headless Chrome process. Each
// Render opens and closes its own tab.
type ChromeRenderer struct {
	opts ChromeOptions

	mu            sync.Mutex
	closed        bool
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewChromeRenderer starts the browser. Call Close to stop it.
func NewChromeRenderer(opts ChromeOptions) (*ChromeRenderer, error) {
	if opts.NavTimeout <= 0 {
		opts.NavTimeout = 20 * time.Second
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 10 * time.Second
	}

	allocOpts := chromedp.DefaultExecAllocatorOptions[:]
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// The first Run on the browser context launches Chrome.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, eris.Wrap(err, "scrape: start chrome")
	}

	zap.L().Info("scrape: headless chrome started")
	return &ChromeRenderer{
		opts:          opts,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Name implements Renderer.
func (c *ChromeRenderer) Name() string { return "chrome" }

// Render navigates a fresh tab to url, waits for network idle and the settle
// delay, and returns the document's outer HTML.
func (c *ChromeRenderer) Render(ctx context.Context, url string) (string, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return "", eris.New("scrape: chrome renderer is closed")
	}
	c.mu.Unlock()

	tabCtx, cancelTab := chromedp.NewContext(c.browserCtx)
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	// "init" starts a new document, so an idle signal left over from
	// about:blank is discarded.
	idle := make(chan struct{}, 1)
	chromedp.ListenTarget(tabCtx, func(ev any) {
		e, ok := ev.(*page.EventLifecycleEvent)
		if !ok {
			return
		}
		switch e.Name {
		case "init":
			select {
			case <-idle:
			default:
			}
		case "networkIdle":
			select {
			case idle <- struct{}{}:
			default:
			}
		}
	})

	var html string
	err := chromedp.Run(tabCtx,
		page.SetLifecycleEventsEnabled(true),
		chromedp.ActionFunc(func(ctx context.Context) error {
			navCtx, cancel := context.WithTimeout(ctx, c.opts.NavTimeout)
			defer cancel()
			return chromedp.Navigate(url).Do(navCtx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return waitIdle(ctx, idle, c.opts.IdleTimeout)
		}),
		chromedp.Sleep(c.opts.Settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", eris.Wrapf(err, "scrape: chrome render %s", url)
	}
	return html, nil
}

// waitIdle blocks until the page reports network idle or timeout elapses.
// Pages that keep polling never go idle; the timeout is not an error.
func waitIdle(ctx context.Context, idle <-chan struct{}, timeout time.Duration) error {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-idle:
		return nil
	case <-t.C:
		zap.L().Debug("scrape: network idle not reached", zap.Duration("timeout", timeout))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close shuts the browser down. Safe to call more than once.
func (c *ChromeRenderer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	ctx, cancel := context.WithTimeout(c.browserCtx, 5*time.Second)
	defer cancel()
	err := chromedp.Cancel(ctx)
	c.browserCancel()
	c.allocCancel()
	if err != nil && !eris.Is(err, context.Canceled) {
		return eris.Wrap(err, "scrape: close chrome")
	}
	zap.L().Info("scrape: headless chrome stopped")
	return nil
}
