package pipeline

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/grazbites/scraper/internal/config"
	"github.com/grazbites/scraper/internal/scrape"
	"github.com/grazbites/scraper/pkg/firecrawl"
	"github.com/grazbites/scraper/pkg/jina"
)

// chromeStarter launches the headless browser. Replaced in tests.
var chromeStarter = func(opts scrape.ChromeOptions) (scrape.Renderer, error) {
	return scrape.NewChromeRenderer(opts)
}

// NewRendererFactory returns a factory that builds the renderer chain named
// by browser.renderers. Hosted renderers whose client is nil are skipped;
// a chrome that fails to start is skipped with a warning.
func NewRendererFactory(cfg *config.Config, fc firecrawl.Client, jc jina.Client) RendererFactory {
	return func() (scrape.Renderer, error) {
		var rs []scrape.Renderer
		for _, name := range cfg.Browser.Renderers {
			switch name {
			case "chrome":
				r, err := chromeStarter(scrape.ChromeOptions{
					ExecPath:    cfg.Browser.ExecPath,
					UserAgent:   cfg.Scrape.UserAgent,
					NavTimeout:  cfg.Browser.NavTimeout,
					IdleTimeout: cfg.Browser.IdleTimeout,
					Settle:      cfg.Browser.Settle,
				})
				if err != nil {
					zap.L().Warn("pipeline: chrome unavailable", zap.Error(err))
					continue
				}
				rs = append(rs, r)
			case "firecrawl":
				if fc == nil {
					zap.L().Warn("pipeline: firecrawl renderer needs firecrawl.key, skipping")
					continue
				}
				rs = append(rs, scrape.NewFirecrawlRenderer(fc, int(cfg.Browser.Settle.Milliseconds())))
			case "jina":
				if jc == nil {
					zap.L().Warn("pipeline: jina renderer needs jina.key, skipping")
					continue
				}
				rs = append(rs, scrape.NewJinaRenderer(jc))
			default:
				zap.L().Warn("pipeline: unknown renderer", zap.String("name", name))
			}
		}
		if len(rs) == 0 {
			return nil, eris.New("pipeline: no renderer could be started")
		}
		if len(rs) == 1 {
			return rs[0], nil
		}
		return scrape.NewChain(rs...), nil
	}
}
