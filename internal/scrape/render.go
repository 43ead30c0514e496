package scrape

import (
	"context"
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Renderer returns the DOM of a page after its scripts have run.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
	Name() string
	Close() error
}

// Chain tries renderers in priority order, returning the first success.
type Chain struct {
	renderers []Renderer
}

// NewChain creates a Chain. Renderers are tried in order.
func NewChain(renderers ...Renderer) *Chain {
	return &Chain{renderers: renderers}
}

// Name implements Renderer.
func (c *Chain) Name() string {
	names := make([]string, len(c.renderers))
	for i, r := range c.renderers {
		names[i] = r.Name()
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

// Len reports how many renderers the chain holds.
func (c *Chain) Len() int { return len(c.renderers) }

// Render tries each renderer in order for url.
func (c *Chain) Render(ctx context.Context, url string) (string, error) {
	var lastErr error
	for _, r := range c.renderers {
		html, err := r.Render(ctx, url)
		if err == nil && strings.TrimSpace(html) != "" {
			return html, nil
		}
		if err == nil {
			err = eris.Errorf("scrape: %s returned empty document", r.Name())
		}
		zap.L().Debug("scrape: renderer failed, trying next",
			zap.String("renderer", r.Name()),
			zap.String("url", url),
			zap.Error(err),
		)
		lastErr = err
	}
	if lastErr != nil {
		return "", eris.Wrap(lastErr, "scrape: all renderers failed")
	}
	return "", eris.Errorf("scrape: no renderer configured for %s", url)
}

// Close releases every renderer, returning all close errors joined.
func (c *Chain) Close() error {
	var errs []error
	for _, r := range c.renderers {
		if err := r.Close(); err != nil {
			errs = append(errs, eris.Wrapf(err, "scrape: close %s", r.Name()))
		}
	}
	return errors.Join(errs...)
}
