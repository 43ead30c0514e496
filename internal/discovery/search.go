package discovery

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/grazbites/scraper/internal/resilience"
	"github.com/grazbites/scraper/pkg/jina"
)

// JinaSearcher adapts Jina Search to the Searcher interface. Calls go
// through a circuit breaker so a failing search backend stops being hit.
type JinaSearcher struct {
	client     jina.Client
	breaker    *resilience.CircuitBreaker
	maxResults int
}

// NewJinaSearcher wraps client. maxResults caps the hits returned per query.
func NewJinaSearcher(client jina.Client, breaker *resilience.CircuitBreaker, maxResults int) *JinaSearcher {
	return &JinaSearcher{client: client, breaker: breaker, maxResults: maxResults}
}

// Search runs query biased toward Austrian German results.
func (s *JinaSearcher) Search(ctx context.Context, query string) ([]SearchResult, error) {
	call := func(ctx context.Context) (*jina.SearchResponse, error) {
		return s.client.Search(ctx, query, jina.WithCountry("at"), jina.WithLanguage("de"))
	}

	var (
		resp *jina.SearchResponse
		err  error
	)
	if s.breaker != nil {
		resp, err = resilience.ExecuteVal(ctx, s.breaker, call)
	} else {
		resp, err = call(ctx)
	}
	if err != nil {
		return nil, eris.Wrap(err, "discovery: jina search")
	}

	out := make([]SearchResult, 0, len(resp.Data))
	for _, r := range resp.Data {
		if s.maxResults > 0 && len(out) >= s.maxResults {
			break
		}
		body := r.Description
		if body == "" {
			body = r.Content
		}
		out = append(out, SearchResult{Href: r.URL, Title: r.Title, Body: body})
	}
	return out, nil
}
