package discovery

import (
	"cmp"
	"context"
	"net/url"
	"regexp"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// SearchResult is one web search hit.
type SearchResult struct {
	Href  string
	Title string
	Body  string
}

// Searcher runs a text web search.
type Searcher interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// Matcher finds the official website of a venue from web search results.
type Matcher struct {
	searcher Searcher
	rules    *Rules
	city     string
}

// NewMatcher creates a Matcher for venues in city.
func NewMatcher(searcher Searcher, rules *Rules, city string) *Matcher {
	return &Matcher{searcher: searcher, rules: rules, city: city}
}

// Match searches for name and returns the best-scoring website, if any
// candidate clears the minimum score. Search failures yield no match.
func (m *Matcher) Match(ctx context.Context, name, address string) (string, bool) {
	query := m.Query(name, address)

	results, err := m.searcher.Search(ctx, query)
	if err != nil {
		zap.L().Warn("discovery: search failed",
			zap.String("name", name),
			zap.Error(err),
		)
		return "", false
	}
	if len(results) == 0 {
		return "", false
	}
	return m.PickBest(results, name)
}

// Query builds the search query for a venue.
func (m *Matcher) Query(name, address string) string {
	q := `"` + name + `" ` + m.city + " Restaurant"
	if address != "" && !strings.Contains(strings.ToLower(address), strings.ToLower(m.city)) {
		q += " " + address
	}
	return q
}

type candidate struct {
	score int
	url   string
}

// PickBest scores results against name and returns the highest-scoring URL.
// Ties keep result order.
func (m *Matcher) PickBest(results []SearchResult, name string) (string, bool) {
	tokens := m.Tokenize(name)
	city := strings.ToLower(m.city)
	w := m.rules.Weights

	var candidates []candidate
	for _, res := range results {
		if res.Href == "" {
			continue
		}
		domain, ok := domainOf(res.Href)
		if !ok || m.rules.Blocked(domain) {
			continue
		}
		tld := tldOf(domain)
		if m.rules.suspectTLD(tld) || m.rules.negativeMatch(domain) {
			continue
		}

		title := strings.ToLower(res.Title)
		snippet := strings.ToLower(res.Body)

		domainScore := m.nameDomainScore(tokens, domain)
		titleHits := 0
		for _, t := range tokens {
			if strings.Contains(title, t) {
				titleHits++
			}
		}

		score := domainScore + titleHits*w.TitleToken

		cityInTitle := city != "" && strings.Contains(title, city)
		cityInSnippet := city != "" && strings.Contains(snippet, city)
		switch {
		case cityInTitle:
			score += w.CityTitle
		case cityInSnippet:
			score += w.CitySnippet
		}

		score += m.rules.tldScore(tld)

		if m.rules.foodMatch(title) {
			score += w.FoodTitle
		}
		if m.rules.foodMatch(snippet) {
			score += w.FoodSnippet
		}

		if domainScore == 0 && titleHits == 0 {
			if len(tokens) > 0 || !(cityInTitle || cityInSnippet) {
				continue
			}
		}

		candidates = append(candidates, candidate{score: score, url: res.Href})
	}

	if len(candidates) == 0 {
		return "", false
	}

	slices.SortStableFunc(candidates, func(a, b candidate) int {
		return cmp.Compare(b.score, a.score)
	})
	best := candidates[0]
	if best.score < w.MinScore {
		zap.L().Debug("discovery: best candidate below threshold",
			zap.String("url", best.url),
			zap.Int("score", best.score),
			zap.Int("min_score", w.MinScore),
		)
		return "", false
	}
	return best.url, true
}

var tokenSplit = regexp.MustCompile(`[\s\-/&'+.,()]+`)

// Tokenize splits a venue name into distinctive lowercase tokens, dropping
// short tokens and stop words.
func (m *Matcher) Tokenize(name string) []string {
	var out []string
	for _, t := range tokenSplit.Split(strings.ToLower(strings.TrimSpace(name)), -1) {
		if len([]rune(t)) <= 2 || m.rules.stop[t] {
			continue
		}
		out = append(out, t)
	}
	return out
}

var domainWordSplit = regexp.MustCompile(`[\-._]+`)

func (m *Matcher) nameDomainScore(tokens []string, domain string) int {
	base := domain
	if i := strings.LastIndexByte(domain, '.'); i >= 0 {
		base = domain[:i]
	}
	words := domainWordSplit.Split(base, -1)
	w := m.rules.Weights

	score := 0
	for _, t := range tokens {
		switch {
		case slices.Contains(words, t):
			score += w.DomainWord
		case t == base:
			score += w.DomainBase
		case strings.HasPrefix(base, t) || strings.HasSuffix(base, t):
			score += w.DomainAffix
		case partialWordMatch(t, words, w.PartialRatio):
			score += w.DomainPartial
		}
	}
	return score
}

func partialWordMatch(token string, words []string, ratio float64) bool {
	tl := len([]rune(token))
	for _, word := range words {
		wl := len([]rune(word))
		if wl <= 2 {
			continue
		}
		if strings.Contains(word, token) && float64(tl)/float64(wl) >= ratio {
			return true
		}
	}
	return false
}

// domainOf returns the lowercase host of rawURL without a leading "www.".
func domainOf(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www."), true
}

// tldOf returns the public suffix of domain, treating Austrian-style
// second-level labels (co, or, ac, gv) as part of it.
func tldOf(domain string) string {
	parts := strings.Split(domain, ".")
	n := len(parts)
	switch {
	case n >= 3 && slices.Contains([]string{"co", "or", "ac", "gv"}, parts[n-2]):
		return parts[n-2] + "." + parts[n-1]
	case n >= 2:
		return parts[n-1]
	}
	return ""
}
