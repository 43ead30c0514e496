package menu

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/grazbites/scraper/internal/model"
)

const heuristicSelector = "h1, h2, h3, h4, li, tr, div, p"

var (
	trailingSep = regexp.MustCompile(`[.\-–—]+\s*$`)
	leadingSep  = regexp.MustCompile(`^\s*[.\-–—]+`)
)

// FromHeuristic walks headings and block elements in document order.
// Headings set the current category; any short block carrying a price
// becomes an item named by its remaining text.
func FromHeuristic(doc *goquery.Document) []model.MenuItem {
	var items []model.MenuItem
	seen := make(map[string]bool)
	category := CategoryOther

	doc.Find(heuristicSelector).Each(func(_ int, s *goquery.Selection) {
		text := blockText(s)
		n := utf8.RuneCountInString(text)
		if n < 3 {
			return
		}

		switch goquery.NodeName(s) {
		case "h1", "h2", "h3", "h4":
			category = InferCategory(text)
			return
		}

		if n > 200 {
			return
		}
		price := FindPrice(text)
		if price == "" {
			return
		}

		name := strings.TrimSpace(StripPrices(text))
		name = strings.TrimSpace(trailingSep.ReplaceAllString(name, ""))
		name = strings.TrimSpace(leadingSep.ReplaceAllString(name, ""))
		if l := utf8.RuneCountInString(name); l < 3 || l > 120 {
			return
		}

		key := foldKey(name)
		if seen[key] {
			return
		}
		seen[key] = true
		items = append(items, model.MenuItem{
			Name:       name,
			Price:      price,
			PriceValue: ParsePrice(price),
			Category:   category,
		})
	})
	return items
}

// blockText joins the trimmed text nodes under s with single spaces,
// skipping script and style content.
func blockText(s *goquery.Selection) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return strings.Join(parts, " ")
}
