package enrich

import (
	"net/url"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const maxSummaryLen = 300

// menuKeywords mark a link as leading to a menu.
var menuKeywords = []string{"menu", "speisekarte", "karte", "gerichte", "dishes", "speisen"}

// fileExts are the menu file types handed to the vision fallback.
var fileExts = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// Summary returns the meta description when it has at least 20 characters,
// else the first of the leading paragraphs with at least 40.
func Summary(doc *goquery.Document) string {
	if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		desc = strings.TrimSpace(desc)
		if utf8.RuneCountInString(desc) >= 20 {
			return truncate(desc, maxSummaryLen)
		}
	}

	var summary string
	doc.Find("p").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= 10 {
			return false
		}
		text := collapse(s.Text())
		if utf8.RuneCountInString(text) >= 40 {
			summary = truncate(text, maxSummaryLen)
			return false
		}
		return true
	})
	return summary
}

// MenuLinks returns the first menu page link and the first menu file link,
// both resolved against base.
func MenuLinks(doc *goquery.Document, base string) (page, file string) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", ""
	}

	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if skipHref(href) {
			return true
		}
		combined := strings.ToLower(href) + " " + strings.ToLower(collapse(s.Text()))
		if !hasMenuKeyword(combined) {
			return true
		}

		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		abs := baseURL.ResolveReference(ref).String()
		if IsMenuFile(href) {
			if file == "" {
				file = abs
			}
		} else if page == "" {
			page = abs
		}
		return page == "" || file == ""
	})
	return page, file
}

// IsMenuFile reports whether a link points at a PDF or image.
func IsMenuFile(href string) bool {
	p := strings.ToLower(href)
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return fileExts[path.Ext(p)]
}

func hasMenuKeyword(s string) bool {
	for _, kw := range menuKeywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func skipHref(href string) bool {
	lower := strings.ToLower(href)
	return href == "" ||
		strings.HasPrefix(lower, "#") ||
		strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(lower, "tel:") ||
		strings.HasPrefix(lower, "javascript:")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
