package osm

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/grazbites/scraper/internal/model"
)

// NameKey is the dedupe key for a restaurant: trimmed, case-folded name.
func NameKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// Dedupe keeps the first restaurant per name key, preserving first-seen
// order, and reports how many were dropped.
func Dedupe(rs []model.Restaurant) ([]model.Restaurant, int) {
	seen := make(map[string]struct{}, len(rs))
	out := make([]model.Restaurant, 0, len(rs))
	for _, r := range rs {
		key := NameKey(r.Name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out, len(rs) - len(out)
}
