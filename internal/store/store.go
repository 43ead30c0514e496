// Package store persists the clean restaurant snapshot into SQLite or
// PostgreSQL for the API that serves it.
package store

import (
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/grazbites/scraper/internal/menu"
	"github.com/grazbites/scraper/internal/model"
)

// Column limits for menu_items.
const (
	maxItemName     = 200
	maxItemPrice    = 50
	maxItemCategory = 50
)

// SeedStats counts what ReplaceRestaurants removed and wrote.
type SeedStats struct {
	Cleared     int
	Restaurants int
	MenuItems   int
}

// Store defines the persistence interface for seeding.
type Store interface {
	// ReplaceRestaurants deletes every stored restaurant and menu item and
	// inserts rs in one transaction.
	ReplaceRestaurants(ctx context.Context, rs []model.Restaurant) (SeedStats, error)
	// ListRestaurants returns stored restaurants ordered by name, with
	// their menu items in snapshot order.
	ListRestaurants(ctx context.Context) ([]model.Restaurant, error)

	Migrate(ctx context.Context) error
	Close() error
}

var restaurantColumns = []string{
	"id", "name", "address", "phone", "website", "cuisine", "price_range",
	"rating", "review_count", "features", "opening_hours", "summary",
	"menu_url", "latitude", "longitude", "data_sources", "last_verified",
}

var menuItemColumns = []string{
	"id", "restaurant_id", "position", "name", "price", "price_text", "category",
}

// buildRows converts restaurants into insert rows in column order.
func buildRows(rs []model.Restaurant, verified time.Time) (restaurants, items [][]any, err error) {
	restaurants = make([][]any, 0, len(rs))
	for _, r := range rs {
		id := uuid.New().String()

		cuisine, err := jsonList(r.Cuisine)
		if err != nil {
			return nil, nil, eris.Wrapf(err, "store: encode cuisine for %s", r.Name)
		}
		features, err := jsonList(r.Features)
		if err != nil {
			return nil, nil, eris.Wrapf(err, "store: encode features for %s", r.Name)
		}
		sources, err := jsonList(r.DataSources)
		if err != nil {
			return nil, nil, eris.Wrapf(err, "store: encode data sources for %s", r.Name)
		}
		var hours any
		if r.OpeningHours != nil {
			b, err := json.Marshal(r.OpeningHours)
			if err != nil {
				return nil, nil, eris.Wrapf(err, "store: encode opening hours for %s", r.Name)
			}
			hours = string(b)
		}
		price := r.PriceRange
		if price == "" {
			price = model.PriceModerate
		}

		restaurants = append(restaurants, []any{
			id, r.Name, r.Address, nullable(r.Phone), nullable(r.Website),
			cuisine, string(price), r.Rating, r.ReviewCount, features, hours,
			nullable(r.Summary), nullable(r.MenuURL), r.Latitude, r.Longitude,
			sources, verified,
		})

		pos := 0
		for _, it := range r.MenuItems {
			name := strings.TrimSpace(it.Name)
			if name == "" {
				continue
			}
			value := it.PriceValue
			if value == nil {
				value = menu.ParsePrice(it.Price)
			}
			category := it.Category
			if category == "" {
				category = menu.CategoryOther
			}
			items = append(items, []any{
				uuid.New().String(), id, pos, clip(name, maxItemName), value,
				nullable(clip(it.Price, maxItemPrice)), clip(category, maxItemCategory),
			})
			pos++
		}
	}
	return restaurants, items, nil
}

type scannable interface {
	Scan(dest ...any) error
}

const selectRestaurants = `SELECT id, name, address, phone, website, cuisine, price_range, rating,
	review_count, features, opening_hours, summary, menu_url, latitude, longitude, data_sources
	FROM restaurants ORDER BY name, id`

const selectMenuItems = `SELECT restaurant_id, name, price, price_text, category
	FROM menu_items ORDER BY restaurant_id, position`

func scanRestaurant(row scannable) (string, model.Restaurant, error) {
	var id, price string
	var r model.Restaurant
	var phone, website, summary, menuURL *string
	var cuisine, features, hours, sources []byte
	err := row.Scan(&id, &r.Name, &r.Address, &phone, &website, &cuisine, &price, &r.Rating,
		&r.ReviewCount, &features, &hours, &summary, &menuURL, &r.Latitude, &r.Longitude, &sources)
	if err != nil {
		return "", r, eris.Wrap(err, "store: scan restaurant")
	}
	r.Phone = deref(phone)
	r.Website = deref(website)
	r.Summary = deref(summary)
	r.MenuURL = deref(menuURL)
	r.PriceRange = model.PriceTier(price)

	for _, f := range []struct {
		raw []byte
		dst any
	}{
		{cuisine, &r.Cuisine},
		{features, &r.Features},
		{sources, &r.DataSources},
		{hours, &r.OpeningHours},
	} {
		if len(f.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(f.raw, f.dst); err != nil {
			return "", r, eris.Wrapf(err, "store: decode restaurant %s", id)
		}
	}
	r.MenuItems = []model.MenuItem{}
	return id, r, nil
}

func scanMenuItem(row scannable) (string, model.MenuItem, error) {
	var (
		restaurantID string
		it           model.MenuItem
		priceText    *string
	)
	if err := row.Scan(&restaurantID, &it.Name, &it.PriceValue, &priceText, &it.Category); err != nil {
		return "", it, eris.Wrap(err, "store: scan menu item")
	}
	it.Price = deref(priceText)
	return restaurantID, it, nil
}

// attachItems appends each item to the restaurant it belongs to.
func attachItems(rs []model.Restaurant, index map[string]int, restaurantID string, it model.MenuItem) {
	if i, ok := index[restaurantID]; ok {
		rs[i].MenuItems = append(rs[i].MenuItems, it)
	}
}

func jsonList(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	return string(b), err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
