package menu

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/grazbites/scraper/internal/model"
)

// ldKind is the schema.org node type relevant to menus.
type ldKind int

const (
	ldUnknown ldKind = iota
	ldMenu
	ldSection
	ldItem
)

// ldNode is one decoded JSON-LD object.
type ldNode struct {
	kind   ldKind
	name   string
	fields map[string]json.RawMessage
}

// ldOffer is the subset of schema.org Offer used for prices.
type ldOffer struct {
	Price    json.RawMessage `json:"price"`
	Currency string          `json:"priceCurrency"`
}

// FromStructuredData walks every application/ld+json script in doc and
// returns the schema.org menu items it describes.
func FromStructuredData(doc *goquery.Document) []model.MenuItem {
	var items []model.MenuItem
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}
		if !json.Valid([]byte(raw)) {
			zap.L().Debug("menu: skipping invalid json-ld block")
			return
		}
		walkLD(json.RawMessage(raw), CategoryOther, &items)
	})
	return items
}

func walkLD(raw json.RawMessage, category string, out *[]model.MenuItem) {
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, child := range list {
			walkLD(child, category, out)
		}
		return
	}

	node, ok := decodeLD(raw)
	if !ok {
		return
	}

	switch node.kind {
	case ldSection:
		if node.name != "" {
			category = node.name
		}
		walkField(node, "hasMenuItem", category, out)
		walkField(node, "hasMenuSection", category, out)
	case ldItem:
		if item, ok := node.menuItem(category); ok {
			*out = append(*out, item)
		}
	case ldMenu:
		walkField(node, "hasMenuSection", category, out)
		walkField(node, "hasMenuItem", category, out)
	default:
		for _, key := range []string{"@graph", "hasMenu", "menu", "hasMenuSection", "hasMenuItem"} {
			walkField(node, key, category, out)
		}
	}
}

func walkField(node ldNode, key, category string, out *[]model.MenuItem) {
	if raw, ok := node.fields[key]; ok {
		walkLD(raw, category, out)
	}
}

func decodeLD(raw json.RawMessage) (ldNode, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return ldNode{}, false
	}
	node := ldNode{
		kind:   ldUnknown,
		name:   strings.TrimSpace(ldText(fields["name"])),
		fields: fields,
	}
	for _, t := range ldTypes(fields["@type"]) {
		switch t {
		case "MenuItem":
			node.kind = ldItem
		case "MenuSection":
			if node.kind != ldItem {
				node.kind = ldSection
			}
		case "Menu":
			if node.kind == ldUnknown {
				node.kind = ldMenu
			}
		}
	}
	return node, true
}

func (n ldNode) menuItem(category string) (model.MenuItem, bool) {
	if n.name == "" {
		return model.MenuItem{}, false
	}
	item := model.MenuItem{
		Name:     n.name,
		Category: NormalizeCategory(category),
	}
	if offer, ok := firstOffer(n.fields["offers"]); ok {
		if amount := ldText(offer.Price); amount != "" {
			currency := offer.Currency
			if currency == "" || strings.EqualFold(currency, "EUR") {
				currency = "€"
			}
			item.Price = currency + amount
			item.PriceValue = ParsePrice(amount)
		}
	}
	return item, true
}

// firstOffer accepts offers as a single object or a list.
func firstOffer(raw json.RawMessage) (ldOffer, bool) {
	if len(raw) == 0 {
		return ldOffer{}, false
	}
	var offer ldOffer
	if err := json.Unmarshal(raw, &offer); err == nil {
		return offer, true
	}
	var offers []ldOffer
	if err := json.Unmarshal(raw, &offers); err == nil && len(offers) > 0 {
		return offers[0], true
	}
	return ldOffer{}, false
}

// ldTypes reads @type given as a string or a list of strings.
func ldTypes(raw json.RawMessage) []string {
	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		return []string{one}
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		return many
	}
	return nil
}

// ldText reads a string or number value.
func ldText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}
