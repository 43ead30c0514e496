package osm

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/grazbites/scraper/internal/model"
)

// featureRule maps one OSM tag to a feature label when its value is accepted.
type featureRule struct {
	tag      string
	label    string
	accepted []string
}

var featureRules = []featureRule{
	{"outdoor_seating", "outdoor_seating", []string{"yes"}},
	{"wheelchair", "wheelchair_accessible", []string{"yes", "limited"}},
	{"diet:vegan", "vegan_options", []string{"yes", "only"}},
	{"diet:vegetarian", "vegetarian_options", []string{"yes", "only"}},
	{"internet_access", "wifi", []string{"wlan", "yes"}},
	{"delivery", "delivery", []string{"yes"}},
	{"takeaway", "takeaway", []string{"yes"}},
	{"reservation", "reservations", []string{"yes"}},
}

var cuisineFallback = map[string][]string{
	"cafe":       {"Cafe"},
	"fast_food":  {"Fast Food"},
	"bar":        {"Bar"},
	"pub":        {"Bar"},
	"biergarten": {"Austrian", "Beer Garden"},
}

var priceByAmenity = map[string]model.PriceTier{
	"fast_food": model.PriceBudget,
}

// Normalizer converts raw POI tags into the canonical restaurant schema.
type Normalizer struct {
	city     string
	fallback string
	title    cases.Caser
}

// NewNormalizer creates a Normalizer for the given default city and country.
func NewNormalizer(city, country string) *Normalizer {
	return &Normalizer{
		city:     city,
		fallback: city + ", " + country,
		title:    cases.Title(language.Und),
	}
}

// Normalize builds a Restaurant from one raw element. It never fails; every
// field has a fallback.
func (n *Normalizer) Normalize(e model.RawElement) model.Restaurant {
	return model.Restaurant{
		Name:         strings.TrimSpace(e.Tag("name")),
		Address:      n.Address(e.Tags),
		Phone:        firstTag(e.Tags, "phone", "contact:phone"),
		Website:      firstTag(e.Tags, "website", "contact:website"),
		Cuisine:      n.Cuisine(e.Tags),
		PriceRange:   PriceTier(e.Tags),
		ReviewCount:  0,
		Features:     Features(e.Tags),
		OpeningHours: ParseOpeningHours(e.Tag("opening_hours")),
		MenuItems:    []model.MenuItem{},
		Latitude:     e.Latitude,
		Longitude:    e.Longitude,
		DataSources:  []string{model.SourceOpenStreetMap},
	}
}

// NormalizeAll normalizes every element, preserving order.
func (n *Normalizer) NormalizeAll(elems []model.RawElement) []model.Restaurant {
	out := make([]model.Restaurant, 0, len(elems))
	for _, e := range elems {
		out = append(out, n.Normalize(e))
	}
	return out
}

// Address composes "street number, postcode city". Without street parts it
// falls back to postcode/city, then to "City, Country".
func (n *Normalizer) Address(tags map[string]string) string {
	street := strings.TrimSpace(tags["addr:street"] + " " + tags["addr:housenumber"])
	postcode := strings.TrimSpace(tags["addr:postcode"])
	city := strings.TrimSpace(tags["addr:city"])

	if street == "" && postcode == "" && city == "" {
		return n.fallback
	}
	if city == "" {
		city = n.city
	}
	locality := strings.TrimSpace(postcode + " " + city)
	if street == "" {
		return locality
	}
	return street + ", " + locality
}

// Cuisine splits the semicolon-delimited cuisine tag into title-cased labels,
// or infers a default from the amenity kind.
func (n *Normalizer) Cuisine(tags map[string]string) []string {
	var out []string
	for _, c := range strings.Split(tags["cuisine"], ";") {
		c = strings.TrimSpace(strings.ReplaceAll(c, "_", " "))
		if c == "" {
			continue
		}
		out = append(out, n.title.String(c))
	}
	if len(out) > 0 {
		return out
	}
	if fb, ok := cuisineFallback[tags["amenity"]]; ok {
		return append([]string(nil), fb...)
	}
	return []string{"Restaurant"}
}

// PriceTier infers the affordability tier from the amenity kind alone.
func PriceTier(tags map[string]string) model.PriceTier {
	if tier, ok := priceByAmenity[tags["amenity"]]; ok {
		return tier
	}
	return model.PriceModerate
}

// Features returns the labels of every feature whose source tag carries an
// accepted value.
func Features(tags map[string]string) []string {
	features := []string{}
	for _, r := range featureRules {
		v := strings.ToLower(strings.TrimSpace(tags[r.tag]))
		for _, a := range r.accepted {
			if v == a {
				features = append(features, r.label)
				break
			}
		}
	}
	return features
}

func firstTag(tags map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(tags[k]); v != "" {
			return v
		}
	}
	return ""
}
