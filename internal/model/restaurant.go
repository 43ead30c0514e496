package model

import (
	"slices"
	"time"
)

// ElementKind is the upstream geometry type of a POI.
type ElementKind string

const (
	ElementNode     ElementKind = "node"
	ElementWay      ElementKind = "way"
	ElementRelation ElementKind = "relation"
)

// RawElement is one POI record exactly as the upstream source returned it.
type RawElement struct {
	OSMID     int64             `json:"osm_id"`
	OSMType   ElementKind       `json:"osm_type"`
	Tags      map[string]string `json:"tags"`
	Latitude  *float64          `json:"latitude"`
	Longitude *float64          `json:"longitude"`
}

// Tag returns the tag value for key, or "" when absent.
func (e RawElement) Tag(key string) string {
	return e.Tags[key]
}

// PriceTier is one of four ordinal affordability symbols.
type PriceTier string

const (
	PriceBudget   PriceTier = "€"
	PriceModerate PriceTier = "€€"
	PriceUpscale  PriceTier = "€€€"
	PriceFine     PriceTier = "€€€€"
)

// Data-source provenance labels.
const (
	SourceOpenStreetMap = "openstreetmap"
	SourceWebSearch     = "web_search"
	SourceWebsite       = "website"
)

// Restaurant is the canonical business record produced by normalization and
// mutated in place by the discovery and enrichment stages.
type Restaurant struct {
	Name         string       `json:"name"`
	Address      string       `json:"address"`
	Phone        string       `json:"phone,omitempty"`
	Website      string       `json:"website,omitempty"`
	Cuisine      []string     `json:"cuisine"`
	PriceRange   PriceTier    `json:"price_range"`
	Rating       *float64     `json:"rating"`
	ReviewCount  int          `json:"review_count"`
	Features     []string     `json:"features"`
	OpeningHours OpeningHours `json:"opening_hours,omitempty"`
	Summary      string       `json:"summary,omitempty"`
	MenuItems    []MenuItem   `json:"menu_items"`
	MenuURL      string       `json:"menu_url,omitempty"`
	Latitude     *float64     `json:"latitude"`
	Longitude    *float64     `json:"longitude"`
	DataSources  []string     `json:"data_sources"`
}

// AddSource records that a pipeline stage touched the record. Duplicate
// labels are ignored.
func (r *Restaurant) AddSource(source string) {
	if slices.Contains(r.DataSources, source) {
		return
	}
	r.DataSources = append(r.DataSources, source)
}

// HasSource reports whether the given provenance label is present.
func (r *Restaurant) HasSource(source string) bool {
	return slices.Contains(r.DataSources, source)
}

// MenuItem is one dish or drink entry.
type MenuItem struct {
	Name       string   `json:"name"`
	Price      string   `json:"price,omitempty"`
	PriceValue *float64 `json:"price_value,omitempty"`
	Category   string   `json:"category"`
}

// Snapshot is the self-describing document written after fetch (raw) and
// after all requested stages (clean).
type Snapshot[T any] struct {
	Restaurants []T       `json:"restaurants"`
	ScrapedAt   time.Time `json:"scraped_at"`
	Source      string    `json:"source"`
	Count       int       `json:"count"`
}

// NewSnapshot builds a snapshot stamped with the given time.
func NewSnapshot[T any](items []T, at time.Time) Snapshot[T] {
	if items == nil {
		items = []T{}
	}
	return Snapshot[T]{
		Restaurants: items,
		ScrapedAt:   at.UTC(),
		Source:      SourceOpenStreetMap,
		Count:       len(items),
	}
}
