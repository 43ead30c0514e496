package menu

import (
	"regexp"
	"strconv"
	"strings"
)

// priceRE matches a euro price: "€12", "€ 12,50", "12.90€", "EUR 9.50".
var priceRE = regexp.MustCompile(`(?i)€\s*\d+(?:[.,]\d{1,2})?|\d+(?:[.,]\d{1,2})?\s*€|EUR\s*\d+(?:[.,]\d{1,2})?`)

var amountRE = regexp.MustCompile(`\d+[.,]\d{1,2}|\d+`)

// FindPrice returns the first price in text, or "".
func FindPrice(text string) string {
	return strings.TrimSpace(priceRE.FindString(text))
}

// StripPrices removes every price from text.
func StripPrices(text string) string {
	return priceRE.ReplaceAllString(text, "")
}

// ParsePrice returns the numeric amount of a price text such as "€14,90".
// Decimal commas are read as points. Returns nil when no amount is present.
func ParsePrice(text string) *float64 {
	m := amountRE.FindString(text)
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.Replace(m, ",", ".", 1), 64)
	if err != nil {
		return nil
	}
	return &v
}
