package menu

import "strings"

// Fixed category vocabulary.
const (
	CategoryStarter = "Starter"
	CategoryMain    = "Main"
	CategoryDessert = "Dessert"
	CategoryDrink   = "Drink"
	CategoryPizza   = "Pizza"
	CategoryPasta   = "Pasta"
	CategorySushi   = "Sushi"
	CategorySoup    = "Soup"
	CategorySalad   = "Salad"
	CategoryBurger  = "Burger"
	CategoryOther   = "Other"
)

type categoryHint struct {
	category string
	keywords []string
}

// categoryHints is checked in order; the first keyword hit wins.
var categoryHints = []categoryHint{
	{CategoryStarter, []string{"starter", "vorspeise", "antipast", "appetizer", "entrée", "small plate"}},
	{CategoryMain, []string{"main", "hauptgericht", "hauptspeise", "entrée", "second", "piatti", "gericht"}},
	{CategoryDessert, []string{"dessert", "nachspeise", "süß", "dolci", "sweet", "nachtisch"}},
	{CategoryDrink, []string{"drink", "getränk", "beverage", "cocktail", "wein", "wine", "beer", "bier", "saft", "juice", "kaffee", "coffee"}},
	{CategoryPizza, []string{"pizza"}},
	{CategoryPasta, []string{"pasta", "nudel"}},
	{CategorySushi, []string{"sushi", "maki", "nigiri", "sashimi"}},
	{CategorySoup, []string{"soup", "suppe"}},
	{CategorySalad, []string{"salad", "salat"}},
	{CategoryBurger, []string{"burger"}},
}

// InferCategory maps heading text to a category by keyword, else Other.
func InferCategory(text string) string {
	lower := strings.ToLower(text)
	for _, h := range categoryHints {
		for _, kw := range h.keywords {
			if strings.Contains(lower, kw) {
				return h.category
			}
		}
	}
	return CategoryOther
}

// NormalizeCategory maps any label into the vocabulary: an exact
// (case-insensitive) vocabulary name first, keyword hints second.
func NormalizeCategory(label string) string {
	label = strings.TrimSpace(label)
	for _, h := range categoryHints {
		if strings.EqualFold(label, h.category) {
			return h.category
		}
	}
	if strings.EqualFold(label, CategoryOther) || label == "" {
		return CategoryOther
	}
	return InferCategory(label)
}
