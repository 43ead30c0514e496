package menu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferCategory(t *testing.T) {
	tests := []struct {
		heading string
		want    string
	}{
		{"Vorspeisen", CategoryStarter},
		{"Entrées", CategoryStarter},
		{"Hauptspeisen", CategoryMain},
		{"Süßes & Desserts", CategoryDessert},
		{"Getränke", CategoryDrink},
		{"Unsere Pizzen", CategoryOther},
		{"Pizza Classica", CategoryPizza},
		{"Hausgemachte Nudeln", CategoryPasta},
		{"Maki & Nigiri", CategorySushi},
		{"Suppen", CategorySoup},
		{"Salate", CategorySalad},
		{"Burger", CategoryBurger},
		{"Über uns", CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.heading, func(t *testing.T) {
			assert.Equal(t, tt.want, InferCategory(tt.heading))
		})
	}
}

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, CategoryMain, NormalizeCategory("main"))
	assert.Equal(t, CategoryDessert, NormalizeCategory(" DESSERT "))
	assert.Equal(t, CategoryOther, NormalizeCategory(""))
	assert.Equal(t, CategoryOther, NormalizeCategory("other"))
	assert.Equal(t, CategoryDrink, NormalizeCategory("Weinkarte"))
	assert.Equal(t, CategoryOther, NormalizeCategory("Spezialitäten"))
}
