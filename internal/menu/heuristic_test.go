package menu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grazbites/scraper/internal/model"
)

const heuristicPage = `<html><body>
<h2>Vorspeisen</h2>
<ul>
  <li>Frittatensuppe 4,90 €</li>
  <li>Beef Tartare - €12.50</li>
  <li>Brot €</li>
</ul>
<h2>Hauptspeisen</h2>
<div><p>Wiener Schnitzel ... €14,90</p></div>
<p>Wir freuen uns auf Ihren Besuch!</p>
<p>wiener schnitzel €16,00</p>
<table><tr><td>Apfelstrudel</td><td>EUR 5,50</td></tr></table>
<script>var price = "€1";</script>
</body></html>`

func TestFromHeuristic(t *testing.T) {
	items := FromHeuristic(parseDoc(t, heuristicPage))

	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	require.Equal(t, []string{"Frittatensuppe", "Beef Tartare", "Wiener Schnitzel", "Apfelstrudel"}, names)

	assert.Equal(t, "4,90 €", items[0].Price)
	assert.Equal(t, CategoryStarter, items[0].Category)
	assert.Equal(t, "€12.50", items[1].Price)
	assert.Equal(t, CategoryStarter, items[1].Category)

	assert.Equal(t, "€14,90", items[2].Price)
	assert.Equal(t, CategoryMain, items[2].Category)
	require.NotNil(t, items[2].PriceValue)
	assert.InDelta(t, 14.9, *items[2].PriceValue, 1e-9)

	assert.Equal(t, "EUR 5,50", items[3].Price)
}

func TestFromHeuristic_SkipsLongBlocks(t *testing.T) {
	long := "Unser Küchenteam kocht täglich frisch "
	for len(long) < 220 {
		long += "mit regionalen Zutaten "
	}
	items := FromHeuristic(parseDoc(t, "<p>"+long+"ab €9,90</p>"))
	assert.Empty(t, items)
}

func TestFromHeuristic_NameBounds(t *testing.T) {
	items := FromHeuristic(parseDoc(t, `<li>Ei €1</li><li>— Gulasch —  €9</li>`))
	assert.Equal(t, []model.MenuItem{{Name: "Gulasch", Price: "€9", PriceValue: ptr(9), Category: CategoryOther}}, items)
}

func ptr(v float64) *float64 { return &v }
