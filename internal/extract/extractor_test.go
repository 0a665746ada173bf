package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plateworks/menuscan/internal/config"
	"github.com/plateworks/menuscan/internal/model"
)

const menuItemClassHTML = `<html><body>
<h2>Appetizers</h2>
<div class="menu-item"><span class="name">Bruschetta</span><span class="price">$7.50</span><p class="description">Grilled bread, tomato, basil</p></div>
<div class="menu-item"><span class="name">Calamari Fritti</span><span class="price">$11.00</span><p class="description">Crispy squid with lemon aioli</p></div>
<div class="menu-item"><span class="name">Caprese Salad</span><span class="price">$9.00</span><p class="description">Buffalo mozzarella and heirloom tomato</p></div>
<div class="menu-item"><span class="name">Garlic Knots</span><span class="price">$5.50</span><p class="description">With marinara</p></div>
<div class="menu-item"><span class="name">Arancini</span><span class="price">$8.00</span><p class="description">Saffron risotto balls</p></div>
</body></html>`

func TestExtract_SelectorStrategy(t *testing.T) {
	e := New(config.ExtractConfig{})

	items := e.Extract(menuItemClassHTML, "https://trattoria.test/menu")

	// The aggressive pass adds description lines as extra low-trust
	// entries; the five marked-up dishes must all survive the merge.
	require.GreaterOrEqual(t, len(items), 5)
	byName := make(map[string]model.MenuItem)
	for _, it := range items {
		byName[it.Name] = it
		assert.Equal(t, "https://trattoria.test/menu", it.SourceURL)
		assert.NotEmpty(t, it.Category)
	}
	for _, name := range []string{"Bruschetta", "Calamari Fritti", "Caprese Salad", "Garlic Knots", "Arancini"} {
		assert.Contains(t, byName, name)
	}
	bru, ok := byName["Bruschetta"]
	require.True(t, ok)
	assert.Equal(t, "$7.50", bru.Price)
	assert.Equal(t, "Grilled bread, tomato, basil", bru.Description)
	assert.Equal(t, model.StrategySelector, bru.Strategy)
}

func TestExtract_TextMineKeepsPricelessLines(t *testing.T) {
	html := `<html><body>
<div>Herb Roasted Half Chicken</div>
<div>Pan Seared Salmon</div>
<div>Seasonal Vegetable Tart</div>
</body></html>`

	e := New(config.ExtractConfig{})
	items := e.Extract(html, "https://prixfixe.test/menu")

	require.Len(t, items, 3)
	for _, it := range items {
		assert.Equal(t, model.StrategyTextMine, it.Strategy)
		assert.Empty(t, it.Price)
	}
	assert.Equal(t, "Herb Roasted Half Chicken", items[0].Name)
}

func TestExtract_TableStrategy(t *testing.T) {
	html := `<html><body><table>
<tr><td>French Onion Soup</td><td>$6.95</td></tr>
<tr><td>Duck Confit</td><td>$24.00</td></tr>
<tr><td>Ratatouille</td><td>$14.50</td></tr>
</table></body></html>`

	e := New(config.ExtractConfig{})
	items := e.Extract(html, "https://bistro.test/menu")

	require.Len(t, items, 3)
	assert.Equal(t, "French Onion Soup", items[0].Name)
	assert.Equal(t, "$6.95", items[0].Price)
	assert.Equal(t, model.StrategyTable, items[0].Strategy)
}

func TestExtract_StructuredDataWins(t *testing.T) {
	html := `<html><head><script type="application/ld+json">
{"@type": "Menu", "hasMenuSection": [{"@type": "MenuSection", "name": "Mains",
  "hasMenuItem": [{"@type": "MenuItem", "name": "Pad Thai", "description": "Rice noodles, tamarind, peanut",
  "offers": {"@type": "Offer", "price": "13.50", "priceCurrency": "USD"}}]}]}
</script></head><body>
<div class="menu-item"><span class="name">Pad Thai</span><span class="price">$99.99</span></div>
</body></html>`

	e := New(config.ExtractConfig{})
	items := e.Extract(html, "https://thai.test/menu")

	require.Len(t, items, 1)
	assert.Equal(t, "Pad Thai", items[0].Name)
	assert.Equal(t, model.StrategyStructured, items[0].Strategy)
	assert.Equal(t, "Mains", items[0].Category)
	assert.Contains(t, items[0].Price, "13.50")
}

func TestExtract_UnparseableAndEmpty(t *testing.T) {
	e := New(config.ExtractConfig{})
	assert.Empty(t, e.Extract("", "https://x.test"))
	assert.Empty(t, e.Extract("<p>Opening hours: 9-17</p>", "https://x.test"))
}

func TestExtract_RejectsInvalidNames(t *testing.T) {
	html := `<html><body><table>
<tr><td>$9.95</td><td>$9.95</td></tr>
<tr><td>ab</td><td>$4.00</td></tr>
<tr><td>Lamb Tagine</td><td>$19.00</td></tr>
</table></body></html>`

	e := New(config.ExtractConfig{})
	items := e.Extract(html, "https://x.test/menu")

	require.Len(t, items, 1)
	assert.Equal(t, "Lamb Tagine", items[0].Name)
}

func TestExtractCategories(t *testing.T) {
	html := `<html><body>
<h2>Starters</h2><p>Soup $5.00</p>
<h2>Desserts</h2><p>Cake $6.00</p>
<h2>$12.00</h2>
</body></html>`

	e := New(config.ExtractConfig{})
	cats := e.ExtractCategories(html)

	assert.Contains(t, cats, "Starters")
	assert.Contains(t, cats, "Desserts")
	assert.NotContains(t, cats, "$12.00")
}

func TestExtract_MaxItemsCap(t *testing.T) {
	html := "<html><body><table>"
	names := []string{"Margherita", "Marinara", "Quattro Formaggi", "Diavola", "Capricciosa"}
	for _, n := range names {
		html += "<tr><td>" + n + " Pizza</td><td>$12.00</td></tr>"
	}
	html += "</table></body></html>"

	e := New(config.ExtractConfig{MaxItems: 3})
	items := e.Extract(html, "https://pizza.test/menu")

	assert.Len(t, items, 3)
}
