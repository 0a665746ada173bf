package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plateworks/menuscan/internal/model"
)

func TestMergeItems_TrustOrderWins(t *testing.T) {
	items := []model.MenuItem{
		{Name: "Pad Thai", Price: "$99.99", Strategy: model.StrategyTextMine},
		{Name: "Pad Thai", Price: "$13.50", Strategy: model.StrategyStructured},
	}

	merged := MergeItems(items, 0)

	require.Len(t, merged, 1)
	assert.Equal(t, "$13.50", merged[0].Price)
	assert.Equal(t, model.StrategyStructured, merged[0].Strategy)
}

func TestMergeItems_DuplicateFillsGaps(t *testing.T) {
	items := []model.MenuItem{
		{Name: "Tiramisu", Price: "$8.00", Category: model.DefaultCategory, Strategy: model.StrategyTable},
		{Name: "Tiramisu", Description: "Espresso-soaked ladyfingers", Category: "Desserts", Strategy: model.StrategyTextMine},
	}

	merged := MergeItems(items, 0)

	require.Len(t, merged, 1)
	assert.Equal(t, "$8.00", merged[0].Price)
	assert.Equal(t, "Espresso-soaked ladyfingers", merged[0].Description)
	assert.Equal(t, "Desserts", merged[0].Category)
}

func TestMergeItems_CapAndStableOrder(t *testing.T) {
	items := []model.MenuItem{
		{Name: "Alpha Roll", Strategy: model.StrategyTable},
		{Name: "Beta Roll", Strategy: model.StrategyTable},
		{Name: "Gamma Roll", Strategy: model.StrategyTable},
	}

	merged := MergeItems(items, 2)

	require.Len(t, merged, 2)
	assert.Equal(t, "Alpha Roll", merged[0].Name)
	assert.Equal(t, "Beta Roll", merged[1].Name)
}

func TestMergeItems_SkipsUnnameable(t *testing.T) {
	merged := MergeItems([]model.MenuItem{{Name: "***"}, {Name: "Gnocchi"}}, 0)
	require.Len(t, merged, 1)
	assert.Equal(t, "Gnocchi", merged[0].Name)
}

func TestDedupeItems_NearDuplicates(t *testing.T) {
	items := []model.MenuItem{
		{Name: "Margherita Pizza", Price: "$12.00", Confidence: 80},
		{Name: "Margarita Pizza", Description: "San Marzano, fior di latte", Confidence: 50},
		{Name: "Tiramisu", Confidence: 80},
	}

	out := DedupeItems(items, 0.85)

	require.Len(t, out, 2)
	assert.Equal(t, "Margherita Pizza", out[0].Name)
	assert.Equal(t, "$12.00", out[0].Price)
	assert.Equal(t, "San Marzano, fior di latte", out[0].Description)
	assert.Equal(t, "Tiramisu", out[1].Name)
}

func TestDedupeItems_HigherConfidenceReplaces(t *testing.T) {
	items := []model.MenuItem{
		{Name: "Ramen", Confidence: 40, Price: "$14.00"},
		{Name: "Ramen", Confidence: 90, Description: "Tonkotsu broth"},
	}

	out := DedupeItems(items, 0.85)

	require.Len(t, out, 1)
	assert.Equal(t, 90, out[0].Confidence)
	assert.Equal(t, "$14.00", out[0].Price)
	assert.Equal(t, "Tonkotsu broth", out[0].Description)
}

func TestDedupeItems_PureAndIdempotent(t *testing.T) {
	items := []model.MenuItem{
		{Name: "Pho Bo", Confidence: 70},
		{Name: "Pho Bo", Confidence: 20},
		{Name: "Banh Mi", Confidence: 70},
	}
	snapshot := make([]model.MenuItem, len(items))
	copy(snapshot, items)

	once := DedupeItems(items, 0.85)
	twice := DedupeItems(once, 0.85)

	assert.Equal(t, snapshot, items)
	assert.Equal(t, once, twice)
	assert.Len(t, once, 2)
}

func TestParseTextLine(t *testing.T) {
	item, ok := ParseTextLine("Caesar Salad $8.95 romaine, parmesan, house-made croutons", 300)

	require.True(t, ok)
	assert.Equal(t, "Caesar Salad", item.Name)
	assert.Equal(t, "$8.95", item.Price)
	assert.Equal(t, "romaine, parmesan, house-made croutons", item.Description)
	assert.Equal(t, model.DefaultCategory, item.Category)
}

func TestParseTextLine_BareIntegerInName(t *testing.T) {
	item, ok := ParseTextLine("Pizza 4 Seasons 12.50", 300)

	require.True(t, ok)
	assert.Equal(t, "Pizza 4 Seasons", item.Name)
	assert.Equal(t, "$12.50", item.Price)
}

func TestParseTextLine_Rejects(t *testing.T) {
	_, ok := ParseTextLine("$9.99", 300)
	assert.False(t, ok)

	_, ok = ParseTextLine("Call us: phone 555-1234", 300)
	assert.False(t, ok)
}
