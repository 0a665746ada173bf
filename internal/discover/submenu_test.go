package discover

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plateworks/menuscan/internal/classify"
	"github.com/plateworks/menuscan/internal/config"
	"github.com/plateworks/menuscan/internal/extract"
	"github.com/plateworks/menuscan/internal/fetch"
	"github.com/plateworks/menuscan/internal/model"
)

const mainMenuWithSubPagesHTML = `<html><body>
<a href="/menu/lunch">Lunch</a>
<a href="/menu/drinks">Drinks</a>
<table>
<tr><td>House Burger</td><td>$13.00</td></tr>
<tr><td>Caesar Salad</td><td>$9.00</td></tr>
<tr><td>Fries</td><td>$4.50</td></tr>
</table></body></html>`

const lunchPageHTML = `<html><body><table>
<tr><td>Lunch Special Bowl</td><td>$11.00</td></tr>
<tr><td>Caesar Salad</td><td>$9.00</td></tr>
</table></body></html>`

const drinksPageHTML = `<html><body><table>
<tr><td>House Lemonade</td><td>$4.00</td></tr>
<tr><td>Cold Brew</td><td>$5.00</td></tr>
</table></body></html>`

func testCollector(f fetch.Fetcher, c classify.Classifier) *SubMenuCollector {
	return NewSubMenuCollector(f, c, extract.New(config.ExtractConfig{}), config.SubMenuConfig{
		Confidence:       60,
		MaxCandidates:    8,
		MaxConcurrent:    4,
		PauseMillis:      1,
		DedupeSimilarity: 0.85,
	})
}

func confirmedPage(url, html string) *fetch.Page {
	return &fetch.Page{URL: url, FinalURL: url, StatusCode: 200, ContentType: "text/html", HTML: html}
}

func TestCollect_MergesSubPages(t *testing.T) {
	fetcher := &mockFetcher{pages: map[string]string{
		"https://cafe.test/menu/lunch":  lunchPageHTML,
		"https://cafe.test/menu/drinks": drinksPageHTML,
	}}
	collector := testCollector(fetcher, &mockVerdictClassifier{})

	page := confirmedPage("https://cafe.test/menu", mainMenuWithSubPagesHTML)
	visited := map[string]bool{"https://cafe.test/menu": true}
	got := collector.Collect(context.Background(), "https://cafe.test/menu", page, 80, visited)

	names := make(map[string]model.MenuItem)
	for _, it := range got.Items {
		names[it.Name] = it
	}
	assert.Contains(t, names, "House Burger")
	assert.Contains(t, names, "Lunch Special Bowl")
	assert.Contains(t, names, "House Lemonade")
	// Caesar Salad appears on both pages but survives only once.
	assert.Len(t, got.Items, 6)

	require.Len(t, got.Sources, 3)
	assert.Equal(t, "https://cafe.test/menu", got.Sources[0].URL)
	assert.Equal(t, 3, got.Sources[0].ItemCount)

	// Sub-page items carry the link text as category.
	assert.Equal(t, "Lunch", names["Lunch Special Bowl"].Category)
	assert.Equal(t, "Drinks", names["House Lemonade"].Category)
	for _, it := range got.Items {
		assert.Equal(t, 80, it.Confidence)
	}
}

func TestCollect_SubPageFetchFailuresAreSoft(t *testing.T) {
	fetcher := &mockFetcher{pages: map[string]string{}}
	collector := testCollector(fetcher, &mockVerdictClassifier{})

	page := confirmedPage("https://cafe.test/menu", mainMenuWithSubPagesHTML)
	got := collector.Collect(context.Background(), "https://cafe.test/menu", page, 70, map[string]bool{})

	assert.Len(t, got.Items, 3)
	assert.Len(t, got.Sources, 1)
}

func TestCollect_PDFPageHasNoSubPages(t *testing.T) {
	collector := testCollector(&mockFetcher{}, &mockVerdictClassifier{})

	page := &fetch.Page{URL: "https://cafe.test/menu.pdf", ContentType: "application/pdf", Body: []byte("%PDF")}
	got := collector.Collect(context.Background(), "https://cafe.test/menu.pdf", page, 70, map[string]bool{})

	assert.Empty(t, got.Items)
	assert.Empty(t, got.Sources)
}

func TestCollect_SkipsVisitedAndOrderingLinks(t *testing.T) {
	fetcher := &mockFetcher{pages: map[string]string{}}
	classifier := &mockVerdictClassifier{links: map[string][]classify.MenuLink{
		"https://cafe.test/menu": {
			{URL: "https://order.thirdparty.test/cafe", Confidence: 90, Type: classify.LinkOrdering},
			{URL: "https://cafe.test/menu/lunch", Confidence: 80, Type: classify.LinkDirect, Category: "Lunch"},
		},
	}}
	collector := testCollector(fetcher, classifier)

	page := confirmedPage("https://cafe.test/menu", `<html><body><p>menu</p></body></html>`)
	visited := map[string]bool{"https://cafe.test/menu/lunch": true}
	got := collector.Collect(context.Background(), "https://cafe.test/menu", page, 70, visited)

	// Ordering-system link excluded, lunch already visited: nothing fetched.
	assert.Empty(t, fetcher.calls)
	assert.Len(t, got.Sources, 1)
	assert.Empty(t, got.Items)
}
