package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/plateworks/menuscan/internal/textutil"
)

// extractTables reads rows where the last cell is a price, or a middle cell
// is a long description. Common on older restaurant sites.
func extractTables(doc *goquery.Document) []candidate {
	var out []candidate
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < 2 {
			return
		}

		texts := make([]string, 0, cells.Length())
		cells.Each(func(_ int, cell *goquery.Selection) {
			texts = append(texts, strings.TrimSpace(cell.Text()))
		})

		name := texts[0]
		last := texts[len(texts)-1]

		switch {
		case textutil.LooksLikePrice(last):
			c := candidate{name: name, price: normalizePriceToken(last)}
			if len(texts) > 2 {
				c.description = strings.Join(texts[1:len(texts)-1], " ")
			}
			out = append(out, c)
		case len(texts) >= 2 && len(texts[1]) > 30:
			// Priceless row with a descriptive middle cell.
			out = append(out, candidate{name: name, description: texts[1]})
		}
	})
	return out
}

// extractLists splits list items on separator characters; an entry counts if
// it carries a price or is long enough to be a dish line.
func extractLists(doc *goquery.Document) []candidate {
	var out []candidate
	doc.Find("li").Each(func(_ int, li *goquery.Selection) {
		// Skip list items that contain nested lists (navigation menus).
		if li.Find("ul, ol").Length() > 0 {
			return
		}
		text := strings.TrimSpace(li.Text())
		for _, part := range splitSeparators(text) {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if !textutil.HasPrice(part) && len(part) <= 20 {
				continue
			}
			if c, ok := parseLine(part); ok {
				out = append(out, c)
			}
		}
	})
	return out
}

// extractByDensity scores containers by price and menu-keyword density, then
// extracts line candidates from the best one only. Useful when the menu sits
// inside one dense block on an otherwise chatty page.
func extractByDensity(doc *goquery.Document) []candidate {
	var best *goquery.Selection
	bestScore := 0.0

	doc.Find("div, section, article, main").Each(func(_ int, sel *goquery.Selection) {
		text := sel.Text()
		if len(text) < 50 || len(text) > 20000 {
			return
		}
		score := densityScore(text)
		if score > bestScore {
			bestScore = score
			best = sel
		}
	})

	if best == nil || bestScore < 30 {
		return nil
	}

	var out []candidate
	current := ""
	best.Find("p, div, li, h3, h4, dt, dd").Each(func(_ int, el *goquery.Selection) {
		// Only leaf-ish elements; containers repeat their children's text.
		if el.Children().Length() > 3 {
			return
		}
		text := strings.TrimSpace(el.Text())
		if text == "" {
			return
		}
		if isHeadingLike(el) && len(text) < 40 && !textutil.HasPrice(text) {
			current = text
			return
		}
		if c, ok := parseLine(text); ok {
			c.category = current
			out = append(out, c)
		}
	})
	return out
}

// densityScore is priceCount*10 + keywordCount*5 + len/100.
func densityScore(text string) float64 {
	prices := len(textutil.FindPrices(text))
	lower := strings.ToLower(text)
	keywords := 0
	for _, kw := range densityKeywords {
		keywords += strings.Count(lower, kw)
	}
	return float64(prices)*10 + float64(keywords)*5 + float64(len(text))/100
}

var densityKeywords = []string{
	"appetizer", "entree", "dessert", "salad", "soup", "pizza", "pasta",
	"burger", "sandwich", "drink", "wine", "beer", "coffee", "special",
}

// extractBySelectors walks elements whose class or id follows common menu
// naming conventions and pairs each with a nested or inline price.
func extractBySelectors(doc *goquery.Document) []candidate {
	selectors := []string{
		"[class*='menu-item']", "[class*='menuitem']", "[class*='dish']",
		"[class*='food-item']", "[class*='product']", "[id*='menu-item']",
	}
	var out []candidate
	seenNodes := make(map[*html.Node]bool)

	for _, selector := range selectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			node := sel.Get(0)
			if seenNodes[node] {
				return
			}
			seenNodes[node] = true
			if c, ok := candidateFromElement(sel); ok {
				out = append(out, c)
			}
		})
	}
	return out
}

// extractVisual targets card- or flex-framed elements that contain a price.
// These capture modern layout-driven menus with no semantic naming.
func extractVisual(doc *goquery.Document) []candidate {
	var out []candidate
	doc.Find("[class*='card'], [class*='flex'], [class*='grid-item'], [class*='column']").Each(func(_ int, sel *goquery.Selection) {
		text := sel.Text()
		if !textutil.HasPrice(text) || len(text) > 600 {
			return
		}
		if c, ok := candidateFromElement(sel); ok {
			out = append(out, c)
		}
	})
	return out
}

// candidateFromElement reads a name/price/description out of one element,
// preferring marked-up children over raw text splitting.
func candidateFromElement(sel *goquery.Selection) (candidate, bool) {
	name := strings.TrimSpace(sel.Find("[class*='name'], [class*='title'], h3, h4, strong, b").First().Text())
	price := strings.TrimSpace(sel.Find("[class*='price'], [class*='cost']").First().Text())
	desc := strings.TrimSpace(sel.Find("[class*='desc'], p").First().Text())

	if name == "" || textutil.LooksLikePrice(name) {
		// Fall back to parsing the element's full text as one line.
		return parseLine(strings.Join(strings.Fields(sel.Text()), " "))
	}
	if price == "" {
		if p, ok := textutil.FirstPrice(sel.Text()); ok {
			price = p.Raw
		}
	} else {
		price = normalizePriceToken(price)
	}
	if desc == name {
		desc = ""
	}
	return candidate{name: name, price: price, description: desc}, true
}

// extractTextMine is the last-resort strategy: every block-level text node
// becomes a line candidate, filtered only by length bounds. Intentionally
// noisy; merge order and dedupe keep its output subordinate.
func extractTextMine(doc *goquery.Document) []candidate {
	var out []candidate
	doc.Find("p, div, li, td, dd, dt").Each(func(_ int, el *goquery.Selection) {
		if el.Children().Length() > 0 {
			return
		}
		for _, part := range splitSeparators(el.Text()) {
			part = strings.TrimSpace(part)
			if len(part) < 5 || len(part) > 200 {
				continue
			}
			if c, ok := parseLine(part); ok {
				out = append(out, c)
			}
		}
	})
	return out
}

// splitSeparators breaks a blob on newlines, bullets, and dash separators.
func splitSeparators(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case '\n', '•', '·', '‣', '|':
			return true
		}
		return false
	})
}

// normalizePriceToken runs a cell or element text through the price lexer so
// emitted prices are consistently currency-tagged.
func normalizePriceToken(s string) string {
	if p, ok := textutil.FirstPrice(s); ok {
		return p.Raw
	}
	return strings.TrimSpace(s)
}

// isHeadingLike reports whether an element acts as a section heading.
func isHeadingLike(sel *goquery.Selection) bool {
	if sel.Is("h1, h2, h3, h4, h5, h6, dt") {
		return true
	}
	class, _ := sel.Attr("class")
	class = strings.ToLower(class)
	return strings.Contains(class, "heading") || strings.Contains(class, "category") || strings.Contains(class, "section-title")
}

// headingCategories collects page-level category names from headings.
func headingCategories(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	var out []string
	doc.Find("h1, h2, h3, h4, [class*='category'], [class*='section-title']").Each(func(_ int, sel *goquery.Selection) {
		text := strings.Join(strings.Fields(sel.Text()), " ")
		if len(text) < 3 || len(text) > 40 {
			return
		}
		if textutil.LooksLikePrice(text) || textutil.HasPrice(text) {
			return
		}
		key := strings.ToLower(text)
		if !seen[key] {
			seen[key] = true
			out = append(out, text)
		}
	})
	return out
}
