package classify

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/plateworks/menuscan/internal/textutil"
)

// menuKeywords score page text toward "is a menu".
var menuKeywords = []string{
	"appetizer", "starter", "entree", "entrée", "main course", "dessert",
	"side", "salad", "soup", "sandwich", "burger", "pizza", "pasta",
	"drink", "beverage", "wine", "beer", "cocktail", "coffee",
	"lunch", "dinner", "breakfast", "brunch", "special",
}

// linkKeywords mark anchors that plausibly lead to a menu page.
var linkKeywords = []string{
	"menu", "food", "order", "dining", "eat",
	"lunch", "dinner", "breakfast", "brunch", "drink", "dessert",
}

// HeuristicClassifier is the deterministic fallback: no network, no model.
// Verdicts are coarser than the LLM's but always available.
type HeuristicClassifier struct{}

// NewHeuristicClassifier creates the pattern-based classifier.
func NewHeuristicClassifier() *HeuristicClassifier { return &HeuristicClassifier{} }

func (h *HeuristicClassifier) Name() string { return "heuristic" }

// ClassifyPage scores page text by price density and menu vocabulary. A page
// needs several priced lines to clear the "is a menu" bar; a lone price on a
// homepage does not.
func (h *HeuristicClassifier) ClassifyPage(_ context.Context, pageText, _ string) (*Verdict, error) {
	prices := textutil.FindPrices(pageText)
	lower := strings.ToLower(pageText)

	keywordHits := 0
	for _, kw := range menuKeywords {
		if strings.Contains(lower, kw) {
			keywordHits++
		}
	}

	score := len(prices)*8 + keywordHits*4
	if score > 100 {
		score = 100
	}

	return &Verdict{
		IsMenu:     len(prices) >= 3 && keywordHits >= 2,
		Confidence: score,
		Reason:     fmt.Sprintf("pattern scoring: %d prices, %d menu keywords", len(prices), keywordHits),
	}, nil
}

// FindMenuLinks matches anchors whose href or text carries a menu keyword.
// Confidence is fixed per match kind: href matches outrank text matches.
func (h *HeuristicClassifier) FindMenuLinks(_ context.Context, html, pageURL string) ([]MenuLink, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, nil
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, nil
	}

	seen := make(map[string]bool)
	var links []MenuLink
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		resolved := resolveHref(base, href)
		if resolved == "" || seen[resolved] {
			return true
		}

		text := strings.ToLower(strings.TrimSpace(sel.Text()))
		hrefLower := strings.ToLower(href)

		confidence := 0
		reason := ""
		for _, kw := range linkKeywords {
			if strings.Contains(hrefLower, kw) {
				confidence, reason = 65, "keyword in href: "+kw
				break
			}
			if strings.Contains(text, kw) {
				confidence, reason = 50, "keyword in link text: "+kw
				break
			}
		}
		if confidence == 0 {
			return true
		}

		linkType := LinkDirect
		if strings.HasSuffix(strings.ToLower(strings.SplitN(resolved, "?", 2)[0]), ".pdf") {
			linkType = LinkPDF
		}

		seen[resolved] = true
		links = append(links, MenuLink{
			URL:        resolved,
			Confidence: confidence,
			Reason:     reason,
			Type:       linkType,
		})
		return len(links) < 5
	})
	return links, nil
}

// summarizeLinks renders the page's anchors as "text -> url" lines for the
// LLM link-ranking prompt.
func summarizeLinks(html, pageURL string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}

	seen := make(map[string]bool)
	var lines []string
	doc.Find("a[href], button").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		resolved := resolveHref(base, href)
		if resolved == "" || seen[resolved] {
			return true
		}
		seen[resolved] = true

		text := strings.Join(strings.Fields(sel.Text()), " ")
		if title, ok := sel.Attr("title"); ok && text == "" {
			text = title
		}
		if aria, ok := sel.Attr("aria-label"); ok && text == "" {
			text = aria
		}
		lines = append(lines, fmt.Sprintf("%s -> %s", textutil.Truncate(text, 60), resolved))
		return len(lines) < 60
	})
	return strings.Join(lines, "\n")
}

// resolveHref resolves an href against base, dropping anchors, javascript,
// and mail links.
func resolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	abs.Fragment = ""
	return abs.String()
}
