// Package discover locates a restaurant's menu starting from an arbitrary
// site URL: it tests the original page, follows classifier-ranked links,
// probes conventional paths, and expands confirmed menus into their
// sub-menu pages.
package discover

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

// BroadMenuKeywords match top-level navigation toward any menu page.
var BroadMenuKeywords = []string{
	"menu", "food", "order", "dining", "eat",
	"lunch", "dinner", "breakfast", "brunch",
	"drinks", "dessert", "takeout", "take-away",
}

// CategoryKeywords match links from a confirmed menu page to category or
// meal-period sub-menus.
var CategoryKeywords = []string{
	"lunch", "dinner", "breakfast", "brunch", "kids",
	"drinks", "beverages", "wine", "beer", "cocktails", "coffee",
	"desserts", "appetizers", "starters", "mains", "entrees", "sides",
	"specials", "happy-hour", "happy hour", "seasonal", "vegan", "vegetarian",
}

// Link is a candidate navigation target found in page HTML.
type Link struct {
	URL  string
	Text string
}

// FindCandidateLinks extracts links whose href, text, title, or aria-label
// matches any keyword. Relative hrefs resolve against baseURL; results are
// deduplicated by resolved URL and capped. This is the deterministic
// fallback when the classifier cannot rank links.
func FindCandidateLinks(html, baseURL string, keywords []string, limit int) []Link {
	if limit <= 0 {
		limit = 8
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var out []Link
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		resolved := resolveLink(base, href)
		if resolved == "" || resolved == baseURL || seen[resolved] {
			return true
		}

		text := strings.Join(strings.Fields(sel.Text()), " ")
		title, _ := sel.Attr("title")
		aria, _ := sel.Attr("aria-label")

		if !matchesAny(keywords, strings.ToLower(href), strings.ToLower(text), strings.ToLower(title), strings.ToLower(aria)) {
			return true
		}

		seen[resolved] = true
		out = append(out, Link{URL: resolved, Text: text})
		return len(out) < limit
	})
	return out
}

func matchesAny(keywords []string, haystacks ...string) bool {
	for _, kw := range keywords {
		for _, h := range haystacks {
			if h != "" && strings.Contains(h, kw) {
				return true
			}
		}
	}
	return false
}

// resolveLink resolves an href against base, dropping fragments and
// non-navigable schemes.
func resolveLink(base *url.URL, href string) string {
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

// normalizeSiteURL coerces raw input into an absolute http(s) URL with a
// path, defaulting to https.
func normalizeSiteURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", eris.Errorf("discover: url %q has no host", raw)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String(), nil
}

// originOf returns scheme://host for a URL.
func originOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Scheme + "://" + u.Host
}
