package extract

import (
	"regexp"
	"strings"

	"github.com/plateworks/menuscan/internal/model"
	"github.com/plateworks/menuscan/internal/textutil"
)

const (
	minNameLen = 3
	maxNameLen = 200
	// Candidate lines mentioning contact details are navigation or footer
	// chrome, not dishes.
	contactWords = "phone address tel email copyright hours"
)

// parseLine splits a free-text line into a candidate. The price token, when
// present, separates name (before) from description (after).
func parseLine(line string) (candidate, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return candidate{}, false
	}

	lower := strings.ToLower(line)
	for _, w := range strings.Fields(contactWords) {
		if strings.Contains(lower, w) {
			return candidate{}, false
		}
	}

	price, hasPrice := textutil.FirstPrice(line)
	if !hasPrice {
		if len(line) < minNameLen || len(line) > maxNameLen {
			return candidate{}, false
		}
		return candidate{name: line}, true
	}

	// Locate the raw numeric span to split around. The emitted price token
	// is normalized (symbol-prefixed) so it may not appear verbatim.
	idx := priceSpanIndex(line)
	name := line
	desc := ""
	if idx >= 0 {
		name = strings.TrimSpace(line[:idx])
		desc = strings.TrimSpace(trimPriceLead(line[idx:]))
	}
	name = strings.Trim(name, " .-–—·•*\t")
	if name == "" {
		return candidate{}, false
	}
	return candidate{name: name, price: price.Raw, description: desc}, true
}

var decimalRe = regexp.MustCompile(`\d[.,]\d{2}`)

// priceSpanIndex finds where the first price token begins in line. Bare
// integers are not price spans: a token must carry a currency symbol or a
// two-digit decimal fraction so "Pizza 4 Seasons 12.50" splits at "12.50".
func priceSpanIndex(line string) int {
	for i := 0; i < len(line); i++ {
		if i > 0 && line[i-1] != ' ' && line[i-1] != '\t' {
			continue
		}
		tok := firstToken(line[i:])
		if !textutil.LooksLikePrice(tok) {
			continue
		}
		if decimalRe.MatchString(tok) || strings.ContainsAny(tok, "$€£¥₹₩₽₺฿₫₴₦") || strings.Contains(tok, "CHF") {
			return i
		}
	}
	return -1
}

// firstToken returns the leading whitespace-delimited token of s, keeping a
// currency symbol glued to its number.
func firstToken(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i]
	}
	return s
}

// trimPriceLead drops the leading price token from s.
func trimPriceLead(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[i+1:]
	}
	return ""
}

// ParseTextLine parses one free-text line into a validated MenuItem. Used
// by the PDF pattern parser, which works on extracted text rather than DOM.
func ParseTextLine(line string, maxDescription int) (model.MenuItem, bool) {
	c, ok := parseLine(line)
	if !ok {
		return model.MenuItem{}, false
	}
	if maxDescription <= 0 {
		maxDescription = 300
	}
	return finishCandidate(c, maxDescription)
}

// finishCandidate validates and converts a candidate into a MenuItem.
func finishCandidate(c candidate, maxDescription int) (model.MenuItem, bool) {
	name := strings.TrimSpace(c.name)
	if len(name) < minNameLen || len(name) > maxNameLen {
		return model.MenuItem{}, false
	}
	if textutil.LooksLikePrice(name) {
		return model.MenuItem{}, false
	}

	category := strings.TrimSpace(c.category)
	if category == "" {
		category = model.DefaultCategory
	}

	return model.MenuItem{
		Name:        name,
		Price:       strings.TrimSpace(c.price),
		Description: textutil.Truncate(strings.TrimSpace(c.description), maxDescription),
		Category:    category,
	}, true
}
