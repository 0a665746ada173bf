package textutil

import (
	"regexp"
	"strings"
)

// Price is a currency-tagged numeric token found in free text.
type Price struct {
	Raw      string // token as emitted, always currency-prefixed
	Currency string // symbol, e.g. "$", "€"
}

// currencySymbols lists the symbols we recognize, longest first so that
// multi-rune codes win over single symbols during scanning.
var currencySymbols = []string{"CHF", "kr", "R$", "$", "€", "£", "¥", "₹", "₩", "₽", "₺", "฿", "₫", "₴", "₦"}

// localeHints maps lowercase keywords in surrounding text to a currency
// symbol, used when a bare number has no symbol of its own.
var localeHints = map[string]string{
	"euro": "€", "euros": "€", "eur": "€",
	"pound": "£", "pounds": "£", "gbp": "£",
	"yen": "¥", "japan": "¥", "jpy": "¥",
	"rupee": "₹", "rupees": "₹", "india": "₹", "inr": "₹",
	"won": "₩", "korea": "₩",
	"ruble": "₽", "rouble": "₽", "russia": "₽",
	"baht": "฿", "thailand": "฿",
	"lira": "₺", "turkey": "₺",
	"krona": "kr", "krone": "kr", "sweden": "kr", "norway": "kr", "denmark": "kr",
	"franc": "CHF", "switzerland": "CHF",
	"real": "R$", "reais": "R$", "brazil": "R$",
	"dollar": "$", "dollars": "$", "usd": "$",
}

var (
	// Symbol before the number: $12.95, € 8,50.
	prefixedRe = regexp.MustCompile(`(CHF|kr|R\$|[$€£¥₹₩₽₺฿₫₴₦])\s?(\d{1,4}(?:[.,]\d{1,2})?)`)
	// Symbol after the number: 12.95€, 8 kr.
	suffixedRe = regexp.MustCompile(`(\d{1,4}(?:[.,]\d{1,2})?)\s?(CHF|kr|R\$|[$€£¥₹₩₽₺฿₫₴₦])`)
	// Bare decimal with exactly two fraction digits: 12.95.
	bareRe = regexp.MustCompile(`(?:^|[\s(])(\d{1,4}[.,]\d{2})(?:[\s).,;]|$)`)
	// A string that is nothing but a price token.
	priceOnlyRe = regexp.MustCompile(`^\s*(?:CHF|kr|R\$|[$€£¥₹₩₽₺฿₫₴₦])?\s?\d{1,4}(?:[.,]\d{1,2})?\s?(?:CHF|kr|R\$|[$€£¥₹₩₽₺฿₫₴₦])?\s*$`)
)

// FindPrices scans text for currency-tagged numeric tokens. Bare decimals
// are tagged with the currency inferred from the surrounding text.
func FindPrices(text string) []Price {
	var out []Price
	seen := make(map[string]bool)

	add := func(raw, currency string) {
		key := currency + raw
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, Price{Raw: currency + raw, Currency: currency})
	}

	for _, m := range prefixedRe.FindAllStringSubmatch(text, -1) {
		add(m[2], m[1])
	}
	for _, m := range suffixedRe.FindAllStringSubmatch(text, -1) {
		add(m[1], m[2])
	}

	dominant := DetectDominantCurrency(text)
	for _, m := range bareRe.FindAllStringSubmatch(text, -1) {
		add(m[1], dominant)
	}
	return out
}

// DetectDominantCurrency infers the currency of a block of text: an explicit
// symbol wins, then locale keywords, then "$".
func DetectDominantCurrency(text string) string {
	counts := make(map[string]int)
	for _, sym := range currencySymbols {
		if n := strings.Count(text, sym); n > 0 {
			counts[sym] = n
		}
	}
	// A "$" inside "R$" is not a dollar sign; discount symbols contained
	// in a longer match.
	for i, long := range currencySymbols {
		if counts[long] == 0 {
			continue
		}
		for _, short := range currencySymbols[i+1:] {
			if strings.Contains(long, short) {
				counts[short] -= counts[long]
			}
		}
	}
	// "kr" appears inside ordinary words; require a digit nearby.
	if counts["kr"] > 0 && !suffixedRe.MatchString(text) && !prefixedRe.MatchString(text) {
		delete(counts, "kr")
	}
	// Scan in fixed symbol order so ties resolve the same way every call,
	// with the longer symbol winning.
	best, bestN := "", 0
	for _, sym := range currencySymbols {
		if n := counts[sym]; n > bestN {
			best, bestN = sym, n
		}
	}
	if best != "" {
		return best
	}

	lower := strings.ToLower(text)
	for kw, sym := range localeHints {
		if strings.Contains(lower, kw) {
			return sym
		}
	}
	return "$"
}

// HasPrice reports whether text contains at least one recognizable price
// token, symbol-tagged or bare decimal.
func HasPrice(text string) bool {
	return prefixedRe.MatchString(text) || suffixedRe.MatchString(text) || bareRe.MatchString(text)
}

// FirstPrice returns the first price found in text, or the zero Price.
func FirstPrice(text string) (Price, bool) {
	prices := FindPrices(text)
	if len(prices) == 0 {
		return Price{}, false
	}
	return prices[0], true
}

// LooksLikePrice reports whether s is nothing more than a price token.
// Used to reject candidate item names that are actually prices.
func LooksLikePrice(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return priceOnlyRe.MatchString(s) && strings.ContainsAny(s, "0123456789")
}
