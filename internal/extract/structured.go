package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// extractStructured reads schema.org JSON-LD and microdata. Publisher-marked
// data is the most trusted source when present.
func extractStructured(doc *goquery.Document) []candidate {
	var out []candidate

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		var data any
		if err := json.Unmarshal([]byte(sel.Text()), &data); err != nil {
			return
		}
		walkJSONLD(data, "", &out)
	})

	// Microdata: itemscope blocks typed as MenuItem or Product.
	doc.Find(`[itemtype*="MenuItem"], [itemtype*="Product"]`).Each(func(_ int, sel *goquery.Selection) {
		name := strings.TrimSpace(sel.Find(`[itemprop="name"]`).First().Text())
		if name == "" {
			return
		}
		price := strings.TrimSpace(sel.Find(`[itemprop="price"]`).First().Text())
		if price == "" {
			price, _ = sel.Find(`[itemprop="price"]`).First().Attr("content")
		}
		out = append(out, candidate{
			name:        name,
			price:       price,
			description: strings.TrimSpace(sel.Find(`[itemprop="description"]`).First().Text()),
		})
	})

	return out
}

// walkJSONLD recursively visits a decoded JSON-LD value collecting MenuItem
// and Product nodes. section carries the enclosing MenuSection name down.
func walkJSONLD(node any, section string, out *[]candidate) {
	switch v := node.(type) {
	case []any:
		for _, el := range v {
			walkJSONLD(el, section, out)
		}
	case map[string]any:
		typ := jsonldType(v)

		if typ == "MenuSection" {
			if name, ok := v["name"].(string); ok {
				section = name
			}
		}

		if typ == "MenuItem" || typ == "Product" {
			name, _ := v["name"].(string)
			if strings.TrimSpace(name) != "" {
				c := candidate{name: name, category: section}
				c.description, _ = v["description"].(string)
				c.price = jsonldPrice(v)
				*out = append(*out, c)
			}
		}

		for _, child := range v {
			walkJSONLD(child, section, out)
		}
	}
}

// jsonldType returns the @type of a JSON-LD node, tolerating type arrays.
func jsonldType(m map[string]any) string {
	switch t := m["@type"].(type) {
	case string:
		return t
	case []any:
		for _, el := range t {
			if s, ok := el.(string); ok {
				return s
			}
		}
	}
	return ""
}

// jsonldPrice pulls a price from a node's offers, tolerating both a single
// offer object and an offer list, numeric and string prices.
func jsonldPrice(m map[string]any) string {
	format := func(offer map[string]any) string {
		currency, _ := offer["priceCurrency"].(string)
		sym := currencyFromCode(currency)
		switch p := offer["price"].(type) {
		case string:
			if strings.TrimSpace(p) == "" {
				return ""
			}
			if strings.ContainsAny(p, "$€£¥") {
				return p
			}
			return sym + p
		case float64:
			return fmt.Sprintf("%s%.2f", sym, p)
		}
		return ""
	}

	switch offers := m["offers"].(type) {
	case map[string]any:
		return format(offers)
	case []any:
		for _, el := range offers {
			if offer, ok := el.(map[string]any); ok {
				if p := format(offer); p != "" {
					return p
				}
			}
		}
	}
	// Some publishers put price directly on the item.
	if p, ok := m["price"].(string); ok {
		return p
	}
	return ""
}

func currencyFromCode(code string) string {
	switch strings.ToUpper(code) {
	case "EUR":
		return "€"
	case "GBP":
		return "£"
	case "JPY":
		return "¥"
	case "INR":
		return "₹"
	default:
		return "$"
	}
}
