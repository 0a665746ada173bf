package pdfmenu

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/plateworks/menuscan/internal/extract"
	"github.com/plateworks/menuscan/internal/model"
	"github.com/plateworks/menuscan/internal/textutil"
)

// categoryAliases normalizes shouted section headers to display names.
var categoryAliases = map[string]string{
	"starters":     "Appetizers",
	"appetizers":   "Appetizers",
	"antipasti":    "Appetizers",
	"small plates": "Appetizers",
	"mains":        "Main Courses",
	"main courses": "Main Courses",
	"entrees":      "Main Courses",
	"entrées":      "Main Courses",
	"desserts":     "Desserts",
	"dolci":        "Desserts",
	"sweets":       "Desserts",
	"sides":        "Sides",
	"drinks":       "Drinks",
	"beverages":    "Drinks",
	"cocktails":    "Drinks",
	"wine":         "Drinks",
	"beer":         "Drinks",
	"salads":       "Salads",
	"soups":        "Soups",
	"pizza":        "Pizza",
	"pasta":        "Pasta",
	"burgers":      "Burgers",
	"sandwiches":   "Sandwiches",
	"breakfast":    "Breakfast",
	"lunch":        "Lunch",
	"dinner":       "Dinner",
	"kids":         "Kids",
	"kids menu":    "Kids",
}

var foodWords = []string{
	"salad", "soup", "chicken", "beef", "pork", "fish", "shrimp", "pasta",
	"pizza", "burger", "sandwich", "taco", "rice", "cheese", "grilled",
	"fried", "roasted", "sauce", "bread", "cake", "chocolate", "served",
	"fresh", "house", "tofu", "lamb", "salmon", "tuna", "steak",
}

// parseByPattern is the deterministic text parser. It walks lines, treats
// shouted or alias-matched lines as category headers, and builds items from
// priced lines. Priceless lines that read like food names are kept too,
// because prix fixe and cafe menus often omit per-item prices.
func parseByPattern(text, sourceURL string, maxDescription int) []model.MenuItem {
	category := ""
	var items []model.MenuItem
	var last *model.MenuItem

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			last = nil
			continue
		}

		if c, ok := headerCategory(line); ok {
			category = c
			last = nil
			continue
		}

		if textutil.HasPrice(line) {
			item, ok := extract.ParseTextLine(line, maxDescription)
			if !ok {
				last = nil
				continue
			}
			item.Category = pick(category, item.Category)
			item.SourceURL = sourceURL
			item.Strategy = model.StrategyPDFPattern
			items = append(items, item)
			last = &items[len(items)-1]
			continue
		}

		// An unpriced lowercase-led line right after an item is its
		// description continuation in column layouts.
		if last != nil && last.Description == "" && isDescriptionLine(line) {
			last.Description = textutil.Truncate(line, maxDescription)
			continue
		}

		if looksLikeFoodName(line) {
			item, ok := extract.ParseTextLine(line, maxDescription)
			if !ok {
				continue
			}
			item.Category = pick(category, item.Category)
			item.SourceURL = sourceURL
			item.Strategy = model.StrategyPDFPattern
			items = append(items, item)
			last = &items[len(items)-1]
			continue
		}
		last = nil
	}

	return items
}

// headerCategory reports whether line is a section header and returns its
// display name.
func headerCategory(line string) (string, bool) {
	if len(line) < 3 || len(line) > 40 || textutil.HasPrice(line) {
		return "", false
	}
	key := strings.ToLower(strings.Trim(line, " :*-—–"))
	if alias, ok := categoryAliases[key]; ok {
		return alias, true
	}
	// All-caps short lines with no digits are headers by convention.
	if line == strings.ToUpper(line) && line != strings.ToLower(line) &&
		!strings.ContainsAny(line, "0123456789") && len(strings.Fields(line)) <= 4 {
		return titleCase(key), true
	}
	return "", false
}

// isDescriptionLine reports whether line reads like an item description:
// dish names are capitalized, descriptions start lowercase.
func isDescriptionLine(line string) bool {
	if len(line) < 10 || len(line) > 300 {
		return false
	}
	r := []rune(line)[0]
	return unicode.IsLower(r)
}

// looksLikeFoodName guesses whether an unpriced line names a dish.
func looksLikeFoodName(line string) bool {
	if len(line) < 3 || len(line) > 60 {
		return false
	}
	words := strings.Fields(line)
	if len(words) > 6 {
		return false
	}
	lower := strings.ToLower(line)
	for _, w := range foodWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func pick(primary, fallback string) string {
	if primary != "" {
		return primary
	}
	return fallback
}

var (
	pdfPhoneRe  = regexp.MustCompile(`\(?\d{3}\)?[-.\s]\d{3}[-.\s]\d{4}`)
	pdfURLRe    = regexp.MustCompile(`(?i)\bwww\.[a-z0-9.-]+\.[a-z]{2,}\b|https?://[^\s]+`)
	pageMarkRe  = regexp.MustCompile(`(?im)^\s*(page\s+\d+(\s+of\s+\d+)?|\d+\s*/\s*\d+|-\s*\d+\s*-)\s*$`)
	formFeedRe  = regexp.MustCompile(`\f`)
	multiBlank  = regexp.MustCompile(`\n{3,}`)
	runSpacesRe = regexp.MustCompile(`[ \t]{2,}`)
)

// cleanPDFText strips extraction artifacts: form feeds, page markers, and
// runs of layout whitespace.
func cleanPDFText(text string) string {
	text = formFeedRe.ReplaceAllString(text, "\n")
	text = pageMarkRe.ReplaceAllString(text, "")
	text = runSpacesRe.ReplaceAllString(text, "  ")
	text = multiBlank.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// restaurantInfoFromText pulls best-effort restaurant metadata from the
// first lines of the menu text.
func restaurantInfoFromText(text, pdfURL string) model.RestaurantInfo {
	info := model.RestaurantInfo{}

	lines := strings.Split(text, "\n")
	for i, raw := range lines {
		if i >= 5 {
			break
		}
		line := strings.TrimSpace(raw)
		if line == "" || textutil.HasPrice(line) {
			continue
		}
		if _, isHeader := categoryAliases[strings.ToLower(line)]; isHeader {
			break
		}
		if len(line) >= 3 && len(line) <= 60 {
			info.Name = titleCase(line)
			break
		}
	}

	head := text
	if len(head) > 2000 {
		head = head[:2000]
	}
	if m := pdfPhoneRe.FindString(head); m != "" {
		info.Phone = m
	}
	if m := pdfURLRe.FindString(head); m != "" && !strings.Contains(m, ".pdf") {
		info.Website = m
	}
	if info.Website == "" {
		info.Website = pdfURL
	}
	return info
}
