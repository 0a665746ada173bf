package discover

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/plateworks/menuscan/internal/model"
)

var phoneRe = regexp.MustCompile(`\(?\+?[0-9][0-9()\-. ]{7,16}[0-9]`)

// titleNoise trims marketing suffixes like " - Home" or " | Official Site"
// off page titles.
var titleNoise = regexp.MustCompile(`(?i)\s*[|\-–—:]\s*(home|welcome|official site|official website|menu|restaurant)\s*$`)

// restaurantInfoFromHTML best-effort extracts the restaurant's name, phone,
// and address from a page. Every field may be empty.
func restaurantInfoFromHTML(html, pageURL string) model.RestaurantInfo {
	info := model.RestaurantInfo{Website: originOf(pageURL)}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return info
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	for {
		trimmed := titleNoise.ReplaceAllString(title, "")
		if trimmed == title {
			break
		}
		title = trimmed
	}
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if len(title) <= 80 {
		info.Name = title
	}

	if href, ok := doc.Find(`a[href^="tel:"]`).First().Attr("href"); ok {
		info.Phone = strings.TrimPrefix(href, "tel:")
	} else if m := phoneRe.FindString(doc.Find("footer, [class*='contact']").Text()); m != "" {
		info.Phone = strings.TrimSpace(m)
	}

	if addr := strings.Join(strings.Fields(doc.Find("address").First().Text()), " "); addr != "" && len(addr) <= 160 {
		info.Address = addr
	}

	return info
}
