// Package textutil provides plain-text normalization, price recognition, and
// name similarity helpers shared by every extraction stage.
package textutil

import (
	"regexp"
	"strings"
)

var (
	scriptRe = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	tagRe    = regexp.MustCompile(`<[^>]+>`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
)

// ToPlainText strips an HTML fragment down to readable text: script and
// style blocks are removed with their content, remaining tags are dropped,
// the common entities are decoded, and runs of whitespace collapse to a
// single space.
func ToPlainText(html string) string {
	if html == "" {
		return ""
	}
	html = scriptRe.ReplaceAllString(html, " ")
	html = styleRe.ReplaceAllString(html, " ")
	html = tagRe.ReplaceAllString(html, " ")
	html = entityReplacer.Replace(html)
	html = spaceRe.ReplaceAllString(html, " ")
	return strings.TrimSpace(html)
}

// Truncate shortens s to at most max runes, appending an ellipsis when
// anything was cut.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max])) + "…"
}
