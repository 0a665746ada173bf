package extract

import (
	"sort"

	"github.com/plateworks/menuscan/internal/model"
	"github.com/plateworks/menuscan/internal/textutil"
)

// strategyRank maps each strategy to its merge priority; lower wins.
var strategyRank = map[model.ExtractionStrategy]int{}

func init() {
	for i, s := range model.StrategyTrustOrder() {
		strategyRank[s] = i
	}
	strategyRank[model.StrategyPDFAI] = -1
	strategyRank[model.StrategyPDFPattern] = len(strategyRank)
}

// MergeItems orders items by strategy trust, keeps the first occurrence of
// each normalized name, and caps the result. The sort is stable so items
// from the same strategy keep their page order.
func MergeItems(items []model.MenuItem, maxItems int) []model.MenuItem {
	if maxItems <= 0 {
		maxItems = 150
	}
	ordered := make([]model.MenuItem, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		return strategyRank[ordered[i].Strategy] < strategyRank[ordered[j].Strategy]
	})

	seen := make(map[string]int) // normalized name -> index in out
	var out []model.MenuItem
	for _, it := range ordered {
		key := textutil.NormalizeName(it.Name)
		if key == "" {
			continue
		}
		if idx, dup := seen[key]; dup {
			// A later, less trusted duplicate can still fill gaps.
			fillGaps(&out[idx], it)
			continue
		}
		if len(out) >= maxItems {
			continue
		}
		seen[key] = len(out)
		out = append(out, it)
	}
	return out
}

// DedupeItems removes near-duplicate items across pages. Exact normalized
// name matches and names whose similarity exceeds threshold merge into the
// first-seen, highest-confidence instance. Pure: the input is not modified,
// and output order follows input order.
func DedupeItems(items []model.MenuItem, threshold float64) []model.MenuItem {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.85
	}

	var out []model.MenuItem
	var keys []string
	for _, it := range items {
		key := textutil.NormalizeName(it.Name)
		if key == "" {
			continue
		}

		matched := -1
		for i, existing := range keys {
			if existing == key || textutil.NameSimilarity(key, existing) >= threshold {
				matched = i
				break
			}
		}
		if matched == -1 {
			out = append(out, it)
			keys = append(keys, key)
			continue
		}

		// Keep the higher-confidence instance, first-seen on ties.
		if it.Confidence > out[matched].Confidence {
			kept := it
			fillGaps(&kept, out[matched])
			out[matched] = kept
		} else {
			fillGaps(&out[matched], it)
		}
	}
	return out
}

// fillGaps copies price, description, and category from src into dst where
// dst is missing them.
func fillGaps(dst *model.MenuItem, src model.MenuItem) {
	if dst.Price == "" {
		dst.Price = src.Price
	}
	if dst.Description == "" {
		dst.Description = src.Description
	}
	if dst.Category == "" || dst.Category == model.DefaultCategory {
		if src.Category != "" {
			dst.Category = src.Category
		}
	}
}
