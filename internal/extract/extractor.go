// Package extract turns heterogeneous menu-page HTML into structured menu
// items. Several independent strategies run over the same document and their
// outputs are merged by trust order; one strategy failing never blocks the
// others.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/plateworks/menuscan/internal/config"
	"github.com/plateworks/menuscan/internal/model"
)

// strategyFunc extracts candidate items from a parsed document.
type strategyFunc func(doc *goquery.Document) []candidate

// candidate is a raw item before validation and merge.
type candidate struct {
	name        string
	price       string
	description string
	category    string
}

// Extractor runs all strategies and merges their output.
type Extractor struct {
	cfg        config.ExtractConfig
	strategies []struct {
		name model.ExtractionStrategy
		fn   strategyFunc
	}
}

// New creates an Extractor with the full strategy set in trust order.
func New(cfg config.ExtractConfig) *Extractor {
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = 150
	}
	if cfg.MaxDescription <= 0 {
		cfg.MaxDescription = 300
	}
	e := &Extractor{cfg: cfg}
	add := func(name model.ExtractionStrategy, fn strategyFunc) {
		e.strategies = append(e.strategies, struct {
			name model.ExtractionStrategy
			fn   strategyFunc
		}{name, fn})
	}
	add(model.StrategyStructured, extractStructured)
	add(model.StrategyTable, extractTables)
	add(model.StrategyDensity, extractByDensity)
	add(model.StrategySelector, extractBySelectors)
	add(model.StrategyList, extractLists)
	add(model.StrategyVisual, extractVisual)
	add(model.StrategyTextMine, extractTextMine)
	return e
}

// Extract parses the page once and runs every strategy over it. Never
// returns an error: an unparseable page or a panicking strategy yields
// whatever the remaining strategies produce.
func (e *Extractor) Extract(html, sourceURL string) []model.MenuItem {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		zap.L().Warn("extract: unparseable html",
			zap.String("url", sourceURL),
			zap.Error(err),
		)
		return nil
	}

	var all []model.MenuItem
	for _, s := range e.strategies {
		cands := e.runStrategy(s.name, s.fn, doc, sourceURL)
		for _, c := range cands {
			if item, ok := e.toItem(c, s.name, sourceURL); ok {
				all = append(all, item)
			}
		}
	}

	merged := MergeItems(all, e.cfg.MaxItems)
	zap.L().Debug("extract: page extracted",
		zap.String("url", sourceURL),
		zap.Int("raw", len(all)),
		zap.Int("merged", len(merged)),
	)
	return merged
}

// runStrategy isolates a single strategy: a panic is logged and swallowed.
func (e *Extractor) runStrategy(name model.ExtractionStrategy, fn strategyFunc, doc *goquery.Document, sourceURL string) (out []candidate) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Warn("extract: strategy panicked",
				zap.String("strategy", string(name)),
				zap.String("url", sourceURL),
				zap.Any("panic", r),
			)
			out = nil
		}
	}()
	return fn(doc)
}

// toItem validates a candidate and converts it to a MenuItem. Names must be
// 3-200 chars and must not themselves be a price token.
func (e *Extractor) toItem(c candidate, strategy model.ExtractionStrategy, sourceURL string) (model.MenuItem, bool) {
	item, ok := finishCandidate(c, e.cfg.MaxDescription)
	if !ok {
		return model.MenuItem{}, false
	}
	item.Strategy = strategy
	item.SourceURL = sourceURL
	return item, true
}

// ExtractCategories pulls section names from heading-like elements,
// excluding anything that itself looks like a price.
func (e *Extractor) ExtractCategories(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	return headingCategories(doc)
}
