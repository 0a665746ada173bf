package main

import (
	"go.uber.org/zap"

	"github.com/plateworks/menuscan/internal/classify"
	"github.com/plateworks/menuscan/internal/discover"
	"github.com/plateworks/menuscan/internal/extract"
	"github.com/plateworks/menuscan/internal/fetch"
	"github.com/plateworks/menuscan/internal/ocr"
	"github.com/plateworks/menuscan/internal/pdfmenu"
	anthropicpkg "github.com/plateworks/menuscan/pkg/anthropic"
)

// pipelineEnv holds the wired fetcher, classifier, and locator shared by the
// discover/pdf/serve commands.
type pipelineEnv struct {
	Fetcher *fetch.HTTPFetcher
	Locator *discover.Locator
	PDF     *pdfmenu.Parser
}

// Close releases resources held by the environment.
func (pe *pipelineEnv) Close() {
	if pe.Fetcher != nil {
		pe.Fetcher.Close()
	}
}

// initPipeline wires the full discovery pipeline. The Anthropic classifier
// is layered over the heuristic one when a key is configured; without a key
// the heuristic runs alone and results come back unvalidated. Callers should
// defer env.Close().
func initPipeline() (*pipelineEnv, error) {
	fetcher := fetch.NewHTTPFetcher(cfg.Fetch)
	extractor := extract.New(cfg.Extract)

	var classifiers []classify.Classifier
	var itemParser pdfmenu.ItemParser
	if cfg.Anthropic.Key != "" {
		client := anthropicpkg.NewClient(cfg.Anthropic.Key)
		classifiers = append(classifiers, classify.NewAnthropicClassifier(client, cfg.Anthropic))
		itemParser = pdfmenu.NewAnthropicItemParser(client, cfg.Anthropic, cfg.Extract.MaxDescription)
	} else {
		zap.L().Warn("MENUSCAN_ANTHROPIC_KEY not set, page classification falls back to heuristics")
	}
	classifiers = append(classifiers, classify.NewHeuristicClassifier())
	classifier := classify.NewChain(classifiers...)

	ocrExtractor, err := ocr.NewExtractor(cfg.OCR)
	if err != nil {
		fetcher.Close()
		return nil, err
	}
	pdfParser := pdfmenu.NewParser(ocrExtractor, itemParser, cfg.PDF, cfg.Extract.MaxDescription)

	collector := discover.NewSubMenuCollector(fetcher, classifier, extractor, cfg.SubMenu)
	locator := discover.NewLocator(fetcher, classifier, extractor, pdfParser, collector, cfg.Discovery)

	return &pipelineEnv{
		Fetcher: fetcher,
		Locator: locator,
		PDF:     pdfParser,
	}, nil
}
