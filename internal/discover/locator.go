package discover

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/plateworks/menuscan/internal/classify"
	"github.com/plateworks/menuscan/internal/config"
	"github.com/plateworks/menuscan/internal/extract"
	"github.com/plateworks/menuscan/internal/fetch"
	"github.com/plateworks/menuscan/internal/model"
	"github.com/plateworks/menuscan/internal/textutil"
)

// PDFParser is the alternate pipeline for PDF-hosted menus. Satisfied by
// pdfmenu.Parser; injected so the locator can hand off whenever a target
// turns out to be a PDF, at any stage.
type PDFParser interface {
	Parse(ctx context.Context, pdfURL string) (*model.DiscoveryResult, error)
}

// Locator drives the discovery state machine: test the original URL, search
// classifier-ranked links, probe conventional paths, give up explicitly.
// Stages run in that fixed order; the first candidate clearing its stage's
// confidence threshold wins.
type Locator struct {
	fetcher    fetch.Fetcher
	classifier classify.Classifier
	extractor  *extract.Extractor
	pdf        PDFParser
	collector  *SubMenuCollector
	cfg        config.DiscoveryConfig
}

// NewLocator wires a Locator. classifier may be a Chain whose last entry is
// the heuristic fallback; it must never be nil.
func NewLocator(fetcher fetch.Fetcher, classifier classify.Classifier, extractor *extract.Extractor, pdf PDFParser, collector *SubMenuCollector, cfg config.DiscoveryConfig) *Locator {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 3
	}
	return &Locator{
		fetcher:    fetcher,
		classifier: classifier,
		extractor:  extractor,
		pdf:        pdf,
		collector:  collector,
		cfg:        cfg,
	}
}

// searchState is passed by value through the recursive search so the
// depth bound travels with each branch while the visited set is shared
// across the whole call.
type searchState struct {
	visited map[string]bool
	depth   int
}

func (s searchState) deeper() searchState {
	return searchState{visited: s.visited, depth: s.depth + 1}
}

// Discover runs the full pipeline for one restaurant URL. Only an invalid
// input URL and resource-guard rejections surface as errors; "no menu
// found" is a success=false result.
func (l *Locator) Discover(ctx context.Context, rawURL string) (*model.DiscoveryResult, error) {
	siteURL, err := normalizeSiteURL(rawURL)
	if err != nil {
		return nil, eris.Wrapf(err, "discover: invalid url %q", rawURL)
	}

	requestID := uuid.NewString()
	logger := zap.L().With(zap.String("request_id", requestID), zap.String("url", siteURL))
	logger.Info("discover: starting")

	st := searchState{visited: map[string]bool{siteURL: true}}

	// PDF handed in directly: no HTML pipeline at all.
	if fetch.URLLooksLikePDF(siteURL) {
		result, err := l.pdf.Parse(ctx, siteURL)
		if err != nil {
			return nil, err
		}
		if result.Success {
			result.Method = model.MethodPDFDirect
		}
		result.RequestID = requestID
		return result, nil
	}

	result, err := l.testOriginal(ctx, siteURL, st, logger)
	if err != nil {
		return nil, err
	}
	// A dead homepage is not final: conventional paths may still answer.
	// Hold the error-shaped result back until every stage has run.
	var unreachable *model.DiscoveryResult
	if result != nil && result.Method == model.MethodError {
		unreachable = result
		result = nil
	}
	if result != nil {
		result.RequestID = requestID
		return result, nil
	}

	result, err = l.probeCommonPaths(ctx, siteURL, st, logger)
	if err != nil {
		return nil, err
	}
	if result != nil {
		result.RequestID = requestID
		return result, nil
	}

	if unreachable != nil {
		logger.Info("discover: all stages exhausted, original unreachable")
		unreachable.RequestID = requestID
		return unreachable, nil
	}

	logger.Info("discover: all stages exhausted")
	return &model.DiscoveryResult{
		RequestID: requestID,
		Success:   false,
		Method:    model.MethodFailed,
		Reason:    "no menu found: the original page, its links, and common menu paths all failed validation",
		Items:     []model.MenuItem{},
	}, nil
}

// testOriginal is stage one: the given page may already be the menu. The
// bar is high because a homepage with a few food mentions must not pass.
// Falls through into the AI-assisted search on rejection; an unreachable
// page yields an error-shaped result the caller holds until the common-path
// probe has also run.
func (l *Locator) testOriginal(ctx context.Context, siteURL string, st searchState, logger *zap.Logger) (*model.DiscoveryResult, error) {
	page, err := l.fetcher.Fetch(ctx, siteURL)
	if err != nil {
		if eris.Is(err, fetch.ErrTooManyRequests) {
			return nil, err
		}
		logger.Warn("discover: original url unreachable", zap.Error(err))
		return &model.DiscoveryResult{
			Success: false,
			Method:  model.MethodError,
			Reason:  "website unreachable: " + eris.Cause(err).Error(),
			Items:   []model.MenuItem{},
		}, nil
	}

	if page.IsPDF() {
		result, err := l.pdf.Parse(ctx, siteURL)
		if err == nil && result.Success {
			result.Method = model.MethodPDFDirect
		}
		return result, err
	}

	items := l.extractor.Extract(page.HTML, siteURL)
	if len(items) > 0 {
		verdict, cerr := l.classifier.ClassifyPage(ctx, textutil.ToPlainText(page.HTML), siteURL)
		switch {
		case cerr != nil && countPriced(items) >= 1:
			// Classifier gone entirely: accept what the patterns found,
			// tagged unvalidated, rather than fail. Priceless text-mined
			// lines alone are not evidence enough.
			logger.Info("discover: classifier unavailable, accepting original unvalidated")
			return l.finish(ctx, siteURL, page, model.MethodOriginalUnvalidated, 0, st, logger)
		case cerr == nil && verdict.IsMenu && verdict.Confidence >= l.cfg.OriginalConfidence:
			logger.Info("discover: original url validated as menu",
				zap.Int("confidence", verdict.Confidence))
			return l.finish(ctx, siteURL, page, model.MethodOriginalValidated, verdict.Confidence, st, logger)
		case cerr == nil:
			logger.Debug("discover: original url rejected",
				zap.Bool("is_menu", verdict.IsMenu),
				zap.Int("confidence", verdict.Confidence),
				zap.String("reason", verdict.Reason))
		}
	}

	return l.searchLinks(ctx, page, siteURL, st, logger)
}

// searchLinks is stage two: rank the page's links and validate each
// candidate in confidence order. A rejected high-confidence candidate
// becomes a new search root, bounded by depth and the shared visited set.
func (l *Locator) searchLinks(ctx context.Context, page *fetch.Page, pageURL string, st searchState, logger *zap.Logger) (*model.DiscoveryResult, error) {
	if st.depth >= l.cfg.MaxDepth {
		logger.Debug("discover: search depth exhausted", zap.Int("depth", st.depth))
		return nil, nil
	}

	candidates := l.rankLinks(ctx, page, pageURL)
	for _, cand := range candidates {
		if st.visited[cand.URL] {
			continue
		}
		st.visited[cand.URL] = true

		if cand.Type == classify.LinkPDF && cand.Confidence >= l.cfg.DiscoveredConfidence {
			result, err := l.pdf.Parse(ctx, cand.URL)
			if err == nil && result.Success {
				logger.Info("discover: pdf menu found via link ranking", zap.String("pdf", cand.URL))
				return result, nil
			}
			continue
		}

		candPage, err := l.fetcher.Fetch(ctx, cand.URL)
		if err != nil {
			if eris.Is(err, fetch.ErrTooManyRequests) {
				return nil, err
			}
			logger.Debug("discover: candidate fetch failed",
				zap.String("candidate", cand.URL), zap.Error(err))
			continue
		}
		if candPage.IsPDF() {
			result, err := l.pdf.Parse(ctx, cand.URL)
			if err == nil && result.Success {
				return result, nil
			}
			continue
		}

		items := l.extractor.Extract(candPage.HTML, cand.URL)
		verdict, cerr := l.classifier.ClassifyPage(ctx, textutil.ToPlainText(candPage.HTML), cand.URL)

		if cerr != nil {
			if countPriced(items) >= 1 {
				logger.Info("discover: classifier unavailable, accepting candidate on prices",
					zap.String("candidate", cand.URL))
				return l.finish(ctx, cand.URL, candPage, model.MethodAIDiscovery, 0, st, logger)
			}
			continue
		}

		if verdict.IsMenu && verdict.Confidence >= l.cfg.DiscoveredConfidence && len(items) > 0 {
			logger.Info("discover: menu found via link ranking",
				zap.String("menu_url", cand.URL),
				zap.Int("confidence", verdict.Confidence))
			return l.finish(ctx, cand.URL, candPage, model.MethodAIDiscovery, verdict.Confidence, st, logger)
		}

		// A strongly ranked candidate that is not itself the menu may still
		// link to it: recurse with that page as the new root.
		if cand.Confidence >= l.cfg.RecurseConfidence {
			logger.Debug("discover: recursing into high-confidence candidate",
				zap.String("candidate", cand.URL), zap.Int("depth", st.depth+1))
			result, err := l.searchLinks(ctx, candPage, cand.URL, st.deeper(), logger)
			if err != nil || result != nil {
				return result, err
			}
		}
	}
	return nil, nil
}

// rankLinks asks the classifier for ranked menu links and falls back to
// keyword pattern matching when it has nothing.
func (l *Locator) rankLinks(ctx context.Context, page *fetch.Page, pageURL string) []classify.MenuLink {
	links, err := l.classifier.FindMenuLinks(ctx, page.HTML, pageURL)
	if err == nil && len(links) > 0 {
		sort.SliceStable(links, func(i, j int) bool { return links[i].Confidence > links[j].Confidence })
		return links
	}

	var out []classify.MenuLink
	for _, link := range FindCandidateLinks(page.HTML, pageURL, BroadMenuKeywords, 8) {
		linkType := classify.LinkDirect
		if fetch.URLLooksLikePDF(link.URL) {
			linkType = classify.LinkPDF
		}
		out = append(out, classify.MenuLink{
			URL:        link.URL,
			Confidence: 50,
			Reason:     "keyword match: " + link.Text,
			Type:       linkType,
		})
	}
	return out
}

// probeCommonPaths is stage three: deterministically try conventional menu
// paths against the site origin.
func (l *Locator) probeCommonPaths(ctx context.Context, siteURL string, st searchState, logger *zap.Logger) (*model.DiscoveryResult, error) {
	origin := originOf(siteURL)
	for _, path := range l.cfg.CommonPaths {
		probeURL := origin + path
		if st.visited[probeURL] {
			continue
		}
		st.visited[probeURL] = true

		page, err := l.fetcher.Fetch(ctx, probeURL)
		if err != nil {
			if eris.Is(err, fetch.ErrTooManyRequests) {
				return nil, err
			}
			continue
		}
		if page.IsPDF() {
			result, err := l.pdf.Parse(ctx, probeURL)
			if err == nil && result.Success {
				return result, nil
			}
			continue
		}

		items := l.extractor.Extract(page.HTML, probeURL)
		if len(items) == 0 {
			continue
		}

		verdict, cerr := l.classifier.ClassifyPage(ctx, textutil.ToPlainText(page.HTML), probeURL)
		if cerr != nil {
			if countPriced(items) >= 1 {
				logger.Info("discover: classifier unavailable, accepting common path on prices",
					zap.String("path", path))
				return l.finish(ctx, probeURL, page, model.MethodCommonPath, 0, st, logger)
			}
			continue
		}
		if verdict.IsMenu && verdict.Confidence >= l.cfg.DiscoveredConfidence {
			logger.Info("discover: menu found via common path",
				zap.String("path", path), zap.Int("confidence", verdict.Confidence))
			return l.finish(ctx, probeURL, page, model.MethodCommonPath, verdict.Confidence, st, logger)
		}
	}
	return nil, nil
}

// finish expands a confirmed menu page into sub-menus and assembles the
// immutable result.
func (l *Locator) finish(ctx context.Context, menuURL string, page *fetch.Page, method model.DiscoveryMethod, confidence int, st searchState, logger *zap.Logger) (*model.DiscoveryResult, error) {
	collected := l.collector.Collect(ctx, menuURL, page, confidence, st.visited)

	items := collected.Items
	if len(items) == 0 {
		// The collector re-extracts; fall back to a direct pass if it
		// produced nothing (e.g. sub-menu fetches all failed).
		items = l.extractor.Extract(page.HTML, menuURL)
		for i := range items {
			items[i].Confidence = confidence
		}
	}

	info := restaurantInfoFromHTML(page.HTML, menuURL)

	logger.Info("discover: finished",
		zap.String("menu_url", menuURL),
		zap.String("method", string(method)),
		zap.Int("items", len(items)),
		zap.Int("sub_pages", len(collected.Sources)),
	)

	return &model.DiscoveryResult{
		Success:        true,
		MenuPageURL:    menuURL,
		Method:         method,
		Items:          items,
		Categories:     mergeCategories(collected.Categories, items),
		RestaurantInfo: info,
		SubMenuSources: collected.Sources,
	}, nil
}

func countPriced(items []model.MenuItem) int {
	n := 0
	for _, it := range items {
		if it.Price != "" {
			n++
		}
	}
	return n
}

// mergeCategories unions page-level headings with the categories actually
// present on items, preserving first-seen order.
func mergeCategories(headings []string, items []model.MenuItem) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range append(headings, model.CategorySet(items)...) {
		key := textutil.NormalizeName(c)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}
