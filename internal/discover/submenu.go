package discover

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/plateworks/menuscan/internal/classify"
	"github.com/plateworks/menuscan/internal/config"
	"github.com/plateworks/menuscan/internal/extract"
	"github.com/plateworks/menuscan/internal/fetch"
	"github.com/plateworks/menuscan/internal/model"
)

// Collected is the merged output of a confirmed menu page and its sub-menus.
type Collected struct {
	Items      []model.MenuItem
	Categories []string
	Sources    []model.SubMenuSource
}

// SubMenuCollector expands a confirmed menu page into its category and
// meal-period sub-pages ("Lunch", "Drinks") and merges everything into one
// deduplicated item list.
type SubMenuCollector struct {
	fetcher    fetch.Fetcher
	classifier classify.Classifier
	extractor  *extract.Extractor
	cfg        config.SubMenuConfig
	limiter    *rate.Limiter
}

// NewSubMenuCollector wires a collector. The rate limiter paces sub-page
// fetches so a burst of category pages does not hammer the target site.
func NewSubMenuCollector(fetcher fetch.Fetcher, classifier classify.Classifier, extractor *extract.Extractor, cfg config.SubMenuConfig) *SubMenuCollector {
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = 8
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	if cfg.DedupeSimilarity <= 0 {
		cfg.DedupeSimilarity = 0.85
	}
	pause := time.Duration(cfg.PauseMillis) * time.Millisecond
	if pause <= 0 {
		pause = 500 * time.Millisecond
	}
	return &SubMenuCollector{
		fetcher:    fetcher,
		classifier: classifier,
		extractor:  extractor,
		cfg:        cfg,
		limiter:    rate.NewLimiter(rate.Every(pause), 1),
	}
}

// Collect scrapes the confirmed page, then each candidate sub-menu page,
// tagging every item with its source category and URL. Sub-pages fetch in
// parallel but results join in candidate-rank order so first-seen-wins
// deduplication stays deterministic. PDFs have no sub-navigation and are
// returned as-is.
func (s *SubMenuCollector) Collect(ctx context.Context, menuURL string, page *fetch.Page, confidence int, visited map[string]bool) Collected {
	if page.IsPDF() {
		return Collected{}
	}

	items := s.extractor.Extract(page.HTML, menuURL)
	for i := range items {
		items[i].Confidence = confidence
	}
	categories := s.extractor.ExtractCategories(page.HTML)

	candidates := s.rankSubMenuLinks(ctx, page, menuURL, visited)

	sources := []model.SubMenuSource{{URL: menuURL, Category: "", ItemCount: len(items)}}

	// Fan out fetches; slot results by rank, not completion order.
	pageItems := make([][]model.MenuItem, len(candidates))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrent)
	for i, cand := range candidates {
		g.Go(func() error {
			if err := s.limiter.Wait(gCtx); err != nil {
				return nil
			}
			sub, err := s.fetcher.Fetch(gCtx, cand.URL)
			if err != nil || sub.IsPDF() {
				if err != nil {
					zap.L().Debug("submenu: fetch failed",
						zap.String("url", cand.URL),
						zap.Error(eris.Cause(err)),
					)
				}
				return nil
			}
			extracted := s.extractor.Extract(sub.HTML, cand.URL)
			for j := range extracted {
				extracted[j].Category = cand.Category
				extracted[j].Confidence = confidence
			}
			pageItems[i] = extracted
			return nil
		})
	}
	_ = g.Wait()

	for i, cand := range candidates {
		if len(pageItems[i]) == 0 {
			continue
		}
		items = append(items, pageItems[i]...)
		sources = append(sources, model.SubMenuSource{
			URL:       cand.URL,
			Category:  cand.Category,
			ItemCount: len(pageItems[i]),
		})
		if cand.Category != "" {
			categories = append(categories, cand.Category)
		}
	}

	deduped := extract.DedupeItems(items, s.cfg.DedupeSimilarity)
	zap.L().Info("submenu: collection complete",
		zap.String("menu_url", menuURL),
		zap.Int("sub_pages", len(sources)-1),
		zap.Int("items_raw", len(items)),
		zap.Int("items_deduped", len(deduped)),
	)

	return Collected{Items: deduped, Categories: categories, Sources: sources}
}

// rankSubMenuLinks finds category-flavored links on the confirmed page. The
// classifier ranking, when available, supplies a category label per link and
// filters navigation chaff; pattern matching covers the rest. Already
// visited URLs are skipped and marked to keep the per-call visit set
// write-once.
func (s *SubMenuCollector) rankSubMenuLinks(ctx context.Context, page *fetch.Page, menuURL string, visited map[string]bool) []classify.MenuLink {
	var ranked []classify.MenuLink

	if links, err := s.classifier.FindMenuLinks(ctx, page.HTML, menuURL); err == nil {
		for _, l := range links {
			if l.Confidence >= s.cfg.Confidence && l.Type != classify.LinkOrdering {
				ranked = append(ranked, l)
			}
		}
	}

	for _, link := range FindCandidateLinks(page.HTML, menuURL, CategoryKeywords, s.cfg.MaxCandidates) {
		ranked = append(ranked, classify.MenuLink{
			URL:        link.URL,
			Confidence: 50,
			Reason:     "category keyword match",
			Type:       classify.LinkDirect,
			Category:   link.Text,
		})
	}

	var out []classify.MenuLink
	for _, cand := range ranked {
		if len(out) >= s.cfg.MaxCandidates {
			break
		}
		if visited[cand.URL] || fetch.URLLooksLikePDF(cand.URL) {
			continue
		}
		visited[cand.URL] = true
		out = append(out, cand)
	}
	return out
}
