// Package classify judges whether page content is a menu, or where a menu
// might be linked from. The LLM-backed adapter is best-effort: it may be
// wrong, slow, or unavailable, and every caller must tolerate a nil verdict.
package classify

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrUnavailable is returned when a classifier cannot produce a verdict at
// all (missing credentials, timeout, unparseable response). Callers fall
// back to deterministic heuristics; it never aborts discovery.
var ErrUnavailable = eris.New("classify: classifier unavailable")

// Verdict is a page-level menu judgement. Confidence is advisory, 0-100.
type Verdict struct {
	IsMenu     bool   `json:"is_menu"`
	Confidence int    `json:"confidence"`
	Reason     string `json:"reason"`
}

// LinkType categorizes a candidate menu link.
type LinkType string

const (
	LinkDirect   LinkType = "direct"
	LinkPDF      LinkType = "pdf"
	LinkOrdering LinkType = "ordering-system"
)

// MenuLink is a ranked candidate URL that may lead to a menu.
type MenuLink struct {
	URL        string   `json:"url"`
	Confidence int      `json:"confidence"`
	Reason     string   `json:"reason"`
	Type       LinkType `json:"type"`
	// Category is set during sub-menu ranking ("Drinks", "Lunch", ...).
	Category string `json:"category,omitempty"`
}

// Classifier produces menu verdicts for page content.
type Classifier interface {
	// ClassifyPage judges whether the given page text is itself a menu.
	ClassifyPage(ctx context.Context, pageText, url string) (*Verdict, error)
	// FindMenuLinks ranks candidate menu URLs found in the page's HTML.
	FindMenuLinks(ctx context.Context, html, url string) ([]MenuLink, error)
	Name() string
}

// Chain tries classifiers in order, returning the first usable answer. A
// slow or broken LLM adapter degrades to the heuristic one instead of
// failing the pipeline.
type Chain struct {
	classifiers []Classifier
}

// NewChain creates a Chain. Classifiers are tried in the order given.
func NewChain(classifiers ...Classifier) *Chain {
	return &Chain{classifiers: classifiers}
}

func (c *Chain) Name() string { return "chain" }

// ClassifyPage tries each classifier in order.
func (c *Chain) ClassifyPage(ctx context.Context, pageText, url string) (*Verdict, error) {
	var lastErr error
	for _, cl := range c.classifiers {
		v, err := cl.ClassifyPage(ctx, pageText, url)
		if err == nil && v != nil {
			return v, nil
		}
		if err != nil {
			zap.L().Debug("classify: classifier failed, trying next",
				zap.String("classifier", cl.Name()),
				zap.String("url", url),
				zap.Error(err),
			)
			lastErr = err
		}
	}
	if lastErr == nil {
		lastErr = ErrUnavailable
	}
	return nil, lastErr
}

// FindMenuLinks tries each classifier in order, accepting the first
// non-empty candidate list.
func (c *Chain) FindMenuLinks(ctx context.Context, html, url string) ([]MenuLink, error) {
	var lastErr error
	for _, cl := range c.classifiers {
		links, err := cl.FindMenuLinks(ctx, html, url)
		if err == nil && len(links) > 0 {
			return links, nil
		}
		if err != nil {
			zap.L().Debug("classify: link ranking failed, trying next",
				zap.String("classifier", cl.Name()),
				zap.String("url", url),
				zap.Error(err),
			)
			lastErr = err
		}
	}
	if lastErr == nil {
		lastErr = ErrUnavailable
	}
	return nil, lastErr
}
