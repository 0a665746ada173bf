package classify

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/plateworks/menuscan/internal/config"
	"github.com/plateworks/menuscan/internal/lenientjson"
	"github.com/plateworks/menuscan/pkg/anthropic"
)

const classifySystemPrompt = `You judge restaurant web pages. Given page text, decide whether the page IS a menu: a page listing multiple named food or drink items, optionally with prices and descriptions. A homepage that merely mentions food is not a menu. Respond with a valid JSON object only: {"is_menu": <bool>, "confidence": <0-100>, "reason": "<one sentence>"}`

const classifyUserPrompt = `URL: %s

Page text (truncated):
%s`

const findLinksSystemPrompt = `You locate restaurant menus. Given the links and buttons of a page, rank up to 5 URLs most likely to lead to the menu. Type is "pdf" for PDF files, "ordering-system" for third-party ordering platforms, otherwise "direct". Respond with a valid JSON object only: {"menu_urls": [{"url": "<absolute url>", "confidence": <0-100>, "reason": "<one sentence>", "type": "direct|pdf|ordering-system", "category": "<optional meal/category label>"}]}`

const findLinksUserPrompt = `Page URL: %s

Links found on the page:
%s`

// maxPromptChars bounds the page text sent to the model.
const maxPromptChars = 6000

// AnthropicClassifier implements Classifier over the Anthropic messages API.
// Prompt wording is an implementation detail of this adapter; responses are
// parsed leniently and any failure surfaces as ErrUnavailable.
type AnthropicClassifier struct {
	client  anthropic.Client
	cfg     config.AnthropicConfig
	timeout time.Duration
}

// NewAnthropicClassifier creates the LLM-backed classifier.
func NewAnthropicClassifier(client anthropic.Client, cfg config.AnthropicConfig) *AnthropicClassifier {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AnthropicClassifier{client: client, cfg: cfg, timeout: timeout}
}

func (a *AnthropicClassifier) Name() string { return "anthropic" }

// ClassifyPage asks the model whether the page text is a menu.
func (a *AnthropicClassifier) ClassifyPage(ctx context.Context, pageText, pageURL string) (*Verdict, error) {
	text := a.ask(ctx, classifySystemPrompt,
		fmt.Sprintf(classifyUserPrompt, pageURL, clip(pageText, maxPromptChars)), "classify_page")
	if text == "" {
		return nil, ErrUnavailable
	}

	var verdict Verdict
	if err := lenientjson.Parse(text, &verdict); err != nil {
		zap.L().Warn("classify: unparseable page verdict",
			zap.String("url", pageURL),
			zap.Error(err),
		)
		return nil, eris.Wrap(ErrUnavailable, "parse page verdict")
	}
	verdict.Confidence = clampConfidence(verdict.Confidence)
	return &verdict, nil
}

// FindMenuLinks asks the model to rank candidate menu URLs from the page's
// anchors. Relative URLs in the answer are resolved against the page URL.
func (a *AnthropicClassifier) FindMenuLinks(ctx context.Context, html, pageURL string) ([]MenuLink, error) {
	summary := summarizeLinks(html, pageURL)
	if summary == "" {
		return nil, nil
	}

	text := a.ask(ctx, findLinksSystemPrompt,
		fmt.Sprintf(findLinksUserPrompt, pageURL, clip(summary, maxPromptChars)), "find_menu_links")
	if text == "" {
		return nil, ErrUnavailable
	}

	var parsed struct {
		MenuURLs []MenuLink `json:"menu_urls"`
	}
	if err := lenientjson.Parse(text, &parsed); err != nil {
		zap.L().Warn("classify: unparseable link ranking",
			zap.String("url", pageURL),
			zap.Error(err),
		)
		return nil, eris.Wrap(ErrUnavailable, "parse link ranking")
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}
	var links []MenuLink
	for _, l := range parsed.MenuURLs {
		if l.URL == "" {
			continue
		}
		if base != nil {
			if ref, err := url.Parse(l.URL); err == nil {
				l.URL = base.ResolveReference(ref).String()
			}
		}
		switch l.Type {
		case LinkDirect, LinkPDF, LinkOrdering:
		default:
			l.Type = LinkDirect
		}
		l.Confidence = clampConfidence(l.Confidence)
		links = append(links, l)
	}
	sort.SliceStable(links, func(i, j int) bool { return links[i].Confidence > links[j].Confidence })
	return links, nil
}

// ask sends one message and returns the concatenated text reply, or "" on
// any failure.
func (a *AnthropicClassifier) ask(ctx context.Context, system, user, phase string) string {
	cctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.CreateMessage(cctx, anthropic.MessageRequest{
		Model:     a.cfg.Model,
		MaxTokens: a.cfg.MaxTokens,
		System:    anthropic.BuildCachedSystemBlocks(system),
		Messages: []anthropic.Message{
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		zap.L().Warn("classify: anthropic call failed",
			zap.String("phase", phase),
			zap.Error(err),
		)
		return ""
	}
	resp.Usage.LogUsage(resp.Model, phase)

	var parts []string
	for _, block := range resp.Content {
		if block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func clampConfidence(c int) int {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}
