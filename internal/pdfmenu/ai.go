package pdfmenu

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/plateworks/menuscan/internal/config"
	"github.com/plateworks/menuscan/internal/lenientjson"
	"github.com/plateworks/menuscan/internal/model"
	"github.com/plateworks/menuscan/internal/textutil"
	"github.com/plateworks/menuscan/pkg/anthropic"
)

const parseMenuSystemPrompt = `You convert raw restaurant menu text into structured data. Extract every distinct food or drink item. Keep prices exactly as written. Use the menu's own section headers as categories. Respond with a valid JSON object only: {"items": [{"name": "<item>", "price": "<as written or empty>", "description": "<or empty>", "category": "<section or empty>"}]}`

const parseMenuUserPrompt = `Menu text:
%s`

// maxMenuTextChars bounds the menu text sent to the model. PDF menus run
// long; anything past this is almost always wine list boilerplate.
const maxMenuTextChars = 12000

// AnthropicItemParser implements ItemParser over the Anthropic messages API.
type AnthropicItemParser struct {
	client  anthropic.Client
	cfg     config.AnthropicConfig
	maxDesc int
	timeout time.Duration
}

// NewAnthropicItemParser creates the model-backed menu text parser.
func NewAnthropicItemParser(client anthropic.Client, cfg config.AnthropicConfig, maxDescription int) *AnthropicItemParser {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxDescription <= 0 {
		maxDescription = 300
	}
	return &AnthropicItemParser{client: client, cfg: cfg, maxDesc: maxDescription, timeout: timeout}
}

// ParseMenuText asks the model for structured items and validates each one
// with the same rules the DOM extractor applies.
func (a *AnthropicItemParser) ParseMenuText(ctx context.Context, text, sourceURL string) ([]model.MenuItem, error) {
	if len(text) > maxMenuTextChars {
		text = text[:maxMenuTextChars]
	}

	cctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.CreateMessage(cctx, anthropic.MessageRequest{
		Model:     a.cfg.Model,
		MaxTokens: a.cfg.MaxTokens,
		System:    anthropic.BuildCachedSystemBlocks(parseMenuSystemPrompt),
		Messages: []anthropic.Message{
			{Role: "user", Content: fmt.Sprintf(parseMenuUserPrompt, text)},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "pdfmenu: parse menu text")
	}
	resp.Usage.LogUsage(resp.Model, "parse_menu_text")

	var parts []string
	for _, block := range resp.Content {
		if block.Text != "" {
			parts = append(parts, block.Text)
		}
	}

	var parsed struct {
		Items []struct {
			Name        string `json:"name"`
			Price       string `json:"price"`
			Description string `json:"description"`
			Category    string `json:"category"`
		} `json:"items"`
	}
	if err := lenientjson.Parse(strings.Join(parts, "\n"), &parsed); err != nil {
		return nil, eris.Wrap(err, "pdfmenu: parse model reply")
	}

	var items []model.MenuItem
	for _, it := range parsed.Items {
		name := strings.TrimSpace(it.Name)
		if len(name) < 3 || len(name) > 200 || textutil.LooksLikePrice(name) {
			continue
		}
		category := strings.TrimSpace(it.Category)
		if category == "" {
			category = model.DefaultCategory
		}
		items = append(items, model.MenuItem{
			Name:        name,
			Price:       strings.TrimSpace(it.Price),
			Description: textutil.Truncate(strings.TrimSpace(it.Description), a.maxDesc),
			Category:    category,
			SourceURL:   sourceURL,
			Strategy:    model.StrategyPDFAI,
		})
	}
	if len(items) == 0 {
		zap.L().Debug("pdfmenu: model returned no usable items")
	}
	return items, nil
}
