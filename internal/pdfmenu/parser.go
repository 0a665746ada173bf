// Package pdfmenu is the alternate pipeline for PDF-hosted menus: download
// with a hard size cap, extract text, and parse items either through the
// model-backed structured parser or a deterministic pattern fallback.
package pdfmenu

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/plateworks/menuscan/internal/config"
	"github.com/plateworks/menuscan/internal/model"
	"github.com/plateworks/menuscan/internal/ocr"
)

// Sentinel failures for a single PDF. Each maps to a distinct,
// user-actionable reason; none of them crashes the caller.
var (
	ErrNotFound  = eris.New("pdfmenu: pdf not found")
	ErrForbidden = eris.New("pdfmenu: access to pdf denied")
	ErrTimeout   = eris.New("pdfmenu: pdf download timed out")
	ErrOversized = eris.New("pdfmenu: pdf exceeds size cap")
	ErrEncrypted = eris.New("pdfmenu: pdf is encrypted")
	ErrNoText    = eris.New("pdfmenu: no extractable text in pdf")
)

// failureReasons maps sentinels to the reason strings surfaced in results.
var failureReasons = map[error]string{
	ErrNotFound:  "PDF not found (404)",
	ErrForbidden: "access to the PDF was denied (403)",
	ErrTimeout:   "PDF download timed out",
	ErrOversized: "PDF is too large to process",
	ErrEncrypted: "this PDF is encrypted and cannot be read",
	ErrNoText:    "this PDF has no extractable text; it is likely a scanned image",
}

// ItemParser turns extracted menu text into structured items. The
// model-backed implementation is preferred; nil disables it and the pattern
// fallback runs alone.
type ItemParser interface {
	ParseMenuText(ctx context.Context, text, sourceURL string) ([]model.MenuItem, error)
}

// Parser downloads and parses one PDF menu.
type Parser struct {
	client    *http.Client
	extractor ocr.Extractor
	ai        ItemParser
	cfg       config.PDFConfig
	maxDesc   int
}

// NewParser wires a Parser. ai may be nil.
func NewParser(extractor ocr.Extractor, ai ItemParser, cfg config.PDFConfig, maxDescription int) *Parser {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 10 * 1024 * 1024
	}
	return &Parser{
		client:    &http.Client{Timeout: timeout},
		extractor: extractor,
		ai:        ai,
		cfg:       cfg,
		maxDesc:   maxDescription,
	}
}

// Parse runs the full PDF pipeline. Expected failures (unreachable,
// oversized, encrypted, unreadable) come back as a success=false result
// with a distinct reason, not as an error.
func (p *Parser) Parse(ctx context.Context, pdfURL string) (*model.DiscoveryResult, error) {
	text, err := p.extractText(ctx, pdfURL)
	if err != nil {
		zap.L().Info("pdfmenu: parse failed",
			zap.String("url", pdfURL),
			zap.Error(err),
		)
		return failed(pdfURL, reasonFor(err)), nil
	}

	items := p.parseItems(ctx, text, pdfURL)
	if len(items) == 0 {
		return failed(pdfURL, "no menu items could be parsed from this PDF"), nil
	}

	zap.L().Info("pdfmenu: parsed",
		zap.String("url", pdfURL),
		zap.Int("items", len(items)),
	)

	return &model.DiscoveryResult{
		Success:        true,
		MenuPageURL:    pdfURL,
		Method:         model.MethodPDFParsing,
		Items:          items,
		Categories:     model.CategorySet(items),
		RestaurantInfo: restaurantInfoFromText(text, pdfURL),
	}, nil
}

// extractText downloads the PDF and returns its cleaned text, or one of the
// package sentinels.
func (p *Parser) extractText(ctx context.Context, pdfURL string) (string, error) {
	data, err := p.download(ctx, pdfURL)
	if err != nil {
		return "", err
	}

	if bytes.Contains(data, []byte("/Encrypt")) {
		return "", ErrEncrypted
	}

	text, err := p.extractor.ExtractText(ctx, data)
	if err != nil {
		return "", eris.Wrap(ErrNoText, "text extraction failed")
	}

	text = cleanPDFText(text)
	if len(strings.TrimSpace(text)) < 40 {
		return "", ErrNoText
	}
	return text, nil
}

// download fetches the PDF under the size cap.
func (p *Parser) download(ctx context.Context, pdfURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "pdfmenu: build request for %s", pdfURL)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; MenuScanBot/1.0)")

	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() != nil || strings.Contains(err.Error(), "Timeout") || strings.Contains(err.Error(), "deadline") {
			return nil, ErrTimeout
		}
		return nil, eris.Wrap(err, "pdfmenu: download")
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusForbidden:
		return nil, ErrForbidden
	case resp.StatusCode >= 400:
		return nil, eris.Errorf("pdfmenu: download failed with status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, p.cfg.MaxBytes+1))
	if err != nil {
		return nil, eris.Wrap(err, "pdfmenu: read body")
	}
	if int64(len(data)) > p.cfg.MaxBytes {
		return nil, ErrOversized
	}
	return data, nil
}

// parseItems prefers the model-backed parser, falling back to the
// deterministic pattern parser when it fails or is absent.
func (p *Parser) parseItems(ctx context.Context, text, pdfURL string) []model.MenuItem {
	if p.ai != nil {
		items, err := p.ai.ParseMenuText(ctx, text, pdfURL)
		if err == nil && len(items) > 0 {
			return items
		}
		if err != nil {
			zap.L().Debug("pdfmenu: ai parse failed, using pattern fallback",
				zap.String("url", pdfURL),
				zap.Error(err),
			)
		}
	}
	return parseByPattern(text, pdfURL, p.maxDesc)
}

// reasonFor maps an extraction error to a user-facing reason string.
func reasonFor(err error) string {
	for sentinel, reason := range failureReasons {
		if errors.Is(err, sentinel) {
			return reason
		}
	}
	return "PDF could not be processed: " + err.Error()
}

func failed(pdfURL, reason string) *model.DiscoveryResult {
	return &model.DiscoveryResult{
		Success:     false,
		MenuPageURL: pdfURL,
		Method:      model.MethodPDFParsingFailed,
		Reason:      reason,
		Items:       []model.MenuItem{},
	}
}
