// Package ocr extracts text from downloaded PDF menus. Providers work on
// in-memory bytes because menu PDFs are fetched, never stored.
package ocr

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/plateworks/menuscan/internal/config"
)

// Extractor extracts text content from a PDF document.
type Extractor interface {
	ExtractText(ctx context.Context, pdf []byte) (string, error)
}

// NewExtractor creates an Extractor based on config.
func NewExtractor(cfg config.OCRConfig) (Extractor, error) {
	switch cfg.Provider {
	case "local", "":
		return NewPdfToText(cfg.PdfToTextPath), nil
	case "mistral":
		if cfg.MistralKey == "" {
			return nil, eris.New("ocr: mistral provider requires mistral_api_key")
		}
		return NewMistralOCR(cfg.MistralKey, cfg.MistralModel), nil
	default:
		return nil, eris.Errorf("ocr: unknown provider %q", cfg.Provider)
	}
}
