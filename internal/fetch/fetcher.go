// Package fetch retrieves pages over HTTP with a bounded in-flight pool and
// a short-lived result cache. Non-HTML responses (PDFs) are signaled by
// content type rather than parsed.
package fetch

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrTooManyRequests is returned when the in-flight fetch cap is exceeded.
// Callers should back off and retry later; it is the only fetch error that
// propagates as a hard failure.
var ErrTooManyRequests = eris.New("fetch: too many concurrent requests")

// Page is the raw outcome of fetching one URL.
type Page struct {
	URL         string
	FinalURL    string
	StatusCode  int
	ContentType string
	HTML        string // empty for non-HTML responses
	Body        []byte // raw bytes, set for PDF responses
}

// IsPDF reports whether the response is a PDF document, by content type or
// URL extension.
func (p *Page) IsPDF() bool {
	if p == nil {
		return false
	}
	if strings.Contains(strings.ToLower(p.ContentType), "application/pdf") {
		return true
	}
	return URLLooksLikePDF(p.FinalURL) || URLLooksLikePDF(p.URL)
}

// URLLooksLikePDF reports whether a URL path ends in .pdf.
func URLLooksLikePDF(rawURL string) bool {
	u := strings.ToLower(rawURL)
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	return strings.HasSuffix(u, ".pdf")
}

// Fetcher retrieves a single URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}
