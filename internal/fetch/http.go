package fetch

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/plateworks/menuscan/internal/config"
)

const desktopUA = "Mozilla/5.0 (compatible; MenuScanBot/1.0)"
const mobileUA = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"

// HTTPFetcher fetches pages with net/http. It enforces a hard cap on
// concurrent in-flight fetches and caches results for a short TTL so the
// locator and sub-menu collector do not re-fetch the same page.
//
// The zero value is not usable; construct with NewHTTPFetcher and Close on
// teardown to drain in-flight requests.
type HTTPFetcher struct {
	client       *http.Client
	cfg          config.FetchConfig
	permits      chan struct{}
	cache        *gocache.Cache
	maxBodyBytes int64
}

// NewHTTPFetcher creates an HTTPFetcher from config.
func NewHTTPFetcher(cfg config.FetchConfig) *HTTPFetcher {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	maxInFlight := cfg.MaxInFlight
	if maxInFlight <= 0 {
		maxInFlight = 8
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 2 * 1024 * 1024
	}
	ttl := time.Duration(cfg.CacheTTLSecs) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		cfg:          cfg,
		permits:      make(chan struct{}, maxInFlight),
		cache:        gocache.New(ttl, 2*ttl),
		maxBodyBytes: maxBody,
	}
}

// Fetch retrieves a URL. Returns ErrTooManyRequests when the in-flight cap
// is already saturated rather than queueing unboundedly.
func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	if cached, ok := f.cache.Get(targetURL); ok {
		return cached.(*Page), nil
	}

	select {
	case f.permits <- struct{}{}:
		defer func() { <-f.permits }()
	default:
		return nil, ErrTooManyRequests
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetch: create request")
	}
	ua := desktopUA
	if f.cfg.MobileViewport {
		ua = mobileUA
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: %s", targetURL)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("fetch: %s returned status %d", targetURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: read body of %s", targetURL)
	}

	page := &Page{
		URL:         targetURL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}
	if page.IsPDF() || isBinary(page.ContentType) {
		page.Body = body
	} else {
		page.HTML = string(body)
	}

	f.cache.Set(targetURL, page, gocache.DefaultExpiration)

	zap.L().Debug("fetch: page retrieved",
		zap.String("url", targetURL),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Bool("pdf", page.IsPDF()),
	)
	return page, nil
}

// Invalidate drops a cached page, forcing the next Fetch to hit the network.
func (f *HTTPFetcher) Invalidate(targetURL string) {
	f.cache.Delete(targetURL)
}

// Close drains in-flight fetches before returning, bounded by the client
// timeout so shutdown cannot hang.
func (f *HTTPFetcher) Close() {
	deadline := time.After(f.client.Timeout + time.Second)
	for i := 0; i < cap(f.permits); i++ {
		select {
		case f.permits <- struct{}{}:
		case <-deadline:
			zap.L().Warn("fetch: close timed out waiting for in-flight requests")
			return
		}
	}
}

func isBinary(contentType string) bool {
	ct := strings.ToLower(contentType)
	switch {
	case ct == "", strings.Contains(ct, "text/"), strings.Contains(ct, "html"),
		strings.Contains(ct, "xml"), strings.Contains(ct, "json"):
		return false
	}
	return strings.Contains(ct, "application/") || strings.Contains(ct, "image/")
}
