package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plateworks/menuscan/internal/config"
)

func TestFetch_HTMLPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>Caesar Salad $8.95</body></html>"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(config.FetchConfig{})
	defer f.Close()

	page, err := f.Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Contains(t, page.HTML, "Caesar Salad")
	assert.False(t, page.IsPDF())
	assert.Empty(t, page.Body)
}

func TestFetch_PDFByContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(config.FetchConfig{})
	defer f.Close()

	page, err := f.Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.True(t, page.IsPDF())
	assert.Empty(t, page.HTML)
	assert.NotEmpty(t, page.Body)
}

func TestFetch_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(config.FetchConfig{})
	defer f.Close()

	_, err := f.Fetch(context.Background(), srv.URL)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestFetch_CachesResults(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(config.FetchConfig{CacheTTLSecs: 60})
	defer f.Close()

	_, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	_, err = f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, int32(1), hits.Load())

	f.Invalidate(srv.URL)
	_, err = f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestFetch_InFlightCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(config.FetchConfig{MaxInFlight: 1})

	// Occupy the only permit; the next fetch must be rejected, not queued.
	f.permits <- struct{}{}
	_, err := f.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrTooManyRequests)

	<-f.permits
	_, err = f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	f.Close()
}

func TestFetch_BodyCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		for i := 0; i < 1000; i++ {
			_, _ = w.Write([]byte("0123456789"))
		}
	}))
	defer srv.Close()

	f := NewHTTPFetcher(config.FetchConfig{MaxBodyBytes: 100})
	defer f.Close()

	page, err := f.Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Len(t, page.HTML, 100)
}

func TestURLLooksLikePDF(t *testing.T) {
	assert.True(t, URLLooksLikePDF("https://x.test/menu.pdf"))
	assert.True(t, URLLooksLikePDF("https://x.test/Menu.PDF?v=2"))
	assert.False(t, URLLooksLikePDF("https://x.test/menu"))
	assert.False(t, URLLooksLikePDF("https://x.test/pdf-guide.html"))
}
