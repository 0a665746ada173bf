package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunServer_DrainsInFlightRequests(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		_, _ = w.Write([]byte("ok"))
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := &http.Server{Handler: mux}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serveDone := make(chan error, 1)
	go func() { serveDone <- runServer(ctx, srv, ln, 5*time.Second) }()

	type response struct {
		status int
		body   string
		err    error
	}
	respCh := make(chan response, 1)
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String() + "/slow")
		if err != nil {
			respCh <- response{err: err}
			return
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		respCh <- response{status: resp.StatusCode, body: string(body)}
	}()

	// Trigger shutdown while the request is still inside the handler.
	<-entered
	cancel()

	// The server must not report done while a request is in flight.
	select {
	case err := <-serveDone:
		t.Fatalf("server stopped before draining: %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	close(release)

	resp := <-respCh
	require.NoError(t, resp.err)
	assert.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "ok", resp.body)

	select {
	case err := <-serveDone:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop after the drain")
	}
}
