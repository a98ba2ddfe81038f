package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	logging "github.com/KonishchevDmitry/go-easy-logging"
	"go.uber.org/zap/zaptest"
)

func Context(t *testing.T) context.Context {
	return logging.WithLogger(context.Background(), zaptest.NewLogger(t).Sugar())
}

// ServeFeed starts an HTTP server that serves the document as an RSS feed
// and shuts it down when the test finishes.
func ServeFeed(t *testing.T, document string) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(document))
	}))
	t.Cleanup(server.Close)
	return server
}
