// Package upstreamtest serves canned Shodan and CVEDB responses for tool tests.
package upstreamtest

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/tb0hdan/shodan-mcp/pkg/config"
	"github.com/tb0hdan/shodan-mcp/pkg/upstream"
)

const APIKey = "test-key"

// Backend answers both hosts from one mux and counts every request it sees.
type Backend struct {
	Mux    *http.ServeMux
	Server *httptest.Server
	Client *upstream.Client

	requests atomic.Int64
}

func New(t testing.TB) *Backend {
	t.Helper()

	b := &Backend{Mux: http.NewServeMux()}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.requests.Add(1)
		b.Mux.ServeHTTP(w, r)
	}))
	t.Cleanup(b.Server.Close)

	cfg := config.Default()
	cfg.APIKey = APIKey
	cfg.ShodanURL = b.Server.URL
	cfg.CVEDBURL = b.Server.URL
	b.Client = upstream.New(cfg, zerolog.Nop())

	return b
}

// Requests reports how many requests reached the backend.
func (b *Backend) Requests() int64 {
	return b.requests.Load()
}

// JSON registers a handler for pattern that replies with status and body.
func (b *Backend) JSON(pattern string, status int, body string) {
	b.Mux.HandleFunc(pattern, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}
