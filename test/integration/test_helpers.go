//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"marketplace-portal/internal/app"
	"marketplace-portal/internal/config"
)

type marketplaceCall struct {
	Method string
	URI    string
	Auth   string
}

// fakeMarketplace answers every path with the configured status and body and
// records what it saw.
type fakeMarketplace struct {
	mu     sync.Mutex
	calls  []marketplaceCall
	status int
	body   string
}

func (f *fakeMarketplace) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_, _ = io.Copy(io.Discard, r.Body)

	f.mu.Lock()
	f.calls = append(f.calls, marketplaceCall{Method: r.Method, URI: r.URL.RequestURI(), Auth: r.Header.Get("Authorization")})
	status, body := f.status, f.body
	f.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	if body == "" {
		body = "{}"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (f *fakeMarketplace) respond(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status, f.body = status, body
}

func (f *fakeMarketplace) recorded() []marketplaceCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]marketplaceCall(nil), f.calls...)
}

func testConfig(t *testing.T, apiBaseURL string, sessionFile string) *config.Config {
	t.Helper()

	return &config.Config{
		ServerPort:              "0",
		ServerReadHeaderTimeout: 15 * time.Second,
		ServerWriteTimeout:      30 * time.Second,
		ServerIdleTimeout:       120 * time.Second,
		RequestTimeout:          10 * time.Second,
		APIBaseURL:              apiBaseURL,
		APITimeout:              5 * time.Second,
		SessionBackend:          config.SessionBackendFile,
		SessionFile:             sessionFile,
		SessionSecret:           "integration-secret",
		SessionExpiryScope:      config.ExpiryScopeAll,
		CORSOrigins:             []string{"*"},
		RateLimitRPM:            1000,
		SessionRateLimitRPM:     1000,
	}
}

// newPortalServer starts the full application against a fake marketplace.
func newPortalServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()

	application, err := app.New(cfg)
	require.NoError(t, err)
	t.Cleanup(application.Close)

	server := httptest.NewServer(application.Handler())
	t.Cleanup(server.Close)
	return server
}

func newMarketplace(t *testing.T) (*fakeMarketplace, string) {
	t.Helper()

	backend := &fakeMarketplace{}
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)
	return backend, server.URL
}

func sessionFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "state", "sessions.json")
}

// noRedirectClient surfaces 303 responses instead of following them.
func noRedirectClient() *http.Client {
	return &http.Client{
		Timeout: 10 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func doJSON(t *testing.T, method string, url string, payload any) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := noRedirectClient().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}
