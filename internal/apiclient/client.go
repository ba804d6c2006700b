// Package apiclient issues requests against the marketplace REST API on
// behalf of a role, attaching that role's bearer credential.
//
// The client is stateless apart from reading the session store. A 401
// answer is the only case with a global side effect: the store is cleared
// and the session-expired callback runs before ErrAuthExpired is returned.
// Nothing is retried, cached or deduplicated.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"marketplace-portal/internal/logger"
	"marketplace-portal/internal/metrics"
	"marketplace-portal/internal/model"
	"marketplace-portal/pkg/requestid"
)

const DefaultBaseURL = "http://localhost:3000"

type tokenResolver interface {
	Resolve(ctx context.Context, role model.Role) (string, bool, error)
}

type sessionClearer interface {
	Clear(ctx context.Context, role model.Role) error
	ClearAll(ctx context.Context) error
}

// Descriptor describes one call. Body is JSON-encoded unless nil;
// json.RawMessage and []byte bodies are sent as-is.
type Descriptor struct {
	Endpoint string
	Method   string
	Body     any
	Headers  map[string]string
	Role     model.Role
}

type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	// ClearRoleOnly narrows the 401 cleanup to the calling role instead of
	// every role.
	ClearRoleOnly bool
	// OnSessionExpired runs after the store was cleared for a 401.
	OnSessionExpired func(ctx context.Context, role model.Role)
	Logger           *slog.Logger
}

type Client struct {
	baseURL       string
	http          *http.Client
	tokens        tokenResolver
	sessions      sessionClearer
	clearRoleOnly bool
	onExpired     func(ctx context.Context, role model.Role)
	log           *slog.Logger
}

func New(tokens tokenResolver, sessions sessionClearer, opts Options) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	onExpired := opts.OnSessionExpired
	if onExpired == nil {
		onExpired = func(context.Context, model.Role) {}
	}

	return &Client{
		baseURL:       baseURL,
		http:          httpClient,
		tokens:        tokens,
		sessions:      sessions,
		clearRoleOnly: opts.ClearRoleOnly,
		onExpired:     onExpired,
		log:           log.With("component", "apiclient"),
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request performs the call described by d and returns the raw JSON body
// of a 2xx response unchanged.
func (c *Client) Request(ctx context.Context, d Descriptor) (json.RawMessage, error) {
	method := strings.ToUpper(strings.TrimSpace(d.Method))
	if method == "" {
		method = http.MethodGet
	}
	url := c.baseURL + d.Endpoint

	req, err := c.newRequest(ctx, method, url, d)
	if err != nil {
		return nil, err
	}

	c.log.Log(ctx, logger.LevelTrace, "API request start", "role", d.Role, "method", method, "url", url, "credential", req.Header.Get("Authorization") != "")

	started := time.Now()
	resp, err := c.http.Do(req)
	metrics.UpstreamRequestDuration.WithLabelValues(d.Role.String()).Observe(time.Since(started).Seconds())
	if err != nil {
		c.observe(d.Role, method, "network_error")
		c.log.Error("API request error", "role", d.Role, "method", method, "endpoint", d.Endpoint, "error", err)
		return nil, &NetworkError{Method: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(d.Role, method, "network_error")
		c.log.Error("API request error", "role", d.Role, "method", method, "endpoint", d.Endpoint, "error", err)
		return nil, &NetworkError{Method: method, URL: url, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized {
			c.observe(d.Role, method, "auth_expired")
			c.expire(ctx, d.Role, d.Endpoint)
			return nil, ErrAuthExpired
		}

		c.observe(d.Role, method, "http_error")
		c.log.Warn("API request failed", "role", d.Role, "method", method, "endpoint", d.Endpoint, "status", resp.StatusCode)
		return nil, &HTTPError{Status: resp.StatusCode, Body: body}
	}

	if !json.Valid(body) {
		c.observe(d.Role, method, "parse_error")
		c.log.Error("API request error", "role", d.Role, "method", method, "endpoint", d.Endpoint, "error", "response is not valid JSON")
		return nil, &ParseError{Err: fmt.Errorf("%s %s returned %d bytes of non-JSON content", method, d.Endpoint, len(body))}
	}

	c.observe(d.Role, method, "ok")
	c.log.Debug("API request", "role", d.Role, "method", method, "endpoint", d.Endpoint, "status", resp.StatusCode, "duration_ms", time.Since(started).Milliseconds())
	return json.RawMessage(body), nil
}

func (c *Client) newRequest(ctx context.Context, method string, url string, d Descriptor) (*http.Request, error) {
	var body io.Reader
	if d.Body != nil {
		payload, err := encodeBody(d.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	token, ok, err := c.tokens.Resolve(ctx, d.Role)
	if err != nil {
		return nil, fmt.Errorf("resolve %s credential: %w", d.Role, err)
	}

	req.Header.Set("Content-Type", "application/json")
	if ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if id := requestid.From(ctx); id != "" {
		req.Header.Set(requestid.Header, id)
	}
	for key, value := range d.Headers {
		req.Header.Set(key, value)
	}

	return req, nil
}

func (c *Client) expire(ctx context.Context, role model.Role, endpoint string) {
	// The request context may already be done; the cleanup must still land.
	cleanupCtx := context.WithoutCancel(ctx)

	var err error
	if c.clearRoleOnly {
		err = c.sessions.Clear(cleanupCtx, role)
	} else {
		err = c.sessions.ClearAll(cleanupCtx)
	}
	if err != nil {
		c.log.Error("failed to clear sessions after 401", "role", role, "error", err)
	}

	c.log.Warn("authentication expired", "role", role, "endpoint", endpoint, "role_only", c.clearRoleOnly)
	c.onExpired(cleanupCtx, role)
}

func (c *Client) observe(role model.Role, method string, outcome string) {
	metrics.UpstreamRequestsTotal.WithLabelValues(role.String(), method, outcome).Inc()
}

func encodeBody(body any) ([]byte, error) {
	switch v := body.(type) {
	case json.RawMessage:
		return v, nil
	case []byte:
		return v, nil
	default:
		return json.Marshal(v)
	}
}
