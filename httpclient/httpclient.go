// Package httpclient builds the outbound http.Client shared by the NewsAPI
// feed, the Gemini SDK and the page renderer.
package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"news-hub/config"
	"news-hub/trace"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyLog     = 1024
)

type Config struct {
	// Timeout 이 0 이면 10초.
	Timeout time.Duration
	// RedactQuery 에 있는 쿼리 키는 로그에 "***" 로 남는다. (예: apiKey)
	RedactQuery []string
}

// New returns a client whose transport stamps trace headers on every request
// and logs one line per call.
func New(cfg Config) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &tracingTransport{next: http.DefaultTransport, redact: cfg.RedactQuery},
	}
}

type tracingTransport struct {
	next   http.RoundTripper
	redact []string
}

func (t *tracingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	requestID, spanID := trace.NextSpanID(req.Context())
	req.Header.Set(trace.HeaderRequestID, requestID)
	req.Header.Set(trace.HeaderSpanID, spanID)

	fields := config.Fields{
		"method":     req.Method,
		"url":        redactURL(req.URL, t.redact),
		"request_id": requestID,
		"span_id":    spanID,
	}
	if snippet := captureBody(req); snippet != "" {
		fields["body"] = snippet
	}

	resp, err := t.next.RoundTrip(req)
	fields["duration"] = time.Since(start).String()
	if err != nil {
		fields["error"] = err.Error()
		config.ErrorWithFields("outbound request failed", fields)
		return nil, err
	}
	fields["status"] = resp.StatusCode
	config.DebugWithFields("outbound request", fields)
	return resp, nil
}

// captureBody reads the request body for logging and puts an identical reader back.
func captureBody(req *http.Request) string {
	if req.Body == nil || req.Body == http.NoBody {
		return ""
	}
	data, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(data))
	if err != nil || len(data) == 0 {
		return ""
	}
	if len(data) > maxBodyLog {
		data = data[:maxBodyLog]
	}
	return string(data)
}

func redactURL(u *url.URL, keys []string) string {
	if u == nil {
		return ""
	}
	if len(keys) == 0 || u.RawQuery == "" {
		return u.String()
	}
	q := u.Query()
	for _, k := range keys {
		if q.Has(k) {
			q.Set(k, "***")
		}
	}
	cp := *u
	cp.RawQuery = q.Encode()
	return cp.String()
}

// BaseClient joins relative paths onto one API base URL.
type BaseClient struct {
	HTTP    *http.Client
	BaseURL string
}

// NewBaseClient uses hc, or New(Config{}) when hc is nil.
func NewBaseClient(baseURL string, hc *http.Client) *BaseClient {
	if hc == nil {
		hc = New(Config{})
	}
	return &BaseClient{HTTP: hc, BaseURL: baseURL}
}

// NewRequest builds base + relPath with query. A "?" inside relPath is
// rejected since path.Join would mangle it.
func (c *BaseClient) NewRequest(ctx context.Context, method, relPath string, query url.Values, body io.Reader) (*http.Request, error) {
	if strings.Contains(relPath, "?") {
		return nil, fmt.Errorf("httpclient: pass the query separately, not in relPath %q", relPath)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("httpclient: base url: %w", err)
	}
	if relPath != "" {
		u.Path = path.Join(u.Path, relPath)
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return http.NewRequestWithContext(ctx, method, u.String(), body)
}

func (c *BaseClient) Do(req *http.Request) (*http.Response, error) {
	return c.HTTP.Do(req)
}

// GetBytes performs a GET and returns at most limit bytes of the body with the
// status code. Non-2xx statuses are not errors here.
func (c *BaseClient) GetBytes(ctx context.Context, relPath string, query url.Values, limit int64) ([]byte, int, error) {
	req, err := c.NewRequest(ctx, http.MethodGet, relPath, query, nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return body, resp.StatusCode, nil
}
