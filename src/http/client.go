package http

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptrace"
	"sync"
	"time"
)

// HTTPClient interface for mockable HTTP operations
type HTTPClient interface {
	Get(ctx context.Context, url string, headers map[string]string) (*Response, error)
}

// Response wraps HTTP response data
type Response struct {
	StatusCode int
	Body       []byte
	Headers    map[string]string
}

// IsSuccess is true for any 2xx status
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// RealHTTPClient implements HTTPClient using net/http
type RealHTTPClient struct {
	client    *http.Client
	userAgent string
}

// NewRealHTTPClient creates a new real HTTP client.
// Invalid settings are the one configuration failure callers must handle.
func NewRealHTTPClient(config ClientConfig) (*RealHTTPClient, error) {
	if err := ValidateClientConfig(config); err != nil {
		return nil, err
	}

	transport := config.Transport
	if transport == nil {
		transport = NewPooledTransport(config.MaxConnsPerHost)
	}

	return &RealHTTPClient{
		client: &http.Client{
			Transport:     transport,
			Timeout:       config.Timeout(),
			CheckRedirect: redirectPolicy(config),
		},
		userAgent: cmp.Or(config.UserAgent, DefaultUserAgent),
	}, nil
}

// NewPooledTransport clones the default transport with a per-host connection cap
func NewPooledTransport(maxConnsPerHost int) *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxConnsPerHost = maxConnsPerHost
	transport.MaxIdleConnsPerHost = maxConnsPerHost
	return transport
}

var ErrRedirectsDisabled = errors.New("redirects disabled")

func redirectPolicy(config ClientConfig) func(*http.Request, []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if !config.FollowRedirects {
			return ErrRedirectsDisabled
		}
		if len(via) >= config.MaxRedirects {
			return fmt.Errorf("stopped after %d redirects", config.MaxRedirects)
		}
		return nil
	}
}

// Get performs an HTTP GET request
func (c *RealHTTPClient) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	ctx = c.withTrace(ctx, url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch '%s': %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	respHeaders := make(map[string]string)
	for k, v := range resp.Header {
		if len(v) > 0 {
			respHeaders[k] = v[0]
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		Headers:    respHeaders,
	}, nil
}

// withTrace adds HTTP connection tracing to context
func (c *RealHTTPClient) withTrace(ctx context.Context, url string) context.Context {
	return httptrace.WithClientTrace(ctx, &httptrace.ClientTrace{
		GotConn: func(info httptrace.GotConnInfo) {
			slog.Debug("got connection", "url", url, "reused", info.Reused)
		},
	})
}

// MockHTTPClient implements HTTPClient for testing.
// Safe for concurrent use.
type MockHTTPClient struct {
	mu        sync.Mutex
	responses map[string]*Response
	errors    map[string]error
	delays    map[string]time.Duration
	calls     []string
}

// NewMockHTTPClient creates a new mock HTTP client
func NewMockHTTPClient() *MockHTTPClient {
	return &MockHTTPClient{
		responses: make(map[string]*Response),
		errors:    make(map[string]error),
		delays:    make(map[string]time.Duration),
		calls:     make([]string, 0),
	}
}

// SetResponse sets a mock response for a URL
func (m *MockHTTPClient) SetResponse(url string, response *Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[url] = response
}

// SetError sets a mock error for a URL
func (m *MockHTTPClient) SetError(url string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[url] = err
}

// SetDelay makes requests for a URL wait before answering, or until ctx is done
func (m *MockHTTPClient) SetDelay(url string, delay time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays[url] = delay
}

// GetCalls returns all URLs that were called, in call order
func (m *MockHTTPClient) GetCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Get returns a mock response or error
func (m *MockHTTPClient) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, url)
	delay := m.delays[url]
	err, hasErr := m.errors[url]
	resp, hasResp := m.responses[url]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if hasErr {
		return nil, err
	}

	if hasResp {
		return resp, nil
	}

	return nil, fmt.Errorf("no mock response configured for URL: %s", url)
}
