package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

// Response is the result of a single GET, carrying everything the static
// analysis path needs: status, headers, a UTF-8 decoded body, the
// time-to-first-byte measurement, and the compression flag.
type Response struct {
	// StatusCode is the HTTP response status code.
	StatusCode int

	// Headers contains the response headers.
	Headers http.Header

	// Body is the response body, decoded to UTF-8 and truncated at the
	// client's body-size limit.
	Body []byte

	// TTFB is the latency from request start to the first response byte.
	TTFB time.Duration

	// GzipEnabled reports whether the response was served gzip-compressed.
	GzipEnabled bool
}

// Client performs HTTP fetches for the static analysis path.
//
// Design decision: We use a struct with the http.Client rather than
// passing the client on each call because:
//  1. Client configuration (dialer policy, timeouts) should be consistent
//  2. Connection pooling works better with a shared client
//  3. Easier to test with mock transport
type Client struct {
	// client is the underlying HTTP client.
	client *http.Client

	// userAgent is the User-Agent header to use for requests.
	userAgent string

	// maxBodySize limits the response body size to prevent memory exhaustion.
	// Default is 5MB.
	maxBodySize int64

	// timeout is the per-request timeout.
	timeout time.Duration

	// headers are extra headers attached to every request (site config).
	headers map[string]string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) ClientOption {
	return func(c *Client) {
		c.maxBodySize = size
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHeaders sets extra headers attached to every request.
// Used to carry site-config cookies and auth headers.
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		c.headers = headers
	}
}

// WithHTTPClient replaces the underlying HTTP client entirely.
// Tests use this to bypass the SSRF-safe dialer when talking to an
// httptest server on loopback.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.client = hc
	}
}

// NewClient creates a Client with the given options.
// By default the client dials with SafeControl, refusing connections to
// private address space even if a hostname re-resolves after validation.
func NewClient(opts ...ClientOption) *Client {
	dialer := &net.Dialer{
		Timeout: 10 * time.Second,
		Control: SafeControl,
	}
	c := &Client{
		client: &http.Client{
			Transport: &http.Transport{
				DialContext:         dialer.DialContext,
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		userAgent:   "seoscan/1.0",
		maxBodySize: 5 * 1024 * 1024, // 5MB
		timeout:     20 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// NewInsecureClient creates a Client whose dialer does not enforce the
// public-address policy. Used when AllowPrivateHosts is configured
// (intranet staging audits, tests).
func NewInsecureClient(opts ...ClientOption) *Client {
	base := []ClientOption{WithHTTPClient(&http.Client{
		Transport: &http.Transport{
			MaxIdleConns:    10,
			IdleConnTimeout: 30 * time.Second,
		},
	})}
	return NewClient(append(base, opts...)...)
}

// Get fetches url and measures time-to-first-byte via httptrace.
//
// The compression flag needs care: the transport transparently
// decompresses gzip responses and strips the Content-Encoding header,
// setting Response.Uncompressed instead. We check both so the flag is
// correct whether or not the transport decompressed.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var (
		start     time.Time
		firstByte time.Duration
	)
	trace := &httptrace.ClientTrace{
		GotFirstResponseByte: func() {
			firstByte = time.Since(start)
		},
	}
	ctx = httptrace.WithClientTrace(ctx, trace)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	start = time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	gzipEnabled := resp.Uncompressed ||
		strings.Contains(strings.ToLower(resp.Header.Get("Content-Encoding")), "gzip")

	// Decode to UTF-8 based on Content-Type and in-document hints, with a
	// size limit applied before decoding.
	limited := io.LimitReader(resp.Body, c.maxBodySize)
	reader, err := charset.NewReader(limited, resp.Header.Get("Content-Type"))
	if err != nil {
		// Fall back to the raw bytes; a charset error should not fail the fetch.
		reader = limited
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		Headers:     resp.Header.Clone(),
		Body:        body,
		TTFB:        firstByte,
		GzipEnabled: gzipEnabled,
	}, nil
}

// Head issues a HEAD request and reports only the status code.
// Used by the broken-link checker, which does not need bodies.
func (c *Client) Head(ctx context.Context, url string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}
