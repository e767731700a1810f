// Package httpclient provides a JSON-oriented HTTP client for
// exercising APIs from tests and the CLI.
//
// A Client carries a base URL, default headers, and a timeout; each
// request can override them per call:
//
//	client, err := httpclient.New(httpclient.Config{
//		BaseURL:     "https://api.example.com",
//		BearerToken: token,
//	}, logger)
//	resp, err := client.Get(ctx, "/users", httpclient.WithQuery("page", "2"))
//
// Non-2xx responses are not errors: inspect Response.OK.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout bounds requests when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Config describes an API target.
type Config struct {
	// BaseURL is the absolute root every request path is joined to.
	BaseURL string `koanf:"base_url" yaml:"base_url"`

	// Headers are sent with every request. Per-call headers override
	// them on key collision.
	Headers map[string]string `koanf:"headers" yaml:"headers,omitempty"`

	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration `koanf:"timeout" yaml:"timeout,omitempty"`

	// BearerToken, when set, installs an Authorization default header.
	BearerToken string `koanf:"bearer_token" yaml:"bearer_token,omitempty"`
}

// Client issues requests against one API target. It is safe for
// concurrent use.
type Client struct {
	base    *url.URL
	headers map[string]string
	timeout time.Duration
	http    *http.Client
	logger  *slog.Logger
}

// New creates a client for cfg.BaseURL. The URL must be absolute with
// an http or https scheme. If logger is nil, a discard logger is used.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL not specified")
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	headers := make(map[string]string, len(cfg.Headers)+1)
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	if cfg.BearerToken != "" {
		headers["Authorization"] = "Bearer " + cfg.BearerToken
	}

	return &Client{
		base:    base,
		headers: headers,
		timeout: timeout,
		http:    &http.Client{},
		logger:  logger,
	}, nil
}

// BaseURL returns the normalized base URL the client targets.
func (c *Client) BaseURL() string { return c.base.String() }

// Get issues a GET request to path.
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, nil, opts...)
}

// Delete issues a DELETE request to path.
func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil, opts...)
}

// Post issues a POST request to path. See do for body handling.
func (c *Client) Post(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, body, opts...)
}

// Put issues a PUT request to path.
func (c *Client) Put(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodPut, path, body, opts...)
}

// Patch issues a PATCH request to path.
func (c *Client) Patch(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodPatch, path, body, opts...)
}

// do builds and sends one request. nil, []byte, and io.Reader bodies
// pass through unchanged; any other body is JSON-encoded and
// Content-Type defaults to application/json unless a header already
// set it. The response body is drained and closed before returning.
func (c *Client) do(ctx context.Context, method, path string, body any, opts ...RequestOption) (*Response, error) {
	ro := newRequestOptions()
	for _, opt := range opts {
		opt(&ro)
	}

	u := c.base.JoinPath(path)
	if len(ro.query) > 0 {
		q := u.Query()
		for k, vs := range ro.query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	reader, contentType, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	timeout := c.timeout
	if ro.timeout > 0 {
		timeout = ro.timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("building %s %s: %w", method, u, err)
	}

	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range ro.headers {
		req.Header.Set(k, v)
	}
	if ro.hasBasicAuth {
		req.SetBasicAuth(ro.basicUser, ro.basicPass)
	}

	c.logger.Debug("http request", slog.String("method", method), slog.String("url", u.String()))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, u, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: reading response body: %w", method, u, err)
	}

	c.logger.Debug("http response",
		slog.String("method", method), slog.String("url", u.String()),
		slog.Int("status", resp.StatusCode), slog.Int("bytes", len(data)))

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Headers:    resp.Header,
		body:       data,
	}, nil
}

func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case []byte:
		return bytes.NewReader(b), "", nil
	case io.Reader:
		return b, "", nil
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("encoding request body: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	}
}
