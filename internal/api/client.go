// Package api is the HTTP client for the remote learning-platform backend.
//
// Every operation is a single request/response pair with no retries. The
// caller supplies the visitor's cookie jar so the backend session cookie is
// always sent and any cookie the backend sets is kept.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBaseURL is the production backend origin.
const DefaultBaseURL = "https://abotl-backend.vercel.app"

// Client talks to one backend origin.
type Client struct {
	baseURL       string
	transport     http.RoundTripper
	timeout       time.Duration
	uploadTimeout time.Duration
	log           zerolog.Logger
}

// Options configures a Client. Zero timeouts mean no client-side limit.
type Options struct {
	BaseURL       string
	Timeout       time.Duration
	UploadTimeout time.Duration
	Transport     http.RoundTripper
}

// NewClient creates a Client.
func NewClient(opts Options, log zerolog.Logger) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &Client{
		baseURL:       base,
		transport:     transport,
		timeout:       opts.Timeout,
		uploadTimeout: opts.UploadTimeout,
		log:           log.With().Str("component", "api_client").Logger(),
	}
}

// BaseURL returns the backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) httpClient(jar http.CookieJar, timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: c.transport,
		Jar:       jar,
		Timeout:   timeout,
	}
}

// request describes one call.
type request struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	upload      bool
}

func jsonRequest(method, path string, payload any) (request, error) {
	r := request{method: method, path: path}
	if payload == nil {
		return r, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return r, fmt.Errorf("encode request: %w", err)
	}
	r.body = bytes.NewReader(b)
	r.contentType = "application/json"
	return r, nil
}

// do sends the request and decodes a 2xx JSON body into out (when non-nil).
func (c *Client) do(ctx context.Context, jar http.CookieJar, r request, out any) error {
	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		if rc, ok := r.body.(io.Closer); ok {
			rc.Close()
		}
		return fmt.Errorf("build request: %w", err)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	req.Header.Set("Accept", "application/json")

	timeout := c.timeout
	if r.upload {
		timeout = c.uploadTimeout
	}

	start := time.Now()
	resp, err := c.httpClient(jar, timeout).Do(req)
	if err != nil {
		c.log.Warn().Err(err).
			Str("method", r.method).
			Str("path", r.path).
			Msg("Backend request failed")
		return fmt.Errorf("%s %s: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("method", r.method).
		Str("path", r.path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("Backend request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrMalformedResponse, r.method, r.path, err)
	}
	return nil
}
