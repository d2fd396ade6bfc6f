package httpstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"time"
)

// Client is a minimal JSON-over-HTTP client for record ingest endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	headers    http.Header
}

type Option func(*Client) error

func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		c.httpClient.Timeout = d
		return nil
	}
}

func WithHeaders(h http.Header) Option {
	return func(c *Client) error {
		for k, v := range h {
			c.headers[k] = append(c.headers[k], v...)
		}
		return nil
	}
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("base URL is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	c := &Client{
		httpClient: &http.Client{},
		baseURL:    parsed,
		headers:    make(http.Header),
	}

	c.headers.Set("Content-Type", "application/json")
	c.headers.Set("Accept", "application/json")

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Post sends `in` as a JSON body to path and fails on any non-2xx status.
func (c *Client) Post(ctx context.Context, path string, in any) error {
	rel, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}
	fullURL := c.baseURL.ResolveReference(rel)

	b, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL.String(), bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	maps.Copy(req.Header, c.headers)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		const errBodySize = 1 << 10
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, errBodySize))
		return fmt.Errorf("http %d: %s", resp.StatusCode, payload)
	}

	return nil
}
