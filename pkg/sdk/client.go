package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxErrorBody caps how much of an error reply is read.
const maxErrorBody = 64 << 10

// Client talks to a regsearch server. It is safe for concurrent use.
type Client struct {
	baseURL   string
	http      *http.Client
	userAgent string
	obs       *observer
}

// New creates a client. It fails only when metrics registration fails.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{baseURL: DefaultBaseURL}
	for _, o := range opts {
		o.apply(cfg)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{}
	}
	if cfg.timeout > 0 {
		clone := *hc
		clone.Timeout = cfg.timeout
		hc = &clone
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	ua := cfg.userAgent
	if ua == "" {
		ua = "regsearch-go-sdk"
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.baseURL, "/"),
		http:      hc,
		userAgent: ua,
		obs:       obs,
	}, nil
}

// Search runs a search. A rejected query returns an *APIError with IsInvalidQuery true.
func (c *Client) Search(ctx context.Context, req SearchRequest) (res *SearchResponse, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	var out SearchResponse
	if err = c.do(ctx, http.MethodPost, "/v1/search", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Context assembles numbered passages for answer generation.
func (c *Client) Context(ctx context.Context, req ContextRequest) (res *ContextResponse, err error) {
	start := time.Now()
	defer func() { c.obs.observe("context", start, err) }()

	var out ContextResponse
	if err = c.do(ctx, http.MethodPost, "/v1/context", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health returns the server health report. A degraded server answers 503 with a
// report; that is returned together with an *APIError.
func (c *Client) Health(ctx context.Context) (res *HealthResponse, err error) {
	start := time.Now()
	defer func() { c.obs.observe("health", start, err) }()

	var out HealthResponse
	err = c.do(ctx, http.MethodGet, "/health", nil, &out)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable && out.Status != "" {
		return &out, err
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("regsearch: encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("regsearch: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("regsearch: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("regsearch: decode response: %w", err)
		}
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{StatusCode: resp.StatusCode}
	_ = json.Unmarshal(raw, apiErr)
	// health replies carry a report instead of an error body
	if resp.StatusCode == http.StatusServiceUnavailable {
		_ = json.Unmarshal(raw, out)
	}
	return apiErr
}
