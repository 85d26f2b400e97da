package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gofinances/internal/core"
)

const (
	// TransactionsPath is the resource the dashboard reads.
	TransactionsPath = "transactions"

	defaultTimeout  = 7 * time.Second
	maxBodyBytes    = 4 << 20
	maxErrBodyBytes = 512
)

// Client reads the transactions resource over HTTP. The base URL is fixed at
// construction and never modified.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient validates baseURL and returns a client bound to it.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url scheme %q: must be http or https", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url %q has no host", baseURL)
	}
	// Resolve resources relative to the base path.
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{},
		timeout:    defaultTimeout,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns a copy of the configured base address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) resource(name string) string {
	return c.baseURL.ResolveReference(&url.URL{Path: name}).String()
}

// Transactions implements TransactionsReader with a single GET.
func (c *Client) Transactions(ctx context.Context) (core.Response, error) {
	var resp core.Response

	body, err := c.get(ctx, TransactionsPath)
	if err != nil {
		return resp, err
	}

	var envelope struct {
		Transactions *[]core.RawTransaction `json:"transactions"`
		Balance      *core.Balance          `json:"balance"`
	}
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&envelope); err != nil {
		return resp, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if envelope.Transactions == nil {
		return resp, fmt.Errorf("%w: missing transactions", ErrMalformed)
	}
	if envelope.Balance == nil {
		return resp, fmt.Errorf("%w: %v", ErrMalformed, core.ErrMissingBalance)
	}
	resp.Transactions = *envelope.Transactions
	resp.Balance = *envelope.Balance
	if err := resp.Validate(); err != nil {
		return core.Response{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	c.logger.DebugContext(ctx, "Fetched transactions",
		"count", len(resp.Transactions),
		"income", resp.Balance.Income,
		"outcome", resp.Balance.Outcome,
		"total", resp.Balance.Total)
	return resp, nil
}

// Ping checks that the transactions resource answers with a 2xx status.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.get(ctx, TransactionsPath)
	return err
}

func (c *Client) get(ctx context.Context, name string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.resource(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		// Cancellation by the caller is not an upstream outage.
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: GET %s: %v", ErrUnavailable, target, err)
	}
	defer res.Body.Close()

	c.logger.DebugContext(ctx, "Transactions service responded",
		"url", target,
		"status_code", res.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if res.StatusCode < 200 || res.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, maxErrBodyBytes))
		return nil, &StatusError{StatusCode: res.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrMalformed, maxBodyBytes)
	}
	return body, nil
}
