package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/metascrape/pkg/common"
)

const (
	dataPath   = "/api/data/"
	submitPath = "/api/submit/"

	// DefaultBaseURL is where the scrape service listens in development
	DefaultBaseURL = "http://localhost:8000"
)

// Client talks to the scrape service. It does not cache and never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	logger     *log.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds every request. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.httpClient
			hc.Timeout = d
			c.httpClient = &hc
		}
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithUserAgent sets the User-Agent header sent with each request
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a client for the service rooted at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: need http(s)://host", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		userAgent:  "metascrape/1.0",
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the service root the client was built with
func (c *Client) BaseURL() string {
	return c.baseURL
}

// List fetches every item the service has scraped so far
func (c *Client) List(ctx context.Context) ([]common.ScrapedItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+dataPath, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", common.ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		drain(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d", common.ErrTransport, resp.StatusCode)
	}

	var items []common.ScrapedItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", common.ErrTransport, err)
	}

	c.logger.Debug("Fetched scraped data", "count", len(items))
	return items, nil
}

// Submit sends rawURL to the service, which scrapes it server side.
// 201 maps to StatusCreated and 200 to StatusAlreadyExists; anything else is ErrSubmit.
func (c *Client) Submit(ctx context.Context, rawURL string) (common.SubmitStatus, error) {
	if strings.TrimSpace(rawURL) == "" {
		return 0, common.ErrEmptyInput
	}

	body, err := json.Marshal(common.SubmitRequest{URL: rawURL})
	if err != nil {
		return 0, fmt.Errorf("%w: marshal request body: %v", common.ErrSubmit, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+submitPath, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("%w: create request: %v", common.ErrSubmit, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrSubmit, err)
	}
	defer resp.Body.Close()
	drain(resp.Body)

	switch resp.StatusCode {
	case http.StatusCreated:
		c.logger.Debug("Submitted URL", "url", rawURL, "status", common.StatusCreated)
		return common.StatusCreated, nil
	case http.StatusOK:
		c.logger.Debug("Submitted URL", "url", rawURL, "status", common.StatusAlreadyExists)
		return common.StatusAlreadyExists, nil
	default:
		return 0, fmt.Errorf("%w: unexpected status code %d", common.ErrSubmit, resp.StatusCode)
	}
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("Request failed", "method", req.Method, "url", req.URL.String(), "error", err)
		return nil, err
	}
	c.logger.Debug("Request done",
		"method", req.Method,
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return resp, nil
}

// drain reads what is left of the body so the connection can be reused
func drain(r io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, 64<<10))
}
