package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/nao1215/doku2md/internal/config"
)

// Client performs GET requests against the wiki.
// It is not safe for concurrent use; the scrape is sequential.
type Client struct {
	// client is the underlying HTTP client.
	client *http.Client

	// limiter spaces requests by the configured delay.
	limiter *rate.Limiter

	// userAgent is the User-Agent header to use.
	userAgent string

	// cookie is sent as the Cookie header when set.
	cookie string

	// headers are extra request headers.
	headers map[string]string

	// maxBodySize is the largest response body accepted.
	maxBodySize int64

	logger *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithRequestDelay sets the minimum interval between two requests.
// Zero disables the limiter.
func WithRequestDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.limiter = newLimiter(d)
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithCookie sets the Cookie header sent with every request.
func WithCookie(cookie string) ClientOption {
	return func(c *Client) {
		c.cookie = cookie
	}
}

// WithHeaders sets extra request headers.
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		c.headers = headers
	}
}

// WithMaxBodySize sets the maximum response body size. Larger responses
// fail with ErrBodyTooLarge.
func WithMaxBodySize(size int64) ClientOption {
	return func(c *Client) {
		c.maxBodySize = size
	}
}

// WithLogger sets the logger used for visited URLs.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client around httpClient.
func NewClient(httpClient *http.Client, opts ...ClientOption) *Client {
	c := &Client{
		client:      httpClient,
		limiter:     newLimiter(config.DefaultRequestDelay),
		userAgent:   config.DefaultUserAgent,
		maxBodySize: config.DefaultMaxBodySize,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// NewClientFromConfig creates a Client with the timeout, delay and request
// decoration from cfg.
func NewClientFromConfig(cfg *config.Config, logger *slog.Logger) *Client {
	return NewClient(
		&http.Client{Timeout: cfg.Timeout},
		WithRequestDelay(cfg.RequestDelay),
		WithUserAgent(cfg.UserAgent),
		WithCookie(cfg.Cookie),
		WithHeaders(cfg.Headers),
		WithMaxBodySize(cfg.MaxBodySize),
		WithLogger(logger),
	)
}

// Get fetches pageURL and returns its body.
// Any failure, including a non-2xx status, is returned as a *FetchError.
func (c *Client) Get(ctx context.Context, pageURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}

	c.logger.Info("visiting", "url", pageURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: pageURL, Err: fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	if int64(len(body)) > c.maxBodySize {
		return nil, &FetchError{URL: pageURL, Err: fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, c.maxBodySize)}
	}

	c.logger.Debug("fetched", "url", pageURL, "status", resp.StatusCode, "bytes", len(body))
	return body, nil
}

func newLimiter(d time.Duration) *rate.Limiter {
	if d <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(d), 1)
}
