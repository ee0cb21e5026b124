// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/poiesic/kindred/cache"
	"github.com/poiesic/kindred/core"
	"github.com/poiesic/kindred/storage"
)

// Client talks to the remote content, search and concordance APIs.
// It implements storage.ContentStore and storage.IdentifierTranslator.
type Client struct {
	cfg          *Config
	httpClient   *http.Client
	limiter      *rate.Limiter
	metrics      *Metrics
	articles     cache.Cache[*core.Article]
	searches     cache.Cache[*core.SearchPage]
	translations cache.Cache[[]string]
	logger       *slog.Logger
}

var (
	_ storage.ContentStore         = (*Client)(nil)
	_ storage.IdentifierTranslator = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client) error

// WithHTTPClient sets the HTTP client used for requests.
// Default is an http.Client with the configured Timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc != nil {
			c.httpClient = hc
		}
		return nil
	}
}

// WithMetrics sets the collector requests are timed into.
// Default is a collector owned by the Client.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) error {
		if m != nil {
			c.metrics = m
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger.With("component", "upstream")
		return nil
	}
}

// NewClient creates a Client. cfg is validated first.
func NewClient(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		metrics:    NewMetrics(),
		logger:     slog.Default().With("component", "upstream"),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	var err error
	if c.articles, err = cache.NewBounded[*core.Article](cfg.CacheCapacity); err != nil {
		return nil, err
	}
	if c.searches, err = cache.NewBounded[*core.SearchPage](cfg.CacheCapacity); err != nil {
		c.articles.Close()
		return nil, err
	}
	if c.translations, err = cache.NewBounded[[]string](cfg.CacheCapacity); err != nil {
		c.articles.Close()
		c.searches.Close()
		return nil, err
	}

	return c, nil
}

// Metrics returns the collector requests are timed into.
func (c *Client) Metrics() *Metrics {
	return c.metrics
}

// Close releases the response caches.
func (c *Client) Close() error {
	c.articles.Close()
	c.searches.Close()
	c.translations.Close()
	return nil
}

// endpoint joins host and path and adds the API key plus any extra query values.
func (c *Client) endpoint(host, path string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("apiKey", c.cfg.APIKey)
	return host + path + "?" + query.Encode()
}

// fetch performs one throttled, timed and retried request and returns the body.
// name identifies the endpoint in errors and logs; it never contains the key.
func (c *Client) fetch(ctx context.Context, method, name, target string, body []byte) ([]byte, error) {
	var payload []byte

	err := retryWithBackoff(ctx, c.logger, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, reader)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.metrics.Record(method, Timing{Duration: time.Since(start), StatusText: err.Error()})
			return fmt.Errorf("%w: %s %s: %w", core.ErrUpstreamUnavailable, method, name, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		ok := resp.StatusCode >= 200 && resp.StatusCode < 300
		c.metrics.Record(method, Timing{
			Duration:   time.Since(start),
			OK:         ok,
			Status:     resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
		})
		if !ok {
			return &StatusError{Method: method, Endpoint: name, StatusCode: resp.StatusCode, Status: resp.Status}
		}
		if err != nil {
			return fmt.Errorf("%w: reading %s: %w", core.ErrUpstreamUnavailable, name, err)
		}
		payload = data
		return nil
	}, c.cfg.MaxRetries+1, c.cfg.RetryDelay)

	if err != nil {
		c.logger.Debug("request failed", "method", method, "endpoint", name, "err", err)
		return nil, err
	}
	return payload, nil
}
