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
	"errors"
	"strings"
	"time"

	"github.com/poiesic/kindred/cache"
)

// Config holds configuration for the remote content APIs.
type Config struct {
	// ContentHost is the base URL of the enriched content API.
	// Example: "http://api.ft.com"
	ContentHost string

	// SearchHost is the base URL of the search API.
	SearchHost string

	// ConcordanceHost is the base URL of the concordance API.
	ConcordanceHost string

	// APIKey is sent with every request as the apiKey query parameter.
	APIKey string

	// Timeout bounds a single HTTP request.
	// Default: 10s
	Timeout time.Duration

	// RequestsPerSecond is the sustained request rate across all endpoints.
	// Default: 10
	RequestsPerSecond float64

	// Burst is how many requests may be issued at once above the sustained rate.
	// Default: 4
	Burst int

	// MaxRetries is how many times a failed request is retried.
	// Default: 2
	MaxRetries int

	// RetryDelay is the delay before the first retry; it doubles each time.
	// Default: 200ms
	RetryDelay time.Duration

	// CacheCapacity bounds each of the article, search and translation caches.
	// Default: cache.DefaultCapacity
	CacheCapacity int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithContentHost sets the enriched content host URL.
func WithContentHost(host string) ConfigOption {
	return func(c *Config) {
		c.ContentHost = host
	}
}

// WithSearchHost sets the search host URL.
func WithSearchHost(host string) ConfigOption {
	return func(c *Config) {
		c.SearchHost = host
	}
}

// WithConcordanceHost sets the concordance host URL.
func WithConcordanceHost(host string) ConfigOption {
	return func(c *Config) {
		c.ConcordanceHost = host
	}
}

// WithHost sets the content, search and concordance hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.ContentHost = host
		c.SearchHost = host
		c.ConcordanceHost = host
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithRequestsPerSecond sets the sustained request rate.
func WithRequestsPerSecond(rps float64) ConfigOption {
	return func(c *Config) {
		c.RequestsPerSecond = rps
	}
}

// WithBurst sets the limiter burst size.
func WithBurst(burst int) ConfigOption {
	return func(c *Config) {
		c.Burst = burst
	}
}

// WithMaxRetries sets how many times a failed request is retried.
func WithMaxRetries(n int) ConfigOption {
	return func(c *Config) {
		c.MaxRetries = n
	}
}

// WithRetryDelay sets the base retry delay.
func WithRetryDelay(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.RetryDelay = d
	}
}

// WithCacheCapacity sets the capacity of each response cache.
func WithCacheCapacity(n int) ConfigOption {
	return func(c *Config) {
		c.CacheCapacity = n
	}
}

// DefaultConfig returns a Config pointing at the public FT API.
// APIKey is left empty and must be supplied.
func DefaultConfig() *Config {
	defaultHost := "http://api.ft.com"
	return &Config{
		ContentHost:       defaultHost,
		SearchHost:        defaultHost,
		ConcordanceHost:   defaultHost,
		Timeout:           10 * time.Second,
		RequestsPerSecond: 10,
		Burst:             4,
		MaxRetries:        2,
		RetryDelay:        200 * time.Millisecond,
		CacheCapacity:     cache.DefaultCapacity,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize strips trailing slashes from the hosts.
func (c *Config) Normalize() {
	c.ContentHost = strings.TrimRight(c.ContentHost, "/")
	c.SearchHost = strings.TrimRight(c.SearchHost, "/")
	c.ConcordanceHost = strings.TrimRight(c.ConcordanceHost, "/")
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.ContentHost == "" {
		return errors.New("upstream config: ContentHost is required")
	}
	if c.SearchHost == "" {
		return errors.New("upstream config: SearchHost is required")
	}
	if c.ConcordanceHost == "" {
		return errors.New("upstream config: ConcordanceHost is required")
	}
	if c.APIKey == "" {
		return errors.New("upstream config: APIKey is required")
	}
	if c.Timeout <= 0 {
		return errors.New("upstream config: Timeout must be positive")
	}
	if c.RequestsPerSecond <= 0 {
		return errors.New("upstream config: RequestsPerSecond must be positive")
	}
	if c.Burst < 1 {
		return errors.New("upstream config: Burst must be at least 1")
	}
	if c.MaxRetries < 0 {
		return errors.New("upstream config: MaxRetries cannot be negative")
	}
	if c.RetryDelay < 0 {
		return errors.New("upstream config: RetryDelay cannot be negative")
	}
	if c.CacheCapacity < 1 {
		return errors.New("upstream config: CacheCapacity must be at least 1")
	}
	return nil
}
