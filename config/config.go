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

package config

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/poiesic/kindred"
	"github.com/poiesic/kindred/align"
	"github.com/poiesic/kindred/suggest"
	"github.com/poiesic/kindred/upstream"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

// APIKeyEnv names the environment variable consulted when no api_key is set.
const APIKeyEnv = "KINDRED_API_KEY"

// Backend values.
const (
	BackendLocal    = "local"
	BackendUpstream = "upstream"
)

type Store struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

type Upstream struct {
	Host              string        `yaml:"host"`
	ContentHost       string        `yaml:"content_host"`
	SearchHost        string        `yaml:"search_host"`
	ConcordanceHost   string        `yaml:"concordance_host"`
	APIKey            string        `yaml:"api_key"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	MaxRetries        int           `yaml:"max_retries"`
	RetryDelay        time.Duration `yaml:"retry_delay"`
	CacheCapacity     int           `yaml:"cache_capacity"`
}

type Suggest struct {
	Concurrency     int           `yaml:"concurrency"`
	TaskTimeout     time.Duration `yaml:"task_timeout"`
	DefaultExemplar string        `yaml:"default_exemplar"`
	Ranking         string        `yaml:"ranking"`
	URLTemplate     string        `yaml:"url_template"`
	PageSize        int           `yaml:"page_size"`
	MaxDepth        int           `yaml:"max_depth"`
	Threshold       float64       `yaml:"threshold"`
	CacheCapacity   int           `yaml:"cache_capacity"`
}

type Align struct {
	DefaultTerm string `yaml:"default_term"`
	SortBy      string `yaml:"sort_by"`
	Source      string `yaml:"source"`
	PageSize    int    `yaml:"page_size"`
	MaxDepth    int    `yaml:"max_depth"`
}

type Server struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	StatsHistory   int      `yaml:"stats_history"`
}

type Config struct {
	Store    Store    `yaml:"store"`
	Upstream Upstream `yaml:"upstream"`
	Suggest  Suggest  `yaml:"suggest"`
	Align    Align    `yaml:"align"`
	Server   Server   `yaml:"server"`
}

// DefaultConfigPath is where the CLI looks for a config file when none is named.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "kindred", "config.yaml")
}

// DefaultDataPath is a suggested location for a local article database.
func DefaultDataPath() string {
	return filepath.Join(xdg.DataHome, "kindred", "articles")
}

// Default returns the embedded defaults.
func Default() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads path over the embedded defaults. A missing file at the default
// path yields the defaults; a missing file anywhere else is an error.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if cfg.Upstream.APIKey == "" {
		cfg.Upstream.APIKey = os.Getenv(APIKeyEnv)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that cannot be checked by the components themselves
// until they are built.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendLocal, BackendUpstream:
	default:
		return fmt.Errorf("store: unknown backend %q (valid: %s, %s)", c.Store.Backend, BackendLocal, BackendUpstream)
	}
	if _, err := suggest.ParseRanking(c.Suggest.Ranking); err != nil {
		return fmt.Errorf("suggest: %w", err)
	}
	if c.Suggest.URLTemplate != "" && strings.Count(c.Suggest.URLTemplate, "%s") != 1 {
		return fmt.Errorf("suggest: url_template must contain exactly one %%s, got %q", c.Suggest.URLTemplate)
	}
	if c.Suggest.Threshold < 0 {
		return fmt.Errorf("suggest: threshold cannot be negative, got %v", c.Suggest.Threshold)
	}
	if _, err := align.ParseSortBy(c.Align.SortBy); err != nil {
		return fmt.Errorf("align: %w", err)
	}
	if _, err := align.ParseSource(c.Align.Source); err != nil {
		return fmt.Errorf("align: %w", err)
	}
	if c.Server.StatsHistory < 0 {
		return fmt.Errorf("server: stats_history cannot be negative, got %d", c.Server.StatsHistory)
	}
	return nil
}

// UpstreamConfig maps the upstream section onto an upstream.Config.
func (c *Config) UpstreamConfig() *upstream.Config {
	u := c.Upstream
	opts := []upstream.ConfigOption{
		upstream.WithAPIKey(u.APIKey),
		upstream.WithTimeout(u.Timeout),
		upstream.WithRequestsPerSecond(u.RequestsPerSecond),
		upstream.WithBurst(u.Burst),
		upstream.WithMaxRetries(u.MaxRetries),
		upstream.WithRetryDelay(u.RetryDelay),
		upstream.WithCacheCapacity(u.CacheCapacity),
	}
	if u.Host != "" {
		opts = append(opts, upstream.WithHost(u.Host))
	}
	if u.ContentHost != "" {
		opts = append(opts, upstream.WithContentHost(u.ContentHost))
	}
	if u.SearchHost != "" {
		opts = append(opts, upstream.WithSearchHost(u.SearchHost))
	}
	if u.ConcordanceHost != "" {
		opts = append(opts, upstream.WithConcordanceHost(u.ConcordanceHost))
	}
	return upstream.NewConfig(opts...)
}

// SuggestOptions maps the suggest section onto suggester options.
func (c *Config) SuggestOptions() ([]suggest.Option, error) {
	s := c.Suggest
	ranking, err := suggest.ParseRanking(s.Ranking)
	if err != nil {
		return nil, err
	}
	opts := []suggest.Option{
		suggest.WithConcurrency(s.Concurrency),
		suggest.WithTaskTimeout(s.TaskTimeout),
		suggest.WithRanking(ranking),
		suggest.WithPageSize(s.PageSize),
		suggest.WithMaxDepth(s.MaxDepth),
	}
	if s.DefaultExemplar != "" {
		opts = append(opts, suggest.WithDefaultExemplar(s.DefaultExemplar))
	}
	if s.URLTemplate != "" {
		opts = append(opts, suggest.WithURLTemplate(s.URLTemplate))
	}
	return opts, nil
}

// AlignOptions maps the align section onto aligner options. The suggest
// section's url_template is shared so both link to the same place.
func (c *Config) AlignOptions() ([]align.Option, error) {
	a := c.Align
	sortBy, err := align.ParseSortBy(a.SortBy)
	if err != nil {
		return nil, err
	}
	source, err := align.ParseSource(a.Source)
	if err != nil {
		return nil, err
	}
	opts := []align.Option{
		align.WithSortBy(sortBy),
		align.WithSource(source),
		align.WithPageSize(a.PageSize),
		align.WithMaxDepth(a.MaxDepth),
	}
	if a.DefaultTerm != "" {
		opts = append(opts, align.WithDefaultTerm(a.DefaultTerm))
	}
	if c.Suggest.URLTemplate != "" {
		opts = append(opts, align.WithURLTemplate(c.Suggest.URLTemplate))
	}
	return opts, nil
}

// EngineOptions maps the whole file onto kindred.Open options.
func (c *Config) EngineOptions() ([]kindred.Option, error) {
	suggestOpts, err := c.SuggestOptions()
	if err != nil {
		return nil, err
	}
	alignOpts, err := c.AlignOptions()
	if err != nil {
		return nil, err
	}
	opts := []kindred.Option{
		kindred.WithThreshold(c.Suggest.Threshold),
		kindred.WithCacheCapacity(c.Suggest.CacheCapacity),
		kindred.WithSuggestOptions(suggestOpts...),
		kindred.WithAlignOptions(alignOpts...),
	}
	switch c.Store.Backend {
	case BackendUpstream:
		opts = append(opts, kindred.WithUpstream(c.UpstreamConfig()))
	default:
		opts = append(opts, kindred.WithLocalStore(c.Store.Path))
	}
	return opts, nil
}
