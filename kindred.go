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

package kindred

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/kindred/core"
	"github.com/poiesic/kindred/align"
	"github.com/poiesic/kindred/cache"
	"github.com/poiesic/kindred/signature"
	"github.com/poiesic/kindred/storage"
	"github.com/poiesic/kindred/storage/badger"
	"github.com/poiesic/kindred/suggest"
	"github.com/poiesic/kindred/tabulate"
	"github.com/poiesic/kindred/upstream"
)

// ErrConflictingStores is returned when both a local and a remote store are configured.
var ErrConflictingStores = errors.New("choose either a local store or an upstream config, not both")

// Engine answers suggestion and term alignment requests.
type Engine struct {
	repo       storage.ArticleRepository
	client     *upstream.Client
	signatures *cache.Bounded[*signature.Signature]
	builder    *signature.Builder
	suggester  *suggest.Suggester
	aligner    *align.Aligner
	threshold  float64
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	localPath     string
	upstream      *upstream.Config
	cacheCapacity int
	threshold     float64
	builderOpts   []signature.Option
	suggestOpts   []suggest.Option
	alignOpts     []align.Option
	logger        *slog.Logger
}

// WithLocalStore keeps articles in a badger database at path.
// An empty path keeps them in memory, which is the default.
func WithLocalStore(path string) Option {
	return func(o *options) {
		o.localPath = path
	}
}

// WithUpstream reads articles from the remote content APIs.
func WithUpstream(cfg *upstream.Config) Option {
	return func(o *options) {
		o.upstream = cfg
	}
}

// WithCacheCapacity bounds the signature cache.
// Default is cache.DefaultCapacity.
func WithCacheCapacity(n int) Option {
	return func(o *options) {
		o.cacheCapacity = n
	}
}

// WithThreshold sets the default tabulation threshold.
// Default is tabulate.DefaultThreshold.
func WithThreshold(threshold float64) Option {
	return func(o *options) {
		o.threshold = threshold
	}
}

// WithSignatureOptions passes options through to the signature builder.
func WithSignatureOptions(opts ...signature.Option) Option {
	return func(o *options) {
		o.builderOpts = append(o.builderOpts, opts...)
	}
}

// WithSuggestOptions passes options through to the suggester.
func WithSuggestOptions(opts ...suggest.Option) Option {
	return func(o *options) {
		o.suggestOpts = append(o.suggestOpts, opts...)
	}
}

// WithAlignOptions passes options through to the aligner.
func WithAlignOptions(opts ...align.Option) Option {
	return func(o *options) {
		o.alignOpts = append(o.alignOpts, opts...)
	}
}

// WithLogger sets a custom logger for every component.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Open creates an Engine.
func Open(opts ...Option) (*Engine, error) {
	o := &options{
		cacheCapacity: cache.DefaultCapacity,
		threshold:     tabulate.DefaultThreshold,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.upstream != nil && o.localPath != "" {
		return nil, ErrConflictingStores
	}

	e := &Engine{threshold: o.threshold, logger: o.logger}

	var (
		store      storage.ContentStore
		translator storage.IdentifierTranslator
	)
	if o.upstream != nil {
		client, err := upstream.NewClient(o.upstream, upstream.WithLogger(o.logger))
		if err != nil {
			return nil, err
		}
		e.client = client
		store, translator = client, client
	} else {
		repo, err := openRepository(o.localPath, o.logger)
		if err != nil {
			return nil, err
		}
		e.repo = repo
		store, translator = repo, storage.IdentityTranslator{}
	}

	signatures, err := cache.NewBounded[*signature.Signature](o.cacheCapacity)
	if err != nil {
		e.closeStore()
		return nil, err
	}
	e.signatures = signatures

	builderOpts := append([]signature.Option{
		signature.WithCache(signatures),
		signature.WithLogger(o.logger),
	}, o.builderOpts...)
	builder, err := signature.NewBuilder(store, builderOpts...)
	if err != nil {
		e.signatures.Close()
		e.closeStore()
		return nil, err
	}
	e.builder = builder

	suggestOpts := append([]suggest.Option{suggest.WithLogger(o.logger)}, o.suggestOpts...)
	suggester, err := suggest.NewSuggester(builder, store, translator, suggestOpts...)
	if err != nil {
		e.builder.Close()
		e.signatures.Close()
		e.closeStore()
		return nil, err
	}
	e.suggester = suggester

	alignOpts := append([]align.Option{align.WithLogger(o.logger)}, o.alignOpts...)
	aligner, err := align.NewAligner(store, alignOpts...)
	if err != nil {
		e.suggester.Close()
		e.builder.Close()
		e.signatures.Close()
		e.closeStore()
		return nil, err
	}
	e.aligner = aligner

	return e, nil
}

func openRepository(path string, logger *slog.Logger) (*badger.ArticleRepository, error) {
	if path == "" {
		return badger.NewMemoryRepository(badger.WithBackendLogger(logger))
	}
	return badger.NewRepository(path, badger.WithBackendLogger(logger))
}

// Suggest runs one suggestion request.
func (e *Engine) Suggest(ctx context.Context, req suggest.Request) (*suggest.Result, error) {
	return e.suggester.Suggest(ctx, req)
}

// SuggestTabulated runs one suggestion request and tabulates the result.
func (e *Engine) SuggestTabulated(ctx context.Context, req suggest.Request, threshold float64) (*suggest.Result, *tabulate.Table, error) {
	result, err := e.suggester.Suggest(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	table, err := tabulate.Tabulate(result, threshold)
	if err != nil {
		return nil, nil, err
	}
	return result, table, nil
}

// Align lines up the articles mentioning a term.
func (e *Engine) Align(ctx context.Context, req align.Request) (*align.Result, error) {
	return e.aligner.Align(ctx, req)
}

// SearchTerm returns one page of articles mentioning a term.
func (e *Engine) SearchTerm(ctx context.Context, req align.Request) (*core.SearchPage, error) {
	return e.aligner.Search(ctx, req)
}

// Threshold returns the default tabulation threshold.
func (e *Engine) Threshold() float64 {
	return e.threshold
}

// Articles returns the local repository, or nil when reading upstream.
func (e *Engine) Articles() storage.ArticleRepository {
	return e.repo
}

// Metrics returns the upstream request metrics, or nil for a local store.
func (e *Engine) Metrics() *upstream.Metrics {
	if e.client == nil {
		return nil
	}
	return e.client.Metrics()
}

// Close releases every component.
func (e *Engine) Close() error {
	e.suggester.Close()
	e.builder.Close()
	e.signatures.Close()
	return e.closeStore()
}

func (e *Engine) closeStore() error {
	if e.client != nil {
		if err := e.client.Close(); err != nil {
			e.logger.Error("error closing upstream client", "err", err)
			return err
		}
	}
	if e.repo != nil {
		if err := e.repo.Close(); err != nil {
			e.logger.Error("error closing article repository", "err", err)
			return err
		}
	}
	return nil
}
