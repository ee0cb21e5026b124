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


package signature

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/poiesic/kindred/cache"
	"github.com/poiesic/kindred/core"
)

// defaultFetchLimit bounds concurrent article fetches inside BuildMany.
const defaultFetchLimit = 4

var (
	// ErrFetcherRequired is returned when a Builder is created without an ArticleFetcher.
	ErrFetcherRequired = errors.New("article fetcher required")

	// ErrNoIDs is returned by BuildMany when given no ids.
	ErrNoIDs = errors.New("at least one article id required")
)

// ArticleFetcher retrieves full articles by id.
type ArticleFetcher interface {
	GetArticle(ctx context.Context, id string) (*core.Article, error)
}

// Builder builds and memoizes signatures.
type Builder struct {
	fetcher            ArticleFetcher
	cache              cache.Cache[*Signature]
	ownsCache          bool
	group              singleflight.Group
	fetchLimit         int
	ignoredPredicates  map[string]struct{}
	ignoredAnnotations map[string]struct{}
	logger             *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder) error

// WithCache sets the signature cache.
// Default is a bounded cache of cache.DefaultCapacity entries owned by the Builder.
func WithCache(c cache.Cache[*Signature]) Option {
	return func(b *Builder) error {
		if c == nil {
			return cache.ErrCacheRequired
		}
		b.cache = c
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// WithIgnoredPredicates replaces the predicate denylist.
func WithIgnoredPredicates(predicates ...string) Option {
	return func(b *Builder) error {
		b.ignoredPredicates = toSet(predicates)
		return nil
	}
}

// WithIgnoredAnnotations replaces the annotation id denylist.
func WithIgnoredAnnotations(ids ...string) Option {
	return func(b *Builder) error {
		b.ignoredAnnotations = toSet(ids)
		return nil
	}
}

// WithFetchLimit bounds how many articles BuildMany fetches at once.
// Default is 4.
func WithFetchLimit(n int) Option {
	return func(b *Builder) error {
		if n < 1 {
			return fmt.Errorf("fetch limit must be at least 1, got %d", n)
		}
		b.fetchLimit = n
		return nil
	}
}

// NewBuilder creates a Builder that fetches articles through fetcher.
func NewBuilder(fetcher ArticleFetcher, opts ...Option) (*Builder, error) {
	if fetcher == nil {
		return nil, ErrFetcherRequired
	}

	b := &Builder{
		fetcher:            fetcher,
		fetchLimit:         defaultFetchLimit,
		ignoredPredicates:  toSet(DefaultIgnoredPredicates),
		ignoredAnnotations: toSet(DefaultIgnoredAnnotations),
		logger:             slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}

	if b.cache == nil {
		c, err := cache.NewBounded[*Signature](cache.DefaultCapacity)
		if err != nil {
			return nil, err
		}
		b.cache = c
		b.ownsCache = true
	}

	return b, nil
}

// Close releases the cache if the Builder created it.
func (b *Builder) Close() {
	if b.ownsCache {
		b.cache.Close()
	}
}

// Build returns the signature of one article.
//
// A cached signature is returned without touching the fetcher. Concurrent
// builds of the same id share one fetch. When the article cannot be fetched,
// Build returns an Empty signature together with an error matching
// core.ErrNotFound or core.ErrUpstreamUnavailable. Empty signatures are never
// cached.
func (b *Builder) Build(ctx context.Context, id string) (*Signature, error) {
	if id == "" {
		return Empty(id), core.ErrEmptyID
	}
	if sig, ok := b.cache.Read(id); ok {
		return sig, nil
	}

	sig, err := b.shared(ctx, id, func(ctx context.Context) (*Signature, error) {
		if sig, ok := b.cache.Read(id); ok {
			return sig, nil
		}
		article, err := b.fetcher.GetArticle(ctx, id)
		if err != nil {
			return nil, classify(err)
		}
		if article == nil {
			return nil, core.ErrNotFound
		}
		sig := b.FromArticle(article)
		b.cache.Write(id, sig)
		return sig, nil
	})
	if err != nil {
		b.logger.Warn("could not build signature", "id", id, "err", err)
		return Empty(id), fmt.Errorf("building signature for %s: %w", id, err)
	}
	return sig, nil
}

// BuildMany returns the merged signature of ids, or the leaf signature when
// there is only one. Merges are memoized under Key(ids), so reordering ids
// hits the same entry. Any leaf failure fails the whole merge.
func (b *Builder) BuildMany(ctx context.Context, ids []string) (*Signature, error) {
	switch len(ids) {
	case 0:
		return Empty(""), ErrNoIDs
	case 1:
		return b.Build(ctx, ids[0])
	}

	key := Key(ids)
	if sig, ok := b.cache.Read(key); ok {
		return sig, nil
	}

	sig, err := b.shared(ctx, key, func(ctx context.Context) (*Signature, error) {
		if sig, ok := b.cache.Read(key); ok {
			return sig, nil
		}

		leaves := make([]*Signature, len(ids))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(b.fetchLimit)
		for i, id := range ids {
			g.Go(func() error {
				sig, err := b.Build(gctx, id)
				if err != nil {
					return err
				}
				leaves[i] = sig
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		merged := Merge(leaves...)
		b.cache.Write(key, merged)
		return merged, nil
	})
	if err != nil {
		return Empty(key), err
	}
	return sig, nil
}

// shared runs build once per key across concurrent callers. The build runs
// detached from any one caller's cancellation, so a caller that gives up
// returns its own ctx error while the others keep waiting for the result.
func (b *Builder) shared(ctx context.Context, key string, build func(context.Context) (*Signature, error)) (*Signature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ch := b.group.DoChan(key, func() (any, error) {
		return build(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Signature), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// FromArticle builds a leaf signature from an already fetched article.
// The result is not cached.
func (b *Builder) FromArticle(article *core.Article) *Signature {
	byPredicate := map[string]map[string]string{}
	byID := map[string]core.Annotation{}

	for _, a := range article.Annotations {
		if b.ignored(a) {
			continue
		}
		ids, ok := byPredicate[a.Predicate]
		if !ok {
			ids = map[string]string{}
			byPredicate[a.Predicate] = ids
		}
		ids[a.ID] = a.Label()
		byID[a.ID] = a
	}

	return &Signature{
		Key: article.ID,
		Origin: &Source{
			ID:        article.ID,
			Title:     article.Title,
			Published: core.DateRange{}.Include(article.Published),
		},
		ByPredicate: byPredicate,
		ByID:        byID,
		Words:       ComputeWordStats(article.BodyXML),
		Score:       Score{Amount: 1.0, Description: LeafDescription},
	}
}

func (b *Builder) ignored(a core.Annotation) bool {
	if _, ok := b.ignoredPredicates[a.Predicate]; ok {
		return true
	}
	_, ok := b.ignoredAnnotations[a.ID]
	return ok
}

// classify makes sure a fetch error carries one of the taxonomy sentinels.
func classify(err error) error {
	if errors.Is(err, core.ErrNotFound) || errors.Is(err, core.ErrUpstreamUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", core.ErrUpstreamUnavailable, err)
}
