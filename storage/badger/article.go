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


package badger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/kindred/core"
	"github.com/poiesic/kindred/signature"
	"github.com/poiesic/kindred/storage"
)

// ArticleRepository implements storage.ArticleRepository for BadgerDB.
// Annotation ids are indexed directly, so it pairs with storage.IdentityTranslator.
type ArticleRepository struct {
	backend     *Backend
	ownsBackend bool
}

var _ storage.ArticleRepository = (*ArticleRepository)(nil)

// NewArticleRepository creates a new ArticleRepository over an open backend.
// The caller keeps ownership of the backend.
func NewArticleRepository(backend *Backend) *ArticleRepository {
	return &ArticleRepository{backend: backend}
}

// NewRepository opens a BadgerDB database at path and returns a repository
// that owns it.
func NewRepository(path string, opts ...BackendOption) (*ArticleRepository, error) {
	backend, err := OpenBackend(path, false, opts...)
	if err != nil {
		return nil, err
	}
	repo := NewArticleRepository(backend)
	repo.ownsBackend = true
	return repo, nil
}

// Close closes the backend if the repository opened it.
func (r *ArticleRepository) Close() error {
	if r.ownsBackend && !r.backend.IsClosed() {
		return r.backend.Close()
	}
	return nil
}

// AddArticles stores articles, replacing any with the same id.
func (r *ArticleRepository) AddArticles(ctx context.Context, articles ...*core.Article) error {
	for _, article := range articles {
		if err := core.ValidateArticle(article); err != nil {
			return err
		}
	}
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, article := range articles {
			key := makeArticleKey(article.ID)

			old, err := readArticle(tx, key)
			if err != nil {
				return err
			}
			if old != nil {
				if err := deleteIndices(tx, old); err != nil {
					return err
				}
			}

			if err := tx.Set(key, storage.MarshalArticle(article)); err != nil {
				return err
			}
			if err := tx.Set(makeArticleDateKey(article.Published, article.ID), []byte(article.ID)); err != nil {
				return err
			}
			for _, a := range article.Annotations {
				annKey := makeArticleAnnotationKey(a.ID, article.Published, article.ID)
				if err := tx.Set(annKey, []byte(article.ID)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)
}

// DeleteArticles removes articles by id along with their indices.
func (r *ArticleRepository) DeleteArticles(ctx context.Context, ids ...string) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeArticleKey(id)

			article, err := readArticle(tx, key)
			if err != nil {
				return err
			}
			if article == nil {
				return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
			}
			if err := deleteIndices(tx, article); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetArticle retrieves a single article by id.
func (r *ArticleRepository) GetArticle(ctx context.Context, id string) (*core.Article, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	var result *core.Article
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readArticle(tx, makeArticleKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
		}
		return nil
	}, false)
	return result, err
}

// Clear removes every article together with its indices.
func (r *ArticleRepository) Clear(ctx context.Context) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return r.backend.dropPrefixes(articleRecordPrefix, articleDatePrefix, articleAnnotationPrefix)
}

// CountArticles returns the number of stored articles.
func (r *ArticleRepository) CountArticles(ctx context.Context) (int, error) {
	if r.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(articleRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// Search returns one page of articles carrying any of query.AnnotationIDs and
// published inside query.Window, bounds included. With no annotation ids every
// article in the window matches, and a zero window covers every date. A term
// narrows the matches to articles containing it as a whole word. Results are
// ordered newest first, then by id.
func (r *ArticleRepository) Search(ctx context.Context, query core.SearchQuery) (*core.SearchPage, error) {
	if query.Offset < 0 || query.PageSize < 0 {
		return nil, fmt.Errorf("%w: offset %d, page size %d", storage.ErrInvalidQuery, query.Offset, query.PageSize)
	}
	if query.Window.Latest.Before(query.Window.Earliest) {
		return nil, fmt.Errorf("%w: window ends before it starts", storage.ErrInvalidQuery)
	}
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	window := query.Window
	if window.IsZero() {
		window = allTime
	}
	matcher := storage.NewTermMatcher(query.Term, query.TitleOnly)

	var matches []core.ArticleSummary
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		ids := map[string]struct{}{}
		if len(query.AnnotationIDs) == 0 {
			start := makePartialArticleDateKey(window.Earliest)
			end := makePartialArticleDateKey(window.Latest)
			collectIndexRange(tx, start, end, ids)
		}
		for _, annotationID := range query.AnnotationIDs {
			start := makePartialArticleAnnotationKey(annotationID, window.Earliest)
			end := makePartialArticleAnnotationKey(annotationID, window.Latest)
			collectIndexRange(tx, start, end, ids)
		}

		for id := range ids {
			article, err := readArticle(tx, makeArticleKey(id))
			if err != nil {
				return err
			}
			if article == nil {
				continue
			}
			excerpt, ok := matcher.Match(article, signature.StripTags(article.BodyXML))
			if !ok {
				continue
			}
			summary := article.Summary()
			summary.Excerpt = excerpt
			matches = append(matches, summary)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(matches, func(a, b core.ArticleSummary) int {
		if c := b.Published.Compare(a.Published); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	page := &core.SearchPage{Total: len(matches)}
	if query.Offset >= len(matches) {
		return page, nil
	}
	end := len(matches)
	if query.PageSize > 0 {
		end = min(end, query.Offset+query.PageSize)
	}
	page.Items = matches[query.Offset:end]
	return page, nil
}

// collectIndexRange adds to ids the article id stored in every index key
// from start up to and including any key prefixed by end.
func collectIndexRange(tx *badger.Txn, start, end []byte, ids map[string]struct{}) {
	iter := tx.NewIterator(badger.IteratorOptions{PrefetchValues: false})
	defer iter.Close()

	for iter.Seek(start); iter.Valid(); iter.Next() {
		key := iter.Item().Key()
		if len(key) < len(end) || bytes.Compare(key[:len(end)], end) > 0 {
			break
		}
		ids[string(key[len(end):])] = struct{}{}
	}
}

// Helper functions

// readArticle reads an article from the transaction.
// Returns nil, nil when the key does not exist.
func readArticle(tx *badger.Txn, key []byte) (*core.Article, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var article *core.Article
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		article, unmarshalErr = storage.UnmarshalArticle(val)
		return unmarshalErr
	})
	return article, err
}

// deleteIndices removes the date and annotation index entries for an article.
func deleteIndices(tx *badger.Txn, article *core.Article) error {
	if err := tx.Delete(makeArticleDateKey(article.Published, article.ID)); err != nil {
		return err
	}
	for _, a := range article.Annotations {
		if err := tx.Delete(makeArticleAnnotationKey(a.ID, article.Published, article.ID)); err != nil {
			return err
		}
	}
	return nil
}
