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


package storage

import (
	"context"

	"github.com/poiesic/kindred/core"
)

// ContentStore provides read access to articles.
type ContentStore interface {
	// GetArticle retrieves a full article by id.
	// Returns an error matching core.ErrNotFound if the id is unknown and
	// core.ErrUpstreamUnavailable if the store could not be reached.
	GetArticle(ctx context.Context, id string) (*core.Article, error)

	// Search returns one page of articles annotated with any of
	// query.AnnotationIDs and published inside query.Window, newest first.
	// An empty id list matches every annotation and a zero window every
	// date. A non-blank query.Term must appear in the title, or also in the
	// body unless query.TitleOnly is set.
	Search(ctx context.Context, query core.SearchQuery) (*core.SearchPage, error)
}

// IdentifierTranslator maps an annotation id to the ids a ContentStore's
// search understands. Zero ids is a valid answer.
type IdentifierTranslator interface {
	TranslateToLegacyIDs(ctx context.Context, annotationID string) ([]string, error)
}

// ArticleRepository is a ContentStore that can be written to.
type ArticleRepository interface {
	ContentStore

	// AddArticles stores articles, replacing any with the same id.
	// Every article is validated with core.ValidateArticle first.
	AddArticles(ctx context.Context, articles ...*core.Article) error

	// DeleteArticles removes articles and their indices.
	// Returns ErrNotFound if any article doesn't exist.
	DeleteArticles(ctx context.Context, ids ...string) error

	// CountArticles returns how many articles are stored.
	CountArticles(ctx context.Context) (int, error)

	// Clear removes every article.
	Clear(ctx context.Context) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// IdentityTranslator is the IdentifierTranslator for stores that index
// annotation ids directly.
type IdentityTranslator struct{}

var _ IdentifierTranslator = IdentityTranslator{}

// TranslateToLegacyIDs returns annotationID unchanged.
func (IdentityTranslator) TranslateToLegacyIDs(_ context.Context, annotationID string) ([]string, error) {
	if annotationID == "" {
		return nil, nil
	}
	return []string{annotationID}, nil
}
