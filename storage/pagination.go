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
	"fmt"

	"github.com/poiesic/kindred/core"
)

// DefaultPageSize is the number of summaries requested per search page.
const DefaultPageSize = 100

// DefaultMaxDepth is the number of pages SearchAll fetches at most.
const DefaultMaxDepth = 4

// SearchDeeper fetches consecutive pages starting at query.Offset until the
// reported total is reached, a page comes back empty, or maxDepth pages have
// been read. The offset advances by what each page consumed from the index,
// so results a store dropped are not fetched again.
//
// The returned page carries every item and the total reported by the first
// page. If a page fails, the page gathered so far is returned together with
// the error.
func SearchDeeper(ctx context.Context, store ContentStore, query core.SearchQuery, maxDepth int) (*core.SearchPage, error) {
	if maxDepth < 1 {
		return nil, fmt.Errorf("%w: max depth %d", ErrInvalidQuery, maxDepth)
	}
	if query.PageSize < 1 {
		query.PageSize = DefaultPageSize
	}

	all := &core.SearchPage{}
	for depth := 0; depth < maxDepth; depth++ {
		page, err := store.Search(ctx, query)
		if err != nil {
			return all, fmt.Errorf("search page at offset %d: %w", query.Offset, err)
		}
		if page == nil {
			break
		}
		if depth == 0 {
			all.Total = page.Total
		}
		advance := page.Advance()
		if advance == 0 {
			break
		}
		all.Items = append(all.Items, page.Items...)
		all.Consumed += advance
		query.Offset += advance
		if query.Offset >= page.Total {
			break
		}
	}
	return all, nil
}

// SearchAll is SearchDeeper returning only the summaries.
func SearchAll(ctx context.Context, store ContentStore, query core.SearchQuery, maxDepth int) ([]core.ArticleSummary, error) {
	page, err := SearchDeeper(ctx, store, query, maxDepth)
	if page == nil {
		return nil, err
	}
	return page.Items, err
}
