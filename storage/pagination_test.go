package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/kindred/core"
)

// pagedStore serves total summaries in pages and can fail at a given call.
type pagedStore struct {
	total   int
	failAt  int // 1-based call number, 0 never fails
	queries []core.SearchQuery
	// dropped indices are counted as consumed but left out of Items.
	dropped map[int]bool
}

func (p *pagedStore) GetArticle(ctx context.Context, id string) (*core.Article, error) {
	return nil, core.ErrNotFound
}

func (p *pagedStore) Search(ctx context.Context, q core.SearchQuery) (*core.SearchPage, error) {
	p.queries = append(p.queries, q)
	if p.failAt == len(p.queries) {
		return nil, errors.New("boom")
	}
	page := &core.SearchPage{Total: p.total}
	for i := q.Offset; i < q.Offset+q.PageSize && i < p.total; i++ {
		page.Consumed++
		if p.dropped[i] {
			continue
		}
		page.Items = append(page.Items, core.ArticleSummary{ID: fmt.Sprintf("a%03d", i)})
	}
	return page, nil
}

func TestSearchAll(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		pageSize  int
		maxDepth  int
		wantItems int
		wantCalls int
	}{
		{"single partial page", 7, 10, 4, 7, 1},
		{"exact pages", 20, 10, 4, 20, 2},
		{"depth cap", 100, 10, 4, 40, 4},
		{"no results", 0, 10, 4, 0, 1},
		{"default page size", 150, 0, 4, 150, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &pagedStore{total: tt.total}
			items, err := SearchAll(context.Background(), store, core.SearchQuery{PageSize: tt.pageSize}, tt.maxDepth)
			require.NoError(t, err)
			assert.Len(t, items, tt.wantItems)
			assert.Len(t, store.queries, tt.wantCalls)
			for i, q := range store.queries {
				expected := i * store.queries[0].PageSize
				assert.Equal(t, expected, q.Offset)
			}
		})
	}
}

func TestSearchAll_PartialFailure(t *testing.T) {
	store := &pagedStore{total: 30, failAt: 2}
	items, err := SearchAll(context.Background(), store, core.SearchQuery{PageSize: 10}, 4)
	assert.Error(t, err)
	assert.Len(t, items, 10)
}

func TestSearchAll_InvalidDepth(t *testing.T) {
	_, err := SearchAll(context.Background(), &pagedStore{}, core.SearchQuery{}, 0)
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestIdentityTranslator(t *testing.T) {
	ids, err := IdentityTranslator{}.TranslateToLegacyIDs(context.Background(), "X1")
	require.NoError(t, err)
	assert.Equal(t, []string{"X1"}, ids)

	ids, err = IdentityTranslator{}.TranslateToLegacyIDs(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSearchAll_DroppedItemsDoNotShiftOffset(t *testing.T) {
	store := &pagedStore{total: 25, dropped: map[int]bool{3: true, 4: true, 12: true}}
	items, err := SearchAll(context.Background(), store, core.SearchQuery{PageSize: 10}, 4)
	require.NoError(t, err)

	require.Len(t, store.queries, 3)
	assert.Equal(t, []int{0, 10, 20}, []int{store.queries[0].Offset, store.queries[1].Offset, store.queries[2].Offset})
	assert.Len(t, items, 22)

	seen := map[string]bool{}
	for _, item := range items {
		assert.False(t, seen[item.ID], "duplicate %s", item.ID)
		seen[item.ID] = true
	}
}

func TestSearchAll_FullyDroppedPageContinues(t *testing.T) {
	dropped := map[int]bool{}
	for i := range 10 {
		dropped[i] = true
	}
	store := &pagedStore{total: 15, dropped: dropped}
	items, err := SearchAll(context.Background(), store, core.SearchQuery{PageSize: 10}, 4)
	require.NoError(t, err)
	assert.Len(t, store.queries, 2)
	assert.Len(t, items, 5)
}

func TestSearchDeeper_KeepsFirstTotal(t *testing.T) {
	store := &pagedStore{total: 35}
	page, err := SearchDeeper(context.Background(), store, core.SearchQuery{PageSize: 10}, 2)
	require.NoError(t, err)
	assert.Equal(t, 35, page.Total)
	assert.Len(t, page.Items, 20)
	assert.Equal(t, 20, page.Consumed)
}
