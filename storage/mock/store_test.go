package mock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/kindred/core"
)

func TestMockContentStore(t *testing.T) {
	day := time.Date(2017, 12, 4, 0, 0, 0, 0, time.UTC)
	a := &core.Article{ID: "a", Published: day, Annotations: []core.Annotation{{ID: "X1", Predicate: "about"}}}
	b := &core.Article{ID: "b", Published: day.Add(time.Hour), Annotations: []core.Annotation{{ID: "X2", Predicate: "about"}}}
	store := NewMockContentStore(a, b)
	ctx := context.Background()

	got, err := store.GetArticle(ctx, "a")
	require.NoError(t, err)
	assert.Same(t, a, got)

	_, err = store.GetArticle(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, 1, store.GetArticleCalls("a"))
	assert.Equal(t, 2, store.TotalGetArticleCalls())

	page, err := store.Search(ctx, core.SearchQuery{
		AnnotationIDs: []string{"X1", "X2"},
		Window:        core.DateRange{Earliest: day, Latest: day.Add(time.Hour)},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, "b", page.Items[0].ID)
	assert.Len(t, store.SearchQueries(), 1)

	store.Reset()
	assert.Zero(t, store.TotalGetArticleCalls())
	assert.Empty(t, store.SearchQueries())
}

func TestMockContentStore_TermSearch(t *testing.T) {
	day := time.Date(2016, 6, 24, 0, 0, 0, 0, time.UTC)
	store := NewMockContentStore(
		&core.Article{ID: "a", Title: "Brexit vote", Published: day, BodyXML: "<p>Markets fell.</p>"},
		&core.Article{ID: "b", Title: "Markets", Published: day.AddDate(1, 0, 0), BodyXML: "<p>After <b>Brexit</b> came.</p>"},
	)
	ctx := context.Background()

	page, err := store.Search(ctx, core.SearchQuery{Term: "brexit"})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "b", page.Items[0].ID)
	assert.Equal(t, "After Brexit came.", page.Items[0].Excerpt)
	assert.Equal(t, "Brexit vote", page.Items[1].Excerpt)

	page, err = store.Search(ctx, core.SearchQuery{Term: "brexit", TitleOnly: true})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "a", page.Items[0].ID)

	page, err = store.Search(ctx, core.SearchQuery{
		Term:   "brexit",
		Window: core.DateRange{Earliest: day.AddDate(0, 6, 0), Latest: day.AddDate(2, 0, 0)},
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "b", page.Items[0].ID)
}

func TestMockContentStore_CustomFuncs(t *testing.T) {
	boom := errors.New("boom")
	store := NewMockContentStore().
		WithGetArticleFunc(func(ctx context.Context, id string) (*core.Article, error) { return nil, boom }).
		WithSearchFunc(func(ctx context.Context, q core.SearchQuery) (*core.SearchPage, error) { return nil, boom })

	_, err := store.GetArticle(context.Background(), "a")
	assert.Equal(t, boom, err)
	_, err = store.Search(context.Background(), core.SearchQuery{})
	assert.Equal(t, boom, err)
	assert.Equal(t, 1, store.GetArticleCalls("a"))
}

func TestMockTranslator(t *testing.T) {
	tr := NewMockTranslator()
	ids, err := tr.TranslateToLegacyIDs(context.Background(), "X1")
	require.NoError(t, err)
	assert.Equal(t, []string{"X1"}, ids)

	tr.WithTranslateFunc(func(ctx context.Context, id string) ([]string, error) { return nil, nil })
	ids, err = tr.TranslateToLegacyIDs(context.Background(), "X1")
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Equal(t, 2, tr.CallCount())

	tr.Reset()
	assert.Zero(t, tr.CallCount())
}
