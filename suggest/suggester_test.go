package suggest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/kindred/core"
	"github.com/poiesic/kindred/signature"
	"github.com/poiesic/kindred/storage/mock"
)

func TestNewSuggester_Validation(t *testing.T) {
	store := mock.NewMockContentStore()
	translator := mock.NewMockTranslator()
	builder, err := signature.NewBuilder(store)
	require.NoError(t, err)
	defer builder.Close()

	_, err = NewSuggester(nil, store, translator)
	assert.ErrorIs(t, err, ErrBuilderRequired)

	_, err = NewSuggester(builder, nil, translator)
	assert.ErrorIs(t, err, ErrStoreRequired)

	_, err = NewSuggester(builder, store, nil)
	assert.ErrorIs(t, err, ErrTranslatorRequired)

	tests := []struct {
		name string
		opt  Option
	}{
		{"zero concurrency", WithConcurrency(0)},
		{"negative timeout", WithTaskTimeout(-time.Second)},
		{"empty default exemplar", WithDefaultExemplar("")},
		{"unknown ranking", WithRanking(Ranking(42))},
		{"empty url template", WithURLTemplate("")},
		{"zero page size", WithPageSize(0)},
		{"zero max depth", WithMaxDepth(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSuggester(builder, store, translator, tt.opt)
			assert.Error(t, err)
		})
	}

	s, err := NewSuggester(builder, store, translator, WithConcurrency(5), WithLogger(nil))
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, 5, s.Concurrency())
	assert.Equal(t, "https://www.ft.com/content/abc", s.URL("abc"))
}

func TestSuggest_BrexitScenario(t *testing.T) {
	store := mock.NewMockContentStore(
		article("exemplar", "<p>Brexit talks continue. Brexit.</p>", testDay, about("X1")),
		article("related", "<p>Brexit deal done.</p>", testDay.Add(24*time.Hour), about("X1")),
		article("weather", "<p>Weather report sunny.</p>", testDay.Add(48*time.Hour), about("X1")),
		article("too-late", "<p>Brexit talks continue.</p>", testDay.Add(10*24*time.Hour), about("X1")),
	)
	s := newTestSuggester(t, store, nil)

	result, err := s.Suggest(context.Background(), Request{
		ExemplarIDs: []string{"exemplar"},
		DaysAfter:   3,
	})
	require.NoError(t, err)

	require.Len(t, result.Suggestions, 2)
	assert.Equal(t, "related", result.Suggestions[0].ID)
	assert.Equal(t, 0.7, result.Suggestions[0].Score)
	assert.Equal(t, "Title related", result.Suggestions[0].Title)
	assert.Equal(t, "https://www.ft.com/content/related", result.Suggestions[0].URL)
	assert.True(t, result.Suggestions[0].Published.Equal(testDay.Add(24*time.Hour)))

	assert.Equal(t, "weather", result.Suggestions[1].ID)
	assert.Equal(t, 0.5, result.Suggestions[1].Score)

	assert.Equal(t, []string{"exemplar"}, result.Given.IDs)
	assert.Equal(t, []string{"Title exemplar"}, result.Given.Titles)
	assert.Equal(t, 1.0, result.Given.Score)
	assert.True(t, result.Given.Range.Earliest.Equal(testDay))
	assert.True(t, result.Window.Earliest.Equal(testDay))
	assert.True(t, result.Window.Latest.Equal(testDay.Add(3*24*time.Hour)))
	assert.Empty(t, result.Caveats)

	queries := store.SearchQueries()
	require.NotEmpty(t, queries)
	assert.Equal(t, []string{"X1"}, queries[0].AnnotationIDs)
	assert.Equal(t, 100, queries[0].PageSize)
}

func TestSuggest_MultipleExemplars(t *testing.T) {
	store := mock.NewMockContentStore(
		article("e1", "<p>Brexit talks continue.</p>", testDay, about("X1"), mentions("M1")),
		article("e2", "<p>Brexit talks stall.</p>", testDay.Add(24*time.Hour), about("X1")),
		article("c1", "<p>Brexit talks resume.</p>", testDay.Add(2*24*time.Hour), mentions("M1")),
	)
	s := newTestSuggester(t, store, nil)

	result, err := s.Suggest(context.Background(), Request{ExemplarIDs: []string{"e2", "e1", "e2", " "}})
	require.NoError(t, err)

	assert.Equal(t, []string{"e1", "e2"}, sortedCopy(result.Given.IDs))
	assert.True(t, result.Given.Range.Earliest.Equal(testDay))
	assert.True(t, result.Given.Range.Latest.Equal(testDay.Add(24*time.Hour)))

	// c1 falls outside a zero-day window around the exemplars
	assert.Empty(t, result.Suggestions)

	result, err = s.Suggest(context.Background(), Request{ExemplarIDs: []string{"e1", "e2"}, DaysAfter: 1})
	require.NoError(t, err)
	require.Len(t, result.Suggestions, 1)
	assert.Equal(t, "c1", result.Suggestions[0].ID)
	assert.Greater(t, result.Suggestions[0].Score, 0.0)
}

func TestSuggest_DefaultExemplar(t *testing.T) {
	store := mock.NewMockContentStore(
		article(DefaultExemplar, "<p>Brexit talks continue.</p>", testDay, about("X1")),
	)
	s := newTestSuggester(t, store, nil)

	result, err := s.Suggest(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultExemplar}, result.Given.IDs)
	assert.NotNil(t, result.Suggestions)
	assert.Empty(t, result.Suggestions, "the exemplar itself is never suggested")
}

func TestSuggest_CustomDefaultExemplar(t *testing.T) {
	store := mock.NewMockContentStore(article("fallback", "<p>x</p>", testDay, about("X1")))
	s := newTestSuggester(t, store, nil, WithDefaultExemplar("fallback"))

	result, err := s.Suggest(context.Background(), Request{ExemplarIDs: []string{""}})
	require.NoError(t, err)
	assert.Equal(t, []string{"fallback"}, result.Given.IDs)
}

func TestSuggest_ExemplarFailureIsFatal(t *testing.T) {
	store := mock.NewMockContentStore()
	s := newTestSuggester(t, store, nil)

	_, err := s.Suggest(context.Background(), Request{ExemplarIDs: []string{"missing"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExemplarSignature)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Empty(t, store.SearchQueries())
}

func TestSuggest_InvalidWindow(t *testing.T) {
	s := newTestSuggester(t, mock.NewMockContentStore(), nil)

	_, err := s.Suggest(context.Background(), Request{DaysBefore: -1})
	assert.ErrorIs(t, err, core.ErrInvalidWindow)

	_, err = s.Suggest(context.Background(), Request{DaysAfter: -1})
	assert.ErrorIs(t, err, core.ErrInvalidWindow)

	_, err = s.Suggest(context.Background(), Request{DaysBefore: 200000})
	assert.ErrorIs(t, err, core.ErrInvalidWindow)
}

func TestSuggest_CandidateFailureOmitsCandidate(t *testing.T) {
	articles := map[string]*core.Article{
		"exemplar": article("exemplar", "<p>Brexit talks continue.</p>", testDay, about("X1")),
		"good":     article("good", "<p>Brexit deal.</p>", testDay, about("X1")),
		"broken":   article("broken", "<p>Brexit deal.</p>", testDay, about("X1")),
	}
	store := mock.NewMockContentStore(articles["exemplar"], articles["good"], articles["broken"])
	failingFor(store, articles, "broken")
	monitor := newRecordingMonitor()
	s := newTestSuggester(t, store, nil)

	result, err := s.Suggest(context.Background(), Request{ExemplarIDs: []string{"exemplar"}, Monitor: monitor})
	require.NoError(t, err)
	require.Len(t, result.Suggestions, 1)
	assert.Equal(t, "good", result.Suggestions[0].ID)

	require.Contains(t, monitor.failed, "broken")
	assert.ErrorIs(t, monitor.failed["broken"], core.ErrUpstreamUnavailable)
}

func TestSuggest_UnrelatedCandidateScoresZero(t *testing.T) {
	store := mock.NewMockContentStore(
		article("exemplar", "<p>Brexit talks continue.</p>", testDay, about("X1")),
		article("unrelated", "<p>Rain markets rally.</p>", testDay, mentions("M9")),
	)
	store.WithSearchFunc(func(_ context.Context, _ core.SearchQuery) (*core.SearchPage, error) {
		return &core.SearchPage{Total: 1, Items: []core.ArticleSummary{
			{ID: "unrelated", Title: "Title unrelated", Published: testDay},
		}}, nil
	})
	s := newTestSuggester(t, store, nil)

	result, err := s.Suggest(context.Background(), Request{ExemplarIDs: []string{"exemplar"}})
	require.NoError(t, err)
	require.Len(t, result.Suggestions, 1)
	assert.Equal(t, 0.0, result.Suggestions[0].Score)
}

func TestSuggest_NoLegacyIDsSkipsSearch(t *testing.T) {
	store := mock.NewMockContentStore(
		article("exemplar", "<p>Brexit talks continue.</p>", testDay, about("X1")),
		article("other", "<p>Brexit talks continue.</p>", testDay, about("X1")),
	)
	translator := mock.NewMockTranslator().WithTranslateFunc(func(_ context.Context, _ string) ([]string, error) {
		return nil, nil
	})
	s := newTestSuggester(t, store, translator)

	result, err := s.Suggest(context.Background(), Request{ExemplarIDs: []string{"exemplar"}})
	require.NoError(t, err)
	assert.Empty(t, result.Suggestions)
	assert.Empty(t, store.SearchQueries())
	assert.Equal(t, 1, translator.CallCount())
}

func TestSuggest_TranslationFailureBecomesCaveat(t *testing.T) {
	store := mock.NewMockContentStore(
		article("exemplar", "<p>Brexit talks continue.</p>", testDay, about("X1"), mentions("M1")),
		article("other", "<p>Brexit talks continue.</p>", testDay, mentions("M1")),
	)
	translator := mock.NewMockTranslator().WithTranslateFunc(func(_ context.Context, id string) ([]string, error) {
		if id == "X1" {
			return nil, core.ErrUpstreamUnavailable
		}
		return []string{id, id}, nil
	})
	s := newTestSuggester(t, store, translator)

	result, err := s.Suggest(context.Background(), Request{ExemplarIDs: []string{"exemplar"}})
	require.NoError(t, err)
	require.Len(t, result.Caveats, 1)
	assert.Contains(t, result.Caveats[0], "X1")

	queries := store.SearchQueries()
	require.NotEmpty(t, queries)
	assert.Equal(t, []string{"M1"}, queries[0].AnnotationIDs, "legacy ids are deduplicated")
	require.Len(t, result.Suggestions, 1)
	assert.Equal(t, "other", result.Suggestions[0].ID)
}

func TestSuggest_PartialSearchFailure(t *testing.T) {
	store := mock.NewMockContentStore(
		article("exemplar", "<p>Brexit talks continue.</p>", testDay, about("X1")),
		article("first", "<p>Brexit talks.</p>", testDay, about("X1")),
	)
	store.WithSearchFunc(func(_ context.Context, q core.SearchQuery) (*core.SearchPage, error) {
		if q.Offset > 0 {
			return nil, core.ErrUpstreamUnavailable
		}
		return &core.SearchPage{Total: 5, Items: []core.ArticleSummary{
			{ID: "first", Title: "Title first", Published: testDay},
		}}, nil
	})
	s := newTestSuggester(t, store, nil, WithPageSize(1))

	result, err := s.Suggest(context.Background(), Request{ExemplarIDs: []string{"exemplar"}})
	require.NoError(t, err)
	require.Len(t, result.Suggestions, 1)
	assert.Equal(t, "first", result.Suggestions[0].ID)
	require.Len(t, result.Caveats, 1)
	assert.Contains(t, result.Caveats[0], "search incomplete")
}

func TestSuggest_EmptyCandidateSet(t *testing.T) {
	store := mock.NewMockContentStore(
		article("exemplar", "<p>Brexit talks continue.</p>", testDay, about("X1")),
	)
	monitor := newRecordingMonitor()
	s := newTestSuggester(t, store, nil)

	result, err := s.Suggest(context.Background(), Request{ExemplarIDs: []string{"exemplar"}, Monitor: monitor})
	require.NoError(t, err)
	assert.Empty(t, result.Suggestions)
	assert.Equal(t, []string{"start", "exemplar", "translation", "search", "finish"}, monitor.events)
	assert.Same(t, result, monitor.finished)
}

func TestSuggest_DeterministicTies(t *testing.T) {
	store := mock.NewMockContentStore(
		article("exemplar", "<p>Brexit talks continue.</p>", testDay, about("X1")),
		article("c", "<p>Brexit deal.</p>", testDay, about("X1")),
		article("a", "<p>Brexit deal.</p>", testDay, about("X1")),
		article("b", "<p>Brexit deal.</p>", testDay, about("X1")),
	)
	s := newTestSuggester(t, store, nil, WithConcurrency(3))

	for range 5 {
		result, err := s.Suggest(context.Background(), Request{ExemplarIDs: []string{"exemplar"}})
		require.NoError(t, err)
		require.Len(t, result.Suggestions, 3)
		assert.Equal(t, "a", result.Suggestions[0].ID)
		assert.Equal(t, "b", result.Suggestions[1].ID)
		assert.Equal(t, "c", result.Suggestions[2].ID)
	}
}

func TestSuggest_RankingOverride(t *testing.T) {
	store := mock.NewMockContentStore(
		article("exemplar", "<p>Brexit talks continue.</p>", testDay, about("X1")),
		article("older", "<p>Brexit talks continue.</p>", testDay.Add(-24*time.Hour), about("X1")),
		article("newer", "<p>Weather.</p>", testDay.Add(24*time.Hour), about("X1")),
	)
	s := newTestSuggester(t, store, nil)

	byScore, err := s.Suggest(context.Background(), Request{ExemplarIDs: []string{"exemplar"}, DaysBefore: 1, DaysAfter: 1})
	require.NoError(t, err)
	require.Len(t, byScore.Suggestions, 2)
	assert.Equal(t, "older", byScore.Suggestions[0].ID)
	assert.Equal(t, ByScore, byScore.Ranking)

	ranking := ByDate
	byDate, err := s.Suggest(context.Background(), Request{ExemplarIDs: []string{"exemplar"}, DaysBefore: 1, DaysAfter: 1, Ranking: &ranking})
	require.NoError(t, err)
	require.Len(t, byDate.Suggestions, 2)
	assert.Equal(t, "newer", byDate.Suggestions[0].ID)

	bad := Ranking(99)
	_, err = s.Suggest(context.Background(), Request{ExemplarIDs: []string{"exemplar"}, Ranking: &bad})
	assert.ErrorIs(t, err, ErrUnknownRanking)
}

func TestSuggest_ConcurrencyCap(t *testing.T) {
	articles := map[string]*core.Article{
		"exemplar": article("exemplar", "<p>Brexit talks continue.</p>", testDay, about("X1")),
	}
	for _, id := range []string{"c1", "c2", "c3", "c4", "c5", "c6"} {
		articles[id] = article(id, "<p>Brexit deal.</p>", testDay, about("X1"))
	}
	all := make([]*core.Article, 0, len(articles))
	for _, a := range articles {
		all = append(all, a)
	}
	store := mock.NewMockContentStore(all...)

	var inFlight, maxInFlight atomic.Int32
	store.WithGetArticleFunc(func(_ context.Context, id string) (*core.Article, error) {
		if id != "exemplar" {
			n := inFlight.Add(1)
			defer inFlight.Add(-1)
			for {
				m := maxInFlight.Load()
				if n <= m || maxInFlight.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
		}
		return articles[id], nil
	})
	s := newTestSuggester(t, store, nil, WithConcurrency(2))

	result, err := s.Suggest(context.Background(), Request{ExemplarIDs: []string{"exemplar"}})
	require.NoError(t, err)
	assert.Len(t, result.Suggestions, 6)
	assert.LessOrEqual(t, maxInFlight.Load(), int32(2))
}

func TestSuggest_ConcurrentRequests(t *testing.T) {
	store := mock.NewMockContentStore(
		article("exemplar", "<p>Brexit talks continue.</p>", testDay, about("X1")),
		article("c1", "<p>Brexit deal.</p>", testDay, about("X1")),
	)
	s := newTestSuggester(t, store, nil)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = s.Suggest(context.Background(), Request{ExemplarIDs: []string{"exemplar"}})
		}()
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, store.GetArticleCalls("c1"), "signatures are shared across requests")
}

func TestSuggest_CanceledContext(t *testing.T) {
	store := mock.NewMockContentStore(
		article("exemplar", "<p>Brexit talks continue.</p>", testDay, about("X1")),
	)
	s := newTestSuggester(t, store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store.WithGetArticleFunc(func(ctx context.Context, _ string) (*core.Article, error) {
		return nil, ctx.Err()
	})

	_, err := s.Suggest(ctx, Request{ExemplarIDs: []string{"exemplar"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func sortedCopy(ids []string) []string {
	out := append([]string(nil), ids...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
