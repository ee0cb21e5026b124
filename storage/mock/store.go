package mock

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/poiesic/kindred/core"
	"github.com/poiesic/kindred/signature"
	"github.com/poiesic/kindred/storage"
)

// MockContentStore is a test double for storage.ContentStore.
// It is safe for concurrent use.
type MockContentStore struct {
	// GetArticleFunc is called by GetArticle if set.
	GetArticleFunc func(ctx context.Context, id string) (*core.Article, error)

	// SearchFunc is called by Search if set.
	SearchFunc func(ctx context.Context, query core.SearchQuery) (*core.SearchPage, error)

	mu          sync.Mutex
	articles    map[string]*core.Article
	getCalls    map[string]int
	searchCalls []core.SearchQuery
}

var _ storage.ContentStore = (*MockContentStore)(nil)

// NewMockContentStore creates a store serving the given articles.
func NewMockContentStore(articles ...*core.Article) *MockContentStore {
	m := &MockContentStore{
		articles: map[string]*core.Article{},
		getCalls: map[string]int{},
	}
	for _, a := range articles {
		m.articles[a.ID] = a
	}
	return m
}

// WithGetArticleFunc sets custom GetArticle behavior.
func (m *MockContentStore) WithGetArticleFunc(fn func(ctx context.Context, id string) (*core.Article, error)) *MockContentStore {
	m.GetArticleFunc = fn
	return m
}

// WithSearchFunc sets custom Search behavior.
func (m *MockContentStore) WithSearchFunc(fn func(ctx context.Context, query core.SearchQuery) (*core.SearchPage, error)) *MockContentStore {
	m.SearchFunc = fn
	return m
}

// GetArticle returns the stored article or an error matching core.ErrNotFound.
func (m *MockContentStore) GetArticle(ctx context.Context, id string) (*core.Article, error) {
	m.mu.Lock()
	m.getCalls[id]++
	a, ok := m.articles[id]
	fn := m.GetArticleFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, id)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	return a, nil
}

// Search filters the stored articles by annotation id, term and inclusive
// window. No annotation ids or a zero window leave that filter out.
func (m *MockContentStore) Search(ctx context.Context, query core.SearchQuery) (*core.SearchPage, error) {
	m.mu.Lock()
	m.searchCalls = append(m.searchCalls, query)
	fn := m.SearchFunc
	matcher := storage.NewTermMatcher(query.Term, query.TitleOnly)
	var matches []core.ArticleSummary
	for _, a := range m.articles {
		if !query.Window.IsZero() && !query.Window.Contains(a.Published) {
			continue
		}
		if !carriesAny(a, query.AnnotationIDs) {
			continue
		}
		excerpt, ok := matcher.Match(a, signature.StripTags(a.BodyXML))
		if !ok {
			continue
		}
		summary := a.Summary()
		summary.Excerpt = excerpt
		matches = append(matches, summary)
	}
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, query)
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

// GetArticleCalls returns how many times GetArticle was called for id.
func (m *MockContentStore) GetArticleCalls(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getCalls[id]
}

// TotalGetArticleCalls returns how many times GetArticle was called.
func (m *MockContentStore) TotalGetArticleCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.getCalls {
		total += n
	}
	return total
}

// SearchQueries returns every query passed to Search, in call order.
func (m *MockContentStore) SearchQueries() []core.SearchQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.searchCalls)
}

// Reset clears the call counters.
func (m *MockContentStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls = map[string]int{}
	m.searchCalls = nil
}

func carriesAny(a *core.Article, annotationIDs []string) bool {
	if len(annotationIDs) == 0 {
		return true
	}
	for _, ann := range a.Annotations {
		if slices.Contains(annotationIDs, ann.ID) {
			return true
		}
	}
	return false
}
