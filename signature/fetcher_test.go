package signature

import (
	"context"
	"sync"
	"time"

	"github.com/poiesic/kindred/core"
)

// stubFetcher serves articles from a map and counts calls per id.
type stubFetcher struct {
	mu       sync.Mutex
	articles map[string]*core.Article
	errs     map[string]error
	calls    map[string]int
	delay    time.Duration
	// gate, when set, holds every fetch until it is closed or ctx ends.
	gate chan struct{}
}

func newStubFetcher(articles ...*core.Article) *stubFetcher {
	f := &stubFetcher{
		articles: map[string]*core.Article{},
		errs:     map[string]error{},
		calls:    map[string]int{},
	}
	for _, a := range articles {
		f.articles[a.ID] = a
	}
	return f
}

func (f *stubFetcher) GetArticle(ctx context.Context, id string) (*core.Article, error) {
	f.mu.Lock()
	f.calls[id]++
	err := f.errs[id]
	a, ok := f.articles[id]
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, core.ErrNotFound
	}
	return a, nil
}

func (f *stubFetcher) callsFor(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

func (f *stubFetcher) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

var testDay = time.Date(2017, 12, 4, 9, 30, 0, 0, time.UTC)

func testArticle(id, body string, published time.Time, annotations ...core.Annotation) *core.Article {
	return &core.Article{
		ID:          id,
		Title:       "Title " + id,
		Published:   published,
		BodyXML:     body,
		Annotations: annotations,
	}
}

func about(id string) core.Annotation {
	return core.Annotation{ID: id, Type: "TOPIC", Predicate: "about", PrefLabel: "Label " + id}
}

func mentions(id string) core.Annotation {
	return core.Annotation{ID: id, Type: "PERSON", Predicate: "mentions", PrefLabel: "Label " + id}
}
