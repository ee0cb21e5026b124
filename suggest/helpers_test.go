package suggest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/poiesic/kindred/core"
	"github.com/poiesic/kindred/signature"
	"github.com/poiesic/kindred/storage"
	"github.com/poiesic/kindred/storage/mock"
)

var testDay = time.Date(2017, 12, 4, 9, 30, 0, 0, time.UTC)

func article(id, body string, published time.Time, annotations ...core.Annotation) *core.Article {
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

// newTestSuggester wires a real signature builder over store.
func newTestSuggester(t *testing.T, store storage.ContentStore, translator storage.IdentifierTranslator, opts ...Option) *Suggester {
	t.Helper()
	builder, err := signature.NewBuilder(store)
	require.NoError(t, err)
	t.Cleanup(builder.Close)

	if translator == nil {
		translator = mock.NewMockTranslator()
	}
	s, err := NewSuggester(builder, store, translator, opts...)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

// recordingMonitor keeps every event it sees.
type recordingMonitor struct {
	mu         sync.Mutex
	events     []string
	exemplars  []string
	legacyIDs  []string
	candidates []core.ArticleSummary
	scored     []Suggestion
	failed     map[string]error
	finished   *Result
}

func newRecordingMonitor() *recordingMonitor {
	return &recordingMonitor{failed: map[string]error{}}
}

func (m *recordingMonitor) record(event string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func (m *recordingMonitor) Start(ids []string) {
	m.record("start")
	m.exemplars = ids
}

func (m *recordingMonitor) AfterExemplarSignature(_ *signature.Signature, _ core.DateRange) {
	m.record("exemplar")
}

func (m *recordingMonitor) AfterTranslation(ids []string) {
	m.record("translation")
	m.legacyIDs = ids
}

func (m *recordingMonitor) AfterSearch(candidates []core.ArticleSummary) {
	m.record("search")
	m.candidates = candidates
}

func (m *recordingMonitor) CandidateScored(s Suggestion) {
	m.record("scored")
	m.scored = append(m.scored, s)
}

func (m *recordingMonitor) CandidateFailed(id string, err error) {
	m.record("failed")
	m.failed[id] = err
}

func (m *recordingMonitor) Finish(result *Result) {
	m.record("finish")
	m.finished = result
}

// failingFor wraps store so that GetArticle fails for the given ids.
func failingFor(store *mock.MockContentStore, articles map[string]*core.Article, ids ...string) {
	broken := map[string]bool{}
	for _, id := range ids {
		broken[id] = true
	}
	store.WithGetArticleFunc(func(_ context.Context, id string) (*core.Article, error) {
		if broken[id] {
			return nil, core.ErrUpstreamUnavailable
		}
		a, ok := articles[id]
		if !ok {
			return nil, core.ErrNotFound
		}
		return a, nil
	})
}
