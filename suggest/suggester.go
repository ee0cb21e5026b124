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

package suggest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/poiesic/kindred/core"
	"github.com/poiesic/kindred/runner"
	"github.com/poiesic/kindred/signature"
	"github.com/poiesic/kindred/storage"
)

// errTaskAborted stands in for a task that returned no result, which only
// happens when it panicked.
var errTaskAborted = errors.New("task aborted")

// SignatureBuilder builds memoized signatures for one or more article ids.
// *signature.Builder implements it.
type SignatureBuilder interface {
	BuildMany(ctx context.Context, ids []string) (*signature.Signature, error)
}

// Request asks for suggestions similar to ExemplarIDs.
type Request struct {
	// ExemplarIDs are the articles to find neighbours of. Empty ids are
	// dropped; if none remain the default exemplar is used.
	ExemplarIDs []string

	// DaysBefore and DaysAfter widen the exemplars' publish range.
	DaysBefore int
	DaysAfter  int

	// Ranking overrides the Suggester's default ordering when set.
	Ranking *Ranking

	// Monitor observes the run. Optional.
	Monitor Monitor
}

// Suggestion is one ranked candidate.
type Suggestion struct {
	Score     float64   `json:"score"`
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Published time.Time `json:"publishDate"`
	URL       string    `json:"url"`
}

// Given summarizes the exemplar signature.
type Given struct {
	IDs       []string             `json:"ids"`
	Titles    []string             `json:"titles"`
	URLs      []string             `json:"urls"`
	Score     float64              `json:"score"`
	Range     core.DateRange       `json:"publishedDates"`
	Signature *signature.Signature `json:"-"`
}

// Result is the outcome of one suggestion run.
type Result struct {
	Suggestions []Suggestion   `json:"suggestions"`
	Given       Given          `json:"given"`
	Window      core.DateRange `json:"-"`
	Ranking     Ranking        `json:"-"`

	// Caveats describe steps that failed without failing the run, such as a
	// search page that could not be read.
	Caveats []string `json:"caveats,omitempty"`
}

// Suggester runs suggestion requests against a content store.
// It is safe for concurrent use; concurrent runs share one concurrency cap.
type Suggester struct {
	builder         SignatureBuilder
	store           storage.ContentStore
	translator      storage.IdentifierTranslator
	runner          *runner.Runner
	concurrency     int
	taskTimeout     time.Duration
	defaultExemplar string
	ranking         Ranking
	urlTemplate     string
	pageSize        int
	maxDepth        int
	logger          *slog.Logger
}

// NewSuggester creates a Suggester.
func NewSuggester(
	builder SignatureBuilder,
	store storage.ContentStore,
	translator storage.IdentifierTranslator,
	opts ...Option,
) (*Suggester, error) {
	if builder == nil {
		return nil, ErrBuilderRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}
	if translator == nil {
		return nil, ErrTranslatorRequired
	}

	s := &Suggester{
		builder:         builder,
		store:           store,
		translator:      translator,
		concurrency:     DefaultConcurrency,
		defaultExemplar: DefaultExemplar,
		ranking:         ByScore,
		urlTemplate:     DefaultURLTemplate,
		pageSize:        storage.DefaultPageSize,
		maxDepth:        storage.DefaultMaxDepth,
		logger:          slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	r, err := runner.New(s.concurrency, runner.WithTaskTimeout(s.taskTimeout), runner.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	s.runner = r
	return s, nil
}

// Close releases the worker pool.
func (s *Suggester) Close() {
	s.runner.Release()
}

// Concurrency returns how many candidates are scored at once.
func (s *Suggester) Concurrency() int {
	return s.concurrency
}

// URL formats an article id with the configured template.
func (s *Suggester) URL(id string) string {
	return fmt.Sprintf(s.urlTemplate, id)
}

// Suggest returns the articles most similar to the request's exemplars.
//
// An error is returned only for invalid input or when the exemplar signature
// cannot be built; such errors match core.ErrNotFound or
// core.ErrUpstreamUnavailable. Every other failure is logged, recorded as a
// caveat and degrades to fewer suggestions. A window with no candidates is a
// Result with no suggestions.
func (s *Suggester) Suggest(ctx context.Context, req Request) (*Result, error) {
	if err := core.ValidateWindow(req.DaysBefore, req.DaysAfter); err != nil {
		return nil, err
	}
	monitor := req.Monitor
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	ranking := s.ranking
	if req.Ranking != nil {
		if _, ok := comparators[*req.Ranking]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRanking, *req.Ranking)
		}
		ranking = *req.Ranking
	}

	exemplars := s.exemplarIDs(req.ExemplarIDs)
	monitor.Start(exemplars)

	// 1. Exemplar signature; failure here fails the request
	given, err := s.builder.BuildMany(ctx, exemplars)
	if err != nil {
		s.logger.Error("error building exemplar signature", "ids", exemplars, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrExemplarSignature, err)
	}

	window := given.Published().Expand(req.DaysBefore, req.DaysAfter)
	monitor.AfterExemplarSignature(given, window)

	result := &Result{
		Suggestions: []Suggestion{},
		Given: Given{
			IDs:       given.IDs(),
			Titles:    given.Titles(),
			URLs:      s.urls(given.IDs()),
			Score:     round(given.Score.Amount),
			Range:     given.Published(),
			Signature: given,
		},
		Window:  window,
		Ranking: ranking,
	}

	// 2. Translate annotations into ids the search understands
	legacyIDs, caveats := s.translate(ctx, given.AnnotationIDs())
	result.Caveats = append(result.Caveats, caveats...)
	monitor.AfterTranslation(legacyIDs)
	if len(legacyIDs) == 0 {
		s.logger.Debug("no searchable annotations", "ids", exemplars)
		monitor.Finish(result)
		return result, nil
	}

	// 3. Candidate discovery
	summaries, err := storage.SearchAll(ctx, s.store, core.SearchQuery{
		AnnotationIDs: legacyIDs,
		Window:        window,
		PageSize:      s.pageSize,
	}, s.maxDepth)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.logger.Warn("candidate search incomplete", "found", len(summaries), "err", err)
		result.Caveats = append(result.Caveats, fmt.Sprintf("search incomplete after %d candidates: %v", len(summaries), err))
	}
	candidates := distinctCandidates(summaries, exemplars)
	monitor.AfterSearch(candidates)

	// 4. Score each candidate against the exemplars
	suggestions, err := s.score(ctx, exemplars, candidates, monitor)
	if err != nil {
		return nil, err
	}

	// 5. Rank
	slices.SortStableFunc(suggestions, ranking.Compare)
	result.Suggestions = suggestions

	s.logger.Debug("suggestions complete", "exemplars", len(exemplars), "candidates", len(candidates), "suggestions", len(suggestions))
	monitor.Finish(result)
	return result, nil
}

func (s *Suggester) urls(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = s.URL(id)
	}
	return out
}

// exemplarIDs drops empty and repeated ids, falling back to the default.
func (s *Suggester) exemplarIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) == 0 {
		out = append(out, s.defaultExemplar)
	}
	return out
}

type translation struct {
	ids []string
	err error
}

// translate maps annotation ids to distinct legacy ids. A failed translation
// contributes nothing.
func (s *Suggester) translate(ctx context.Context, annotationIDs []string) ([]string, []string) {
	slices.Sort(annotationIDs)

	tasks := make([]runner.Task[*translation], len(annotationIDs))
	for i, id := range annotationIDs {
		tasks[i] = func(ctx context.Context) *translation {
			ids, err := s.translator.TranslateToLegacyIDs(ctx, id)
			return &translation{ids: ids, err: err}
		}
	}

	results, err := runner.Collect(ctx, s.runner, tasks)
	var caveats []string
	if err != nil {
		s.logger.Warn("translation batch incomplete", "err", err)
		caveats = append(caveats, fmt.Sprintf("translation incomplete: %v", err))
	}

	seen := map[string]struct{}{}
	var legacy []string
	for i, t := range results {
		if t == nil {
			continue
		}
		if t.err != nil {
			s.logger.Warn("could not translate annotation", "annotation", annotationIDs[i], "err", t.err)
			caveats = append(caveats, fmt.Sprintf("could not translate %s: %v", annotationIDs[i], t.err))
			continue
		}
		for _, id := range t.ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			legacy = append(legacy, id)
		}
	}
	return legacy, caveats
}

// distinctCandidates drops repeats and the exemplars themselves.
func distinctCandidates(summaries []core.ArticleSummary, exemplars []string) []core.ArticleSummary {
	seen := make(map[string]struct{}, len(summaries)+len(exemplars))
	for _, id := range exemplars {
		seen[id] = struct{}{}
	}
	out := make([]core.ArticleSummary, 0, len(summaries))
	for _, c := range summaries {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}

type scored struct {
	score float64
	err   error
}

// score merges each candidate with the exemplars, one task per candidate.
// Candidates that fail are reported to the monitor and omitted.
func (s *Suggester) score(ctx context.Context, exemplars []string, candidates []core.ArticleSummary, monitor Monitor) ([]Suggestion, error) {
	tasks := make([]runner.Task[*scored], len(candidates))
	for i, c := range candidates {
		ids := append(slices.Clone(exemplars), c.ID)
		tasks[i] = func(ctx context.Context) *scored {
			sig, err := s.builder.BuildMany(ctx, ids)
			if err != nil {
				return &scored{err: err}
			}
			return &scored{score: sig.Score.Amount}
		}
	}

	results, err := runner.Collect(ctx, s.runner, tasks)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("scoring candidates: %w", err)
	}

	suggestions := make([]Suggestion, 0, len(candidates))
	for i, r := range results {
		c := candidates[i]
		if r == nil {
			r = &scored{err: errTaskAborted}
		}
		if r.err != nil {
			s.logger.Debug("dropping candidate", "id", c.ID, "err", r.err)
			monitor.CandidateFailed(c.ID, r.err)
			continue
		}
		suggestion := Suggestion{
			Score:     round(r.score),
			ID:        c.ID,
			Title:     c.Title,
			Published: c.Published,
			URL:       s.URL(c.ID),
		}
		monitor.CandidateScored(suggestion)
		suggestions = append(suggestions, suggestion)
	}
	return suggestions, nil
}

// round keeps two decimal places.
func round(v float64) float64 {
	return math.Round(v*100) / 100
}
