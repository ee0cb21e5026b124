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


package align

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/poiesic/kindred/core"
	"github.com/poiesic/kindred/storage"
)

// MaxYear is the last year a request may name.
const MaxYear = 9999

// Request asks for the articles mentioning a term.
type Request struct {
	// Term to align. Blank means the aligner's default term.
	Term string

	// Year restricts matches to one publication year. Zero means any year.
	Year int

	// SortBy overrides the aligner's default ordering when set.
	SortBy *SortBy

	// Source overrides the aligner's default source when set.
	Source *Source
}

// Line is one matching text split around the term.
type Line struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Pre       string    `json:"pre"`
	Match     string    `json:"term"`
	Post      string    `json:"post"`
	Published time.Time `json:"lastPublishDateTime"`
	Year      int       `json:"year"`
}

// Counts summarises how many results each stage kept.
type Counts struct {
	// IndexCount is the number of matches the store reported.
	IndexCount int `json:"indexCount"`
	// MaxResults is the page size requested.
	MaxResults int `json:"maxResults"`
	// Results is the number of summaries fetched.
	Results int `json:"results"`
	// FilteredResults is the number of summaries whose text held the term.
	FilteredResults int `json:"filteredResults"`
}

// YearGroup holds the lines published in one year.
type YearGroup struct {
	Year  int    `json:"year"`
	Lines []Line `json:"results"`
}

// Result is the outcome of an alignment.
type Result struct {
	Term    string      `json:"term"`
	Year    int         `json:"year,omitempty"`
	SortBy  SortBy      `json:"sortBy"`
	SortBys []string    `json:"sortBys"`
	Source  Source      `json:"source"`
	Sources []string    `json:"sources"`
	Counts  Counts      `json:"counts"`
	Years   []int       `json:"years"`
	Lines   []Line      `json:"results"`
	ByYear  []YearGroup `json:"resultsGroupedByYear"`

	// Caveats describe searches that failed part way.
	Caveats []string `json:"caveats,omitempty"`
}

// Aligner searches a content store for a term and aligns the matches.
// It is safe for concurrent use.
type Aligner struct {
	store       storage.ContentStore
	defaultTerm string
	sortBy      SortBy
	source      Source
	urlTemplate string
	pageSize    int
	maxDepth    int
	logger      *slog.Logger
}

// NewAligner creates an Aligner over store.
func NewAligner(store storage.ContentStore, opts ...Option) (*Aligner, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	a := &Aligner{
		store:       store,
		defaultTerm: DefaultTerm,
		sortBy:      ByPosition,
		source:      SourceAll,
		urlTemplate: DefaultURLTemplate,
		pageSize:    storage.DefaultPageSize,
		maxDepth:    storage.DefaultMaxDepth,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Align pages through the store's matches for the request's term and splits
// each matching text around it. Titles are aligned for SourceTitle and search
// excerpts otherwise. Summaries whose text does not contain the term as a
// whole word are dropped.
//
// An error is returned for invalid input, a cancelled context or when the
// first page cannot be fetched. A later page failing is recorded as a caveat.
func (a *Aligner) Align(ctx context.Context, req Request) (*Result, error) {
	query, sortBy, source, err := a.resolve(req)
	if err != nil {
		return nil, err
	}

	page, err := storage.SearchDeeper(ctx, a.store, query, a.maxDepth)
	var caveats []string
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if page == nil || page.Advance() == 0 {
			return nil, err
		}
		a.logger.Warn("term search incomplete", "term", query.Term, "found", len(page.Items), "err", err)
		caveats = append(caveats, fmt.Sprintf("search incomplete after %d results: %v", len(page.Items), err))
	}

	pattern := termPattern(query.Term)
	lines := make([]Line, 0, len(page.Items))
	for _, item := range page.Items {
		text := item.Excerpt
		if source == SourceTitle {
			text = item.Title
		}
		line, ok := a.split(pattern, item, text)
		if !ok {
			continue
		}
		lines = append(lines, line)
	}
	slices.SortStableFunc(lines, sortBy.Compare)

	result := &Result{
		Term:    query.Term,
		Year:    req.Year,
		SortBy:  sortBy,
		SortBys: SortNames(),
		Source:  source,
		Sources: SourceNames(),
		Counts: Counts{
			IndexCount:      page.Total,
			MaxResults:      query.PageSize,
			Results:         len(page.Items),
			FilteredResults: len(lines),
		},
		Lines:   lines,
		Caveats: caveats,
	}
	result.Years, result.ByYear = groupByYear(lines)

	a.logger.Debug("alignment complete", "term", query.Term, "year", req.Year, "results", len(page.Items), "aligned", len(lines))
	return result, nil
}

// Search returns the first page of the store's matches for the request's
// term without aligning them. The request's SortBy is ignored.
func (a *Aligner) Search(ctx context.Context, req Request) (*core.SearchPage, error) {
	query, _, _, err := a.resolve(req)
	if err != nil {
		return nil, err
	}
	page, err := a.store.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("term search %q: %w", query.Term, err)
	}
	if page == nil {
		page = &core.SearchPage{}
	}
	if page.Items == nil {
		page.Items = []core.ArticleSummary{}
	}
	return page, nil
}

// URL formats an article id with the configured template.
func (a *Aligner) URL(id string) string {
	return fmt.Sprintf(a.urlTemplate, id)
}

func (a *Aligner) resolve(req Request) (core.SearchQuery, SortBy, Source, error) {
	sortBy := a.sortBy
	if req.SortBy != nil {
		if _, ok := comparators[*req.SortBy]; !ok {
			return core.SearchQuery{}, 0, 0, fmt.Errorf("%w: %s", ErrUnknownSortBy, *req.SortBy)
		}
		sortBy = *req.SortBy
	}
	source := a.source
	if req.Source != nil {
		if _, ok := sourceNames[*req.Source]; !ok {
			return core.SearchQuery{}, 0, 0, fmt.Errorf("%w: %s", ErrUnknownSource, *req.Source)
		}
		source = *req.Source
	}
	window, err := yearWindow(req.Year)
	if err != nil {
		return core.SearchQuery{}, 0, 0, err
	}

	term := strings.TrimSpace(req.Term)
	if term == "" {
		term = a.defaultTerm
	}
	return core.SearchQuery{
		Term:      term,
		TitleOnly: source == SourceTitle,
		Window:    window,
		PageSize:  a.pageSize,
	}, sortBy, source, nil
}

func (a *Aligner) split(pattern *regexp.Regexp, item core.ArticleSummary, text string) (Line, bool) {
	// Ellipses often abut a word; pad them so the term still has a boundary.
	spaced := strings.ReplaceAll(text, "...", " ... ")
	m := pattern.FindStringSubmatch(spaced)
	if m == nil {
		return Line{}, false
	}
	return Line{
		ID:        item.ID,
		URL:       a.URL(item.ID),
		Title:     item.Title,
		Text:      text,
		Pre:       m[1],
		Match:     m[2],
		Post:      m[3],
		Published: item.Published,
		Year:      item.Published.UTC().Year(),
	}, true
}

// termPattern splits a text at the first whole word match of term.
func termPattern(term string) *regexp.Regexp {
	return regexp.MustCompile(`(?is)^(.*?)\b(` + regexp.QuoteMeta(term) + `)\b(.*)$`)
}

// yearWindow covers every second of year in UTC. Year zero is the zero window.
func yearWindow(year int) (core.DateRange, error) {
	if year == 0 {
		return core.DateRange{}, nil
	}
	if year < 1 || year > MaxYear {
		return core.DateRange{}, fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}
	return core.DateRange{
		Earliest: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		Latest:   time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC),
	}, nil
}

// groupByYear returns the distinct years newest first and the lines of each,
// keeping the order lines are already in.
func groupByYear(lines []Line) ([]int, []YearGroup) {
	byYear := make(map[int][]Line)
	for _, line := range lines {
		byYear[line.Year] = append(byYear[line.Year], line)
	}
	years := make([]int, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	slices.SortFunc(years, func(a, b int) int { return cmp.Compare(b, a) })

	groups := make([]YearGroup, len(years))
	for i, year := range years {
		groups[i] = YearGroup{Year: year, Lines: byYear[year]}
	}
	return years, groups
}
