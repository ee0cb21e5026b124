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
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/kindred/core"
)

// excerptRadius is roughly how many bytes of context an excerpt keeps on each
// side of a match.
const excerptRadius = 100

// TermMatcher finds whole-word, case-insensitive occurrences of a term in
// articles, the way a term search narrows its matches.
type TermMatcher struct {
	pattern   *regexp.Regexp
	titleOnly bool
}

// NewTermMatcher returns a matcher for term, or nil when term is blank.
// A nil matcher matches every article.
func NewTermMatcher(term string, titleOnly bool) *TermMatcher {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}
	return &TermMatcher{
		pattern:   regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`),
		titleOnly: titleOnly,
	}
}

// Match reports whether article carries the term in its title, or in its
// title or text unless the matcher is title only. text is the article body
// with markup removed. The excerpt is the passage of text around the first
// match, or the title when only the title matched.
func (m *TermMatcher) Match(article *core.Article, text string) (excerpt string, ok bool) {
	if m == nil {
		return "", true
	}
	titleMatch := m.pattern.MatchString(article.Title)
	if m.titleOnly {
		return "", titleMatch
	}
	text = strings.Join(strings.Fields(text), " ")
	if loc := m.pattern.FindStringIndex(text); loc != nil {
		return Excerpt(text, loc), true
	}
	if titleMatch {
		return article.Title, true
	}
	return "", false
}

// Excerpt cuts text down to the words around loc, a [start, end) byte range,
// marking each cut with "...".
func Excerpt(text string, loc []int) string {
	from := max(loc[0]-excerptRadius, 0)
	to := min(loc[1]+excerptRadius, len(text))
	for from > 0 && !utf8.RuneStart(text[from]) {
		from++
	}
	for to < len(text) && !utf8.RuneStart(text[to]) {
		to--
	}

	prefix, suffix := "", ""
	if from > 0 {
		if i := strings.IndexByte(text[from:loc[0]], ' '); i >= 0 {
			from += i + 1
		}
		prefix = "..."
	}
	if to < len(text) {
		if i := strings.LastIndexByte(text[loc[1]:to], ' '); i >= 0 {
			to = loc[1] + i
		}
		suffix = "..."
	}
	return prefix + text[from:to] + suffix
}
