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


package signature

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const tagBody = `(?:[^"'>]|"[^"]*"|'[^']*')*`

// tagOrComment matches one tag, one comment, or a whole script/style element.
var tagOrComment = regexp.MustCompile(`(?i)<(?:` +
	`!--(?:(?:-*[^>\-])*--+|-?)` +
	`|script\b` + tagBody + `>[\s\S]*?</script\s*` +
	`|style\b` + tagBody + `>[\s\S]*?</style\s*` +
	`|/?[a-z]` + tagBody +
	`)>`)

var (
	nonWordChars       = regexp.MustCompile(`[^a-z’é\-]`)
	trailingApostrophe = regexp.MustCompile(`’\s`)
)

// StripTags removes markup from html. Removal repeats until nothing matches,
// so tags reassembled by an earlier pass are removed too. Any remaining '<'
// is escaped.
func StripTags(html string) string {
	for {
		stripped := tagOrComment.ReplaceAllString(html, "")
		if stripped == html {
			break
		}
		html = stripped
	}
	return strings.ReplaceAll(html, "<", "&lt;")
}

// Tokenize normalizes already stripped text into lowercase word tokens.
func Tokenize(text string) []string {
	s := strings.ToLower(text)
	s = nonWordChars.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "’s", "")
	s = trailingApostrophe.ReplaceAllString(s, " ")
	return strings.Fields(s)
}

// WordStats is the frequency profile of a text.
type WordStats struct {
	TotalChars         int // after markup removal
	Words              int
	UniqueWords        int
	UniqueNonStopWords int
	The                int // occurrences of "the"

	// Vocabulary holds the distinct non-stopwords, sorted.
	Vocabulary []string

	// ByFrequency[i] holds the non-stopwords occurring i+1 times, sorted.
	ByFrequency [][]string
}

// ComputeWordStats strips markup from body and profiles what remains.
func ComputeWordStats(body string) WordStats {
	text := StripTags(body)
	words := Tokenize(text)

	counts := make(map[string]int, len(words))
	for _, w := range words {
		counts[w]++
	}

	vocabulary := make([]string, 0, len(counts))
	maxCount := 0
	for w, n := range counts {
		if IsStopWord(w) {
			continue
		}
		vocabulary = append(vocabulary, w)
		maxCount = max(maxCount, n)
	}
	sort.Strings(vocabulary)

	byFrequency := make([][]string, maxCount)
	for _, w := range vocabulary {
		n := counts[w]
		byFrequency[n-1] = append(byFrequency[n-1], w)
	}

	return WordStats{
		TotalChars:         utf8.RuneCountInString(text),
		Words:              len(words),
		UniqueWords:        len(counts),
		UniqueNonStopWords: len(vocabulary),
		The:                counts["the"],
		Vocabulary:         vocabulary,
		ByFrequency:        byFrequency,
	}
}
