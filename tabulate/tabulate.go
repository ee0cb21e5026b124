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

package tabulate

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/poiesic/kindred/core"
	"github.com/poiesic/kindred/suggest"
)

// DefaultThreshold hides buckets worse than 0.3.
const DefaultThreshold = 0.3

const dayLayout = "2006-01-02"

// Bucket is a score bucket in tenths, 1 through 10.
type Bucket int

// Buckets lists every bucket, best first.
var Buckets = []Bucket{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}

// BucketOf returns the bucket a score falls into.
// Scores are compared in hundredths so that 0.7 lands in 0.7, not 0.8.
func BucketOf(score float64) Bucket {
	cents := int(math.Round(score * 100))
	tenths := (cents + 9) / 10
	switch {
	case tenths < 1:
		return 1
	case tenths > 10:
		return 10
	}
	return Bucket(tenths)
}

// Value returns the bucket as a score.
func (b Bucket) Value() float64 {
	return float64(b) / 10
}

func (b Bucket) String() string {
	return strconv.FormatFloat(b.Value(), 'f', 1, 64)
}

// MarshalJSON encodes the bucket as its score.
func (b Bucket) MarshalJSON() ([]byte, error) {
	return []byte(b.String()), nil
}

// Example is one exemplar article.
type Example struct {
	Title string `json:"title"`
	ID    string `json:"id"`
	URL   string `json:"url"`
}

// Given summarizes the exemplars for display.
type Given struct {
	Score       float64   `json:"score"`
	RangeInDays float64   `json:"rangeInDays"`
	Examples    []Example `json:"examples"`
}

// Row holds one publish day. Cells line up with Table.Buckets.
type Row struct {
	Day   string                 `json:"date"`
	Cells [][]suggest.Suggestion `json:"buckets"`
}

// Table is the tabulated form of a suggest.Result.
type Table struct {
	Days             []string `json:"knownDates"`
	Buckets          []Bucket `json:"knownBuckets"`
	Rows             []Row    `json:"tabulatedSuggestions"`
	Given            Given    `json:"given"`
	RangeDescription string   `json:"rangeDescription"`
}

// Tabulate buckets result by publish day and score.
// Days are UTC dates in ascending order; buckets run best first. Suggestions
// keep their ranked order inside a cell.
func Tabulate(result *suggest.Result, threshold float64) (*Table, error) {
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) || threshold < 0 {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidScoreThreshold, threshold)
	}

	byDay := map[string]map[Bucket][]suggest.Suggestion{}
	var best Bucket
	for _, s := range result.Suggestions {
		day := s.Published.UTC().Format(dayLayout)
		b := BucketOf(s.Score)
		best = max(best, b)

		cells, ok := byDay[day]
		if !ok {
			cells = map[Bucket][]suggest.Suggestion{}
			byDay[day] = cells
		}
		cells[b] = append(cells[b], s)
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	slices.Sort(days)

	// threshold and buckets compared in hundredths
	minCents := min(int(math.Round(threshold*100)), int(best)*10)
	var kept []Bucket
	for _, b := range Buckets {
		if int(b)*10 >= minCents {
			kept = append(kept, b)
		}
	}

	rows := make([]Row, len(days))
	for i, day := range days {
		cells := make([][]suggest.Suggestion, len(kept))
		for j, b := range kept {
			cells[j] = byDay[day][b]
			if cells[j] == nil {
				cells[j] = []suggest.Suggestion{}
			}
		}
		rows[i] = Row{Day: day, Cells: cells}
	}

	return &Table{
		Days:             days,
		Buckets:          kept,
		Rows:             rows,
		Given:            summarize(result),
		RangeDescription: describe(result),
	}, nil
}

func summarize(result *suggest.Result) Given {
	g := result.Given
	examples := make([]Example, len(g.IDs))
	for i, id := range g.IDs {
		examples[i] = Example{ID: id}
		if i < len(g.Titles) {
			examples[i].Title = g.Titles[i]
		}
		if i < len(g.URLs) {
			examples[i].URL = g.URLs[i]
		}
	}
	return Given{
		Score:       math.Round(g.Score*100) / 100,
		RangeInDays: math.Round(g.Range.Days()*10) / 10,
		Examples:    examples,
	}
}

func describe(result *suggest.Result) string {
	before := wholeDays(result.Window.Earliest.Sub(result.Given.Range.Earliest))
	after := wholeDays(result.Window.Latest.Sub(result.Given.Range.Latest))
	if before == 0 && after == 0 {
		return "BETWEEN the dates of the exemplar articles"
	}
	return fmt.Sprintf("BETWEEN the dates of the exemplar articles, widened by %d days before and %d days after", before, after)
}

func wholeDays(d time.Duration) int {
	return int(math.Abs(math.Round(d.Hours() / 24)))
}
