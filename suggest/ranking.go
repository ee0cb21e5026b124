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
	"cmp"
	"fmt"
	"strings"
)

// Ranking selects how suggestions are ordered.
type Ranking int

const (
	// ByScore orders by score, highest first.
	ByScore Ranking = iota
	// ByDate orders by publish date, newest first.
	ByDate
	// ByTitle orders alphabetically by title.
	ByTitle
)

var rankingNames = map[Ranking]string{
	ByScore: "score",
	ByDate:  "date",
	ByTitle: "title",
}

// comparators end with an id comparison so equal keys always order the same way.
var comparators = map[Ranking]func(a, b Suggestion) int{
	ByScore: func(a, b Suggestion) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	},
	ByDate: func(a, b Suggestion) int {
		if c := b.Published.Compare(a.Published); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	},
	ByTitle: func(a, b Suggestion) int {
		if c := strings.Compare(a.Title, b.Title); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	},
}

func (r Ranking) String() string {
	if name, ok := rankingNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Ranking(%d)", int(r))
}

// Compare orders two suggestions under r.
func (r Ranking) Compare(a, b Suggestion) int {
	fn, ok := comparators[r]
	if !ok {
		fn = comparators[ByScore]
	}
	return fn(a, b)
}

// ParseRanking maps a ranking name to its Ranking. An empty name is ByScore.
func ParseRanking(name string) (Ranking, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ByScore, nil
	}
	for r, n := range rankingNames {
		if n == name {
			return r, nil
		}
	}
	return ByScore, fmt.Errorf("%w: %q", ErrUnknownRanking, name)
}
