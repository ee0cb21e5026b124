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
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// SortBy selects how aligned lines are ordered.
type SortBy int

const (
	// ByPosition puts the longest lead-in first so the term lines up in one
	// column, then orders by the lead-in and the tail.
	ByPosition SortBy = iota
	// ByPre orders by the words before the term, read from the term outwards.
	ByPre
	// ByPost orders by the words after the term.
	ByPost
)

var sortNames = map[SortBy]string{
	ByPosition: "position",
	ByPre:      "pre",
	ByPost:     "post",
}

// comparators end with an id comparison so equal keys always order the same way.
var comparators = map[SortBy]func(a, b Line) int{
	ByPosition: func(a, b Line) int {
		if c := cmp.Compare(utf8.RuneCountInString(b.Pre), utf8.RuneCountInString(a.Pre)); c != 0 {
			return c
		}
		if c := strings.Compare(strings.ToLower(a.Pre), strings.ToLower(b.Pre)); c != 0 {
			return c
		}
		if c := cmp.Compare(utf8.RuneCountInString(a.Post), utf8.RuneCountInString(b.Post)); c != 0 {
			return c
		}
		if c := strings.Compare(strings.ToLower(a.Post), strings.ToLower(b.Post)); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	},
	ByPre: func(a, b Line) int {
		if c := strings.Compare(reversedWords(b.Pre), reversedWords(a.Pre)); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	},
	ByPost: func(a, b Line) int {
		if c := strings.Compare(strings.ToLower(b.Post), strings.ToLower(a.Post)); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	},
}

// reversedWords lowercases s and reverses its space separated words, so the
// word nearest the term sorts first.
func reversedWords(s string) string {
	words := strings.Split(strings.ToLower(s), " ")
	slices.Reverse(words)
	return strings.Join(words, " ")
}

func (s SortBy) String() string {
	if name, ok := sortNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SortBy(%d)", int(s))
}

// MarshalText encodes s as its name.
func (s SortBy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Compare orders two lines under s. An unknown s orders by position.
func (s SortBy) Compare(a, b Line) int {
	fn, ok := comparators[s]
	if !ok {
		fn = comparators[ByPosition]
	}
	return fn(a, b)
}

// ParseSortBy maps a sort name to its SortBy. An empty name is ByPosition.
func ParseSortBy(name string) (SortBy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ByPosition, nil
	}
	for s, n := range sortNames {
		if n == name {
			return s, nil
		}
	}
	return ByPosition, fmt.Errorf("%w: %q", ErrUnknownSortBy, name)
}

// SortNames lists every sort name in SortBy order.
func SortNames() []string {
	return []string{ByPosition.String(), ByPre.String(), ByPost.String()}
}

// Source selects which text of an article is aligned.
type Source int

const (
	// SourceAll matches the term anywhere and aligns the search excerpt.
	SourceAll Source = iota
	// SourceTitle matches and aligns titles only.
	SourceTitle
)

var sourceNames = map[Source]string{
	SourceAll:   "all",
	SourceTitle: "title",
}

func (s Source) String() string {
	if name, ok := sourceNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Source(%d)", int(s))
}

// MarshalText encodes s as its name.
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseSource maps a source name to its Source. An empty name is SourceAll.
func ParseSource(name string) (Source, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return SourceAll, nil
	}
	for s, n := range sourceNames {
		if n == name {
			return s, nil
		}
	}
	return SourceAll, fmt.Errorf("%w: %q", ErrUnknownSource, name)
}

// SourceNames lists every source name in Source order.
func SourceNames() []string {
	return []string{SourceAll.String(), SourceTitle.String()}
}
