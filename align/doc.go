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


// Package align lines up articles on a search term.
//
// An Aligner searches a content store for a term, optionally only in titles
// and only within one publication year, pages deeper through the results and
// splits each matching text into the words before the term, the term itself
// and the words after it:
//
//	term -> paged term search -> split pre | term | post -> sort -> group by year
//
// The lines can then be sorted by position, so the term forms one column, or
// by the words before or after it.
package align
