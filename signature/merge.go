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
	"sort"
	"strings"

	"github.com/poiesic/kindred/core"
)

// MergedDescription is the score description of a merged signature.
const MergedDescription = "mean of annotation and word overlap"

// Merge combines sigs into a new signature holding only what every input
// shares.
//
// For each predicate in the union, the ratio is the number of annotation ids
// present under it in every input divided by the average count of ids under it
// across all inputs. The annotation score is the mean of those ratios. The word
// score is the count of words in every vocabulary divided by the average
// vocabulary size. The final score is the mean of the two.
//
// A term whose denominator is zero is left out of its mean. If both terms drop
// out the score is zero.
//
// Merging fewer than two signatures returns the single input, or nil.
func Merge(sigs ...*Signature) *Signature {
	switch len(sigs) {
	case 0:
		return nil
	case 1:
		return sigs[0]
	}

	merged := &Signature{
		Key:         mergeKey(sigs),
		Sources:     append([]*Signature(nil), sigs...),
		ByPredicate: map[string]map[string]string{},
		ByID:        map[string]core.Annotation{},
	}
	details := &ScoreDetails{PredicateRatios: map[string]float64{}}

	mergeAnnotations(sigs, merged, details)
	mergeWords(sigs, merged, details)

	var total float64
	terms := 0
	if details.HasAnnotationScore {
		total += details.AnnotationScore
		terms++
	}
	if details.HasWordScore {
		total += details.WordScore
		terms++
	}
	amount := 0.0
	if terms > 0 {
		amount = total / float64(terms)
	}

	merged.Score = Score{
		Amount:      amount,
		Description: MergedDescription,
		Details:     details,
	}
	return merged
}

func mergeAnnotations(sigs []*Signature, merged *Signature, details *ScoreDetails) {
	n := float64(len(sigs))
	union := map[string]struct{}{}
	for _, s := range sigs {
		for pred := range s.ByPredicate {
			union[pred] = struct{}{}
		}
	}
	predicates := make([]string, 0, len(union))
	for pred := range union {
		predicates = append(predicates, pred)
	}
	sort.Strings(predicates)
	details.Predicates = predicates

	var sum float64
	for _, pred := range predicates {
		total := 0
		inAll := true
		for _, s := range sigs {
			ids, ok := s.ByPredicate[pred]
			if !ok {
				inAll = false
			}
			total += len(ids)
		}
		if total == 0 {
			continue
		}
		avg := float64(total) / n

		overlap := 0
		if inAll {
			overlap = intersectPredicate(sigs, pred, merged)
		}
		ratio := float64(overlap) / avg
		details.PredicateRatios[pred] = ratio
		sum += ratio
	}

	if len(details.PredicateRatios) > 0 {
		details.HasAnnotationScore = true
		details.AnnotationScore = sum / float64(len(details.PredicateRatios))
	}
}

// intersectPredicate records in merged the ids present under pred in every
// input and returns how many there were.
func intersectPredicate(sigs []*Signature, pred string, merged *Signature) int {
	first := sigs[0]
	shared := map[string]string{}
	for id, label := range first.ByPredicate[pred] {
		everywhere := true
		for _, s := range sigs[1:] {
			if _, ok := s.ByPredicate[pred][id]; !ok {
				everywhere = false
				break
			}
		}
		if !everywhere {
			continue
		}
		shared[id] = label
		if a, ok := first.ByID[id]; ok {
			merged.ByID[id] = a
		}
	}
	if len(shared) > 0 {
		merged.ByPredicate[pred] = shared
	}
	return len(shared)
}

func mergeWords(sigs []*Signature, merged *Signature, details *ScoreDetails) {
	seen := map[string]int{}
	total := 0
	details.VocabularySizes = make([]int, 0, len(sigs))
	for _, s := range sigs {
		size := len(s.Words.Vocabulary)
		details.VocabularySizes = append(details.VocabularySizes, size)
		total += size
		for _, w := range s.Words.Vocabulary {
			seen[w]++
		}
	}

	shared := make([]string, 0)
	for w, count := range seen {
		if count == len(sigs) {
			shared = append(shared, w)
		}
	}
	sort.Strings(shared)

	merged.Words = WordStats{
		UniqueNonStopWords: len(shared),
		Vocabulary:         shared,
	}
	details.OverlappingWords = len(shared)

	if total == 0 {
		return
	}
	avg := float64(total) / float64(len(sigs))
	details.HasWordScore = true
	details.WordScore = float64(len(shared)) / avg
}

func mergeKey(sigs []*Signature) string {
	ids := make([]string, 0, len(sigs))
	for _, s := range sigs {
		ids = append(ids, s.IDs()...)
	}
	return Key(ids)
}

// Key returns the cache key for a set of article ids: sorted and comma joined.
func Key(ids []string) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}
