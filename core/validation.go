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


package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValidateArticle validates an Article before it is stored.
//
// Validation rules:
//   - ID must not be empty
//   - Published must not be zero
//   - every annotation must have an ID and a Predicate
//
// Title and BodyXML may be empty; an empty body simply yields an empty vocabulary.
func ValidateArticle(article *Article) error {
	if article == nil {
		return fmt.Errorf("%w: article is nil", ErrInvalidArticle)
	}
	if strings.TrimSpace(article.ID) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidArticle, ErrEmptyID)
	}
	if article.Published.IsZero() {
		return fmt.Errorf("%w: %s: %w", ErrInvalidArticle, article.ID, ErrMissingPublishDate)
	}
	for i, a := range article.Annotations {
		if a.ID == "" {
			return fmt.Errorf("%w: %s: annotation %d: %w", ErrInvalidArticle, article.ID, i, ErrEmptyID)
		}
		if a.Predicate == "" {
			return fmt.Errorf("%w: %s: annotation %s has no predicate", ErrInvalidArticle, article.ID, a.ID)
		}
	}
	return nil
}

// MaxWindowDays is the largest widening accepted on either side of the
// exemplar date range.
const MaxWindowDays = 36600

// ValidateWindow checks the day offsets used to widen the exemplar date range.
// Each must lie in [0, MaxWindowDays].
func ValidateWindow(daysBefore, daysAfter int) error {
	if daysBefore < 0 || daysBefore > MaxWindowDays {
		return fmt.Errorf("%w: daysBefore %d (must be 0..%d)", ErrInvalidWindow, daysBefore, MaxWindowDays)
	}
	if daysAfter < 0 || daysAfter > MaxWindowDays {
		return fmt.Errorf("%w: daysAfter %d (must be 0..%d)", ErrInvalidWindow, daysAfter, MaxWindowDays)
	}
	return nil
}

// ParseScoreThreshold parses a user supplied threshold.
// An empty string yields def. Anything that is not a finite, non-negative
// number is rejected with ErrInvalidScoreThreshold.
func ParseScoreThreshold(s string, def float64) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidScoreThreshold, s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidScoreThreshold, s)
	}
	return v, nil
}
