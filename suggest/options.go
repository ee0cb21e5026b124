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
	"fmt"
	"log/slog"
	"time"
)

const (
	// DefaultExemplar is used when a request names no exemplars.
	DefaultExemplar = "2ebe9c54-d82e-11e7-a039-c64b1c09b482"

	// DefaultURLTemplate formats an article id into a link.
	DefaultURLTemplate = "https://www.ft.com/content/%s"

	// DefaultConcurrency is how many candidates are scored at once.
	DefaultConcurrency = 2
)

// Option configures a Suggester.
type Option func(*Suggester) error

// WithConcurrency sets how many candidates are scored at once.
// Default is 2.
func WithConcurrency(n int) Option {
	return func(s *Suggester) error {
		if n < 1 {
			return fmt.Errorf("concurrency must be at least 1, got %d", n)
		}
		s.concurrency = n
		return nil
	}
}

// WithTaskTimeout bounds each translation and candidate scoring task.
// Zero means no timeout.
func WithTaskTimeout(d time.Duration) Option {
	return func(s *Suggester) error {
		if d < 0 {
			return fmt.Errorf("task timeout cannot be negative, got %s", d)
		}
		s.taskTimeout = d
		return nil
	}
}

// WithDefaultExemplar sets the exemplar used when a request names none.
func WithDefaultExemplar(id string) Option {
	return func(s *Suggester) error {
		if id == "" {
			return fmt.Errorf("default exemplar cannot be empty")
		}
		s.defaultExemplar = id
		return nil
	}
}

// WithRanking sets the default ordering of suggestions.
// Default is ByScore.
func WithRanking(r Ranking) Option {
	return func(s *Suggester) error {
		if _, ok := comparators[r]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownRanking, r)
		}
		s.ranking = r
		return nil
	}
}

// WithURLTemplate sets the fmt template that turns an id into a URL.
// It must contain exactly one %s verb.
func WithURLTemplate(template string) Option {
	return func(s *Suggester) error {
		if template == "" {
			return fmt.Errorf("url template cannot be empty")
		}
		s.urlTemplate = template
		return nil
	}
}

// WithPageSize sets how many summaries each search page requests.
// Default is storage.DefaultPageSize.
func WithPageSize(n int) Option {
	return func(s *Suggester) error {
		if n < 1 {
			return fmt.Errorf("page size must be at least 1, got %d", n)
		}
		s.pageSize = n
		return nil
	}
}

// WithMaxDepth sets how many search pages are read at most.
// Default is storage.DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(s *Suggester) error {
		if n < 1 {
			return fmt.Errorf("max depth must be at least 1, got %d", n)
		}
		s.maxDepth = n
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Suggester) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}
