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
	"fmt"
	"log/slog"
	"strings"
)

const (
	// DefaultTerm is aligned when a request names no term.
	DefaultTerm = "brexit"

	// DefaultURLTemplate formats an article id into a link.
	DefaultURLTemplate = "https://www.ft.com/content/%s"
)

// Option configures an Aligner.
type Option func(*Aligner) error

// WithDefaultTerm sets the term used when a request names none.
func WithDefaultTerm(term string) Option {
	return func(a *Aligner) error {
		term = strings.TrimSpace(term)
		if term == "" {
			return fmt.Errorf("default term cannot be empty")
		}
		a.defaultTerm = term
		return nil
	}
}

// WithSortBy sets the default ordering of aligned lines.
// Default is ByPosition.
func WithSortBy(s SortBy) Option {
	return func(a *Aligner) error {
		if _, ok := comparators[s]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownSortBy, s)
		}
		a.sortBy = s
		return nil
	}
}

// WithSource sets the default text that is aligned.
// Default is SourceAll.
func WithSource(s Source) Option {
	return func(a *Aligner) error {
		if _, ok := sourceNames[s]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownSource, s)
		}
		a.source = s
		return nil
	}
}

// WithURLTemplate sets the fmt template that turns an id into a URL.
func WithURLTemplate(template string) Option {
	return func(a *Aligner) error {
		if template == "" {
			return fmt.Errorf("url template cannot be empty")
		}
		a.urlTemplate = template
		return nil
	}
}

// WithPageSize sets how many summaries each search page requests.
// Default is storage.DefaultPageSize.
func WithPageSize(n int) Option {
	return func(a *Aligner) error {
		if n < 1 {
			return fmt.Errorf("page size must be at least 1, got %d", n)
		}
		a.pageSize = n
		return nil
	}
}

// WithMaxDepth sets how many search pages are read at most.
// Default is storage.DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(a *Aligner) error {
		if n < 1 {
			return fmt.Errorf("max depth must be at least 1, got %d", n)
		}
		a.maxDepth = n
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aligner) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}
