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


package upstream

import (
	"errors"
	"fmt"

	"github.com/poiesic/kindred/core"
)

var (
	// ErrConfigRequired is returned when a Client is created without a Config.
	ErrConfigRequired = errors.New("upstream config required")

	// ErrInvalidMaxAttempts is returned when retry is called with maxAttempts <= 0.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrNoAnnotations is returned by Search when the query has neither
	// annotation ids nor a term.
	ErrNoAnnotations = errors.New("search needs at least one annotation id or a term")
)

// StatusError is a non-2xx HTTP response.
// A 404 matches core.ErrNotFound, anything else core.ErrUpstreamUnavailable.
type StatusError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Method, e.Endpoint, e.Status)
}

func (e *StatusError) Unwrap() error {
	if e.StatusCode == 404 {
		return core.ErrNotFound
	}
	return core.ErrUpstreamUnavailable
}

// Retryable reports whether the request may succeed if repeated.
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= 500
}

// DecodeError is a response body that could not be parsed.
// It matches core.ErrUpstreamUnavailable as well as the underlying error.
type DecodeError struct {
	Endpoint string
	Query    string
	Raw      string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s response for %q: %v", e.Endpoint, e.Query, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{e.Err, core.ErrUpstreamUnavailable}
}
