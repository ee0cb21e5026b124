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

import "errors"

// Errors shared by every collaborator of the suggestion engine.
var (
	// ErrNotFound indicates that an article id is unknown to the content store.
	ErrNotFound = errors.New("article not found")

	// ErrUpstreamUnavailable indicates a network, status or decode failure talking to a collaborator.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrInvalidScoreThreshold indicates a threshold that is not a non-negative number.
	ErrInvalidScoreThreshold = errors.New("invalid score threshold")

	// ErrInvalidArticle indicates an Article failed validation.
	ErrInvalidArticle = errors.New("invalid article")

	// ErrInvalidWindow indicates negative daysBefore or daysAfter values.
	ErrInvalidWindow = errors.New("invalid date window")

	// ErrEmptyID indicates an article or annotation id is empty.
	ErrEmptyID = errors.New("id cannot be empty")

	// ErrMissingPublishDate indicates an article has no publish date.
	ErrMissingPublishDate = errors.New("publish date cannot be zero")
)
