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

// Package suggest finds articles similar to a set of exemplars.
//
// A Suggester builds the combined signature of the exemplars, derives a
// publish-date window from it, discovers candidates that share at least one
// annotation inside that window and scores every candidate independently
// against the exemplars:
//
//	exemplars -> signature -> legacy ids -> paged search -> per-candidate merge -> ranking
//
// Candidate scoring runs through a bounded runner. A candidate that cannot be
// scored is left out; only a failure to build the exemplar signature fails the
// whole request.
package suggest
