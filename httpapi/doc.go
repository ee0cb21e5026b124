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

// Package httpapi exposes suggestions and term alignment over HTTP.
//
// Routes:
//
//	GET    /articles/suggest            ranked suggestions as JSON
//	GET    /articles/suggest/tabulated  suggestions plus the day by bucket grid
//	GET    /articles/align              matches for a term split around it
//	GET    /articles/search             one page of matches for a term
//	GET    /stats                       upstream request metrics
//	DELETE /stats                       reset upstream request metrics
//	GET    /health                      liveness
//
// Suggestion routes take ids (comma separated exemplar ids), daysBefore,
// daysAfter and ranking; the tabulated route also takes threshold. Term routes
// take term, year and source (all or title); align also takes sortBy
// (position, pre or post).
package httpapi
