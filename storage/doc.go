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


// Package storage defines the content collaborators consumed by the
// suggestion engine.
//
// # Architecture
//
//   - ContentStore: fetches full articles and searches article summaries by
//     annotation and publish date
//   - IdentifierTranslator: maps annotation ids to the ids a ContentStore's
//     search understands
//   - ArticleRepository: a writeable ContentStore kept locally
//
// Two implementations ship with the module: the badger subpackage keeps
// articles locally, and the upstream package talks to the remote content and
// search APIs.
//
// # Pagination
//
// Search returns one page at a time. SearchAll walks the pages until the
// reported total is reached, a page comes back empty, or a depth cap is hit.
//
// # Usage
//
// Use in tests with in-memory storage:
//
//	repo, err := badger.NewMemoryRepository()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repo.Close()
//
// # Thread Safety
//
// All implementations must be safe for concurrent use.
package storage
