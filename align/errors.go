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

import "errors"

var (
	// ErrStoreRequired is returned when NewAligner gets no content store.
	ErrStoreRequired = errors.New("content store required")

	// ErrUnknownSortBy is returned for a sort name with no comparator.
	ErrUnknownSortBy = errors.New("unknown sort")

	// ErrUnknownSource is returned for a source name other than all or title.
	ErrUnknownSource = errors.New("unknown source")

	// ErrInvalidYear is returned for a year outside 1..9999.
	ErrInvalidYear = errors.New("invalid year")
)
