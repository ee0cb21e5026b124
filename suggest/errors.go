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

import "errors"

var (
	// ErrBuilderRequired is returned when a signature builder is not provided.
	ErrBuilderRequired = errors.New("signature builder required")

	// ErrStoreRequired is returned when a content store is not provided.
	ErrStoreRequired = errors.New("content store required")

	// ErrTranslatorRequired is returned when an identifier translator is not provided.
	ErrTranslatorRequired = errors.New("identifier translator required")

	// ErrUnknownRanking is returned for a ranking name that has no comparator.
	ErrUnknownRanking = errors.New("unknown ranking")

	// ErrExemplarSignature wraps failures to build the exemplar signature.
	ErrExemplarSignature = errors.New("could not build exemplar signature")
)
