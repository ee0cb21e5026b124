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

// Package kindred suggests articles similar to a set of exemplar articles and
// lines up the articles mentioning a term.
//
// An Engine wires a content store, a signature builder, a suggester and an
// aligner together. The store is either a local badger repository, which indexes
// annotation ids directly, or the remote content APIs reached through the
// upstream package.
//
//	engine, err := kindred.Open(kindred.WithLocalStore("/var/lib/kindred"))
//	if err != nil {
//		return err
//	}
//	defer engine.Close()
//	result, err := engine.Suggest(ctx, suggest.Request{ExemplarIDs: ids, DaysAfter: 7})
package kindred
