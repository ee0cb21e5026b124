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

// Package tabulate lays suggestions out as a grid of publish days against
// score buckets for display.
//
// Buckets are tenths from 1.0 down to 0.1. A score falls into the smallest
// bucket not below it, so 0.71 lands in 0.8 and 0 lands in 0.1. Only buckets
// at or above a threshold are kept, unless no suggestion reaches the
// threshold, in which case the threshold drops to the best bucket present.
package tabulate
