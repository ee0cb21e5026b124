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


package cache

import (
	"errors"

	"github.com/dgraph-io/ristretto/v2"
)

// DefaultCapacity is the number of entries a Bounded cache holds by default.
const DefaultCapacity = 10000

var (
	// ErrInvalidCapacity is returned when a cache is created with capacity < 1.
	ErrInvalidCapacity = errors.New("cache capacity must be greater than 0")

	// ErrCacheRequired is returned when a nil cache is supplied.
	ErrCacheRequired = errors.New("cache required")
)

// Cache is the read/write contract consumed by the engine and its collaborators.
// Implementations must be safe for concurrent use.
type Cache[V any] interface {
	// Read returns the value stored under key, if any.
	Read(key string) (V, bool)

	// Write stores value under key. A later Read of the same key observes it
	// unless the entry has been evicted.
	Write(key string, value V)

	// Close releases resources. The cache must not be used afterwards.
	Close()
}

// Bounded is a fixed-capacity Cache where every entry costs 1.
type Bounded[V any] struct {
	store    *ristretto.Cache[string, V]
	capacity int
}

var _ Cache[int] = (*Bounded[int])(nil)

// NewBounded creates a cache holding at most capacity entries.
func NewBounded[V any](capacity int) (*Bounded[V], error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	store, err := ristretto.NewCache(&ristretto.Config[string, V]{
		NumCounters:        int64(capacity) * 10, // ristretto recommends 10x the expected item count
		MaxCost:            int64(capacity),
		BufferItems:        64,
		IgnoreInternalCost: true,
		Metrics:            true,
	})
	if err != nil {
		return nil, err
	}
	return &Bounded[V]{store: store, capacity: capacity}, nil
}

// Read returns the cached value for key.
func (b *Bounded[V]) Read(key string) (V, bool) {
	return b.store.Get(key)
}

// Write stores value under key and waits until the write is applied,
// so the next Read on any goroutine sees it.
func (b *Bounded[V]) Write(key string, value V) {
	b.store.Set(key, value, 1)
	b.store.Wait()
}

// Capacity returns the configured entry limit.
func (b *Bounded[V]) Capacity() int {
	return b.capacity
}

// Stats returns the hit and miss counters accumulated since creation.
func (b *Bounded[V]) Stats() (hits, misses uint64) {
	if b.store.Metrics == nil {
		return 0, 0
	}
	return b.store.Metrics.Hits(), b.store.Metrics.Misses()
}

// Close releases the ristretto goroutines.
func (b *Bounded[V]) Close() {
	b.store.Close()
}
