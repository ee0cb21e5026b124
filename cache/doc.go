// Package cache provides the process-lifetime key/value store used to avoid
// recomputing signatures and re-issuing identical upstream calls.
//
// Values are treated as pure functions of their keys: there is no invalidation,
// only capacity-driven eviction. Bounded is backed by ristretto, which admits
// new entries through a TinyLFU filter and evicts by sampled LFU once the
// configured capacity is reached.
package cache
