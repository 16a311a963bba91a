// Package cache defines the pluggable bounded cache abstraction that
// sits in front of large, lazily-loaded entity lists (§4.6), plus the
// default LRU implementation.
package cache

import (
	"context"
	"errors"
)

// ErrConfig is returned when a cache override names a slot with a cache
// whose key or value type cannot satisfy the slot it was assigned to.
// The dataset assembler surfaces this as a configuration error rather
// than a panic, since overrides come from caller-supplied wiring.
var ErrConfig = errors.New("cache: incompatible cache for slot")

// Loader produces the value for a key that missed the cache. Get does
// not deduplicate concurrent misses for the same key, so a Loader may
// have several in-flight invocations for one key, matching the
// underlying entity loaders which tolerate a redundant re-read (§4.5
// edge cases).
type Loader[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Cache is a generic bounded cache keyed by K holding values of type V.
// Get retrieves an existing entry or invokes load to populate one.
type Cache[K comparable, V any] interface {
	Get(ctx context.Context, key K, load Loader[K, V]) (V, error)
	// Put installs a value that was computed outside of Get, for kinds
	// that resolve through a separate write-behind path (§4.5's
	// put-cache variant). Implementations that never receive external
	// puts may treat this as a no-op.
	Put(key K, value V)
	Stats() Stats
	Close() error
}

// Stats reports cumulative cache counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
}
