package list

import (
	"context"
	"fmt"

	"github.com/gopattern/patternset/cache"
	"github.com/gopattern/patternset/entity"
	"github.com/gopattern/patternset/internal/reader"
)

// EntityLoader materializes the record identified by k, applying
// whatever caching policy it was built with (§4.5).
type EntityLoader[T any] interface {
	Load(ctx context.Context, k int) (T, error)
}

// OffsetFunc maps a caller-visible key to the absolute byte offset of
// its record within the source. Fixed-length sections multiply k by the
// record size; variable-length sections treat k as already being an
// offset relative to the section start.
type OffsetFunc func(k int) int64

// rawLoader borrows a reader from the pool, seeks to the record, and
// invokes the factory. Every call owns its own reader, so it is safe
// under unbounded concurrent callers (§4.5's direct variant).
type rawLoader[T any] struct {
	pool    *reader.Pool
	res     entity.Resolver
	factory entity.Factory[T]
	offset  OffsetFunc
}

func newRawLoader[T any](pool *reader.Pool, res entity.Resolver, factory entity.Factory[T], offset OffsetFunc) *rawLoader[T] {
	return &rawLoader[T]{pool: pool, res: res, factory: factory, offset: offset}
}

func (l *rawLoader[T]) Load(ctx context.Context, k int) (T, error) {
	var zero T
	rd, err := l.pool.Borrow(ctx)
	if err != nil {
		return zero, fmt.Errorf("list: borrow reader for record %d: %w", k, err)
	}
	defer l.pool.Release(rd)

	if err := rd.Seek(l.offset(k)); err != nil {
		return zero, fmt.Errorf("list: seek to record %d: %w", k, err)
	}
	v, err := l.factory.Create(l.res, k, rd)
	if err != nil {
		return zero, fmt.Errorf("list: create record %d: %w", k, err)
	}
	return v, nil
}

// DirectLoader always re-materializes k from the source; there is no
// caching layer between the caller and the reader pool.
type DirectLoader[T any] struct {
	raw *rawLoader[T]
}

// NewDirectLoader builds an uncached loader.
func NewDirectLoader[T any](pool *reader.Pool, res entity.Resolver, factory entity.Factory[T], offset OffsetFunc) *DirectLoader[T] {
	return &DirectLoader[T]{raw: newRawLoader(pool, res, factory, offset)}
}

func (l *DirectLoader[T]) Load(ctx context.Context, k int) (T, error) {
	return l.raw.Load(ctx, k)
}

// LRULoader materializes through a cache.Cache, whose Get owns the
// miss path via the supplied loader callback. A miss under contention
// may run the raw load twice; the cache accepts whichever result wins
// the race to Put (§4.5, edge case 5).
type LRULoader[T any] struct {
	raw   *rawLoader[T]
	cache cache.Cache[int, T]
}

// NewLRULoader builds a loader backed by an injected cache.
func NewLRULoader[T any](pool *reader.Pool, res entity.Resolver, factory entity.Factory[T], offset OffsetFunc, c cache.Cache[int, T]) *LRULoader[T] {
	return &LRULoader[T]{raw: newRawLoader(pool, res, factory, offset), cache: c}
}

func (l *LRULoader[T]) Load(ctx context.Context, k int) (T, error) {
	return l.cache.Get(ctx, k, l.raw.Load)
}

// PutCache is the narrower shape expected of a caller-supplied,
// write-through cache: a plain check that never itself triggers a
// load, plus an explicit Put for the caller to populate on miss. This
// is the two-step "put-cache" variant (§4.5, variant 3), distinct from
// the LRU-cached variant's loader-owning cache.Cache.
type PutCache[K comparable, V any] interface {
	Get(ctx context.Context, key K) (value V, ok bool, err error)
	Put(key K, value V)
}

// PutCacheLoader performs an explicit check-then-load-then-put sequence
// against a caller-supplied PutCache.
type PutCacheLoader[T any] struct {
	raw   *rawLoader[T]
	cache PutCache[int, T]
}

// NewPutCacheLoader builds a loader backed by a caller-supplied
// write-through cache.
func NewPutCacheLoader[T any](pool *reader.Pool, res entity.Resolver, factory entity.Factory[T], offset OffsetFunc, c PutCache[int, T]) *PutCacheLoader[T] {
	return &PutCacheLoader[T]{raw: newRawLoader(pool, res, factory, offset), cache: c}
}

func (l *PutCacheLoader[T]) Load(ctx context.Context, k int) (T, error) {
	if v, ok, err := l.cache.Get(ctx, k); err != nil {
		var zero T
		return zero, fmt.Errorf("list: put-cache lookup for record %d: %w", k, err)
	} else if ok {
		return v, nil
	}

	v, err := l.raw.Load(ctx, k)
	if err != nil {
		var zero T
		return zero, err
	}
	l.cache.Put(k, v)
	return v, nil
}
