package reader

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

// ErrPoolClosed is returned by Borrow after the pool has been closed.
var ErrPoolClosed = errors.New("reader: pool closed")

// Pool hands out Readers over one shared source for concurrent random
// access (spec component A). In file-backed mode capacity is bounded to
// the reader pool size the caller configured and Borrow blocks
// on a weighted semaphore when exhausted, matching §4.1 and §5's
// blocking-on-semaphore suspension point. In memory mode capacity is 0,
// meaning unbounded: readers are cheap cursors created on demand.
type Pool struct {
	sem      *semaphore.Weighted // nil when unbounded
	newFn    func() (Reader, error)
	mu       sync.Mutex
	free     []Reader
	closed   bool
	capacity int
}

// NewPool creates a pool of at most capacity concurrently-borrowed
// readers, each produced by newFn. capacity <= 0 means unbounded.
func NewPool(capacity int, newFn func() (Reader, error)) *Pool {
	p := &Pool{newFn: newFn, capacity: capacity}
	if capacity > 0 {
		p.sem = semaphore.NewWeighted(int64(capacity))
	}
	return p
}

// Borrow acquires a Reader, blocking if the pool is bounded and
// exhausted. The context allows the caller to bound how long it will
// wait; a canceled context surfaces as ctx.Err().
func (p *Pool) Borrow(ctx context.Context) (Reader, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	p.mu.Unlock()

	if p.sem != nil {
		if err := p.sem.Acquire(ctx, 1); err != nil {
			return nil, fmt.Errorf("reader: acquire from pool: %w", err)
		}
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		if p.sem != nil {
			p.sem.Release(1)
		}
		return nil, ErrPoolClosed
	}
	var r Reader
	if n := len(p.free); n > 0 {
		r = p.free[n-1]
		p.free = p.free[:n-1]
	}
	p.mu.Unlock()

	if r != nil {
		return r, nil
	}

	r, err := p.newFn()
	if err != nil {
		if p.sem != nil {
			p.sem.Release(1)
		}
		return nil, fmt.Errorf("reader: create pooled reader: %w", err)
	}
	return r, nil
}

// Release returns a Reader to the pool. r must have been obtained from
// Borrow on this pool. Releasing after Close discards the reader.
func (p *Pool) Release(r Reader) {
	if r == nil {
		return
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		_ = r.Close()
		if p.sem != nil {
			p.sem.Release(1)
		}
		return
	}
	p.free = append(p.free, r)
	p.mu.Unlock()

	if p.sem != nil {
		p.sem.Release(1)
	}
}

// Close closes every idle reader and marks the pool closed. Readers
// currently borrowed are closed as they're released. Close is
// idempotent.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	free := p.free
	p.free = nil
	p.mu.Unlock()

	var firstErr error
	for _, r := range free {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Capacity returns the configured bound, or 0 for unbounded.
func (p *Pool) Capacity() int { return p.capacity }
