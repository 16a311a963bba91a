package list

import (
	"context"
	"fmt"
	"sync"

	"github.com/bits-and-blooms/bitset"

	"github.com/gopattern/patternset/entity"
)

// StreamList is a lazy, randomly-addressable view over a section that is
// too large to hold resident (§4.4). Every Get delegates to an
// EntityLoader, which decides whether to hit a cache or always
// re-materialize from the reader pool.
type StreamList[T any] struct {
	loader     EntityLoader[T]
	count      int
	varFactory entity.VariableFactory[T] // non-nil for variable-length sections

	visitMu sync.Mutex
	visited *bitset.BitSet // ordinal positions an Iterator has walked, lazily allocated
}

// mark records that ordinal position pos (0..count-1) has been walked by
// some iterator, for the Coverage diagnostic. It is not consulted by Get
// or Load and so never affects the hot path.
func (l *StreamList[T]) mark(pos int) {
	if pos < 0 || pos >= l.count {
		return
	}
	l.visitMu.Lock()
	defer l.visitMu.Unlock()
	if l.visited == nil {
		l.visited = bitset.New(uint(l.count))
	}
	l.visited.Set(uint(pos))
}

// Coverage reports how many of the section's count records have been
// walked by an Iterator so far across the list's lifetime, out of the
// total. It is a diagnostic for test and ops tooling that wants to
// confirm a full sweep actually touched every record; nothing on the
// read path depends on it.
func (l *StreamList[T]) Coverage() (visited int, total int) {
	l.visitMu.Lock()
	defer l.visitMu.Unlock()
	if l.visited == nil {
		return 0, l.count
	}
	return int(l.visited.Count()), l.count
}

// NewFixedStreamList builds a StreamList over a fixed-length section. k
// passed to Get is a sequential 0..count-1 record index.
func NewFixedStreamList[T any](loader EntityLoader[T], count int) *StreamList[T] {
	return &StreamList[T]{loader: loader, count: count}
}

// NewVariableStreamList builds a StreamList over a variable-length
// section. k passed to Get is the byte offset of the record relative to
// the section start. factory is used only to size records while
// iterating; Get itself never needs it.
func NewVariableStreamList[T any](loader EntityLoader[T], count int, factory entity.VariableFactory[T]) *StreamList[T] {
	return &StreamList[T]{loader: loader, count: count, varFactory: factory}
}

func (l *StreamList[T]) Get(ctx context.Context, k int) (T, error) {
	if k < 0 {
		var zero T
		return zero, fmt.Errorf("%w: index %d", ErrInvalidIndex, k)
	}
	if l.varFactory == nil && k >= l.count {
		var zero T
		return zero, fmt.Errorf("%w: index %d", ErrInvalidIndex, k)
	}
	return l.loader.Load(ctx, k)
}

// Len returns the section's logical record count.
func (l *StreamList[T]) Len() int {
	return l.count
}

// Iterator returns a fresh, non-restartable iterator over the section
// (§4.5). Fixed sections walk 0..count; variable sections walk byte
// offsets, advancing by each materialized record's serialized size.
func (l *StreamList[T]) Iterator() Iterator[T] {
	if l.varFactory != nil {
		return &variableIterator[T]{list: l}
	}
	return &fixedStreamIterator[T]{list: l}
}

type fixedStreamIterator[T any] struct {
	list *StreamList[T]
	pos  int
}

func (it *fixedStreamIterator[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if it.pos >= it.list.count {
		return zero, false, nil
	}
	v, err := it.list.Get(ctx, it.pos)
	if err != nil {
		return zero, false, err
	}
	it.list.mark(it.pos)
	it.pos++
	return v, true, nil
}

type variableIterator[T any] struct {
	list       *StreamList[T]
	emitted    int
	byteOffset int
}

func (it *variableIterator[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if it.emitted >= it.list.count {
		return zero, false, nil
	}
	v, err := it.list.Get(ctx, it.byteOffset)
	if err != nil {
		return zero, false, err
	}
	size, err := it.list.varFactory.LengthOf(v)
	if err != nil {
		return zero, false, fmt.Errorf("list: size variable record at %d: %w", it.byteOffset, err)
	}
	it.list.mark(it.emitted)
	it.byteOffset += size
	it.emitted++
	return v, true, nil
}
