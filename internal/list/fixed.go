package list

import (
	"context"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/gopattern/patternset/entity"
	"github.com/gopattern/patternset/internal/reader"
)

// MemoryFixedList holds every record of a fixed-length section resident
// in memory, read once during open (§4.4). populated tracks which
// slots have been filled during construction, and Get rejects any slot
// not in it. Construction fails on the first record that cannot be
// read, so a list that is returned has every slot populated.
type MemoryFixedList[T any] struct {
	values    []T
	populated *roaring.Bitmap
}

// NewMemoryFixedList reads count fixed-length records starting at the
// reader's current position using factory, and returns them as a
// resident list. r must already be positioned at the section's first
// record.
func NewMemoryFixedList[T any](r reader.Reader, res entity.Resolver, count int, factory entity.Factory[T]) (*MemoryFixedList[T], error) {
	values := make([]T, count)
	populated := roaring.New()

	for i := 0; i < count; i++ {
		v, err := factory.Create(res, i, r)
		if err != nil {
			return nil, fmt.Errorf("list: read fixed record %d: %w", i, err)
		}
		values[i] = v
		populated.Add(uint32(i))
	}

	return &MemoryFixedList[T]{values: values, populated: populated}, nil
}

func (l *MemoryFixedList[T]) Get(_ context.Context, k int) (T, error) {
	var zero T
	if k < 0 || k >= len(l.values) || !l.populated.Contains(uint32(k)) {
		return zero, fmt.Errorf("%w: index %d", ErrInvalidIndex, k)
	}
	return l.values[k], nil
}

func (l *MemoryFixedList[T]) Len() int {
	return len(l.values)
}

func (l *MemoryFixedList[T]) Iterator() Iterator[T] {
	return &fixedIterator[T]{list: l}
}

type fixedIterator[T any] struct {
	list *MemoryFixedList[T]
	pos  int
}

func (it *fixedIterator[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if it.pos >= it.list.Len() {
		return zero, false, nil
	}
	v, err := it.list.Get(ctx, it.pos)
	if err != nil {
		return zero, false, err
	}
	it.pos++
	return v, true, nil
}
