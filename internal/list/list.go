// Package list implements the two list shapes a Pattern section can be
// exposed as (spec components D and E): a fully-resident
// MemoryFixedList for small sections, and a lazy StreamList backed by an
// EntityLoader for large ones, plus a packed-word IntegerList for the
// integer side tables (§4.8).
package list

import "context"

// List is a read-only, randomly-addressable collection of entities of
// type T. For fixed-length kinds k is a sequential 0..Len()-1 index; for
// variable-length kinds k is the byte offset of the record within its
// section, matching how other entities reference it (§4.4).
type List[T any] interface {
	Get(ctx context.Context, k int) (T, error)
	Len() int
}

// Iterator walks a List's records in order. It is not restartable mid
// stream — a caller who needs to iterate again must obtain a fresh
// Iterator from the List (§4.5).
type Iterator[T any] interface {
	// Next reports the next record and whether one was available. A
	// false ok with a nil error means the iterator is exhausted.
	Next(ctx context.Context) (value T, ok bool, err error)
}

// Iterable is implemented by lists that can produce a fresh Iterator.
type Iterable[T any] interface {
	Iterator() Iterator[T]
}
