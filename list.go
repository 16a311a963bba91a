package patternset

import "context"

// List is a random-access, 0-indexed collection of entities backed by
// one section of the dataset (§3). For fixed-length sections k is a
// sequential record index; for variable-length sections k is a byte
// offset relative to the section's start.
type List[T any] interface {
	Get(ctx context.Context, k int) (T, error)
	Len() int
}

// Iterator walks a List's entities in on-disk order. It is not
// restartable; obtain a fresh one from the List to iterate again.
type Iterator[T any] interface {
	Next(ctx context.Context) (value T, ok bool, err error)
}

// Iterable is implemented by Lists that can produce a fresh Iterator.
type Iterable[T any] interface {
	Iterator() Iterator[T]
}
