// Package entity defines the Pattern container's entity kinds (spec
// component C) and the narrow capability interfaces they need to
// resolve cross-references back into the owning dataset without
// depending on the dataset package itself (design note 9: a non-owning
// handle expressed as an interface, not a heap pointer to a concrete
// type).
package entity

import (
	"errors"

	"github.com/gopattern/patternset/internal/reader"
)

// ErrVariableLength is returned by Factory.Length for entity kinds whose
// on-disk size depends on the record contents. It is an internal signal
// used only while wiring loaders (§7); it never surfaces to a caller of
// the public Dataset API.
var ErrVariableLength = errors.New("entity: variable-length factory")

// Factory materializes one entity of type T starting at the reader's
// current position, and reports whether the kind has a constant record
// size.
type Factory[T any] interface {
	// Create reads exactly one record and advances r by its size.
	Create(res Resolver, index int, r reader.Reader) (T, error)
	// Length returns the constant record size for fixed-length kinds, or
	// ErrVariableLength for kinds whose size depends on the record.
	Length() (int, error)
}

// VariableFactory is implemented by factories for variable-length kinds
// in addition to Factory; LengthOf reports the serialized size of an
// already-materialized entity so an iterator can advance past it.
type VariableFactory[T any] interface {
	Factory[T]
	LengthOf(entity T) (int, error)
}
