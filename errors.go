package patternset

import (
	"errors"
	"fmt"

	"github.com/gopattern/patternset/cache"
	"github.com/gopattern/patternset/internal/format"
	"github.com/gopattern/patternset/internal/list"
	"github.com/gopattern/patternset/internal/reader"
)

var (
	// ErrIO wraps a non-recoverable failure of the underlying source.
	ErrIO = errors.New("patternset: i/o error")
	// ErrInvalidFormat indicates the container fails a structural check:
	// a bad preamble, an impossible section offset, or a truncated
	// record.
	ErrInvalidFormat = errors.New("patternset: invalid format")
	// ErrUnknownVersion indicates the preamble's version tag is not one
	// of the versions this package understands.
	ErrUnknownVersion = errors.New("patternset: unknown version")
	// ErrInvalidIndex indicates Get was called with a key outside a
	// list's bounds.
	ErrInvalidIndex = errors.New("patternset: invalid index")
	// ErrConfig indicates a caller-supplied cache override does not
	// match the shape its slot requires.
	ErrConfig = errors.New("patternset: invalid cache configuration")
	// ErrClosed indicates an operation on a Dataset after Close.
	ErrClosed = errors.New("patternset: dataset closed")
)

// translateError maps errors from the internal reader/format/list
// packages onto the public sentinels documented in §7, so callers never
// need to know about the layering underneath Dataset.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrClosed) {
		return err
	}
	if errors.Is(err, list.ErrInvalidIndex) {
		return fmt.Errorf("%w: %w", ErrInvalidIndex, err)
	}
	if errors.Is(err, reader.ErrOutOfRange) {
		return fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	if errors.Is(err, reader.ErrPoolClosed) {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}
	if errors.Is(err, format.ErrUnknownVersion) {
		return fmt.Errorf("%w: %w", ErrUnknownVersion, err)
	}
	if errors.Is(err, cache.ErrConfig) {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}

	return fmt.Errorf("%w: %w", ErrIO, err)
}
