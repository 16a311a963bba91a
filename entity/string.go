package entity

import (
	"fmt"
	"strings"

	"github.com/gopattern/patternset/internal/reader"
)

// AsciiString is a length-prefixed byte run from the strings section. The
// on-disk record is a uint16 byte count followed by that many bytes,
// including a trailing NUL that is part of the count but stripped from
// the decoded Value.
type AsciiString struct {
	Offset  int
	Content []byte
}

// Value returns the decoded string with its trailing NUL, if any,
// removed.
func (s AsciiString) Value() string {
	return strings.TrimRight(string(s.Content), "\x00")
}

// RecordSize returns the total number of bytes the record occupies on
// disk, including its length prefix.
func (s AsciiString) RecordSize() int {
	return 2 + len(s.Content)
}

func (s AsciiString) String() string {
	return s.Value()
}

// AsciiStringFactory builds AsciiString entities. Strings are the one
// variable-length kind with no version-specific variant.
type AsciiStringFactory struct{}

func (AsciiStringFactory) Create(_ Resolver, index int, r reader.Reader) (AsciiString, error) {
	n, err := r.ReadUint16()
	if err != nil {
		return AsciiString{}, fmt.Errorf("entity: read string length at %d: %w", index, err)
	}
	content, err := r.ReadBytes(int(n))
	if err != nil {
		return AsciiString{}, fmt.Errorf("entity: read string content at %d: %w", index, err)
	}
	return AsciiString{Offset: index, Content: content}, nil
}

func (AsciiStringFactory) Length() (int, error) {
	return 0, ErrVariableLength
}

func (AsciiStringFactory) LengthOf(s AsciiString) (int, error) {
	return s.RecordSize(), nil
}
