package list

import (
	"context"
	"fmt"

	"github.com/gopattern/patternset/internal/reader"
)

// IntegerList is a section of fixed 32-bit words addressed by index
// (§4.8), used for the V3.2-only signature_node_offsets and
// node_ranked_signature_indexes side tables and for the
// ranked_signature_indexes table present in both versions. It reads
// eagerly into memory: these tables are small relative
// to the sections they index and every entry is likely to be touched
// during matching, so residency avoids per-lookup pool contention.
type IntegerList struct {
	values []uint32
}

// NewIntegerList reads count consecutive uint32 words starting at the
// reader's current position.
func NewIntegerList(r reader.Reader, count int) (*IntegerList, error) {
	values := make([]uint32, count)
	for i := range values {
		v, err := r.ReadUint32()
		if err != nil {
			return nil, fmt.Errorf("list: read integer table word %d: %w", i, err)
		}
		values[i] = v
	}
	return &IntegerList{values: values}, nil
}

func (l *IntegerList) Get(_ context.Context, i int) (uint32, error) {
	if i < 0 || i >= len(l.values) {
		return 0, fmt.Errorf("%w: index %d", ErrInvalidIndex, i)
	}
	return l.values[i], nil
}

func (l *IntegerList) Len() int {
	return len(l.values)
}
