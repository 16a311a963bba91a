package entity

import (
	"fmt"

	"github.com/gopattern/patternset/internal/reader"
)

// maxSignatureNodes bounds the number of component nodes a single
// signature can reference inline under the V3.1 layout.
const maxSignatureNodes = 8

// Signature is a ranked combination of node matches that together
// identify one profile. V3.1 stores node offsets inline in the fixed
// record; V3.2 stores them in a separate packed table (§4.8) and keeps
// only a start index and count in the record, so growing evidence sets
// don't grow the fixed record size.
type Signature struct {
	Index int
	Rank  uint32
	Flags uint32

	inlineOffsets [maxSignatureNodes]int32 // V3.1; -1 marks unused
	tableIndexed  bool
	tableStart    uint32
	tableCount    uint32

	res Resolver
}

// NodeOffsets resolves the byte offsets of every node this signature
// references, in rank order.
func (s Signature) NodeOffsets() ([]int32, error) {
	if !s.tableIndexed {
		offsets := make([]int32, 0, maxSignatureNodes)
		for _, off := range s.inlineOffsets {
			if off < 0 {
				continue
			}
			offsets = append(offsets, off)
		}
		return offsets, nil
	}

	offsets := make([]int32, 0, s.tableCount)
	for i := uint32(0); i < s.tableCount; i++ {
		off, err := s.res.SignatureNodeOffset(int(s.tableStart + i))
		if err != nil {
			return nil, fmt.Errorf("entity: resolve signature %d node offset %d: %w", s.Index, i, err)
		}
		offsets = append(offsets, int32(off))
	}
	return offsets, nil
}

// SignatureFactoryV31 builds Signature records with inline node offsets.
type SignatureFactoryV31 struct{}

func (SignatureFactoryV31) Create(res Resolver, index int, r reader.Reader) (Signature, error) {
	s := Signature{Index: index, res: res}
	for i := range s.inlineOffsets {
		off, err := r.ReadInt32()
		if err != nil {
			return Signature{}, fmt.Errorf("entity: read signature %d node %d: %w", index, i, err)
		}
		s.inlineOffsets[i] = off
	}
	rank, err := r.ReadUint32()
	if err != nil {
		return Signature{}, fmt.Errorf("entity: read signature %d rank: %w", index, err)
	}
	flags, err := r.ReadUint32()
	if err != nil {
		return Signature{}, fmt.Errorf("entity: read signature %d flags: %w", index, err)
	}
	s.Rank, s.Flags = rank, flags
	return s, nil
}

func (SignatureFactoryV31) Length() (int, error) {
	return 4*maxSignatureNodes + 8, nil
}

// SignatureFactoryV32 builds Signature records indexed into the packed
// signature-node-offsets table.
type SignatureFactoryV32 struct{}

func (SignatureFactoryV32) Create(res Resolver, index int, r reader.Reader) (Signature, error) {
	start, err := r.ReadUint32()
	if err != nil {
		return Signature{}, fmt.Errorf("entity: read signature %d node table start: %w", index, err)
	}
	count, err := r.ReadUint32()
	if err != nil {
		return Signature{}, fmt.Errorf("entity: read signature %d node table count: %w", index, err)
	}
	rank, err := r.ReadUint32()
	if err != nil {
		return Signature{}, fmt.Errorf("entity: read signature %d rank: %w", index, err)
	}
	flags, err := r.ReadUint32()
	if err != nil {
		return Signature{}, fmt.Errorf("entity: read signature %d flags: %w", index, err)
	}
	return Signature{
		Index:        index,
		Rank:         rank,
		Flags:        flags,
		tableIndexed: true,
		tableStart:   start,
		tableCount:   count,
		res:          res,
	}, nil
}

func (SignatureFactoryV32) Length() (int, error) {
	return 16, nil
}
