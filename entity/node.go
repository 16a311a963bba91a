package entity

import (
	"fmt"

	"github.com/gopattern/patternset/internal/reader"
)

// NodeChild is an edge in the node prefix tree: matching CharacterPosition
// characters ahead of the current node's substring transitions to the
// node at NodeOffset.
type NodeChild struct {
	CharacterPosition int16
	NodeOffset        int32
}

// Node is one prefix-tree node used to match tokens within a user agent
// or other detectable string. V3.1 stores its substring bytes and ranked
// signature indexes inline; V3.2 stores the substring as an offset into
// the strings section (a "sub-string table", trading a resolve call for
// a smaller fixed cost per node) and its ranked signature indexes as a
// start/count pair into a packed side table (§4.8).
type Node struct {
	Offset   int
	Position int32
	Children []NodeChild

	isV32              bool
	characters         []byte // V3.1 inline
	charactersOffset   int32  // V3.2
	rankedInline       []int32
	rankedTableStart   uint32
	rankedTableCount   uint32

	res Resolver
}

// Characters resolves the substring this node matches.
func (n Node) Characters() ([]byte, error) {
	if !n.isV32 {
		return n.characters, nil
	}
	s, err := n.res.String(int(n.charactersOffset))
	if err != nil {
		return nil, fmt.Errorf("entity: resolve node %d characters: %w", n.Offset, err)
	}
	return s.Content, nil
}

// RankedSignatureIndexes resolves the indexes of every signature ranked
// under this node, in rank order.
func (n Node) RankedSignatureIndexes() ([]uint32, error) {
	if !n.isV32 {
		out := make([]uint32, len(n.rankedInline))
		for i, v := range n.rankedInline {
			out[i] = uint32(v)
		}
		return out, nil
	}
	out := make([]uint32, 0, n.rankedTableCount)
	for i := uint32(0); i < n.rankedTableCount; i++ {
		idx, err := n.res.NodeRankedSignatureIndex(int(n.rankedTableStart + i))
		if err != nil {
			return nil, fmt.Errorf("entity: resolve node %d ranked signature %d: %w", n.Offset, i, err)
		}
		out = append(out, idx)
	}
	return out, nil
}

// RecordSize returns the number of bytes this record occupies on disk.
func (n Node) RecordSize() int {
	childBytes := 2 + 6*len(n.Children)
	if !n.isV32 {
		return 4 + (2 + len(n.characters)) + childBytes + (2 + 4*len(n.rankedInline))
	}
	return 4 + 4 + childBytes + 8
}

func readChildren(r reader.Reader, offset int) ([]NodeChild, error) {
	count, err := r.ReadUint16()
	if err != nil {
		return nil, fmt.Errorf("entity: read node %d child count: %w", offset, err)
	}
	children := make([]NodeChild, count)
	for i := range children {
		pos, err := r.ReadInt16()
		if err != nil {
			return nil, fmt.Errorf("entity: read node %d child %d position: %w", offset, i, err)
		}
		nodeOffset, err := r.ReadInt32()
		if err != nil {
			return nil, fmt.Errorf("entity: read node %d child %d offset: %w", offset, i, err)
		}
		children[i] = NodeChild{CharacterPosition: pos, NodeOffset: nodeOffset}
	}
	return children, nil
}

// NodeFactoryV31 builds Node records with inline substrings and ranked
// signature indexes.
type NodeFactoryV31 struct{}

func (NodeFactoryV31) Create(res Resolver, offset int, r reader.Reader) (Node, error) {
	position, err := r.ReadInt32()
	if err != nil {
		return Node{}, fmt.Errorf("entity: read node %d position: %w", offset, err)
	}
	charCount, err := r.ReadUint16()
	if err != nil {
		return Node{}, fmt.Errorf("entity: read node %d character count: %w", offset, err)
	}
	characters, err := r.ReadBytes(int(charCount))
	if err != nil {
		return Node{}, fmt.Errorf("entity: read node %d characters: %w", offset, err)
	}
	children, err := readChildren(r, offset)
	if err != nil {
		return Node{}, err
	}
	rsCount, err := r.ReadUint16()
	if err != nil {
		return Node{}, fmt.Errorf("entity: read node %d ranked signature count: %w", offset, err)
	}
	ranked := make([]int32, rsCount)
	for i := range ranked {
		v, err := r.ReadInt32()
		if err != nil {
			return Node{}, fmt.Errorf("entity: read node %d ranked signature %d: %w", offset, i, err)
		}
		ranked[i] = v
	}
	return Node{
		Offset:       offset,
		Position:     position,
		Children:     children,
		characters:   characters,
		rankedInline: ranked,
		res:          res,
	}, nil
}

func (NodeFactoryV31) Length() (int, error) {
	return 0, ErrVariableLength
}

func (NodeFactoryV31) LengthOf(n Node) (int, error) {
	return n.RecordSize(), nil
}

// NodeFactoryV32 builds Node records with sub-string table offsets and
// table-indexed ranked signatures.
type NodeFactoryV32 struct{}

func (NodeFactoryV32) Create(res Resolver, offset int, r reader.Reader) (Node, error) {
	position, err := r.ReadInt32()
	if err != nil {
		return Node{}, fmt.Errorf("entity: read node %d position: %w", offset, err)
	}
	charOffset, err := r.ReadInt32()
	if err != nil {
		return Node{}, fmt.Errorf("entity: read node %d character offset: %w", offset, err)
	}
	children, err := readChildren(r, offset)
	if err != nil {
		return Node{}, err
	}
	start, err := r.ReadUint32()
	if err != nil {
		return Node{}, fmt.Errorf("entity: read node %d ranked signature table start: %w", offset, err)
	}
	count, err := r.ReadUint32()
	if err != nil {
		return Node{}, fmt.Errorf("entity: read node %d ranked signature table count: %w", offset, err)
	}
	return Node{
		Offset:           offset,
		Position:         position,
		Children:         children,
		isV32:            true,
		charactersOffset: charOffset,
		rankedTableStart: start,
		rankedTableCount: count,
		res:              res,
	}, nil
}

func (NodeFactoryV32) Length() (int, error) {
	return 0, ErrVariableLength
}

func (NodeFactoryV32) LengthOf(n Node) (int, error) {
	return n.RecordSize(), nil
}
