package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gopattern/patternset/internal/reader"
)

// stubResolver resolves strings from a fixed table and returns zero
// values for every other lookup; the entity factory tests only need
// string resolution.
type stubResolver struct {
	strings map[int]string
}

func (s stubResolver) String(offset int) (AsciiString, error) {
	return AsciiString{Offset: offset, Content: append([]byte(s.strings[offset]), 0)}, nil
}
func (s stubResolver) Component(int) (*Component, error)              { return nil, nil }
func (s stubResolver) Map(int) (Map, error)                           { return Map{}, nil }
func (s stubResolver) Property(int) (Property, error)                 { return Property{}, nil }
func (s stubResolver) Value(int) (Value, error)                       { return Value{}, nil }
func (s stubResolver) Profile(int) (Profile, error)                   { return Profile{}, nil }
func (s stubResolver) Node(int) (Node, error)                         { return Node{}, nil }
func (s stubResolver) SignatureNodeOffset(int) (uint32, error)        { return 0, nil }
func (s stubResolver) NodeRankedSignatureIndex(int) (uint32, error)   { return 0, nil }
func (s stubResolver) RankedSignatureIndex(int) (uint32, error)       { return 0, nil }

func TestAsciiStringFactory(t *testing.T) {
	buf := []byte{5, 0, 'h', 'i', 0, 0, 0}
	r := reader.NewMemoryReader(buf)

	f := AsciiStringFactory{}
	s, err := f.Create(nil, 0, r)
	require.NoError(t, err)
	assert.Equal(t, "hi", s.Value())
	assert.Equal(t, 7, s.RecordSize())

	n, err := f.LengthOf(s)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestComponentFactoryV31_LazyHeaders(t *testing.T) {
	res := stubResolver{strings: map[int]string{0: "HardwarePlatform"}}
	buf := make([]byte, 8)
	buf[0] = 1 // id
	// name offset = 0, little endian already zero
	r := reader.NewMemoryReader(buf)

	f := ComponentFactoryV31{}
	c, err := f.Create(res, 0, r)
	require.NoError(t, err)

	headers, err := c.HTTPHeaders()
	require.NoError(t, err)
	assert.Equal(t, deviceUserAgentHeaders, headers)

	// second call must hit the memoized pointer, not recompute.
	headers2, err := c.HTTPHeaders()
	require.NoError(t, err)
	assert.Same(t, &headers[0], &headers2[0])
}

func TestProfileFactory_VariableLength(t *testing.T) {
	buf := []byte{
		1, 0, 0, 0, // profile id
		2, 0, 0, 0, // component index
		2, 0, 0, 0, // value count
		10, 0, 0, 0,
		20, 0, 0, 0,
	}
	r := reader.NewMemoryReader(buf)

	f := ProfileFactory{}
	p, err := f.Create(nil, 0, r)
	require.NoError(t, err)
	assert.Equal(t, []int32{10, 20}, p.ValueIndexes)

	size, err := f.LengthOf(p)
	require.NoError(t, err)
	assert.Equal(t, len(buf), size)
}

func TestNodeFactoryV31_RoundTrip(t *testing.T) {
	buf := []byte{
		0, 0, 0, 0, // position
		2, 0, // character count
		'h', 'i', // characters
		1, 0, // child count
		3, 0, // child character position (int16)
		100, 0, 0, 0, // child node offset (int32)
		1, 0, // ranked signature count
		42, 0, 0, 0, // ranked signature index
	}
	r := reader.NewMemoryReader(buf)

	f := NodeFactoryV31{}
	n, err := f.Create(nil, 0, r)
	require.NoError(t, err)
	assert.Equal(t, int64(len(buf)), r.Pos(), "Create must consume exactly the bytes it wrote")

	require.Len(t, n.Children, 1)
	assert.Equal(t, int16(3), n.Children[0].CharacterPosition)
	assert.Equal(t, int32(100), n.Children[0].NodeOffset)

	size, err := f.LengthOf(n)
	require.NoError(t, err)
	assert.Equal(t, len(buf), size, "LengthOf must match the bytes Create actually consumed")
}

func TestNodeFactoryV32_RoundTrip(t *testing.T) {
	buf := []byte{
		0, 0, 0, 0, // position
		5, 0, 0, 0, // character offset
		1, 0, // child count
		3, 0, // child character position (int16)
		100, 0, 0, 0, // child node offset (int32)
		7, 0, 0, 0, // ranked signature table start
		9, 0, 0, 0, // ranked signature table count
	}
	r := reader.NewMemoryReader(buf)

	f := NodeFactoryV32{}
	n, err := f.Create(nil, 0, r)
	require.NoError(t, err)
	assert.Equal(t, int64(len(buf)), r.Pos(), "Create must consume exactly the bytes it wrote")

	require.Len(t, n.Children, 1)
	assert.Equal(t, int16(3), n.Children[0].CharacterPosition)
	assert.Equal(t, int32(100), n.Children[0].NodeOffset)

	size, err := f.LengthOf(n)
	require.NoError(t, err)
	assert.Equal(t, len(buf), size, "LengthOf must match the bytes Create actually consumed")
}
