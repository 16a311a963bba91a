package list

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gopattern/patternset/cache"
	"github.com/gopattern/patternset/entity"
	"github.com/gopattern/patternset/internal/reader"
)

type nilResolver struct{}

func (nilResolver) String(int) (entity.AsciiString, error)          { return entity.AsciiString{}, nil }
func (nilResolver) Component(int) (*entity.Component, error)        { return nil, nil }
func (nilResolver) Map(int) (entity.Map, error)                     { return entity.Map{}, nil }
func (nilResolver) Property(int) (entity.Property, error)           { return entity.Property{}, nil }
func (nilResolver) Value(int) (entity.Value, error)                 { return entity.Value{}, nil }
func (nilResolver) Profile(int) (entity.Profile, error)             { return entity.Profile{}, nil }
func (nilResolver) Node(int) (entity.Node, error)                   { return entity.Node{}, nil }
func (nilResolver) SignatureNodeOffset(int) (uint32, error)         { return 0, nil }
func (nilResolver) NodeRankedSignatureIndex(int) (uint32, error)    { return 0, nil }
func (nilResolver) RankedSignatureIndex(int) (uint32, error)        { return 0, nil }

func TestFixedStreamList_DirectLoader(t *testing.T) {
	offset := func(k int) int64 { return int64(k) * 12 }
	buf := make([]byte, 36)
	for i := 0; i < 3; i++ {
		buf[i*12] = byte(100 + i)
	}
	pool := reader.NewPool(0, func() (reader.Reader, error) {
		return reader.NewMemoryReader(buf), nil
	})
	defer pool.Close()

	l := NewFixedStreamList[entity.Value](
		NewDirectLoader[entity.Value](pool, nilResolver{}, entity.ValueFactory{}, offset),
		3,
	)
	assert.Equal(t, 3, l.Len())

	v, err := l.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int32(101), v.NameOffset)
}

func TestFixedStreamList_LRULoader(t *testing.T) {
	buf := make([]byte, 12)
	buf[0] = 42
	pool := reader.NewPool(0, func() (reader.Reader, error) {
		return reader.NewMemoryReader(buf), nil
	})
	defer pool.Close()

	c := cache.NewLRUCache[int, entity.Value](4)
	loader := NewLRULoader[entity.Value](pool, nilResolver{}, entity.ValueFactory{}, func(k int) int64 { return 0 }, c)
	l := NewFixedStreamList[entity.Value](loader, 1)

	v, err := l.Get(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, int32(42), v.NameOffset)
	assert.Equal(t, int64(1), c.Stats().Misses)

	_, err = l.Get(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.Stats().Hits)
}

func TestVariableStreamList_Iterator(t *testing.T) {
	// two profiles: {id:1, component:0, values:[10]}, {id:2, component:0, values:[20,30]}
	buf := []byte{
		1, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 10, 0, 0, 0,
		2, 0, 0, 0, 0, 0, 0, 0, 2, 0, 0, 0, 20, 0, 0, 0, 30, 0, 0, 0,
	}
	pool := reader.NewPool(0, func() (reader.Reader, error) {
		return reader.NewMemoryReader(buf), nil
	})
	defer pool.Close()

	factory := entity.ProfileFactory{}
	loader := NewDirectLoader[entity.Profile](pool, nilResolver{}, factory, func(k int) int64 { return int64(k) })
	l := NewVariableStreamList[entity.Profile](loader, 2, factory)

	it := l.Iterator()
	var got []uint32
	for {
		p, ok, err := it.Next(context.Background())
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, p.ProfileID)
	}
	assert.Equal(t, []uint32{1, 2}, got)
}

func TestIntegerList(t *testing.T) {
	buf := []byte{1, 0, 0, 0, 2, 0, 0, 0, 3, 0, 0, 0}
	r := reader.NewMemoryReader(buf)
	l, err := NewIntegerList(r, 3)
	require.NoError(t, err)

	v, err := l.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), v)

	_, err = l.Get(context.Background(), 3)
	assert.ErrorIs(t, err, ErrInvalidIndex)
}
