package entity

import (
	"fmt"

	"github.com/gopattern/patternset/internal/reader"
)

// Profile is a variable-length record listing the property values
// assigned to a single component instance, keyed by the byte offset
// recorded in its ProfileOffset entry rather than a sequential index.
type Profile struct {
	Offset         int
	ProfileID      uint32
	ComponentIndex int32
	ValueIndexes   []int32

	res Resolver
}

// Values resolves every value this profile assigns.
func (p Profile) Values() ([]Value, error) {
	values := make([]Value, 0, len(p.ValueIndexes))
	for _, idx := range p.ValueIndexes {
		v, err := p.res.Value(int(idx))
		if err != nil {
			return nil, fmt.Errorf("entity: resolve profile %d value %d: %w", p.Offset, idx, err)
		}
		values = append(values, v)
	}
	return values, nil
}

func (p Profile) Component() (*Component, error) {
	return p.res.Component(int(p.ComponentIndex))
}

// RecordSize returns the number of bytes this record occupies on disk.
func (p Profile) RecordSize() int {
	return 4 + 4 + 4 + 4*len(p.ValueIndexes)
}

// ProfileFactory builds Profile records; the layout is identical across
// versions, since the ValueIndexes count prefix already accommodates
// arbitrarily large value sets.
type ProfileFactory struct{}

func (ProfileFactory) Create(res Resolver, offset int, r reader.Reader) (Profile, error) {
	id, err := r.ReadUint32()
	if err != nil {
		return Profile{}, fmt.Errorf("entity: read profile %d id: %w", offset, err)
	}
	component, err := r.ReadInt32()
	if err != nil {
		return Profile{}, fmt.Errorf("entity: read profile %d component index: %w", offset, err)
	}
	count, err := r.ReadUint32()
	if err != nil {
		return Profile{}, fmt.Errorf("entity: read profile %d value count: %w", offset, err)
	}
	values := make([]int32, count)
	for i := range values {
		v, err := r.ReadInt32()
		if err != nil {
			return Profile{}, fmt.Errorf("entity: read profile %d value %d: %w", offset, i, err)
		}
		values[i] = v
	}
	return Profile{Offset: offset, ProfileID: id, ComponentIndex: component, ValueIndexes: values, res: res}, nil
}

func (ProfileFactory) Length() (int, error) {
	return 0, ErrVariableLength
}

func (ProfileFactory) LengthOf(p Profile) (int, error) {
	return p.RecordSize(), nil
}
