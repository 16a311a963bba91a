package entity

import (
	"fmt"

	"github.com/gopattern/patternset/internal/reader"
)

// PropertyValueType enumerates the value kinds a property's Values may
// take, mirroring the original format's small closed set.
type PropertyValueType uint32

const (
	ValueTypeString PropertyValueType = iota
	ValueTypeInt
	ValueTypeBool
	ValueTypeDouble
	ValueTypeJavaScript
)

// Property is a metadata record describing one detectable attribute,
// e.g. "IsMobile" or "ScreenPixelsWidth".
type Property struct {
	Index             int
	NameOffset        int32
	ValueType         PropertyValueType
	DefaultValueIndex int32
	DescriptionOffset int32
	ComponentIndex    int32

	res Resolver
}

func (p Property) Name() (string, error) {
	s, err := p.res.String(int(p.NameOffset))
	if err != nil {
		return "", fmt.Errorf("entity: resolve property %d name: %w", p.Index, err)
	}
	return s.Value(), nil
}

func (p Property) Description() (string, error) {
	if p.DescriptionOffset < 0 {
		return "", nil
	}
	s, err := p.res.String(int(p.DescriptionOffset))
	if err != nil {
		return "", fmt.Errorf("entity: resolve property %d description: %w", p.Index, err)
	}
	return s.Value(), nil
}

func (p Property) DefaultValue() (Value, error) {
	if p.DefaultValueIndex < 0 {
		return Value{}, nil
	}
	return p.res.Value(int(p.DefaultValueIndex))
}

func (p Property) Component() (*Component, error) {
	return p.res.Component(int(p.ComponentIndex))
}

// PropertyFactory builds Property records; the layout is identical
// across versions.
type PropertyFactory struct{}

func (PropertyFactory) Create(res Resolver, index int, r reader.Reader) (Property, error) {
	name, err := r.ReadInt32()
	if err != nil {
		return Property{}, fmt.Errorf("entity: read property %d name offset: %w", index, err)
	}
	valueType, err := r.ReadUint32()
	if err != nil {
		return Property{}, fmt.Errorf("entity: read property %d value type: %w", index, err)
	}
	defaultValue, err := r.ReadInt32()
	if err != nil {
		return Property{}, fmt.Errorf("entity: read property %d default value index: %w", index, err)
	}
	description, err := r.ReadInt32()
	if err != nil {
		return Property{}, fmt.Errorf("entity: read property %d description offset: %w", index, err)
	}
	component, err := r.ReadInt32()
	if err != nil {
		return Property{}, fmt.Errorf("entity: read property %d component index: %w", index, err)
	}
	return Property{
		Index:             index,
		NameOffset:        name,
		ValueType:         PropertyValueType(valueType),
		DefaultValueIndex: defaultValue,
		DescriptionOffset: description,
		ComponentIndex:    component,
		res:               res,
	}, nil
}

func (PropertyFactory) Length() (int, error) {
	return 20, nil
}
