package entity

import (
	"fmt"

	"github.com/gopattern/patternset/internal/reader"
)

// Value is one concrete option a Property may take, e.g. "true" for the
// "IsMobile" property.
type Value struct {
	Index             int
	NameOffset        int32
	PropertyIndex     int32
	DescriptionOffset int32

	res Resolver
}

func (v Value) Name() (string, error) {
	s, err := v.res.String(int(v.NameOffset))
	if err != nil {
		return "", fmt.Errorf("entity: resolve value %d name: %w", v.Index, err)
	}
	return s.Value(), nil
}

func (v Value) Description() (string, error) {
	if v.DescriptionOffset < 0 {
		return "", nil
	}
	s, err := v.res.String(int(v.DescriptionOffset))
	if err != nil {
		return "", fmt.Errorf("entity: resolve value %d description: %w", v.Index, err)
	}
	return s.Value(), nil
}

func (v Value) Property() (Property, error) {
	return v.res.Property(int(v.PropertyIndex))
}

// ValueFactory builds Value records; the layout is identical across
// versions.
type ValueFactory struct{}

func (ValueFactory) Create(res Resolver, index int, r reader.Reader) (Value, error) {
	name, err := r.ReadInt32()
	if err != nil {
		return Value{}, fmt.Errorf("entity: read value %d name offset: %w", index, err)
	}
	property, err := r.ReadInt32()
	if err != nil {
		return Value{}, fmt.Errorf("entity: read value %d property index: %w", index, err)
	}
	description, err := r.ReadInt32()
	if err != nil {
		return Value{}, fmt.Errorf("entity: read value %d description offset: %w", index, err)
	}
	return Value{
		Index:             index,
		NameOffset:        name,
		PropertyIndex:     property,
		DescriptionOffset: description,
		res:               res,
	}, nil
}

func (ValueFactory) Length() (int, error) {
	return 12, nil
}
