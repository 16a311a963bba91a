package entity

import (
	"fmt"

	"github.com/gopattern/patternset/internal/reader"
)

// Map names a set of profiles that together describe one data source,
// e.g. "Browser" or "HardwarePlatform".
type Map struct {
	Index      int
	NameOffset int32

	res Resolver
}

func (m Map) Name() (string, error) {
	if m.NameOffset < 0 {
		return "", nil
	}
	s, err := m.res.String(int(m.NameOffset))
	if err != nil {
		return "", fmt.Errorf("entity: resolve map %d name: %w", m.Index, err)
	}
	return s.Value(), nil
}

// MapFactory builds Map records; the layout is identical across
// versions.
type MapFactory struct{}

func (MapFactory) Create(res Resolver, index int, r reader.Reader) (Map, error) {
	name, err := r.ReadInt32()
	if err != nil {
		return Map{}, fmt.Errorf("entity: read map %d name offset: %w", index, err)
	}
	return Map{Index: index, NameOffset: name, res: res}, nil
}

func (MapFactory) Length() (int, error) {
	return 4, nil
}
