package entity

import (
	"fmt"

	"github.com/gopattern/patternset/internal/reader"
)

// ProfileOffset maps a stable profile identifier to the byte offset of
// its record within the profiles section, letting the profile-lookup
// path binary-search a fixed-size table instead of scanning a
// variable-length one.
type ProfileOffset struct {
	Index     int
	ProfileID uint32
	Offset    uint32

	res Resolver
}

func (p ProfileOffset) Profile() (Profile, error) {
	return p.res.Profile(int(p.Offset))
}

// ProfileOffsetFactory builds ProfileOffset records; the layout is
// identical across versions.
type ProfileOffsetFactory struct{}

func (ProfileOffsetFactory) Create(res Resolver, index int, r reader.Reader) (ProfileOffset, error) {
	id, err := r.ReadUint32()
	if err != nil {
		return ProfileOffset{}, fmt.Errorf("entity: read profile offset %d id: %w", index, err)
	}
	offset, err := r.ReadUint32()
	if err != nil {
		return ProfileOffset{}, fmt.Errorf("entity: read profile offset %d offset: %w", index, err)
	}
	return ProfileOffset{Index: index, ProfileID: id, Offset: offset, res: res}, nil
}

func (ProfileOffsetFactory) Length() (int, error) {
	return 8, nil
}
