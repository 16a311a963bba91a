package format

import "fmt"

// byteReader is the minimal read surface Preamble and SectionHeader need.
// internal/reader.Reader satisfies this structurally.
type byteReader interface {
	ReadByte() (byte, error)
	ReadUint16() (uint16, error)
	ReadUint32() (uint32, error)
	ReadBytes(n int) ([]byte, error)
}

// Preamble is the fixed-then-variable region at the start of every
// Pattern container: version tag, format version, a 16-byte GUID-style
// tag, a length-prefixed copyright string, timestamps and a handful of
// bookkeeping counts that precede the first SectionHeader.
type Preamble struct {
	VersionMajor  byte
	VersionMinor  byte
	FormatVersion uint16
	Tag           [16]byte
	Copyright     string
	Age           uint16
	MinUALength   uint16
	MaxUALength   uint16
	LowestVersion uint16
	Published     uint16
	NextUpdate    uint16
	DeviceCombos  uint32
	MaxSignatures uint32
}

// ReadPreamble consumes the preamble from the current reader position and
// returns it along with the resolved Version. The reader is left
// positioned at the first SectionHeader.
func ReadPreamble(r byteReader) (Preamble, Version, error) {
	var p Preamble

	major, err := r.ReadByte()
	if err != nil {
		return p, VersionUnknown, fmt.Errorf("format: read version major: %w", err)
	}
	minor, err := r.ReadByte()
	if err != nil {
		return p, VersionUnknown, fmt.Errorf("format: read version minor: %w", err)
	}
	p.VersionMajor, p.VersionMinor = major, minor

	version, err := VersionFromTag(major, minor)
	if err != nil {
		return p, VersionUnknown, err
	}

	if p.FormatVersion, err = r.ReadUint16(); err != nil {
		return p, version, fmt.Errorf("format: read format version: %w", err)
	}

	tag, err := r.ReadBytes(16)
	if err != nil {
		return p, version, fmt.Errorf("format: read tag: %w", err)
	}
	copy(p.Tag[:], tag)

	copyrightLen, err := r.ReadUint16()
	if err != nil {
		return p, version, fmt.Errorf("format: read copyright length: %w", err)
	}
	copyrightBytes, err := r.ReadBytes(int(copyrightLen))
	if err != nil {
		return p, version, fmt.Errorf("format: read copyright: %w", err)
	}
	p.Copyright = string(copyrightBytes)

	fields := []*uint16{
		&p.Age, &p.MinUALength, &p.MaxUALength,
		&p.LowestVersion, &p.Published, &p.NextUpdate,
	}
	for _, f := range fields {
		v, err := r.ReadUint16()
		if err != nil {
			return p, version, fmt.Errorf("format: read preamble field: %w", err)
		}
		*f = v
	}

	if p.DeviceCombos, err = r.ReadUint32(); err != nil {
		return p, version, fmt.Errorf("format: read device combinations: %w", err)
	}
	if p.MaxSignatures, err = r.ReadUint32(); err != nil {
		return p, version, fmt.Errorf("format: read max signatures: %w", err)
	}

	return p, version, nil
}

// ReadSectionHeader reads the 12-byte {start, count, byte_length} record
// at the reader's current position.
func ReadSectionHeader(r byteReader) (SectionHeader, error) {
	var h SectionHeader

	start, err := r.ReadUint32()
	if err != nil {
		return h, fmt.Errorf("format: read section start: %w", err)
	}
	count, err := r.ReadUint32()
	if err != nil {
		return h, fmt.Errorf("format: read section count: %w", err)
	}
	byteLength, err := r.ReadUint32()
	if err != nil {
		return h, fmt.Errorf("format: read section byte length: %w", err)
	}

	h.Start, h.Count, h.ByteLength = start, count, byteLength
	return h, nil
}

// SectionKind identifies one section of the container; Version.Order
// lists them in the order they appear on disk for a given version, per
// §4.7 of the specification. Strings always come first (after the
// preamble) and have no SectionKind since they're read unconditionally
// before that order is consulted.
type SectionKind int

const (
	SectionComponents SectionKind = iota
	SectionMaps
	SectionProperties
	SectionValues
	SectionProfiles
	SectionSignatures
	SectionSignatureNodeOffsets  // v3.2 only
	SectionNodeRankedSigIndexes  // v3.2 only
	SectionRankedSignatureIndexes
	SectionNodes
	SectionRootNodes
	SectionProfileOffsets
)

// Order returns the section discovery sequence for the version, matching
// §4.7 steps 3-11 (strings, step 2, is handled separately by the caller).
func (v Version) Order() []SectionKind {
	switch v {
	case V31:
		return []SectionKind{
			SectionComponents,
			SectionMaps,
			SectionProperties,
			SectionValues,
			SectionProfiles,
			SectionSignatures,
			SectionRankedSignatureIndexes,
			SectionNodes,
			SectionRootNodes,
			SectionProfileOffsets,
		}
	case V32:
		return []SectionKind{
			SectionComponents,
			SectionMaps,
			SectionProperties,
			SectionValues,
			SectionProfiles,
			SectionSignatures,
			SectionSignatureNodeOffsets,
			SectionNodeRankedSigIndexes,
			SectionRankedSignatureIndexes,
			SectionNodes,
			SectionRootNodes,
			SectionProfileOffsets,
		}
	default:
		return nil
	}
}
