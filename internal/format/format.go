// Package format describes the on-disk layout of the Pattern container:
// the preamble, the section header record, and the version-specific
// section ordering.
package format

import "errors"

// Version identifies which of the two supported container layouts a
// Pattern file uses. Section order and a handful of entity record shapes
// depend on it.
type Version uint8

const (
	// VersionUnknown is the zero value; never a valid open dataset version.
	VersionUnknown Version = iota
	// V31 is the older Pattern format: signatures store node offsets inline
	// and components derive their HTTP header list from their name.
	V31
	// V32 adds packed side-tables for signature node offsets and ranked
	// signature indexes, and components carry an explicit header list.
	V32
)

func (v Version) String() string {
	switch v {
	case V31:
		return "3.1"
	case V32:
		return "3.2"
	default:
		return "unknown"
	}
}

// ErrUnknownVersion is returned when the preamble's version tag does not
// match one of the two supported Pattern formats.
var ErrUnknownVersion = errors.New("format: unknown pattern version")

// VersionFromTag maps the two-byte {major, minor} version tag read from
// the preamble to a Version.
func VersionFromTag(major, minor byte) (Version, error) {
	switch {
	case major == 3 && minor == 1:
		return V31, nil
	case major == 3 && minor == 2:
		return V32, nil
	default:
		return VersionUnknown, ErrUnknownVersion
	}
}

// HeaderSize is the fixed on-disk size, in bytes, of a SectionHeader record.
const HeaderSize = 12

// SectionHeader is the fixed 12-byte descriptor that precedes every
// section body: absolute start offset, record count, and total byte
// length of the section.
type SectionHeader struct {
	Start      uint32
	Count      uint32
	ByteLength uint32
}

// FixedRecordSize returns byte_length / count for a fixed-length section.
// The caller is responsible for knowing the section is fixed-length;
// calling this on a variable-length section produces a meaningless value.
func (h SectionHeader) FixedRecordSize() int {
	if h.Count == 0 {
		return 0
	}
	return int(h.ByteLength) / int(h.Count)
}

// Consistent reports whether the header satisfies invariant 4 for a
// fixed-length section: record_size * count == byte_length.
func (h SectionHeader) Consistent(recordSize int) bool {
	return uint32(recordSize)*h.Count == h.ByteLength
}

// WithinFile reports whether the section's byte range fits inside a file
// of the given size (Testable Property 1).
func (h SectionHeader) WithinFile(fileSize int64) bool {
	start := int64(h.Start)
	end := start + int64(h.ByteLength)
	return start >= 0 && start < end && end <= fileSize
}
