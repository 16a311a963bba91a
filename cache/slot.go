package cache

// Slot identifies one of the recognized per-section cache assignments
// (§4.6). A caller wiring a Dataset supplies at most one cache per slot.
// An omitted slot gets a default LRU cache when the Dataset is opened
// from a file path, and a direct, uncached loader when it is opened
// from a byte slice.
type Slot int

const (
	SlotStrings Slot = iota
	SlotNodes
	SlotValues
	SlotProfiles
	SlotSignatures
)

func (s Slot) String() string {
	switch s {
	case SlotStrings:
		return "strings"
	case SlotNodes:
		return "nodes"
	case SlotValues:
		return "values"
	case SlotProfiles:
		return "profiles"
	case SlotSignatures:
		return "signatures"
	default:
		return "unknown"
	}
}

// DefaultCapacity returns the order-of-magnitude entry count of the
// default LRU cache the assembler creates for a slot the caller did not
// override (file-path opens only). Strings and Nodes tend to dominate the
// working set of a detection workload, so they default larger.
func (s Slot) DefaultCapacity() int {
	switch s {
	case SlotStrings, SlotNodes:
		return 65536
	case SlotValues, SlotProfiles, SlotSignatures:
		return 4096
	default:
		return 1024
	}
}
