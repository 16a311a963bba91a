package patternset

import "github.com/gopattern/patternset/cache"

// SectionStats reports the record count of one section, resident or
// streamed, plus the cache statistics for slots that have one wired.
type SectionStats struct {
	Count int
	Cache *cache.Stats // nil for resident sections and direct-loaded stream sections
}

// Stats is a point-in-time snapshot of a Dataset's section sizes and
// cache hit rates, adapted from the collector pattern the vector index
// used for insert/search counters: here every counter is a read-side
// gauge rather than an operation tally, since the dataset itself never
// mutates after Open.
type Stats struct {
	Version  string
	Strings  SectionStats
	Values   SectionStats
	Profiles SectionStats
	Nodes    SectionStats

	Components     int
	Maps           int
	Properties     int
	Signatures     SectionStats
	RootNodes      int
	ProfileOffsets int

	// RankedSignatures is 0 for a dataset opened with neither version
	// having populated the table, which should not happen in practice
	// since both V3.1 and V3.2 carry it.
	RankedSignatures int
}

func (d *Dataset) sectionStats(slot cache.Slot, count int) SectionStats {
	s := SectionStats{Count: count}
	if fn, ok := d.cacheStats[slot]; ok {
		stats := fn()
		s.Cache = &stats
	}
	return s
}

// Stats snapshots the dataset's section sizes and cache hit rates.
func (d *Dataset) Stats() Stats {
	return Stats{
		Version:          d.version.String(),
		Strings:          d.sectionStats(cache.SlotStrings, d.strings.Len()),
		Values:           d.sectionStats(cache.SlotValues, d.values.Len()),
		Profiles:         d.sectionStats(cache.SlotProfiles, d.profiles.Len()),
		Nodes:            d.sectionStats(cache.SlotNodes, d.nodes.Len()),
		Signatures:       d.sectionStats(cache.SlotSignatures, d.signatures.Len()),
		Components:       d.components.Len(),
		Maps:             d.maps.Len(),
		Properties:       d.properties.Len(),
		RootNodes:        d.rootNodes.Len(),
		ProfileOffsets:   d.profileOffsets.Len(),
		RankedSignatures: d.RankedSignatureCount(),
	}
}
