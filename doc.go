// Package patternset provides a streaming, read-only loader for the
// "Pattern" device-detection binary dataset (versions 3.1 and 3.2).
//
// A Pattern file is a preamble followed by an ordered sequence of
// sections: components, maps, properties, values, profiles, signatures,
// nodes, root nodes, and profile offsets, plus a handful of packed
// 32-bit side-tables in V3.2. Small sections are read fully into memory
// at Open; large sections are served lazily through a bounded pool of
// positioned readers and an optional per-section cache.
//
// # Opening a dataset
//
//	ds, err := patternset.Open("51Degrees.dat")
//	if err != nil {
//		return err
//	}
//	defer ds.Close()
//
//	comp, err := ds.Components().Get(ctx, 0)
//
// Open reads from disk through a bounded reader pool and defaults every
// recognized cache slot to an LRU cache; OpenBytes reads from an
// in-memory buffer and defaults to uncached, direct loaders. Both
// accept the same Options for overriding a slot's cache, the addressing
// mode, and logging.
//
// # Addressing modes
//
// WithMode selects how the container's bytes are exposed to readers:
// ModeFile (the default) keeps the file on disk and pools positioned
// readers over one open file handle; ModeMemoryMapped maps it into the
// process; ModeMemory copies it into a byte slice. Open detects gzip-
// and lz4-compressed files and transparently inflates them to a temp
// file before the mode applies; OpenBytes takes its bytes as given and
// does not decompress them.
//
// # Concurrency
//
// A Dataset is safe for concurrent use once Open returns. Entities
// returned from a List are plain values (or, for Component, a pointer
// with an internally-synchronized lazy field) that hold only their
// index and a resolver back-reference; they carry no lock of their own
// and may be freely copied, cached, or discarded by the caller.
package patternset
