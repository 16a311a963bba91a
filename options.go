package patternset

import (
	"time"

	"github.com/gopattern/patternset/cache"
)

// Mode selects how the container's bytes are made addressable.
type Mode int

const (
	// ModeFile keeps the container on disk and reads through a bounded
	// pool of positioned file readers.
	ModeFile Mode = iota
	// ModeMemoryMapped maps the container into the process's address
	// space; readers become cheap cursors over the mapping.
	ModeMemoryMapped
	// ModeMemory copies the entire container into a byte slice up
	// front; readers become cheap cursors over the slice.
	ModeMemory
)

// defaultFileReaderPoolSize bounds concurrently-borrowed file readers
// (which all share one open file) when Mode is ModeFile and the caller
// hasn't overridden it with WithReaderPoolSize.
const defaultFileReaderPoolSize = 8

// Options configures Open (§6). The zero value is not meaningful on its
// own; use applyOptions, which seeds sensible defaults before running
// caller-supplied Option funcs.
type Options struct {
	mode           Mode
	deleteOnClose  bool
	lastModified   time.Time // zero means "infer from the source"
	cacheOverrides map[cache.Slot]any
	readerPoolSize int
	logger         *Logger
}

// Option configures Open's behavior.
type Option func(*Options)

// WithMode selects how the container's bytes are addressed.
func WithMode(m Mode) Option {
	return func(o *Options) { o.mode = m }
}

// WithDeleteOnClose arranges for the backing file to be removed when
// the returned Dataset is closed. It applies to Open in every Mode and
// has no effect on OpenBytes, which has no backing file. Open already
// removes a temp file it produced by decompression (§ compressed
// sources) regardless of this option.
func WithDeleteOnClose(b bool) Option {
	return func(o *Options) { o.deleteOnClose = b }
}

// WithLastModified overrides the timestamp reported for this dataset's
// backing data; if not set, it is inferred from the source's file
// modification time where available.
func WithLastModified(t time.Time) Option {
	return func(o *Options) { o.lastModified = t }
}

// WithCacheOverride assigns a cache to a recognized slot (§4.6). c must
// be either a cache.Cache[int, V] (the LRU-cached loader variant) or a
// list.PutCache[int, V] (the put-cache variant) for the entity type V
// that slot holds; any other shape fails Open with ErrConfig.
func WithCacheOverride(slot cache.Slot, c any) Option {
	return func(o *Options) {
		if o.cacheOverrides == nil {
			o.cacheOverrides = make(map[cache.Slot]any)
		}
		o.cacheOverrides[slot] = c
	}
}

// WithReaderPoolSize bounds the number of concurrently-borrowed readers
// in ModeFile. It has no effect in the memory modes, where readers are
// cheap and the pool is unbounded.
func WithReaderPoolSize(n int) Option {
	return func(o *Options) { o.readerPoolSize = n }
}

// WithLogger configures structured logging for Open/Close and section
// loads. Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *Options) { o.logger = logger }
}

func applyOptions(optFns []Option) Options {
	o := Options{
		mode:           ModeFile,
		readerPoolSize: defaultFileReaderPoolSize,
		logger:         NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
