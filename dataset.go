package patternset

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/gopattern/patternset/cache"
	"github.com/gopattern/patternset/entity"
	"github.com/gopattern/patternset/internal/format"
	"github.com/gopattern/patternset/internal/list"
	"github.com/gopattern/patternset/internal/reader"
)

// Dataset is an opened, immutable Pattern container. It is safe for
// concurrent use by multiple goroutines; every accessor either returns
// resident data or serves the request through the reader pool and the
// caches wired at Open (§5).
type Dataset struct {
	logger *Logger

	pool   *reader.Pool
	source reader.Source

	path          string
	deleteOnClose bool
	lastModified  time.Time
	closed        atomic.Bool
	closers       []io.Closer
	cacheStats    map[cache.Slot]func() cache.Stats

	version  format.Version
	preamble format.Preamble

	strings    list.List[entity.AsciiString]
	components residentList[*entity.Component]
	maps       residentList[entity.Map]
	properties *PropertiesList
	values     list.List[entity.Value]
	profiles   list.List[entity.Profile]
	signatures list.List[entity.Signature]
	nodes      list.List[entity.Node]
	rootNodes  residentList[entity.RootNode]

	profileOffsets residentList[entity.ProfileOffset]

	// signatureNodeOffsets and nodeRankedSignatureIndex are present only
	// for V3.2; they are nil in V3.1 datasets, where these references are
	// stored inline on the owning entity instead. rankedSignatureIndex is
	// present in both versions.
	signatureNodeOffsets     *list.IntegerList
	nodeRankedSignatureIndex *list.IntegerList
	rankedSignatureIndex     *list.IntegerList
}

// residentList wraps a fully in-memory section with the owning Dataset's
// closed flag: MemoryFixedList.Get itself has no notion of Close, so
// without this a caller holding a List obtained before Close (or a
// resolver method routing through one) would keep reading stale data
// after Close returns, unlike the pool-backed stream sections (§5).
type residentList[T any] struct {
	*list.MemoryFixedList[T]
	closed *atomic.Bool
}

func (r residentList[T]) Get(ctx context.Context, k int) (T, error) {
	if r.closed.Load() {
		var zero T
		return zero, ErrClosed
	}
	return r.MemoryFixedList.Get(ctx, k)
}

// Version reports which of the two supported Pattern container layouts
// this dataset was opened from.
func (d *Dataset) Version() format.Version { return d.version }

// Copyright returns the copyright notice embedded in the container's
// preamble.
func (d *Dataset) Copyright() string { return d.preamble.Copyright }

// Published returns the preamble's published-age field, in the units the
// container itself defines (days since the format's epoch).
func (d *Dataset) Published() uint16 { return d.preamble.Published }

// LastModified reports when the backing data was last written: either
// the value passed to WithLastModified, or the source file's
// modification time for Open, or the zero time for OpenBytes with
// neither given.
func (d *Dataset) LastModified() time.Time { return d.lastModified }

// Strings returns the strings section, a variable-length list addressed
// by byte offset.
func (d *Dataset) Strings() List[entity.AsciiString] { return d.strings }

// Components returns the fully-resident components section.
func (d *Dataset) Components() List[*entity.Component] { return d.components }

// Maps returns the fully-resident maps section.
func (d *Dataset) Maps() List[entity.Map] { return d.maps }

// Properties returns the fully-resident properties section, with a
// name index built at open time.
func (d *Dataset) Properties() *PropertiesList { return d.properties }

// Values returns the values section.
func (d *Dataset) Values() List[entity.Value] { return d.values }

// Profiles returns the profiles section, a variable-length list
// addressed by byte offset.
func (d *Dataset) Profiles() List[entity.Profile] { return d.profiles }

// Signatures returns the signatures section.
func (d *Dataset) Signatures() List[entity.Signature] { return d.signatures }

// Nodes returns the nodes section, a variable-length list addressed by
// byte offset.
func (d *Dataset) Nodes() List[entity.Node] { return d.nodes }

// RootNodes returns the fully-resident root nodes section.
func (d *Dataset) RootNodes() List[entity.RootNode] { return d.rootNodes }

// ProfileOffsets returns the fully-resident profile offsets section.
func (d *Dataset) ProfileOffsets() List[entity.ProfileOffset] { return d.profileOffsets }

// entity.Resolver implementation. Dataset itself is passed to every
// factory as the back-reference an entity uses to resolve cross-section
// references lazily; see entity.Resolver's doc comment for why this is
// a narrow interface rather than the concrete *Dataset type.

func (d *Dataset) String(offset int) (entity.AsciiString, error) {
	v, err := d.strings.Get(context.Background(), offset)
	return v, translateError(err)
}

func (d *Dataset) Component(index int) (*entity.Component, error) {
	v, err := d.components.Get(context.Background(), index)
	return v, translateError(err)
}

func (d *Dataset) Map(index int) (entity.Map, error) {
	v, err := d.maps.Get(context.Background(), index)
	return v, translateError(err)
}

func (d *Dataset) Property(index int) (entity.Property, error) {
	v, err := d.properties.Get(context.Background(), index)
	return v, translateError(err)
}

func (d *Dataset) Value(index int) (entity.Value, error) {
	v, err := d.values.Get(context.Background(), index)
	return v, translateError(err)
}

func (d *Dataset) Profile(offset int) (entity.Profile, error) {
	v, err := d.profiles.Get(context.Background(), offset)
	return v, translateError(err)
}

func (d *Dataset) Node(offset int) (entity.Node, error) {
	v, err := d.nodes.Get(context.Background(), offset)
	return v, translateError(err)
}

func (d *Dataset) SignatureNodeOffset(index int) (uint32, error) {
	if d.signatureNodeOffsets == nil {
		return 0, ErrInvalidFormat
	}
	v, err := d.signatureNodeOffsets.Get(context.Background(), index)
	return v, translateError(err)
}

func (d *Dataset) NodeRankedSignatureIndex(index int) (uint32, error) {
	if d.nodeRankedSignatureIndex == nil {
		return 0, ErrInvalidFormat
	}
	v, err := d.nodeRankedSignatureIndex.Get(context.Background(), index)
	return v, translateError(err)
}

func (d *Dataset) RankedSignatureIndex(index int) (uint32, error) {
	if d.rankedSignatureIndex == nil {
		return 0, ErrInvalidFormat
	}
	v, err := d.rankedSignatureIndex.Get(context.Background(), index)
	return v, translateError(err)
}

// RankedSignatureCount returns the number of entries in the
// ranked-signature-indexes side table, present in both V3.1 and V3.2
// datasets; it returns 0 only if a Dataset was never fully assembled.
func (d *Dataset) RankedSignatureCount() int {
	if d.rankedSignatureIndex == nil {
		return 0
	}
	return d.rankedSignatureIndex.Len()
}
