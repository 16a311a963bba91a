package patternset

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gopattern/patternset/cache"
	"github.com/gopattern/patternset/entity"
	"github.com/gopattern/patternset/internal/format"
	"github.com/gopattern/patternset/internal/list"
	"github.com/gopattern/patternset/internal/reader"
)

var errUnrecognizedCacheShape = errors.New("neither cache.Cache[int, V] nor list.PutCache[int, V]")

// Open opens the Pattern container at path (§4.7). The file is sniffed
// for a gzip or lz4 frame and transparently inflated to a temp file if
// compressed; that temp file is then removed on Close regardless of
// WithDeleteOnClose.
//
// A file opened this way defaults to a fully-populated cache map: every
// recognized slot (§4.6) gets an LRU cache at its default capacity
// unless WithCacheOverride names that slot explicitly. An override must
// be a recognized cache shape (anything else, nil included, fails with
// ErrConfig), so Open always caches every slot; OpenBytes is the
// variant that leaves slots uncached by default.
func Open(path string, opts ...Option) (*Dataset, error) {
	o := applyOptions(opts)

	resolved, isTemp, err := reader.ResolveSource(path)
	if err != nil {
		return nil, translateError(err)
	}
	if isTemp {
		o.deleteOnClose = true
	}

	var src reader.Source
	var poolCapacity int
	switch o.mode {
	case ModeMemoryMapped:
		src, err = reader.OpenMmapSource(resolved)
	case ModeMemory:
		var data []byte
		data, err = os.ReadFile(resolved)
		if err == nil {
			src = reader.NewMemorySource(data)
		}
	default:
		src, err = reader.OpenFileSource(resolved)
		poolCapacity = o.readerPoolSize
	}
	if err != nil {
		if isTemp {
			_ = os.Remove(resolved)
		}
		return nil, translateError(err)
	}

	lastModified := o.lastModified
	if lastModified.IsZero() {
		if fi, statErr := os.Stat(resolved); statErr == nil {
			lastModified = fi.ModTime()
		}
	}

	d := &Dataset{
		logger:        o.logger,
		pool:          reader.NewPool(poolCapacity, src.NewReader),
		source:        src,
		path:          resolved,
		deleteOnClose: o.deleteOnClose,
		lastModified:  lastModified,
	}

	if err := assemble(d, o, true); err != nil {
		_ = d.pool.Close()
		_ = src.Close()
		if isTemp {
			_ = os.Remove(resolved)
		}
		d.logger.LogOpen(context.Background(), path, "", 0, err)
		return nil, err
	}

	d.logger.LogOpen(context.Background(), path, d.version.String(), len(d.version.Order())+1, nil)
	return d, nil
}

// OpenBytes opens a Pattern container already resident in memory. Unlike
// Open, no slot receives a default cache: every section is served by a
// direct loader unless WithCacheOverride wires one in explicitly.
func OpenBytes(data []byte, opts ...Option) (*Dataset, error) {
	o := applyOptions(opts)

	src := reader.NewMemorySource(data)
	d := &Dataset{
		logger:       o.logger,
		pool:         reader.NewPool(0, src.NewReader),
		source:       src,
		lastModified: o.lastModified,
	}

	if err := assemble(d, o, false); err != nil {
		_ = d.pool.Close()
		_ = src.Close()
		d.logger.LogOpen(context.Background(), "<bytes>", "", 0, err)
		return nil, err
	}

	d.logger.LogOpen(context.Background(), "<bytes>", d.version.String(), len(d.version.Order())+1, nil)
	return d, nil
}

// assemble runs the two-pass section discovery described in §4.7: pass
// one reads every header in order, skipping section bodies; pass two
// rewinds into each resident section and reads it fully, while stream
// sections are wired to loaders without being pre-read. defaultCache
// selects whether an unwired recognized slot gets a default LRU cache
// (file mode) or a plain direct loader (byte-slice mode).
func assemble(d *Dataset, o Options, defaultCache bool) error {
	ctx := context.Background()

	rd, err := d.pool.Borrow(ctx)
	if err != nil {
		return translateError(err)
	}
	defer d.pool.Release(rd)

	preamble, version, err := format.ReadPreamble(rd)
	if err != nil {
		return translateError(err)
	}
	d.preamble, d.version = preamble, version

	stringsHeader, err := readHeaderAndSkip(rd)
	if err != nil {
		return translateError(err)
	}

	order := version.Order()
	headers := make(map[format.SectionKind]format.SectionHeader, len(order))
	for _, kind := range order {
		h, err := readHeaderAndSkip(rd)
		if err != nil {
			return translateError(err)
		}
		headers[kind] = h
	}

	// Strings: variable-length stream list, never resident.
	stringsLoader, err := wireLoader[entity.AsciiString](
		d, entity.AsciiStringFactory{},
		variableOffset(stringsHeader), cache.SlotStrings, o.cacheOverrides, defaultCache,
	)
	if err != nil {
		return err
	}
	d.strings = list.NewVariableStreamList[entity.AsciiString](stringsLoader, int(stringsHeader.Count), entity.AsciiStringFactory{})

	// Components: fully resident, factory selected by version.
	componentsHeader := headers[format.SectionComponents]
	var componentFactory entity.Factory[*entity.Component]
	if version == format.V32 {
		componentFactory = entity.ComponentFactoryV32{}
	} else {
		componentFactory = entity.ComponentFactoryV31{}
	}
	if err := seekTo(rd, componentsHeader); err != nil {
		return translateError(err)
	}
	components, err := list.NewMemoryFixedList[*entity.Component](rd, d, int(componentsHeader.Count), componentFactory)
	if err != nil {
		return translateError(err)
	}
	d.components = residentList[*entity.Component]{MemoryFixedList: components, closed: &d.closed}
	d.logger.LogSectionLoad(ctx, "components", components.Len(), nil)

	// Maps: fully resident.
	mapsHeader := headers[format.SectionMaps]
	if err := seekTo(rd, mapsHeader); err != nil {
		return translateError(err)
	}
	maps, err := list.NewMemoryFixedList[entity.Map](rd, d, int(mapsHeader.Count), entity.MapFactory{})
	if err != nil {
		return translateError(err)
	}
	d.maps = residentList[entity.Map]{MemoryFixedList: maps, closed: &d.closed}
	d.logger.LogSectionLoad(ctx, "maps", maps.Len(), nil)

	// Properties: fully resident, plus a name index.
	propertiesHeader := headers[format.SectionProperties]
	if err := seekTo(rd, propertiesHeader); err != nil {
		return translateError(err)
	}
	rawProperties, err := list.NewMemoryFixedList[entity.Property](rd, d, int(propertiesHeader.Count), entity.PropertyFactory{})
	if err != nil {
		return translateError(err)
	}
	properties, err := newPropertiesList(rawProperties, &d.closed)
	if err != nil {
		return err
	}
	d.properties = properties
	d.logger.LogSectionLoad(ctx, "properties", properties.Len(), nil)

	// Values: fixed-length stream list.
	valuesHeader := headers[format.SectionValues]
	valuesLoader, err := wireLoader[entity.Value](
		d, entity.ValueFactory{}, fixedOffset(valuesHeader, entity.ValueFactory{}),
		cache.SlotValues, o.cacheOverrides, defaultCache,
	)
	if err != nil {
		return err
	}
	d.values = list.NewFixedStreamList[entity.Value](valuesLoader, int(valuesHeader.Count))

	// Profiles: variable-length stream list.
	profilesHeader := headers[format.SectionProfiles]
	profileFactory := entity.ProfileFactory{}
	profilesLoader, err := wireLoader[entity.Profile](
		d, profileFactory, variableOffset(profilesHeader),
		cache.SlotProfiles, o.cacheOverrides, defaultCache,
	)
	if err != nil {
		return err
	}
	d.profiles = list.NewVariableStreamList[entity.Profile](profilesLoader, int(profilesHeader.Count), profileFactory)

	// Signatures: fixed-length stream list, factory selected by version.
	signaturesHeader := headers[format.SectionSignatures]
	var signatureFactory entity.Factory[entity.Signature]
	if version == format.V32 {
		signatureFactory = entity.SignatureFactoryV32{}
	} else {
		signatureFactory = entity.SignatureFactoryV31{}
	}
	signaturesLoader, err := wireLoader[entity.Signature](
		d, signatureFactory, fixedOffset(signaturesHeader, signatureFactory),
		cache.SlotSignatures, o.cacheOverrides, defaultCache,
	)
	if err != nil {
		return err
	}
	d.signatures = list.NewFixedStreamList[entity.Signature](signaturesLoader, int(signaturesHeader.Count))

	// V3.2-only packed side-tables.
	if version == format.V32 {
		sigNodeOffsetsHeader := headers[format.SectionSignatureNodeOffsets]
		if err := seekTo(rd, sigNodeOffsetsHeader); err != nil {
			return translateError(err)
		}
		sigNodeOffsets, err := list.NewIntegerList(rd, int(sigNodeOffsetsHeader.Count))
		if err != nil {
			return translateError(err)
		}
		d.signatureNodeOffsets = sigNodeOffsets

		nodeRankedHeader := headers[format.SectionNodeRankedSigIndexes]
		if err := seekTo(rd, nodeRankedHeader); err != nil {
			return translateError(err)
		}
		nodeRanked, err := list.NewIntegerList(rd, int(nodeRankedHeader.Count))
		if err != nil {
			return translateError(err)
		}
		d.nodeRankedSignatureIndex = nodeRanked
	}

	// Ranked-signature-indexes: present in both versions.
	rankedHeader := headers[format.SectionRankedSignatureIndexes]
	if err := seekTo(rd, rankedHeader); err != nil {
		return translateError(err)
	}
	ranked, err := list.NewIntegerList(rd, int(rankedHeader.Count))
	if err != nil {
		return translateError(err)
	}
	d.rankedSignatureIndex = ranked

	// Nodes: variable-length stream list, factory selected by version.
	nodesHeader := headers[format.SectionNodes]
	var nodeFactory entity.VariableFactory[entity.Node]
	if version == format.V32 {
		nodeFactory = entity.NodeFactoryV32{}
	} else {
		nodeFactory = entity.NodeFactoryV31{}
	}
	nodesLoader, err := wireLoader[entity.Node](
		d, nodeFactory, variableOffset(nodesHeader),
		cache.SlotNodes, o.cacheOverrides, defaultCache,
	)
	if err != nil {
		return err
	}
	d.nodes = list.NewVariableStreamList[entity.Node](nodesLoader, int(nodesHeader.Count), nodeFactory)

	// RootNodes: fully resident.
	rootNodesHeader := headers[format.SectionRootNodes]
	if err := seekTo(rd, rootNodesHeader); err != nil {
		return translateError(err)
	}
	rootNodes, err := list.NewMemoryFixedList[entity.RootNode](rd, d, int(rootNodesHeader.Count), entity.RootNodeFactory{})
	if err != nil {
		return translateError(err)
	}
	d.rootNodes = residentList[entity.RootNode]{MemoryFixedList: rootNodes, closed: &d.closed}
	d.logger.LogSectionLoad(ctx, "root_nodes", rootNodes.Len(), nil)

	// ProfileOffsets: fully resident.
	profileOffsetsHeader := headers[format.SectionProfileOffsets]
	if err := seekTo(rd, profileOffsetsHeader); err != nil {
		return translateError(err)
	}
	profileOffsets, err := list.NewMemoryFixedList[entity.ProfileOffset](rd, d, int(profileOffsetsHeader.Count), entity.ProfileOffsetFactory{})
	if err != nil {
		return translateError(err)
	}
	d.profileOffsets = residentList[entity.ProfileOffset]{MemoryFixedList: profileOffsets, closed: &d.closed}
	d.logger.LogSectionLoad(ctx, "profile_offsets", profileOffsets.Len(), nil)

	return nil
}

func readHeaderAndSkip(rd reader.Reader) (format.SectionHeader, error) {
	h, err := format.ReadSectionHeader(rd)
	if err != nil {
		return h, err
	}
	if err := rd.Seek(int64(h.Start) + int64(h.ByteLength)); err != nil {
		return h, err
	}
	return h, nil
}

func seekTo(rd reader.Reader, h format.SectionHeader) error {
	return rd.Seek(int64(h.Start))
}

func fixedOffset(h format.SectionHeader, factory interface{ Length() (int, error) }) list.OffsetFunc {
	size, _ := factory.Length()
	start := int64(h.Start)
	return func(k int) int64 { return start + int64(k)*int64(size) }
}

func variableOffset(h format.SectionHeader) list.OffsetFunc {
	start := int64(h.Start)
	return func(k int) int64 { return start + int64(k) }
}

// wireLoader dispatches a section to a direct, LRU-cached, or put-cache
// loader per the caller-supplied cache map (§4.5, §4.6). A cache
// override whose shape doesn't match either recognized loader interface
// fails the whole open with ErrConfig.
func wireLoader[T any](d *Dataset, factory entity.Factory[T], offset list.OffsetFunc, slot cache.Slot, overrides map[cache.Slot]any, useDefault bool) (list.EntityLoader[T], error) {
	if d.cacheStats == nil {
		d.cacheStats = make(map[cache.Slot]func() cache.Stats)
	}

	if raw, ok := overrides[slot]; ok {
		switch c := raw.(type) {
		case cache.Cache[int, T]:
			d.logger.LogCacheEvent(context.Background(), slot, "lru-override")
			d.cacheStats[slot] = c.Stats
			return list.NewLRULoader[T](d.pool, d, factory, offset, c), nil
		case list.PutCache[int, T]:
			d.logger.LogCacheEvent(context.Background(), slot, "put-cache")
			return list.NewPutCacheLoader[T](d.pool, d, factory, offset, c), nil
		default:
			return nil, translateError(fmt.Errorf("%w: slot %s: %w", cache.ErrConfig, slot, errUnrecognizedCacheShape))
		}
	}

	if useDefault {
		c := cache.NewLRUCache[int, T](slot.DefaultCapacity())
		d.closers = append(d.closers, c)
		d.cacheStats[slot] = c.Stats
		d.logger.LogCacheEvent(context.Background(), slot, "lru-default")
		return list.NewLRULoader[T](d.pool, d, factory, offset, c), nil
	}

	d.logger.LogCacheEvent(context.Background(), slot, "direct")
	return list.NewDirectLoader[T](d.pool, d, factory, offset), nil
}
