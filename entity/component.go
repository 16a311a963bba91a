package entity

import (
	"fmt"
	"sync/atomic"

	"github.com/gopattern/patternset/internal/reader"
)

// deviceUserAgentHeaders mirrors the header set the original format
// associates with the hardware/software platform components; ported
// from ComponentV31's name dispatch rather than stored on disk.
var deviceUserAgentHeaders = []string{"User-Agent", "Device-Stock-UA"}

// Component groups related properties under a named category, e.g.
// "HardwarePlatform" or "BrowserUA". Its record layout differs by
// version: V3.1 stores no HTTP header list and derives one lazily from
// the component name, while V3.2 stores an explicit, fixed-width table
// of header name offsets.
type Component struct {
	Index          int
	ID             uint32
	NameOffset     int32
	headerOffsets  [maxComponentHeaders]int32 // V3.2 only; -1 marks an unused slot
	explicitHeader bool

	res         Resolver
	httpHeaders atomic.Pointer[[]string]
}

const maxComponentHeaders = 4

// Name resolves the component's name string.
func (c *Component) Name() (string, error) {
	if c.NameOffset < 0 {
		return "", nil
	}
	s, err := c.res.String(int(c.NameOffset))
	if err != nil {
		return "", fmt.Errorf("entity: resolve component %d name: %w", c.Index, err)
	}
	return s.Value(), nil
}

// HTTPHeaders returns the HTTP headers whose values are relevant to this
// component's properties. V3.2 components resolve an explicit table.
// V3.1 components derive the list lazily from the component name and
// memoize it behind an atomic pointer so concurrent readers never block
// on each other (ComponentV31's synchronized-block equivalent).
func (c *Component) HTTPHeaders() ([]string, error) {
	if c.explicitHeader {
		headers := make([]string, 0, maxComponentHeaders)
		for _, off := range c.headerOffsets {
			if off < 0 {
				continue
			}
			s, err := c.res.String(int(off))
			if err != nil {
				return nil, fmt.Errorf("entity: resolve component %d header: %w", c.Index, err)
			}
			headers = append(headers, s.Value())
		}
		return headers, nil
	}

	if p := c.httpHeaders.Load(); p != nil {
		return *p, nil
	}

	name, err := c.Name()
	if err != nil {
		return nil, err
	}

	var headers []string
	switch name {
	case "HardwarePlatform", "SoftwarePlatform":
		headers = deviceUserAgentHeaders
	case "BrowserUA", "Crawler":
		headers = []string{"User-Agent"}
	default:
		headers = nil
	}

	c.httpHeaders.CompareAndSwap(nil, &headers)
	return *c.httpHeaders.Load(), nil
}

// ComponentFactoryV31 builds Component records for the V3.1 fixed layout
// (component id, name offset).
type ComponentFactoryV31 struct{}

func (ComponentFactoryV31) Create(res Resolver, index int, r reader.Reader) (*Component, error) {
	id, err := r.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("entity: read component %d id: %w", index, err)
	}
	name, err := r.ReadInt32()
	if err != nil {
		return nil, fmt.Errorf("entity: read component %d name offset: %w", index, err)
	}
	c := &Component{Index: index, ID: id, NameOffset: name, res: res}
	for i := range c.headerOffsets {
		c.headerOffsets[i] = -1
	}
	return c, nil
}

func (ComponentFactoryV31) Length() (int, error) {
	return 8, nil
}

// ComponentFactoryV32 builds Component records for the V3.2 layout, which
// adds a fixed-width table of explicit header name offsets.
type ComponentFactoryV32 struct{}

func (ComponentFactoryV32) Create(res Resolver, index int, r reader.Reader) (*Component, error) {
	id, err := r.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("entity: read component %d id: %w", index, err)
	}
	name, err := r.ReadInt32()
	if err != nil {
		return nil, fmt.Errorf("entity: read component %d name offset: %w", index, err)
	}
	c := &Component{Index: index, ID: id, NameOffset: name, res: res, explicitHeader: true}
	for i := range c.headerOffsets {
		off, err := r.ReadInt32()
		if err != nil {
			return nil, fmt.Errorf("entity: read component %d header %d: %w", index, i, err)
		}
		c.headerOffsets[i] = off
	}
	return c, nil
}

func (ComponentFactoryV32) Length() (int, error) {
	return 8 + 4*maxComponentHeaders, nil
}
