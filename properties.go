package patternset

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/gopattern/patternset/entity"
	"github.com/gopattern/patternset/internal/list"
)

// PropertiesList is the resident Properties section plus a name index,
// built once during Open by walking every property (§3's Properties
// table is small enough that resolving each name up front is cheap
// relative to a linear scan per ByName call).
type PropertiesList struct {
	*list.MemoryFixedList[entity.Property]
	byName map[string]int
	closed *atomic.Bool
}

func newPropertiesList(base *list.MemoryFixedList[entity.Property], closed *atomic.Bool) (*PropertiesList, error) {
	byName := make(map[string]int, base.Len())
	it := base.Iterator()
	for {
		p, ok, err := it.Next(context.Background())
		if err != nil {
			return nil, fmt.Errorf("patternset: index properties: %w", err)
		}
		if !ok {
			break
		}
		name, err := p.Name()
		if err != nil {
			return nil, fmt.Errorf("patternset: index properties: %w", err)
		}
		if name != "" {
			byName[name] = p.Index
		}
	}
	return &PropertiesList{MemoryFixedList: base, byName: byName, closed: closed}, nil
}

// Get overrides the embedded MemoryFixedList's Get so that a Properties()
// reference obtained before Close fails with ErrClosed afterward instead
// of continuing to serve resident data (§5).
func (l *PropertiesList) Get(ctx context.Context, k int) (entity.Property, error) {
	if l.closed.Load() {
		return entity.Property{}, ErrClosed
	}
	return l.MemoryFixedList.Get(ctx, k)
}

// ByName looks up a property by its exposed name, e.g. "IsMobile".
func (l *PropertiesList) ByName(name string) (entity.Property, bool) {
	idx, ok := l.byName[name]
	if !ok {
		return entity.Property{}, false
	}
	v, err := l.Get(context.Background(), idx)
	if err != nil {
		return entity.Property{}, false
	}
	return v, true
}
