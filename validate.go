package patternset

import (
	"context"
	"fmt"
)

// Validate walks the components, properties and root nodes sections and
// spot-checks the cross references entities are expected to resolve
// (§3, invariant 2): every component's name and HTTP headers, every
// property's name/description/component references, and every root
// node's target. The maps and profile offsets sections are not checked.
// It does not walk the streamed sections exhaustively since that would defeat their purpose;
// callers who need a full sweep can iterate them directly with
// Iterator().
func (d *Dataset) Validate() error {
	ctx := context.Background()

	it := d.components.Iterator()
	for {
		c, ok, err := it.Next(ctx)
		if err != nil {
			return fmt.Errorf("patternset: validate components: %w", err)
		}
		if !ok {
			break
		}
		if _, err := c.Name(); err != nil {
			return fmt.Errorf("patternset: validate component %d name: %w", c.Index, err)
		}
		if _, err := c.HTTPHeaders(); err != nil {
			return fmt.Errorf("patternset: validate component %d headers: %w", c.Index, err)
		}
	}

	pit := d.properties.Iterator()
	for {
		p, ok, err := pit.Next(ctx)
		if err != nil {
			return fmt.Errorf("patternset: validate properties: %w", err)
		}
		if !ok {
			break
		}
		if _, err := p.Name(); err != nil {
			return fmt.Errorf("patternset: validate property %d name: %w", p.Index, err)
		}
		if _, err := p.Description(); err != nil {
			return fmt.Errorf("patternset: validate property %d description: %w", p.Index, err)
		}
		if _, err := p.Component(); err != nil {
			return fmt.Errorf("patternset: validate property %d component: %w", p.Index, err)
		}
	}

	rit := d.rootNodes.Iterator()
	for {
		r, ok, err := rit.Next(ctx)
		if err != nil {
			return fmt.Errorf("patternset: validate root nodes: %w", err)
		}
		if !ok {
			break
		}
		if _, err := r.Node(); err != nil {
			return fmt.Errorf("patternset: validate root node %d target: %w", r.Index, err)
		}
	}

	return nil
}
