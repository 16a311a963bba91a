package patternset

import (
	"context"
	"os"
)

// Close releases the reader pool, closes any memory mapping, closes
// caches that hold resources, and, if WithDeleteOnClose was set,
// removes the backing file. Close is idempotent; subsequent calls
// return nil.
func (d *Dataset) Close() error {
	if d == nil {
		return nil
	}
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}

	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if d.pool != nil {
		record(d.pool.Close())
	}
	if d.source != nil {
		record(d.source.Close())
	}
	for _, c := range d.closers {
		record(c.Close())
	}

	deleted := false
	if d.deleteOnClose && d.path != "" {
		if err := os.Remove(d.path); err != nil && !os.IsNotExist(err) {
			record(err)
		} else {
			deleted = true
		}
	}

	d.logger.LogClose(context.Background(), deleted, firstErr)
	return firstErr
}

// Closed reports whether Close has been called.
func (d *Dataset) Closed() bool {
	return d.closed.Load()
}
