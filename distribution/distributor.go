package distribution

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/gopattern/patternset"
)

// Options configures a Distributor.
type Options struct {
	// Lease, if set, is acquired before every Refresh so only one
	// process in a fleet sharing Source performs the download.
	Lease *Lease
	// LeaseTTL bounds how long a Refresh may run before another owner
	// is allowed to take over a stuck lease. Defaults to 5 minutes.
	LeaseTTL time.Duration
	// StageDir is where a fetched candidate file is written before it
	// is opened; defaults to os.TempDir().
	StageDir string
	// GracePeriod delays Close of the previously-active Dataset after a
	// successful swap, giving in-flight callers holding a reference to
	// it (via Current, called before the swap) time to finish. Entities
	// are by-value snapshots, so this is a courtesy against a caller
	// holding the *Dataset itself, not a correctness requirement.
	GracePeriod time.Duration
	// OpenOptions are forwarded to patternset.Open for every fetched
	// candidate.
	OpenOptions []patternset.Option
}

// Status is a point-in-time snapshot of a Distributor's state.
type Status struct {
	Version      string
	Source       string
	SizeBytes    int64
	LastRefresh  time.Time
	LastError    error
	RefreshCount int64
}

// Distributor holds the currently-active Dataset behind an atomic
// pointer and refreshes it from a Source without ever mutating a
// Dataset already handed out to a caller (patternset's invariant that a
// Dataset is immutable after Open).
type Distributor struct {
	source Source
	opts   Options

	current atomic.Pointer[patternset.Dataset]

	lastVersion  atomic.Value // string
	lastRefresh  atomic.Value // time.Time
	lastErr      atomic.Pointer[error]
	lastSize     atomic.Int64
	refreshCount atomic.Int64
	sourceLabel  string
}

// New builds a Distributor around source. It does not fetch anything
// until the first Refresh; callers typically Open an initial Dataset
// themselves and seed it with Seed before serving traffic.
func New(source Source, opts Options) *Distributor {
	if opts.LeaseTTL <= 0 {
		opts.LeaseTTL = 5 * time.Minute
	}
	if opts.StageDir == "" {
		opts.StageDir = os.TempDir()
	}
	d := &Distributor{source: source, opts: opts, sourceLabel: fmt.Sprintf("%T", source)}
	d.lastVersion.Store("")
	d.lastRefresh.Store(time.Time{})
	return d
}

// Seed installs an already-open Dataset as the active one, for startup
// paths that open a local copy before any network fetch has happened.
func (d *Distributor) Seed(ds *patternset.Dataset) {
	d.current.Store(ds)
}

// Current returns the active Dataset, or nil if none has been Seeded or
// successfully Refreshed yet.
func (d *Distributor) Current() *patternset.Dataset {
	return d.current.Load()
}

// Refresh fetches the currently-published Pattern file, opens it as a
// new Dataset, and swaps it in for Current. If a Lease is configured and
// already held elsewhere, Refresh returns ErrLeaseHeld without touching
// Source.
func (d *Distributor) Refresh(ctx context.Context) error {
	if d.opts.Lease != nil {
		ok, err := d.opts.Lease.Acquire(ctx, d.opts.LeaseTTL)
		if err != nil {
			return err
		}
		if !ok {
			return ErrLeaseHeld
		}
		defer d.opts.Lease.Release(ctx)
	}

	path, version, err := d.source.Fetch(ctx, d.opts.StageDir)
	if err != nil {
		d.recordError(err)
		return err
	}

	if version != "" && version == d.lastVersion.Load().(string) {
		os.Remove(path)
		return nil
	}

	var size int64
	if fi, statErr := os.Stat(path); statErr == nil {
		size = fi.Size()
	}

	openOpts := append(append([]patternset.Option{}, d.opts.OpenOptions...), patternset.WithDeleteOnClose(true))
	next, err := patternset.Open(path, openOpts...)
	if err != nil {
		os.Remove(path)
		d.recordError(err)
		return fmt.Errorf("distribution: open fetched dataset: %w", err)
	}

	previous := d.current.Swap(next)

	d.lastVersion.Store(version)
	d.lastRefresh.Store(time.Now())
	d.lastErr.Store(nil)
	d.lastSize.Store(size)
	d.refreshCount.Add(1)

	if d.opts.Lease != nil {
		_ = d.opts.Lease.RecordVersion(ctx, version)
	}

	if previous != nil {
		d.retireAfterGrace(previous)
	}

	return nil
}

func (d *Distributor) retireAfterGrace(ds *patternset.Dataset) {
	if d.opts.GracePeriod <= 0 {
		_ = ds.Close()
		return
	}
	go func() {
		time.Sleep(d.opts.GracePeriod)
		_ = ds.Close()
	}()
}

func (d *Distributor) recordError(err error) {
	d.lastErr.Store(&err)
}

// Status reports the Distributor's current view of the world: the
// active dataset's version and size, plus counters about the refresh
// history. Status itself stays a plain data snapshot with SizeBytes as a
// raw byte count; StatusLine renders it through go-humanize.
func (d *Distributor) Status() Status {
	s := Status{
		Source:       d.sourceLabel,
		Version:      d.lastVersion.Load().(string),
		SizeBytes:    d.lastSize.Load(),
		LastRefresh:  d.lastRefresh.Load().(time.Time),
		RefreshCount: d.refreshCount.Load(),
	}
	if p := d.lastErr.Load(); p != nil {
		s.LastError = *p
	}
	return s
}

// StatusLine renders Status as a single human-readable line, e.g. for a
// startup log message.
func (s Status) StatusLine() string {
	if s.LastError != nil {
		return fmt.Sprintf("distribution: %s last refresh failed: %v", s.Source, s.LastError)
	}
	if s.LastRefresh.IsZero() {
		return fmt.Sprintf("distribution: %s not yet refreshed", s.Source)
	}
	return fmt.Sprintf("distribution: %s at version %q (%s), refreshed %s, %d refresh(es) total",
		s.Source, s.Version, humanize.Bytes(uint64(s.SizeBytes)), humanize.Time(s.LastRefresh), s.RefreshCount)
}

// Close closes the currently-active Dataset, if any. It does not stop
// any goroutine scheduled by a GracePeriod retirement; those close their
// own (already-superseded) Dataset independently.
func (d *Distributor) Close() error {
	if ds := d.current.Swap(nil); ds != nil {
		return ds.Close()
	}
	return nil
}
