package reader

import (
	"fmt"
	"os"

	"github.com/gopattern/patternset/internal/mmap"
)

// Source produces independent Readers over one underlying byte range.
// FileSource and MemorySource satisfy it; the Pool's newFn closes over a
// Source's NewReader method.
type Source interface {
	Size() int64
	NewReader() (Reader, error)
	Close() error
}

// FileSource reads through a single shared *os.File using positioned
// ReadAt calls, so any number of Readers can be handed out without
// opening additional file descriptors; the reader.Pool still bounds how
// many may be borrowed concurrently.
type FileSource struct {
	f    *os.File
	size int64
}

// OpenFileSource opens path for reading.
func OpenFileSource(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reader: open %s: %w", path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("reader: stat %s: %w", path, err)
	}
	return &FileSource{f: f, size: fi.Size()}, nil
}

func (s *FileSource) Size() int64 { return s.size }

func (s *FileSource) NewReader() (Reader, error) {
	return NewFileReader(s.f, s.size), nil
}

func (s *FileSource) Close() error { return s.f.Close() }

// MemorySource reads from an in-memory byte slice shared by every
// Reader it produces; safe for concurrent use because the slice is
// never mutated after Open.
type MemorySource struct {
	data []byte
}

// NewMemorySource wraps data without copying it.
func NewMemorySource(data []byte) *MemorySource {
	return &MemorySource{data: data}
}

func (s *MemorySource) Size() int64 { return int64(len(s.data)) }

func (s *MemorySource) NewReader() (Reader, error) {
	return NewMemoryReader(s.data), nil
}

func (s *MemorySource) Close() error { return nil }

// MmapSource maps a file into memory once and hands out cursors over the
// shared mapping, avoiding both per-reader file descriptors and a
// user-space copy of the file.
type MmapSource struct {
	m *mmap.Mapping
}

// OpenMmapSource memory-maps path read-only.
func OpenMmapSource(path string) (*MmapSource, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reader: mmap %s: %w", path, err)
	}
	return &MmapSource{m: m}, nil
}

func (s *MmapSource) Size() int64 { return int64(s.m.Size()) }

func (s *MmapSource) NewReader() (Reader, error) {
	return NewMemoryReader(s.m.Bytes()), nil
}

func (s *MmapSource) Close() error { return s.m.Close() }
