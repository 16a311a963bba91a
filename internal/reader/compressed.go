package reader

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v4"
)

var (
	gzipMagic = [2]byte{0x1f, 0x8b}
	lz4Magic  = [4]byte{0x04, 0x22, 0x4d, 0x18}
)

// ResolveSource sniffs the first bytes of path for a gzip or lz4 frame
// magic and, if found, inflates the file into a spooled temp file so the
// rest of the loader can keep treating the source as a plain,
// random-access Pattern container (§6 describes the decompressed
// layout). It returns the path to open (path itself if uncompressed) and
// whether that path is a temp file the caller must clean up.
func ResolveSource(path string) (resolved string, isTemp bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", false, fmt.Errorf("reader: open %s: %w", path, err)
	}
	defer f.Close()

	var magic [4]byte
	n, _ := io.ReadFull(f, magic[:])
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", false, fmt.Errorf("reader: rewind %s: %w", path, err)
	}

	switch {
	case n >= 2 && magic[0] == gzipMagic[0] && magic[1] == gzipMagic[1]:
		out, err := inflate(path, func(r io.Reader) (io.Reader, error) {
			return gzip.NewReader(r)
		})
		return out, true, err
	case n >= 4 && magic == lz4Magic:
		out, err := inflate(path, func(r io.Reader) (io.Reader, error) {
			return lz4.NewReader(r), nil
		})
		return out, true, err
	default:
		return path, false, nil
	}
}

func inflate(path string, newDecoder func(io.Reader) (io.Reader, error)) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("reader: open compressed source %s: %w", path, err)
	}
	defer src.Close()

	dec, err := newDecoder(bufio.NewReaderSize(src, 256*1024))
	if err != nil {
		return "", fmt.Errorf("reader: create decompressor for %s: %w", path, err)
	}
	if closer, ok := dec.(io.Closer); ok {
		defer closer.Close()
	}

	dst, err := os.CreateTemp("", "pattern-inflate-*.dat")
	if err != nil {
		return "", fmt.Errorf("reader: create scratch file: %w", err)
	}
	dstName := dst.Name()

	w := bufio.NewWriterSize(dst, 256*1024)
	if _, err := io.Copy(w, dec); err != nil {
		dst.Close()
		os.Remove(dstName)
		return "", fmt.Errorf("reader: inflate %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		dst.Close()
		os.Remove(dstName)
		return "", fmt.Errorf("reader: flush scratch file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dstName)
		return "", fmt.Errorf("reader: close scratch file: %w", err)
	}

	return dstName, nil
}
