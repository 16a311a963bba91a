package distribution

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource writes a fixed, minimal V3.1 container to destDir on every
// Fetch and reports whatever version the test last set, so tests can
// assert a second Refresh with an unchanged version is a no-op.
type fakeSource struct {
	calls   int
	version string
}

func (f *fakeSource) Fetch(ctx context.Context, destDir string) (string, string, error) {
	f.calls++
	path := filepath.Join(destDir, "fake-pattern.dat")
	if err := os.WriteFile(path, buildMinimalV31(), 0o600); err != nil {
		return "", "", err
	}
	return path, f.version, nil
}

func u16(v uint16) []byte { b := make([]byte, 2); binary.LittleEndian.PutUint16(b, v); return b }
func u32(v uint32) []byte { b := make([]byte, 4); binary.LittleEndian.PutUint32(b, v); return b }
func i32(v int32) []byte  { return u32(uint32(v)) }

func appendSection(buf *bytes.Buffer, count uint32, body []byte) {
	start := uint32(buf.Len()) + 12
	buf.Write(u32(start))
	buf.Write(u32(count))
	buf.Write(u32(uint32(len(body))))
	buf.Write(body)
}

// buildMinimalV31 mirrors the root package's own fixture builder; it is
// duplicated rather than imported since patternset's is a package-private
// test helper and distribution only needs the on-disk bytes, not the
// assembled Dataset internals.
func buildMinimalV31() []byte {
	var buf bytes.Buffer

	buf.WriteByte(3)
	buf.WriteByte(1)
	buf.Write(u16(0))
	buf.Write(make([]byte, 16))
	buf.Write(u16(0))
	for i := 0; i < 6; i++ {
		buf.Write(u16(0))
	}
	buf.Write(u32(0))
	buf.Write(u32(0))

	appendSection(&buf, 1, append(u16(9), []byte("IsMobile\x00")...))
	appendSection(&buf, 1, append(u32(1), i32(-1)...))
	appendSection(&buf, 1, i32(-1))
	appendSection(&buf, 1, append(append(append(append(i32(0), u32(0)...), i32(-1)...), i32(-1)...), i32(0)...))
	appendSection(&buf, 1, append(append(i32(0), i32(0)...), i32(-1)...))
	appendSection(&buf, 1, append(append(u32(1), i32(0)...), u32(0)...))

	var sigBody []byte
	for i := 0; i < 8; i++ {
		sigBody = append(sigBody, i32(-1)...)
	}
	sigBody = append(sigBody, u32(7)...)
	sigBody = append(sigBody, u32(0)...)
	appendSection(&buf, 1, sigBody)

	appendSection(&buf, 1, u32(0))
	appendSection(&buf, 1, append(append(append(i32(0), u16(0)...), u16(0)...), u16(0)...))
	appendSection(&buf, 1, append(i32(0), i32(0)...))
	appendSection(&buf, 1, append(u32(1), u32(0)...))

	return buf.Bytes()
}

func TestDistributor_RefreshSwapsOnlyOnNewVersion(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{version: "v1"}
	d := New(src, Options{StageDir: t.TempDir()})

	assert.Nil(t, d.Current())

	require.NoError(t, d.Refresh(ctx))
	first := d.Current()
	require.NotNil(t, first)
	assert.Equal(t, 1, src.calls)

	src.version = "v1" // unchanged
	require.NoError(t, d.Refresh(ctx))
	assert.Equal(t, 2, src.calls)
	assert.Same(t, first, d.Current())

	src.version = "v2"
	require.NoError(t, d.Refresh(ctx))
	assert.Equal(t, 3, src.calls)
	assert.NotSame(t, first, d.Current())

	require.NoError(t, d.Close())
	assert.Nil(t, d.Current())
}

func TestDistributor_RefreshWithLease(t *testing.T) {
	ctx := context.Background()
	client := newFakeDDBClient()

	srcA := &fakeSource{version: "v1"}
	leaseA := NewLease(client, "leases", "pattern-dataset", "host-a")
	dA := New(srcA, Options{StageDir: t.TempDir(), Lease: leaseA})

	require.NoError(t, dA.Refresh(ctx))
	assert.Equal(t, 1, srcA.calls)

	status := dA.Status()
	assert.Equal(t, "v1", status.Version)
	assert.Equal(t, int64(1), status.RefreshCount)
}
