package patternset

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gopattern/patternset/internal/format"
)

func u16(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func u32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func i32(v int32) []byte { return u32(uint32(v)) }

func appendSection(buf *bytes.Buffer, count uint32, body []byte) {
	start := uint32(buf.Len()) + 12
	buf.Write(u32(start))
	buf.Write(u32(count))
	buf.Write(u32(uint32(len(body))))
	buf.Write(body)
}

// buildV31 constructs a minimal, self-consistent V3.1 container with
// exactly one record per section, exercising every step of §4.7's
// discovery sequence without a real 51Degrees data file.
func buildV31(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer

	buf.WriteByte(3)
	buf.WriteByte(1)
	buf.Write(u16(0))          // format version
	buf.Write(make([]byte, 16)) // tag
	buf.Write(u16(0))          // copyright length
	for i := 0; i < 6; i++ {
		buf.Write(u16(0))
	}
	buf.Write(u32(0)) // device combinations
	buf.Write(u32(0)) // max signatures

	stringBody := append(u16(9), []byte("IsMobile\x00")...)
	appendSection(&buf, 1, stringBody)

	componentsBody := append(u32(1), i32(-1)...)
	appendSection(&buf, 1, componentsBody)

	mapsBody := i32(-1)
	appendSection(&buf, 1, mapsBody)

	propertiesBody := append(append(append(append(
		i32(0), // name offset -> "IsMobile"
		u32(0)...), // value type
		i32(-1)...), // default value index
		i32(-1)...), // description offset
		i32(0)...) // component index
	appendSection(&buf, 1, propertiesBody)

	valuesBody := append(append(i32(0), i32(0)...), i32(-1)...)
	appendSection(&buf, 1, valuesBody)

	profileBody := append(append(u32(1), i32(0)...), u32(0)...)
	appendSection(&buf, 1, profileBody)

	var sigBody []byte
	for i := 0; i < 8; i++ {
		sigBody = append(sigBody, i32(-1)...)
	}
	sigBody = append(sigBody, u32(7)...) // rank
	sigBody = append(sigBody, u32(0)...) // flags
	appendSection(&buf, 1, sigBody)

	rankedBody := u32(0)
	appendSection(&buf, 1, rankedBody)

	nodeBody := append(append(append(i32(0), u16(0)...), u16(0)...), u16(0)...)
	appendSection(&buf, 1, nodeBody)

	rootNodeBody := append(i32(0), i32(0)...)
	appendSection(&buf, 1, rootNodeBody)

	profileOffsetBody := append(u32(1), u32(0)...)
	appendSection(&buf, 1, profileOffsetBody)

	return buf.Bytes()
}

func TestOpenBytes_V31RoundTrip(t *testing.T) {
	ctx := context.Background()
	data := buildV31(t)

	ds, err := OpenBytes(data)
	require.NoError(t, err)
	defer ds.Close()

	assert.Equal(t, format.V31, ds.Version())

	comp, err := ds.Components().Get(ctx, 0)
	require.NoError(t, err)
	name, err := comp.Name()
	require.NoError(t, err)
	assert.Equal(t, "", name)

	prop, err := ds.Properties().Get(ctx, 0)
	require.NoError(t, err)
	propName, err := prop.Name()
	require.NoError(t, err)
	assert.Equal(t, "IsMobile", propName)

	if byName, ok := ds.Properties().ByName("IsMobile"); ok {
		assert.Equal(t, prop.Index, byName.Index)
	} else {
		t.Fatal("expected IsMobile in property name index")
	}

	val, err := ds.Values().Get(ctx, 0)
	require.NoError(t, err)
	valName, err := val.Name()
	require.NoError(t, err)
	assert.Equal(t, "IsMobile", valName)

	profile, err := ds.Profiles().Get(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), profile.ProfileID)

	sig, err := ds.Signatures().Get(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), sig.Rank)

	node, err := ds.Nodes().Get(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(0), node.Position)

	root, err := ds.RootNodes().Get(ctx, 0)
	require.NoError(t, err)
	rootTarget, err := root.Node()
	require.NoError(t, err)
	assert.Equal(t, int32(0), rootTarget.Position)

	po, err := ds.ProfileOffsets().Get(ctx, 0)
	require.NoError(t, err)
	resolvedProfile, err := po.Profile()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), resolvedProfile.ProfileID)

	assert.Equal(t, 1, ds.RankedSignatureCount())

	stats := ds.Stats()
	assert.Equal(t, 1, stats.Components)
	assert.Equal(t, 1, stats.Properties)
	assert.Equal(t, 1, stats.Values.Count)

	require.NoError(t, ds.Validate())
}

func TestOpenBytes_UnknownVersion(t *testing.T) {
	data := buildV31(t)
	data[0] = 9 // corrupt the version tag

	_, err := OpenBytes(data)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownVersion)
}
