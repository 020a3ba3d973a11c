package envelope

import (
	"math/rand"
	"testing"

	"github.com/duskwave/replicore/errs"
	"github.com/stretchr/testify/require"
)

func TestRoundTripAllBuiltins(t *testing.T) {
	payload := []byte("a snapshot's worth of added/kept/removed bytes, repeated, repeated, repeated")

	for _, typ := range []Type{None, Zstd, S2, LZ4} {
		codec, err := New(typ)
		require.NoError(t, err, typ)

		compressed, err := codec.Compress(payload)
		require.NoError(t, err, typ)

		decompressed, err := codec.Decompress(compressed)
		require.NoError(t, err, typ)
		require.Equal(t, payload, decompressed, typ)
	}
}

func TestLZ4RoundTripsIncompressibleData(t *testing.T) {
	payload := make([]byte, 256)
	rand.New(rand.NewSource(1)).Read(payload)

	decompressed, err := LZ4Codec{}.Decompress(mustCompress(t, LZ4Codec{}, payload))
	require.NoError(t, err)
	require.Equal(t, payload, decompressed)
}

func mustCompress(t *testing.T, c Codec, data []byte) []byte {
	t.Helper()

	out, err := c.Compress(data)
	require.NoError(t, err)

	return out
}

func TestNewUnsupportedType(t *testing.T) {
	_, err := New(Type(200))
	require.ErrorIs(t, err, errs.ErrUnsupportedCompression)
}

func TestNoOpDoesNotCopy(t *testing.T) {
	codec, err := New(None)
	require.NoError(t, err)

	data := []byte("x")
	out, err := codec.Compress(data)
	require.NoError(t, err)
	require.Same(t, &data[0], &out[0])
}

func TestTypeString(t *testing.T) {
	require.Equal(t, "none", None.String())
	require.Equal(t, "zstd", Zstd.String())
	require.Equal(t, "s2", S2.String())
	require.Equal(t, "lz4", LZ4.String())
}
