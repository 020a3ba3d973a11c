package valuecodec

import (
	"testing"

	"github.com/duskwave/replicore/bitio"
	"github.com/duskwave/replicore/errs"
	"github.com/stretchr/testify/require"
)

func TestFixedBytesRoundTrip(t *testing.T) {
	buf := make([]byte, Bytes16)
	w := bitio.New(buf)

	require.NoError(t, WriteFixedBytes16(w, []byte("prefab-id")))
	require.Equal(t, Bytes16*8, w.BitPosition())

	r := bitio.New(buf)
	got, err := ReadFixedBytes16(r)
	require.NoError(t, err)
	require.Equal(t, []byte("prefab-id"), got[:len("prefab-id")])

	for _, b := range got[len("prefab-id"):] {
		require.Zero(t, b)
	}
}

func TestFixedBytesTooLarge(t *testing.T) {
	buf := make([]byte, Bytes16)
	w := bitio.New(buf)

	err := WriteFixedBytes16(w, make([]byte, 17))
	require.ErrorIs(t, err, errs.ErrPayloadTooLarge)
}

func TestFixedStringRoundTrip(t *testing.T) {
	buf := make([]byte, String32)
	w := bitio.New(buf)

	require.NoError(t, WriteFixedString32(w, "goblin"))

	r := bitio.New(buf)
	got, err := ReadFixedString32(r)
	require.NoError(t, err)
	require.Equal(t, "goblin", got)
}

func TestFixedStringEmpty(t *testing.T) {
	buf := make([]byte, String64)
	w := bitio.New(buf)

	require.NoError(t, WriteFixedString64(w, ""))

	r := bitio.New(buf)
	got, err := ReadFixedString64(r)
	require.NoError(t, err)
	require.Equal(t, "", got)
}

func TestFixedStringTooLarge(t *testing.T) {
	buf := make([]byte, String32)
	w := bitio.New(buf)

	long := make([]byte, String32)
	err := WriteFixedString32(w, string(long))
	require.ErrorIs(t, err, errs.ErrStringTooLarge)
}

func TestFixedStringTruncatedLengthRejected(t *testing.T) {
	buf := make([]byte, String32)
	w := bitio.New(buf)
	require.NoError(t, w.WriteBitsU16(200, 16))

	r := bitio.New(buf)
	_, err := ReadFixedString32(r)
	require.ErrorIs(t, err, errs.ErrTruncated)
}
