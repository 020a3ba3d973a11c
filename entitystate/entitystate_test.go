package entitystate

import (
	"testing"

	"github.com/duskwave/replicore/bitio"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := New()
	require.NoError(t, err)

	return c
}

func TestSerializeIsFixedWidth(t *testing.T) {
	c := newTestCodec(t)

	small := EntityState{NetID: 1, PrefabID: make([]byte, PrefabIDSize), Payload: []byte{1, 2, 3}, PayloadSize: 3}
	big := EntityState{NetID: 2, PrefabID: make([]byte, PrefabIDSize), Payload: make([]byte, PayloadCapacity), PayloadSize: PayloadCapacity}

	for _, e := range []EntityState{small, big} {
		buf := make([]byte, c.MaxSize())
		w := bitio.New(buf)
		require.NoError(t, c.Serialize(w, &e))
		require.Equal(t, c.MaxSize(), w.BytePosition())
	}
}

func TestRoundTrip(t *testing.T) {
	c := newTestCodec(t)

	in := EntityState{
		NetID:       42,
		PrefabID:    []byte("goblin-archetype"),
		Owned:       true,
		PosX:        12.34, PosY: -5.0, PosZ: 100.01,
		RotX: 0, RotY: 0, RotZ: 0, RotW: 1,
		PayloadSize: 3,
		Payload:     []byte{9, 8, 7},
	}

	buf := make([]byte, c.MaxSize())
	w := bitio.New(buf)
	require.NoError(t, c.Serialize(w, &in))

	r := bitio.New(buf)
	out, err := c.Deserialize(r)
	require.NoError(t, err)

	require.Equal(t, in.NetID, out.NetID)
	require.Equal(t, in.PrefabID, out.PrefabID)
	require.Equal(t, in.Owned, out.Owned)
	require.InDelta(t, in.PosX, out.PosX, 0.01)
	require.InDelta(t, in.PosY, out.PosY, 0.01)
	require.InDelta(t, in.PosZ, out.PosZ, 0.01)
	require.Equal(t, in.PayloadSize, out.PayloadSize)
	require.Equal(t, in.Payload, out.Payload)
}

func TestPrefabIDTooLong(t *testing.T) {
	c := newTestCodec(t)

	e := EntityState{PrefabID: make([]byte, PrefabIDSize+1)}
	buf := make([]byte, c.MaxSize())
	w := bitio.New(buf)

	err := c.Serialize(w, &e)
	require.Error(t, err)
}

func TestWidePositionBoundsCostMoreBits(t *testing.T) {
	narrow := newTestCodec(t)

	wide, err := New(WithPositionBounds(-1<<20, 1<<20))
	require.NoError(t, err)

	require.Greater(t, wide.MaxSize(), narrow.MaxSize())
}

func TestPayloadSizeExceedsDataRejected(t *testing.T) {
	c := newTestCodec(t)

	e := EntityState{PrefabID: make([]byte, PrefabIDSize), PayloadSize: 5, Payload: []byte{1, 2}}
	buf := make([]byte, c.MaxSize())
	w := bitio.New(buf)

	err := c.Serialize(w, &e)
	require.Error(t, err)
}
