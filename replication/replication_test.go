package replication

import (
	"testing"

	"github.com/duskwave/replicore/deltacodec"
	"github.com/duskwave/replicore/entitystate"
	"github.com/duskwave/replicore/envelope"
	"github.com/duskwave/replicore/interest"
	"github.com/duskwave/replicore/store"
	"github.com/duskwave/replicore/transport"
	"github.com/duskwave/replicore/transport/loopback"
	"github.com/stretchr/testify/require"
)

type applyHandler struct {
	client *Client
	t      *testing.T
}

func (h *applyHandler) OnConnect(transport.ConnID) {}
func (h *applyHandler) OnData(_ transport.ConnID, data []byte) {
	require.NoError(h.t, h.client.Apply(data))
}
func (h *applyHandler) OnDisconnect(transport.ConnID) {}

func setup(t *testing.T, netIDs []uint64) (server *Server, client *Client, serverStore, clientStore *store.Memory) {
	t.Helper()

	ec, err := entitystate.New()
	require.NoError(t, err)
	dc, err := deltacodec.New()
	require.NoError(t, err)

	serverStore = store.NewMemory()
	clientStore = store.NewMemory()

	im := interest.NewStatic(netIDs)

	serverEP, clientEP := loopback.NewPair(1)

	server, err = NewServer(ec, dc, 1200, serverEP, im, serverStore)
	require.NoError(t, err)
	client, err = NewClient(ec, dc, 1200, clientStore)
	require.NoError(t, err)

	clientEP.SetHandler(&applyHandler{client: client, t: t})
	loopback.Connect(serverEP, clientEP)

	server.Connect(1)

	return server, client, serverStore, clientStore
}

func entityAt(netID uint64, x float32) entitystate.EntityState {
	return entitystate.EntityState{
		NetID:    netID,
		PrefabID: make([]byte, entitystate.PrefabIDSize),
		RotW:     1,
		PosX:     x,
	}
}

func TestFreshConnectionSpawnsEverything(t *testing.T) {
	server, _, serverStore, clientStore := setup(t, []uint64{1, 2})

	serverStore.Seed(entityAt(1, 0))
	serverStore.Seed(entityAt(2, 5))

	require.NoError(t, server.Tick())

	_, ok := clientStore.Get(1)
	require.True(t, ok)
	e2, ok := clientStore.Get(2)
	require.True(t, ok)
	require.InDelta(t, 5.0, e2.PosX, 0.01)
}

func TestSubsequentTickAppliesTransformUpdate(t *testing.T) {
	server, _, serverStore, clientStore := setup(t, []uint64{1})
	serverStore.Seed(entityAt(1, 0))
	require.NoError(t, server.Tick())

	cs, ok := server.Connection(1)
	require.True(t, ok)
	firstChecksum := cs.LastChecksum
	require.NotZero(t, firstChecksum)

	serverStore.Seed(entityAt(1, 9))
	require.NoError(t, server.Tick())

	e, ok := clientStore.Get(1)
	require.True(t, ok)
	require.InDelta(t, 9.0, e.PosX, 0.01)
	require.NotEqual(t, firstChecksum, cs.LastChecksum, "wire bytes changed, checksum must follow")
}

func TestEntityLeavingInterestDespawnsOnClient(t *testing.T) {
	server, _, serverStore, clientStore := setup(t, []uint64{1, 2})
	serverStore.Seed(entityAt(1, 0))
	serverStore.Seed(entityAt(2, 0))
	require.NoError(t, server.Tick())

	// Entity 2 leaves the world; the store no longer resolves it so it
	// drops out of the next snapshot even though the interest manager is
	// static.
	serverStore.Despawn(2)
	require.NoError(t, server.Tick())

	_, ok := clientStore.Get(2)
	require.False(t, ok)
	_, ok = clientStore.Get(1)
	require.True(t, ok)
}

func TestAuthorityDropsInboundUpdateForClientOwnedTransform(t *testing.T) {
	server, _, serverStore, clientStore := setup(t, []uint64{1})

	owned := entityAt(1, 5)
	owned.Owned = true
	serverStore.Seed(owned)
	require.NoError(t, server.Tick())

	clientStore.SetDirection(1, store.ClientToServer)

	moved := entityAt(1, 0)
	moved.Owned = true
	serverStore.Seed(moved)
	require.NoError(t, server.Tick())

	got, ok := clientStore.Get(1)
	require.True(t, ok)
	require.InDelta(t, 5.0, got.PosX, 0.01, "locally owned, client-authoritative transform must not be overwritten by an inbound snapshot")
}

func TestResyncForcesFullBaselineNextTick(t *testing.T) {
	server, client, serverStore, clientStore := setup(t, []uint64{1})
	serverStore.Seed(entityAt(1, 0))
	require.NoError(t, server.Tick())

	server.Resync(1)
	client.Resync()

	cs, ok := server.Connection(1)
	require.True(t, ok)
	require.Zero(t, cs.LastChecksum, "Resync must clear the diagnostic checksum along with the baseline")

	serverStore.Seed(entityAt(1, 1))
	require.NoError(t, server.Tick())

	_, ok = clientStore.Get(1)
	require.True(t, ok)
}

func TestCompressedSnapshotRoundTrips(t *testing.T) {
	ec, err := entitystate.New()
	require.NoError(t, err)
	dc, err := deltacodec.New()
	require.NoError(t, err)

	serverStore := store.NewMemory()
	clientStore := store.NewMemory()
	im := interest.NewStatic([]uint64{1, 2})

	serverEP, clientEP := loopback.NewPair(1)

	server, err := NewServer(ec, dc, 1200, serverEP, im, serverStore, WithServerCompression(envelope.LZ4))
	require.NoError(t, err)
	client, err := NewClient(ec, dc, 1200, clientStore, WithClientCompression(envelope.LZ4))
	require.NoError(t, err)

	clientEP.SetHandler(&applyHandler{client: client, t: t})
	loopback.Connect(serverEP, clientEP)
	server.Connect(1)

	serverStore.Seed(entityAt(1, 0))
	serverStore.Seed(entityAt(2, 5))
	require.NoError(t, server.Tick())

	e1, ok := clientStore.Get(1)
	require.True(t, ok)
	require.InDelta(t, 0.0, e1.PosX, 0.01)
	e2, ok := clientStore.Get(2)
	require.True(t, ok)
	require.InDelta(t, 5.0, e2.PosX, 0.01)

	server.Close()
	client.Close()
}
