package loopback

import (
	"testing"

	"github.com/duskwave/replicore/transport"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	connected    []transport.ConnID
	received     [][]byte
	disconnected []transport.ConnID
}

func (r *recorder) OnConnect(conn transport.ConnID)    { r.connected = append(r.connected, conn) }
func (r *recorder) OnData(conn transport.ConnID, data []byte) {
	r.received = append(r.received, append([]byte(nil), data...))
}
func (r *recorder) OnDisconnect(conn transport.ConnID) { r.disconnected = append(r.disconnected, conn) }

func TestLoopbackDeliversSynchronously(t *testing.T) {
	server, client := NewPair(1)

	serverRec := &recorder{}
	clientRec := &recorder{}
	server.SetHandler(serverRec)
	client.SetHandler(clientRec)

	Connect(server, client)
	require.Equal(t, []transport.ConnID{1}, serverRec.connected)
	require.Equal(t, []transport.ConnID{1}, clientRec.connected)

	ok := server.Send(1, []byte("hello"), transport.Reliable)
	require.True(t, ok)
	require.Equal(t, [][]byte{[]byte("hello")}, clientRec.received)

	Disconnect(server, client)
	require.Equal(t, []transport.ConnID{1}, serverRec.disconnected)
}

func TestSendBeforeConnectFails(t *testing.T) {
	server, _ := NewPair(1)

	ok := server.Send(1, []byte("x"), transport.Reliable)
	require.False(t, ok)
}

func TestSendOverMTUFails(t *testing.T) {
	server, client := NewPairWithMTU(1, 4)
	Connect(server, client)

	ok := server.Send(1, []byte("toolong"), transport.Reliable)
	require.False(t, ok)
}
