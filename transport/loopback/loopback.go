// Package loopback provides an in-process transport.Transport
// implementation with no framing, no reordering, and no real socket — the
// "in-process loopback" variant named alongside reliable/unreliable
// network transports as an exchangeable implementation of the same
// narrow transport contract.
package loopback

import "github.com/duskwave/replicore/transport"

// defaultMaxPacketSize mirrors a conservative UDP-safe MTU; callers that
// need a different budget construct Pair with a specific value via
// NewPairWithMTU.
const defaultMaxPacketSize = 1200

// Endpoint is one side of a loopback connection pair. It implements
// transport.Transport by handing Send's bytes directly to the peer's
// registered transport.EventHandler, synchronously.
type Endpoint struct {
	conn        transport.ConnID
	maxPacket   int
	peer        *Endpoint
	handler     transport.EventHandler
	established bool
}

var _ transport.Transport = (*Endpoint)(nil)

// NewPair builds two connected Endpoints sharing conn as their logical
// connection id, using defaultMaxPacketSize.
func NewPair(conn transport.ConnID) (server, client *Endpoint) {
	return NewPairWithMTU(conn, defaultMaxPacketSize)
}

// NewPairWithMTU builds two connected Endpoints with a custom MTU, useful
// for exercising snapshot.Message's budget-overrun path in tests.
func NewPairWithMTU(conn transport.ConnID, maxPacketSize int) (server, client *Endpoint) {
	server = &Endpoint{conn: conn, maxPacket: maxPacketSize}
	client = &Endpoint{conn: conn, maxPacket: maxPacketSize}
	server.peer = client
	client.peer = server

	return server, client
}

// SetHandler registers the handler that receives OnConnect/OnData/
// OnDisconnect events sent by this Endpoint's peer.
func (e *Endpoint) SetHandler(h transport.EventHandler) {
	e.handler = h
}

// Connect marks both ends of the pair established and fires OnConnect on
// each side's handler.
func Connect(server, client *Endpoint) {
	server.established = true
	client.established = true

	if server.handler != nil {
		server.handler.OnConnect(server.conn)
	}
	if client.handler != nil {
		client.handler.OnConnect(client.conn)
	}
}

// Disconnect tears down both ends and fires OnDisconnect.
func Disconnect(server, client *Endpoint) {
	server.established = false
	client.established = false

	if server.handler != nil {
		server.handler.OnDisconnect(server.conn)
	}
	if client.handler != nil {
		client.handler.OnDisconnect(client.conn)
	}
}

// MaxPacketSize implements transport.Transport.
func (e *Endpoint) MaxPacketSize(transport.Channel) int {
	return e.maxPacket
}

// Send implements transport.Transport: it delivers data to the peer's
// handler synchronously and returns false if the pair isn't established
// or data exceeds MaxPacketSize.
func (e *Endpoint) Send(_ transport.ConnID, data []byte, _ transport.Channel) bool {
	if !e.established || len(data) > e.maxPacket {
		return false
	}

	if e.peer.handler != nil {
		e.peer.handler.OnData(e.peer.conn, data)
	}

	return true
}
