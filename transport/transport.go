// Package transport declares the narrow collaborator contract the
// replication layer sends snapshots through. It deliberately carries no
// concrete network stack: real transports (TCP-like reliable streams, UDP
// with congestion control, WebRTC data channels) are exchangeable
// implementations of the same narrow interface. See transport/loopback for
// an in-process reference implementation used by tests and examples.
package transport

// ConnID identifies one connected peer from the transport's perspective.
type ConnID uint64

// Channel selects a delivery guarantee. Snapshots always use Reliable so
// that the client observes them in send order, which the delta codec's
// baseline continuity depends on.
type Channel int

const (
	// Reliable delivers data in order, without loss.
	Reliable Channel = iota
	// Unreliable may drop or reorder data; unused by the snapshot path
	// today but part of the contract for callers layering other traffic
	// (e.g. unacknowledged input commands) over the same transport.
	Unreliable
)

// String implements fmt.Stringer.
func (c Channel) String() string {
	if c == Reliable {
		return "reliable"
	}

	return "unreliable"
}

// Transport is the collaborator the replication server/client send
// through and receive events from.
type Transport interface {
	// MaxPacketSize returns the largest payload ch currently accepts,
	// e.g. the path MTU. replication.Server does not query it: its
	// snapshot.Message is sized against the maxSize passed to NewServer.
	MaxPacketSize(ch Channel) int

	// Send attempts to deliver data to conn over ch, returning false if
	// the transport rejected it (e.g. backpressure, disconnect race).
	// The caller must not advance its delta baseline on false.
	Send(conn ConnID, data []byte, ch Channel) bool
}

// EventHandler receives transport lifecycle and inbound-data events. A
// Transport implementation invokes these synchronously from within the
// caller's tick, consistent with the single-threaded cooperative
// scheduling model snapshots are built under.
type EventHandler interface {
	OnConnect(conn ConnID)
	OnData(conn ConnID, data []byte)
	OnDisconnect(conn ConnID)
}
