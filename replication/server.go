// Package replication drives the server broadcast tick and client apply
// loop on top of snapshot.Message, wired to the narrow transport,
// interest, and store collaborators.
package replication

import (
	"github.com/duskwave/replicore/deltacodec"
	"github.com/duskwave/replicore/entitystate"
	"github.com/duskwave/replicore/envelope"
	"github.com/duskwave/replicore/interest"
	"github.com/duskwave/replicore/internal/hash"
	"github.com/duskwave/replicore/internal/options"
	"github.com/duskwave/replicore/snapshot"
	"github.com/duskwave/replicore/store"
	"github.com/duskwave/replicore/transport"
)

// ConnectionState is the per-connection delta baseline the server keeps
// between ticks, and the unit of lifecycle the server destroys on
// disconnect.
type ConnectionState struct {
	ID           transport.ConnID
	LastEntities snapshot.EntitySet

	// LastChecksum is a fast content checksum of the wire bytes most
	// recently committed to this connection. It is diagnostic only —
	// checked in tests to assert a tick's wire bytes changed, and logged by
	// callers investigating a desync report — and is never itself
	// transmitted.
	LastChecksum uint64
}

// Reset drops the connection's baseline, treating the next tick as a
// full-state resync. Called by Server.Resync; Connect builds a fresh
// ConnectionState directly instead.
func (cs *ConnectionState) Reset() {
	cs.LastEntities = make(snapshot.EntitySet)
	cs.LastChecksum = 0
}

// Server broadcasts one snapshot.Message per connection per tick, sourced
// from an EntityStore through an interest.Manager, over a
// transport.Transport.
type Server struct {
	message *snapshot.Message

	transport transport.Transport
	interest  interest.Manager
	store     store.EntityStore
	envelope  envelope.Codec

	connections map[transport.ConnID]*ConnectionState
}

// WithServerCompression wraps every outgoing snapshot in the given
// envelope.Type before handing it to the transport. The client must be
// built with the matching envelope.Type via WithClientCompression, or
// Deserialize will fail on the still-compressed bytes. Off (envelope.None)
// by default, keeping Server.Tick's MTU-bound guarantee computed on the
// uncompressed wire bytes per snapshot.Message's own sizing.
func WithServerCompression(t envelope.Type) options.Option[*Server] {
	return options.New(func(s *Server) error {
		codec, err := envelope.New(t)
		if err != nil {
			return err
		}

		s.envelope = codec

		return nil
	})
}

// NewServer builds a Server. maxSize is the per-packet budget
// snapshot.Message sizes its TryAdd loop against — the transport's MTU
// minus the enclosing message envelope (a 2-byte message-id prefix).
func NewServer(
	entityCodec *entitystate.Codec,
	deltaCodec *deltacodec.Codec,
	maxSize int,
	tr transport.Transport,
	im interest.Manager,
	st store.EntityStore,
	opts ...options.Option[*Server],
) (*Server, error) {
	s := &Server{
		message:     snapshot.New(entityCodec, deltaCodec, maxSize),
		transport:   tr,
		interest:    im,
		store:       st,
		envelope:    envelope.NoOp{},
		connections: make(map[transport.ConnID]*ConnectionState),
	}

	if err := options.Apply(s, opts...); err != nil {
		return nil, err
	}

	return s, nil
}

// Close releases the Server's pooled snapshot buffers. Call it once the
// Server is permanently shut down; the Server must not be used afterward.
func (s *Server) Close() {
	s.message.Close()
}

// Connect registers a new connection with an empty delta baseline —
// its first snapshot is necessarily a full-state one (everything observed
// arrives in the added stream).
func (s *Server) Connect(conn transport.ConnID) *ConnectionState {
	cs := &ConnectionState{ID: conn, LastEntities: make(snapshot.EntitySet)}
	s.connections[conn] = cs

	return cs
}

// Connection returns conn's ConnectionState, if the server has one —
// mainly useful for inspecting LastChecksum diagnostically.
func (s *Server) Connection(conn transport.ConnID) (*ConnectionState, bool) {
	cs, ok := s.connections[conn]

	return cs, ok
}

// Disconnect destroys conn's ConnectionState, per the cancellation model:
// disconnect drops the baseline entirely rather than trying to resync it
// later.
func (s *Server) Disconnect(conn transport.ConnID) {
	delete(s.connections, conn)
}

// Resync forces conn's next tick to be a full-state baseline, for an
// out-of-band desync signal from the client (or a reconnect of the same
// logical connection).
func (s *Server) Resync(conn transport.ConnID) {
	if cs, ok := s.connections[conn]; ok {
		cs.Reset()
	}
}

// Tick builds and sends one snapshot per connection.
func (s *Server) Tick() error {
	for _, cs := range s.connections {
		if err := s.tickConnection(cs); err != nil {
			return err
		}
	}

	return nil
}

func (s *Server) tickConnection(cs *ConnectionState) error {
	s.message.Reset()
	s.message.SetLastEntities(cs.LastEntities)

	for netID := range s.interest.Observed(cs.ID) {
		e, ok := s.store.Get(netID)
		if !ok {
			continue
		}

		added, err := s.message.TryAdd(e)
		if err != nil {
			return err
		}
		if !added {
			break
		}
	}

	data, err := s.message.Serialize()
	if err != nil {
		return err
	}

	wire, err := s.envelope.Compress(data)
	if err != nil {
		return err
	}

	if s.transport.Send(cs.ID, wire, transport.Reliable) {
		cs.LastEntities = s.message.Commit()
		cs.LastChecksum = hash.Checksum(data)
	}

	return nil
}
