// Package snapshot implements the per-tick, per-connection replication
// message: partitioning a connection's observed entity set against its
// last-sent baseline into added/kept/removed, delta-coding the kept set,
// and framing the result for the transport.
package snapshot

import (
	"github.com/duskwave/replicore/bitio"
	"github.com/duskwave/replicore/deltacodec"
	"github.com/duskwave/replicore/endian"
	"github.com/duskwave/replicore/entitystate"
	"github.com/duskwave/replicore/internal/dedupe"
	"github.com/duskwave/replicore/internal/pool"
	"github.com/duskwave/replicore/valuecodec"
)

// lengthPrefixSize is the width of each of the three stream-length fields
// (added/kept/removed) in the wire envelope.
const lengthPrefixSize = 4

// Message is the transient, reusable object one server tick (per
// connection) uses to build and frame a snapshot, and one client uses to
// parse an incoming one. It owns its working byte buffers so that repeated
// ticks don't allocate.
type Message struct {
	entityCodec *entitystate.Codec
	deltaCodec  *deltacodec.Codec
	engine      endian.EndianEngine

	maxSize           int
	worstCaseEntity   int
	maxEntitiesAmount int

	entities     EntitySet
	lastEntities EntitySet

	addedBuf   *pool.ByteBuffer
	keptBuf    *pool.ByteBuffer
	removedBuf *pool.ByteBuffer

	lastScratch *pool.ByteBuffer
	currScratch *pool.ByteBuffer

	outBuf *pool.ByteBuffer

	// removedWriter and outWriter are byte-aligned views over removedBuf and
	// outBuf: the two buffers this package appends whole-byte framing to
	// (raw NetId lists and length-prefixed streams) rather than packed
	// bitfields.
	removedWriter *valuecodec.ByteWriter
	outWriter     *valuecodec.ByteWriter

	tracker *dedupe.Tracker
}

// New builds a Message bound to entityCodec and deltaCodec, budgeting
// entries so that a full TryAdd loop is guaranteed to fit within maxSize
// bytes (the transport MTU minus the enclosing message envelope, per the
// wire format's 2-byte message-id prefix).
func New(entityCodec *entitystate.Codec, deltaCodec *deltacodec.Codec, maxSize int) *Message {
	entitySize := entityCodec.MaxSize()
	patchSize := deltaCodec.MaxPatchSize(entitySize)

	worstCase := entitySize
	if patchSize > worstCase {
		worstCase = patchSize
	}
	if worstCase < 8 {
		worstCase = 8
	}

	budget := maxSize - 3*lengthPrefixSize
	maxEntities := 0
	if budget > 0 {
		maxEntities = budget / worstCase
	}

	engine := endian.GetLittleEndianEngine()
	removedBuf := pool.GetScratchBuffer()
	outBuf := pool.GetMessageBuffer()

	return &Message{
		entityCodec:       entityCodec,
		deltaCodec:        deltaCodec,
		engine:            engine,
		maxSize:           maxSize,
		worstCaseEntity:   worstCase,
		maxEntitiesAmount: maxEntities,

		entities:     make(EntitySet),
		lastEntities: make(EntitySet),

		addedBuf:    pool.GetScratchBuffer(),
		keptBuf:     pool.GetScratchBuffer(),
		removedBuf:  removedBuf,
		lastScratch: pool.GetScratchBuffer(),
		currScratch: pool.GetScratchBuffer(),
		outBuf:      outBuf,

		removedWriter: valuecodec.NewByteWriter(removedBuf, engine),
		outWriter:     valuecodec.NewByteWriter(outBuf, engine),

		tracker: dedupe.NewTracker(),
	}
}

// MaxEntitiesAmount returns the maximum number of entities TryAdd accepts
// in a single cycle under this Message's configuration.
func (m *Message) MaxEntitiesAmount() int {
	return m.maxEntitiesAmount
}

// Close returns the Message's working buffers to the shared scratch/message
// pools. Call it when the owning Server or Client is torn down; a Message
// must not be used again afterward.
func (m *Message) Close() {
	pool.PutScratchBuffer(m.addedBuf)
	pool.PutScratchBuffer(m.keptBuf)
	pool.PutScratchBuffer(m.removedBuf)
	pool.PutScratchBuffer(m.lastScratch)
	pool.PutScratchBuffer(m.currScratch)
	pool.PutMessageBuffer(m.outBuf)
}

// Reset clears the current entity set and working buffers for a new
// server tick or client receive, without touching lastEntities: the
// caller loads the baseline explicitly via SetLastEntities.
func (m *Message) Reset() {
	m.entities.clear()
	m.addedBuf.Reset()
	m.keptBuf.Reset()
	m.removedBuf.Reset()
	m.lastScratch.Reset()
	m.currScratch.Reset()
	m.outBuf.Reset()
	m.tracker.Reset()
}

// SetLastEntities binds last as the delta baseline for the next
// Serialize/Deserialize cycle. The Message does not copy last; callers
// that need to retain their own reference after Commit should not mutate
// the set concurrently.
func (m *Message) SetLastEntities(last EntitySet) {
	m.lastEntities = last
}

// LastEntities returns the Message's current baseline set.
func (m *Message) LastEntities() EntitySet {
	return m.lastEntities
}

// Entities returns the Message's current working set (the entities added
// via TryAdd, or produced by the most recent Deserialize).
func (m *Message) Entities() EntitySet {
	return m.entities
}

// Commit detaches the current entity set so the caller can install it as
// the new baseline (connection.LastEntities <- entities, per the
// replication server/client tick), and gives the Message a fresh empty
// set to build into on the next Reset.
func (m *Message) Commit() EntitySet {
	committed := m.entities
	m.entities = make(EntitySet, len(committed))

	return committed
}

// TryAdd inserts e into the current set if there is still room under
// MaxEntitiesAmount, returning false (without error) when the budget is
// exhausted — the signal for the caller to stop iterating its interest
// set and let the remaining entities appear on a later tick.
//
// TryAdd returns errs.ErrDuplicateNetID if e.NetID was already added this
// cycle, which indicates a bug in the caller's interest-set iteration
// rather than a budget problem.
func (m *Message) TryAdd(e entitystate.EntityState) (bool, error) {
	if len(m.entities) >= m.maxEntitiesAmount {
		return false, nil
	}

	if err := m.tracker.Track(e.NetID); err != nil {
		return false, err
	}

	m.entities[e.NetID] = e

	return true, nil
}

// serializeEntityInto appends e's fixed-width serialized form to buf,
// growing it as needed.
func (m *Message) serializeEntityInto(buf *pool.ByteBuffer, e entitystate.EntityState) error {
	size := m.entityCodec.MaxSize()
	start := buf.Len()
	buf.ExtendOrGrow(size)

	w := bitio.New(buf.Slice(start, start+size))

	return m.entityCodec.Serialize(w, &e)
}
