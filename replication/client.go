package replication

import (
	"github.com/duskwave/replicore/deltacodec"
	"github.com/duskwave/replicore/entitystate"
	"github.com/duskwave/replicore/envelope"
	"github.com/duskwave/replicore/internal/options"
	"github.com/duskwave/replicore/snapshot"
	"github.com/duskwave/replicore/store"
)

// Client applies received snapshot bytes to a local EntityStore, tracking
// its own delta baseline across ticks.
type Client struct {
	message  *snapshot.Message
	store    store.EntityStore
	envelope envelope.Codec
}

// WithClientCompression decompresses every inbound snapshot with the given
// envelope.Type before handing it to snapshot.Message.Deserialize. Must
// match the server's WithServerCompression choice byte-for-byte.
func WithClientCompression(t envelope.Type) options.Option[*Client] {
	return options.New(func(c *Client) error {
		codec, err := envelope.New(t)
		if err != nil {
			return err
		}

		c.envelope = codec

		return nil
	})
}

// NewClient builds a Client against entityCodec/deltaCodec (which must
// match the server's configuration byte-for-byte) and maxSize (the same
// MTU budget the server sizes against).
func NewClient(
	entityCodec *entitystate.Codec,
	deltaCodec *deltacodec.Codec,
	maxSize int,
	st store.EntityStore,
	opts ...options.Option[*Client],
) (*Client, error) {
	c := &Client{
		message:  snapshot.New(entityCodec, deltaCodec, maxSize),
		store:    st,
		envelope: envelope.NoOp{},
	}

	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	return c, nil
}

// Close releases the Client's pooled snapshot buffers. Call it once the
// Client is permanently shut down; the Client must not be used afterward.
func (c *Client) Close() {
	c.message.Close()
}

// Resync drops the client's delta baseline, so the next Apply call is
// treated as a full-state snapshot. Call this after a transport-level
// disconnect/reconnect, or when the server signals a Resync out of band.
func (c *Client) Resync() {
	c.message.SetLastEntities(make(snapshot.EntitySet))
}

// Apply deserializes data against the client's current baseline and
// reconciles the local store: applies transforms to already-spawned
// entities (honoring per-entity authority), spawns newly observed
// entities, and despawns entities that dropped out of the snapshot.
func (c *Client) Apply(data []byte) error {
	wire, err := c.envelope.Decompress(data)
	if err != nil {
		return err
	}

	if err := c.message.Deserialize(wire); err != nil {
		return err
	}

	entities := c.message.Entities()

	var missing []uint64
	for id := range c.store.SpawnedIDs() {
		if _, ok := entities[id]; !ok {
			missing = append(missing, id)
		}
	}

	remaining := make(map[uint64]struct{}, len(entities))
	for id := range entities {
		remaining[id] = struct{}{}
	}

	for id := range c.store.SpawnedIDs() {
		e, ok := entities[id]
		if !ok {
			continue
		}

		delete(remaining, id)

		if e.Owned && c.store.TransformDirection(id) == store.ClientToServer {
			continue
		}

		c.store.ApplyTransform(e)
	}

	for id := range remaining {
		c.store.Spawn(entities[id])
	}

	for _, id := range missing {
		c.store.Despawn(id)
	}

	c.message.SetLastEntities(c.message.Commit())

	return nil
}
