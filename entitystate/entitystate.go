// Package entitystate implements the fixed-width per-entity record and its
// codec: the thing a SnapshotMessage's added/kept streams carry one of per
// replicated entity.
//
// Every EntityState serializes to exactly Codec.MaxSize() bytes regardless
// of payload contents, which is what lets deltacodec operate against two
// serialized records as equal-length byte views.
package entitystate

import (
	"github.com/duskwave/replicore/bitio"
	"github.com/duskwave/replicore/errs"
	"github.com/duskwave/replicore/internal/options"
	"github.com/duskwave/replicore/valuecodec"
)

// PrefabIDSize is the fixed byte width of a PrefabId.
const PrefabIDSize = valuecodec.Bytes16

// PayloadCapacity is the fixed byte width of an EntityState's opaque
// per-entity payload, regardless of how much of it is meaningful
// (PayloadSize).
const PayloadCapacity = valuecodec.Bytes128

// EntityState is one replicated entity's full observable state at a tick.
type EntityState struct {
	NetID    uint64
	PrefabID []byte // exactly PrefabIDSize bytes once normalized by Serialize
	Owned    bool

	PosX, PosY, PosZ float32
	RotX, RotY, RotZ, RotW float32

	PayloadSize uint16
	Payload     []byte // up to PayloadCapacity bytes; the tail is zero-padded on the wire
}

// PositionBounds clamps the coordinate range write_f32_quantized range-codes
// against. Wider bounds cost more bits per axis; narrower bounds reject
// out-of-range positions outright.
type PositionBounds struct {
	Min, Max float32
}

// DefaultPositionBounds matches the worked example in the wire format: a
// +/-1024 unit arena, plenty for a large outdoor map.
var DefaultPositionBounds = PositionBounds{Min: -1024, Max: 1024}

// DefaultPrecision is the default position quantization step, 1 cm.
const DefaultPrecision = 0.01

// Codec serializes and deserializes EntityState records under a fixed
// configuration of position bounds/precision. A Codec's MaxSize is
// constant for its lifetime, which is required for the delta codec's
// fixed-width assumption to hold across a whole connection.
type Codec struct {
	bounds    PositionBounds
	precision float32

	posBits int
	maxSize int
}

// New builds a Codec, defaulting to DefaultPositionBounds and
// DefaultPrecision, and precomputes MaxSize.
func New(opts ...options.Option[*Codec]) (*Codec, error) {
	c := &Codec{
		bounds:    DefaultPositionBounds,
		precision: DefaultPrecision,
	}

	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	c.recompute()

	return c, nil
}

// WithPositionBounds overrides the default [-1024, 1024] position range.
func WithPositionBounds(min, max float32) options.Option[*Codec] {
	return options.NoError(func(c *Codec) {
		c.bounds = PositionBounds{Min: min, Max: max}
	})
}

// WithPrecision overrides the default 1 cm position quantization step.
func WithPrecision(precision float32) options.Option[*Codec] {
	return options.NoError(func(c *Codec) {
		c.precision = precision
	})
}

func (c *Codec) recompute() {
	qMin, qMax := bitio.QuantizedRange(c.bounds.Min, c.bounds.Max, c.precision)
	c.posBits = bitio.BitsRequired(uint64(qMax - qMin))

	bits := 64 // netId
	bits += PrefabIDSize * 8
	bits++ // owned
	bits += c.posBits * 3
	bits += 32 // smallest-three rotation
	bits += 16 // payloadSize
	bits += PayloadCapacity * 8

	c.maxSize = (bits + 7) / 8
}

// MaxSize returns the exact number of bytes every Serialize call under this
// Codec's configuration produces.
func (c *Codec) MaxSize() int {
	return c.maxSize
}

// Serialize writes e to buf in wire order: netId, prefabId, owned, position,
// rotation, payloadSize, payload. It always consumes exactly MaxSize bytes
// of the underlying buffer.
func (c *Codec) Serialize(buf *bitio.Buffer, e *EntityState) error {
	if err := buf.WriteBitsU64(e.NetID, 64); err != nil {
		return err
	}

	if err := valuecodec.WriteFixedBytes16(buf, e.PrefabID); err != nil {
		return err
	}

	if err := buf.WriteBool(e.Owned); err != nil {
		return err
	}

	for _, v := range [3]float32{e.PosX, e.PosY, e.PosZ} {
		if err := buf.WriteF32Quantized(v, c.bounds.Min, c.bounds.Max, c.precision); err != nil {
			return err
		}
	}

	if err := buf.WriteQuaternionSmallestThree(e.RotX, e.RotY, e.RotZ, e.RotW); err != nil {
		return err
	}

	if err := buf.WriteBitsU16(e.PayloadSize, 16); err != nil {
		return err
	}

	if int(e.PayloadSize) > len(e.Payload) {
		return errs.ErrPayloadTooLarge
	}

	return valuecodec.WriteFixedBytes128(buf, e.Payload)
}

// Deserialize reads one EntityState from buf, the exact inverse of
// Serialize.
func (c *Codec) Deserialize(buf *bitio.Buffer) (EntityState, error) {
	var e EntityState

	netID, err := buf.ReadBitsU64(64)
	if err != nil {
		return e, err
	}
	e.NetID = netID

	prefabID, err := valuecodec.ReadFixedBytes16(buf)
	if err != nil {
		return e, err
	}
	e.PrefabID = prefabID

	owned, err := buf.ReadBool()
	if err != nil {
		return e, err
	}
	e.Owned = owned

	positions := [3]*float32{&e.PosX, &e.PosY, &e.PosZ}
	for _, p := range positions {
		v, err := buf.ReadF32Quantized(c.bounds.Min, c.bounds.Max, c.precision)
		if err != nil {
			return e, err
		}
		*p = v
	}

	rx, ry, rz, rw, err := buf.ReadQuaternionSmallestThree()
	if err != nil {
		return e, err
	}
	e.RotX, e.RotY, e.RotZ, e.RotW = rx, ry, rz, rw

	payloadSize, err := buf.ReadBitsU16(16)
	if err != nil {
		return e, err
	}
	e.PayloadSize = payloadSize

	payload, err := valuecodec.ReadFixedBytes128(buf)
	if err != nil {
		return e, err
	}

	if int(payloadSize) > len(payload) {
		return e, errs.ErrTruncated
	}
	e.Payload = payload[:payloadSize]

	return e, nil
}
