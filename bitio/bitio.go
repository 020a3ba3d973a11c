// Package bitio provides bit-accurate read/write primitives over a
// borrowed, fixed-capacity byte slice: fixed-width integers at arbitrary
// bit offsets, range-coded values, quantized floats, and the
// smallest-three quaternion compression used by the EntityState codec.
//
// A Buffer owns no allocation; it borrows the slice passed to New and
// advances a single bit cursor as values are written or read. Bit order is
// little-endian within each byte: a value occupying n bits stores its
// low-order n bits, least significant bit first.
//
// Writes and reads work directly on the backing slice, one byte at a time:
// each value is split into per-byte chunks that are masked into (or out
// of) the bytes they span. There is no intermediate scratch accumulator.
package bitio

import (
	"math"
	"math/bits"

	"github.com/duskwave/replicore/errs"
)

// Buffer is a mutable view over a byte slice exposing a bit cursor.
//
// Buffer is not safe for concurrent use; each goroutine (each connection's
// serialize/deserialize pass) should use its own instance.
type Buffer struct {
	buf    []byte
	bitPos int
}

// New creates a Buffer over buf. buf's existing bytes are not cleared by
// New; each write clears the bits it targets before setting them, so
// writing into a reused buffer without zeroing it first is safe.
func New(buf []byte) *Buffer {
	return &Buffer{buf: buf}
}

// Reset rebinds the Buffer to buf and resets the bit cursor to zero,
// without allocating.
func (b *Buffer) Reset(buf []byte) {
	b.buf = buf
	b.bitPos = 0
}

// Bytes returns the backing slice up to the current byte position.
func (b *Buffer) Bytes() []byte {
	return b.buf[:b.BytePosition()]
}

// BitPosition returns the current bit cursor.
func (b *Buffer) BitPosition() int {
	return b.bitPos
}

// SetBitPosition moves the bit cursor directly; used by callers that need
// to rewind and overwrite a previously reserved field (e.g. the delta
// codec's changed-bits prefix).
func (b *Buffer) SetBitPosition(pos int) {
	b.bitPos = pos
}

// BitSpaceRemaining returns how many more bits can be written/read before
// running off the end of the backing slice.
func (b *Buffer) BitSpaceRemaining() int {
	return len(b.buf)*8 - b.bitPos
}

// BytePosition returns ceil(bitPos/8), the number of bytes touched so far.
func (b *Buffer) BytePosition() int {
	return (b.bitPos + 7) / 8
}

// WriteBool writes a single bit.
func (b *Buffer) WriteBool(v bool) error {
	var x uint64
	if v {
		x = 1
	}

	return b.WriteBitsU64(x, 1)
}

// ReadBool reads a single bit.
func (b *Buffer) ReadBool() (bool, error) {
	v, err := b.ReadBitsU64(1)
	if err != nil {
		return false, err
	}

	return v != 0, nil
}

// WriteBitsU8 writes the low-order bits bits of value.
func (b *Buffer) WriteBitsU8(value uint8, bits int) error {
	return b.WriteBitsU64(uint64(value), bits)
}

// WriteBitsU16 writes the low-order bits bits of value.
func (b *Buffer) WriteBitsU16(value uint16, bits int) error {
	return b.WriteBitsU64(uint64(value), bits)
}

// WriteBitsU32 writes the low-order bits bits of value.
func (b *Buffer) WriteBitsU32(value uint32, bits int) error {
	return b.WriteBitsU64(uint64(value), bits)
}

// WriteBitsU64 writes the low-order bits bits of value, 0..=64.
//
// Writing 0 bits is a no-op that always succeeds. The value is never
// range-checked against bits — writing a value that doesn't fit stores its
// low-order bits, silently, by design: range validation belongs to the
// range-coding layer (WriteRange*), which fails loudly instead.
func (b *Buffer) WriteBitsU64(value uint64, bits int) error {
	if bits == 0 {
		return nil
	}
	if bits < 0 || bits > 64 {
		panic("bitio: bits out of range 0..64")
	}
	if b.BitSpaceRemaining() < bits {
		return errs.ErrNotEnoughSpace
	}

	pos := b.bitPos
	remaining := bits
	v := value

	for remaining > 0 {
		byteIdx := pos / 8
		bitOffset := uint(pos % 8)
		free := 8 - int(bitOffset)
		n := remaining
		if n > free {
			n = free
		}

		mask := byte((uint16(1) << uint(n)) - 1)
		chunk := byte(v) & mask

		b.buf[byteIdx] = (b.buf[byteIdx] &^ (mask << bitOffset)) | (chunk << bitOffset)

		v >>= uint(n)
		pos += n
		remaining -= n
	}

	b.bitPos = pos

	return nil
}

// ReadBitsU8 reads bits bits (0..=8) and advances the cursor.
func (b *Buffer) ReadBitsU8(bits int) (uint8, error) {
	v, err := b.ReadBitsU64(bits)

	return uint8(v), err
}

// ReadBitsU16 reads bits bits (0..=16) and advances the cursor.
func (b *Buffer) ReadBitsU16(bits int) (uint16, error) {
	v, err := b.ReadBitsU64(bits)

	return uint16(v), err
}

// ReadBitsU32 reads bits bits (0..=32) and advances the cursor.
func (b *Buffer) ReadBitsU32(bits int) (uint32, error) {
	v, err := b.ReadBitsU64(bits)

	return uint32(v), err
}

// ReadBitsU64 reads bits bits (0..=64) and advances the cursor.
func (b *Buffer) ReadBitsU64(bits int) (uint64, error) {
	if bits == 0 {
		return 0, nil
	}
	if bits < 0 || bits > 64 {
		panic("bitio: bits out of range 0..64")
	}
	if b.BitSpaceRemaining() < bits {
		return 0, errs.ErrTruncated
	}

	return b.peekOrReadBits(bits, true), nil
}

// PeekBitsU16 reads bits bits (0..=16) without advancing the cursor.
func (b *Buffer) PeekBitsU16(bits int) (uint16, error) {
	if bits < 0 || bits > 16 {
		panic("bitio: bits out of range 0..16")
	}
	if b.BitSpaceRemaining() < bits {
		return 0, errs.ErrTruncated
	}

	return uint16(b.peekOrReadBits(bits, false)), nil
}

func (b *Buffer) peekOrReadBits(bitsWanted int, advance bool) uint64 {
	pos := b.bitPos
	remaining := bitsWanted
	shift := uint(0)
	var result uint64

	for remaining > 0 {
		byteIdx := pos / 8
		bitOffset := uint(pos % 8)
		free := 8 - int(bitOffset)
		n := remaining
		if n > free {
			n = free
		}

		mask := byte((uint16(1) << uint(n)) - 1)
		chunk := (b.buf[byteIdx] >> bitOffset) & mask

		result |= uint64(chunk) << shift
		shift += uint(n)
		pos += n
		remaining -= n
	}

	if advance {
		b.bitPos = pos
	}

	return result
}

// BitsRequired returns ceil(log2(r+1)), the number of bits needed to store
// any value in [0, r]. BitsRequired(0) == 0.
func BitsRequired(r uint64) int {
	return bits.Len64(r)
}

// WriteRangeU64 range-codes value, which must lie in [min, max].
func (b *Buffer) WriteRangeU64(value, min, max uint64) error {
	if value < min || value > max {
		return errs.ErrOutOfRange
	}

	width := BitsRequired(max - min)

	return b.WriteBitsU64(value-min, width)
}

// ReadRangeU64 decodes a value previously written with WriteRangeU64.
func (b *Buffer) ReadRangeU64(min, max uint64) (uint64, error) {
	width := BitsRequired(max - min)

	v, err := b.ReadBitsU64(width)
	if err != nil {
		return 0, err
	}

	return v + min, nil
}

// WriteRangeI64 range-codes value, which must lie in [min, max]. The
// shifted value never overflows: width is computed from the unsigned
// span max-min, which always fits in the same 64-bit width.
func (b *Buffer) WriteRangeI64(value, min, max int64) error {
	if value < min || value > max {
		return errs.ErrOutOfRange
	}

	width := BitsRequired(uint64(max - min))

	return b.WriteBitsU64(uint64(value-min), width)
}

// ReadRangeI64 decodes a value previously written with WriteRangeI64.
func (b *Buffer) ReadRangeI64(min, max int64) (int64, error) {
	width := BitsRequired(uint64(max - min))

	v, err := b.ReadBitsU64(width)
	if err != nil {
		return 0, err
	}

	return int64(v) + min, nil
}

// WriteF32Quantized scales value by 1/precision, rejects it (without
// truncating) if the scaled value falls outside the int32 range or outside
// [min, max], rounds to the nearest integer, and range-codes it.
func (b *Buffer) WriteF32Quantized(value, min, max, precision float32) error {
	scaled := float64(value) / float64(precision)
	if scaled < math.MinInt32 || scaled > math.MaxInt32 {
		return errs.ErrOutOfRange
	}

	rounded := int64(math.Round(scaled))
	qMin, qMax := quantizedBounds(min, max, precision)

	return b.WriteRangeI64(rounded, qMin, qMax)
}

// ReadF32Quantized decodes a value previously written with
// WriteF32Quantized, returning a value within ±precision/2 of the
// original (plus floating-point reconstruction error).
func (b *Buffer) ReadF32Quantized(min, max, precision float32) (float32, error) {
	qMin, qMax := quantizedBounds(min, max, precision)

	iv, err := b.ReadRangeI64(qMin, qMax)
	if err != nil {
		return 0, err
	}

	return float32(float64(iv) * float64(precision)), nil
}

func quantizedBounds(min, max, precision float32) (int64, int64) {
	qMin := int64(math.Round(float64(min) / float64(precision)))
	qMax := int64(math.Round(float64(max) / float64(precision)))

	return qMin, qMax
}

// QuantizedRange exposes the integer bounds WriteF32Quantized/ReadF32Quantized
// range-code against, for callers (e.g. entitystate.Codec) that need to size
// a record ahead of time without writing to a scratch buffer first.
func QuantizedRange(min, max, precision float32) (qMin, qMax int64) {
	return quantizedBounds(min, max, precision)
}
