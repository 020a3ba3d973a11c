package valuecodec

import (
	"github.com/duskwave/replicore/endian"
	"github.com/duskwave/replicore/errs"
	"github.com/duskwave/replicore/internal/pool"
)

// ByteWriter is a byte-granular writer used for the parts of the wire format
// that are whole-byte framing rather than packed bitfields: entity-set
// length prefixes, raw NetId lists, and concatenated EntityState records.
// It grows its backing buffer amortized via internal/pool.ByteBuffer instead
// of reallocating on every append.
type ByteWriter struct {
	buf    *pool.ByteBuffer
	engine endian.EndianEngine
}

// NewByteWriter creates a ByteWriter backed by buf, using engine for
// multi-byte fields.
func NewByteWriter(buf *pool.ByteBuffer, engine endian.EndianEngine) *ByteWriter {
	return &ByteWriter{buf: buf, engine: engine}
}

// Reset clears the writer's backing buffer for reuse.
func (w *ByteWriter) Reset() {
	w.buf.Reset()
}

// Len returns the number of bytes written so far.
func (w *ByteWriter) Len() int {
	return w.buf.Len()
}

// Bytes returns the bytes written so far.
func (w *ByteWriter) Bytes() []byte {
	return w.buf.Bytes()
}

// WriteU16 appends v as engine-ordered bytes.
func (w *ByteWriter) WriteU16(v uint16) {
	w.buf.ExtendOrGrow(2)
	n := w.buf.Len()
	w.engine.PutUint16(w.buf.Slice(n-2, n), v)
}

// WriteU32 appends v as engine-ordered bytes.
func (w *ByteWriter) WriteU32(v uint32) {
	w.buf.ExtendOrGrow(4)
	n := w.buf.Len()
	w.engine.PutUint32(w.buf.Slice(n-4, n), v)
}

// WriteU64 appends v as engine-ordered bytes, used for raw NetId framing.
func (w *ByteWriter) WriteU64(v uint64) {
	w.buf.ExtendOrGrow(8)
	n := w.buf.Len()
	w.engine.PutUint64(w.buf.Slice(n-8, n), v)
}

// WriteBytes appends data verbatim, e.g. a serialized fixed-size EntityState
// record.
func (w *ByteWriter) WriteBytes(data []byte) {
	w.buf.MustWrite(data)
}

// ByteReader is the counterpart to ByteWriter: a byte-granular cursor over a
// borrowed slice.
type ByteReader struct {
	buf    []byte
	pos    int
	engine endian.EndianEngine
}

// NewByteReader creates a ByteReader over buf.
func NewByteReader(buf []byte, engine endian.EndianEngine) *ByteReader {
	return &ByteReader{buf: buf, engine: engine}
}

// Remaining returns the number of unread bytes.
func (r *ByteReader) Remaining() int {
	return len(r.buf) - r.pos
}

// ReadU16 reads an engine-ordered uint16.
func (r *ByteReader) ReadU16() (uint16, error) {
	if r.Remaining() < 2 {
		return 0, errs.ErrTruncated
	}
	v := r.engine.Uint16(r.buf[r.pos : r.pos+2])
	r.pos += 2

	return v, nil
}

// ReadU32 reads an engine-ordered uint32.
func (r *ByteReader) ReadU32() (uint32, error) {
	if r.Remaining() < 4 {
		return 0, errs.ErrTruncated
	}
	v := r.engine.Uint32(r.buf[r.pos : r.pos+4])
	r.pos += 4

	return v, nil
}

// ReadU64 reads an engine-ordered uint64, used for raw NetId framing.
func (r *ByteReader) ReadU64() (uint64, error) {
	if r.Remaining() < 8 {
		return 0, errs.ErrTruncated
	}
	v := r.engine.Uint64(r.buf[r.pos : r.pos+8])
	r.pos += 8

	return v, nil
}

// ReadBytes reads n raw bytes, returning a sub-slice of the borrowed buffer
// (no copy).
func (r *ByteReader) ReadBytes(n int) ([]byte, error) {
	if r.Remaining() < n {
		return nil, errs.ErrTruncated
	}
	out := r.buf[r.pos : r.pos+n]
	r.pos += n

	return out, nil
}
