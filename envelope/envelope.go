// Package envelope optionally compresses an already-serialized snapshot
// payload before it is handed to the transport.
//
// This is deliberately a layer above snapshot.Message.Serialize, never
// inside it: the snapshot codec's own MTU-bound guarantee is computed on
// the uncompressed wire bytes, and compression is the enclosing messaging
// layer's choice to make, not the codec's.
package envelope

import (
	"fmt"

	"github.com/duskwave/replicore/errs"
)

// Type identifies a snapshot envelope's compression algorithm.
type Type uint8

const (
	// None passes the snapshot bytes through unmodified. This is the
	// default: replication.Server ships uncompressed snapshots unless a
	// caller opts in.
	None Type = iota
	// Zstd selects Zstandard, favoring compression ratio over latency.
	Zstd
	// S2 selects klauspost/compress's S2 (Snappy-derived), favoring
	// throughput over ratio.
	S2
	// LZ4 selects LZ4 block compression, the lowest-latency option.
	LZ4
)

// String implements fmt.Stringer for error messages and logging.
func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case Zstd:
		return "zstd"
	case S2:
		return "s2"
	case LZ4:
		return "lz4"
	default:
		return fmt.Sprintf("envelope.Type(%d)", uint8(t))
	}
}

// Compressor compresses a serialized snapshot payload.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses a payload previously produced by a matching
// Compressor.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines Compressor and Decompressor. Both sides of a connection
// must agree on the same Type.
type Codec interface {
	Compressor
	Decompressor
}

var builtins = map[Type]Codec{
	None: NoOp{},
	Zstd: ZstdCodec{},
	S2:   S2Codec{},
	LZ4:  LZ4Codec{},
}

// New returns the built-in Codec for t, or errs.ErrUnsupportedCompression.
func New(t Type) (Codec, error) {
	codec, ok := builtins[t]
	if !ok {
		return nil, fmt.Errorf("%s: %w", t, errs.ErrUnsupportedCompression)
	}

	return codec, nil
}
