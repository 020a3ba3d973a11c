// Package errs collects the sentinel errors shared across the replication
// core, so callers can compare failures with errors.Is instead of matching
// on error strings.
package errs

import "errors"

var (
	// ErrNotEnoughSpace is returned when a writer cannot hold any more data.
	// It is always locally recoverable: the caller stops adding more
	// (snapshot.Message.TryAdd returning false) rather than this error
	// reaching the transport.
	ErrNotEnoughSpace = errors.New("replicore: not enough space")

	// ErrTruncated is returned when a reader runs off the end of its input.
	// It always indicates bad or short inbound data and should result in
	// disconnecting the peer as a protocol violation.
	ErrTruncated = errors.New("replicore: truncated data")

	// ErrOutOfRange is returned when a caller attempts to write a value
	// outside a declared range. This indicates a bug in the calling code,
	// not corrupt network data.
	ErrOutOfRange = errors.New("replicore: value out of range")

	// ErrDesync is returned when decoded state disagrees with the
	// receiver's own sorted baseline (e.g. a delta-decoded NetID mismatch).
	// It always indicates the peer's view of the world has diverged and
	// should result in disconnecting and resynchronizing with a full-state
	// baseline on the next tick.
	ErrDesync = errors.New("replicore: snapshot desynchronized")

	// ErrLengthMismatch is returned when DeltaCodec is asked to diff two
	// byte views of different lengths. This is a programmer error: the
	// caller must serialize both sides with the same fixed-width codec.
	ErrLengthMismatch = errors.New("replicore: length mismatch")

	// ErrPayloadTooLarge is returned when an EntityState's payload exceeds
	// its fixed 128-byte capacity.
	ErrPayloadTooLarge = errors.New("replicore: payload exceeds fixed capacity")

	// ErrStringTooLarge is returned when a fixed-capacity string write
	// would not fit in its declared byte budget.
	ErrStringTooLarge = errors.New("replicore: string exceeds fixed capacity")

	// ErrDuplicateNetID is returned when the same NetID is added twice to
	// one connection's interest set within a single tick.
	ErrDuplicateNetID = errors.New("replicore: duplicate NetID in interest set")

	// ErrEncoderFinished reports use of a codec after Finish/Reset released
	// its backing buffer. No function in this module returns it.
	ErrEncoderFinished = errors.New("replicore: codec already finished")

	// ErrUnsupportedCompression is returned by envelope.New for an unknown
	// compression type.
	ErrUnsupportedCompression = errors.New("replicore: unsupported compression type")
)
