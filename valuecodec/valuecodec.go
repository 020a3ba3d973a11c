// Package valuecodec layers fixed-capacity blob and string helpers, plus a
// byte-granular writer/reader, on top of bitio.Buffer.
//
// The fixed-width helpers (WriteFixedBytes16/30/62/126/128,
// WriteFixedString32/64/128) always consume their full declared capacity
// on the wire regardless of the caller's actual payload length — this is
// what lets EntityState.Serialize produce a constant-size record, the
// invariant the delta codec depends on.
package valuecodec

import (
	"github.com/duskwave/replicore/bitio"
	"github.com/duskwave/replicore/errs"
)

// Capacities for the named fixed-bytes helpers.
const (
	Bytes16  = 16
	Bytes30  = 30
	Bytes62  = 62
	Bytes126 = 126
	Bytes128 = 128
)

// Capacities for the named fixed-string helpers. Each includes its 2-byte
// length prefix, so the maximum string payload is Capacity-2 bytes.
const (
	String32  = 32
	String64  = 64
	String128 = 128
)

// WriteFixedBytes writes exactly capacity bytes: data, then zero padding.
// Returns errs.ErrPayloadTooLarge if len(data) > capacity.
func WriteFixedBytes(b *bitio.Buffer, capacity int, data []byte) error {
	if len(data) > capacity {
		return errs.ErrPayloadTooLarge
	}

	for _, bb := range data {
		if err := b.WriteBitsU8(bb, 8); err != nil {
			return err
		}
	}

	for i := len(data); i < capacity; i++ {
		if err := b.WriteBitsU8(0, 8); err != nil {
			return err
		}
	}

	return nil
}

// WriteFixedBytes16 writes a 16-byte fixed blob, e.g. a PrefabId.
func WriteFixedBytes16(b *bitio.Buffer, data []byte) error { return WriteFixedBytes(b, Bytes16, data) }

// WriteFixedBytes30 writes a 30-byte fixed blob.
func WriteFixedBytes30(b *bitio.Buffer, data []byte) error { return WriteFixedBytes(b, Bytes30, data) }

// WriteFixedBytes62 writes a 62-byte fixed blob.
func WriteFixedBytes62(b *bitio.Buffer, data []byte) error { return WriteFixedBytes(b, Bytes62, data) }

// WriteFixedBytes126 writes a 126-byte fixed blob.
func WriteFixedBytes126(b *bitio.Buffer, data []byte) error {
	return WriteFixedBytes(b, Bytes126, data)
}

// WriteFixedBytes128 writes a 128-byte fixed blob, e.g. an EntityState payload.
func WriteFixedBytes128(b *bitio.Buffer, data []byte) error {
	return WriteFixedBytes(b, Bytes128, data)
}

// ReadFixedBytes reads exactly capacity raw bytes.
func ReadFixedBytes(b *bitio.Buffer, capacity int) ([]byte, error) {
	out := make([]byte, capacity)
	for i := range out {
		v, err := b.ReadBitsU8(8)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}

	return out, nil
}

// ReadFixedBytes16 reads a 16-byte fixed blob.
func ReadFixedBytes16(b *bitio.Buffer) ([]byte, error) { return ReadFixedBytes(b, Bytes16) }

// ReadFixedBytes30 reads a 30-byte fixed blob.
func ReadFixedBytes30(b *bitio.Buffer) ([]byte, error) { return ReadFixedBytes(b, Bytes30) }

// ReadFixedBytes62 reads a 62-byte fixed blob.
func ReadFixedBytes62(b *bitio.Buffer) ([]byte, error) { return ReadFixedBytes(b, Bytes62) }

// ReadFixedBytes126 reads a 126-byte fixed blob.
func ReadFixedBytes126(b *bitio.Buffer) ([]byte, error) { return ReadFixedBytes(b, Bytes126) }

// ReadFixedBytes128 reads a 128-byte fixed blob.
func ReadFixedBytes128(b *bitio.Buffer) ([]byte, error) { return ReadFixedBytes(b, Bytes128) }

// WriteFixedString writes a 2-byte length prefix followed by exactly
// capacity-2 bytes: s's bytes, then zero padding. Returns
// errs.ErrStringTooLarge if len(s) > capacity-2.
func WriteFixedString(b *bitio.Buffer, capacity int, s string) error {
	maxLen := capacity - 2
	if len(s) > maxLen {
		return errs.ErrStringTooLarge
	}

	if err := b.WriteBitsU16(uint16(len(s)), 16); err != nil { //nolint:gosec
		return err
	}

	return WriteFixedBytes(b, maxLen, []byte(s))
}

// WriteFixedString32 writes a fixed string with 30 bytes of payload capacity.
func WriteFixedString32(b *bitio.Buffer, s string) error { return WriteFixedString(b, String32, s) }

// WriteFixedString64 writes a fixed string with 62 bytes of payload capacity.
func WriteFixedString64(b *bitio.Buffer, s string) error { return WriteFixedString(b, String64, s) }

// WriteFixedString128 writes a fixed string with 126 bytes of payload capacity.
func WriteFixedString128(b *bitio.Buffer, s string) error {
	return WriteFixedString(b, String128, s)
}

// ReadFixedString reads a string previously written with WriteFixedString.
// Returns errs.ErrTruncated if the stored length exceeds the declared capacity.
func ReadFixedString(b *bitio.Buffer, capacity int) (string, error) {
	length, err := b.ReadBitsU16(16)
	if err != nil {
		return "", err
	}

	maxLen := capacity - 2
	if int(length) > maxLen {
		return "", errs.ErrTruncated
	}

	data, err := ReadFixedBytes(b, maxLen)
	if err != nil {
		return "", err
	}

	return string(data[:length]), nil
}

// ReadFixedString32 reads a string written with WriteFixedString32.
func ReadFixedString32(b *bitio.Buffer) (string, error) { return ReadFixedString(b, String32) }

// ReadFixedString64 reads a string written with WriteFixedString64.
func ReadFixedString64(b *bitio.Buffer) (string, error) { return ReadFixedString(b, String64) }

// ReadFixedString128 reads a string written with WriteFixedString128.
func ReadFixedString128(b *bitio.Buffer) (string, error) { return ReadFixedString(b, String128) }
