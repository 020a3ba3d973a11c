// Package hash provides fast, non-cryptographic hashing used for diagnostic
// content checksums. Nothing in this package is ever part of a wire format.
package hash

import "github.com/cespare/xxhash/v2"

// Checksum computes the xxHash64 of the given byte slice.
func Checksum(data []byte) uint64 {
	return xxhash.Sum64(data)
}
