package snapshot

import (
	"sort"

	"github.com/duskwave/replicore/valuecodec"
)

func sortUint64s(s []uint64) {
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
}

// writeLengthPrefixed appends a 4-byte little-endian length followed by
// data to w.
func writeLengthPrefixed(w *valuecodec.ByteWriter, data []byte) {
	w.WriteU32(uint32(len(data))) //nolint:gosec
	w.WriteBytes(data)
}
