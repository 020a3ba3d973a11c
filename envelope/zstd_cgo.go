//go:build gozstd_cgo

package envelope

import "github.com/valyala/gozstd"

// Compress compresses data with the cgo zstd binding, at the cost of a cgo
// dependency in the final binary. Disabled by default: this file only
// builds with -tags gozstd_cgo. Most deployments prefer the pure-Go
// zstd_pure.go path and only opt into cgo zstd when its better-tuned
// compression outweighs the cross-compilation cost.
func (ZstdCodec) Compress(data []byte) ([]byte, error) {
	return gozstd.CompressLevel(nil, data, 3), nil
}

// Decompress decompresses data with the cgo zstd binding.
func (ZstdCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.Decompress(nil, data)
}
