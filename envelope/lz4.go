package envelope

import (
	"errors"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4CompressorPool pools lz4.Compressor instances; they carry internal
// state that benefits from reuse across ticks.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Codec compresses snapshot bytes with LZ4 block compression, the
// lowest-latency option among the built-in envelope codecs.
type LZ4Codec struct{}

var _ Codec = LZ4Codec{}

// storedRaw and storedCompressed tag the one-byte prefix Compress adds
// ahead of the LZ4 block: CompressBlock reports n==0 when data doesn't
// shrink, in which case the block form has nothing to decompress and the
// original bytes are stored as-is instead.
const (
	storedRaw        byte = 0
	storedCompressed byte = 1
)

// Compress compresses data with LZ4, using a pooled compressor. Data that
// doesn't compress is stored as-is behind a one-byte raw marker rather
// than dropped.
func (LZ4Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, 1+lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst[1:])
	if err != nil {
		return nil, err
	}

	if n == 0 {
		dst[0] = storedRaw
		copy(dst[1:1+len(data)], data)

		return dst[:1+len(data)], nil
	}

	dst[0] = storedCompressed

	return dst[:1+n], nil
}

// Decompress decompresses data previously produced by Compress, growing
// its scratch buffer until it's large enough or a safety ceiling is hit.
func (LZ4Codec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	flag, payload := data[0], data[1:]
	if flag == storedRaw {
		out := make([]byte, len(payload))
		copy(out, payload)

		return out, nil
	}

	bufSize := len(payload) * 4
	const maxSize = 128 * 1024 * 1024

	for bufSize <= maxSize {
		buf := make([]byte, bufSize)

		n, err := lz4.UncompressBlock(payload, buf)
		if err != nil {
			if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) && bufSize < maxSize {
				bufSize *= 2
				continue
			}

			return nil, err
		}

		return buf[:n], nil
	}

	return nil, lz4.ErrInvalidSourceShortBuffer
}
