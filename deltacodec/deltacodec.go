// Package deltacodec implements the block-based diff used to encode the
// "kept" entity set of a snapshot relative to its baseline: given two
// equal-length byte views, it emits a compact patch carrying only the
// blocks that changed.
package deltacodec

import (
	"bytes"

	"github.com/duskwave/replicore/errs"
	"github.com/duskwave/replicore/internal/options"
)

// DefaultBlockSize is the fixed-width unit of change detection, chosen to
// land a single f32_quantized position axis or a four-byte field boundary
// in one block.
const DefaultBlockSize = 4

// Codec compresses and decompresses patches between two equal-length byte
// views, block size fixed at construction.
type Codec struct {
	blockSize int
}

// New builds a Codec, defaulting to DefaultBlockSize.
func New(opts ...options.Option[*Codec]) (*Codec, error) {
	c := &Codec{blockSize: DefaultBlockSize}

	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	if c.blockSize <= 0 {
		return nil, errs.ErrOutOfRange
	}

	return c, nil
}

// WithBlockSize overrides the default 4-byte block width.
func WithBlockSize(size int) options.Option[*Codec] {
	return options.NoError(func(c *Codec) {
		c.blockSize = size
	})
}

// BlockSize returns the Codec's configured block width.
func (c *Codec) BlockSize() int {
	return c.blockSize
}

func (c *Codec) numBlocks(length int) int {
	return (length + c.blockSize - 1) / c.blockSize
}

func (c *Codec) prefixSize(length int) int {
	return (c.numBlocks(length) + 7) / 8
}

// MaxPatchSize returns the largest possible Compress output for an
// equal-length pair of L-byte views: the changed-bits prefix plus every
// block's raw bytes.
func (c *Codec) MaxPatchSize(length int) int {
	return length + c.prefixSize(length)
}

// Compress diffs current against baseline, both of length L, and returns a
// patch: a ceil(numBlocks/8)-byte changed-bits prefix (bit i set, LSB
// first, iff block i differs) followed by the raw bytes of every changed
// block in order. Returns errs.ErrLengthMismatch if the two views differ
// in length.
func (c *Codec) Compress(baseline, current []byte) ([]byte, error) {
	if len(baseline) != len(current) {
		return nil, errs.ErrLengthMismatch
	}

	length := len(current)
	numBlocks := c.numBlocks(length)
	prefixLen := c.prefixSize(length)

	patch := make([]byte, prefixLen, c.MaxPatchSize(length))

	for i := 0; i < numBlocks; i++ {
		start := i * c.blockSize
		end := start + c.blockSize
		if end > length {
			end = length
		}

		if !bytes.Equal(baseline[start:end], current[start:end]) {
			patch[i/8] |= 1 << uint(i%8)
			patch = append(patch, current[start:end]...)
		}
	}

	return patch, nil
}

// Decompress applies a patch previously produced by Compress against
// baseline (length L), writing the reconstructed L-byte view into dst.
// dst must have length L. Returns errs.ErrLengthMismatch if baseline and
// dst disagree in length, or errs.ErrTruncated if patch runs out of bytes
// before every changed block is read.
func (c *Codec) Decompress(baseline, patch, dst []byte) error {
	if len(dst) != len(baseline) {
		return errs.ErrLengthMismatch
	}

	length := len(baseline)
	numBlocks := c.numBlocks(length)
	prefixLen := c.prefixSize(length)

	if len(patch) < prefixLen {
		return errs.ErrTruncated
	}

	prefix := patch[:prefixLen]
	body := patch[prefixLen:]

	copy(dst, baseline)

	bodyPos := 0
	for i := 0; i < numBlocks; i++ {
		start := i * c.blockSize
		end := start + c.blockSize
		if end > length {
			end = length
		}
		blockLen := end - start

		if prefix[i/8]&(1<<uint(i%8)) == 0 {
			continue
		}

		if len(body)-bodyPos < blockLen {
			return errs.ErrTruncated
		}

		copy(dst[start:end], body[bodyPos:bodyPos+blockLen])
		bodyPos += blockLen
	}

	return nil
}
