package pool

import (
	"bytes"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewByteBuffer(t *testing.T) {
	bb := NewByteBuffer(1024)

	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, 1024, bb.Cap())
}

func TestByteBuffer_BytesSharesBackingArray(t *testing.T) {
	bb := NewByteBuffer(ScratchBufferDefaultSize)
	bb.MustWrite([]byte("hello"))

	got := bb.Bytes()
	assert.Equal(t, []byte("hello"), got)
	assert.True(t, &bb.B[0] == &got[0])
}

func TestByteBuffer_ResetPreservesCapacity(t *testing.T) {
	bb := NewByteBuffer(ScratchBufferDefaultSize)
	bb.MustWrite([]byte("some data"))
	originalCap := bb.Cap()

	bb.Reset()

	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, originalCap, bb.Cap())
}

func TestByteBuffer_ExtendOrGrow(t *testing.T) {
	bb := NewByteBuffer(4)

	bb.ExtendOrGrow(2)
	assert.Equal(t, 2, bb.Len())

	bb.ExtendOrGrow(8) // forces Grow since only 2 bytes of capacity remain
	assert.Equal(t, 10, bb.Len())
	assert.GreaterOrEqual(t, bb.Cap(), 10)
}

func TestByteBuffer_GrowPreservesData(t *testing.T) {
	bb := NewByteBuffer(ScratchBufferDefaultSize)
	testData := []byte("important data that must be preserved")
	bb.MustWrite(testData)

	bb.Grow(ScratchBufferDefaultSize * 2) // forces reallocation

	assert.Equal(t, testData, bb.Bytes())
}

func TestByteBuffer_SliceAndSetLengthPanicOnOutOfBounds(t *testing.T) {
	bb := NewByteBuffer(4)

	assert.Panics(t, func() { bb.Slice(0, 8) })
	assert.Panics(t, func() { bb.SetLength(8) })
}

func TestByteBuffer_WriteTo(t *testing.T) {
	bb := NewByteBuffer(ScratchBufferDefaultSize)
	bb.MustWrite([]byte("test data"))

	var out bytes.Buffer
	n, err := bb.WriteTo(&out)

	require.NoError(t, err)
	assert.Equal(t, int64(9), n)
	assert.Equal(t, "test data", out.String())
}

type errorWriter struct{ err error }

func (ew *errorWriter) Write([]byte) (int, error) { return 0, ew.err }

func TestByteBuffer_WriteToPropagatesError(t *testing.T) {
	bb := NewByteBuffer(ScratchBufferDefaultSize)
	bb.MustWrite([]byte("test"))

	_, err := bb.WriteTo(&errorWriter{err: io.ErrShortWrite})
	assert.ErrorIs(t, err, io.ErrShortWrite)
}

func TestScratchAndMessagePoolsAreIndependentlySized(t *testing.T) {
	scratch := GetScratchBuffer()
	defer PutScratchBuffer(scratch)
	msg := GetMessageBuffer()
	defer PutMessageBuffer(msg)

	assert.GreaterOrEqual(t, scratch.Cap(), ScratchBufferDefaultSize)
	assert.GreaterOrEqual(t, msg.Cap(), MessageBufferDefaultSize)
}

func TestPutScratchBufferResetsBeforeReuse(t *testing.T) {
	bb := GetScratchBuffer()
	bb.MustWrite([]byte("sensitive data"))
	PutScratchBuffer(bb)

	assert.Equal(t, 0, bb.Len(), "PutScratchBuffer must reset before returning to the pool")
}

func TestPutScratchBufferNilIsNoop(t *testing.T) {
	assert.NotPanics(t, func() { PutScratchBuffer(nil) })
}

func TestByteBufferPoolDiscardsOversizedBuffers(t *testing.T) {
	p := NewByteBufferPool(1024, 4096)

	bb := p.Get()
	bb.Grow(10_000)
	require.Greater(t, bb.Cap(), 4096)
	p.Put(bb)

	bb2 := p.Get()
	assert.LessOrEqual(t, bb2.Cap(), 1024*2, "buffer larger than maxThreshold must not be retained")
}

func TestGetNetIDSliceExactLength(t *testing.T) {
	slice, release := GetNetIDSlice(5)
	defer release()

	assert.Len(t, slice, 5)
}

func TestGetNetIDSliceReusesCapacityAcrossCalls(t *testing.T) {
	slice, release := GetNetIDSlice(16)
	for i := range slice {
		slice[i] = uint64(i)
	}
	release()

	slice2, release2 := GetNetIDSlice(4)
	defer release2()

	assert.Len(t, slice2, 4)
}

func TestPoolConcurrentAccess(t *testing.T) {
	const goroutines = 32
	const iterations = 200

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				bb := GetScratchBuffer()
				bb.MustWrite([]byte("data"))
				PutScratchBuffer(bb)

				slice, release := GetNetIDSlice(8)
				_ = slice
				release()
			}
		}()
	}

	wg.Wait()
}
