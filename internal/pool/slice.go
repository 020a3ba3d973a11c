package pool

import "sync"

// netIDSlicePool pools the sorted-netID scratch slice used when building the
// `kept` delta baseline and current buffers, which must be assembled in
// ascending NetID order for delta coding to line up on both sides.
var netIDSlicePool = sync.Pool{
	New: func() any { return &[]uint64{} },
}

// GetNetIDSlice retrieves and resizes a uint64 slice from the pool.
//
// The returned slice will have the exact length specified by size. If the
// pooled slice has insufficient capacity, a new slice is allocated. The
// caller must call the returned cleanup function (typically via defer) to
// return the slice to the pool.
func GetNetIDSlice(size int) ([]uint64, func()) {
	ptr, _ := netIDSlicePool.Get().(*[]uint64)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]uint64, size)
		*ptr = slice
	} else {
		slice = slice[:size]
		*ptr = slice
	}

	return slice, func() { netIDSlicePool.Put(ptr) }
}
