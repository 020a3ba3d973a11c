package envelope

// NoOp bypasses compression. This is the default envelope.Type: snapshot
// bytes pass through unmodified and unallocated.
type NoOp struct{}

var _ Codec = NoOp{}

// Compress returns data unmodified. The returned slice aliases data;
// callers must not mutate it afterward.
func (NoOp) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data unmodified.
func (NoOp) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
