package envelope

// ZstdCodec compresses snapshot bytes with Zstandard, favoring compression
// ratio over speed — useful for connections over constrained links where
// broadcast bandwidth matters more than per-tick CPU.
type ZstdCodec struct{}

var _ Codec = ZstdCodec{}
