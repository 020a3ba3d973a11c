package snapshot

import (
	"sort"

	"github.com/duskwave/replicore/entitystate"
	"github.com/duskwave/replicore/internal/pool"
)

// EntitySet is a NetId-keyed collection of EntityState records. Iteration
// order is irrelevant for set membership, but every consumer that feeds an
// EntitySet into delta coding sorts its keys first (see partition in
// serialize.go) since sorted order is what lets the wire format omit NetIds
// for the kept set.
type EntitySet map[uint64]entitystate.EntityState

// SortedKeys returns s's NetIds in ascending order, borrowed from a shared
// pool since this runs once per tick per connection on the delta-decode
// path. The caller must invoke the returned release func once done with
// the slice (typically via defer) so it can be reused by the next call.
func (s EntitySet) SortedKeys() ([]uint64, func()) {
	keys, release := pool.GetNetIDSlice(len(s))

	i := 0
	for k := range s {
		keys[i] = k
		i++
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	return keys, release
}

func (s EntitySet) clear() {
	for k := range s {
		delete(s, k)
	}
}
