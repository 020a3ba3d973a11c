// Package interest declares the external interest-management collaborator:
// which entities a given connection is permitted to observe. This is
// treated as an outside policy per the replication core's design notes —
// the hard engineering is the codec/snapshot pipeline consuming its
// output, not interest computation itself.
package interest

import (
	"iter"

	"github.com/duskwave/replicore/transport"
)

// Manager determines, per connection, which NetIds are currently
// observed. replication.Server calls Observed once per connection per
// tick and feeds the results into snapshot.Message.TryAdd in whatever
// order Observed yields them.
type Manager interface {
	Observed(conn transport.ConnID) iter.Seq[uint64]
}

// Static is a trivial Manager where every connection observes the same
// fixed entity set — every connection observes every entity, for tests
// and examples that don't need real interest policy.
type Static struct {
	netIDs []uint64
}

var _ Manager = (*Static)(nil)

// NewStatic builds a Static manager observing exactly netIDs for every
// connection.
func NewStatic(netIDs []uint64) *Static {
	return &Static{netIDs: netIDs}
}

// Observed implements Manager.
func (s *Static) Observed(transport.ConnID) iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		for _, id := range s.netIDs {
			if !yield(id) {
				return
			}
		}
	}
}
