// Package dedupe guards the per-connection interest-set build against a
// caller bug: the same NetID appearing twice while a server tick gathers
// the EntityStates an observer is allowed to see.
package dedupe

import "github.com/duskwave/replicore/errs"

// Tracker tracks the NetIDs seen so far while a connection's interest set
// is being built for the current tick.
type Tracker struct {
	seen map[uint64]struct{}
}

// NewTracker creates a new, empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		seen: make(map[uint64]struct{}),
	}
}

// Track records netID as seen this tick.
//
// Returns errs.ErrDuplicateNetID if netID was already tracked this tick.
// There is no tolerable outcome for a duplicate NetID in one connection's
// interest set: it indicates the interest-management collaborator handed
// the server the same entity twice, which is always a caller bug.
func (t *Tracker) Track(netID uint64) error {
	if _, exists := t.seen[netID]; exists {
		return errs.ErrDuplicateNetID
	}

	t.seen[netID] = struct{}{}

	return nil
}

// Count returns the number of distinct NetIDs tracked so far this tick.
func (t *Tracker) Count() int {
	return len(t.seen)
}

// Reset clears the tracker, preserving its backing map's capacity so it can
// be reused on the next tick without reallocating.
func (t *Tracker) Reset() {
	for k := range t.seen {
		delete(t.seen, k)
	}
}
