// Package store declares the external entity-data collaborator the
// replication layer reads from (server) and mutates (client). It is
// modeled as a narrow interface rather than a concrete ECS binding, per
// the replication core's design notes on interface-as-field polymorphism.
package store

import (
	"iter"

	"github.com/duskwave/replicore/entitystate"
)

// SyncDirection names which side owns writes to an entity's transform.
// Combined with EntityState.Owned, it implements the authority rule: a
// client applies inbound transform updates unless the entity is locally
// owned AND its direction is ClientToServer, in which case it silently
// drops them (the server still broadcasts them regardless).
type SyncDirection int

const (
	// ServerToClient is the default: the server is authoritative and the
	// client always applies inbound updates.
	ServerToClient SyncDirection = iota
	// ClientToServer marks an entity whose transform this client predicts
	// locally (e.g. the local player); inbound snapshot updates for it are
	// dropped when the entity is also locally owned.
	ClientToServer
)

// EntityStore is the collaborator ReplicationServer reads current entity
// state from, and ReplicationClient mutates in response to a deserialized
// snapshot.
type EntityStore interface {
	// Get returns netID's full current observable state for the server
	// to include in a snapshot. ok is false if the store has never heard
	// of netID (already despawned, or not yet spawned).
	Get(netID uint64) (entitystate.EntityState, bool)

	// SpawnedIDs enumerates every NetId currently spawned in the local
	// store, used by ReplicationClient to detect entities that dropped
	// out of interest since the last snapshot.
	SpawnedIDs() iter.Seq[uint64]

	// TransformDirection reports netID's authority policy. Only
	// meaningful for entities the client has spawned.
	TransformDirection(netID uint64) SyncDirection

	// Spawn instantiates a new local entity from a received EntityState.
	Spawn(e entitystate.EntityState)

	// ApplyTransform updates an already-spawned entity's transform and
	// payload from a received EntityState.
	ApplyTransform(e entitystate.EntityState)

	// Despawn removes netID from the local store.
	Despawn(netID uint64)
}
