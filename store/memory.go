package store

import (
	"iter"
	"sync"

	"github.com/duskwave/replicore/entitystate"
)

// entry tracks one locally spawned entity plus the client-side authority
// policy for its transform.
type entry struct {
	state     entitystate.EntityState
	direction SyncDirection
}

// Memory is a trivial in-memory EntityStore, concrete enough to exercise
// spawn/update/despawn/authority-drop in tests without pulling in a real
// game-engine entity system.
type Memory struct {
	mu      sync.Mutex
	entries map[uint64]entry
}

var _ EntityStore = (*Memory)(nil)

// NewMemory builds an empty Memory store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[uint64]entry)}
}

// Seed installs e directly (server-side usage: populate the world state
// the replication server reads from) with ServerToClient authority.
func (m *Memory) Seed(e entitystate.EntityState) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[e.NetID] = entry{state: e, direction: ServerToClient}
}

// SetDirection overrides netID's transform authority, e.g. marking the
// local player's own entity ClientToServer after Spawn.
func (m *Memory) SetDirection(netID uint64, dir SyncDirection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[netID]
	if !ok {
		return
	}
	e.direction = dir
	m.entries[netID] = e
}

// Get implements EntityStore.
func (m *Memory) Get(netID uint64) (entitystate.EntityState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[netID]

	return e.state, ok
}

// SpawnedIDs implements EntityStore.
func (m *Memory) SpawnedIDs() iter.Seq[uint64] {
	m.mu.Lock()
	ids := make([]uint64, 0, len(m.entries))
	for id := range m.entries {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	return func(yield func(uint64) bool) {
		for _, id := range ids {
			if !yield(id) {
				return
			}
		}
	}
}

// TransformDirection implements EntityStore.
func (m *Memory) TransformDirection(netID uint64) SyncDirection {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.entries[netID].direction
}

// Spawn implements EntityStore.
func (m *Memory) Spawn(e entitystate.EntityState) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[e.NetID] = entry{state: e, direction: ServerToClient}
}

// ApplyTransform implements EntityStore.
func (m *Memory) ApplyTransform(e entitystate.EntityState) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.entries[e.NetID]
	if !ok {
		return
	}
	existing.state = e
	m.entries[e.NetID] = existing
}

// Despawn implements EntityStore.
func (m *Memory) Despawn(netID uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, netID)
}
