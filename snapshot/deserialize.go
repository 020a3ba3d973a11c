package snapshot

import (
	"github.com/duskwave/replicore/bitio"
	"github.com/duskwave/replicore/errs"
	"github.com/duskwave/replicore/valuecodec"
)

// Deserialize parses data (as produced by Serialize) against the
// Message's current baseline (set via SetLastEntities), populating
// Entities() with the reconstructed current set and reshaping
// LastEntities() to match the sender's kept set in the process.
//
// On success, entities returned by Entities() reflect the full observable
// set this tick; the caller is responsible for diffing against its own
// prior view (spawn/despawn) before calling Commit.
func (m *Message) Deserialize(data []byte) error {
	m.entities.clear()

	r := valuecodec.NewByteReader(data, m.engine)

	addedSlice, err := readLengthPrefixed(r)
	if err != nil {
		return err
	}

	keptSlice, err := readLengthPrefixed(r)
	if err != nil {
		return err
	}

	removedSlice, err := readLengthPrefixed(r)
	if err != nil {
		return err
	}

	if err := m.deserializeRemoved(removedSlice); err != nil {
		return err
	}

	if err := m.deserializeKept(keptSlice); err != nil {
		return err
	}

	return m.deserializeAdded(addedSlice)
}

func readLengthPrefixed(r *valuecodec.ByteReader) ([]byte, error) {
	length, err := r.ReadU32()
	if err != nil {
		return nil, err
	}

	return r.ReadBytes(int(length))
}

// deserializeRemoved drops every NetId in removedSlice from lastEntities,
// reshaping it to exactly the sender's kept set.
func (m *Message) deserializeRemoved(removedSlice []byte) error {
	r := valuecodec.NewByteReader(removedSlice, m.engine)

	for r.Remaining() > 0 {
		netID, err := r.ReadU64()
		if err != nil {
			return err
		}

		delete(m.lastEntities, netID)
	}

	return nil
}

func (m *Message) deserializeKept(keptSlice []byte) error {
	sorted, release := m.lastEntities.SortedKeys()
	defer release()

	m.lastScratch.Reset()
	for _, netID := range sorted {
		if err := m.serializeEntityInto(m.lastScratch, m.lastEntities[netID]); err != nil {
			return err
		}
	}

	m.currScratch.Reset()
	m.currScratch.ExtendOrGrow(m.lastScratch.Len())
	current := m.currScratch.Bytes()
	if err := m.deltaCodec.Decompress(m.lastScratch.Bytes(), keptSlice, current); err != nil {
		return err
	}

	size := m.entityCodec.MaxSize()

	for i, expected := range sorted {
		start := i * size
		if start+size > len(current) {
			return errs.ErrTruncated
		}

		e, err := m.entityCodec.Deserialize(bitio.New(current[start : start+size]))
		if err != nil {
			return err
		}

		if e.NetID != expected {
			return errs.ErrDesync
		}

		m.entities[e.NetID] = e
	}

	return nil
}

func (m *Message) deserializeAdded(addedSlice []byte) error {
	size := m.entityCodec.MaxSize()
	if len(addedSlice)%size != 0 {
		return errs.ErrTruncated
	}

	for start := 0; start < len(addedSlice); start += size {
		e, err := m.entityCodec.Deserialize(bitio.New(addedSlice[start : start+size]))
		if err != nil {
			return err
		}

		m.entities[e.NetID] = e
	}

	return nil
}
