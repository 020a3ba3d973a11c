package snapshot

// Serialize partitions the current entity set against the baseline,
// delta-codes the kept set, and frames the result as
// u32_le(len_added) added_stream u32_le(len_kept) kept_stream
// u32_le(len_removed) removed_stream. The returned slice aliases the
// Message's internal output buffer and is only valid until the next
// Reset/Serialize call.
func (m *Message) Serialize() ([]byte, error) {
	added, kept, removed := m.partition()

	if err := m.serializeRemoved(removed); err != nil {
		return nil, err
	}

	if err := m.serializeKept(kept); err != nil {
		return nil, err
	}

	if err := m.serializeAdded(added); err != nil {
		return nil, err
	}

	m.outWriter.Reset()
	writeLengthPrefixed(m.outWriter, m.addedBuf.Bytes())
	writeLengthPrefixed(m.outWriter, m.keptBuf.Bytes())
	writeLengthPrefixed(m.outWriter, m.removedBuf.Bytes())

	return m.outWriter.Bytes(), nil
}

// partition splits the current/baseline sets into added, kept (sorted
// ascending by NetId, the order delta coding depends on), and removed.
func (m *Message) partition() (added, kept, removed []uint64) {
	for netID := range m.lastEntities {
		if _, ok := m.entities[netID]; !ok {
			removed = append(removed, netID)
		}
	}

	for netID := range m.entities {
		if _, ok := m.lastEntities[netID]; ok {
			kept = append(kept, netID)
		} else {
			added = append(added, netID)
		}
	}

	sortUint64s(kept)
	sortUint64s(added)
	sortUint64s(removed)

	return added, kept, removed
}

func (m *Message) serializeRemoved(removed []uint64) error {
	for _, netID := range removed {
		m.removedWriter.WriteU64(netID)
	}

	return nil
}

func (m *Message) serializeKept(kept []uint64) error {
	m.lastScratch.Reset()
	m.currScratch.Reset()

	for _, netID := range kept {
		if err := m.serializeEntityInto(m.lastScratch, m.lastEntities[netID]); err != nil {
			return err
		}
		if err := m.serializeEntityInto(m.currScratch, m.entities[netID]); err != nil {
			return err
		}
	}

	patch, err := m.deltaCodec.Compress(m.lastScratch.Bytes(), m.currScratch.Bytes())
	if err != nil {
		return err
	}

	m.keptBuf.MustWrite(patch)

	return nil
}

func (m *Message) serializeAdded(added []uint64) error {
	for _, netID := range added {
		if err := m.serializeEntityInto(m.addedBuf, m.entities[netID]); err != nil {
			return err
		}
	}

	return nil
}
