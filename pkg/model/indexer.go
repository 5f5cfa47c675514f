package model

// indexer gives every (slot, room, professor) combination a unique, non-zero key. Keys feed the solver's no-good
// signatures
type indexer interface {
	Index(slot, room, professor uint64) uint64
}

func newIndexer(slots, rooms, professors uint64) indexer {
	return &indexerImplementation{
		slots:      slots,
		rooms:      rooms,
		professors: professors,
	}
}
