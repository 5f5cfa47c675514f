package model

type indexerImplementation struct {
	slots      uint64
	rooms      uint64
	professors uint64
}

func (indexer *indexerImplementation) Index(slot, room, professor uint64) uint64 {
	return slot + indexer.slots*room + indexer.slots*indexer.rooms*professor + 1
}
