package solver

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Hash of a single (variable, value) pair. Assignment signatures XOR these, so they do not depend on assignment order
func pairHash(variable int, key uint64) uint64 {
	var buffer [16]byte
	binary.LittleEndian.PutUint64(buffer[:8], uint64(variable))
	binary.LittleEndian.PutUint64(buffer[8:], key)
	return xxhash.Sum64(buffer[:])
}

// nogoodMemo remembers signatures of partial assignments whose subtree holds no solution. It keeps at most capacity
// entries and evicts the oldest first
type nogoodMemo struct {
	capacity int
	entries  map[uint64]struct{}
	order    []uint64 // Ring of inserted signatures
	next     int
}

func newNogoodMemo(capacity int) *nogoodMemo {
	capacity = max(capacity, 0)
	return &nogoodMemo{
		capacity: capacity,
		entries:  make(map[uint64]struct{}, capacity),
		order:    make([]uint64, 0, capacity),
	}
}

func (memo *nogoodMemo) contains(signature uint64) bool {
	_, ok := memo.entries[signature]
	return ok
}

func (memo *nogoodMemo) add(signature uint64) {
	if memo.capacity == 0 || memo.contains(signature) {
		return
	}

	if len(memo.order) < memo.capacity {
		memo.order = append(memo.order, signature)
	} else {
		delete(memo.entries, memo.order[memo.next])
		memo.order[memo.next] = signature
		memo.next = (memo.next + 1) % memo.capacity
	}
	memo.entries[signature] = struct{}{}
}

func (memo *nogoodMemo) len() int { return len(memo.entries) }
