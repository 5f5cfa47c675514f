package model

// Enumerates (slot, room, professor) index tuples in lexical order, pruning a prefix as soon as one predicate rejects
// it. Positions not yet fixed hold math.MaxUint64, so every predicate must accept a tuple whose positions it reads are
// still unset:
//
//	generator.ConstrainedPermutations([]func(permutation []uint64) bool{
//		func(permutation []uint64) bool { return permutation[1] == math.MaxUint64 || roomUsable[permutation[1]] },
//	})
type permutationGenerator interface {
	ConstrainedPermutations(constraints []func(permutation []uint64) bool) [][]uint64
}

func newPermutationGenerator(slots, rooms, professors uint64) permutationGenerator {
	return &permutationGeneratorImplementation{bounds: [tupleArity]uint64{slots, rooms, professors}}
}
