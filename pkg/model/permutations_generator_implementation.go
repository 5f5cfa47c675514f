package model

import (
	"math"

	"github.com/samber/lo"
)

const tupleArity = 3

type permutationGeneratorImplementation struct {
	bounds [tupleArity]uint64 // Slots, rooms, professors
}

func (generator *permutationGeneratorImplementation) ConstrainedPermutations(constraints []func(permutation []uint64) bool) [][]uint64 {
	tuples := make([][]uint64, 0)
	tuple := []uint64{math.MaxUint64, math.MaxUint64, math.MaxUint64}

	var extend func(position int)
	extend = func(position int) {
		if position == tupleArity {
			tuples = append(tuples, append([]uint64(nil), tuple...))
			return
		}

		for value := range generator.bounds[position] {
			tuple[position] = value
			if lo.EveryBy(constraints, func(constraint func([]uint64) bool) bool { return constraint(tuple) }) {
				extend(position + 1)
			}
		}
		tuple[position] = math.MaxUint64
	}

	extend(0)
	return tuples
}
