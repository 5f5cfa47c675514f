package solver

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/limaJavier/labtimetabling/pkg/model"
	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/onsi/gomega/matchers/support/goraph/edge"
	"github.com/samber/lo"
)

type roomSlot struct {
	room, slot int
}

// Every session needs a (room, slot) pair of its own. When the largest matching between sessions and the pairs their
// domains offer leaves sessions out, no search can succeed
func roomMatchingDiagnostics(constraintModel *model.ConstraintModel) []Diagnostic {
	if len(constraintModel.Variables) == 0 {
		return nil
	}

	//** Build assistance structures
	offered := lo.Map(constraintModel.Variables, func(variable model.Variable, _ int) map[roomSlot]bool {
		return lo.SliceToMap(variable.Domain, func(value model.Value) (roomSlot, bool) {
			return roomSlot{room: value.Room, slot: value.Slot}, true
		})
	})

	pairs := lo.Uniq(lo.FlatMap(offered, func(pairs map[roomSlot]bool, _ int) []roomSlot { return lo.Keys(pairs) }))
	slices.SortFunc(pairs, func(a, b roomSlot) int {
		return cmp.Or(cmp.Compare(a.slot, b.slot), cmp.Compare(a.room, b.room))
	})

	left := lo.Map(lo.Range(len(constraintModel.Variables)), func(variable int, _ int) any { return variable })
	right := lo.Map(pairs, func(pair roomSlot, _ int) any { return pair })

	//** Match sessions
	graph, err := bipartitegraph.NewBipartiteGraph(left, right, func(variable, pair any) (bool, error) {
		return offered[variable.(int)][pair.(roomSlot)], nil
	})
	if err != nil {
		return nil
	}

	matching := graph.LargestMatching()
	if len(matching) == len(left) {
		return nil
	}

	matched := lo.SliceToMap(matching, func(link edge.Edge) (int, bool) { return link.Node1, true })
	unmatched := lo.Filter(lo.Range(len(left)), func(variable int, _ int) bool { return !matched[variable] })
	subjects := lo.Uniq(lo.Map(unmatched, func(variable int, _ int) string {
		return constraintModel.Subjects[constraintModel.Variables[variable].Subject].Id
	}))

	return []Diagnostic{{
		Class:    MatchingClass,
		Subject:  subjects[0],
		Session:  constraintModel.Variables[unmatched[0]].Id,
		Entities: subjects,
		Message: fmt.Sprintf("only %v of %v sessions can hold a distinct (room, slot) pair, sessions of [%v] are left without a room",
			len(matching), len(left), strings.Join(subjects, " ")),
	}}
}
