package solver

import (
	"cmp"
	"context"
	"math"
	"slices"
	"time"

	"github.com/limaJavier/labtimetabling/pkg/model"
	"github.com/samber/lo"
)

type outcome int

const (
	proceed outcome = iota
	found
	exhausted
	budgetExceeded
	interrupted
)

type removal struct {
	variable, position int
}

type backtrackingSolver struct {
}

func (solver *backtrackingSolver) Solve(ctx context.Context, constraintModel *model.ConstraintModel, pinned map[int]int, options Options) Result {
	return newSearch(constraintModel, options).run(ctx, pinned)
}

// search holds the state of a single solve. It is not safe for concurrent use
type search struct {
	constraintModel *model.ConstraintModel
	options         Options
	occupancy       *model.Occupancy
	nogoods         *nogoodMemo
	failures        *failureRing

	removedAt  [][]int     // Depth that pruned each domain value, 0 while alive
	alive      []int       // Alive values per variable
	assignment []int       // Domain position per variable, -1 when unassigned
	scores     []float64   // Score of the assigned value per variable
	rank       []int       // Static tie-break rank per variable
	trail      [][]removal // Removals per depth
	depth      int
	assigned   int
	signature  uint64 // Order independent hash of the assignment set

	best         []int
	bestAssigned int
	steps        int
	started      time.Time
}

func newSearch(constraintModel *model.ConstraintModel, options Options) *search {
	variables := constraintModel.Variables

	search := &search{
		constraintModel: constraintModel,
		options:         options,
		occupancy:       model.NewOccupancy(constraintModel),
		nogoods:         newNogoodMemo(options.NoGoodCapacity),
		failures:        newFailureRing(failureWindow),
		removedAt:       make([][]int, len(variables)),
		alive:           make([]int, len(variables)),
		assignment:      make([]int, len(variables)),
		scores:          make([]float64, len(variables)),
		rank:            make([]int, len(variables)),
		trail:           [][]removal{nil},
		bestAssigned:    -1,
	}

	for i, variable := range variables {
		search.removedAt[i] = make([]int, len(variable.Domain))
		search.alive[i] = len(variable.Domain)
		search.assignment[i] = -1
	}

	// Ties on domain size go to the subject with more weekly sessions, then to the lowest subject and session ids
	order := lo.Range(len(variables))
	slices.SortStableFunc(order, func(a, b int) int {
		subjectA, subjectB := constraintModel.Subjects[variables[a].Subject], constraintModel.Subjects[variables[b].Subject]
		return cmp.Or(
			cmp.Compare(subjectB.SessionsPerWeek, subjectA.SessionsPerWeek),
			cmp.Compare(subjectA.Id, subjectB.Id),
			cmp.Compare(variables[a].Id, variables[b].Id),
		)
	})
	for rank, variable := range order {
		search.rank[variable] = rank
	}

	return search
}

func (search *search) run(ctx context.Context, pinned map[int]int) Result {
	search.started = time.Now()

	//** Room matching precheck
	if diagnostics := roomMatchingDiagnostics(search.constraintModel); len(diagnostics) > 0 {
		return search.result(Unsatisfiable, search.assignment, diagnostics)
	}

	//** Pinned variables
	pinnedVariables := lo.Keys(pinned)
	slices.Sort(pinnedVariables)
	for _, variable := range pinnedVariables {
		position := pinned[variable]
		if variable < 0 || variable >= len(search.assignment) || position < 0 || position >= len(search.removedAt[variable]) {
			return search.result(Unsatisfiable, search.assignment, []Diagnostic{{Class: PinnedClass, Message: "pinned assignment is out of range"}})
		}

		session := search.constraintModel.Variables[variable]
		if search.removedAt[variable][position] != 0 {
			return search.result(Unsatisfiable, search.assignment, []Diagnostic{{
				Class:   PinnedClass,
				Subject: search.constraintModel.Subjects[session.Subject].Id,
				Session: session.Id,
				Message: "pinned session " + session.Id + " conflicts with another pinned session",
			}})
		}
		if ok, failure := search.assign(variable, position); !ok {
			search.failures.add(failure)
			diagnostics := search.failures.diagnose(search.constraintModel)
			diagnostics[0].Class = PinnedClass
			return search.result(Unsatisfiable, search.assignment, diagnostics)
		}
	}
	search.recordBest()

	//** Backtracking
	switch search.solve(ctx) {
	case found:
		return search.result(Solved, search.assignment, nil)
	case budgetExceeded:
		return search.result(PartiallySolved, search.best, nil)
	case interrupted:
		return search.result(Cancelled, search.best, nil)
	default:
		return search.result(Unsatisfiable, search.best, search.failures.diagnose(search.constraintModel))
	}
}

func (search *search) solve(ctx context.Context) outcome {
	if search.assigned == len(search.assignment) {
		return found
	}
	if outcome := search.checkpoint(ctx); outcome != proceed {
		return outcome
	}
	if search.nogoods.contains(search.signature) {
		return exhausted
	}

	variable := search.selectVariable()
	for _, position := range search.orderValues(variable) {
		ok, failure := search.assign(variable, position)
		if ok {
			search.recordBest()
			if outcome := search.solve(ctx); outcome != exhausted {
				return outcome // Keep the assignment in place, a solution or an interruption owns it now
			}
		} else {
			search.failures.add(failure)
		}
		search.unassign(variable)
	}

	search.nogoods.add(search.signature)
	return exhausted
}

// Cooperative checkpoint, visited once per search node
func (search *search) checkpoint(ctx context.Context) outcome {
	search.steps++
	if ctx.Err() != nil {
		return interrupted
	}
	if search.options.MaxSearchSteps > 0 && search.steps > search.options.MaxSearchSteps {
		return budgetExceeded
	}
	if search.options.TimeBudget > 0 && time.Since(search.started) > search.options.TimeBudget {
		return budgetExceeded
	}
	return proceed
}

// Most constrained variable first
func (search *search) selectVariable() int {
	selected := -1
	for variable, position := range search.assignment {
		if position != -1 {
			continue
		}
		if selected == -1 ||
			search.alive[variable] < search.alive[selected] ||
			search.alive[variable] == search.alive[selected] && search.rank[variable] < search.rank[selected] {
			selected = variable
		}
	}
	return selected
}

// Alive positions by descending score. Domains are sorted by (day, start, room id, professor id), which settles ties
func (search *search) orderValues(variable int) []int {
	domain := search.constraintModel.Variables[variable].Domain
	positions := lo.Filter(lo.Range(len(domain)), func(position int, _ int) bool {
		return search.removedAt[variable][position] == 0
	})
	scores := lo.SliceToMap(positions, func(position int) (int, float64) {
		return position, search.constraintModel.Scorer.Score(variable, domain[position], search.occupancy)
	})

	slices.SortStableFunc(positions, func(a, b int) int {
		return cmp.Or(cmp.Compare(scores[b], scores[a]), cmp.Compare(a, b))
	})
	return positions
}

func (search *search) assign(variable, position int) (bool, failure) {
	value := search.constraintModel.Variables[variable].Domain[position]

	search.depth++
	search.trail = append(search.trail, nil)
	search.scores[variable] = search.constraintModel.Scorer.Score(variable, value, search.occupancy)
	search.assignment[variable] = position
	search.assigned++
	search.signature ^= pairHash(variable, value.Key)
	search.occupancy.Add(variable, value)

	return search.propagate(variable, value)
}

func (search *search) unassign(variable int) {
	value := search.constraintModel.Variables[variable].Domain[search.assignment[variable]]

	for _, removal := range search.trail[search.depth] {
		search.removedAt[removal.variable][removal.position] = 0
		search.alive[removal.variable]++
	}
	search.trail = search.trail[:search.depth]
	search.depth--

	search.occupancy.Remove(variable, value)
	search.signature ^= pairHash(variable, value.Key)
	search.assigned--
	search.assignment[variable] = -1
	search.scores[variable] = 0
}

// Forward checking: drop every value of the unassigned variables that conflicts with the new assignment
func (search *search) propagate(variable int, value model.Value) (bool, failure) {
	source := search.constraintModel.Variables[variable]
	hoursLeft := math.Inf(1)
	if maxHours := search.constraintModel.Professors[value.Professor].MaxWeeklyHours; maxHours > 0 {
		hoursLeft = maxHours - search.occupancy.ProfessorHours(value.Professor)
	}

	for other, target := range search.constraintModel.Variables {
		if search.assignment[other] != -1 {
			continue
		}

		var removed [len(pruningClasses)]int
		for position, candidate := range target.Domain {
			if search.removedAt[other][position] != 0 {
				continue
			}
			if class := search.conflict(source, value, target, candidate, hoursLeft); class != "" {
				search.removedAt[other][position] = search.depth
				search.alive[other]--
				search.trail[search.depth] = append(search.trail[search.depth], removal{other, position})
				removed[slices.Index(pruningClasses[:], class)]++
			}
		}

		if search.alive[other] == 0 {
			emptiedBy := dominantPruning(removed)
			return false, failure{class: emptiedBy, variable: other, entity: search.entity(emptiedBy, source, value)}
		}
	}
	return true, failure{}
}

// Classes forward checking prunes with, in tie-break order
var pruningClasses = [...]string{ProfessorHoursClass, RoomClass, ProfessorClass, GroupClass}

// The class that pruned the most values of a wiped out domain
func dominantPruning(removed [len(pruningClasses)]int) string {
	dominant := 0
	for class, count := range removed {
		if count > removed[dominant] {
			dominant = class
		}
	}
	return pruningClasses[dominant]
}

// Returns the constraint class violated by holding both values at once, or "" when they are compatible
func (search *search) conflict(source model.Variable, value model.Value, target model.Variable, candidate model.Value, hoursLeft float64) string {
	constraintModel := search.constraintModel
	overlap := constraintModel.Overlap(value.Slot, candidate.Slot)

	switch {
	case value.Professor == candidate.Professor && float64(target.Minutes)/60 > hoursLeft+1e-9:
		return ProfessorHoursClass
	case overlap && value.Room == candidate.Room:
		return RoomClass
	case overlap && value.Professor == candidate.Professor:
		return ProfessorClass
	case overlap && source.Group == target.Group:
		return GroupClass
	}
	return ""
}

func (search *search) entity(class string, source model.Variable, value model.Value) string {
	constraintModel := search.constraintModel
	switch class {
	case RoomClass:
		return constraintModel.Rooms[value.Room].Id
	case ProfessorClass, ProfessorHoursClass:
		return constraintModel.Professors[value.Professor].Id
	case GroupClass:
		return constraintModel.Groups[source.Group].Id
	}
	return ""
}

func (search *search) recordBest() {
	if search.assigned > search.bestAssigned {
		search.best = slices.Clone(search.assignment)
		search.bestAssigned = search.assigned
	}
}

func (search *search) result(status Status, assignment []int, diagnostics []Diagnostic) Result {
	assignment = slices.Clone(assignment)
	if assignment == nil {
		assignment = lo.Map(search.assignment, func(int, int) int { return -1 })
	}

	// Scores are only kept for the live assignment, a snapshot is scored from scratch
	score := 0.0
	if slices.Equal(assignment, search.assignment) {
		score = lo.Sum(search.scores)
	} else {
		score = rescore(search.constraintModel, assignment)
	}

	return Result{
		Status:      status,
		Assignment:  assignment,
		Unresolved:  lo.Filter(lo.Range(len(assignment)), func(variable int, _ int) bool { return assignment[variable] == -1 }),
		Diagnostics: diagnostics,
		Score:       score,
		Steps:       search.steps,
	}
}

// Scores an assignment as if its variables had been assigned in index order
func rescore(constraintModel *model.ConstraintModel, assignment []int) float64 {
	occupancy := model.NewOccupancy(constraintModel)
	score := 0.0
	for variable, position := range assignment {
		if position == -1 {
			continue
		}
		value := constraintModel.Variables[variable].Domain[position]
		score += constraintModel.Scorer.Score(variable, value, occupancy)
		occupancy.Add(variable, value)
	}
	return score
}
