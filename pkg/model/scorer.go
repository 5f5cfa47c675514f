package model

import (
	"math"
	"slices"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

type SoftWeights struct {
	PreferredSlot   float64 `json:"preferred_slot" mapstructure:"preferred_slot"`
	GapMinimization float64 `json:"gap_minimization" mapstructure:"gap_minimization"`
	RoomBalance     float64 `json:"room_balance" mapstructure:"room_balance"`
}

func DefaultSoftWeights() SoftWeights {
	return SoftWeights{PreferredSlot: 1, GapMinimization: 0.5, RoomBalance: 0.25}
}

// Hours of gap a session costs when its subject already meets the group that day
const repeatPenalty = 2

// Scorer rates a candidate value against a partial assignment. Higher is better
type Scorer struct {
	constraintModel *ConstraintModel
	weights         SoftWeights
	preferred       [][]int // Preferred slot indices per subject
}

func newScorer(constraintModel *ConstraintModel, weights SoftWeights) *Scorer {
	slotIndex := lo.SliceToMap(lo.Range(len(constraintModel.Slots)), func(i int) (string, int) {
		return constraintModel.Slots[i].Id, i
	})

	preferred := lo.Map(constraintModel.Subjects, func(subject Subject, _ int) []int {
		return lo.FilterMap(subject.PreferredSlots, func(id string, _ int) (int, bool) {
			index, ok := slotIndex[id]
			return index, ok
		})
	})

	return &Scorer{
		constraintModel: constraintModel,
		weights:         weights,
		preferred:       preferred,
	}
}

func (scorer *Scorer) Weights() SoftWeights { return scorer.weights }

func (scorer *Scorer) Score(variable int, value Value, occupancy *Occupancy) float64 {
	score := 0.0

	if scorer.weights.PreferredSlot != 0 {
		score += scorer.weights.PreferredSlot * scorer.proximity(scorer.constraintModel.Variables[variable].Subject, value.Slot)
	}

	if scorer.weights.GapMinimization != 0 {
		session := scorer.constraintModel.Variables[variable]
		day := scorer.constraintModel.Slots[value.Slot].Day
		professorGap := scorer.gapHours(occupancy.professorDay[[2]int{value.Professor, day}], value.Slot)
		groupGap := scorer.gapHours(occupancy.groupDay[[2]int{session.Group, day}], value.Slot)
		repeats := float64(occupancy.lessonDay[[3]int{session.Subject, session.Group, day}])
		score -= scorer.weights.GapMinimization * (professorGap + groupGap + repeatPenalty*repeats)
	}

	if scorer.weights.RoomBalance != 0 {
		hours := float64(scorer.constraintModel.Variables[variable].Minutes) / 60
		roomSpread := varianceIncrease(occupancy.roomHours, value.Room, hours)
		professorSpread := varianceIncrease(occupancy.professorHours, value.Professor, hours) // Least-loaded professors are favored as well
		score -= scorer.weights.RoomBalance * (roomSpread + professorSpread)
	}

	return score
}

// 1 on a preferred slot, decaying with the distance in hours to the closest one. 0 if the subject has no preference
func (scorer *Scorer) proximity(subject, slot int) float64 {
	preferred := scorer.preferred[subject]
	if len(preferred) == 0 {
		return 0
	}

	slots := scorer.constraintModel.Slots
	return lo.Max(lo.Map(preferred, func(preferredSlot int, _ int) float64 {
		dayDistance := math.Abs(float64(slots[slot].Day - slots[preferredSlot].Day))
		startDistance := math.Abs(float64(scorer.constraintModel.SlotStart(slot)-scorer.constraintModel.SlotStart(preferredSlot))) / 60
		return 1 / (1 + 24*dayDistance + startDistance)
	}))
}

// Hours between the slot and the closest slot already taken that day. 0 if the day is empty
func (scorer *Scorer) gapHours(taken []int, slot int) float64 {
	if len(taken) == 0 {
		return 0
	}

	start, end := scorer.constraintModel.SlotStart(slot), scorer.constraintModel.SlotEnd(slot)
	return lo.Min(lo.Map(taken, func(other int, _ int) float64 {
		gap := max(0, start-scorer.constraintModel.SlotEnd(other), scorer.constraintModel.SlotStart(other)-end)
		return float64(gap) / 60
	}))
}

func varianceIncrease(loads []float64, index int, hours float64) float64 {
	if len(loads) < 2 {
		return 0
	}
	before := stat.Variance(loads, nil)
	loads[index] += hours
	after := stat.Variance(loads, nil)
	loads[index] -= hours
	return after - before
}

// Occupancy tracks the partial assignment values are scored against
type Occupancy struct {
	constraintModel *ConstraintModel
	professorDay    map[[2]int][]int // (professor, day) -> taken slots
	groupDay        map[[2]int][]int // (group, day) -> taken slots
	lessonDay       map[[3]int]int   // (subject, group, day) -> placed sessions
	roomHours       []float64
	professorHours  []float64
}

func NewOccupancy(constraintModel *ConstraintModel) *Occupancy {
	return &Occupancy{
		constraintModel: constraintModel,
		professorDay:    make(map[[2]int][]int),
		groupDay:        make(map[[2]int][]int),
		lessonDay:       make(map[[3]int]int),
		roomHours:       make([]float64, len(constraintModel.Rooms)),
		professorHours:  make([]float64, len(constraintModel.Professors)),
	}
}

func (occupancy *Occupancy) Add(variable int, value Value) {
	day := occupancy.constraintModel.Slots[value.Slot].Day
	session := occupancy.constraintModel.Variables[variable]
	group := session.Group
	hours := float64(session.Minutes) / 60

	professorKey, groupKey := [2]int{value.Professor, day}, [2]int{group, day}
	occupancy.professorDay[professorKey] = append(occupancy.professorDay[professorKey], value.Slot)
	occupancy.groupDay[groupKey] = append(occupancy.groupDay[groupKey], value.Slot)
	occupancy.lessonDay[[3]int{session.Subject, group, day}]++
	occupancy.roomHours[value.Room] += hours
	occupancy.professorHours[value.Professor] += hours
}

func (occupancy *Occupancy) Remove(variable int, value Value) {
	day := occupancy.constraintModel.Slots[value.Slot].Day
	session := occupancy.constraintModel.Variables[variable]
	group := session.Group
	hours := float64(session.Minutes) / 60

	professorKey, groupKey := [2]int{value.Professor, day}, [2]int{group, day}
	occupancy.professorDay[professorKey] = removeOnce(occupancy.professorDay[professorKey], value.Slot)
	occupancy.groupDay[groupKey] = removeOnce(occupancy.groupDay[groupKey], value.Slot)
	occupancy.lessonDay[[3]int{session.Subject, group, day}]--
	occupancy.roomHours[value.Room] -= hours
	occupancy.professorHours[value.Professor] -= hours
}

// Weekly hours assigned to the professor so far
func (occupancy *Occupancy) ProfessorHours(professor int) float64 {
	return occupancy.professorHours[professor]
}

func removeOnce(slots []int, slot int) []int {
	if index := slices.Index(slots, slot); index >= 0 {
		return slices.Delete(slots, index, index+1)
	}
	return slots
}
