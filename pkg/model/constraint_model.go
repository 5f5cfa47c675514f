package model

import "github.com/samber/lo"

// Value is one (slot, room, professor) candidate of a session's domain. Slot, Room and Professor index the model's sorted entities
type Value struct {
	Key       uint64 // Unique index of the (slot, room, professor) combination
	Slot      int
	Room      int
	Professor int
	Weeks     []int // Term weeks in which the session is active
}

// Variable is a required session awaiting a value
type Variable struct {
	Id       string // subject/group/sequence
	Subject  int
	Group    int
	Sequence int
	Minutes  int
	Domain   []Value // Ordered by (day, start, room id, professor id)
}

type ConstraintModel struct {
	Subjects   []Subject
	Professors []Professor
	Groups     []StudentGroup
	Rooms      []Room
	Slots      []TimeSlot
	Dates      []TeachingDate
	Variables  []Variable
	Scorer     *Scorer

	slotStart     []int
	slotEnd       []int
	variableIndex map[string]int
}

func newConstraintModel(catalog Catalog, dates []TeachingDate, variables []Variable, weights SoftWeights) *ConstraintModel {
	variableIndex := make(map[string]int, len(variables))
	for i, variable := range variables {
		variableIndex[variable.Id] = i
	}

	constraintModel := &ConstraintModel{
		Subjects:      catalog.Subjects(),
		Professors:    catalog.Professors(),
		Groups:        catalog.Groups(),
		Rooms:         catalog.Rooms(),
		Slots:         catalog.TimeSlots(),
		Dates:         dates,
		Variables:     variables,
		slotStart:     lo.Map(catalog.TimeSlots(), func(slot TimeSlot, _ int) int { return clockMinutesOrZero(slot.Start) }),
		slotEnd:       lo.Map(catalog.TimeSlots(), func(slot TimeSlot, _ int) int { return clockMinutesOrZero(slot.End) }),
		variableIndex: variableIndex,
	}
	constraintModel.Scorer = newScorer(constraintModel, weights)
	return constraintModel
}

// Checks whether two slots share some instant of the same day
func (constraintModel *ConstraintModel) Overlap(slot1, slot2 int) bool {
	if slot1 == slot2 {
		return true
	}
	return constraintModel.Slots[slot1].Day == constraintModel.Slots[slot2].Day &&
		constraintModel.slotStart[slot1] < constraintModel.slotEnd[slot2] &&
		constraintModel.slotStart[slot2] < constraintModel.slotEnd[slot1]
}

func (constraintModel *ConstraintModel) SlotStart(slot int) int { return constraintModel.slotStart[slot] }
func (constraintModel *ConstraintModel) SlotEnd(slot int) int   { return constraintModel.slotEnd[slot] }

func (constraintModel *ConstraintModel) VariableIndex(id string) (int, bool) {
	index, ok := constraintModel.variableIndex[id]
	return index, ok
}

// Find returns the position in the variable's domain of the value using the given entities
func (constraintModel *ConstraintModel) Find(variable int, slotId, roomId, professorId string) (int, bool) {
	_, position, ok := lo.FindIndexOf(constraintModel.Variables[variable].Domain, func(value Value) bool {
		return constraintModel.Slots[value.Slot].Id == slotId &&
			constraintModel.Rooms[value.Room].Id == roomId &&
			constraintModel.Professors[value.Professor].Id == professorId
	})
	return position, ok
}
