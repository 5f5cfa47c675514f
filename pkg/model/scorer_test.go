package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func scorerModel(weights SoftWeights) *ConstraintModel {
	raw := builderCatalog()
	raw.Subjects[1].PreferredSlots = []string{"M2"}
	raw.TimeSlots = append(raw.TimeSlots, TimeSlot{Id: "M3", Day: 0, Start: "14:00", End: "16:00"})

	// Slots sort as M1, M2, M3, T1, T2. Rooms as L1, L2. Professors as P1, P2
	variables := []Variable{
		{Id: "S1/G1/1", Subject: 0, Group: 0, Sequence: 1, Minutes: 120},
		{Id: "S2/G2/1", Subject: 1, Group: 1, Sequence: 1, Minutes: 120},
		{Id: "S1/G1/2", Subject: 0, Group: 0, Sequence: 2, Minutes: 120},
	}
	return newConstraintModel(NewSnapshot(raw), nil, variables, weights)
}

func TestScorer(t *testing.T) {
	t.Run("Preferred slot proximity", func(t *testing.T) {
		//** Arrange
		constraintModel := scorerModel(SoftWeights{PreferredSlot: 1})
		occupancy := NewOccupancy(constraintModel)

		//** Act
		onPreferred := constraintModel.Scorer.Score(0, Value{Slot: 1}, occupancy)
		sameDay := constraintModel.Scorer.Score(0, Value{Slot: 0}, occupancy)
		nextDay := constraintModel.Scorer.Score(0, Value{Slot: 4}, occupancy)
		noPreference := constraintModel.Scorer.Score(1, Value{Slot: 1}, occupancy)

		//** Assert
		assert.InDelta(t, 1, onPreferred, 1e-9)
		assert.InDelta(t, 1.0/3, sameDay, 1e-9)
		assert.InDelta(t, 1.0/25, nextDay, 1e-9)
		assert.Zero(t, noPreference)
	})

	t.Run("Gaps in a professor's day are penalized", func(t *testing.T) {
		//** Arrange
		constraintModel := scorerModel(SoftWeights{GapMinimization: 1})
		occupancy := NewOccupancy(constraintModel)
		occupancy.Add(0, Value{Slot: 0, Room: 0, Professor: 0})

		//** Act
		adjacent := constraintModel.Scorer.Score(1, Value{Slot: 1, Room: 1, Professor: 0}, occupancy)
		afternoon := constraintModel.Scorer.Score(1, Value{Slot: 2, Room: 1, Professor: 0}, occupancy)
		otherDay := constraintModel.Scorer.Score(1, Value{Slot: 3, Room: 1, Professor: 0}, occupancy)

		//** Assert
		assert.Zero(t, adjacent)
		assert.InDelta(t, -4, afternoon, 1e-9)
		assert.Zero(t, otherDay)
	})

	t.Run("Meeting a group twice on a day is penalized", func(t *testing.T) {
		//** Arrange
		constraintModel := scorerModel(SoftWeights{GapMinimization: 1})
		occupancy := NewOccupancy(constraintModel)
		occupancy.Add(0, Value{Slot: 0, Room: 0, Professor: 0})

		//** Act
		sameDay := constraintModel.Scorer.Score(2, Value{Slot: 1, Room: 0, Professor: 1}, occupancy)
		otherDay := constraintModel.Scorer.Score(2, Value{Slot: 3, Room: 0, Professor: 1}, occupancy)
		hardOnly := scorerModel(SoftWeights{}).Scorer.Score(2, Value{Slot: 1, Room: 0, Professor: 1}, occupancy)

		//** Assert
		assert.InDelta(t, -repeatPenalty, sameDay, 1e-9)
		assert.Zero(t, otherDay)
		assert.Zero(t, hardOnly)
	})

	t.Run("Idle rooms and professors are favored", func(t *testing.T) {
		//** Arrange
		constraintModel := scorerModel(SoftWeights{RoomBalance: 1})
		occupancy := NewOccupancy(constraintModel)
		occupancy.Add(0, Value{Slot: 0, Room: 0, Professor: 0})

		//** Act
		busy := constraintModel.Scorer.Score(1, Value{Slot: 3, Room: 0, Professor: 0}, occupancy)
		idle := constraintModel.Scorer.Score(1, Value{Slot: 3, Room: 1, Professor: 1}, occupancy)

		//** Assert
		assert.InDelta(t, -12, busy, 1e-9)
		assert.InDelta(t, 4, idle, 1e-9)
		assert.Equal(t, 2.0, occupancy.ProfessorHours(0))
	})

	t.Run("Removing a value restores the occupancy", func(t *testing.T) {
		//** Arrange
		constraintModel := scorerModel(DefaultSoftWeights())
		occupancy := NewOccupancy(constraintModel)
		value := Value{Slot: 2, Room: 1, Professor: 1}
		before := constraintModel.Scorer.Score(1, value, occupancy)

		//** Act
		occupancy.Add(0, Value{Slot: 0, Room: 0, Professor: 1})
		occupancy.Remove(0, Value{Slot: 0, Room: 0, Professor: 1})

		//** Assert
		assert.Zero(t, occupancy.ProfessorHours(1))
		assert.InDelta(t, before, constraintModel.Scorer.Score(1, value, occupancy), 1e-9)
	})
}
