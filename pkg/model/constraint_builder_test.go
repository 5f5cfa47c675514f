package model

import (
	"context"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func builderCatalog() RawCatalog {
	return RawCatalog{
		Subjects: []Subject{
			{Id: "S2", SessionsPerWeek: 2, SessionMinutes: 120, Equipment: []string{"scope"}, Groups: []string{"G2"}},
			{Id: "S1", SessionsPerWeek: 1, SessionMinutes: 120, Groups: []string{"G1"}},
		},
		Professors: []Professor{
			{Id: "P1", Subjects: []string{"S1"}},
			{
				Id:               "P2",
				Subjects:         []string{"S1", "S2"},
				Availability:     []Window{{Day: 1, Start: "08:00", End: "12:00"}},
				UnavailableDates: []string{"2025-02-11"},
			},
		},
		Groups: []StudentGroup{
			{Id: "G1", Size: 20},
			{Id: "G2", Size: 12},
		},
		Rooms: []Room{
			{Id: "L2", Capacity: 15, Equipment: []string{"pc", "scope"}},
			{Id: "L1", Capacity: 30, Equipment: []string{"pc"}},
		},
		TimeSlots: []TimeSlot{
			{Id: "T2", Day: 1, Start: "10:00", End: "12:00"},
			{Id: "M1", Day: 0, Start: "08:00", End: "10:00"},
			{Id: "T1", Day: 1, Start: "08:00", End: "10:00"},
			{Id: "M2", Day: 0, Start: "10:00", End: "12:00"},
		},
	}
}

func builderDates(t *testing.T, calendar StaticCalendar) []TeachingDate {
	dates, err := calendar.ValidDates(Term{Start: "2025-02-03", End: "2025-02-28"})
	require.NoError(t, err)
	return dates
}

// Renders a value as slot~room~professor
func describe(constraintModel *ConstraintModel, value Value) string {
	return constraintModel.Slots[value.Slot].Id + "~" + constraintModel.Rooms[value.Room].Id + "~" + constraintModel.Professors[value.Professor].Id
}

func TestConstraintBuilder(t *testing.T) {
	builder := NewConstraintBuilder()

	t.Run("Domains honor capacity, equipment and availability", func(t *testing.T) {
		//** Arrange
		catalog := NewSnapshot(builderCatalog())
		dates := builderDates(t, StaticCalendar{})

		//** Act
		constraintModel, err := builder.Build(context.Background(), catalog, dates, DefaultSoftWeights())

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, []string{"S1/G1/1", "S2/G2/1", "S2/G2/2"}, lo.Map(constraintModel.Variables, func(variable Variable, _ int) string { return variable.Id }))

		s1 := constraintModel.Variables[0]
		assert.Equal(t,
			[]string{"M1~L1~P1", "M2~L1~P1", "T1~L1~P1", "T1~L1~P2", "T2~L1~P1", "T2~L1~P2"},
			lo.Map(s1.Domain, func(value Value, _ int) string { return describe(constraintModel, value) }),
		)

		s2 := constraintModel.Variables[1]
		assert.Equal(t,
			[]string{"T1~L2~P2", "T2~L2~P2"},
			lo.Map(s2.Domain, func(value Value, _ int) string { return describe(constraintModel, value) }),
		)
		assert.Equal(t, []int{1, 2}, []int{s2.Sequence, constraintModel.Variables[2].Sequence})
	})

	t.Run("Unavailable dates remove weeks", func(t *testing.T) {
		//** Arrange
		catalog := NewSnapshot(builderCatalog())
		dates := builderDates(t, StaticCalendar{})

		//** Act
		constraintModel, err := builder.Build(context.Background(), catalog, dates, DefaultSoftWeights())

		//** Assert
		require.NoError(t, err)
		for _, value := range constraintModel.Variables[0].Domain {
			if constraintModel.Professors[value.Professor].Id == "P2" {
				assert.Equal(t, []int{1, 3, 4}, value.Weeks)
			} else {
				assert.Equal(t, []int{1, 2, 3, 4}, value.Weeks)
			}
		}
	})

	t.Run("Missing equipment names the subject", func(t *testing.T) {
		//** Arrange
		raw := builderCatalog()
		raw.Subjects[1].Equipment = []string{"oscilloscope"}
		dates := builderDates(t, StaticCalendar{})

		//** Act
		constraintModel, err := builder.Build(context.Background(), NewSnapshot(raw), dates, DefaultSoftWeights())

		//** Assert
		assert.Nil(t, constraintModel)
		var configurationError *ConfigurationError
		require.ErrorAs(t, err, &configurationError)
		require.Len(t, configurationError.Issues, 1)
		assert.Equal(t, NoRoom, configurationError.Issues[0].Kind)
		assert.Equal(t, "S1", configurationError.Issues[0].Subject)
		assert.Contains(t, configurationError.Issues[0].Detail, `"oscilloscope"`)
		assert.Equal(t, []string{"S1"}, configurationError.Subjects())
	})

	t.Run("Blackout over the only open week", func(t *testing.T) {
		//** Arrange
		raw := builderCatalog()
		raw.Subjects[1].WeekStart, raw.Subjects[1].WeekEnd = 3, 3
		dates := builderDates(t, StaticCalendar{Blackouts: []DateRange{{From: "2025-02-17", To: "2025-02-21", Reason: "exams"}}})

		//** Act
		_, err := builder.Build(context.Background(), NewSnapshot(raw), dates, DefaultSoftWeights())

		//** Assert
		var configurationError *ConfigurationError
		require.ErrorAs(t, err, &configurationError)
		require.Len(t, configurationError.Issues, 1)
		assert.Equal(t, NoValidWeek, configurationError.Issues[0].Kind)
		assert.Equal(t, "S1", configurationError.Issues[0].Subject)
	})

	t.Run("Blackout weeks leave the domain", func(t *testing.T) {
		//** Arrange
		dates := builderDates(t, StaticCalendar{Blackouts: []DateRange{{From: "2025-02-17", To: "2025-02-21", Reason: "exams"}}})

		//** Act
		constraintModel, err := builder.Build(context.Background(), NewSnapshot(builderCatalog()), dates, DefaultSoftWeights())

		//** Assert
		require.NoError(t, err)
		for _, variable := range constraintModel.Variables {
			for _, value := range variable.Domain {
				assert.NotContains(t, value.Weeks, 3)
			}
		}
	})

	t.Run("Subject without professors", func(t *testing.T) {
		//** Arrange
		raw := builderCatalog()
		raw.Professors = raw.Professors[:1]
		dates := builderDates(t, StaticCalendar{})

		//** Act
		_, err := builder.Build(context.Background(), NewSnapshot(raw), dates, DefaultSoftWeights())

		//** Assert
		var configurationError *ConfigurationError
		require.ErrorAs(t, err, &configurationError)
		assert.Equal(t, []Issue{{Kind: NoProfessor, Subject: "S2", Detail: "no professor is assigned to subject S2"}}, configurationError.Issues)
	})

	t.Run("Group larger than every equipped room", func(t *testing.T) {
		//** Arrange
		raw := builderCatalog()
		raw.Groups[1].Size = 16
		dates := builderDates(t, StaticCalendar{})

		//** Act
		_, err := builder.Build(context.Background(), NewSnapshot(raw), dates, DefaultSoftWeights())

		//** Assert
		var configurationError *ConfigurationError
		require.ErrorAs(t, err, &configurationError)
		require.Len(t, configurationError.Issues, 1)
		assert.Equal(t, NoRoom, configurationError.Issues[0].Kind)
		assert.Equal(t, "S2/G2", configurationError.Issues[0].Session)
	})

	t.Run("Invalid entities", func(t *testing.T) {
		//** Arrange
		raw := builderCatalog()
		raw.Subjects[0].SessionsPerWeek = 0
		raw.Groups[0].Subjects = []string{"S9"}
		raw.TimeSlots = append(raw.TimeSlots, TimeSlot{Id: "M3", Day: 0, Start: "09:00", End: "11:00"})
		dates := builderDates(t, StaticCalendar{})

		//** Act
		_, err := builder.Build(context.Background(), NewSnapshot(raw), dates, DefaultSoftWeights())

		//** Assert
		var configurationError *ConfigurationError
		require.ErrorAs(t, err, &configurationError)
		assert.Len(t, configurationError.Issues, 4) // Sessions count, unknown subject and two overlaps
		assert.True(t, lo.EveryBy(configurationError.Issues, func(issue Issue) bool { return issue.Kind == InvalidEntity }))
	})

	t.Run("Duplicate identifiers", func(t *testing.T) {
		//** Arrange
		raw := builderCatalog()
		raw.Rooms = append(raw.Rooms, Room{Id: "L1", Capacity: 30, Equipment: []string{"pc"}})
		raw.Subjects = append(raw.Subjects, raw.Subjects[1])
		dates := builderDates(t, StaticCalendar{})

		//** Act
		_, err := builder.Build(context.Background(), NewSnapshot(raw), dates, DefaultSoftWeights())

		//** Assert
		var configurationError *ConfigurationError
		require.ErrorAs(t, err, &configurationError)
		assert.Equal(t, []Issue{
			{Kind: InvalidEntity, Subject: "S1", Detail: "duplicate subject identifiers: S1"},
			{Kind: InvalidEntity, Detail: "duplicate room identifiers: L1"},
		}, configurationError.Issues)
	})

	t.Run("Cancelled context", func(t *testing.T) {
		//** Arrange
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		//** Act
		_, err := builder.Build(ctx, NewSnapshot(builderCatalog()), builderDates(t, StaticCalendar{}), DefaultSoftWeights())

		//** Assert
		assert.ErrorIs(t, err, context.Canceled)
	})
}
