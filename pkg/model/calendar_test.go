package model

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticCalendarValidDates(t *testing.T) {
	term := Term{Start: "2025-02-03", End: "2025-03-02", Weeks: 4}

	t.Run("Holidays, blackouts and overrides", func(t *testing.T) {
		//** Arrange
		calendar := StaticCalendar{
			Holidays:  []string{"2025-02-05"},
			Blackouts: []DateRange{{From: "2025-02-17", To: "2025-02-21", Reason: "midterm exams"}},
			Overrides: []DayOverride{{Date: "2025-02-08", FollowsDay: 2}},
		}

		//** Act
		dates, err := calendar.ValidDates(term)

		//** Assert
		require.NoError(t, err)
		assert.Len(t, dates, 15)
		assert.Equal(t, TeachingDate{Date: "2025-02-03", Day: 0, Week: 1}, dates[0])
		assert.Contains(t, dates, TeachingDate{Date: "2025-02-08", Day: 2, Week: 1})
		assert.NotContains(t, lo.Map(dates, func(date TeachingDate, _ int) string { return date.Date }), "2025-02-05")
		assert.False(t, lo.SomeBy(dates, func(date TeachingDate) bool { return date.Week == 3 }))
		assert.Equal(t, TeachingDate{Date: "2025-02-28", Day: 4, Week: 4}, dates[len(dates)-1])
	})

	t.Run("Week limit cuts the term", func(t *testing.T) {
		//** Arrange
		calendar := StaticCalendar{}
		shortTerm := term
		shortTerm.Weeks = 2

		//** Act
		dates, err := calendar.ValidDates(shortTerm)

		//** Assert
		require.NoError(t, err)
		assert.Len(t, dates, 10)
		assert.Equal(t, 2, lo.MaxBy(dates, func(a, b TeachingDate) bool { return a.Week > b.Week }).Week)
	})

	t.Run("Default teaching days skip weekends", func(t *testing.T) {
		//** Arrange
		calendar := StaticCalendar{}

		//** Act
		dates, err := calendar.ValidDates(Term{Start: "2025-02-08", End: "2025-02-10"})

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, []TeachingDate{{Date: "2025-02-10", Day: 0, Week: 2}}, dates)
	})

	t.Run("Invalid input", func(t *testing.T) {
		//** Arrange
		calendars := []StaticCalendar{
			{Holidays: []string{"05/02/2025"}},
			{Blackouts: []DateRange{{From: "2025-02-20", To: "2025-02-17"}}},
			{Overrides: []DayOverride{{Date: "2025-02-08", FollowsDay: 9}}},
		}

		for _, calendar := range calendars {
			//** Act
			_, err := calendar.ValidDates(term)

			//** Assert
			assert.Error(t, err)
		}

		_, err := (&StaticCalendar{}).ValidDates(Term{Start: "2025-03-01", End: "2025-02-01"})
		assert.Error(t, err)
	})
}
