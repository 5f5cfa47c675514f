package model

import (
	"math"
	"slices"

	"github.com/samber/lo"
)

type predicateEvaluatorStandard struct {
	catalog            Catalog
	teaches            [][]bool               // Professor x Subject
	professorAvailable [][]bool               // Professor x Slot
	roomOpen           [][]bool               // Room x Slot
	datesByDay         map[int][]TeachingDate // Teaching dates per followed weekday
	professorBlocked   []map[string]bool      // Unavailable dates per professor
	roomBlocked        []map[string]bool      // Unavailable dates per room
	slotMinutes        []int
}

func newPredicateEvaluator(catalog Catalog, dates []TeachingDate) predicateEvaluator {
	subjects, professors, rooms, slots := catalog.Subjects(), catalog.Professors(), catalog.Rooms(), catalog.TimeSlots()

	slotMinutes := lo.Map(slots, func(slot TimeSlot, _ int) int {
		return clockMinutesOrZero(slot.End) - clockMinutesOrZero(slot.Start)
	})

	evaluator := predicateEvaluatorStandard{
		catalog:     catalog,
		datesByDay:  lo.GroupBy(dates, func(date TeachingDate) int { return date.Day }),
		slotMinutes: slotMinutes,
	}

	evaluator.teaches = make([][]bool, len(professors))
	evaluator.professorAvailable = make([][]bool, len(professors))
	evaluator.professorBlocked = make([]map[string]bool, len(professors))
	for i, professor := range professors {
		evaluator.teaches[i] = lo.Map(subjects, func(subject Subject, _ int) bool {
			return slices.Contains(professor.Subjects, subject.Id)
		})
		evaluator.professorAvailable[i] = lo.Map(slots, func(slot TimeSlot, _ int) bool {
			return covered(professor.Availability, slot)
		})
		evaluator.professorBlocked[i] = lo.SliceToMap(professor.UnavailableDates, func(date string) (string, bool) { return date, true })
	}

	evaluator.roomOpen = make([][]bool, len(rooms))
	evaluator.roomBlocked = make([]map[string]bool, len(rooms))
	for i, room := range rooms {
		evaluator.roomOpen[i] = lo.Map(slots, func(slot TimeSlot, _ int) bool {
			return !room.Offline && covered(room.Availability, slot)
		})
		evaluator.roomBlocked[i] = lo.SliceToMap(room.UnavailableDates, func(date string) (string, bool) { return date, true })
	}

	return &evaluator
}

func (evaluator *predicateEvaluatorStandard) Fits(group, room uint64) bool {
	return evaluator.catalog.Rooms()[room].Capacity >= evaluator.catalog.Groups()[group].Size
}

func (evaluator *predicateEvaluatorStandard) Equipped(subject, room uint64) bool {
	required := evaluator.catalog.Subjects()[subject].Equipment
	available := evaluator.catalog.Rooms()[room].Equipment
	return lo.Every(available, required)
}

func (evaluator *predicateEvaluatorStandard) RoomOpen(room, slot uint64) bool {
	return evaluator.roomOpen[room][slot]
}

func (evaluator *predicateEvaluatorStandard) Teaches(professor, subject uint64) bool {
	return evaluator.teaches[professor][subject]
}

func (evaluator *predicateEvaluatorStandard) ProfessorAvailable(professor, slot uint64) bool {
	return evaluator.professorAvailable[professor][slot]
}

func (evaluator *predicateEvaluatorStandard) SlotFits(subject, slot uint64) bool {
	return evaluator.slotMinutes[slot] >= evaluator.catalog.Subjects()[subject].SessionMinutes
}

func (evaluator *predicateEvaluatorStandard) WithinHours(professor, subject uint64) bool {
	maxHours := evaluator.catalog.Professors()[professor].MaxWeeklyHours
	return maxHours == 0 || float64(evaluator.catalog.Subjects()[subject].SessionMinutes) <= maxHours*60
}

func (evaluator *predicateEvaluatorStandard) Weeks(subject, slot, room, professor uint64) []int {
	subjectEntity := evaluator.catalog.Subjects()[subject]
	day := evaluator.catalog.TimeSlots()[slot].Day

	weeks := make([]int, 0)
	for _, date := range evaluator.datesByDay[day] {
		if subjectEntity.WeekStart > 0 && date.Week < subjectEntity.WeekStart ||
			subjectEntity.WeekEnd > 0 && date.Week > subjectEntity.WeekEnd {
			continue
		}
		if room != math.MaxUint64 && evaluator.roomBlocked[room][date.Date] {
			continue
		}
		if professor != math.MaxUint64 && evaluator.professorBlocked[professor][date.Date] {
			continue
		}
		weeks = append(weeks, date.Week)
	}

	slices.Sort(weeks)
	return slices.Compact(weeks)
}

// Checks whether some window holds the whole slot. No windows means no restriction
func covered(windows []Window, slot TimeSlot) bool {
	if len(windows) == 0 {
		return true
	}
	start, end := clockMinutesOrZero(slot.Start), clockMinutesOrZero(slot.End)
	return lo.SomeBy(windows, func(window Window) bool {
		return window.Day == slot.Day && clockMinutesOrZero(window.Start) <= start && end <= clockMinutesOrZero(window.End)
	})
}
