package model

import (
	"fmt"
	"slices"
	"time"

	"github.com/samber/lo"
)

const (
	dateLayout      = "2006-01-02"
	clockLayout     = "15:04"
	defaultTermWeek = 14
)

var DayNames = map[int]string{
	0: "Monday",
	1: "Tuesday",
	2: "Wednesday",
	3: "Thursday",
	4: "Friday",
	5: "Saturday",
	6: "Sunday",
}

// CalendarProvider yields the teaching dates of a term, holidays and blackout periods excluded
type CalendarProvider interface {
	ValidDates(term Term) ([]TeachingDate, error)
}

type Term struct {
	Start        string `json:"start" mapstructure:"start"`
	End          string `json:"end" mapstructure:"end"`
	Weeks        int    `json:"weeks" mapstructure:"weeks"`                 // Dates beyond this week are ignored
	TeachingDays []int  `json:"teaching_days" mapstructure:"teaching_days"` // Weekdays with regular teaching
}

func (term *Term) SetDefaults() {
	if term.Weeks == 0 {
		term.Weeks = defaultTermWeek
	}
	if len(term.TeachingDays) == 0 {
		term.TeachingDays = []int{0, 1, 2, 3, 4}
	}
}

func (term Term) Validate() error {
	start, err := time.Parse(dateLayout, term.Start)
	if err != nil {
		return fmt.Errorf("invalid term start %q: %w", term.Start, err)
	}
	end, err := time.Parse(dateLayout, term.End)
	if err != nil {
		return fmt.Errorf("invalid term end %q: %w", term.End, err)
	}
	if end.Before(start) {
		return fmt.Errorf("term ends (%v) before it starts (%v)", term.End, term.Start)
	}
	if term.Weeks < 0 {
		return fmt.Errorf("term weeks must not be negative: %v", term.Weeks)
	}
	if day, ok := lo.Find(term.TeachingDays, func(day int) bool { return day < 0 || day > 6 }); ok {
		return fmt.Errorf("invalid teaching day %v", day)
	}
	return nil
}

// TeachingDate is a calendar date on which the timetable of Day is taught
type TeachingDate struct {
	Date string `json:"date" mapstructure:"date"`
	Day  int    `json:"day" mapstructure:"day"`
	Week int    `json:"week" mapstructure:"week"` // 1-based week of term
}

type DateRange struct {
	From   string `json:"from" mapstructure:"from"`
	To     string `json:"to" mapstructure:"to"`
	Reason string `json:"reason" mapstructure:"reason"`
}

// DayOverride makes a date follow the timetable of another weekday
type DayOverride struct {
	Date       string `json:"date" mapstructure:"date"`
	FollowsDay int    `json:"follows_day" mapstructure:"follows_day"`
}

// StaticCalendar is a CalendarProvider built from fixed holiday, blackout and override lists
type StaticCalendar struct {
	Holidays  []string      `json:"holidays" mapstructure:"holidays"`
	Blackouts []DateRange   `json:"blackouts" mapstructure:"blackouts"`
	Overrides []DayOverride `json:"overrides" mapstructure:"overrides"`
}

func (calendar StaticCalendar) Validate() error {
	for _, holiday := range calendar.Holidays {
		if _, err := time.Parse(dateLayout, holiday); err != nil {
			return fmt.Errorf("invalid holiday %q: %w", holiday, err)
		}
	}
	for _, blackout := range calendar.Blackouts {
		from, err := time.Parse(dateLayout, blackout.From)
		if err != nil {
			return fmt.Errorf("invalid blackout start %q: %w", blackout.From, err)
		}
		to, err := time.Parse(dateLayout, blackout.To)
		if err != nil {
			return fmt.Errorf("invalid blackout end %q: %w", blackout.To, err)
		}
		if to.Before(from) {
			return fmt.Errorf("blackout %v ends before it starts", blackout.Reason)
		}
	}
	for _, override := range calendar.Overrides {
		if _, err := time.Parse(dateLayout, override.Date); err != nil {
			return fmt.Errorf("invalid override date %q: %w", override.Date, err)
		}
		if override.FollowsDay < 0 || override.FollowsDay > 6 {
			return fmt.Errorf("override %v follows an invalid day %v", override.Date, override.FollowsDay)
		}
	}
	return nil
}

func (calendar *StaticCalendar) ValidDates(term Term) ([]TeachingDate, error) {
	term.SetDefaults()
	if err := term.Validate(); err != nil {
		return nil, err
	}
	if err := calendar.Validate(); err != nil {
		return nil, err
	}

	start, _ := time.Parse(dateLayout, term.Start)
	end, _ := time.Parse(dateLayout, term.End)
	firstMonday := start.AddDate(0, 0, -weekday(start))

	holidays := lo.SliceToMap(calendar.Holidays, func(holiday string) (string, bool) { return holiday, true })
	overrides := lo.SliceToMap(calendar.Overrides, func(override DayOverride) (string, int) {
		return override.Date, override.FollowsDay
	})

	dates := make([]TeachingDate, 0)
	for current := start; !current.After(end); current = current.AddDate(0, 0, 1) {
		date := current.Format(dateLayout)
		week := int(current.Sub(firstMonday).Hours()/24)/7 + 1
		if week > term.Weeks {
			break
		}

		day, overridden := overrides[date]
		if !overridden {
			day = weekday(current)
			if !slices.Contains(term.TeachingDays, day) {
				continue
			}
		}

		if holidays[date] || calendar.blackedOut(date) {
			continue
		}

		dates = append(dates, TeachingDate{Date: date, Day: day, Week: week})
	}
	return dates, nil
}

func (calendar *StaticCalendar) blackedOut(date string) bool {
	// Dates in layout order compare lexically
	return lo.SomeBy(calendar.Blackouts, func(blackout DateRange) bool {
		return blackout.From <= date && date <= blackout.To
	})
}

// Monday is day 0
func weekday(date time.Time) int {
	return (int(date.Weekday()) + 6) % 7
}

func clockMinutes(clock string) (int, error) {
	parsed, err := time.Parse(clockLayout, clock)
	if err != nil {
		return 0, err
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

func clockMinutesOrZero(clock string) int {
	minutes, _ := clockMinutes(clock)
	return minutes
}
