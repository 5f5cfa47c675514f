package model

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
)

type Subject struct {
	Id              string   `json:"id" mapstructure:"id" validate:"required"`
	Name            string   `json:"name" mapstructure:"name"`
	SessionsPerWeek int      `json:"sessions_per_week" mapstructure:"sessions_per_week" validate:"gte=1"`
	SessionMinutes  int      `json:"session_minutes" mapstructure:"session_minutes" validate:"gt=0"`
	Equipment       []string `json:"equipment" mapstructure:"equipment" validate:"dive,required"`
	Groups          []string `json:"groups" mapstructure:"groups"`
	WeekStart       int      `json:"week_start" mapstructure:"week_start" validate:"gte=0"` // First term week the subject meets, 0 means the first week
	WeekEnd         int      `json:"week_end" mapstructure:"week_end" validate:"gte=0"`     // Last term week the subject meets, 0 means the term end
	MinWeeks        int      `json:"min_weeks" mapstructure:"min_weeks" validate:"gte=0"`   // Minimum valid weeks for a slot to be usable, 0 means 1
	PreferredSlots  []string `json:"preferred_slots" mapstructure:"preferred_slots"`
}

type Professor struct {
	Id               string   `json:"id" mapstructure:"id" validate:"required"`
	Name             string   `json:"name" mapstructure:"name"`
	Availability     []Window `json:"availability" mapstructure:"availability" validate:"dive"` // Empty means always available
	MaxWeeklyHours   float64  `json:"max_weekly_hours" mapstructure:"max_weekly_hours" validate:"gte=0"`
	Subjects         []string `json:"subjects" mapstructure:"subjects"`
	UnavailableDates []string `json:"unavailable_dates" mapstructure:"unavailable_dates" validate:"dive,datetime=2006-01-02"`
}

type StudentGroup struct {
	Id       string   `json:"id" mapstructure:"id" validate:"required"`
	Name     string   `json:"name" mapstructure:"name"`
	Size     int      `json:"size" mapstructure:"size" validate:"gt=0"`
	Subjects []string `json:"subjects" mapstructure:"subjects"`
}

type Room struct {
	Id               string   `json:"id" mapstructure:"id" validate:"required"`
	Name             string   `json:"name" mapstructure:"name"`
	Capacity         int      `json:"capacity" mapstructure:"capacity" validate:"gt=0"`
	Equipment        []string `json:"equipment" mapstructure:"equipment"`
	Availability     []Window `json:"availability" mapstructure:"availability" validate:"dive"` // Empty means always open
	Offline          bool     `json:"offline" mapstructure:"offline"`
	UnavailableDates []string `json:"unavailable_dates" mapstructure:"unavailable_dates" validate:"dive,datetime=2006-01-02"`
}

type TimeSlot struct {
	Id    string `json:"id" mapstructure:"id" validate:"required"`
	Day   int    `json:"day" mapstructure:"day" validate:"gte=0,lte=6"`
	Start string `json:"start" mapstructure:"start" validate:"required,datetime=15:04"`
	End   string `json:"end" mapstructure:"end" validate:"required,datetime=15:04"`
}

// Window is a weekly recurring interval
type Window struct {
	Day   int    `json:"day" mapstructure:"day" validate:"gte=0,lte=6"`
	Start string `json:"start" mapstructure:"start" validate:"required,datetime=15:04"`
	End   string `json:"end" mapstructure:"end" validate:"required,datetime=15:04"`
}

type RawCatalog struct {
	Subjects   []Subject      `json:"subjects" mapstructure:"subjects"`
	Professors []Professor    `json:"professors" mapstructure:"professors"`
	Groups     []StudentGroup `json:"groups" mapstructure:"groups"`
	Rooms      []Room         `json:"rooms" mapstructure:"rooms"`
	TimeSlots  []TimeSlot     `json:"time_slots" mapstructure:"time_slots"`
}

type RawInput struct {
	RawCatalog `mapstructure:",squash"`
	Term       Term           `json:"term" mapstructure:"term"`
	Calendar   StaticCalendar `json:"calendar" mapstructure:"calendar"`
}

type Input struct {
	Catalog  *Snapshot
	Term     Term
	Calendar *StaticCalendar
}

func InputFromJson(file string) (Input, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return Input{}, err
	}

	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return Input{}, err
	}

	var rawInput RawInput
	if err := mapstructure.Decode(inputJson, &rawInput); err != nil {
		return Input{}, fmt.Errorf("cannot decode input file %v: %w", file, err)
	}
	return ProcessRawInput(rawInput)
}

func ProcessRawInput(rawInput RawInput) (Input, error) {
	term := rawInput.Term
	term.SetDefaults()
	if err := term.Validate(); err != nil {
		return Input{}, err
	}

	calendar := rawInput.Calendar
	if err := calendar.Validate(); err != nil {
		return Input{}, err
	}

	if issues := duplicateIssues(rawInput.RawCatalog); len(issues) > 0 {
		return Input{}, &ConfigurationError{Issues: issues}
	}

	return Input{
		Catalog:  NewSnapshot(rawInput.RawCatalog),
		Term:     term,
		Calendar: &calendar,
	}, nil
}
