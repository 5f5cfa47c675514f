package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/limaJavier/labtimetabling/pkg/model"
	"github.com/samber/lo"
)

// Catalog files expected in a CSV catalog directory
const (
	SubjectsFile   = "subjects.csv"
	ProfessorsFile = "professors.csv"
	GroupsFile     = "groups.csv"
	RoomsFile      = "rooms.csv"
	TimeSlotsFile  = "time_slots.csv"
)

// List cells hold space separated values. Availability cells hold day@HH:MM-HH:MM windows
type subjectRow struct {
	Id              string `csv:"id"`
	Name            string `csv:"name"`
	SessionsPerWeek int    `csv:"sessions_per_week"`
	SessionMinutes  int    `csv:"session_minutes"`
	Equipment       string `csv:"equipment"`
	Groups          string `csv:"groups"`
	WeekStart       int    `csv:"week_start"`
	WeekEnd         int    `csv:"week_end"`
	MinWeeks        int    `csv:"min_weeks"`
	PreferredSlots  string `csv:"preferred_slots"`
}

type professorRow struct {
	Id               string  `csv:"id"`
	Name             string  `csv:"name"`
	Availability     string  `csv:"availability"`
	MaxWeeklyHours   float64 `csv:"max_weekly_hours"`
	Subjects         string  `csv:"subjects"`
	UnavailableDates string  `csv:"unavailable_dates"`
}

type groupRow struct {
	Id       string `csv:"id"`
	Name     string `csv:"name"`
	Size     int    `csv:"size"`
	Subjects string `csv:"subjects"`
}

type roomRow struct {
	Id               string `csv:"id"`
	Name             string `csv:"name"`
	Capacity         int    `csv:"capacity"`
	Equipment        string `csv:"equipment"`
	Availability     string `csv:"availability"`
	Offline          bool   `csv:"offline"`
	UnavailableDates string `csv:"unavailable_dates"`
}

type timeSlotRow struct {
	Id    string `csv:"id"`
	Day   int    `csv:"day"`
	Start string `csv:"start"`
	End   string `csv:"end"`
}

// LoadCatalog reads the five catalog files of a directory, split by the given delimiter
func LoadCatalog(directory string, delimiter rune) (model.RawCatalog, error) {
	var (
		subjects   []*subjectRow
		professors []*professorRow
		groups     []*groupRow
		rooms      []*roomRow
		timeSlots  []*timeSlotRow
	)
	for _, target := range []struct {
		file string
		out  any
	}{
		{SubjectsFile, &subjects},
		{ProfessorsFile, &professors},
		{GroupsFile, &groups},
		{RoomsFile, &rooms},
		{TimeSlotsFile, &timeSlots},
	} {
		if err := unmarshalFile(filepath.Join(directory, target.file), delimiter, target.out); err != nil {
			return model.RawCatalog{}, err
		}
	}

	var raw model.RawCatalog
	var err error
	raw.Subjects = lo.Map(subjects, func(row *subjectRow, _ int) model.Subject {
		return model.Subject{
			Id:              row.Id,
			Name:            row.Name,
			SessionsPerWeek: row.SessionsPerWeek,
			SessionMinutes:  row.SessionMinutes,
			Equipment:       list(row.Equipment),
			Groups:          list(row.Groups),
			WeekStart:       row.WeekStart,
			WeekEnd:         row.WeekEnd,
			MinWeeks:        row.MinWeeks,
			PreferredSlots:  list(row.PreferredSlots),
		}
	})
	raw.Groups = lo.Map(groups, func(row *groupRow, _ int) model.StudentGroup {
		return model.StudentGroup{Id: row.Id, Name: row.Name, Size: row.Size, Subjects: list(row.Subjects)}
	})
	raw.TimeSlots = lo.Map(timeSlots, func(row *timeSlotRow, _ int) model.TimeSlot {
		return model.TimeSlot{Id: row.Id, Day: row.Day, Start: row.Start, End: row.End}
	})

	for _, row := range professors {
		professor := model.Professor{
			Id:               row.Id,
			Name:             row.Name,
			MaxWeeklyHours:   row.MaxWeeklyHours,
			Subjects:         list(row.Subjects),
			UnavailableDates: list(row.UnavailableDates),
		}
		if professor.Availability, err = parseWindows(row.Availability); err != nil {
			return model.RawCatalog{}, fmt.Errorf("professor %v: %w", row.Id, err)
		}
		raw.Professors = append(raw.Professors, professor)
	}
	for _, row := range rooms {
		room := model.Room{
			Id:               row.Id,
			Name:             row.Name,
			Capacity:         row.Capacity,
			Equipment:        list(row.Equipment),
			Offline:          row.Offline,
			UnavailableDates: list(row.UnavailableDates),
		}
		if room.Availability, err = parseWindows(row.Availability); err != nil {
			return model.RawCatalog{}, fmt.Errorf("room %v: %w", row.Id, err)
		}
		raw.Rooms = append(raw.Rooms, room)
	}

	return raw, nil
}

func unmarshalFile(path string, delimiter rune, out any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open %v: %w", path, err)
	}
	defer file.Close()

	if err := gocsv.UnmarshalCSV(newReader(file, delimiter), out); err != nil {
		return fmt.Errorf("cannot parse %v: %w", path, err)
	}
	return nil
}

func newReader(in io.Reader, delimiter rune) gocsv.CSVReader {
	reader := csv.NewReader(in)
	reader.Comma = delimiter
	reader.TrimLeadingSpace = true
	return reader
}

func list(cell string) []string {
	return strings.Fields(cell)
}

// Parses "0@08:00-12:00 2@14:00-16:00" into weekly windows
func parseWindows(cell string) ([]model.Window, error) {
	windows := make([]model.Window, 0)
	for _, field := range strings.Fields(cell) {
		var window model.Window
		day, interval, ok := strings.Cut(field, "@")
		if !ok {
			return nil, fmt.Errorf("window %q lacks a day", field)
		}
		if _, err := fmt.Sscanf(day, "%d", &window.Day); err != nil {
			return nil, fmt.Errorf("window %q has an invalid day: %w", field, err)
		}
		if window.Start, window.End, ok = strings.Cut(interval, "-"); !ok {
			return nil, fmt.Errorf("window %q lacks an end", field)
		}
		windows = append(windows, window)
	}
	return windows, nil
}
