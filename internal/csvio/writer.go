package csvio

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/limaJavier/labtimetabling/pkg/model"
	"github.com/limaJavier/labtimetabling/pkg/schedule"
	"github.com/samber/lo"
)

// ScheduleRow is one exported session
type ScheduleRow struct {
	Session   string `csv:"session"`
	Subject   string `csv:"subject"`
	Group     string `csv:"group"`
	Professor string `csv:"professor"`
	Room      string `csv:"room"`
	Slot      string `csv:"slot"`
	Day       string `csv:"day"`
	Start     string `csv:"start"`
	End       string `csv:"end"`
	Weeks     string `csv:"weeks"`
	Version   uint64 `csv:"version"`
}

// Rows lays the sessions out by day, start time and session id
func Rows(committed schedule.Schedule) []*ScheduleRow {
	sessions := slices.Clone(committed.Sessions)
	slices.SortFunc(sessions, func(a, b schedule.Session) int {
		return cmp.Or(cmp.Compare(a.Day, b.Day), cmp.Compare(a.Start, b.Start), cmp.Compare(a.Id, b.Id))
	})

	return lo.Map(sessions, func(session schedule.Session, _ int) *ScheduleRow {
		return &ScheduleRow{
			Session:   session.Id,
			Subject:   session.Subject,
			Group:     session.Group,
			Professor: session.Professor,
			Room:      session.Room,
			Slot:      session.Slot,
			Day:       model.DayNames[session.Day],
			Start:     session.Start,
			End:       session.End,
			Weeks:     strings.Join(lo.Map(session.Weeks, func(week int, _ int) string { return strconv.Itoa(week) }), " "),
			Version:   committed.Version,
		}
	})
}

// ExportSchedule writes the schedule rows, split by the given delimiter
func ExportSchedule(out io.Writer, committed schedule.Schedule, delimiter rune) error {
	writer := csv.NewWriter(out)
	writer.Comma = delimiter

	rows := Rows(committed)
	if err := gocsv.MarshalCSV(&rows, gocsv.NewSafeCSVWriter(writer)); err != nil {
		return fmt.Errorf("cannot export schedule version %v: %w", committed.Version, err)
	}
	return nil
}

// ExportScheduleString renders the schedule rows with the default delimiter
func ExportScheduleString(committed schedule.Schedule) (string, error) {
	rows := Rows(committed)
	text, err := gocsv.MarshalString(&rows)
	if err != nil {
		return "", fmt.Errorf("cannot export schedule version %v: %w", committed.Version, err)
	}
	return text, nil
}
