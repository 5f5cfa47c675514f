package schedule

import (
	"fmt"
	"slices"
	"strings"

	"github.com/limaJavier/labtimetabling/pkg/model"
	"github.com/samber/lo"
)

// Violation kinds
const (
	UnknownEntity    = "unknown-entity"
	DuplicateSession = "duplicate-session"
	RoomClash        = "room-clash"
	ProfessorClash   = "professor-clash"
	GroupClash       = "group-clash"
	Capacity         = "capacity"
	Equipment        = "equipment"
	RoomOffline      = "room-offline"
	Unqualified      = "unqualified-professor"
	InactiveWeek     = "inactive-week"
	ProfessorHours   = "professor-hours"
)

type Violation struct {
	Kind     string
	Sessions []string
	Detail   string
}

func (violation Violation) String() string {
	return fmt.Sprintf("%v [%v]: %v", violation.Kind, strings.Join(violation.Sessions, " "), violation.Detail)
}

// InvariantViolation rejects a schedule breaking hard constraints
type InvariantViolation struct {
	Violations []Violation
}

func (err *InvariantViolation) Error() string {
	details := lo.Map(err.Violations, func(violation Violation, _ int) string { return violation.String() })
	return fmt.Sprintf("schedule breaks %v invariant(s): %v", len(err.Violations), strings.Join(details, "; "))
}

type interval struct {
	session    string
	start, end int
}

// Verify checks every placed session of the schedule against the catalog and the term's teaching dates.
// Sessions sharing a room, a professor or a group clash whenever their slots overlap, whatever their weeks
func Verify(schedule Schedule, catalog model.Catalog, dates []model.TeachingDate) []Violation {
	violations := make([]Violation, 0)
	violate := func(kind, detail string, sessions ...string) {
		violations = append(violations, Violation{Kind: kind, Sessions: sessions, Detail: detail})
	}

	//** Build assistance structures
	subjects := lo.KeyBy(catalog.Subjects(), func(subject model.Subject) string { return subject.Id })
	professors := lo.KeyBy(catalog.Professors(), func(professor model.Professor) string { return professor.Id })
	groups := lo.KeyBy(catalog.Groups(), func(group model.StudentGroup) string { return group.Id })
	rooms := lo.KeyBy(catalog.Rooms(), func(room model.Room) string { return room.Id })
	slots := lo.KeyBy(catalog.TimeSlots(), func(slot model.TimeSlot) string { return slot.Id })

	validWeeks := make(map[int]map[int]bool) // day -> weeks with a teaching date following it
	for _, date := range dates {
		if validWeeks[date.Day] == nil {
			validWeeks[date.Day] = make(map[int]bool)
		}
		validWeeks[date.Day][date.Week] = true
	}

	roomAssistance := make(map[string][]interval)      // "room@day" -> occupied intervals
	professorAssistance := make(map[string][]interval) // "professor@day"
	groupAssistance := make(map[string][]interval)     // "group@day"
	professorHours := make(map[string]float64)
	seen := make(map[string]bool)

	for _, session := range schedule.Sessions {
		//** Entities
		if seen[session.Id] {
			violate(DuplicateSession, fmt.Sprintf("session %v is placed twice", session.Id), session.Id)
			continue
		}
		seen[session.Id] = true

		subject, subjectOk := subjects[session.Subject]
		professor, professorOk := professors[session.Professor]
		group, groupOk := groups[session.Group]
		room, roomOk := rooms[session.Room]
		slot, slotOk := slots[session.Slot]
		if !subjectOk || !professorOk || !groupOk || !roomOk || !slotOk {
			violate(UnknownEntity, fmt.Sprintf("session %v references an entity missing from the catalog", session.Id), session.Id)
			continue
		}

		//** Session invariants
		if group.Size > room.Capacity {
			violate(Capacity, fmt.Sprintf("group %v of size %v exceeds room %v capacity %v", group.Id, group.Size, room.Id, room.Capacity), session.Id)
		}
		if missing, _ := lo.Difference(subject.Equipment, room.Equipment); len(missing) > 0 {
			violate(Equipment, fmt.Sprintf("room %v lacks equipment [%v] for subject %v", room.Id, strings.Join(missing, " "), subject.Id), session.Id)
		}
		if room.Offline {
			violate(RoomOffline, fmt.Sprintf("room %v is offline", room.Id), session.Id)
		}
		if !slices.Contains(professor.Subjects, subject.Id) {
			violate(Unqualified, fmt.Sprintf("professor %v does not teach subject %v", professor.Id, subject.Id), session.Id)
		}
		if len(session.Weeks) == 0 {
			violate(InactiveWeek, fmt.Sprintf("session %v is active on no week", session.Id), session.Id)
		}
		if inactive := lo.Filter(session.Weeks, func(week int, _ int) bool { return !validWeeks[slot.Day][week] }); len(inactive) > 0 {
			violate(InactiveWeek, fmt.Sprintf("weeks %v have no teaching date on %v", inactive, model.DayNames[slot.Day]), session.Id)
		}

		//** Pairwise invariants
		current := interval{session: session.Id, start: minutes(slot.Start), end: minutes(slot.End)}
		clash := func(assistance map[string][]interval, key, kind, entity string) {
			for _, other := range assistance[key] {
				if current.start < other.end && other.start < current.end {
					violate(kind, fmt.Sprintf("%v is used by both sessions on %v", entity, model.DayNames[slot.Day]), other.session, session.Id)
				}
			}
			assistance[key] = append(assistance[key], current)
		}
		day := fmt.Sprint(slot.Day)
		clash(roomAssistance, room.Id+"@"+day, RoomClash, "room "+room.Id)
		clash(professorAssistance, professor.Id+"@"+day, ProfessorClash, "professor "+professor.Id)
		clash(groupAssistance, group.Id+"@"+day, GroupClash, "group "+group.Id)

		professorHours[professor.Id] += float64(subject.SessionMinutes) / 60
	}

	//** Professor load
	for _, professor := range catalog.Professors() {
		if professor.MaxWeeklyHours > 0 && professorHours[professor.Id] > professor.MaxWeeklyHours+1e-9 {
			sessions := lo.FilterMap(schedule.Sessions, func(session Session, _ int) (string, bool) {
				return session.Id, session.Professor == professor.Id
			})
			violate(ProfessorHours, fmt.Sprintf("professor %v teaches %v hours, above the %v hours cap", professor.Id, professorHours[professor.Id], professor.MaxWeeklyHours), sessions...)
		}
	}

	return violations
}

func minutes(clock string) int {
	var hours, mins int
	if _, err := fmt.Sscanf(clock, "%d:%d", &hours, &mins); err != nil {
		return 0
	}
	return hours*60 + mins
}
