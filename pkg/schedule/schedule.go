package schedule

import (
	"slices"

	"github.com/limaJavier/labtimetabling/pkg/model"
	"github.com/samber/lo"
)

// Session is a placed lab session. Entities are referenced by identifier
type Session struct {
	Id        string `json:"id" mapstructure:"id"` // subject/group/sequence
	Subject   string `json:"subject" mapstructure:"subject"`
	Group     string `json:"group" mapstructure:"group"`
	Professor string `json:"professor" mapstructure:"professor"`
	Room      string `json:"room" mapstructure:"room"`
	Slot      string `json:"slot" mapstructure:"slot"`
	Day       int    `json:"day" mapstructure:"day"`
	Start     string `json:"start" mapstructure:"start"`
	End       string `json:"end" mapstructure:"end"`
	Weeks     []int  `json:"weeks" mapstructure:"weeks"` // Term weeks the session is held
}

// SamePlacement reports whether both sessions use the same slot, room, professor and weeks
func (session Session) SamePlacement(other Session) bool {
	return session.Slot == other.Slot &&
		session.Room == other.Room &&
		session.Professor == other.Professor &&
		slices.Equal(session.Weeks, other.Weeks)
}

type Schedule struct {
	Version    uint64    `json:"version" mapstructure:"version"`
	Valid      bool      `json:"valid" mapstructure:"valid"` // Set by Store.Propose once every invariant holds
	Sessions   []Session `json:"sessions" mapstructure:"sessions"`
	Unresolved []string  `json:"unresolved" mapstructure:"unresolved"` // Sessions left without a placement
	Score      float64   `json:"score" mapstructure:"score"`
}

// Materialize turns a solver assignment (domain position per variable, -1 when unassigned) into a schedule.
// Sessions keep the model's variable order
func Materialize(constraintModel *model.ConstraintModel, assignment []int, score float64) Schedule {
	sessions := make([]Session, 0, len(assignment))
	unresolved := make([]string, 0)

	for variable, position := range assignment {
		variableEntity := constraintModel.Variables[variable]
		if position == -1 {
			unresolved = append(unresolved, variableEntity.Id)
			continue
		}

		value := variableEntity.Domain[position]
		slot := constraintModel.Slots[value.Slot]
		sessions = append(sessions, Session{
			Id:        variableEntity.Id,
			Subject:   constraintModel.Subjects[variableEntity.Subject].Id,
			Group:     constraintModel.Groups[variableEntity.Group].Id,
			Professor: constraintModel.Professors[value.Professor].Id,
			Room:      constraintModel.Rooms[value.Room].Id,
			Slot:      slot.Id,
			Day:       slot.Day,
			Start:     slot.Start,
			End:       slot.End,
			Weeks:     slices.Clone(value.Weeks),
		})
	}

	return Schedule{Sessions: sessions, Unresolved: unresolved, Score: score}
}

func (schedule Schedule) Clone() Schedule {
	clone := schedule
	clone.Sessions = lo.Map(schedule.Sessions, func(session Session, _ int) Session {
		session.Weeks = slices.Clone(session.Weeks)
		return session
	})
	clone.Unresolved = slices.Clone(schedule.Unresolved)
	return clone
}

func (schedule Schedule) Session(id string) (Session, bool) {
	return lo.Find(schedule.Sessions, func(session Session) bool { return session.Id == id })
}

// Complete reports whether every required session was placed
func (schedule Schedule) Complete() bool {
	return len(schedule.Unresolved) == 0
}

// Equivalent reports whether both schedules place the same sessions identically, regardless of version, validity and score
func Equivalent(a, b Schedule) bool {
	if len(a.Sessions) != len(b.Sessions) || !slices.Equal(a.Unresolved, b.Unresolved) {
		return false
	}
	for i := range a.Sessions {
		if a.Sessions[i].Id != b.Sessions[i].Id || !a.Sessions[i].SamePlacement(b.Sessions[i]) {
			return false
		}
	}
	return true
}
