package schedule

import (
	"cmp"
	"slices"

	"github.com/samber/lo"
)

// Filter selects sessions of the committed schedule. Empty fields match everything
type Filter struct {
	Subject   string
	Room      string
	Professor string
	Group     string
	Day       *int
}

func (filter Filter) match(session Session) bool {
	return (filter.Subject == "" || session.Subject == filter.Subject) &&
		(filter.Room == "" || session.Room == filter.Room) &&
		(filter.Professor == "" || session.Professor == filter.Professor) &&
		(filter.Group == "" || session.Group == filter.Group) &&
		(filter.Day == nil || session.Day == *filter.Day)
}

// Query returns copies of the matching sessions of the active schedule, ordered by day, start and session id
func (store *Store) Query(filter Filter) []Session {
	current, ok := store.Current()
	if !ok {
		return []Session{}
	}

	sessions := lo.Filter(current.Sessions, func(session Session, _ int) bool { return filter.match(session) })
	slices.SortStableFunc(sessions, func(a, b Session) int {
		return cmp.Or(cmp.Compare(a.Day, b.Day), cmp.Compare(minutes(a.Start), minutes(b.Start)), cmp.Compare(a.Id, b.Id))
	})
	return sessions
}

func (store *Store) ByRoom(room string) []Session           { return store.Query(Filter{Room: room}) }
func (store *Store) ByProfessor(professor string) []Session { return store.Query(Filter{Professor: professor}) }
func (store *Store) ByGroup(group string) []Session         { return store.Query(Filter{Group: group}) }
func (store *Store) ByDay(day int) []Session                { return store.Query(Filter{Day: &day}) }
