package schedule

import (
	"cmp"
	"slices"

	"github.com/samber/lo"
)

// Move is a session present in both schedules with a different placement
type Move struct {
	Before Session `json:"before"`
	After  Session `json:"after"`
}

type Diff struct {
	Added   []Session `json:"added"`
	Removed []Session `json:"removed"`
	Moved   []Move    `json:"moved"`
}

func (diff Diff) Empty() bool {
	return len(diff.Added) == 0 && len(diff.Removed) == 0 && len(diff.Moved) == 0
}

// Compare classifies the sessions of two schedules by identifier. Results are ordered by session id
func Compare(older, newer Schedule) Diff {
	before := lo.KeyBy(older.Sessions, func(session Session) string { return session.Id })
	after := lo.KeyBy(newer.Sessions, func(session Session) string { return session.Id })

	diff := Diff{Added: []Session{}, Removed: []Session{}, Moved: []Move{}}
	for id, session := range after {
		previous, existed := before[id]
		switch {
		case !existed:
			diff.Added = append(diff.Added, session)
		case !previous.SamePlacement(session):
			diff.Moved = append(diff.Moved, Move{Before: previous, After: session})
		}
	}
	for id, session := range before {
		if _, kept := after[id]; !kept {
			diff.Removed = append(diff.Removed, session)
		}
	}

	byId := func(a, b Session) int { return cmp.Compare(a.Id, b.Id) }
	slices.SortFunc(diff.Added, byId)
	slices.SortFunc(diff.Removed, byId)
	slices.SortFunc(diff.Moved, func(a, b Move) int { return byId(a.After, b.After) })
	return diff
}
