package repair

import (
	"errors"
	"fmt"
	"slices"

	"github.com/limaJavier/labtimetabling/pkg/model"
	"github.com/samber/lo"
)

type DeltaKind int

const (
	None DeltaKind = iota
	ProfessorAdded
	ProfessorRemoved
	RoomOffline
	SubjectSessionsChanged
)

var deltaKindNames = map[DeltaKind]string{
	None:                   "none",
	ProfessorAdded:         "professor-added",
	ProfessorRemoved:       "professor-removed",
	RoomOffline:            "room-offline",
	SubjectSessionsChanged: "subject-sessions-changed",
}

func (kind DeltaKind) String() string {
	if name, ok := deltaKindNames[kind]; ok {
		return name
	}
	return "unknown"
}

var ErrUnknownEntity = errors.New("delta references an unknown entity")

// Delta is a single catalog change applied on top of a committed schedule
type Delta struct {
	Kind            DeltaKind
	Professor       model.Professor // ProfessorAdded
	ProfessorId     string          // ProfessorRemoved
	RoomId          string          // RoomOffline
	SubjectId       string          // SubjectSessionsChanged
	SessionsPerWeek int             // SubjectSessionsChanged
}

func AddProfessor(professor model.Professor) Delta {
	return Delta{Kind: ProfessorAdded, Professor: professor}
}

func RemoveProfessor(id string) Delta {
	return Delta{Kind: ProfessorRemoved, ProfessorId: id}
}

func TakeRoomOffline(id string) Delta {
	return Delta{Kind: RoomOffline, RoomId: id}
}

func ChangeSessions(subjectId string, sessionsPerWeek int) Delta {
	return Delta{Kind: SubjectSessionsChanged, SubjectId: subjectId, SessionsPerWeek: sessionsPerWeek}
}

func (delta Delta) Empty() bool { return delta.Kind == None }

func (delta Delta) String() string {
	switch delta.Kind {
	case ProfessorAdded:
		return fmt.Sprintf("%v %v", delta.Kind, delta.Professor.Id)
	case ProfessorRemoved:
		return fmt.Sprintf("%v %v", delta.Kind, delta.ProfessorId)
	case RoomOffline:
		return fmt.Sprintf("%v %v", delta.Kind, delta.RoomId)
	case SubjectSessionsChanged:
		return fmt.Sprintf("%v %v=%v", delta.Kind, delta.SubjectId, delta.SessionsPerWeek)
	}
	return delta.Kind.String()
}

// Apply returns a new snapshot of the catalog with the change in place. The given catalog is left untouched
func (delta Delta) Apply(catalog model.Catalog) (*model.Snapshot, error) {
	raw := model.RawCatalogOf(catalog)

	switch delta.Kind {
	case None:
	case ProfessorAdded:
		if lo.ContainsBy(raw.Professors, func(professor model.Professor) bool { return professor.Id == delta.Professor.Id }) {
			return nil, fmt.Errorf("professor %v already exists", delta.Professor.Id)
		}
		raw.Professors = append(raw.Professors, delta.Professor)
	case ProfessorRemoved:
		index := slices.IndexFunc(raw.Professors, func(professor model.Professor) bool { return professor.Id == delta.ProfessorId })
		if index == -1 {
			return nil, fmt.Errorf("professor %v: %w", delta.ProfessorId, ErrUnknownEntity)
		}
		raw.Professors = slices.Delete(raw.Professors, index, index+1)
	case RoomOffline:
		index := slices.IndexFunc(raw.Rooms, func(room model.Room) bool { return room.Id == delta.RoomId })
		if index == -1 {
			return nil, fmt.Errorf("room %v: %w", delta.RoomId, ErrUnknownEntity)
		}
		raw.Rooms[index].Offline = true
	case SubjectSessionsChanged:
		index := slices.IndexFunc(raw.Subjects, func(subject model.Subject) bool { return subject.Id == delta.SubjectId })
		if index == -1 {
			return nil, fmt.Errorf("subject %v: %w", delta.SubjectId, ErrUnknownEntity)
		}
		raw.Subjects[index].SessionsPerWeek = delta.SessionsPerWeek
	default:
		return nil, fmt.Errorf("unknown delta kind %v", int(delta.Kind))
	}

	return model.NewSnapshot(raw), nil
}
