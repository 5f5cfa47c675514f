package solver

import (
	"fmt"
	"slices"
	"strings"

	"github.com/limaJavier/labtimetabling/pkg/model"
	"github.com/samber/lo"
)

const failureWindow = 32

// failure records the variable whose domain was emptied and the constraint class that emptied it
type failure struct {
	class    string
	variable int
	entity   string // Room, professor or group the conflict was against
}

// failureRing keeps the most recent failures of a search
type failureRing struct {
	entries []failure
	next    int
}

func newFailureRing(size int) *failureRing {
	return &failureRing{entries: make([]failure, 0, size)}
}

func (ring *failureRing) add(failure failure) {
	if len(ring.entries) < cap(ring.entries) {
		ring.entries = append(ring.entries, failure)
		return
	}
	ring.entries[ring.next] = failure
	ring.next = (ring.next + 1) % len(ring.entries)
}

// Most recent first
func (ring *failureRing) recent() []failure {
	ordered := append(slices.Clone(ring.entries[ring.next:]), ring.entries[:ring.next]...)
	slices.Reverse(ordered)
	return ordered
}

// Reduces the ring to one diagnostic for the dominant class, the most frequent one with ties going to the most recent
func (ring *failureRing) diagnose(constraintModel *model.ConstraintModel) []Diagnostic {
	recent := ring.recent()
	if len(recent) == 0 {
		return []Diagnostic{{Class: ConfigurationClass, Message: "search space exhausted without recorded conflicts"}}
	}

	counts := lo.CountValuesBy(recent, func(failure failure) string { return failure.class })
	dominant := recent[0].class
	for _, failure := range recent {
		if counts[failure.class] > counts[dominant] {
			dominant = failure.class
		}
	}

	failures := lo.Filter(recent, func(failure failure, _ int) bool { return failure.class == dominant })
	latest := constraintModel.Variables[failures[0].variable]
	subject := constraintModel.Subjects[latest.Subject]
	group := constraintModel.Groups[latest.Group]
	entities := lo.Uniq(lo.FilterMap(failures, func(failure failure, _ int) (string, bool) { return failure.entity, failure.entity != "" }))

	return []Diagnostic{{
		Class:    dominant,
		Subject:  subject.Id,
		Session:  latest.Id,
		Entities: entities,
		Message:  failureMessage(dominant, subject, group, entities),
	}}
}

func failureMessage(class string, subject model.Subject, group model.StudentGroup, entities []string) string {
	names := strings.Join(entities, " ")
	switch class {
	case RoomClass:
		if len(subject.Equipment) > 0 {
			return fmt.Sprintf("no room satisfies equipment [%v] for subject %v in remaining slots, rooms [%v] are taken",
				strings.Join(subject.Equipment, " "), subject.Id, names)
		}
		return fmt.Sprintf("no free room holds subject %v in remaining slots, rooms [%v] are taken", subject.Id, names)
	case ProfessorClass:
		return fmt.Sprintf("no eligible professor is free for subject %v in remaining slots, professors [%v] are taken", subject.Id, names)
	case GroupClass:
		return fmt.Sprintf("group %v has no free slot left for subject %v", group.Id, subject.Id)
	case ProfessorHoursClass:
		return fmt.Sprintf("professors [%v] of subject %v reach their max weekly hours", names, subject.Id)
	}
	return fmt.Sprintf("no value left for subject %v", subject.Id)
}
