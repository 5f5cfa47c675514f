package model

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

type ConstraintBuilder interface {
	// Build turns a catalog and the term's teaching dates into one variable per required session, each with its domain of
	// (slot, room, professor) values. It fails with a *ConfigurationError naming every subject or session whose domain cannot be built
	Build(ctx context.Context, catalog Catalog, dates []TeachingDate, weights SoftWeights) (*ConstraintModel, error)
}

type constraintBuilderStandard struct {
}

func NewConstraintBuilder() ConstraintBuilder {
	return &constraintBuilderStandard{}
}

type subjectVariables struct {
	variables []Variable
	issues    []Issue
}

func (builder *constraintBuilderStandard) Build(ctx context.Context, catalog Catalog, dates []TeachingDate, weights SoftWeights) (*ConstraintModel, error) {
	//** Validate catalog
	if err := ValidateCatalog(catalog); err != nil {
		return nil, err
	}

	//** Normalize input
	snapshot := NewSnapshot(RawCatalogOf(catalog))
	dates = slices.Clone(dates)
	slices.SortStableFunc(dates, func(a, b TeachingDate) int { return cmp.Compare(a.Date, b.Date) })

	//** Initialize dependencies
	totalSlots, totalRooms, totalProfessors := uint64(len(snapshot.TimeSlots())), uint64(len(snapshot.Rooms())), uint64(len(snapshot.Professors()))
	evaluator := newPredicateEvaluator(snapshot, dates)
	indexer := newIndexer(totalSlots, totalRooms, totalProfessors)
	generator := newPermutationGenerator(totalSlots, totalRooms, totalProfessors)

	//** Build domains
	// Subjects are independent of each other, so their domains are built on different goroutines. Results are slotted by
	// subject index to keep the variable order deterministic
	results := make([]subjectVariables, len(snapshot.Subjects()))
	group, groupCtx := errgroup.WithContext(ctx)
	for subject := range snapshot.Subjects() {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			results[subject] = builder.subjectVariables(uint64(subject), snapshot, evaluator, indexer, generator)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	variables := lo.FlatMap(results, func(result subjectVariables, _ int) []Variable { return result.variables })
	issues := lo.FlatMap(results, func(result subjectVariables, _ int) []Issue { return result.issues })
	if len(issues) > 0 {
		return nil, &ConfigurationError{Issues: issues}
	}

	return newConstraintModel(snapshot, dates, variables, weights), nil
}

func (builder *constraintBuilderStandard) subjectVariables(
	subject uint64,
	catalog Catalog,
	evaluator predicateEvaluator,
	indexer indexer,
	generator permutationGenerator) subjectVariables {

	subjectEntity := catalog.Subjects()[subject]
	groups := linkedGroups(catalog, subjectEntity)
	if len(groups) == 0 {
		return subjectVariables{} // Nobody takes the subject, so no session is required
	}

	minWeeks := max(subjectEntity.MinWeeks, 1)
	issue := func(kind IssueKind, session, format string, args ...any) subjectVariables {
		return subjectVariables{issues: []Issue{{Kind: kind, Subject: subjectEntity.Id, Session: session, Detail: fmt.Sprintf(format, args...)}}}
	}

	//** Subject-wide eligibility
	professors := lo.Filter(lo.Range(len(catalog.Professors())), func(professor int, _ int) bool {
		return evaluator.Teaches(uint64(professor), subject) && evaluator.WithinHours(uint64(professor), subject)
	})
	if len(professors) == 0 {
		return issue(NoProfessor, "", "no professor is assigned to subject %v", subjectEntity.Id)
	}

	equippedRooms := lo.Filter(lo.Range(len(catalog.Rooms())), func(room int, _ int) bool {
		return !catalog.Rooms()[room].Offline && evaluator.Equipped(subject, uint64(room))
	})
	if len(equippedRooms) == 0 {
		return issue(NoRoom, "", "%v", missingEquipment(catalog, subjectEntity))
	}

	fittingSlots := lo.Filter(lo.Range(len(catalog.TimeSlots())), func(slot int, _ int) bool {
		return evaluator.SlotFits(subject, uint64(slot))
	})
	if len(fittingSlots) == 0 {
		return issue(EmptyDomain, "", "no time slot lasts %v minutes", subjectEntity.SessionMinutes)
	}

	usableSlots := lo.Filter(fittingSlots, func(slot int, _ int) bool {
		return len(evaluator.Weeks(subject, uint64(slot), math.MaxUint64, math.MaxUint64)) >= minWeeks
	})
	if len(usableSlots) == 0 {
		return issue(NoValidWeek, "", "no valid calendar week left for subject %v within %v", subjectEntity.Id, weekWindow(subjectEntity))
	}
	slotUsable := lo.SliceToMap(usableSlots, func(slot int) (uint64, bool) { return uint64(slot), true })

	//** Group domains
	result := subjectVariables{variables: make([]Variable, 0, len(groups)*subjectEntity.SessionsPerWeek)}
	for _, group := range groups {
		groupEntity := catalog.Groups()[group]
		session := subjectEntity.Id + "/" + groupEntity.Id

		roomUsable := lo.SliceToMap(
			lo.Filter(equippedRooms, func(room int, _ int) bool { return evaluator.Fits(uint64(group), uint64(room)) }),
			func(room int) (uint64, bool) { return uint64(room), true },
		)
		if len(roomUsable) == 0 {
			result.issues = append(result.issues, Issue{
				Kind:    NoRoom,
				Subject: subjectEntity.Id,
				Session: session,
				Detail:  fmt.Sprintf("no equipped room holds group %v of size %v", groupEntity.Id, groupEntity.Size),
			})
			continue
		}

		permutations := generator.ConstrainedPermutations([]func(permutation []uint64) bool{
			func(permutation []uint64) bool {
				return permutation[0] == math.MaxUint64 || slotUsable[permutation[0]]
			},
			func(permutation []uint64) bool {
				return permutation[1] == math.MaxUint64 || roomUsable[permutation[1]] && evaluator.RoomOpen(permutation[1], permutation[0])
			},
			func(permutation []uint64) bool {
				return permutation[2] == math.MaxUint64 ||
					evaluator.Teaches(permutation[2], subject) &&
						evaluator.WithinHours(permutation[2], subject) &&
						evaluator.ProfessorAvailable(permutation[2], permutation[0]) &&
						len(evaluator.Weeks(subject, permutation[0], permutation[1], permutation[2])) >= minWeeks
			},
		})

		// Slots, rooms and professors are sorted, so the enumeration order is already (day, start, room id, professor id)
		domain := lo.Map(permutations, func(permutation []uint64, _ int) Value {
			slot, room, professor := permutation[0], permutation[1], permutation[2]
			return Value{
				Key:       indexer.Index(slot, room, professor),
				Slot:      int(slot),
				Room:      int(room),
				Professor: int(professor),
				Weeks:     evaluator.Weeks(subject, slot, room, professor),
			}
		})
		if len(domain) == 0 {
			result.issues = append(result.issues, Issue{
				Kind:    EmptyDomain,
				Subject: subjectEntity.Id,
				Session: session,
				Detail:  fmt.Sprintf("no open room and available professor share a slot for group %v", groupEntity.Id),
			})
			continue
		}

		for sequence := 1; sequence <= subjectEntity.SessionsPerWeek; sequence++ {
			result.variables = append(result.variables, Variable{
				Id:       fmt.Sprintf("%v/%v", session, sequence),
				Subject:  int(subject),
				Group:    group,
				Sequence: sequence,
				Minutes:  subjectEntity.SessionMinutes,
				Domain:   domain,
			})
		}
	}

	if len(result.issues) > 0 {
		result.variables = nil
	}
	return result
}

// Groups listed by the subject or listing the subject, in identifier order
func linkedGroups(catalog Catalog, subject Subject) []int {
	return lo.Filter(lo.Range(len(catalog.Groups())), func(group int, _ int) bool {
		groupEntity := catalog.Groups()[group]
		return slices.Contains(subject.Groups, groupEntity.Id) || slices.Contains(groupEntity.Subjects, subject.Id)
	})
}

func missingEquipment(catalog Catalog, subject Subject) string {
	onlineRooms := lo.Filter(catalog.Rooms(), func(room Room, _ int) bool { return !room.Offline })
	if len(onlineRooms) == 0 {
		return fmt.Sprintf("no room is online for subject %v", subject.Id)
	}

	missing := lo.Filter(subject.Equipment, func(tag string, _ int) bool {
		return !lo.SomeBy(onlineRooms, func(room Room) bool { return slices.Contains(room.Equipment, tag) })
	})
	switch len(missing) {
	case 0:
		return fmt.Sprintf("no room carries all equipment tags [%v] for subject %v", strings.Join(subject.Equipment, " "), subject.Id)
	case 1:
		return fmt.Sprintf("no room satisfies equipment tag %q for subject %v", missing[0], subject.Id)
	default:
		return fmt.Sprintf("no room satisfies equipment tags [%v] for subject %v", strings.Join(missing, " "), subject.Id)
	}
}

func weekWindow(subject Subject) string {
	switch {
	case subject.WeekStart > 0 && subject.WeekEnd > 0:
		return fmt.Sprintf("weeks %v-%v", subject.WeekStart, subject.WeekEnd)
	case subject.WeekStart > 0:
		return fmt.Sprintf("weeks from %v", subject.WeekStart)
	case subject.WeekEnd > 0:
		return fmt.Sprintf("weeks up to %v", subject.WeekEnd)
	}
	return "the term"
}
