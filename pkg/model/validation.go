package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var validate = validator.New()

// ValidateCatalog returns a *ConfigurationError listing every invalid entity of the catalog, or nil
func ValidateCatalog(catalog Catalog) error {
	if issues := validateCatalog(catalog); len(issues) > 0 {
		return &ConfigurationError{Issues: issues}
	}
	return nil
}

// validateCatalog checks entity attributes and cross references. Every problem becomes an invalid-entity issue
func validateCatalog(catalog Catalog) []Issue {
	issues := duplicateIssues(RawCatalogOf(catalog))
	invalid := func(subject, detail string) {
		issues = append(issues, Issue{Kind: InvalidEntity, Subject: subject, Detail: detail})
	}

	subjectIds := lo.SliceToMap(catalog.Subjects(), func(subject Subject) (string, bool) { return subject.Id, true })
	groupIds := lo.SliceToMap(catalog.Groups(), func(group StudentGroup) (string, bool) { return group.Id, true })
	slotIds := lo.SliceToMap(catalog.TimeSlots(), func(slot TimeSlot) (string, bool) { return slot.Id, true })

	//** Attributes
	for _, subject := range catalog.Subjects() {
		for _, detail := range structIssues(subject, "subject", subject.Id) {
			invalid(subject.Id, detail)
		}
		if subject.WeekStart > 0 && subject.WeekEnd > 0 && subject.WeekEnd < subject.WeekStart {
			invalid(subject.Id, fmt.Sprintf("subject %v ends on week %v before it starts on week %v", subject.Id, subject.WeekEnd, subject.WeekStart))
		}
		for _, group := range subject.Groups {
			if !groupIds[group] {
				invalid(subject.Id, fmt.Sprintf("subject %v references unknown group %v", subject.Id, group))
			}
		}
		for _, slot := range subject.PreferredSlots {
			if !slotIds[slot] {
				invalid(subject.Id, fmt.Sprintf("subject %v prefers unknown time slot %v", subject.Id, slot))
			}
		}
	}
	for _, professor := range catalog.Professors() {
		for _, detail := range structIssues(professor, "professor", professor.Id) {
			invalid("", detail)
		}
		for _, detail := range windowIssues(professor.Availability, "professor", professor.Id) {
			invalid("", detail)
		}
		for _, subject := range professor.Subjects {
			if !subjectIds[subject] {
				invalid("", fmt.Sprintf("professor %v teaches unknown subject %v", professor.Id, subject))
			}
		}
	}
	for _, group := range catalog.Groups() {
		for _, detail := range structIssues(group, "group", group.Id) {
			invalid("", detail)
		}
		for _, subject := range group.Subjects {
			if !subjectIds[subject] {
				invalid("", fmt.Sprintf("group %v takes unknown subject %v", group.Id, subject))
			}
		}
	}
	for _, room := range catalog.Rooms() {
		for _, detail := range structIssues(room, "room", room.Id) {
			invalid("", detail)
		}
		for _, detail := range windowIssues(room.Availability, "room", room.Id) {
			invalid("", detail)
		}
	}

	//** Grid
	slots := catalog.TimeSlots()
	for i, slot := range slots {
		details := structIssues(slot, "time slot", slot.Id)
		for _, detail := range details {
			invalid("", detail)
		}
		if len(details) > 0 {
			continue
		}
		if clockMinutesOrZero(slot.Start) >= clockMinutesOrZero(slot.End) {
			invalid("", fmt.Sprintf("time slot %v starts at %v, not before its end %v", slot.Id, slot.Start, slot.End))
			continue
		}
		for _, other := range slots[i+1:] {
			if other.Day == slot.Day && intervalsOverlap(slot.Start, slot.End, other.Start, other.End) {
				invalid("", fmt.Sprintf("time slots %v and %v overlap on %v", slot.Id, other.Id, DayNames[slot.Day]))
			}
		}
	}

	return issues
}

// Identifiers must be unique per entity kind
func duplicateIssues(raw RawCatalog) []Issue {
	issues := make([]Issue, 0)
	for _, kind := range []struct {
		name string
		ids  []string
	}{
		{"subject", lo.Map(raw.Subjects, func(subject Subject, _ int) string { return subject.Id })},
		{"professor", lo.Map(raw.Professors, func(professor Professor, _ int) string { return professor.Id })},
		{"group", lo.Map(raw.Groups, func(group StudentGroup, _ int) string { return group.Id })},
		{"room", lo.Map(raw.Rooms, func(room Room, _ int) string { return room.Id })},
		{"time slot", lo.Map(raw.TimeSlots, func(slot TimeSlot, _ int) string { return slot.Id })},
	} {
		duplicates := lo.FindDuplicates(kind.ids)
		if len(duplicates) == 0 {
			continue
		}
		slices.Sort(duplicates)

		issue := Issue{Kind: InvalidEntity, Detail: fmt.Sprintf("duplicate %v identifiers: %v", kind.name, strings.Join(duplicates, ", "))}
		if kind.name == "subject" {
			issue.Subject = duplicates[0]
		}
		issues = append(issues, issue)
	}
	return issues
}

func structIssues(entity any, kind, id string) []string {
	err := validate.Struct(entity)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{fmt.Sprintf("%v %v: %v", kind, id, err)}
	}
	return lo.Map(validationErrors, func(fieldError validator.FieldError, _ int) string {
		return fmt.Sprintf("%v %v: field %v fails rule %q", kind, id, fieldError.Namespace(), fieldError.Tag())
	})
}

func windowIssues(windows []Window, kind, id string) []string {
	return lo.FilterMap(windows, func(window Window, _ int) (string, bool) {
		start, errStart := clockMinutes(window.Start)
		end, errEnd := clockMinutes(window.End)
		if errStart != nil || errEnd != nil {
			return "", false // Already reported by the struct rules
		}
		return fmt.Sprintf("%v %v: window on %v from %v to %v is empty", kind, id, DayNames[window.Day], window.Start, window.End), start >= end
	})
}

func intervalsOverlap(start1, end1, start2, end2 string) bool {
	return clockMinutesOrZero(start1) < clockMinutesOrZero(end2) && clockMinutesOrZero(start2) < clockMinutesOrZero(end1)
}
