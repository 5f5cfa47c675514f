package model

import (
	"cmp"
	"slices"
)

// Catalog is a read-only snapshot of the entities to be scheduled
type Catalog interface {
	Subjects() []Subject
	Professors() []Professor
	Groups() []StudentGroup
	Rooms() []Room
	TimeSlots() []TimeSlot
}

// Snapshot is an immutable Catalog whose entities are sorted by identifier
type Snapshot struct {
	subjects   []Subject
	professors []Professor
	groups     []StudentGroup
	rooms      []Room
	timeSlots  []TimeSlot
}

func NewSnapshot(raw RawCatalog) *Snapshot {
	snapshot := &Snapshot{
		subjects:   slices.Clone(raw.Subjects),
		professors: slices.Clone(raw.Professors),
		groups:     slices.Clone(raw.Groups),
		rooms:      slices.Clone(raw.Rooms),
		timeSlots:  slices.Clone(raw.TimeSlots),
	}

	slices.SortStableFunc(snapshot.subjects, func(a, b Subject) int { return cmp.Compare(a.Id, b.Id) })
	slices.SortStableFunc(snapshot.professors, func(a, b Professor) int { return cmp.Compare(a.Id, b.Id) })
	slices.SortStableFunc(snapshot.groups, func(a, b StudentGroup) int { return cmp.Compare(a.Id, b.Id) })
	slices.SortStableFunc(snapshot.rooms, func(a, b Room) int { return cmp.Compare(a.Id, b.Id) })
	slices.SortStableFunc(snapshot.timeSlots, compareSlots)
	return snapshot
}

func (snapshot *Snapshot) Subjects() []Subject     { return snapshot.subjects }
func (snapshot *Snapshot) Professors() []Professor { return snapshot.professors }
func (snapshot *Snapshot) Groups() []StudentGroup  { return snapshot.groups }
func (snapshot *Snapshot) Rooms() []Room           { return snapshot.rooms }
func (snapshot *Snapshot) TimeSlots() []TimeSlot   { return snapshot.timeSlots }

// RawCatalogOf copies the entities of any Catalog so they can be edited and re-snapshotted
func RawCatalogOf(catalog Catalog) RawCatalog {
	return RawCatalog{
		Subjects:   slices.Clone(catalog.Subjects()),
		Professors: slices.Clone(catalog.Professors()),
		Groups:     slices.Clone(catalog.Groups()),
		Rooms:      slices.Clone(catalog.Rooms()),
		TimeSlots:  slices.Clone(catalog.TimeSlots()),
	}
}

// Slots are ordered by day, start time and identifier
func compareSlots(a, b TimeSlot) int {
	if a.Day != b.Day {
		return cmp.Compare(a.Day, b.Day)
	}
	if a.Start != b.Start {
		return cmp.Compare(clockMinutesOrZero(a.Start), clockMinutesOrZero(b.Start))
	}
	return cmp.Compare(a.Id, b.Id)
}
