package model

// All indices refer to the identifier-sorted entities of the catalog being built
type predicateEvaluator interface {
	// Checks whether the group's size is smaller than or equal to the room's capacity (i.e. the group fits in the room)
	Fits(group, room uint64) bool

	// Checks whether the room carries every equipment tag the subject requires
	Equipped(subject, room uint64) bool

	// Checks whether the room is online and open during the whole slot
	RoomOpen(room, slot uint64) bool

	// Checks whether the professor is assigned to teach the subject
	Teaches(professor, subject uint64) bool

	// Checks whether the professor is available during the whole slot
	ProfessorAvailable(professor, slot uint64) bool

	// Checks whether the slot is long enough to hold a session of the subject
	SlotFits(subject, slot uint64) bool

	// Checks whether the professor can take a session of the subject without exceeding the weekly hours
	WithinHours(professor, subject uint64) bool

	// Returns the term weeks in which the subject can meet at the slot. A room or professor equal to math.MaxUint64 is not taken into account
	Weeks(subject, slot, room, professor uint64) []int
}
