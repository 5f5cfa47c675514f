package schedule

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/limaJavier/labtimetabling/internal/logger"
	"github.com/limaJavier/labtimetabling/pkg/model"
	"github.com/onsi/gomega"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scheduleCatalog() model.RawCatalog {
	return model.RawCatalog{
		Subjects: []model.Subject{
			{Id: "PHYS1", SessionsPerWeek: 1, SessionMinutes: 120, Groups: []string{"G1"}},
			{Id: "CHEM1", SessionsPerWeek: 1, SessionMinutes: 120, Equipment: []string{"hood"}, Groups: []string{"G2"}},
		},
		Professors: []model.Professor{
			{Id: "P1", MaxWeeklyHours: 4, Subjects: []string{"PHYS1"}},
			{Id: "P2", Subjects: []string{"CHEM1"}},
		},
		Groups: []model.StudentGroup{
			{Id: "G1", Size: 20},
			{Id: "G2", Size: 20},
		},
		Rooms: []model.Room{
			{Id: "L1", Capacity: 30, Equipment: []string{"hood"}},
			{Id: "L2", Capacity: 10},
			{Id: "L3", Capacity: 30},
		},
		TimeSlots: []model.TimeSlot{
			{Id: "MON-1", Day: 0, Start: "08:00", End: "10:00"},
			{Id: "MON-2", Day: 0, Start: "10:00", End: "12:00"},
			{Id: "TUE-1", Day: 1, Start: "08:00", End: "10:00"},
		},
	}
}

func scheduleDates(t *testing.T) []model.TeachingDate {
	calendar := model.StaticCalendar{}
	dates, err := calendar.ValidDates(model.Term{Start: "2025-02-03", End: "2025-02-28"})
	require.NoError(t, err)
	return dates
}

func session(id, professor, room, slot string, weeks ...int) Session {
	subject, group, _ := strings.Cut(id, "/")
	group, _, _ = strings.Cut(group, "/")
	day, start, end := 0, "08:00", "10:00"
	switch slot {
	case "MON-2":
		start, end = "10:00", "12:00"
	case "TUE-1":
		day = 1
	}
	if len(weeks) == 0 {
		weeks = []int{1, 2, 3, 4}
	}
	return Session{Id: id, Subject: subject, Group: group, Professor: professor, Room: room, Slot: slot, Day: day, Start: start, End: end, Weeks: weeks}
}

func baseSchedule() Schedule {
	return Schedule{
		Sessions: []Session{
			session("CHEM1/G2/1", "P2", "L1", "MON-2"),
			session("PHYS1/G1/1", "P1", "L1", "MON-1"),
		},
		Unresolved: []string{},
		Score:      1.5,
	}
}

func TestMaterialize(t *testing.T) {
	//** Arrange
	constraintModel, err := model.NewConstraintBuilder().Build(context.Background(), model.NewSnapshot(scheduleCatalog()), scheduleDates(t), model.DefaultSoftWeights())
	require.NoError(t, err)

	//** Act
	schedule := Materialize(constraintModel, []int{-1, 0}, 0.75)

	//** Assert
	assert.Equal(t, []string{"CHEM1/G2/1"}, schedule.Unresolved)
	assert.Equal(t, []Session{session("PHYS1/G1/1", "P1", "L1", "MON-1")}, schedule.Sessions)
	assert.Equal(t, 0.75, schedule.Score)
	assert.False(t, schedule.Valid)
	assert.False(t, schedule.Complete())
}

func TestVerify(t *testing.T) {
	dates := scheduleDates(t)

	testCases := []struct {
		name     string
		catalog  func(raw *model.RawCatalog)
		sessions func(sessions []Session) []Session
		expected []string
	}{
		{
			name:     "Valid schedule",
			sessions: func(sessions []Session) []Session { return sessions },
			expected: []string{},
		},
		{
			name: "Room clash",
			sessions: func(sessions []Session) []Session {
				sessions[0] = session("CHEM1/G2/1", "P2", "L1", "MON-1")
				return sessions
			},
			expected: []string{RoomClash},
		},
		{
			name: "Capacity",
			sessions: func(sessions []Session) []Session {
				sessions[1] = session("PHYS1/G1/1", "P1", "L2", "MON-1")
				return sessions
			},
			expected: []string{Capacity},
		},
		{
			name: "Equipment",
			sessions: func(sessions []Session) []Session {
				sessions[0] = session("CHEM1/G2/1", "P2", "L3", "MON-2")
				return sessions
			},
			expected: []string{Equipment},
		},
		{
			name: "Unqualified professor",
			sessions: func(sessions []Session) []Session {
				sessions[1] = session("PHYS1/G1/1", "P2", "L1", "MON-1")
				return sessions
			},
			expected: []string{Unqualified},
		},
		{
			name: "Week without teaching dates",
			sessions: func(sessions []Session) []Session {
				sessions[1] = session("PHYS1/G1/1", "P1", "L1", "MON-1", 1, 5)
				return sessions
			},
			expected: []string{InactiveWeek},
		},
		{
			name: "Same subject twice a day",
			sessions: func(sessions []Session) []Session {
				return append(sessions, session("PHYS1/G1/2", "P1", "L3", "MON-2"))
			},
			expected: []string{},
		},
		{
			name:    "Professor hours",
			catalog: func(raw *model.RawCatalog) { raw.Professors[0].MaxWeeklyHours = 2 },
			sessions: func(sessions []Session) []Session {
				return append(sessions, session("PHYS1/G1/2", "P1", "L1", "TUE-1"))
			},
			expected: []string{ProfessorHours},
		},
		{
			name:    "Offline room",
			catalog: func(raw *model.RawCatalog) { raw.Rooms[0].Offline = true },
			sessions: func(sessions []Session) []Session { return sessions },
			expected: []string{RoomOffline, RoomOffline},
		},
		{
			name: "Unknown room",
			sessions: func(sessions []Session) []Session {
				sessions[1].Room = "L9"
				return sessions
			},
			expected: []string{UnknownEntity},
		},
		{
			name: "Duplicate session",
			sessions: func(sessions []Session) []Session {
				return append(sessions, session("PHYS1/G1/1", "P1", "L3", "TUE-1"))
			},
			expected: []string{DuplicateSession},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			//** Arrange
			raw := scheduleCatalog()
			if testCase.catalog != nil {
				testCase.catalog(&raw)
			}
			schedule := baseSchedule()
			schedule.Sessions = testCase.sessions(schedule.Sessions)

			//** Act
			violations := Verify(schedule, model.NewSnapshot(raw), dates)

			//** Assert
			assert.Equal(t, testCase.expected, lo.Map(violations, func(violation Violation, _ int) string { return violation.Kind }))
		})
	}
}

func TestStore(t *testing.T) {
	catalog := model.NewSnapshot(scheduleCatalog())
	dates := scheduleDates(t)

	propose := func(t *testing.T, store *Store, schedule Schedule) Schedule {
		proposed, err := store.Propose(schedule, catalog, dates)
		require.NoError(t, err)
		return proposed
	}

	t.Run("Propose flags valid schedules", func(t *testing.T) {
		//** Arrange
		store := NewStore(4, logger.NopLogger{})

		//** Act
		proposed, err := store.Propose(baseSchedule(), catalog, dates)

		//** Assert
		require.NoError(t, err)
		assert.True(t, proposed.Valid)
	})

	t.Run("Propose rejects broken schedules", func(t *testing.T) {
		//** Arrange
		store := NewStore(4, logger.NopLogger{})
		schedule := baseSchedule()
		schedule.Sessions[0] = session("CHEM1/G2/1", "P2", "L1", "MON-1")

		//** Act
		proposed, err := store.Propose(schedule, catalog, dates)

		//** Assert
		var violation *InvariantViolation
		require.ErrorAs(t, err, &violation)
		assert.Len(t, violation.Violations, 1)
		assert.False(t, proposed.Valid)
		assert.Contains(t, err.Error(), RoomClash)
	})

	t.Run("Commit requires a proposal", func(t *testing.T) {
		//** Arrange
		store := NewStore(4, logger.NopLogger{})

		//** Act
		_, err := store.Commit(baseSchedule())

		//** Assert
		assert.ErrorIs(t, err, ErrNotProposed)
		_, ok := store.Current()
		assert.False(t, ok)
	})

	t.Run("Versions and bounded history", func(t *testing.T) {
		g := gomega.NewWithT(t)

		//** Arrange
		store := NewStore(2, logger.NopLogger{})
		proposed := propose(t, store, baseSchedule())

		//** Act
		committed := lo.Map(lo.Range(3), func(int, int) Schedule {
			schedule, err := store.Commit(proposed)
			require.NoError(t, err)
			return schedule
		})

		//** Assert
		g.Expect(lo.Map(committed, func(schedule Schedule, _ int) uint64 { return schedule.Version })).To(gomega.Equal([]uint64{1, 2, 3}))
		g.Expect(store.Versions()).To(gomega.Equal([]uint64{2, 3}))
		_, err := store.Version(1)
		g.Expect(err).To(gomega.MatchError(ErrUnknownVersion))
		current, ok := store.Current()
		g.Expect(ok).To(gomega.BeTrue())
		g.Expect(current.Version).To(gomega.BeEquivalentTo(3))
	})

	t.Run("Current returns a copy", func(t *testing.T) {
		//** Arrange
		store := NewStore(2, logger.NopLogger{})
		_, err := store.Commit(propose(t, store, baseSchedule()))
		require.NoError(t, err)

		//** Act
		current, _ := store.Current()
		current.Sessions[0].Room = "L9"
		current.Sessions[0].Weeks[0] = 9

		//** Assert
		again, _ := store.Current()
		assert.Equal(t, "L1", again.Sessions[0].Room)
		assert.Equal(t, 1, again.Sessions[0].Weeks[0])
	})

	t.Run("Diff classifies sessions", func(t *testing.T) {
		g := gomega.NewWithT(t)

		//** Arrange
		store := NewStore(4, logger.NopLogger{})
		_, err := store.Commit(propose(t, store, baseSchedule()))
		require.NoError(t, err)

		next := Schedule{
			Sessions: []Session{
				session("CHEM1/G2/1", "P2", "L1", "TUE-1"),
				session("PHYS1/G1/2", "P1", "L3", "TUE-1"),
			},
			Unresolved: []string{},
		}
		_, err = store.Commit(propose(t, store, next))
		require.NoError(t, err)

		//** Act
		diff, err := store.Diff(1, 2)

		//** Assert
		g.Expect(err).NotTo(gomega.HaveOccurred())
		g.Expect(diff.Added).To(gomega.HaveLen(1))
		g.Expect(diff.Added[0].Id).To(gomega.Equal("PHYS1/G1/2"))
		g.Expect(diff.Removed).To(gomega.HaveLen(1))
		g.Expect(diff.Removed[0].Id).To(gomega.Equal("PHYS1/G1/1"))
		g.Expect(diff.Moved).To(gomega.HaveLen(1))
		g.Expect(diff.Moved[0].Before.Slot).To(gomega.Equal("MON-2"))
		g.Expect(diff.Moved[0].After.Slot).To(gomega.Equal("TUE-1"))

		unchanged, err := store.Diff(2, 2)
		g.Expect(err).NotTo(gomega.HaveOccurred())
		g.Expect(unchanged.Empty()).To(gomega.BeTrue())
	})

	t.Run("Query views", func(t *testing.T) {
		//** Arrange
		store := NewStore(4, logger.NopLogger{})
		assert.Empty(t, store.ByRoom("L1"))
		_, err := store.Commit(propose(t, store, baseSchedule()))
		require.NoError(t, err)
		ids := func(sessions []Session) []string {
			return lo.Map(sessions, func(session Session, _ int) string { return session.Id })
		}

		//** Act
		byRoom := store.ByRoom("L1")
		byProfessor := store.ByProfessor("P2")
		byGroup := store.ByGroup("G1")
		byDay := store.ByDay(1)
		bySubject := store.Query(Filter{Subject: "CHEM1", Room: "L1"})

		//** Assert
		assert.Equal(t, []string{"PHYS1/G1/1", "CHEM1/G2/1"}, ids(byRoom))
		assert.Equal(t, []string{"CHEM1/G2/1"}, ids(byProfessor))
		assert.Equal(t, []string{"PHYS1/G1/1"}, ids(byGroup))
		assert.Empty(t, byDay)
		assert.Equal(t, []string{"CHEM1/G2/1"}, ids(bySubject))
	})

	t.Run("Busy guard", func(t *testing.T) {
		//** Arrange
		store := NewStore(4, logger.NopLogger{})

		//** Act
		release, err := store.Acquire()
		require.NoError(t, err)
		_, busyErr := store.Acquire()
		release()
		release()
		againRelease, againErr := store.Acquire()

		//** Assert
		assert.ErrorIs(t, busyErr, ErrBusy)
		assert.NoError(t, againErr)
		assert.True(t, store.Busy())
		againRelease()
		assert.False(t, store.Busy())
	})

	t.Run("Restore keeps the version", func(t *testing.T) {
		//** Arrange
		store := NewStore(4, logger.NopLogger{})
		restored := propose(t, store, baseSchedule())
		restored.Version = 7

		//** Act
		require.NoError(t, store.Restore(restored))
		committed, err := store.Commit(restored)

		//** Assert
		require.NoError(t, err)
		assert.EqualValues(t, 8, committed.Version)
		assert.Equal(t, []uint64{7, 8}, store.Versions())
		assert.ErrorIs(t, store.Restore(baseSchedule()), ErrNotProposed)
	})

	t.Run("Concurrent readers", func(t *testing.T) {
		//** Arrange
		store := NewStore(4, logger.NopLogger{})
		proposed := propose(t, store, baseSchedule())

		//** Act
		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range 50 {
					if current, ok := store.Current(); ok {
						assert.Len(t, current.Sessions, 2)
					}
					store.ByRoom("L1")
				}
			}()
		}
		for range 20 {
			_, err := store.Commit(proposed)
			assert.NoError(t, err)
		}
		wg.Wait()

		//** Assert
		current, ok := store.Current()
		require.True(t, ok)
		assert.EqualValues(t, 20, current.Version)
		assert.Len(t, store.Versions(), 4)
	})
}

func TestDocument(t *testing.T) {
	t.Run("Round trip", func(t *testing.T) {
		//** Arrange
		schedule := baseSchedule()
		schedule.Version, schedule.Valid = 3, true
		schedule.Unresolved = []string{"BIO1/G3/1"}
		var buffer bytes.Buffer

		//** Act
		require.NoError(t, Save(&buffer, schedule))
		loaded, err := Load(&buffer)

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, schedule, loaded)
		assert.True(t, Equivalent(schedule, loaded))
	})

	t.Run("Unknown format", func(t *testing.T) {
		//** Act
		_, err := Load(strings.NewReader(`{"format": "other", "sessions": []}`))

		//** Assert
		assert.ErrorContains(t, err, "unsupported")
	})

	t.Run("Malformed document", func(t *testing.T) {
		//** Act
		_, err := Load(strings.NewReader(`{"format": "lab-schedule/1", "sessions": "none"}`))

		//** Assert
		assert.Error(t, err)
	})
}

func TestEquivalent(t *testing.T) {
	//** Arrange
	a := baseSchedule()
	b := baseSchedule()
	b.Version, b.Score = 9, 0
	c := baseSchedule()
	c.Sessions[1].Weeks = []int{1, 2}

	//** Assert
	assert.True(t, Equivalent(a, b))
	assert.False(t, Equivalent(a, c))
}
