package schedule

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/limaJavier/labtimetabling/internal/logger"
	"github.com/limaJavier/labtimetabling/pkg/model"
	"github.com/samber/lo"
)

var (
	ErrBusy           = errors.New("a solve or repair is already in flight")
	ErrNotProposed    = errors.New("schedule was not proposed")
	ErrNoSchedule     = errors.New("no schedule has been committed")
	ErrUnknownVersion = errors.New("schedule version is not retained")
)

const defaultHistory = 8

// Store holds the committed schedule and a bounded history of prior versions. Writes are serialized, reads go
// through an atomic pointer to an immutable snapshot
type Store struct {
	mutex   sync.Mutex
	current atomic.Pointer[Schedule]
	history []*Schedule // Oldest first, current included
	limit   int
	busy    atomic.Bool
	logger  logger.Logger
}

func NewStore(historyLimit int, log logger.Logger) *Store {
	if historyLimit <= 0 {
		historyLimit = defaultHistory
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Store{limit: historyLimit, logger: log}
}

// Propose verifies the schedule and returns a copy flagged as valid, or an *InvariantViolation
func (store *Store) Propose(schedule Schedule, catalog model.Catalog, dates []model.TeachingDate) (Schedule, error) {
	proposed := schedule.Clone()
	if violations := Verify(proposed, catalog, dates); len(violations) > 0 {
		proposed.Valid = false
		return proposed, &InvariantViolation{Violations: violations}
	}
	proposed.Valid = true
	return proposed, nil
}

// Commit makes a proposed schedule the active one under the next version number
func (store *Store) Commit(schedule Schedule) (Schedule, error) {
	if !schedule.Valid {
		return Schedule{}, ErrNotProposed
	}

	store.mutex.Lock()
	defer store.mutex.Unlock()

	committed := schedule.Clone()
	committed.Version = 1
	if current := store.current.Load(); current != nil {
		committed.Version = current.Version + 1
	}
	store.publish(&committed)

	store.logger.Infof("committed schedule version %v with %v sessions and %v unresolved", committed.Version, len(committed.Sessions), len(committed.Unresolved))
	return committed.Clone(), nil
}

// Restore makes a previously persisted schedule active, keeping its version number. History is reset
func (store *Store) Restore(schedule Schedule) error {
	if !schedule.Valid {
		return ErrNotProposed
	}

	store.mutex.Lock()
	defer store.mutex.Unlock()

	restored := schedule.Clone()
	store.history = nil
	store.publish(&restored)

	store.logger.Infof("restored schedule version %v", restored.Version)
	return nil
}

// Called with the mutex held
func (store *Store) publish(schedule *Schedule) {
	store.history = append(store.history, schedule)
	if len(store.history) > store.limit {
		store.history = slices.Delete(store.history, 0, len(store.history)-store.limit)
	}
	store.current.Store(schedule)
}

// Current returns a copy of the active schedule
func (store *Store) Current() (Schedule, bool) {
	current := store.current.Load()
	if current == nil {
		return Schedule{}, false
	}
	return current.Clone(), true
}

// Version returns a copy of a retained version
func (store *Store) Version(version uint64) (Schedule, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	retained, ok := lo.Find(store.history, func(schedule *Schedule) bool { return schedule.Version == version })
	if !ok {
		return Schedule{}, fmt.Errorf("version %v: %w", version, ErrUnknownVersion)
	}
	return retained.Clone(), nil
}

// Versions lists the retained versions, oldest first
func (store *Store) Versions() []uint64 {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	return lo.Map(store.history, func(schedule *Schedule, _ int) uint64 { return schedule.Version })
}

// Diff compares two retained versions
func (store *Store) Diff(oldVersion, newVersion uint64) (Diff, error) {
	older, err := store.Version(oldVersion)
	if err != nil {
		return Diff{}, err
	}
	newer, err := store.Version(newVersion)
	if err != nil {
		return Diff{}, err
	}
	return Compare(older, newer), nil
}

// Acquire marks a solve or repair as in flight. The returned release function frees the store again
func (store *Store) Acquire() (func(), error) {
	if !store.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	var once sync.Once
	return func() { once.Do(func() { store.busy.Store(false) }) }, nil
}

func (store *Store) Busy() bool { return store.busy.Load() }
