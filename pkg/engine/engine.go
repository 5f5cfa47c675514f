package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/limaJavier/labtimetabling/internal/logger"
	"github.com/limaJavier/labtimetabling/internal/metrics"
	"github.com/limaJavier/labtimetabling/pkg/model"
	"github.com/limaJavier/labtimetabling/pkg/repair"
	"github.com/limaJavier/labtimetabling/pkg/schedule"
	"github.com/limaJavier/labtimetabling/pkg/solver"
	"github.com/samber/lo"
)

type Options struct {
	Solver        solver.Options
	CommitPartial bool // Commit schedules with unresolved sessions
	Term          model.Term
}

func DefaultOptions() Options {
	return Options{Solver: solver.DefaultOptions()}
}

type SolveResult struct {
	RunID       string
	Status      solver.Status
	Schedule    schedule.Schedule // The committed schedule, or the uncommitted draft of the run
	Unresolved  []string
	Diagnostics []solver.Diagnostic
	Steps       int
	Duration    time.Duration
	Committed   bool
	Escalated   bool     // Repair only
	Affected    []string // Repair only
}

// Last successful run, replayed by Repair
type run struct {
	catalog model.Catalog
	dates   []model.TeachingDate
	options Options
}

// Engine drives a catalog through building, solving and committing. It holds one store and allows one run at a time
type Engine struct {
	builder  model.ConstraintBuilder
	solver   solver.Solver
	repairer *repair.Repairer
	store    *schedule.Store
	metrics  metrics.MetricsSink
	logger   logger.Logger

	mutex  sync.Mutex
	state  State
	trace  []State
	cancel context.CancelFunc
	last   *run
}

// New wires an engine. Nil dependencies fall back on the standard builder and solver, a fresh store, no metrics and no logs
func New(builder model.ConstraintBuilder, searcher solver.Solver, store *schedule.Store, sink metrics.MetricsSink, log logger.Logger) *Engine {
	if builder == nil {
		builder = model.NewConstraintBuilder()
	}
	if searcher == nil {
		searcher = solver.NewSolver()
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if store == nil {
		store = schedule.NewStore(0, log)
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}

	return &Engine{
		builder:  builder,
		solver:   searcher,
		repairer: repair.NewRepairer(builder, searcher, log),
		store:    store,
		metrics:  sink,
		logger:   log,
		trace:    []State{Idle},
	}
}

// Solve builds the catalog's constraint model over the term's teaching dates, searches it and commits the outcome
// when it is complete (or partial with CommitPartial). A *model.ConfigurationError is returned together with an
// Unsatisfiable result whose diagnostics name the offending subjects
func (engine *Engine) Solve(ctx context.Context, catalog model.Catalog, calendar model.CalendarProvider, options Options) (result SolveResult, err error) {
	release, err := engine.store.Acquire()
	if err != nil {
		return SolveResult{}, err
	}
	defer release()

	ctx, done := engine.begin(ctx)
	defer done()

	result = SolveResult{RunID: uuid.NewString(), Status: solver.Unsatisfiable}
	started := time.Now()
	defer func() {
		result.Duration = time.Since(started)
		engine.record(result, "")
	}()

	engine.transition(Building)
	dates, err := calendar.ValidDates(options.Term)
	if err != nil {
		engine.transition(Unsatisfiable)
		engine.transition(Idle)
		return result, fmt.Errorf("cannot compute teaching dates: %w", err)
	}

	constraintModel, err := engine.builder.Build(ctx, catalog, dates, options.Solver.Weights)
	if err != nil {
		return result, engine.failBuild(ctx, &result, err)
	}
	engine.logger.Infow("constraint model built", map[string]any{
		"run_id":   result.RunID,
		"sessions": len(constraintModel.Variables),
		"dates":    len(dates),
		"subjects": len(constraintModel.Subjects),
		"slots":    len(constraintModel.Slots),
	})

	engine.transition(Solving)
	searched := engine.solver.Solve(ctx, constraintModel, nil, options.Solver)
	result.Status = searched.Status
	result.Diagnostics = searched.Diagnostics
	result.Steps = searched.Steps

	draft := schedule.Materialize(constraintModel, searched.Assignment, searched.Score)
	if err := engine.settle(&result, draft, catalog, dates, options); err != nil {
		return result, err
	}
	if result.Committed {
		engine.remember(&run{catalog: catalog, dates: dates, options: options})
	}
	return result, nil
}

// Repair applies a catalog change to the last solved catalog and re-solves only the sessions it affects. An empty
// or harmless change keeps the committed schedule and its version
func (engine *Engine) Repair(ctx context.Context, delta repair.Delta) (result SolveResult, err error) {
	release, err := engine.store.Acquire()
	if err != nil {
		return SolveResult{}, err
	}
	defer release()

	last := engine.lastRun()
	committed, ok := engine.store.Current()
	if last == nil || !ok {
		return SolveResult{}, schedule.ErrNoSchedule
	}

	ctx, done := engine.begin(ctx)
	defer done()

	result = SolveResult{RunID: uuid.NewString(), Status: solver.Unsatisfiable}
	outcome := metrics.Failed
	started := time.Now()
	defer func() {
		result.Duration = time.Since(started)
		engine.record(result, outcome)
	}()

	engine.transition(Building)
	plan, err := engine.repairer.Plan(ctx, committed, last.catalog, last.dates, delta, last.options.Solver.Weights)
	if err != nil {
		if ctx.Err() != nil {
			outcome = metrics.Cancelled
		}
		return result, engine.failBuild(ctx, &result, err)
	}
	result.Affected = plan.Affected

	engine.transition(Solving)
	repaired := engine.repairer.Execute(ctx, plan, last.options.Solver)
	result.Status = repaired.Status
	result.Diagnostics = repaired.Diagnostics
	result.Steps = repaired.Steps
	result.Escalated = repaired.Escalated

	if repaired.Unchanged && repaired.Status == solver.Solved {
		engine.transition(Solved)
		engine.transition(Idle)
		result.Schedule = committed
		outcome = metrics.Unchanged
		engine.logger.Infow("repair left the schedule unchanged", map[string]any{"run_id": result.RunID, "delta": delta.String(), "version": committed.Version})
		return result, nil
	}

	if err := engine.settle(&result, repaired.Schedule, repaired.Catalog, last.dates, last.options); err != nil {
		return result, err
	}

	switch {
	case result.Status == solver.Cancelled:
		outcome = metrics.Cancelled
	case result.Committed && repaired.Escalated:
		outcome = metrics.Escalated
	case result.Committed:
		outcome = metrics.Repaired
	}
	if result.Committed {
		engine.remember(&run{catalog: repaired.Catalog, dates: last.dates, options: last.options})
	}
	return result, nil
}

// Restore re-verifies a persisted schedule against its catalog and makes it the committed one, so later repairs
// build on it. The schedule keeps its version
func (engine *Engine) Restore(persisted schedule.Schedule, catalog model.Catalog, calendar model.CalendarProvider, options Options) error {
	release, err := engine.store.Acquire()
	if err != nil {
		return err
	}
	defer release()

	if err := model.ValidateCatalog(catalog); err != nil {
		return err
	}
	dates, err := calendar.ValidDates(options.Term)
	if err != nil {
		return fmt.Errorf("cannot compute teaching dates: %w", err)
	}
	proposed, err := engine.store.Propose(persisted, catalog, dates)
	if err != nil {
		return fmt.Errorf("cannot restore schedule version %v: %w", persisted.Version, err)
	}
	if err := engine.store.Restore(proposed); err != nil {
		return err
	}

	engine.remember(&run{catalog: catalog, dates: dates, options: options})
	if err := engine.metrics.RecordCommit(proposed.Version); err != nil {
		engine.logger.Warnf("cannot record restore of version %v: %v", proposed.Version, err)
	}
	return nil
}

// Cancel signals the run in flight, if any. The run settles as Cancelled with the best partial schedule it reached
func (engine *Engine) Cancel() {
	engine.mutex.Lock()
	defer engine.mutex.Unlock()

	if engine.cancel != nil {
		engine.cancel()
	}
}

func (engine *Engine) State() State {
	engine.mutex.Lock()
	defer engine.mutex.Unlock()
	return engine.state
}

// Trace returns the states visited by the current or last run, starting at Idle
func (engine *Engine) Trace() []State {
	engine.mutex.Lock()
	defer engine.mutex.Unlock()
	return slices.Clone(engine.trace)
}

func (engine *Engine) Store() *schedule.Store { return engine.store }

// Starts a run with a cancellable context. The returned function ends it
func (engine *Engine) begin(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)

	engine.mutex.Lock()
	engine.cancel = cancel
	engine.trace = []State{Idle}
	engine.mutex.Unlock()

	return ctx, func() {
		engine.mutex.Lock()
		engine.cancel = nil
		engine.mutex.Unlock()
		cancel()
	}
}

func (engine *Engine) transition(next State) {
	engine.mutex.Lock()
	defer engine.mutex.Unlock()

	if !slices.Contains(transitions[engine.state], next) {
		panic(fmt.Sprintf("illegal engine transition from %v to %v", engine.state, next))
	}
	engine.logger.Debugf("engine %v -> %v", engine.state, next)
	engine.state = next
	engine.trace = append(engine.trace, next)
}

// Settles a building failure: a cancelled context ends as Cancelled, anything else as Unsatisfiable.
// Configuration issues become diagnostics
func (engine *Engine) failBuild(ctx context.Context, result *SolveResult, err error) error {
	if ctx.Err() != nil {
		result.Status = solver.Cancelled
		engine.transition(Cancelled)
		engine.transition(Idle)
		engine.logger.Warnf("run %v cancelled while building", result.RunID)
		return ctx.Err()
	}

	var configurationError *model.ConfigurationError
	if errors.As(err, &configurationError) {
		result.Diagnostics = lo.Map(configurationError.Issues, func(issue model.Issue, _ int) solver.Diagnostic {
			return solver.Diagnostic{
				Class:    solver.ConfigurationClass,
				Subject:  issue.Subject,
				Session:  issue.Session,
				Entities: []string{string(issue.Kind)},
				Message:  issue.Detail,
			}
		})
		engine.logger.Warnf("run %v: %v", result.RunID, configurationError)
	}

	result.Status = solver.Unsatisfiable
	engine.transition(Unsatisfiable)
	engine.transition(Idle)
	return err
}

// Moves the engine through the settled state of a search and commits the draft when allowed. An invariant violation
// aborts the commit and is returned
func (engine *Engine) settle(result *SolveResult, draft schedule.Schedule, catalog model.Catalog, dates []model.TeachingDate, options Options) error {
	result.Schedule = draft
	result.Unresolved = draft.Unresolved

	engine.transition(settledState(result.Status))
	commit := result.Status == solver.Solved || (result.Status == solver.PartiallySolved && options.CommitPartial)
	if !commit {
		engine.transition(Idle)
		engine.logger.Infow("run settled without commit", map[string]any{"run_id": result.RunID, "status": result.Status.String(), "unresolved": len(draft.Unresolved)})
		return nil
	}

	proposed, err := engine.store.Propose(draft, catalog, dates)
	if err != nil {
		engine.transition(Idle)
		engine.logger.Errorf("run %v produced an invalid schedule: %v", result.RunID, err)
		return err
	}
	committed, err := engine.store.Commit(proposed)
	if err != nil {
		engine.transition(Idle)
		return fmt.Errorf("cannot commit schedule of run %v: %w", result.RunID, err)
	}

	engine.transition(Committed)
	engine.transition(Idle)
	result.Schedule = committed
	result.Committed = true
	if err := engine.metrics.RecordCommit(committed.Version); err != nil {
		engine.logger.Warnf("cannot record commit of version %v: %v", committed.Version, err)
	}
	return nil
}

func (engine *Engine) record(result SolveResult, repairOutcome string) {
	record := metrics.SolveRecord{RunID: result.RunID, Status: result.Status.String(), Steps: result.Steps, Duration: result.Duration}

	var err error
	if repairOutcome == "" {
		err = engine.metrics.RecordSolve(record)
	} else {
		err = engine.metrics.RecordRepair(record, repairOutcome)
	}
	if err != nil {
		engine.logger.Warnf("cannot record run %v: %v", result.RunID, err)
	}

	engine.logger.Infow("run finished", map[string]any{
		"run_id":    result.RunID,
		"status":    result.Status.String(),
		"steps":     result.Steps,
		"duration":  result.Duration.String(),
		"committed": result.Committed,
	})
}

func (engine *Engine) lastRun() *run {
	engine.mutex.Lock()
	defer engine.mutex.Unlock()
	return engine.last
}

func (engine *Engine) remember(last *run) {
	engine.mutex.Lock()
	defer engine.mutex.Unlock()
	engine.last = last
}
