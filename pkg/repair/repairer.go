package repair

import (
	"context"
	"fmt"

	"github.com/limaJavier/labtimetabling/internal/logger"
	"github.com/limaJavier/labtimetabling/pkg/model"
	"github.com/limaJavier/labtimetabling/pkg/schedule"
	"github.com/limaJavier/labtimetabling/pkg/solver"
	"github.com/samber/lo"
)

// Plan is a repair ready to be searched: the changed catalog, its model and the committed sessions kept in place
type Plan struct {
	Delta           Delta
	Committed       schedule.Schedule
	Catalog         *model.Snapshot // Catalog with the delta applied
	ConstraintModel *model.ConstraintModel
	Pinned          map[int]int // Variable -> domain position of its committed placement
	Affected        []string    // Sessions searched again
}

type Outcome struct {
	Status      solver.Status
	Schedule    schedule.Schedule // Merged schedule, not yet proposed
	Catalog     *model.Snapshot
	Affected    []string
	Diagnostics []solver.Diagnostic
	Steps       int
	Unchanged   bool // The merged schedule places every session as the committed one
	Escalated   bool // The restricted search failed and a full solve took over
}

// Repairer re-solves only the sessions a catalog change touches, keeping every other committed session pinned
type Repairer struct {
	builder model.ConstraintBuilder
	solver  solver.Solver
	logger  logger.Logger
}

func NewRepairer(builder model.ConstraintBuilder, solver solver.Solver, log logger.Logger) *Repairer {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Repairer{builder: builder, solver: solver, logger: log}
}

// Repair plans and executes a repair in one go
func (repairer *Repairer) Repair(
	ctx context.Context,
	committed schedule.Schedule,
	catalog model.Catalog,
	dates []model.TeachingDate,
	delta Delta,
	options solver.Options) (Outcome, error) {

	plan, err := repairer.Plan(ctx, committed, catalog, dates, delta, options.Weights)
	if err != nil {
		return Outcome{}, err
	}
	return repairer.Execute(ctx, plan, options), nil
}

// Plan applies the delta, rebuilds the constraint model and pins every committed session the delta leaves valid.
// Sessions of a removed professor or an offline room, new sessions, unresolved sessions and sessions whose committed
// placement left their domain are affected. Surplus sessions of a decreased count have no variable and are dropped
func (repairer *Repairer) Plan(
	ctx context.Context,
	committed schedule.Schedule,
	catalog model.Catalog,
	dates []model.TeachingDate,
	delta Delta,
	weights model.SoftWeights) (*Plan, error) {

	changed, err := delta.Apply(catalog)
	if err != nil {
		return nil, fmt.Errorf("cannot apply %v: %w", delta, err)
	}

	constraintModel, err := repairer.builder.Build(ctx, changed, dates, weights)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Delta:           delta,
		Committed:       committed,
		Catalog:         changed,
		ConstraintModel: constraintModel,
		Pinned:          make(map[int]int),
		Affected:        make([]string, 0),
	}
	for variable, variableEntity := range constraintModel.Variables {
		session, placed := committed.Session(variableEntity.Id)
		if !placed || touches(delta, session) {
			plan.Affected = append(plan.Affected, variableEntity.Id)
			continue
		}

		position, ok := constraintModel.Find(variable, session.Slot, session.Room, session.Professor)
		if !ok {
			plan.Affected = append(plan.Affected, variableEntity.Id)
			continue
		}
		plan.Pinned[variable] = position
	}

	repairer.logger.Infof("repair of %v: %v affected and %v pinned sessions", delta, len(plan.Affected), len(plan.Pinned))
	return plan, nil
}

// Execute searches the affected sessions. When the restricted search is unsatisfiable every session is searched again
func (repairer *Repairer) Execute(ctx context.Context, plan *Plan, options solver.Options) Outcome {
	result := repairer.solver.Solve(ctx, plan.ConstraintModel, plan.Pinned, options)
	outcome := Outcome{
		Status:      result.Status,
		Catalog:     plan.Catalog,
		Affected:    plan.Affected,
		Diagnostics: result.Diagnostics,
		Steps:       result.Steps,
	}

	if result.Status == solver.Unsatisfiable {
		repairer.logger.Warnf("restricted repair of %v failed, escalating to a full solve", plan.Delta)
		full := repairer.solver.Solve(ctx, plan.ConstraintModel, nil, options)

		escalation := solver.Diagnostic{
			Class:    solver.EscalationClass,
			Entities: lo.Map(result.Diagnostics, func(diagnostic solver.Diagnostic, _ int) string { return diagnostic.Class }),
			Message:  fmt.Sprintf("%v could not be repaired in place, every session was searched again", plan.Delta),
		}
		if len(result.Diagnostics) > 0 {
			escalation.Subject, escalation.Session = result.Diagnostics[0].Subject, result.Diagnostics[0].Session
		}

		result = full
		outcome.Status = full.Status
		outcome.Diagnostics = append([]solver.Diagnostic{escalation}, full.Diagnostics...)
		outcome.Steps += full.Steps
		outcome.Escalated = true
	}

	outcome.Schedule = schedule.Materialize(plan.ConstraintModel, result.Assignment, result.Score)
	outcome.Unchanged = schedule.Equivalent(outcome.Schedule, plan.Committed)
	return outcome
}

// Reports whether the delta invalidates the session's committed placement by itself
func touches(delta Delta, session schedule.Session) bool {
	switch delta.Kind {
	case ProfessorRemoved:
		return session.Professor == delta.ProfessorId
	case RoomOffline:
		return session.Room == delta.RoomId
	}
	return false
}
