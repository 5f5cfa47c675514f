package solver

import (
	"context"
	"time"

	"github.com/limaJavier/labtimetabling/pkg/model"
)

type Status int

const (
	Solved Status = iota
	PartiallySolved
	Unsatisfiable
	Cancelled
)

var statusNames = map[Status]string{
	Solved:          "solved",
	PartiallySolved: "partially-solved",
	Unsatisfiable:   "unsatisfiable",
	Cancelled:       "cancelled",
}

func (status Status) String() string {
	if name, ok := statusNames[status]; ok {
		return name
	}
	return "unknown"
}

// Constraint classes a failure is attributed to
const (
	RoomClass           = "room"
	ProfessorClass      = "professor"
	GroupClass          = "group"
	ProfessorHoursClass = "professor-hours"
	MatchingClass       = "room-matching"
	PinnedClass         = "pinned"
	ConfigurationClass  = "configuration"
	EscalationClass     = "escalation"
)

type Options struct {
	MaxSearchSteps int           `json:"max_search_steps"` // 0 means unbounded
	TimeBudget     time.Duration `json:"time_budget"`      // 0 means unbounded
	NoGoodCapacity int           `json:"nogood_capacity"`  // 0 disables the memo
	Weights        model.SoftWeights
}

func DefaultOptions() Options {
	return Options{
		MaxSearchSteps: 200_000,
		TimeBudget:     30 * time.Second,
		NoGoodCapacity: 4096,
		Weights:        model.DefaultSoftWeights(),
	}
}

// Diagnostic explains why sessions could not be placed
type Diagnostic struct {
	Class    string
	Subject  string
	Session  string
	Entities []string
	Message  string
}

type Result struct {
	Status      Status
	Assignment  []int // Domain position per variable, -1 when unassigned
	Unresolved  []int // Unassigned variables
	Diagnostics []Diagnostic
	Score       float64
	Steps       int
}

type Solver interface {
	// Solve assigns a domain value to every variable of the model. Pinned variables (variable -> domain position) are
	// applied first and never revisited
	Solve(ctx context.Context, constraintModel *model.ConstraintModel, pinned map[int]int, options Options) Result
}

func NewSolver() Solver {
	return &backtrackingSolver{}
}
