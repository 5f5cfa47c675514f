package engine

import "github.com/limaJavier/labtimetabling/pkg/solver"

type State int

const (
	Idle State = iota
	Building
	Solving
	Solved
	PartiallySolved
	Unsatisfiable
	Committed
	Cancelled
)

var stateNames = map[State]string{
	Idle:            "idle",
	Building:        "building",
	Solving:         "solving",
	Solved:          "solved",
	PartiallySolved: "partially-solved",
	Unsatisfiable:   "unsatisfiable",
	Committed:       "committed",
	Cancelled:       "cancelled",
}

func (state State) String() string {
	if name, ok := stateNames[state]; ok {
		return name
	}
	return "unknown"
}

// Legal transitions of the engine. Every run starts and ends in Idle
var transitions = map[State][]State{
	Idle:            {Building},
	Building:        {Solving, Unsatisfiable, Cancelled},
	Solving:         {Solved, PartiallySolved, Unsatisfiable, Cancelled},
	Solved:          {Committed, Idle},
	PartiallySolved: {Committed, Idle},
	Unsatisfiable:   {Idle},
	Committed:       {Idle},
	Cancelled:       {Idle},
}

// Settled state reached by a search that ended with the given status
func settledState(status solver.Status) State {
	switch status {
	case solver.Solved:
		return Solved
	case solver.PartiallySolved:
		return PartiallySolved
	case solver.Cancelled:
		return Cancelled
	}
	return Unsatisfiable
}
