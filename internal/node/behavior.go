package node

import (
	"context"
	"log/slog"

	"github.com/specialistvlad/robogrid/internal/value"
)

// Values maps port names to values.
type Values = map[string]value.Value

// Behavior is implemented by every node type.
type Behavior interface {
	// Execute runs the node once. in holds every declared input port, already
	// coerced to the port's kind. A returned error halts the run; Execute must
	// not panic, although the engine recovers if it does.
	Execute(ctx context.Context, in Values, rc RunContext) (Values, error)

	// Code returns the node's script fragment. It must be a pure function of
	// params. Fragments are text/template source where {{in "port"}},
	// {{out "port"}}, {{state "key"}} and {{iter}} are bound by the code
	// generator; every output port must be assigned.
	Code(params value.Record) string
}

// Robot is the capability through which nodes reach the physical or simulated
// world. The simulation session is the production implementation.
type Robot interface {
	Dispatch(ctx context.Context, action string, args value.Record) (value.Value, error)
	ReadSensors() value.Record
}

// State is the run-scoped scratch space of one node.
type State interface {
	Load(key string) (value.Value, bool)
	Store(key string, v value.Value)
	Delete(key string)
}

// RunContext is what a node sees of the run executing it.
type RunContext interface {
	RunID() string
	NodeID() string
	// Params returns the node's parameters as captured when the run started.
	Params() value.Record
	Robot() Robot
	State() State
	// Iteration is the number of completed body passes of the innermost
	// enclosing loop. For a loop node it refers to the loop itself. It is -1
	// outside of any loop.
	Iteration() int
	Logger() *slog.Logger
}
