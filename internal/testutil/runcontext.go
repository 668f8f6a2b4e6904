package testutil

import (
	"io"
	"log/slog"

	"github.com/specialistvlad/robogrid/internal/node"
	"github.com/specialistvlad/robogrid/internal/value"
)

// RunContext is a hand-wired node.RunContext for exercising one behavior
// outside the engine.
type RunContext struct {
	Run     string
	Node    string
	Values  value.Record
	Bot     node.Robot
	Scratch *MapState
	Pass    int
	Log     *slog.Logger
}

// NewRunContext returns a run context for a node with the given parameters,
// outside of any loop.
func NewRunContext(params value.Record, robot node.Robot) *RunContext {
	return &RunContext{
		Run:     "test-run",
		Node:    "node_1",
		Values:  params,
		Bot:     robot,
		Scratch: NewMapState(),
		Pass:    -1,
		Log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (rc *RunContext) RunID() string        { return rc.Run }
func (rc *RunContext) NodeID() string       { return rc.Node }
func (rc *RunContext) Params() value.Record { return rc.Values }
func (rc *RunContext) Robot() node.Robot    { return rc.Bot }
func (rc *RunContext) State() node.State    { return rc.Scratch }
func (rc *RunContext) Iteration() int       { return rc.Pass }
func (rc *RunContext) Logger() *slog.Logger { return rc.Log }

// MapState is a map-backed node.State.
type MapState struct {
	m map[string]value.Value
}

// NewMapState creates an empty state.
func NewMapState() *MapState { return &MapState{m: make(map[string]value.Value)} }

func (s *MapState) Load(key string) (value.Value, bool) {
	v, ok := s.m[key]
	return v, ok
}

func (s *MapState) Store(key string, v value.Value) { s.m[key] = v }

func (s *MapState) Delete(key string) { delete(s.m, key) }
