package testutil

import (
	"context"
	"sync"

	"github.com/specialistvlad/robogrid/internal/value"
)

// Dispatch is one action received by a ScriptedRobot.
type Dispatch struct {
	Action string
	Args   value.Record
}

// ScriptedRobot is a deterministic node.Robot. Each ReadSensors call returns
// the next frame and keeps returning the last one once the frames run out.
type ScriptedRobot struct {
	mu       sync.Mutex
	frames   []value.Record
	reads    int
	outcomes map[string]value.Value
	failures map[string]error
	log      []Dispatch
}

// NewScriptedRobot creates a robot that plays back frames.
func NewScriptedRobot(frames ...value.Record) *ScriptedRobot {
	return &ScriptedRobot{
		frames:   frames,
		outcomes: make(map[string]value.Value),
		failures: make(map[string]error),
	}
}

// Outcome sets the result returned for action. Unscripted actions succeed
// with true.
func (r *ScriptedRobot) Outcome(action string, result value.Value) *ScriptedRobot {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[action] = result
	return r
}

// Fail makes every dispatch of action return err.
func (r *ScriptedRobot) Fail(action string, err error) *ScriptedRobot {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[action] = err
	return r
}

func (r *ScriptedRobot) Dispatch(ctx context.Context, action string, args value.Record) (value.Value, error) {
	if err := ctx.Err(); err != nil {
		return value.Null(), err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, Dispatch{Action: action, Args: args.Clone()})
	if err, ok := r.failures[action]; ok {
		return value.Null(), err
	}
	if v, ok := r.outcomes[action]; ok {
		return v, nil
	}
	return value.Bool(true), nil
}

func (r *ScriptedRobot) ReadSensors() value.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return value.Record{}
	}
	i := min(r.reads, len(r.frames)-1)
	r.reads++
	return r.frames[i]
}

// Dispatched returns every action received so far.
func (r *ScriptedRobot) Dispatched() []Dispatch {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Dispatch, len(r.log))
	copy(out, r.log)
	return out
}

// Actions returns the names of the dispatched actions in order.
func (r *ScriptedRobot) Actions() []string {
	var out []string
	for _, d := range r.Dispatched() {
		out = append(out, d.Action)
	}
	return out
}
