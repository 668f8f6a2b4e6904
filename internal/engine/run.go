package engine

import (
	"context"
	"errors"
	"iter"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/robogrid/internal/ctxlog"
	"github.com/specialistvlad/robogrid/internal/metrics"
	"github.com/specialistvlad/robogrid/internal/node"
	"github.com/specialistvlad/robogrid/internal/nodestore"
	"github.com/specialistvlad/robogrid/internal/scheduler"
	"github.com/specialistvlad/robogrid/internal/value"
)

// State is the lifecycle state of a run.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateAborted   State = "aborted"
)

// Terminal reports whether s is a final state.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateAborted
}

// Result is the record of one node execution.
type Result struct {
	// Seq numbers results from zero in emission order.
	Seq     int
	NodeID  string
	Type    string
	Outputs node.Values
	Status  node.Status
	Error   string
}

// Outcome is the final report of a run.
type Outcome struct {
	RunID   string
	State   State
	Err     error
	Results []Result
}

// Run is one execution of a graph.
type Run struct {
	id     string
	engine *Engine
	plan   *scheduler.Plan
	store  nodestore.Store
	params map[string]value.Record
	nodes  map[string]*node.Node

	state    atomic.Value
	aborted  atomic.Bool
	streamed atomic.Bool
	results  chan Result
	done     chan struct{}

	mu      sync.Mutex
	history []Result
	err     error

	// Owned by the run goroutine.
	seq      int
	nodeRuns int
	passes   []int

	// clock orders loop entries against node productions, so a back-edge can
	// tell whether its source produced since the loop was last entered.
	clock      int
	producedAt map[string]int
	enteredAt  map[string]int
}

func newRun(id string, e *Engine, plan *scheduler.Plan) *Run {
	snap := plan.Snapshot()
	r := &Run{
		id:      id,
		engine:  e,
		plan:    plan,
		store:   e.newStore(),
		params:  make(map[string]value.Record, len(snap.Nodes())),
		nodes:   make(map[string]*node.Node, len(snap.Nodes())),
		results: make(chan Result, e.cfg.ResultBuffer),
		done:    make(chan struct{}),

		producedAt: make(map[string]int),
		enteredAt:  make(map[string]int),
	}
	for _, n := range snap.Nodes() {
		r.nodes[n.ID()] = n
		r.params[n.ID()] = n.Params()
	}
	r.state.Store(StateIdle)
	return r
}

// ID returns the run id.
func (r *Run) ID() string { return r.id }

// State returns the current state.
func (r *Run) State() State { return r.state.Load().(State) }

// Abort asks the run to stop at the next node boundary. It is safe to call at
// any time and more than once.
func (r *Run) Abort() { r.aborted.Store(true) }

// Done is closed when the run reaches a terminal state.
func (r *Run) Done() <-chan struct{} { return r.done }

// Results returns the live result stream. The sequence is forward-only and
// ends when the run terminates; only the first call yields results.
func (r *Run) Results() iter.Seq[Result] {
	if !r.streamed.CompareAndSwap(false, true) {
		return func(func(Result) bool) {}
	}
	return func(yield func(Result) bool) {
		for res := range r.results {
			if !yield(res) {
				return
			}
		}
	}
}

// Wait drains the result stream, blocks until the run terminates and returns
// its outcome. Results holds every result, including those already consumed
// through Results.
func (r *Run) Wait() *Outcome {
	for range r.results {
	}
	<-r.done

	r.mu.Lock()
	defer r.mu.Unlock()
	return &Outcome{
		RunID:   r.id,
		State:   r.State(),
		Err:     r.err,
		Results: append([]Result(nil), r.history...),
	}
}

func (r *Run) exec(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	for _, n := range r.nodes {
		n.Reset()
	}
	r.state.Store(StateRunning)

	err := r.execRegion(ctx, r.plan.Root())
	final := StateCompleted
	switch {
	case errors.Is(err, ErrAborted):
		final = StateAborted
	case err != nil:
		final = StateFailed
	}

	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
	r.state.Store(final)
	metrics.RunsTotal.WithLabelValues(string(final)).Inc()

	if err != nil {
		logger.Info("Run finished.", "state", final, "results", r.seq, "error", err)
	} else {
		logger.Info("Run finished.", "state", final, "results", r.seq)
	}
	close(r.results)
	close(r.done)
}

// checkpoint is evaluated at every node boundary.
func (r *Run) checkpoint(ctx context.Context) error {
	if r.aborted.Load() {
		return ErrAborted
	}
	if ctx.Err() != nil {
		return ErrAborted
	}
	return nil
}

func (r *Run) emit(ctx context.Context, n *node.Node, out node.Values, execErr error) {
	res := Result{
		Seq:     r.seq,
		NodeID:  n.ID(),
		Type:    n.Type(),
		Outputs: out,
		Status:  node.StatusSuccess,
	}
	if execErr != nil {
		res.Status = node.StatusError
		res.Error = execErr.Error()
	}
	r.seq++

	r.mu.Lock()
	r.history = append(r.history, res)
	r.mu.Unlock()
	metrics.NodeExecutionsTotal.WithLabelValues(res.Type, string(res.Status)).Inc()
	ctxlog.FromContext(ctx).Debug("Node executed.", "node_id", res.NodeID, "type", res.Type, "status", res.Status, "seq", res.Seq)

	r.results <- res
}
