package engine

import (
	"context"
	"fmt"
	"log/slog"
	"maps"

	"github.com/specialistvlad/robogrid/internal/ctxlog"
	"github.com/specialistvlad/robogrid/internal/metrics"
	"github.com/specialistvlad/robogrid/internal/node"
	"github.com/specialistvlad/robogrid/internal/scheduler"
	"github.com/specialistvlad/robogrid/internal/value"
)

func (r *Run) execRegion(ctx context.Context, region *scheduler.Region) error {
	for _, id := range region.Steps {
		if err := r.checkpoint(ctx); err != nil {
			return err
		}
		n := r.nodes[id]

		var err error
		switch {
		case n.IsControl() && n.Type() == node.TypeIf:
			err = r.execIf(ctx, n)
		case n.IsControl() && n.Type() == node.TypeWhileLoop:
			err = r.execLoop(ctx, n)
		default:
			err = r.execNode(ctx, n)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// execNode runs an ordinary node once and records its outputs.
func (r *Run) execNode(ctx context.Context, n *node.Node) error {
	in, out, err := r.invoke(ctx, n, r.iteration())
	if err != nil {
		return r.fail(ctx, n, in, err)
	}
	if err := r.store.SetOutputs(ctx, n.ID(), out); err != nil {
		return r.fail(ctx, n, in, err)
	}
	r.produced(n.ID())
	n.Record(in, out)
	r.emit(ctx, n, out, nil)
	return nil
}

func (r *Run) execIf(ctx context.Context, n *node.Node) error {
	in, out, err := r.invoke(ctx, n, r.iteration())
	if err != nil {
		return r.fail(ctx, n, in, err)
	}
	_, then := out[node.PortThen]
	_, els := out[node.PortElse]
	if then == els {
		return r.fail(ctx, n, in, ErrInvalidDecision)
	}

	thenRegion := r.plan.Region(n.ID(), node.PortThen)
	elseRegion := r.plan.Region(n.ID(), node.PortElse)
	selected, port := thenRegion, node.PortThen
	if els {
		selected, port = elseRegion, node.PortElse
	}
	out = node.Values{port: out[port]}

	cleared := append(r.plan.Members(thenRegion), r.plan.Members(elseRegion)...)
	if err := r.store.ClearOutputs(ctx, cleared...); err != nil {
		return r.fail(ctx, n, in, err)
	}
	if err := r.store.SetOutputs(ctx, n.ID(), out); err != nil {
		return r.fail(ctx, n, in, err)
	}
	r.produced(n.ID())
	n.Record(in, out)
	r.emit(ctx, n, out, nil)

	ctxlog.FromContext(ctx).Debug("Branch selected.", "node_id", n.ID(), "branch", port, "steps", len(selected.Steps))
	return r.execRegion(ctx, selected)
}

func (r *Run) execLoop(ctx context.Context, n *node.Node) error {
	logger := ctxlog.FromContext(ctx)
	body := r.plan.Region(n.ID(), node.PortBody)
	budget := r.engine.cfg.MaxIterations

	if err := r.store.ClearOutputs(ctx, r.plan.Members(body)...); err != nil {
		return r.fail(ctx, n, nil, err)
	}
	r.clock++
	r.enteredAt[n.ID()] = r.clock

	for pass := 0; ; pass++ {
		if pass > 0 {
			if err := r.checkpoint(ctx); err != nil {
				return err
			}
		}
		in, out, err := r.invoke(ctx, n, pass)
		if err != nil {
			return r.fail(ctx, n, in, err)
		}
		_, cont := out[node.PortBody]
		_, done := out[node.PortDone]
		if cont == done {
			return r.fail(ctx, n, in, ErrInvalidDecision)
		}

		if done {
			out = node.Values{node.PortDone: out[node.PortDone]}
			if err := r.store.SetOutputs(ctx, n.ID(), out); err != nil {
				return r.fail(ctx, n, in, err)
			}
			r.produced(n.ID())
			n.Record(in, out)
			r.emit(ctx, n, out, nil)
			logger.Debug("Loop finished.", "node_id", n.ID(), "passes", pass)
			return nil
		}

		if pass >= budget {
			return r.fail(ctx, n, in, &LoopBudgetError{NodeID: n.ID(), Budget: budget})
		}
		out = node.Values{node.PortBody: out[node.PortBody]}
		if err := r.store.SetOutputs(ctx, n.ID(), out); err != nil {
			return r.fail(ctx, n, in, err)
		}
		r.produced(n.ID())
		n.Record(in, out)

		r.passes = append(r.passes, pass)
		err = r.execRegion(ctx, body)
		r.passes = r.passes[:len(r.passes)-1]
		if err != nil {
			return err
		}
		metrics.LoopIterationsTotal.Inc()
	}
}

// invoke gathers the inputs of n and runs its behavior, enforcing the node run
// budget and recovering panics.
func (r *Run) invoke(ctx context.Context, n *node.Node, iteration int) (in, out node.Values, err error) {
	in, err = r.inputs(ctx, n)
	if err != nil {
		return in, nil, err
	}

	r.nodeRuns++
	if r.nodeRuns > r.engine.cfg.MaxNodeRuns {
		return in, nil, fmt.Errorf("%w: limit is %d", ErrNodeRunBudgetExceeded, r.engine.cfg.MaxNodeRuns)
	}

	nodeCtx := context.WithoutCancel(ctx)
	if timeout := r.engine.cfg.DispatchTimeout; timeout > 0 {
		var cancel context.CancelFunc
		nodeCtx, cancel = context.WithTimeout(nodeCtx, timeout)
		defer cancel()
	}
	logger := ctxlog.FromContext(ctx).With("node_id", n.ID(), "type", n.Type())
	rc := &runContext{run: r, node: n, iteration: iteration, logger: logger}

	defer func() {
		if p := recover(); p != nil {
			out, err = nil, fmt.Errorf("%w: %v", ErrPanic, p)
		}
	}()
	out, err = n.Behavior().Execute(ctxlog.WithLogger(nodeCtx, logger), maps.Clone(in), rc)
	if err != nil {
		return in, nil, err
	}
	if out == nil {
		out = node.Values{}
	}
	return in, declaredOutputs(n, out), nil
}

// inputs reads every declared input port of n from the store, coerced to the
// port's kind.
func (r *Run) inputs(ctx context.Context, n *node.Node) (node.Values, error) {
	snap := r.plan.Snapshot()
	in := make(node.Values, len(n.Spec().Inputs))
	for _, p := range n.Spec().Inputs {
		c, bound := snap.Inbound(n.ID(), p.Name)
		if !bound {
			in[p.Name] = value.Zero(p.Kind)
			continue
		}
		v, produced, err := r.store.GetOutput(ctx, c.From, c.FromPort)
		if err != nil {
			return in, err
		}
		// A back-edge whose source has not produced since the loop was
		// entered keeps the loop going. Once the source has produced, a
		// cleared output reads as the port's zero value like any other.
		fresh := r.plan.IsBackEdge(c) && r.producedAt[c.From] <= r.enteredAt[c.To]
		switch {
		case produced:
			in[p.Name] = value.Coerce(v, p.Kind)
		case fresh && p.Name == node.PortCondition:
			in[p.Name] = value.Bool(true)
		case fresh:
			in[p.Name] = value.Null()
		default:
			in[p.Name] = value.Zero(p.Kind)
		}
	}
	return in, nil
}

// produced marks id as having stored outputs at the current clock tick.
func (r *Run) produced(id string) {
	r.clock++
	r.producedAt[id] = r.clock
}

// declaredOutputs drops values for ports the node does not declare.
func declaredOutputs(n *node.Node, out node.Values) node.Values {
	kept := make(node.Values, len(out))
	for _, p := range n.Spec().Outputs {
		if v, ok := out[p.Name]; ok {
			kept[p.Name] = v
		}
	}
	return kept
}

// fail records the error of n, emits its error result and returns the error
// that ends the run.
func (r *Run) fail(ctx context.Context, n *node.Node, in node.Values, err error) error {
	nodeErr := &NodeError{NodeID: n.ID(), Type: n.Type(), Err: err}
	_ = r.store.SetError(ctx, n.ID(), nodeErr)
	n.Record(in, nil)
	r.emit(ctx, n, nil, err)
	ctxlog.FromContext(ctx).Error("Node execution failed.", "node_id", n.ID(), "type", n.Type(), "error", err)
	return nodeErr
}

func (r *Run) iteration() int {
	if len(r.passes) == 0 {
		return -1
	}
	return r.passes[len(r.passes)-1]
}

type runContext struct {
	run       *Run
	node      *node.Node
	iteration int
	logger    *slog.Logger
}

func (rc *runContext) RunID() string        { return rc.run.id }
func (rc *runContext) NodeID() string       { return rc.node.ID() }
func (rc *runContext) Params() value.Record { return rc.run.params[rc.node.ID()] }
func (rc *runContext) Robot() node.Robot    { return rc.run.engine.robot }
func (rc *runContext) State() node.State    { return rc.run.store.State(rc.node.ID()) }
func (rc *runContext) Iteration() int       { return rc.iteration }
func (rc *runContext) Logger() *slog.Logger { return rc.logger }
