package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/specialistvlad/robogrid/internal/engine"
	"github.com/specialistvlad/robogrid/internal/graph"
	"github.com/specialistvlad/robogrid/internal/graphfile"
	"github.com/specialistvlad/robogrid/internal/node"
	"github.com/specialistvlad/robogrid/internal/session"
)

const stopTimeout = 10 * time.Second

// ErrRunFailed is returned by Run when the run did not complete.
var ErrRunFailed = errors.New("run did not complete")

// LoadGraph reads a graph file, building its nodes through the registry.
func (a *App) LoadGraph(ctx context.Context, path string) (*graph.Graph, error) {
	return graphfile.Load(a.context(ctx), path, a.registry, graphfile.WithVariables(a.vars))
}

// Run executes the graph file at path against a freshly started robot
// session, printing every node result as it arrives. Cancelling ctx aborts the
// run at the next node boundary.
func (a *App) Run(ctx context.Context, path string) (*engine.Outcome, error) {
	ctx = a.context(ctx)
	a.logger.Debug("App.Run method started.", "graph", path)

	g, err := a.LoadGraph(ctx, path)
	if err != nil {
		return nil, err
	}

	a.startHealthcheckServer()
	defer a.closeHealthcheckServer(ctx)

	backend, err := a.newBackend(a.config.Session)
	if err != nil {
		return nil, err
	}
	sess := session.New(backend, descriptor(a.config.Session), session.Config{
		DispatchTimeout: a.config.Engine.DispatchTimeout,
		PollInterval:    a.config.Session.PollInterval,
	})
	if err := sess.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start robot session: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stopTimeout)
		defer cancel()
		if err := sess.Stop(stopCtx); err != nil {
			a.logger.Warn("Robot session did not stop cleanly.", "error", err)
		}
	}()

	eng := engine.New(sess, engine.Config{
		MaxIterations:   a.config.Engine.MaxIterations,
		MaxNodeRuns:     a.config.Engine.MaxNodeRuns,
		DispatchTimeout: a.config.Engine.DispatchTimeout,
	})
	run, err := eng.Start(ctx, g)
	if err != nil {
		return nil, err
	}
	for res := range run.Results() {
		fmt.Fprintln(a.outW, formatResult(res))
	}
	outcome := run.Wait()
	fmt.Fprintf(a.outW, "run %s %s after %d node executions\n", outcome.RunID, outcome.State, len(outcome.Results))

	if outcome.State != engine.StateCompleted {
		if outcome.Err == nil {
			return outcome, fmt.Errorf("%w: %s", ErrRunFailed, outcome.State)
		}
		return outcome, fmt.Errorf("%w: %s: %w", ErrRunFailed, outcome.State, outcome.Err)
	}
	return outcome, nil
}

// formatResult renders one result as a single line: sequence number, node,
// type, status and the sorted outputs.
func formatResult(res engine.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%4d %-16s %-18s %-7s", res.Seq, res.NodeID, res.Type, res.Status)
	if res.Status == node.StatusError {
		sb.WriteString(" " + res.Error)
		return sb.String()
	}
	for _, port := range sortedPorts(res.Outputs) {
		fmt.Fprintf(&sb, " %s=%s", port, res.Outputs[port])
	}
	return sb.String()
}

func sortedPorts(v node.Values) []string {
	ports := make([]string, 0, len(v))
	for port := range v {
		ports = append(ports, port)
	}
	slices.Sort(ports)
	return ports
}
