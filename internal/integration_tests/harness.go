package integration_tests

import (
	"context"
	"testing"
	"time"

	"github.com/specialistvlad/robogrid/internal/engine"
	"github.com/specialistvlad/robogrid/internal/extension"
	"github.com/specialistvlad/robogrid/internal/graph"
	"github.com/specialistvlad/robogrid/internal/graphfile"
	"github.com/specialistvlad/robogrid/internal/registry"
	"github.com/specialistvlad/robogrid/internal/session"
	"github.com/specialistvlad/robogrid/internal/simbackend"
	"github.com/specialistvlad/robogrid/internal/testutil"
	"github.com/specialistvlad/robogrid/modules"
	"github.com/stretchr/testify/require"
)

// Harness is one simulated robot behind a running session.
type Harness struct {
	Robot    *simbackend.Robot
	Session  *session.Session
	Registry *registry.Registry
	Logs     *testutil.SafeBuffer
	Ctx      context.Context
}

// NewHarness starts a session on a simulated robot of model. The session is
// stopped when the test ends.
func NewHarness(t *testing.T, model string, cfg session.Config, opts ...simbackend.Option) *Harness {
	t.Helper()
	logs := &testutil.SafeBuffer{}
	ctx := testutil.Context(logs)

	reg := registry.New()
	_, err := reg.Load(ctx, modules.Builtins())
	require.NoError(t, err)

	robot := simbackend.New(opts...)
	sess := session.New(robot, session.Descriptor{Model: model}, cfg)
	require.NoError(t, sess.Start(ctx))
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, sess.Stop(stopCtx))
	})

	return &Harness{Robot: robot, Session: sess, Registry: reg, Logs: logs, Ctx: ctx}
}

// LoadExtensions replaces the registry with one holding the built-in node
// types plus the manifests found in dir.
func (h *Harness) LoadExtensions(t *testing.T, dir string) *registry.LoadReport {
	t.Helper()
	reg := registry.New()
	report, err := reg.Load(h.Ctx, modules.Builtins(), extension.Dir{Path: dir})
	require.NoError(t, err)
	h.Registry = reg
	return report
}

// Graph parses src as a graph file.
func (h *Harness) Graph(t *testing.T, src string, opts ...graphfile.Option) *graph.Graph {
	t.Helper()
	g, err := graphfile.Parse([]byte(src), t.Name()+".hcl", h.Registry, opts...)
	require.NoError(t, err)
	return g
}

// Execute runs g to completion through the session.
func (h *Harness) Execute(t *testing.T, g *graph.Graph, cfg engine.Config) *engine.Outcome {
	t.Helper()
	outcome, err := engine.New(h.Session, cfg).Execute(h.Ctx, g)
	require.NoError(t, err)
	return outcome
}

// NodeIDs returns the node id of every result, in order.
func NodeIDs(results []engine.Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.NodeID)
	}
	return out
}
