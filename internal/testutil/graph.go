package testutil

import (
	"context"
	"strings"
	"testing"

	"github.com/specialistvlad/robogrid/internal/graph"
	"github.com/specialistvlad/robogrid/internal/registry"
	"github.com/specialistvlad/robogrid/internal/scheduler"
	"github.com/specialistvlad/robogrid/internal/value"
	"github.com/specialistvlad/robogrid/modules"
	"github.com/stretchr/testify/require"
)

// NewRegistry returns a sealed registry holding the built-in node types plus
// extra.
func NewRegistry(t *testing.T, extra ...registry.Module) *registry.Registry {
	t.Helper()
	reg := registry.New()
	_, err := reg.Load(context.Background(), append(modules.Builtins(), extra...))
	require.NoError(t, err)
	return reg
}

// NodeDef describes one node for BuildGraph.
type NodeDef struct {
	ID     string
	Type   string
	Params value.Record
}

// BuildGraph creates a graph from defs and wires conns. Each connection is
// written "from.port -> to.port".
func BuildGraph(t *testing.T, reg *registry.Registry, defs []NodeDef, conns ...string) *graph.Graph {
	t.Helper()
	g := graph.New(reg, graph.WithPlanner(scheduler.Check))
	for _, d := range defs {
		n, err := g.CreateWithID(d.Type, d.ID)
		require.NoError(t, err)
		for _, k := range d.Params.Keys() {
			require.NoError(t, n.SetParam(k, d.Params[k]))
		}
	}
	for _, c := range conns {
		require.NoError(t, g.Connect(ParseConnection(t, c)), c)
	}
	return g
}

// ParseConnection parses "from.port -> to.port".
func ParseConnection(t *testing.T, s string) graph.Connection {
	t.Helper()
	from, to, ok := strings.Cut(s, "->")
	require.True(t, ok, "connection %q lacks '->'", s)
	fromNode, fromPort, ok := strings.Cut(strings.TrimSpace(from), ".")
	require.True(t, ok, "connection source %q lacks a port", from)
	toNode, toPort, ok := strings.Cut(strings.TrimSpace(to), ".")
	require.True(t, ok, "connection destination %q lacks a port", to)
	return graph.Connect(fromNode, fromPort, toNode, toPort)
}
