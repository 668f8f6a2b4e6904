package graphfile

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/robogrid/internal/ctxlog"
	"github.com/specialistvlad/robogrid/internal/graph"
	"github.com/specialistvlad/robogrid/internal/nodeid"
	"github.com/specialistvlad/robogrid/internal/scheduler"
	"github.com/specialistvlad/robogrid/internal/value"
)

type fileRoot struct {
	Variables []*variableBlock `hcl:"variable,block"`
	Nodes     []*nodeBlock     `hcl:"node,block"`
	Connects  []*connectBlock  `hcl:"connect,block"`
}

type nodeBlock struct {
	ID        string         `hcl:"id,label"`
	Type      string         `hcl:"type"`
	Params    hcl.Expression `hcl:"params,optional"`
	DeclRange hcl.Range      `hcl:",def_range"`
}

type connectBlock struct {
	From      string    `hcl:"from"`
	To        string    `hcl:"to"`
	DeclRange hcl.Range `hcl:",def_range"`
}

// Option customises loading.
type Option func(*options)

type options struct {
	vars value.Record
}

// WithVariables overrides the defaults of variable blocks. Values are coerced
// to the kind of the variable's default.
func WithVariables(vars value.Record) Option {
	return func(o *options) {
		if o.vars == nil {
			o.vars = value.Record{}
		}
		for k, v := range vars {
			o.vars[k] = v
		}
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Load reads the graph file at path.
func Load(ctx context.Context, path string, factory graph.Factory, opts ...Option) (*graph.Graph, error) {
	logger := ctxlog.FromContext(ctx)
	file, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse graph file %s: %w", path, diags)
	}
	g, err := decode(file, factory, newOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("failed to load graph file %s: %w", path, err)
	}
	logger.Debug("Graph file loaded.", "path", path, "nodes", g.Len(), "connections", len(g.Connections()))
	return g, nil
}

// Parse reads a graph from src. filename is only used in diagnostics.
func Parse(src []byte, filename string, factory graph.Factory, opts ...Option) (*graph.Graph, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse graph %s: %w", filename, diags)
	}
	return decode(file, factory, newOptions(opts))
}

func decode(file *hcl.File, factory graph.Factory, o options) (*graph.Graph, error) {
	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, diags
	}
	evalCtx, err := evalContext(root.Variables, o.vars)
	if err != nil {
		return nil, err
	}

	g := graph.New(factory, graph.WithPlanner(scheduler.Check))
	for _, b := range root.Nodes {
		if err := addNode(g, b, evalCtx); err != nil {
			return nil, fmt.Errorf("%s: node '%s': %w", b.DeclRange, b.ID, err)
		}
	}
	for _, b := range root.Connects {
		c, err := connection(b)
		if err == nil {
			err = g.Connect(c)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: connect: %w", b.DeclRange, err)
		}
	}
	return g, nil
}

func addNode(g *graph.Graph, b *nodeBlock, evalCtx *hcl.EvalContext) error {
	n, err := g.CreateWithID(b.Type, b.ID)
	if err != nil {
		return err
	}
	if err := checkReferences(b.Params); err != nil {
		return fmt.Errorf("params: %w", err)
	}
	raw, diags := b.Params.Value(evalCtx)
	if diags.HasErrors() {
		return fmt.Errorf("params: %w", diags)
	}
	if raw.IsNull() {
		return nil
	}
	v, err := value.FromCty(raw)
	if err != nil {
		return fmt.Errorf("params: %w", err)
	}
	if v.Kind() != value.KindRecord {
		return fmt.Errorf("params must be an object, got %s", v.Kind())
	}
	params := v.AsRecord()
	for _, k := range params.Keys() {
		if err := n.SetParam(k, params[k]); err != nil {
			return err
		}
	}
	return nil
}

func connection(b *connectBlock) (graph.Connection, error) {
	from, err := nodeid.ParseRef(b.From)
	if err != nil {
		return graph.Connection{}, fmt.Errorf("from: %w", err)
	}
	to, err := nodeid.ParseRef(b.To)
	if err != nil {
		return graph.Connection{}, fmt.Errorf("to: %w", err)
	}
	return graph.Connect(from.Node, from.Port, to.Node, to.Port), nil
}
