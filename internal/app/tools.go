package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/specialistvlad/robogrid/internal/codegen"
	"github.com/specialistvlad/robogrid/internal/graphfile"
	"github.com/specialistvlad/robogrid/internal/node"
	"github.com/specialistvlad/robogrid/internal/registry"
	"github.com/specialistvlad/robogrid/internal/scheduler"
)

// Generate writes the script generated from the graph file at path to w.
func (a *App) Generate(ctx context.Context, path string, w io.Writer) error {
	g, err := a.LoadGraph(ctx, path)
	if err != nil {
		return err
	}
	script, err := codegen.New(codegen.Config{
		Indent:    a.config.Codegen.Indent,
		LoopGuard: a.config.LoopGuard(),
	}).Generate(g)
	if err != nil {
		return err
	}
	a.logger.Debug("Script generated.", "graph", path, "bytes", len(script))
	_, err = io.WriteString(w, script)
	return err
}

// Validate loads and plans the graph file at path and prints its region tree.
func (a *App) Validate(ctx context.Context, path string) (*scheduler.Plan, error) {
	g, err := a.LoadGraph(ctx, path)
	if err != nil {
		return nil, err
	}
	plan, err := scheduler.Build(g.Snapshot())
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.outW, "%s: %d nodes, %d connections\n", path, g.Len(), len(g.Connections()))
	fmt.Fprint(a.outW, plan.String())
	return plan, nil
}

// Format rewrites the graph file at path in canonical form to w.
func (a *App) Format(ctx context.Context, path string, w io.Writer) error {
	g, err := a.LoadGraph(ctx, path)
	if err != nil {
		return err
	}
	_, err = w.Write(graphfile.Encode(g))
	return err
}

// NodeType describes one registered node type.
type NodeType struct {
	Spec  node.Spec
	Scope registry.Scope
}

// NodeTypes lists the registered node types of scope in registration order.
func (a *App) NodeTypes(scope registry.Scope) []NodeType {
	var out []NodeType
	for typeID := range a.registry.ListTypes(scope) {
		spec, _ := a.registry.Lookup(typeID)
		s, _ := a.registry.ScopeOf(typeID)
		out = append(out, NodeType{Spec: spec, Scope: s})
	}
	return out
}

// PrintNodeTypes writes the node types of scope as a table.
func (a *App) PrintNodeTypes(scope registry.Scope) error {
	tw := tabwriter.NewWriter(a.outW, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tKIND\tSCOPE\tINPUTS\tOUTPUTS\tDESCRIPTION")
	for _, nt := range a.NodeTypes(scope) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			nt.Spec.Type, nt.Spec.Kind, nt.Scope, ports(nt.Spec.Inputs), ports(nt.Spec.Outputs), nt.Spec.Description)
	}
	return tw.Flush()
}

func ports(specs []node.PortSpec) string {
	names := make([]string, 0, len(specs))
	for _, p := range specs {
		names = append(names, p.Name)
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ",")
}
