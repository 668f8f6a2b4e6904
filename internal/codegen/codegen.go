// Package codegen renders a graph as a standalone Python script. It walks the
// same region tree as the engine, so a generated script follows the live
// execution order, branching and loop semantics.
package codegen

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"text/template"

	"github.com/specialistvlad/robogrid/internal/graph"
	"github.com/specialistvlad/robogrid/internal/node"
	"github.com/specialistvlad/robogrid/internal/scheduler"
	"github.com/specialistvlad/robogrid/internal/script"
	"github.com/specialistvlad/robogrid/internal/value"
)

// ErrInvalidGraph wraps the validation or planning error of a graph that
// cannot be generated.
var ErrInvalidGraph = errors.New("invalid graph")

const (
	DefaultIndent    = 4
	DefaultLoopGuard = 1000
)

// Config tunes the generated text.
type Config struct {
	// Indent is the number of spaces per block level.
	Indent int
	// LoopGuard is the number of passes after which a generated loop raises.
	// Callers pass the engine's per-loop iteration budget so both agree.
	LoopGuard int
}

func (c Config) withDefaults() Config {
	if c.Indent <= 0 {
		c.Indent = DefaultIndent
	}
	if c.LoopGuard <= 0 {
		c.LoopGuard = DefaultLoopGuard
	}
	return c
}

// Generator turns graphs into scripts.
type Generator struct {
	cfg Config
}

// New creates a generator.
func New(cfg Config) *Generator {
	return &Generator{cfg: cfg.withDefaults()}
}

// Generate renders g. Identical graphs render byte-identical text.
func (gen *Generator) Generate(g *graph.Graph) (string, error) {
	plan, err := scheduler.Build(g.Snapshot())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidGraph, err)
	}
	return gen.render(plan)
}

func (gen *Generator) render(plan *scheduler.Plan) (string, error) {
	w := &writer{
		gen:    gen,
		plan:   plan,
		unit:   strings.Repeat(" ", gen.cfg.Indent),
		read:   make(map[string]bool),
		states: make(map[string]bool),
		feeds:  make(map[string][]string),
	}
	for _, c := range plan.Snapshot().Connections() {
		w.read[script.Var(c.From, c.FromPort)] = true
		if plan.IsBackEdge(c) && c.ToPort == node.PortCondition {
			w.feeds[c.From] = append(w.feeds[c.From], c.To)
		}
	}

	if err := w.region(plan.Root(), 1); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("# Auto-generated by robogrid. Do not edit.\n")
	if tree := plan.String(); tree != "" {
		sb.WriteString("#\n")
		sb.WriteString(script.Comment(tree))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(strings.ReplaceAll(prelude, "\t", w.unit))
	sb.WriteString("\n\ndef execute_workflow(robot):\n")

	var inits []string
	for v := range w.read {
		inits = append(inits, v)
	}
	for v := range w.states {
		inits = append(inits, v)
	}
	slices.Sort(inits)
	for _, v := range inits {
		fmt.Fprintf(&sb, "%s%s = None\n", w.unit, v)
	}
	if w.body.Len() == 0 && len(inits) == 0 {
		fmt.Fprintf(&sb, "%spass\n", w.unit)
	}
	sb.WriteString(w.body.String())

	sb.WriteString("\n\nif __name__ == '__main__':\n")
	fmt.Fprintf(&sb, "%sraise SystemExit('execute_workflow(robot) needs a connected robot handle')\n", w.unit)
	return sb.String(), nil
}

// writer accumulates the function body.
type writer struct {
	gen    *Generator
	plan   *scheduler.Plan
	unit   string
	body   strings.Builder
	read   map[string]bool
	states map[string]bool
	// feeds maps a back-edge source to the loops whose condition it drives.
	feeds map[string][]string
	// loops is the stack of enclosing loop node ids.
	loops []string
}

func (w *writer) line(depth int, text string) {
	w.body.WriteString(strings.Repeat(w.unit, depth))
	w.body.WriteString(text)
	w.body.WriteByte('\n')
}

func (w *writer) lines(depth int, text string) {
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) == "" {
			continue
		}
		w.line(depth, strings.TrimRight(l, " \t"))
	}
}

// block writes a region at depth, or pass when it emits nothing.
func (w *writer) block(r *scheduler.Region, depth int, lead ...string) error {
	start := w.body.Len()
	for _, l := range lead {
		w.line(depth, l)
	}
	if err := w.region(r, depth); err != nil {
		return err
	}
	if w.body.Len() == start {
		w.line(depth, "pass")
	}
	return nil
}

func (w *writer) region(r *scheduler.Region, depth int) error {
	for _, id := range r.Steps {
		n, _ := w.plan.Snapshot().Node(id)
		var err error
		switch {
		case n.IsControl() && n.Type() == node.TypeIf:
			err = w.ifNode(n, depth)
		case n.IsControl() && n.Type() == node.TypeWhileLoop:
			err = w.loopNode(n, depth)
		default:
			var code string
			code, err = w.fragment(n)
			if err == nil {
				w.line(depth, script.Comment(fmt.Sprintf("%s (%s)", n.ID(), n.Type())))
				w.lines(depth, code)
				w.produced(depth, n.ID())
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) ifNode(n *node.Node, depth int) error {
	code, err := w.fragment(n)
	if err != nil {
		return err
	}
	header, prologue, _ := strings.Cut(code, "\n")
	then := w.plan.Region(n.ID(), node.PortThen)
	els := w.plan.Region(n.ID(), node.PortElse)

	w.line(depth, script.Comment(fmt.Sprintf("%s (%s)", n.ID(), n.Type())))
	w.reset(depth, n.ID(), append(w.plan.Members(then), w.plan.Members(els)...), node.PortThen, node.PortElse)
	w.lines(depth, prologue)
	w.produced(depth, n.ID())
	w.line(depth, header)
	if err := w.block(then, depth+1, w.marker(n.ID(), node.PortThen)...); err != nil {
		return err
	}
	w.line(depth, "else:")
	return w.block(els, depth+1, w.marker(n.ID(), node.PortElse)...)
}

func (w *writer) loopNode(n *node.Node, depth int) error {
	guard := script.GuardVar(n.ID())
	w.loops = append(w.loops, n.ID())
	defer func() { w.loops = w.loops[:len(w.loops)-1] }()

	code, err := w.fragment(n)
	if err != nil {
		return err
	}
	header, prologue, _ := strings.Cut(code, "\n")
	body := w.plan.Region(n.ID(), node.PortBody)

	w.line(depth, script.Comment(fmt.Sprintf("%s (%s)", n.ID(), n.Type())))
	w.reset(depth, n.ID(), w.plan.Members(body))
	if w.fedBack(n.ID()) {
		w.line(depth, script.SeenVar(n.ID())+" = False")
	}
	w.line(depth, guard+" = 0")
	w.line(depth, header)
	w.line(depth+1, guard+" += 1")
	w.line(depth+1, fmt.Sprintf("if %s > %d:", guard, w.gen.cfg.LoopGuard))
	w.line(depth+2, fmt.Sprintf("raise RuntimeError(%s)", script.String("loop budget exceeded: "+n.ID())))
	w.lines(depth+1, prologue)
	w.produced(depth+1, n.ID())
	if err := w.block(body, depth+1); err != nil {
		return err
	}
	w.line(depth, fmt.Sprintf("%s = %s", script.Var(n.ID(), node.PortDone), guard))
	w.produced(depth, n.ID())
	return nil
}

// fedBack reports whether a back-edge drives the condition of loop.
func (w *writer) fedBack(loop string) bool {
	for _, loops := range w.feeds {
		if slices.Contains(loops, loop) {
			return true
		}
	}
	return false
}

// produced raises the seen flag of every loop whose condition id drives.
func (w *writer) produced(depth int, id string) {
	for _, loop := range w.feeds[id] {
		w.line(depth, script.SeenVar(loop)+" = True")
	}
}

// marker sets the selected branch output when something reads it.
func (w *writer) marker(id, port string) []string {
	if v := script.Var(id, port); w.read[v] {
		return []string{v + " = True"}
	}
	return nil
}

// reset clears the read variables of members before a control construct runs,
// plus the listed ports of the control node itself.
func (w *writer) reset(depth int, control string, members []string, ports ...string) {
	var vars []string
	for _, id := range members {
		n, _ := w.plan.Snapshot().Node(id)
		for _, p := range n.Spec().Outputs {
			if v := script.Var(id, p.Name); w.read[v] {
				vars = append(vars, v)
			}
		}
	}
	for _, p := range ports {
		if v := script.Var(control, p); w.read[v] {
			vars = append(vars, v)
		}
	}
	for _, v := range vars {
		w.line(depth, v+" = None")
	}
}

// fragment renders the code template of n.
func (w *writer) fragment(n *node.Node) (string, error) {
	src := n.Behavior().Code(n.Params())
	tmpl, err := template.New(n.ID()).Option("missingkey=error").Funcs(w.funcs(n)).Parse(src)
	if err != nil {
		return "", fmt.Errorf("node '%s': parse code fragment: %w", n.ID(), err)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, nil); err != nil {
		return "", fmt.Errorf("node '%s': render code fragment: %w", n.ID(), err)
	}
	return sb.String(), nil
}

func (w *writer) funcs(n *node.Node) template.FuncMap {
	snap := w.plan.Snapshot()
	return template.FuncMap{
		"in": func(port string) (string, error) {
			p, ok := n.Spec().Port(node.In, port)
			if !ok {
				return "", fmt.Errorf("unknown input port '%s'", port)
			}
			c, bound := snap.Inbound(n.ID(), port)
			if !bound {
				return script.Literal(value.Zero(p.Kind)), nil
			}
			src := script.Var(c.From, c.FromPort)
			if w.plan.IsBackEdge(c) && port == node.PortCondition {
				return "_bool_or_true(" + src + ", " + script.SeenVar(n.ID()) + ")", nil
			}
			return coerce(src, p.Kind), nil
		},
		"out": func(port string) (string, error) {
			if _, ok := n.Spec().Port(node.Out, port); !ok {
				return "", fmt.Errorf("unknown output port '%s'", port)
			}
			return script.Var(n.ID(), port), nil
		},
		"state": func(key string) string {
			v := script.StateVar(n.ID(), key)
			w.states[v] = true
			return v
		},
		"iter": func() string {
			if len(w.loops) == 0 {
				return "-1"
			}
			guard := script.GuardVar(w.loops[len(w.loops)-1])
			if n.Type() == node.TypeWhileLoop {
				return guard
			}
			return "(" + guard + " - 1)"
		},
	}
}

func coerce(v string, k value.Kind) string {
	switch k {
	case value.KindNumber:
		return "_num(" + v + ")"
	case value.KindBool:
		return "_bool(" + v + ")"
	case value.KindText:
		return "_text(" + v + ")"
	case value.KindRecord:
		return "_rec(" + v + ")"
	}
	return v
}
